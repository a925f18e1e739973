package ports_test

import (
	"context"
	"testing"

	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/ports"
)

// MockStore is a map-backed SessionStore used to check the contract suite itself.
type MockStore struct {
	data map[string]domain.State
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]domain.State),
	}
}

func (m *MockStore) Save(ctx context.Context, sessionID string, state *domain.State) error {
	m.data[sessionID] = *state
	return nil
}

func (m *MockStore) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	state, ok := m.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &state, nil
}

func (m *MockStore) Delete(ctx context.Context, sessionID string) error {
	delete(m.data, sessionID)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	return ids, nil
}

var _ ports.SessionStore = (*MockStore)(nil)

func TestMockStore_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, NewMockStore())
}
