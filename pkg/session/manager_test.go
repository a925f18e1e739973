package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/abacus/internal/runtime"
	"github.com/aretw0/abacus/pkg/adapters/memory"
	"github.com/aretw0/abacus/pkg/adapters/redis"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	data map[string]domain.State
	mu   sync.Mutex
}

func (s *SlowStore) Save(ctx context.Context, sessionID string, state *domain.State) error {
	time.Sleep(2 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string]domain.State)
	}
	s.data[sessionID] = *state
	return nil
}

func (s *SlowStore) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	time.Sleep(2 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.data[sessionID]; ok {
		return &state, nil
	}
	return nil, domain.ErrSessionNotFound
}

func (s *SlowStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

func (s *SlowStore) List(ctx context.Context) ([]string, error) {
	return nil, nil
}

func appendDigit(s *domain.State) (*domain.State, error) {
	next := runtime.AppendDigit(*s, '1')
	return &next, nil
}

func TestManager_UpdateIsSerialized(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "race-test"

	_, err := manager.Create(ctx, id)
	require.NoError(t, err)

	var wg sync.WaitGroup
	writers := 20
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.Update(ctx, id, appendDigit)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, state.CurrentOperand, writers, "every update must see the previous one")
}

func TestManager_UpdateErrorSkipsSave(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	_, err := manager.Create(ctx, "s1")
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = manager.Update(ctx, "s1", func(s *domain.State) (*domain.State, error) {
		return &domain.State{CurrentOperand: "7"}, boom
	})
	assert.ErrorIs(t, err, boom)

	state, err := manager.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.Defaults(), *state)
}

func TestManager_UpdateMissingSession(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	_, err := manager.Update(context.Background(), "ghost", appendDigit)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_LoadOrCreate(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	state, created, err := manager.LoadOrCreate(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.Defaults(), *state)

	require.NoError(t, manager.Save(ctx, "s1", &domain.State{CurrentOperand: "5"}))

	state, created, err = manager.LoadOrCreate(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "5", state.CurrentOperand)
}

func TestManager_DistributedLock(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	store := redis.NewFromClient(client)
	manager := session.NewManager(store,
		session.WithLocker(redis.NewLocker(client, store.Prefix())),
		session.WithLockTTL(5*time.Second),
	)
	ctx := context.Background()

	_, err = manager.Create(ctx, "shared")
	require.NoError(t, err)

	err = manager.WithLock(ctx, "shared", func(ctx context.Context) error {
		assert.True(t, mr.Exists("abacus:lock:shared"), "lock must be held inside WithLock")
		return nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists("abacus:lock:shared"), "lock must be released afterwards")

	next, err := manager.Update(ctx, "shared", appendDigit)
	require.NoError(t, err)
	assert.Equal(t, "1", next.CurrentOperand)
}
