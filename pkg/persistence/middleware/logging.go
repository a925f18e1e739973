package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/ports"
)

type loggingMiddleware struct {
	next   ports.SessionStore
	logger *slog.Logger
}

// NewLogging logs store failures. Missing sessions are expected and only
// logged at debug level.
func NewLogging(logger *slog.Logger) Middleware {
	return func(next ports.SessionStore) ports.SessionStore {
		return &loggingMiddleware{next: next, logger: logger}
	}
}

func (m *loggingMiddleware) log(ctx context.Context, op, sessionID string, err error) {
	switch {
	case err == nil:
		m.logger.DebugContext(ctx, "store "+op, "session_id", sessionID)
	case errors.Is(err, domain.ErrSessionNotFound):
		m.logger.DebugContext(ctx, "store "+op+": session not found", "session_id", sessionID)
	default:
		m.logger.ErrorContext(ctx, "store "+op+" failed", "session_id", sessionID, "err", err)
	}
}

func (m *loggingMiddleware) Save(ctx context.Context, sessionID string, state *domain.State) error {
	err := m.next.Save(ctx, sessionID, state)
	m.log(ctx, "save", sessionID, err)
	return err
}

func (m *loggingMiddleware) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	state, err := m.next.Load(ctx, sessionID)
	m.log(ctx, "load", sessionID, err)
	return state, err
}

func (m *loggingMiddleware) Delete(ctx context.Context, sessionID string) error {
	err := m.next.Delete(ctx, sessionID)
	m.log(ctx, "delete", sessionID, err)
	return err
}

func (m *loggingMiddleware) List(ctx context.Context) ([]string, error) {
	ids, err := m.next.List(ctx)
	m.log(ctx, "list", "", err)
	return ids, err
}
