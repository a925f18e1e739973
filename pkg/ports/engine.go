package ports

import (
	"context"

	"github.com/aretw0/abacus/pkg/domain"
)

// Engine is the calculator core as used by adapters that manage state
// externally (HTTP, MCP).
type Engine interface {
	// Apply runs one input and returns the next state.
	Apply(ctx context.Context, state *domain.State, input domain.Input) (*domain.State, domain.Outcome, error)

	// ApplyAll runs inputs in order and reports the most significant outcome.
	ApplyAll(ctx context.Context, state *domain.State, inputs []domain.Input) (*domain.State, domain.Outcome, error)
}
