package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/pkg/domain"
)

// Engine applies decoded inputs to calculator states.
// It holds no calculator state itself; callers pass the state in and keep the
// returned one. It is safe for concurrent use as long as hooks are.
type Engine struct {
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger used for debug traces.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a new engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply runs a single input against state and returns the next state.
// A nil state is treated as a freshly reset calculator. The input state is
// never modified.
func (e *Engine) Apply(ctx context.Context, state *domain.State, input domain.Input) (*domain.State, domain.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.OutcomeNone, err
	}

	current := domain.Defaults()
	if state != nil {
		current = *state
	}

	next, outcome, err := transition(current, input)
	if err != nil {
		return nil, domain.OutcomeNone, err
	}

	e.logger.Debug("input applied",
		"command", input.Command,
		"current", next.CurrentOperand,
		"previous", next.PreviousOperand,
		"operation", next.Operation,
		"outcome", outcome,
	)
	e.emit(ctx, current, next, input, outcome)

	return &next, outcome, nil
}

// ApplyAll applies inputs in order. The reported outcome is the most
// significant one seen: a division by zero anywhere in the batch wins over a
// computed result.
func (e *Engine) ApplyAll(ctx context.Context, state *domain.State, inputs []domain.Input) (*domain.State, domain.Outcome, error) {
	if state == nil {
		state = domain.NewState()
	}
	summary := domain.OutcomeNone
	for i, in := range inputs {
		next, outcome, err := e.Apply(ctx, state, in)
		if err != nil {
			return nil, domain.OutcomeNone, fmt.Errorf("input %d: %w", i, err)
		}
		state = next
		switch {
		case outcome == domain.OutcomeDivisionByZero:
			summary = outcome
		case outcome == domain.OutcomeComputed && summary == domain.OutcomeNone:
			summary = outcome
		}
	}
	return state, summary, nil
}

// ValidateState rejects states the calculator could never reach, such as a
// state decoded from a client with a non-numeric operand or an unknown operator.
func ValidateState(s domain.State) error {
	if s.CurrentOperand == "" || !ValidOperand(s.CurrentOperand) {
		return fmt.Errorf("%w: current operand %q", domain.ErrInvalidInput, s.CurrentOperand)
	}
	if !ValidOperand(s.PreviousOperand) {
		return fmt.Errorf("%w: previous operand %q", domain.ErrInvalidInput, s.PreviousOperand)
	}
	if s.Operation != domain.OpNone && !s.Operation.Valid() {
		return fmt.Errorf("%w: operation %q", domain.ErrInvalidInput, s.Operation)
	}
	return nil
}

func transition(s domain.State, in domain.Input) (domain.State, domain.Outcome, error) {
	switch in.Command {
	case domain.CmdReset:
		return Reset(s), domain.OutcomeNone, nil
	case domain.CmdDelete:
		return DeleteLastDigit(s), domain.OutcomeNone, nil
	case domain.CmdDigit:
		if in.Digit < '0' || in.Digit > '9' {
			return s, domain.OutcomeNone, fmt.Errorf("%w: digit %q", domain.ErrInvalidInput, in.Digit)
		}
		return AppendDigit(s, in.Digit), domain.OutcomeNone, nil
	case domain.CmdDecimal:
		return AppendDecimalPoint(s), domain.OutcomeNone, nil
	case domain.CmdOperator:
		if !in.Operator.Valid() {
			return s, domain.OutcomeNone, fmt.Errorf("%w: operator %q", domain.ErrInvalidInput, in.Operator)
		}
		next, outcome := ChooseOperation(s, in.Operator)
		return next, outcome, nil
	case domain.CmdToggleSign:
		return ToggleSign(s), domain.OutcomeNone, nil
	case domain.CmdPercent:
		return CalculatePercentage(s), domain.OutcomeNone, nil
	case domain.CmdCompute:
		next, outcome := Compute(s)
		return next, outcome, nil
	default:
		return s, domain.OutcomeNone, fmt.Errorf("%w: command %q", domain.ErrInvalidInput, in.Command)
	}
}

func (e *Engine) emit(ctx context.Context, before, after domain.State, input domain.Input, outcome domain.Outcome) {
	now := e.now()

	if e.hooks.OnInput != nil {
		e.hooks.OnInput(ctx, &domain.InputEvent{
			EventBase: domain.EventBase{Timestamp: now, Type: domain.EventInput},
			Input:     input,
			State:     after,
		})
	}

	switch outcome {
	case domain.OutcomeComputed:
		if e.hooks.OnCompute != nil {
			e.hooks.OnCompute(ctx, &domain.ComputeEvent{
				EventBase: domain.EventBase{Timestamp: now, Type: domain.EventCompute},
				Operator:  before.Operation,
				Previous:  before.PreviousOperand,
				Current:   before.CurrentOperand,
				Result:    resultOf(input, after),
			})
		}
	case domain.OutcomeDivisionByZero:
		e.logger.Info("division by zero, calculator reset",
			"previous", before.PreviousOperand,
			"current", before.CurrentOperand,
		)
		if e.hooks.OnDivisionByZero != nil {
			e.hooks.OnDivisionByZero(ctx, &domain.ComputeEvent{
				EventBase: domain.EventBase{Timestamp: now, Type: domain.EventDivisionByZero},
				Operator:  before.Operation,
				Previous:  before.PreviousOperand,
				Current:   before.CurrentOperand,
			})
		}
	}
}

// resultOf recovers the computed value; a chained operator moves it into the previous operand.
func resultOf(input domain.Input, after domain.State) string {
	if input.Command == domain.CmdOperator {
		return after.PreviousOperand
	}
	return after.CurrentOperand
}
