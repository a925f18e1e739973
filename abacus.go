package abacus

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/abacus/internal/runtime"
	"github.com/aretw0/abacus/pkg/display"
	"github.com/aretw0/abacus/pkg/domain"
)

// Engine is the stateless entry point for hosts that keep calculator state
// themselves (servers, tool adapters). It wraps the internal runtime.
type Engine struct {
	runtime *runtime.Engine
	logger  *slog.Logger
}

type options struct {
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	state  *domain.State
}

// Option defines a functional option for configuring an Engine or Calculator.
type Option func(*options)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithState starts a Calculator from an existing state instead of the defaults.
// Engines ignore it.
func WithState(state domain.State) Option {
	return func(o *options) {
		o.state = &state
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	// Ensure logger is initialized (so we don't pass nil to runtime)
	if o.logger == nil {
		o.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return o
}

// NewEngine creates a stateless engine.
func NewEngine(opts ...Option) *Engine {
	o := buildOptions(opts)
	return newEngine(o)
}

func newEngine(o options) *Engine {
	return &Engine{
		runtime: runtime.NewEngine(
			runtime.WithLifecycleHooks(o.hooks),
			runtime.WithLogger(o.logger),
		),
		logger: o.logger,
	}
}

// Apply runs one input against state and returns the next state.
func (e *Engine) Apply(ctx context.Context, state *domain.State, input domain.Input) (*domain.State, domain.Outcome, error) {
	return e.runtime.Apply(ctx, state, input)
}

// ApplyAll runs inputs in order; see runtime.Engine.ApplyAll for the outcome rules.
func (e *Engine) ApplyAll(ctx context.Context, state *domain.State, inputs []domain.Input) (*domain.State, domain.Outcome, error) {
	return e.runtime.ApplyAll(ctx, state, inputs)
}

// Calculator is a single calculator instance owned by one input adapter.
// It is not safe for concurrent use.
type Calculator struct {
	engine *Engine
	state  domain.State
}

// New creates a Calculator in its default state.
func New(opts ...Option) *Calculator {
	o := buildOptions(opts)
	c := &Calculator{
		engine: newEngine(o),
		state:  domain.Defaults(),
	}
	if o.state != nil {
		c.state = *o.state
	}
	return c
}

// Press applies one decoded key press.
func (c *Calculator) Press(ctx context.Context, input domain.Input) (domain.Outcome, error) {
	next, outcome, err := c.engine.Apply(ctx, &c.state, input)
	if err != nil {
		return domain.OutcomeNone, err
	}
	c.state = *next
	return outcome, nil
}

// apply is Press for inputs built by the methods below, which cannot fail on
// a background context except for out-of-range arguments. Those are ignored.
func (c *Calculator) apply(input domain.Input) domain.Outcome {
	outcome, err := c.Press(context.Background(), input)
	if err != nil {
		c.engine.logger.Debug("input ignored", "command", input.Command, "err", err)
	}
	return outcome
}

// Reset returns the calculator to its defaults.
func (c *Calculator) Reset() {
	c.apply(domain.Input{Command: domain.CmdReset})
}

// DeleteLastDigit removes the last entered character.
func (c *Calculator) DeleteLastDigit() {
	c.apply(domain.Input{Command: domain.CmdDelete})
}

// AppendDigit enters a digit ('0'-'9'); other runes are ignored.
func (c *Calculator) AppendDigit(d rune) {
	c.apply(domain.Input{Command: domain.CmdDigit, Digit: d})
}

// AppendDecimalPoint enters a decimal point.
func (c *Calculator) AppendDecimalPoint() {
	c.apply(domain.Input{Command: domain.CmdDecimal})
}

// ChooseOperation selects the pending operator, evaluating any pending one first.
func (c *Calculator) ChooseOperation(op domain.Operator) domain.Outcome {
	return c.apply(domain.Input{Command: domain.CmdOperator, Operator: op})
}

// Compute evaluates the pending operation.
func (c *Calculator) Compute() domain.Outcome {
	return c.apply(domain.Input{Command: domain.CmdCompute})
}

// ToggleSign negates the current operand.
func (c *Calculator) ToggleSign() {
	c.apply(domain.Input{Command: domain.CmdToggleSign})
}

// CalculatePercentage converts the current operand into a percentage.
func (c *Calculator) CalculatePercentage() {
	c.apply(domain.Input{Command: domain.CmdPercent})
}

// State returns a copy of the current state.
func (c *Calculator) State() domain.State {
	return c.state
}

// Display returns the two display lines using the default glyphs.
func (c *Calculator) Display() display.Lines {
	return display.Compose(c.state)
}

// ValidateState reports an error wrapping domain.ErrInvalidInput when state
// holds a non-numeric operand or an unknown operator. Hosts call it on states
// supplied by clients before applying keys to them.
func ValidateState(state domain.State) error {
	return runtime.ValidateState(state)
}

// FormatResult renders a numeric result for the display.
func FormatResult(result float64) string {
	return runtime.FormatResult(result)
}

// FormatNullable renders an optional result; nil renders as "0".
func FormatNullable(result *float64) string {
	return runtime.FormatNullable(result)
}
