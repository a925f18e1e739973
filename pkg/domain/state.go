package domain

// DefaultOperand is the value shown by a freshly reset calculator.
const DefaultOperand = "0"

// State represents the current snapshot of a calculator.
type State struct {
	// CurrentOperand is the numeral being entered or the last result.
	// It may be partial (e.g. "12.") while the user is typing.
	CurrentOperand string `json:"current_operand"`

	// PreviousOperand is the operand captured when an operator was chosen.
	// Empty means there is none.
	PreviousOperand string `json:"previous_operand"`

	// Operation is the pending operator, OpNone when nothing is pending.
	Operation Operator `json:"operation,omitempty"`

	// ShouldResetScreen makes the next digit start a fresh number.
	ShouldResetScreen bool `json:"should_reset_screen"`
}

// NewState creates a state with all fields at their defaults.
func NewState() *State {
	s := Defaults()
	return &s
}

// Defaults returns the zero-entry calculator state by value.
func Defaults() State {
	return State{
		CurrentOperand:  DefaultOperand,
		PreviousOperand: "",
		Operation:       OpNone,
	}
}

// HasPending reports whether an operator is waiting for its second operand.
func (s State) HasPending() bool {
	return s.Operation != OpNone
}
