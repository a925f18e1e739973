package domain

// Command identifies which engine operation a key press triggers.
type Command string

const (
	CmdReset      Command = "reset"
	CmdDelete     Command = "delete"
	CmdDigit      Command = "digit"
	CmdDecimal    Command = "decimal"
	CmdOperator   Command = "operator"
	CmdToggleSign Command = "toggle_sign"
	CmdPercent    Command = "percent"
	CmdCompute    Command = "compute"
)

// Input is a decoded key press, ready to be applied to a State.
type Input struct {
	Command Command `json:"command"`

	// Digit is set for CmdDigit ('0'-'9').
	Digit rune `json:"digit,omitempty"`

	// Operator is set for CmdOperator.
	Operator Operator `json:"operator,omitempty"`
}

// Outcome describes the side result of applying an Input.
type Outcome string

const (
	// OutcomeNone is a plain edit of the entry (or a silent no-op).
	OutcomeNone Outcome = ""

	// OutcomeComputed means a pending operation was evaluated.
	OutcomeComputed Outcome = "computed"

	// OutcomeDivisionByZero means the calculator was reset after a division by zero.
	// Hosts should notify the user with DivisionByZeroMessage.
	OutcomeDivisionByZero Outcome = "division_by_zero"
)

// Notification returns the user-facing message for the outcome, if any.
func (o Outcome) Notification() string {
	if o == OutcomeDivisionByZero {
		return DivisionByZeroMessage
	}
	return ""
}
