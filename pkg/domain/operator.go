package domain

import "fmt"

// Operator is one of the binary operations the calculator can hold pending.
type Operator string

const (
	OpNone     Operator = ""
	OpAdd      Operator = "add"
	OpSubtract Operator = "subtract"
	OpMultiply Operator = "multiply"
	OpDivide   Operator = "divide"
	OpModulo   Operator = "modulo"
)

// Operators lists every selectable operator in keypad order.
var Operators = []Operator{OpAdd, OpSubtract, OpMultiply, OpDivide, OpModulo}

// Valid reports whether o is a selectable operator (OpNone is not).
func (o Operator) Valid() bool {
	switch o {
	case OpAdd, OpSubtract, OpMultiply, OpDivide, OpModulo:
		return true
	}
	return false
}

// ParseOperator converts a stored operator name back to an Operator.
// The empty string parses to OpNone.
func ParseOperator(name string) (Operator, error) {
	op := Operator(name)
	if op == OpNone || op.Valid() {
		return op, nil
	}
	return OpNone, fmt.Errorf("%w: operator %q", ErrInvalidInput, name)
}
