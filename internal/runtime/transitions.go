package runtime

import (
	"math"

	"github.com/aretw0/abacus/pkg/domain"
)

// The functions in this file are the calculator's transitions. Each takes a
// state by value and returns the next one, so callers decide what to keep.

// Reset returns the default state.
func Reset(domain.State) domain.State {
	return domain.Defaults()
}

// DeleteLastDigit removes the last character of the current operand.
// A single remaining character becomes "0".
func DeleteLastDigit(s domain.State) domain.State {
	switch n := len(s.CurrentOperand); {
	case n == 1:
		s.CurrentOperand = domain.DefaultOperand
	case n > 1:
		s.CurrentOperand = s.CurrentOperand[:n-1]
	}
	return s
}

// AppendDigit enters one decimal digit. Runes outside '0'-'9' are ignored.
func AppendDigit(s domain.State, d rune) domain.State {
	if d < '0' || d > '9' {
		return s
	}
	digit := string(d)

	if s.ShouldResetScreen {
		s.CurrentOperand = digit
		s.ShouldResetScreen = false
		return s
	}
	if s.CurrentOperand == domain.DefaultOperand {
		s.CurrentOperand = digit
	} else {
		s.CurrentOperand += digit
	}
	return s
}

// AppendDecimalPoint adds a decimal point, at most one per number.
func AppendDecimalPoint(s domain.State) domain.State {
	if s.ShouldResetScreen {
		s.CurrentOperand = "0."
		s.ShouldResetScreen = false
		return s
	}
	for i := 0; i < len(s.CurrentOperand); i++ {
		if s.CurrentOperand[i] == '.' {
			return s
		}
	}
	s.CurrentOperand += "."
	return s
}

// ChooseOperation records op as the pending operator.
// A pending operation is evaluated first, so operators chain left to right.
func ChooseOperation(s domain.State, op domain.Operator) (domain.State, domain.Outcome) {
	if !op.Valid() || s.CurrentOperand == "" {
		return s, domain.OutcomeNone
	}

	outcome := domain.OutcomeNone
	if s.PreviousOperand != "" {
		s, outcome = Compute(s)
	}

	s.Operation = op
	s.PreviousOperand = s.CurrentOperand
	s.ShouldResetScreen = true
	return s, outcome
}

// Compute evaluates the pending operation.
// Missing or unreadable operands leave the state untouched. Division by zero
// resets the calculator and reports OutcomeDivisionByZero.
func Compute(s domain.State) (domain.State, domain.Outcome) {
	prev, ok := ParseOperand(s.PreviousOperand)
	if !ok {
		return s, domain.OutcomeNone
	}
	current, ok := ParseOperand(s.CurrentOperand)
	if !ok {
		return s, domain.OutcomeNone
	}

	var result float64
	switch s.Operation {
	case domain.OpAdd:
		result = prev + current
	case domain.OpSubtract:
		result = prev - current
	case domain.OpMultiply:
		result = prev * current
	case domain.OpDivide:
		if current == 0 {
			return domain.Defaults(), domain.OutcomeDivisionByZero
		}
		result = prev / current
	case domain.OpModulo:
		result = math.Mod(prev, current)
	default:
		return s, domain.OutcomeNone
	}

	s.CurrentOperand = FormatResult(result)
	s.Operation = domain.OpNone
	s.PreviousOperand = ""
	return s, domain.OutcomeComputed
}

// ToggleSign negates the current operand.
// The operand is re-rendered as a number, so "5." becomes "-5" and "0" stays "0".
func ToggleSign(s domain.State) domain.State {
	v, _ := ParseOperand(s.CurrentOperand)
	s.CurrentOperand = FormatNumber(v * -1)
	return s
}

// CalculatePercentage turns the current operand into a percentage.
// Without a pending operator it divides by 100. With one, it takes that
// percentage of the previous operand, leaving the pending operation in place.
func CalculatePercentage(s domain.State) domain.State {
	current, _ := ParseOperand(s.CurrentOperand)
	if s.PreviousOperand == "" || s.Operation == domain.OpNone {
		s.CurrentOperand = FormatNumber(current / 100)
		return s
	}
	prev, _ := ParseOperand(s.PreviousOperand)
	s.CurrentOperand = FormatNumber(prev * current / 100)
	return s
}
