// Package display composes the two text lines a calculator shows.
//
// Operator glyphs are a presentation concern and live here, not in the domain.
package display

import "github.com/aretw0/abacus/pkg/domain"

// Glyphs maps operators to the symbols shown next to the previous operand.
type Glyphs map[domain.Operator]string

// DefaultGlyphs are the keypad symbols.
var DefaultGlyphs = Glyphs{
	domain.OpAdd:      "+",
	domain.OpSubtract: "−",
	domain.OpMultiply: "×",
	domain.OpDivide:   "÷",
	domain.OpModulo:   "%",
}

// ASCIIGlyphs suit terminals without Unicode support.
var ASCIIGlyphs = Glyphs{
	domain.OpAdd:      "+",
	domain.OpSubtract: "-",
	domain.OpMultiply: "*",
	domain.OpDivide:   "/",
	domain.OpModulo:   "mod",
}

// Lines is what a display renderer draws after every input.
type Lines struct {
	Previous string `json:"previous"`
	Current  string `json:"current"`
}

// Compose renders a state with DefaultGlyphs.
func Compose(s domain.State) Lines {
	return DefaultGlyphs.Compose(s)
}

// Compose renders a state. The operator glyph is omitted when nothing is pending.
func (g Glyphs) Compose(s domain.State) Lines {
	lines := Lines{
		Previous: s.PreviousOperand,
		Current:  s.CurrentOperand,
	}
	if s.Operation != domain.OpNone {
		lines.Previous = s.PreviousOperand + " " + g.Symbol(s.Operation)
	}
	return lines
}

// Symbol returns the glyph for op, falling back to the operator name.
func (g Glyphs) Symbol(op domain.Operator) string {
	if sym, ok := g[op]; ok {
		return sym
	}
	return string(op)
}
