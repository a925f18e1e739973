/*
Package abacus is a keypad calculator engine: a small deterministic state
machine that tracks an operand being entered, a previous operand with a
pending operator, and produces the text a calculator display shows.

# Concept

The engine is driven by discrete key presses (digits, decimal point,
operators, sign toggle, percentage, equals, backspace, clear). Operators
chain strictly left to right: 2 + 3 × 4 = evaluates 2 + 3 before recording
×, then 5 × 4, giving 20. There is no operator precedence and no expression
parsing.

Division by zero does not produce a result. It resets the calculator and is
reported as domain.OutcomeDivisionByZero, which a host turns into whatever
notification it can show.

# Usage

Hosts that own a single calculator use Calculator:

	calc := abacus.New()
	calc.AppendDigit('2')
	calc.ChooseOperation(domain.OpAdd)
	calc.AppendDigit('3')
	calc.Compute()
	fmt.Println(calc.Display().Current) // 5

Hosts that keep state elsewhere (HTTP sessions, tool calls) use Engine and
pass the state in and out:

	eng := abacus.NewEngine()
	state, outcome, err := eng.Apply(ctx, state, input)

Key names are translated to inputs by package keymap, and display lines are
composed (with operator glyphs) by package display.
*/
package abacus
