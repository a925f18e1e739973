/*
Package domain contains the core domain models of the Abacus calculator.

It defines the calculator state, the operator set, the input commands an
adapter can send, and the outcomes a transition can produce. This package is
kept pure and free of external dependencies like I/O or persistence, following
Hexagonal Architecture principles.

# Key Entities

  - State: the snapshot of one calculator (current operand, previous operand,
    pending operator and reset-screen flag).
  - Operator: the enumerated arithmetic operators. Display glyphs are not part
    of the domain.
  - Input: a single decoded key press (digit, decimal point, operator, ...).
  - Outcome: what a transition produced, including the division-by-zero case.
*/
package domain
