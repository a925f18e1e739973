package domain

import "errors"

// DivisionByZeroMessage is the notification shown when a division by zero resets the calculator.
const DivisionByZeroMessage = "Cannot divide by zero!"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrUnknownKey is returned when a key has no binding in the keymap.
var ErrUnknownKey = errors.New("unknown key")

// ErrInvalidInput is returned when a stored or transmitted value cannot be decoded.
var ErrInvalidInput = errors.New("invalid input")

// ErrDivisionByZero lets hosts that speak in errors report OutcomeDivisionByZero.
var ErrDivisionByZero = errors.New("division by zero")
