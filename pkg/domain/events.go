package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventInput          EventType = "input"
	EventCompute        EventType = "compute"
	EventDivisionByZero EventType = "division_by_zero"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// InputEvent is emitted for every applied key press.
type InputEvent struct {
	EventBase
	Input Input `json:"input"`
	State State `json:"state"`
}

// ComputeEvent is emitted when a pending operation is evaluated (or fails on zero).
type ComputeEvent struct {
	EventBase
	Operator Operator `json:"operator"`
	Previous string   `json:"previous"`
	Current  string   `json:"current"`
	Result   string   `json:"result,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnInput          func(context.Context, *InputEvent)
	OnCompute        func(context.Context, *ComputeEvent)
	OnDivisionByZero func(context.Context, *ComputeEvent)
}
