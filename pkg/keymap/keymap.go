// Package keymap translates key names into calculator inputs.
//
// Single-character keys are matched exactly. Named keys ("Enter", "Escape",
// "Backspace", ...) are matched case-insensitively, the way browsers and
// terminals report them.
package keymap

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/abacus/pkg/domain"
)

// Action names accepted in configuration files.
const (
	ActionReset      = "reset"
	ActionDelete     = "delete"
	ActionDecimal    = "decimal"
	ActionToggleSign = "toggle_sign"
	ActionPercent    = "percent"
	ActionCompute    = "compute"
)

// Binding is one key and the input it produces.
type Binding struct {
	Key   string
	Input domain.Input
}

// Keymap holds the active key bindings.
type Keymap struct {
	bindings map[string]domain.Input
}

// Default returns the standard keypad bindings.
func Default() *Keymap {
	k := &Keymap{bindings: make(map[string]domain.Input)}
	for d := '0'; d <= '9'; d++ {
		k.bind(string(d), domain.Input{Command: domain.CmdDigit, Digit: d})
	}

	k.bind(".", domain.Input{Command: domain.CmdDecimal})

	k.bindOperator(domain.OpAdd, "+")
	k.bindOperator(domain.OpSubtract, "-", "−")
	k.bindOperator(domain.OpMultiply, "*", "×", "x")
	k.bindOperator(domain.OpDivide, "/", "÷")
	k.bindOperator(domain.OpModulo, "m")

	k.bindCommand(domain.CmdToggleSign, "±", "n")
	k.bindCommand(domain.CmdPercent, "%")
	k.bindCommand(domain.CmdCompute, "=", "Enter")
	k.bindCommand(domain.CmdReset, "Escape", "Delete", "c", "C")
	k.bindCommand(domain.CmdDelete, "Backspace")
	return k
}

// New returns the default bindings extended (or overridden) by extra, which
// maps key names to action names as accepted by ParseAction.
func New(extra map[string]string) (*Keymap, error) {
	k := Default()
	for key, action := range extra {
		if key == "" {
			return nil, fmt.Errorf("empty key bound to %q", action)
		}
		input, err := ParseAction(action)
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", key, err)
		}
		k.bind(key, input)
	}
	return k, nil
}

// ParseAction resolves an action name: one of the Action constants, an
// operator name ("add", "modulo", ...) or a single digit.
func ParseAction(name string) (domain.Input, error) {
	switch name {
	case ActionReset:
		return domain.Input{Command: domain.CmdReset}, nil
	case ActionDelete:
		return domain.Input{Command: domain.CmdDelete}, nil
	case ActionDecimal:
		return domain.Input{Command: domain.CmdDecimal}, nil
	case ActionToggleSign:
		return domain.Input{Command: domain.CmdToggleSign}, nil
	case ActionPercent:
		return domain.Input{Command: domain.CmdPercent}, nil
	case ActionCompute:
		return domain.Input{Command: domain.CmdCompute}, nil
	}

	if op := domain.Operator(name); op.Valid() {
		return domain.Input{Command: domain.CmdOperator, Operator: op}, nil
	}
	if len(name) == 1 && name[0] >= '0' && name[0] <= '9' {
		return domain.Input{Command: domain.CmdDigit, Digit: rune(name[0])}, nil
	}
	return domain.Input{}, fmt.Errorf("%w: action %q", domain.ErrInvalidInput, name)
}

// Lookup returns the input bound to key.
func (k *Keymap) Lookup(key string) (domain.Input, error) {
	if in, ok := k.bindings[normalize(key)]; ok {
		return in, nil
	}
	return domain.Input{}, fmt.Errorf("%w: %q", domain.ErrUnknownKey, key)
}

// Decode looks up every key in order.
func (k *Keymap) Decode(keys []string) ([]domain.Input, error) {
	inputs := make([]domain.Input, 0, len(keys))
	for _, key := range keys {
		in, err := k.Lookup(key)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// DecodeString treats every rune of s as one key press. Whitespace is skipped.
func (k *Keymap) DecodeString(s string) ([]domain.Input, error) {
	keys := make([]string, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		keys = append(keys, string(r))
	}
	return k.Decode(keys)
}

// Bindings lists all bindings grouped by command and sorted by key.
func (k *Keymap) Bindings() []Binding {
	out := make([]Binding, 0, len(k.bindings))
	for key, in := range k.bindings {
		out = append(out, Binding{Key: key, Input: in})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Input.Command != out[j].Input.Command {
			return out[i].Input.Command < out[j].Input.Command
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func (k *Keymap) bind(key string, in domain.Input) {
	k.bindings[normalize(key)] = in
}

func (k *Keymap) bindOperator(op domain.Operator, keys ...string) {
	for _, key := range keys {
		k.bind(key, domain.Input{Command: domain.CmdOperator, Operator: op})
	}
}

func (k *Keymap) bindCommand(cmd domain.Command, keys ...string) {
	for _, key := range keys {
		k.bind(key, domain.Input{Command: cmd})
	}
}

func normalize(key string) string {
	if utf8.RuneCountInString(key) > 1 {
		return strings.ToLower(key)
	}
	return key
}
