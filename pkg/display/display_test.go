package display_test

import (
	"testing"

	"github.com/aretw0/abacus/pkg/display"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestCompose(t *testing.T) {
	tests := []struct {
		name  string
		state domain.State
		want  display.Lines
	}{
		{
			name:  "Defaults",
			state: domain.Defaults(),
			want:  display.Lines{Previous: "", Current: "0"},
		},
		{
			name:  "Pending multiply",
			state: domain.State{CurrentOperand: "4", PreviousOperand: "5", Operation: domain.OpMultiply},
			want:  display.Lines{Previous: "5 ×", Current: "4"},
		},
		{
			name:  "Pending subtract",
			state: domain.State{CurrentOperand: "1", PreviousOperand: "9", Operation: domain.OpSubtract},
			want:  display.Lines{Previous: "9 −", Current: "1"},
		},
		{
			name:  "No operator omits suffix",
			state: domain.State{CurrentOperand: "1", PreviousOperand: "9"},
			want:  display.Lines{Previous: "9", Current: "1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, display.Compose(tt.state))
		})
	}
}

func TestGlyphs_ASCII(t *testing.T) {
	s := domain.State{CurrentOperand: "3", PreviousOperand: "10", Operation: domain.OpModulo}
	assert.Equal(t, "10 mod", display.ASCIIGlyphs.Compose(s).Previous)
	assert.Equal(t, "pow", display.Glyphs{}.Symbol(domain.Operator("pow")))
}
