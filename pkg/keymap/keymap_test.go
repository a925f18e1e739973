package keymap_test

import (
	"testing"

	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/keymap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Lookup(t *testing.T) {
	k := keymap.Default()

	tests := []struct {
		key  string
		want domain.Input
	}{
		{"7", domain.Input{Command: domain.CmdDigit, Digit: '7'}},
		{".", domain.Input{Command: domain.CmdDecimal}},
		{"+", domain.Input{Command: domain.CmdOperator, Operator: domain.OpAdd}},
		{"-", domain.Input{Command: domain.CmdOperator, Operator: domain.OpSubtract}},
		{"−", domain.Input{Command: domain.CmdOperator, Operator: domain.OpSubtract}},
		{"*", domain.Input{Command: domain.CmdOperator, Operator: domain.OpMultiply}},
		{"×", domain.Input{Command: domain.CmdOperator, Operator: domain.OpMultiply}},
		{"/", domain.Input{Command: domain.CmdOperator, Operator: domain.OpDivide}},
		{"÷", domain.Input{Command: domain.CmdOperator, Operator: domain.OpDivide}},
		{"m", domain.Input{Command: domain.CmdOperator, Operator: domain.OpModulo}},
		{"%", domain.Input{Command: domain.CmdPercent}},
		{"±", domain.Input{Command: domain.CmdToggleSign}},
		{"=", domain.Input{Command: domain.CmdCompute}},
		{"Enter", domain.Input{Command: domain.CmdCompute}},
		{"enter", domain.Input{Command: domain.CmdCompute}},
		{"Escape", domain.Input{Command: domain.CmdReset}},
		{"Delete", domain.Input{Command: domain.CmdReset}},
		{"Backspace", domain.Input{Command: domain.CmdDelete}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := k.Lookup(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, err := keymap.Default().Lookup("q")
	assert.ErrorIs(t, err, domain.ErrUnknownKey)
}

func TestDecodeString(t *testing.T) {
	inputs, err := keymap.Default().DecodeString("2 + 3 × 4 =")
	require.NoError(t, err)
	require.Len(t, inputs, 6)
	assert.Equal(t, domain.CmdDigit, inputs[0].Command)
	assert.Equal(t, domain.OpMultiply, inputs[3].Operator)
	assert.Equal(t, domain.CmdCompute, inputs[5].Command)

	_, err = keymap.Default().DecodeString("2?")
	assert.ErrorIs(t, err, domain.ErrUnknownKey)
}

func TestNew_ExtraBindings(t *testing.T) {
	k, err := keymap.New(map[string]string{
		"p":     "add",
		"r":     keymap.ActionReset,
		"Space": keymap.ActionCompute,
		"o":     "0",
	})
	require.NoError(t, err)

	in, err := k.Lookup("p")
	require.NoError(t, err)
	assert.Equal(t, domain.OpAdd, in.Operator)

	in, err = k.Lookup("space")
	require.NoError(t, err)
	assert.Equal(t, domain.CmdCompute, in.Command)

	in, err = k.Lookup("o")
	require.NoError(t, err)
	assert.Equal(t, '0', in.Digit)

	_, err = keymap.New(map[string]string{"z": "sqrt"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBindings_Sorted(t *testing.T) {
	bindings := keymap.Default().Bindings()
	require.NotEmpty(t, bindings)
	for i := 1; i < len(bindings); i++ {
		prev, cur := bindings[i-1], bindings[i]
		if prev.Input.Command == cur.Input.Command {
			assert.Less(t, prev.Key, cur.Key)
		} else {
			assert.Less(t, prev.Input.Command, cur.Input.Command)
		}
	}
}
