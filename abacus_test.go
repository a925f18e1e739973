package abacus_test

import (
	"context"
	"testing"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculator_Defaults(t *testing.T) {
	calc := abacus.New()
	assert.Equal(t, domain.Defaults(), calc.State())
	assert.Equal(t, "0", calc.Display().Current)
	assert.Equal(t, "", calc.Display().Previous)
}

func TestCalculator_DivisionByZero(t *testing.T) {
	var notified int
	calc := abacus.New(abacus.WithLifecycleHooks(domain.LifecycleHooks{
		OnDivisionByZero: func(ctx context.Context, e *domain.ComputeEvent) {
			notified++
		},
	}))

	calc.AppendDigit('5')
	calc.ChooseOperation(domain.OpDivide)
	calc.AppendDigit('0')
	outcome := calc.Compute()

	assert.Equal(t, domain.OutcomeDivisionByZero, outcome)
	assert.Equal(t, 1, notified)
	assert.Equal(t, "0", calc.State().CurrentOperand)
	assert.Equal(t, "", calc.State().PreviousOperand)
	assert.Equal(t, domain.OpNone, calc.State().Operation)
}

func TestCalculator_Percentage(t *testing.T) {
	calc := abacus.New()
	calc.AppendDigit('5')
	calc.AppendDigit('0')
	calc.CalculatePercentage()
	assert.Equal(t, "0.5", calc.State().CurrentOperand)

	calc = abacus.New(abacus.WithState(domain.State{
		CurrentOperand:  "10",
		PreviousOperand: "200",
		Operation:       domain.OpAdd,
	}))
	calc.CalculatePercentage()
	assert.Equal(t, "20", calc.State().CurrentOperand)
	assert.Equal(t, "200", calc.State().PreviousOperand)
	assert.Equal(t, domain.OpAdd, calc.State().Operation)
}

func TestCalculator_EditingKeys(t *testing.T) {
	calc := abacus.New()
	calc.AppendDigit('1')
	calc.AppendDecimalPoint()
	calc.AppendDecimalPoint()
	calc.AppendDigit('5')
	assert.Equal(t, "1.5", calc.State().CurrentOperand)

	calc.ToggleSign()
	assert.Equal(t, "-1.5", calc.State().CurrentOperand)

	calc.DeleteLastDigit()
	assert.Equal(t, "-1.", calc.State().CurrentOperand)

	calc.AppendDigit('?')
	assert.Equal(t, "-1.", calc.State().CurrentOperand, "invalid digit is ignored")

	calc.Reset()
	assert.Equal(t, domain.Defaults(), calc.State())
}

func TestCalculator_Press(t *testing.T) {
	calc := abacus.New()

	_, err := calc.Press(context.Background(), domain.Input{Command: "sqrt"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	outcome, err := calc.Press(context.Background(), domain.Input{Command: domain.CmdDigit, Digit: '9'})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNone, outcome)
	assert.Equal(t, "9", calc.State().CurrentOperand)
}
