package valueobjects

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFare(t *testing.T) {
	tests := []struct {
		name        string
		amount      decimal.Decimal
		shouldError bool
	}{
		{name: "valid amount", amount: decimal.NewFromFloat(4.40)},
		{name: "zero", amount: decimal.Zero},
		{name: "negative", amount: decimal.NewFromFloat(-0.01), shouldError: true},
		{name: "too many decimal places", amount: decimal.NewFromFloat(1.505), shouldError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fare, err := NewFare(tt.amount)
			if tt.shouldError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.True(t, tt.amount.Equal(decimal.NewFromFloat(fare.Amount())))
			}
		})
	}
}

func TestNewFareFromFloat_Rounds(t *testing.T) {
	fare, err := NewFareFromFloat(1.505)
	require.NoError(t, err)
	assert.Equal(t, "1.51", fare.String())

	_, err = NewFareFromFloat(-1.0)
	assert.Error(t, err)
}

func TestFareArithmetic(t *testing.T) {
	perLeg, err := NewFareFromFloat(1.50)
	require.NoError(t, err)

	// Decimal arithmetic keeps surcharge sums exact.
	twoLegs := perLeg.MulInt(2)
	assert.Equal(t, 3.00, twoLegs.Amount())
	assert.Equal(t, "3.00", twoLegs.String())

	total := twoLegs.Add(perLeg)
	assert.Equal(t, "4.50", total.String())
}

func TestFareMulInt_NonPositiveCount(t *testing.T) {
	perLeg, err := NewFareFromFloat(1.50)
	require.NoError(t, err)

	assert.True(t, perLeg.MulInt(0).IsZero())
	assert.True(t, perLeg.MulInt(-3).IsZero())
	assert.True(t, ZeroFare().IsZero())
}
