package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatFareEstimator(t *testing.T) {
	estimator, err := NewFlatFareEstimator(1.50)
	require.NoError(t, err)

	testCases := []struct {
		nonWalkLegs int
		expected    float64
	}{
		{0, 0.0},
		{1, 1.50},
		{2, 3.00},
		{4, 6.00},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, estimator.Estimate(tc.nonWalkLegs).Amount(),
			"%d non-walk legs", tc.nonWalkLegs)
	}
}

func TestNewFlatFareEstimator_RejectsNegativeSurcharge(t *testing.T) {
	_, err := NewFlatFareEstimator(-1.0)
	assert.Error(t, err)
}
