package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/urbanflow/urbanflow-backend/types"
)

func gateFixture() []types.Itinerary {
	delay := 7
	return []types.Itinerary{
		{
			ID:                  "r1",
			TotalTime:           18,
			Cost:                4.40,
			AIReasoning:         types.Visible("Fastest via the express lane."),
			TrafficDelayMinutes: &delay,
			Steps:               []types.Step{{Mode: types.ModeBus, Instruction: "Express 101", DurationMinutes: 10}},
		},
		{
			ID:          "r2",
			TotalTime:   35,
			Cost:        2.20,
			AIReasoning: types.Visible("Cheapest direct bus."),
			Steps:       []types.Step{{Mode: types.ModeBus, Instruction: "Local 404", DurationMinutes: 20}},
		},
	}
}

func TestPremiumGate_FreeUserRedaction(t *testing.T) {
	gate := NewPremiumGate()

	result := gate.ApplyEntitlement(gateFixture(), false)

	assert.Len(t, result, 2)
	for _, it := range result {
		assert.True(t, it.AIReasoning.Locked)
		assert.Empty(t, it.AIReasoning.Text)
		assert.Nil(t, it.TrafficDelayMinutes)
	}

	// Structural facts survive redaction.
	assert.Equal(t, 18, result[0].TotalTime)
	assert.Equal(t, 4.40, result[0].Cost)
	assert.Len(t, result[0].Steps, 1)
}

func TestPremiumGate_PremiumUserUntouched(t *testing.T) {
	gate := NewPremiumGate()

	input := gateFixture()
	result := gate.ApplyEntitlement(input, true)

	assert.Equal(t, input, result)
	assert.False(t, result[0].AIReasoning.Locked)
	assert.NotNil(t, result[0].TrafficDelayMinutes)
}

func TestPremiumGate_Idempotent(t *testing.T) {
	gate := NewPremiumGate()

	once := gate.ApplyEntitlement(gateFixture(), false)
	twice := gate.ApplyEntitlement(once, false)

	assert.Equal(t, once, twice)
}

func TestPremiumGate_DoesNotMutateInput(t *testing.T) {
	gate := NewPremiumGate()

	input := gateFixture()
	_ = gate.ApplyEntitlement(input, false)

	assert.False(t, input[0].AIReasoning.Locked)
	assert.NotNil(t, input[0].TrafficDelayMinutes)
}
