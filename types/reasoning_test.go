package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIReasoning_MarshalVisible(t *testing.T) {
	payload, err := json.Marshal(Visible("Fastest option via the express lane."))

	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"Fastest option via the express lane.","locked":false}`, string(payload))
}

func TestAIReasoning_MarshalLockedCarriesNoText(t *testing.T) {
	r := LockedReasoning()
	r.Text = "should never leak"

	payload, err := json.Marshal(r)

	require.NoError(t, err)
	assert.JSONEq(t, `{"locked":true}`, string(payload))
}

func TestAIReasoning_UnmarshalLockedDropsText(t *testing.T) {
	var r AIReasoning
	require.NoError(t, json.Unmarshal([]byte(`{"text":"leaked","locked":true}`), &r))

	assert.True(t, r.Locked)
	assert.Empty(t, r.Text)
}

func TestAIReasoning_RoundTrip(t *testing.T) {
	original := Visible("Cheapest direct bus.")

	payload, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded AIReasoning
	require.NoError(t, json.Unmarshal(payload, &decoded))

	assert.Equal(t, original, decoded)
}
