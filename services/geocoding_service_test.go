package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urbanflow/urbanflow-backend/config"
	apperrors "github.com/urbanflow/urbanflow-backend/errors"
)

func newGeocodingService(primaryURL, nominatimURL string) *GeocodingService {
	svc := NewGeocodingService(config.GeocodingConfig{
		TimeoutSeconds: 5,
		UserAgent:      "UrbanFlowTest/1.0",
	}, nil)
	svc.geocodeBaseURL = primaryURL
	svc.nominatimBaseURL = nominatimURL
	return svc
}

func TestResolveDestination_BlankInputRejectedBeforeAnyCall(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	svc := newGeocodingService(server.URL, server.URL)

	for _, input := range []string{"", "   ", "\t\n"} {
		_, err := svc.ResolveDestination(context.Background(), input)

		require.Error(t, err)
		appErr, ok := err.(*apperrors.AppError)
		require.True(t, ok)
		assert.Equal(t, apperrors.ValidationError, appErr.Type)
	}
	assert.Zero(t, calls, "blank input must not reach the network")
}

func TestResolveDestination_PrimarySuccess(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Paulista Avenue", r.URL.Query().Get("name"))
		_, _ = w.Write([]byte(`{"results":[{"latitude":-23.5615,"longitude":-46.6559}]}`))
	}))
	defer primary.Close()

	svc := newGeocodingService(primary.URL, "http://127.0.0.1:1")

	coords, err := svc.ResolveDestination(context.Background(), "  Paulista Avenue  ")

	require.NoError(t, err)
	assert.InDelta(t, -23.5615, coords.Lat, 0.0001)
	assert.InDelta(t, -46.6559, coords.Lng, 0.0001)
}

func TestResolveDestination_FallsBackToNominatim(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer primary.Close()

	var gotUserAgent string
	nominatim := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		assert.Equal(t, "Ibirapuera", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`[{"lat":"-23.5874","lon":"-46.6576"}]`))
	}))
	defer nominatim.Close()

	svc := newGeocodingService(primary.URL, nominatim.URL)

	coords, err := svc.ResolveDestination(context.Background(), "Ibirapuera")

	require.NoError(t, err)
	assert.Equal(t, "UrbanFlowTest/1.0", gotUserAgent, "Nominatim requires a custom User-Agent")
	assert.InDelta(t, -23.5874, coords.Lat, 0.0001)
	assert.InDelta(t, -46.6576, coords.Lng, 0.0001)
}

func TestResolveDestination_BothBackendsFail(t *testing.T) {
	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer empty.Close()

	nominatimEmpty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer nominatimEmpty.Close()

	svc := newGeocodingService(empty.URL, nominatimEmpty.URL)

	_, err := svc.ResolveDestination(context.Background(), "nowhere that exists")

	require.Error(t, err)
	assert.True(t, apperrors.IsDestinationNotFound(err))
}

func TestExtractIntent(t *testing.T) {
	testCases := []struct {
		name     string
		client   *fakeGenAIClient
		input    string
		expected string
	}{
		{
			name:     "nil client returns verbatim",
			client:   nil,
			input:    "take me to Paulista at 6pm",
			expected: "take me to Paulista at 6pm",
		},
		{
			name:     "destination extracted",
			client:   &fakeGenAIClient{response: `{"destination":"Paulista Avenue","time":"18:00","type":"arrival"}`},
			input:    "take me to Paulista at 6pm",
			expected: "Paulista Avenue",
		},
		{
			name:     "fenced output accepted",
			client:   &fakeGenAIClient{response: "```json\n{\"destination\":\"Sé Cathedral\"}\n```"},
			input:    "how do I get to the cathedral",
			expected: "Sé Cathedral",
		},
		{
			name:     "backend error returns verbatim",
			client:   &fakeGenAIClient{err: assert.AnError},
			input:    "somewhere nice",
			expected: "somewhere nice",
		},
		{
			name:     "invalid json returns verbatim",
			client:   &fakeGenAIClient{response: "not json"},
			input:    "somewhere nice",
			expected: "somewhere nice",
		},
		{
			name:     "blank destination returns verbatim",
			client:   &fakeGenAIClient{response: `{"destination":"  "}`},
			input:    "somewhere nice",
			expected: "somewhere nice",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewGeocodingService(config.GeocodingConfig{TimeoutSeconds: 5, UserAgent: "t"}, nil)
			if tc.client != nil {
				svc.ai = tc.client
			}

			assert.Equal(t, tc.expected, svc.ExtractIntent(context.Background(), tc.input))
		})
	}
}
