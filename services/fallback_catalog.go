package services

import (
	"fmt"
	"time"

	"github.com/urbanflow/urbanflow-backend/types"
)

// FallbackCatalog is the last line of the planning pipeline. When every
// routing engine returned nothing and generation failed too, it produces a
// small set of static, clearly-labelled offline estimates so the response is
// never empty.
type FallbackCatalog struct{}

func NewFallbackCatalog() *FallbackCatalog {
	return &FallbackCatalog{}
}

// Itineraries builds the static set fresh on every call so callers can mutate
// results freely. Each entry is marked as an offline estimate in its
// reasoning text and carries static-fallback provenance.
func (c *FallbackCatalog) Itineraries(destination string) []types.Itinerary {
	now := time.Now().Unix()

	return []types.Itinerary{
		{
			ID:              fmt.Sprintf("fallback-fast-%d", now),
			TotalTime:       18,
			StartTime:       "08:15",
			EndTime:         "08:33",
			Cost:            4.40,
			WalkingDistance: 450,
			Transfers:       1,
			CO2Savings:      920,
			IsAccessible:    true,
			IsPremium:       true,
			AIReasoning: types.Visible(fmt.Sprintf(
				"Offline estimate. Fastest option to %s, using the dedicated bus lane to skip main-avenue congestion.", destination)),
			Provenance: types.ProvenanceStaticFallback,
			Steps: []types.Step{
				{Mode: types.ModeWalk, Instruction: "Walk to Stop A", DurationMinutes: 5},
				{Mode: types.ModeBus, Instruction: "Express Bus 101", DurationMinutes: 10, LineName: "101", Color: "#3B82F6"},
				{Mode: types.ModeWalk, Instruction: "Arrive at destination", DurationMinutes: 3},
			},
		},
		{
			ID:              fmt.Sprintf("fallback-cheap-%d", now),
			TotalTime:       35,
			StartTime:       "08:10",
			EndTime:         "08:45",
			Cost:            2.20,
			WalkingDistance: 800,
			Transfers:       0,
			CO2Savings:      1100,
			IsAccessible:    false,
			AIReasoning: types.Visible(
				"Offline estimate. Saves around half the fare with a direct social-tariff local bus."),
			Provenance: types.ProvenanceStaticFallback,
			Steps: []types.Step{
				{Mode: types.ModeWalk, Instruction: "Walk to the local bus stop", DurationMinutes: 10},
				{Mode: types.ModeBus, Instruction: "Local Bus 404", DurationMinutes: 20, LineName: "404", Color: "#EF4444"},
				{Mode: types.ModeWalk, Instruction: "Arrive at destination", DurationMinutes: 5},
			},
		},
		{
			ID:              fmt.Sprintf("fallback-lowwalk-%d", now),
			TotalTime:       25,
			StartTime:       "08:15",
			EndTime:         "08:40",
			Cost:            4.40,
			WalkingDistance: 150,
			Transfers:       2,
			CO2Savings:      850,
			IsAccessible:    true,
			AIReasoning: types.Visible(
				"Offline estimate. Minimal physical effort, door to door via short synchronized transfers."),
			Provenance: types.ProvenanceStaticFallback,
			Steps: []types.Step{
				{Mode: types.ModeWalk, Instruction: "Walk to the stop around the corner", DurationMinutes: 2},
				{Mode: types.ModeBus, Instruction: "Feeder Bus", DurationMinutes: 8, LineName: "A1", Color: "#10B981"},
				{Mode: types.ModeMetro, Instruction: "Metro Line 1", DurationMinutes: 15, LineName: "L1", Color: "#3B82F6"},
			},
		},
	}
}
