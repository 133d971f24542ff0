// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetpulse/maintenance/internal/telemetry"
)

func oilColumns() map[string]func(int) float64 {
	return map[string]func(int) float64{
		telemetry.ColOilLevel:            linear(5.0, 0.0001),
		telemetry.ColEngineRPM:           constant(1500),
		telemetry.ColEngineLoad:          constant(45),
		telemetry.ColFuelConsumption:     linear(18, 0.001),
		telemetry.ColExhaustBackpressure: constant(8),
		telemetry.ColBoostPressure:       constant(120),
		telemetry.ColDPFRegenFlag:        func(i int) float64 { return float64(i % 2) },
		telemetry.ColDPFFailedRegenCount: linear(0, 0.01),
		telemetry.ColIdleSeconds:         func(i int) float64 { return float64(i % 4) },
	}
}

func TestBuildOilShape(t *testing.T) {
	w := makeWindow(OilSequenceLength, oilColumns())

	feats, err := BuildOil(w)
	require.NoError(t, err)
	require.Len(t, feats.Matrix, OilSequenceLength)
	require.Len(t, feats.Matrix[0], len(OilFeatureColumns))
	assert.Empty(t, feats.SynthesizedColumns, "all channels measured")
}

func TestBuildOilEngineeredFeatures(t *testing.T) {
	w := makeWindow(OilSequenceLength, oilColumns())

	feats, err := BuildOil(w)
	require.NoError(t, err)

	first := feats.Matrix[0]
	last := feats.Matrix[len(feats.Matrix)-1]

	// Level change is per row, relative to the first sample of the window.
	assert.Zero(t, first[6])
	assert.InDelta(t, 0.0001*float64(OilSequenceLength-1), last[6], 1e-9)

	// Aggregates are broadcast as constants.
	assert.Equal(t, first[7], last[7], "oil slope")
	assert.InDelta(t, 0.0001, first[7], 1e-9)
	assert.Equal(t, 1008.0, first[8], "regen events: every other sample")
	assert.InDelta(t, 0.01*float64(OilSequenceLength-1), first[9], 1e-9, "failed regen delta")
	assert.Zero(t, first[10], "constant boost has no deviation")
	assert.InDelta(t, 0.001, first[11], 1e-9, "fuel trend")
	assert.Equal(t, 0.75, first[12], "three of four samples idle")
	assert.Equal(t, 8.0, first[13], "backpressure mean")
}

func TestBuildOilSynthesisIsDeterministic(t *testing.T) {
	cols := oilColumns()
	delete(cols, telemetry.ColFuelConsumption)
	delete(cols, telemetry.ColBoostPressure)
	cols[telemetry.ColDPFUpstreamPressure] = constant(10)
	delete(cols, telemetry.ColExhaustBackpressure)
	w := makeWindow(OilSequenceLength, cols)

	first, err := BuildOil(w)
	require.NoError(t, err)
	second, err := BuildOil(w)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		telemetry.ColFuelConsumption,
		telemetry.ColExhaustBackpressure,
		telemetry.ColBoostPressure,
	}, first.SynthesizedColumns)

	// Seeded noise: two runs over the same window are identical.
	assert.Equal(t, first.Matrix, second.Matrix)
}

func TestBuildOilSynthesisNeedsSourceChannels(t *testing.T) {
	cols := oilColumns()
	delete(cols, telemetry.ColExhaustBackpressure)
	// No DPF upstream pressure to derive backpressure from.
	w := makeWindow(OilSequenceLength, cols)

	_, err := BuildOil(w)
	var missing *MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, telemetry.ColExhaustBackpressure, missing.Column)
}

func TestBuildOilInsufficientData(t *testing.T) {
	w := makeWindow(100, oilColumns())

	_, err := BuildOil(w)
	var insufficient *InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, OilSequenceLength, insufficient.Need)
}
