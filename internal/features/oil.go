// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package features // import "github.com/fleetpulse/maintenance/internal/features"

import (
	"math/rand"

	"github.com/fleetpulse/maintenance/internal/telemetry"
)

// OilSequenceLength is the sample count the oil model consumes: seven days
// of telemetry.
const OilSequenceLength = telemetry.SamplesPerWeek

// oilSynthesisSeed fixes the noise source used when synthesizing missing
// oil columns, keeping the pipeline reproducible across runs.
const oilSynthesisSeed = 1

// OilFeatureColumns is the exact column order of the oil feature matrix:
// 6 raw channels followed by 8 engineered aggregates.
var OilFeatureColumns = []string{
	telemetry.ColOilLevel,
	telemetry.ColEngineRPM,
	telemetry.ColEngineLoad,
	telemetry.ColFuelConsumption,
	telemetry.ColExhaustBackpressure,
	telemetry.ColBoostPressure,
	telemetry.ColOilLevelChange,
	telemetry.ColOilSlope,
	telemetry.ColRegenFreq,
	telemetry.ColFailedRegenDelta,
	telemetry.ColBoostStd,
	telemetry.ColFuelTrend,
	telemetry.ColIdleRatio,
	telemetry.ColBackpressureMean,
}

// oilRequiredColumns must be present after synthesis.
var oilRequiredColumns = []string{
	telemetry.ColOilLevel,
	telemetry.ColEngineRPM,
	telemetry.ColEngineLoad,
	telemetry.ColFuelConsumption,
	telemetry.ColExhaustBackpressure,
	telemetry.ColBoostPressure,
	telemetry.ColDPFRegenFlag,
	telemetry.ColDPFFailedRegenCount,
	telemetry.ColIdleSeconds,
}

// OilFeatures bundles the oil feature matrix with the list of columns that
// had to be approximated rather than measured.
type OilFeatures struct {
	Matrix [][]float64
	// SynthesizedColumns names channels that were absent from the window
	// and reconstructed via linear heuristics from load/RPM/DPF pressure.
	// Values in these channels are approximations, not sensor readings.
	SynthesizedColumns []string
}

// BuildOil synthesizes missing fuel/backpressure/boost channels, then
// produces the (2016, 14) oil feature matrix from the trailing week of
// telemetry. Aggregate features are broadcast as constants across the
// window; the level-change feature is per row relative to the first sample.
func BuildOil(w telemetry.Window) (*OilFeatures, error) {
	cols, synthesized, err := synthesizeOilColumns(w)
	if err != nil {
		return nil, err
	}
	if w.Len() < OilSequenceLength {
		return nil, &InsufficientDataError{Subsystem: "oil", Need: OilSequenceLength, Got: w.Len()}
	}

	// Trim raw columns to the trailing sequence before engineering so the
	// aggregates describe the modeled week, not the whole history.
	start := w.Len() - OilSequenceLength
	for name, vals := range cols {
		cols[name] = vals[start:]
	}
	n := OilSequenceLength

	level := cols[telemetry.ColOilLevel]
	levelChange := make([]float64, n)
	for i, v := range level {
		levelChange[i] = v - level[0]
	}
	cols[telemetry.ColOilLevelChange] = levelChange

	cols[telemetry.ColOilSlope] = broadcast(Slope(level), n)

	var regenSum float64
	for _, v := range cols[telemetry.ColDPFRegenFlag] {
		regenSum += v
	}
	cols[telemetry.ColRegenFreq] = broadcast(regenSum, n)

	failed := cols[telemetry.ColDPFFailedRegenCount]
	cols[telemetry.ColFailedRegenDelta] = broadcast(failed[n-1]-failed[0], n)

	cols[telemetry.ColBoostStd] = broadcast(SampleStdDev(cols[telemetry.ColBoostPressure]), n)
	cols[telemetry.ColFuelTrend] = broadcast(Slope(cols[telemetry.ColFuelConsumption]), n)

	var idleCount float64
	for _, v := range cols[telemetry.ColIdleSeconds] {
		if v > 0 {
			idleCount++
		}
	}
	cols[telemetry.ColIdleRatio] = broadcast(idleCount/float64(n), n)

	cols[telemetry.ColBackpressureMean] = broadcast(Mean(cols[telemetry.ColExhaustBackpressure]), n)

	return &OilFeatures{
		Matrix:             assembleMatrix(n, OilFeatureColumns, cols),
		SynthesizedColumns: synthesized,
	}, nil
}

// synthesizeOilColumns extracts the raw oil channels, reconstructing the
// ones the fleet gateway may not report. The heuristics are fixed linear
// maps with seeded gaussian noise; the result is deterministic for a given
// window and is reported to the caller as an approximation.
func synthesizeOilColumns(w telemetry.Window) (map[string][]float64, []string, error) {
	cols := make(map[string][]float64, len(oilRequiredColumns))
	var synthesized []string
	rng := rand.New(rand.NewSource(oilSynthesisSeed))

	load, hasLoad := w.Column(telemetry.ColEngineLoad)
	rpm, hasRPM := w.Column(telemetry.ColEngineRPM)
	upstream, hasUpstream := w.Column(telemetry.ColDPFUpstreamPressure)

	for _, name := range oilRequiredColumns {
		if vals, ok := w.Column(name); ok {
			cols[name] = vals
			continue
		}
		vals := make([]float64, w.Len())
		switch name {
		case telemetry.ColFuelConsumption:
			if !hasLoad || !hasRPM {
				return nil, nil, &MissingColumnError{Subsystem: "oil", Column: name}
			}
			for i := range vals {
				vals[i] = load[i]*0.35 + rpm[i]*0.005 + rng.NormFloat64()*0.5
			}
		case telemetry.ColExhaustBackpressure:
			if !hasUpstream {
				return nil, nil, &MissingColumnError{Subsystem: "oil", Column: name}
			}
			for i := range vals {
				vals[i] = upstream[i]*0.8 + rng.NormFloat64()*0.3
			}
		case telemetry.ColBoostPressure:
			if !hasLoad || !hasRPM {
				return nil, nil, &MissingColumnError{Subsystem: "oil", Column: name}
			}
			for i := range vals {
				vals[i] = load[i]*1.5 + rpm[i]*0.02 + rng.NormFloat64()*1.0
			}
		default:
			return nil, nil, &MissingColumnError{Subsystem: "oil", Column: name}
		}
		cols[name] = vals
		synthesized = append(synthesized, name)
	}
	return cols, synthesized, nil
}

func broadcast(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
