// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package features builds the deterministic, model-ready feature tensors
// for each maintenance subsystem from raw telemetry windows. Builders are
// side-effect free: the input window is never mutated.
package features // import "github.com/fleetpulse/maintenance/internal/features"

import (
	"github.com/fleetpulse/maintenance/internal/telemetry"
)

// DPFSequenceLength is the sample count the DPF model consumes: one day of
// telemetry at the 5-minute interval.
const DPFSequenceLength = telemetry.SamplesPerDay

// DPFFeatureColumns is the exact column order of the DPF feature matrix.
var DPFFeatureColumns = []string{
	telemetry.ColDPFDeltaP,
	telemetry.ColDPFSootLoad,
	telemetry.ColDPFFailedRegenCount,
	telemetry.ColDPFPreTemp,
	telemetry.ColDPFRegenFlag,
	telemetry.ColEngineRPM,
	telemetry.ColEngineLoad,
	telemetry.ColSpeed,
}

// DPFSignalColumns are the raw channels summarized alongside a DPF
// prediction.
var DPFSignalColumns = []string{
	telemetry.ColDPFUpstreamPressure,
	telemetry.ColDPFDownstreamPressure,
	telemetry.ColDPFSootLoad,
	telemetry.ColDPFFailedRegenCount,
	telemetry.ColDPFPreTemp,
	telemetry.ColDPFPostTemp,
	telemetry.ColExhaustBackpressure,
	telemetry.ColEngineRPM,
	telemetry.ColEngineLoad,
	telemetry.ColSpeed,
}

// DPFDeltaP derives the differential pressure across the filter. The
// convention is upstream minus downstream throughout this codebase; health
// scoring works on the absolute value so it is insensitive to the sign.
func DPFDeltaP(w telemetry.Window) ([]float64, error) {
	if dp, ok := w.Column(telemetry.ColDPFDeltaP); ok {
		return dp, nil
	}
	up, ok := w.Column(telemetry.ColDPFUpstreamPressure)
	if !ok {
		return nil, &MissingColumnError{Subsystem: "dpf", Column: telemetry.ColDPFUpstreamPressure}
	}
	down, ok := w.Column(telemetry.ColDPFDownstreamPressure)
	if !ok {
		return nil, &MissingColumnError{Subsystem: "dpf", Column: telemetry.ColDPFDownstreamPressure}
	}
	dp := make([]float64, len(up))
	for i := range up {
		dp[i] = up[i] - down[i]
	}
	return dp, nil
}

// BuildDPF produces the (288, 8) DPF feature matrix from the trailing day
// of telemetry.
func BuildDPF(w telemetry.Window) ([][]float64, error) {
	if w.Len() < DPFSequenceLength {
		return nil, &InsufficientDataError{Subsystem: "dpf", Need: DPFSequenceLength, Got: w.Len()}
	}
	win := w.Last(DPFSequenceLength)

	deltaP, err := DPFDeltaP(win)
	if err != nil {
		return nil, err
	}

	cols := make(map[string][]float64, len(DPFFeatureColumns))
	cols[telemetry.ColDPFDeltaP] = deltaP
	for _, name := range DPFFeatureColumns[1:] {
		vals, ok := win.Column(name)
		if !ok {
			return nil, &MissingColumnError{Subsystem: "dpf", Column: name}
		}
		cols[name] = vals
	}

	return assembleMatrix(win.Len(), DPFFeatureColumns, cols), nil
}

// assembleMatrix lays out named column slices as a row-major matrix in the
// given column order.
func assembleMatrix(rows int, order []string, cols map[string][]float64) [][]float64 {
	matrix := make([][]float64, rows)
	for i := range matrix {
		row := make([]float64, len(order))
		for j, name := range order {
			row[j] = cols[name][i]
		}
		matrix[i] = row
	}
	return matrix
}
