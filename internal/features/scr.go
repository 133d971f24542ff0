// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package features // import "github.com/fleetpulse/maintenance/internal/features"

import (
	"github.com/fleetpulse/maintenance/internal/telemetry"
)

// SCRSequenceLength is the sample count the SCR model consumes: seven days
// of telemetry.
const SCRSequenceLength = telemetry.SamplesPerWeek

// SCRFeatureColumns is the exact column order of the SCR feature matrix.
var SCRFeatureColumns = []string{
	telemetry.ColNOxConversion,
	telemetry.ColNOxDivergence,
	telemetry.ColSCRTempDelta,
	telemetry.ColDEFQuality,
	telemetry.ColDEFInjectorDuty,
	telemetry.ColEngineLoad,
	telemetry.ColSpeed,
	telemetry.ColNOxConvSlope7d,
	telemetry.ColNOxConvSlope30d,
	telemetry.ColAvgLoad7d,
	telemetry.ColAvgSpeed7d,
}

// scrRawColumns are the raw channels the SCR engineering step reads.
var scrRawColumns = []string{
	telemetry.ColNOxConversion,
	telemetry.ColNOxUp,
	telemetry.ColNOxDown,
	telemetry.ColSCRInletTemp,
	telemetry.ColSCROutletTemp,
	telemetry.ColDEFQuality,
	telemetry.ColDEFInjectorDuty,
	telemetry.ColEngineLoad,
	telemetry.ColSpeed,
}

// BuildSCR engineers the SCR feature set over the full window and returns
// the trailing (2016, 11) matrix. Rolling features are computed per vehicle
// partition; rows without a complete rolling window are forward- then
// backward-filled, then zeroed, so the row count is preserved rather than
// trimmed.
func BuildSCR(w telemetry.Window) ([][]float64, error) {
	for _, name := range scrRawColumns {
		if !w.HasColumn(name) {
			return nil, &MissingColumnError{Subsystem: "scr", Column: name}
		}
	}
	if w.Len() < SCRSequenceLength {
		return nil, &InsufficientDataError{Subsystem: "scr", Need: SCRSequenceLength, Got: w.Len()}
	}

	cols := make(map[string][]float64, len(SCRFeatureColumns))
	for _, name := range []string{
		telemetry.ColNOxConversion,
		telemetry.ColDEFQuality,
		telemetry.ColDEFInjectorDuty,
		telemetry.ColEngineLoad,
		telemetry.ColSpeed,
	} {
		vals, _ := w.Column(name)
		cols[name] = vals
	}

	noxUp, _ := w.Column(telemetry.ColNOxUp)
	noxDown, _ := w.Column(telemetry.ColNOxDown)
	divergence := make([]float64, w.Len())
	for i := range divergence {
		divergence[i] = noxUp[i] - noxDown[i]
	}
	cols[telemetry.ColNOxDivergence] = divergence

	inlet, _ := w.Column(telemetry.ColSCRInletTemp)
	outlet, _ := w.Column(telemetry.ColSCROutletTemp)
	tempDelta := make([]float64, w.Len())
	for i := range tempDelta {
		tempDelta[i] = inlet[i] - outlet[i]
	}
	cols[telemetry.ColSCRTempDelta] = tempDelta

	cols[telemetry.ColNOxConvSlope7d] = groupedRolling(w, telemetry.ColNOxConversion, func(vals []float64) []float64 {
		return rollingSlope(vals, telemetry.SamplesPerWeek)
	})
	cols[telemetry.ColNOxConvSlope30d] = groupedRolling(w, telemetry.ColNOxConversion, func(vals []float64) []float64 {
		return rollingSlope(vals, telemetry.SamplesPerMonth)
	})
	cols[telemetry.ColAvgLoad7d] = groupedRolling(w, telemetry.ColEngineLoad, func(vals []float64) []float64 {
		return rollingMean(vals, telemetry.SamplesPerWeek)
	})
	cols[telemetry.ColAvgSpeed7d] = groupedRolling(w, telemetry.ColSpeed, func(vals []float64) []float64 {
		return rollingMean(vals, telemetry.SamplesPerWeek)
	})

	// Trim every column to the trailing sequence in lockstep.
	start := w.Len() - SCRSequenceLength
	for name, vals := range cols {
		cols[name] = vals[start:]
	}
	return assembleMatrix(SCRSequenceLength, SCRFeatureColumns, cols), nil
}

// groupedRolling applies a rolling transform independently to each vehicle
// partition, walks the transformed series back into the original row order,
// then fills the incomplete-window gaps. Partitions preserve in-partition
// row order, so a per-vehicle cursor recovers the original positions.
func groupedRolling(w telemetry.Window, col string, transform func([]float64) []float64) []float64 {
	transformed := make(map[string][]float64)
	for _, part := range w.Partitions() {
		vals, _ := part.Column(col)
		transformed[part.Rows[0].VehicleID] = transform(vals)
	}
	out := make([]float64, w.Len())
	cursor := make(map[string]int)
	for i, r := range w.Rows {
		out[i] = transformed[r.VehicleID][cursor[r.VehicleID]]
		cursor[r.VehicleID]++
	}
	return fillSeries(out)
}
