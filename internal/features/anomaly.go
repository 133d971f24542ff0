// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package features // import "github.com/fleetpulse/maintenance/internal/features"

import (
	"github.com/fleetpulse/maintenance/internal/telemetry"
)

// AnomalyWindowSize is the number of consecutive samples reduced into one
// anomaly feature vector.
const AnomalyWindowSize = 6

// AnomalyRawColumns are the 16 raw channels the anomaly detector reads.
var AnomalyRawColumns = []string{
	telemetry.ColEngineRPM,
	telemetry.ColEngineLoad,
	telemetry.ColSpeed,
	telemetry.ColDPFUpstreamPressure,
	telemetry.ColDPFDownstreamPressure,
	telemetry.ColDPFPreTemp,
	telemetry.ColDPFPostTemp,
	telemetry.ColNOxUp,
	telemetry.ColNOxDown,
	telemetry.ColSCRInletTemp,
	telemetry.ColSCROutletTemp,
	telemetry.ColDEFInjectorDuty,
	telemetry.ColDEFPumpPressure,
	telemetry.ColDEFPumpCurrent,
	telemetry.ColDEFQuality,
	telemetry.ColCANDropRate,
}

// anomalyPhysicsColumns are the 5 derived ratio/delta features appended to
// the raw channels, 21 columns total per sample.
var anomalyPhysicsColumns = []string{
	"feat_dpf_delta",
	"feat_nox_ratio",
	"feat_pressure_per_duty",
	"feat_current_per_pressure",
	"feat_scr_temp_delta",
}

// BuildAnomaly constructs overlapping sliding windows of 6 samples over the
// 21-column physics-augmented matrix and reduces each window to a
// 42-dimensional vector: per-column mean concatenated with per-column
// sample standard deviation. A window of n rows yields n-5 vectors.
func BuildAnomaly(w telemetry.Window) ([][]float64, error) {
	if w.Len() < AnomalyWindowSize {
		return nil, &InsufficientDataError{Subsystem: "anomaly", Need: AnomalyWindowSize, Got: w.Len()}
	}

	raw := make(map[string][]float64, len(AnomalyRawColumns))
	for _, name := range AnomalyRawColumns {
		vals, ok := w.Column(name)
		if !ok {
			return nil, &MissingColumnError{Subsystem: "anomaly", Column: name}
		}
		raw[name] = vals
	}

	n := w.Len()
	physics := anomalyPhysics(raw, n)
	numCols := len(AnomalyRawColumns) + len(anomalyPhysicsColumns)

	// Column-major layout so per-window mean/std reductions are contiguous.
	columns := make([][]float64, 0, numCols)
	for _, name := range AnomalyRawColumns {
		columns = append(columns, raw[name])
	}
	for _, name := range anomalyPhysicsColumns {
		columns = append(columns, physics[name])
	}

	numWindows := n - AnomalyWindowSize + 1
	out := make([][]float64, numWindows)
	for i := 0; i < numWindows; i++ {
		vec := make([]float64, 2*numCols)
		for j, col := range columns {
			slice := col[i : i+AnomalyWindowSize]
			vec[j] = Mean(slice)
			vec[numCols+j] = SampleStdDev(slice)
		}
		out[i] = vec
	}
	return out, nil
}

// anomalyPhysics derives the ratio/delta features; denominators carry the
// epsilon guard so degenerate duty cycles or pressures cannot produce Inf.
func anomalyPhysics(raw map[string][]float64, n int) map[string][]float64 {
	physics := map[string][]float64{}
	for _, name := range anomalyPhysicsColumns {
		physics[name] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		physics["feat_dpf_delta"][i] = raw[telemetry.ColDPFUpstreamPressure][i] - raw[telemetry.ColDPFDownstreamPressure][i]
		physics["feat_nox_ratio"][i] = raw[telemetry.ColNOxDown][i] / (raw[telemetry.ColNOxUp][i] + Epsilon)
		physics["feat_pressure_per_duty"][i] = raw[telemetry.ColDEFPumpPressure][i] / (raw[telemetry.ColDEFInjectorDuty][i] + Epsilon)
		physics["feat_current_per_pressure"][i] = raw[telemetry.ColDEFPumpCurrent][i] / (raw[telemetry.ColDEFPumpPressure][i] + Epsilon)
		physics["feat_scr_temp_delta"][i] = raw[telemetry.ColSCRInletTemp][i] - raw[telemetry.ColSCROutletTemp][i]
	}
	return physics
}
