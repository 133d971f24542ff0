// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package features

import (
	"time"

	"github.com/fleetpulse/maintenance/internal/telemetry"
)

// makeWindow builds an n-row single-vehicle window; each column's value at
// row i comes from its generator.
func makeWindow(n int, cols map[string]func(i int) float64) telemetry.Window {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]telemetry.Row, n)
	for i := 0; i < n; i++ {
		values := make(map[string]float64, len(cols))
		for name, gen := range cols {
			values[name] = gen(i)
		}
		rows[i] = telemetry.Row{
			VehicleID: "VH1",
			Timestamp: base.Add(time.Duration(i) * telemetry.SamplingInterval),
			Values:    values,
		}
	}
	return telemetry.Window{Rows: rows}
}

func constant(v float64) func(int) float64 {
	return func(int) float64 { return v }
}

func linear(start, step float64) func(int) float64 {
	return func(i int) float64 { return start + step*float64(i) }
}
