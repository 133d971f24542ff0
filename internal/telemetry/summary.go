// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package telemetry // import "github.com/fleetpulse/maintenance/internal/telemetry"

import "math"

// SignalSummary condenses one sensor channel over a window for the
// downstream consumer of a unified prediction.
type SignalSummary struct {
	Value float64 `json:"value"` // most recent reading
	Mean  float64 `json:"mean"`
	Max   float64 `json:"max"`
	Min   float64 `json:"min"`
}

// SummarizeSignals builds per-channel summaries for the requested columns.
// Channels absent from the window are skipped, not errored: summaries are
// informational, never load-bearing for the decision.
func (w Window) SummarizeSignals(cols []string) map[string]SignalSummary {
	signals := make(map[string]SignalSummary)
	for _, col := range cols {
		vals, ok := w.Column(col)
		if !ok {
			continue
		}
		sum := SignalSummary{
			Value: round3(vals[len(vals)-1]),
			Mean:  round3(mean(vals)),
			Max:   round3(maxOf(vals)),
			Min:   round3(minOf(vals)),
		}
		signals[col] = sum
	}
	return signals
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func maxOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
