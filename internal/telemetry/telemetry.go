// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package telemetry defines the raw vehicle telemetry data model shared by
// every prediction pipeline: time-ordered windows of per-sample sensor rows.
package telemetry // import "github.com/fleetpulse/maintenance/internal/telemetry"

import (
	"fmt"
	"time"
)

// SamplingInterval is the fixed spacing between consecutive telemetry rows.
const SamplingInterval = 5 * time.Minute

// Samples per aggregation horizon at the 5-minute sampling interval.
const (
	SamplesPerDay   = 288
	SamplesPerWeek  = SamplesPerDay * 7  // 2016
	SamplesPerMonth = SamplesPerDay * 30 // 8640
)

// Row is a single telemetry sample: one reading per sensor channel.
type Row struct {
	VehicleID string
	Timestamp time.Time
	Values    map[string]float64
}

// Value returns the reading for a channel, with presence.
func (r Row) Value(col string) (float64, bool) {
	v, ok := r.Values[col]
	return v, ok
}

// Window is a time-ordered sequence of telemetry rows for one request.
// Windows are treated as immutable once handed to a pipeline; feature
// builders that need derived columns copy, never mutate.
type Window struct {
	Rows []Row
}

// Len returns the number of rows in the window.
func (w Window) Len() int { return len(w.Rows) }

// VehicleID returns the vehicle identifier of the first row, or "UNKNOWN"
// when the window is empty or unlabeled.
func (w Window) VehicleID() string {
	if len(w.Rows) > 0 && w.Rows[0].VehicleID != "" {
		return w.Rows[0].VehicleID
	}
	return "UNKNOWN"
}

// OrderingError reports a window that violates the time-ordered invariant.
type OrderingError struct {
	Index int
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("telemetry window not time-ordered: row %d precedes row %d", e.Index, e.Index-1)
}

// Validate checks the window invariant every pipeline relies on: rows are
// time-ordered. Rolling computations never re-sort; an out-of-order window
// is a caller error.
func (w Window) Validate() error {
	for i := 1; i < len(w.Rows); i++ {
		if w.Rows[i].Timestamp.Before(w.Rows[i-1].Timestamp) {
			return &OrderingError{Index: i}
		}
	}
	return nil
}

// Last returns a window holding the trailing n rows, or the whole window
// when it is shorter than n.
func (w Window) Last(n int) Window {
	if len(w.Rows) <= n {
		return w
	}
	return Window{Rows: w.Rows[len(w.Rows)-n:]}
}

// HasColumn reports whether every row carries the channel.
func (w Window) HasColumn(col string) bool {
	for _, r := range w.Rows {
		if _, ok := r.Values[col]; !ok {
			return false
		}
	}
	return len(w.Rows) > 0
}

// Column extracts a channel as a slice, one value per row. The second
// return is false if any row lacks the channel.
func (w Window) Column(col string) ([]float64, bool) {
	out := make([]float64, len(w.Rows))
	for i, r := range w.Rows {
		v, ok := r.Values[col]
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, len(w.Rows) > 0
}

// Partitions splits the window into per-vehicle sub-windows, preserving row
// order inside each partition. Grouped rolling computations (SCR slopes)
// must never mix samples from different vehicles.
func (w Window) Partitions() []Window {
	if len(w.Rows) == 0 {
		return nil
	}
	order := make([]string, 0, 1)
	byVehicle := make(map[string][]Row)
	for _, r := range w.Rows {
		if _, seen := byVehicle[r.VehicleID]; !seen {
			order = append(order, r.VehicleID)
		}
		byVehicle[r.VehicleID] = append(byVehicle[r.VehicleID], r)
	}
	out := make([]Window, 0, len(order))
	for _, id := range order {
		out = append(out, Window{Rows: byVehicle[id]})
	}
	return out
}
