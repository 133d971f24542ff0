// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package server // import "github.com/fleetpulse/maintenance/internal/server"

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fleetpulse/maintenance/internal/telemetry"
)

// Reserved row keys that are not sensor channels.
const (
	vehicleIDKey = "vehicle_id"
	timestampKey = "timestamp"
)

// datasetRequest is the request body shared by every prediction endpoint:
// an ordered list of telemetry rows, channel name to value.
type datasetRequest struct {
	Data []map[string]json.RawMessage `json:"data"`
}

// DecodeWindow parses a prediction request body into a telemetry window.
// Row order is preserved; numeric and boolean channel values are kept,
// non-numeric values are ignored.
func DecodeWindow(r io.Reader) (telemetry.Window, error) {
	var req datasetRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return telemetry.Window{}, fmt.Errorf("parse request body: %w", err)
	}
	if len(req.Data) == 0 {
		return telemetry.Window{}, fmt.Errorf("request contains no telemetry rows")
	}

	window := telemetry.Window{Rows: make([]telemetry.Row, 0, len(req.Data))}
	for i, raw := range req.Data {
		row := telemetry.Row{Values: make(map[string]float64, len(raw))}
		for key, val := range raw {
			switch key {
			case vehicleIDKey:
				_ = json.Unmarshal(val, &row.VehicleID)
			case timestampKey:
				ts, err := parseTimestamp(val)
				if err != nil {
					return telemetry.Window{}, fmt.Errorf("row %d: %w", i, err)
				}
				row.Timestamp = ts
			default:
				if num, ok := parseNumeric(val); ok {
					row.Values[key] = num
				}
			}
		}
		window.Rows = append(window.Rows, row)
	}
	return window, nil
}

// parseTimestamp accepts RFC3339 strings or unix seconds.
func parseTimestamp(raw json.RawMessage) (time.Time, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
		}
		return ts, nil
	}
	var unix float64
	if err := json.Unmarshal(raw, &unix); err == nil {
		sec := int64(unix)
		nsec := int64((unix - float64(sec)) * float64(time.Second))
		return time.Unix(sec, nsec).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %s", string(raw))
}

// parseNumeric coerces a JSON value to float64: numbers directly, booleans
// as 0/1, numeric strings parsed. Everything else is categorical and not a
// sensor reading.
func parseNumeric(raw json.RawMessage) (float64, bool) {
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num, true
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		if b {
			return 1, true
		}
		return 0, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
