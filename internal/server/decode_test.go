// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeWindow(t *testing.T) {
	body := `{"data":[
		{"vehicle_id":"VH1","timestamp":"2025-06-01T00:00:00Z","engine_rpm":1500,"dpf_regen_active":true,"engine_load_pct":"45.5","fault_code":"P2002"},
		{"vehicle_id":"VH1","timestamp":"2025-06-01T00:05:00Z","engine_rpm":1550,"dpf_regen_active":false,"engine_load_pct":"46","fault_code":""}
	]}`

	w, err := DecodeWindow(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, w.Rows, 2)

	first := w.Rows[0]
	assert.Equal(t, "VH1", first.VehicleID)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), first.Timestamp)
	assert.Equal(t, 1500.0, first.Values["engine_rpm"])
	assert.Equal(t, 1.0, first.Values["dpf_regen_active"], "booleans coerce to 0/1")
	assert.Equal(t, 45.5, first.Values["engine_load_pct"], "numeric strings are parsed")
	_, hasFault := first.Values["fault_code"]
	assert.False(t, hasFault, "categorical values are not sensor readings")

	assert.Equal(t, 0.0, w.Rows[1].Values["dpf_regen_active"])
}

func TestDecodeWindowUnixTimestamps(t *testing.T) {
	body := `{"data":[{"timestamp":1748736000,"engine_rpm":1500}]}`

	w, err := DecodeWindow(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, time.Unix(1748736000, 0).UTC(), w.Rows[0].Timestamp)
}

func TestDecodeWindowErrors(t *testing.T) {
	testCases := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "malformed json", body: `{"data":[`, wantErr: "parse request body"},
		{name: "empty dataset", body: `{"data":[]}`, wantErr: "no telemetry rows"},
		{name: "missing data key", body: `{}`, wantErr: "no telemetry rows"},
		{name: "bad timestamp", body: `{"data":[{"timestamp":"yesterday"}]}`, wantErr: "row 0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeWindow(strings.NewReader(tc.body))
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestParseNumeric(t *testing.T) {
	testCases := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{raw: `42.5`, want: 42.5, wantOK: true},
		{raw: `true`, want: 1, wantOK: true},
		{raw: `false`, want: 0, wantOK: true},
		{raw: `"3.14"`, want: 3.14, wantOK: true},
		{raw: `"P2002"`, wantOK: false},
		{raw: `null`, wantOK: false},
		{raw: `["a"]`, wantOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			got, ok := parseNumeric([]byte(tc.raw))
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}
