// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package otlp converts OpenTelemetry metrics into telemetry windows, for
// fleets whose gateways export sensor channels over OTLP instead of the
// row-oriented JSON boundary.
package otlp // import "github.com/fleetpulse/maintenance/internal/otlp"

import (
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/collector/pdata/pcommon"
	"go.opentelemetry.io/collector/pdata/pmetric"

	"github.com/fleetpulse/maintenance/internal/telemetry"
)

// VehicleIDAttribute is the resource attribute carrying the vehicle
// identifier.
const VehicleIDAttribute = "vehicle.id"

// ToWindow flattens OTLP metrics into a telemetry window. Each metric name
// becomes a sensor channel; datapoints sharing a timestamp within one
// resource form one row. Only gauge and sum metrics are consumed; other
// types have no telemetry-row equivalent and are skipped.
//
// Rows come out vehicle-major: grouped by vehicle, time-ordered within each
// group. A single-vehicle payload therefore yields a window ready for the
// prediction engine; a payload carrying several vehicles must be split with
// Window.Partitions and predicted per vehicle, since one prediction window
// is a single time-ordered sequence.
func ToWindow(md pmetric.Metrics) (telemetry.Window, error) {
	type rowKey struct {
		vehicleID string
		ts        time.Time
	}
	rows := make(map[rowKey]telemetry.Row)

	rms := md.ResourceMetrics()
	for i := 0; i < rms.Len(); i++ {
		rm := rms.At(i)
		vehicleID := vehicleIDOf(rm.Resource())

		sms := rm.ScopeMetrics()
		for j := 0; j < sms.Len(); j++ {
			metrics := sms.At(j).Metrics()
			for k := 0; k < metrics.Len(); k++ {
				metric := metrics.At(k)
				dps, ok := numberDataPoints(metric)
				if !ok {
					continue
				}
				for l := 0; l < dps.Len(); l++ {
					dp := dps.At(l)
					key := rowKey{vehicleID: vehicleID, ts: dp.Timestamp().AsTime()}
					row, exists := rows[key]
					if !exists {
						row = telemetry.Row{
							VehicleID: vehicleID,
							Timestamp: key.ts,
							Values:    make(map[string]float64),
						}
					}
					row.Values[metric.Name()] = numberValue(dp)
					rows[key] = row
				}
			}
		}
	}

	if len(rows) == 0 {
		return telemetry.Window{}, fmt.Errorf("otlp payload contains no gauge or sum datapoints")
	}

	out := telemetry.Window{Rows: make([]telemetry.Row, 0, len(rows))}
	for _, row := range rows {
		out.Rows = append(out.Rows, row)
	}
	sort.Slice(out.Rows, func(a, b int) bool {
		ra, rb := out.Rows[a], out.Rows[b]
		if ra.VehicleID != rb.VehicleID {
			return ra.VehicleID < rb.VehicleID
		}
		return ra.Timestamp.Before(rb.Timestamp)
	})
	return out, nil
}

func vehicleIDOf(res pcommon.Resource) string {
	if v, ok := res.Attributes().Get(VehicleIDAttribute); ok {
		return v.AsString()
	}
	return ""
}

func numberDataPoints(metric pmetric.Metric) (pmetric.NumberDataPointSlice, bool) {
	switch metric.Type() {
	case pmetric.MetricTypeGauge:
		return metric.Gauge().DataPoints(), true
	case pmetric.MetricTypeSum:
		return metric.Sum().DataPoints(), true
	default:
		return pmetric.NumberDataPointSlice{}, false
	}
}

func numberValue(dp pmetric.NumberDataPoint) float64 {
	if dp.ValueType() == pmetric.NumberDataPointValueTypeInt {
		return float64(dp.IntValue())
	}
	return dp.DoubleValue()
}
