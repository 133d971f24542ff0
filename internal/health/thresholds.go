// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package health // import "github.com/fleetpulse/maintenance/internal/health"

import "github.com/fleetpulse/maintenance/internal/telemetry"

// Threshold is a pair of calibration points for one indicator. The
// direction of degradation is implied by the ordering: Healthy < Critical
// means higher values are worse, Healthy > Critical means lower values are
// worse. Values at or better than Healthy score 1.0, at or beyond Critical
// score 0.0, linear in between.
type Threshold struct {
	Healthy  float64
	Critical float64
}

// DPF baselines: healthy fleets sit around soot 42%, zero failed regens and
// ~5 kPa delta-p; failing filters show soot 118-131%, 33-40 failed regens
// and ~18 kPa.
var dpfThresholds = map[string]Threshold{
	telemetry.ColDPFSootLoad:         {Healthy: 45, Critical: 80},
	telemetry.ColDPFFailedRegenCount: {Healthy: 5, Critical: 20},
	telemetry.ColDPFDeltaP:           {Healthy: 8, Critical: 12}, // kPa, absolute mean
}

var scrThresholds = map[string]Threshold{
	telemetry.ColNOxConversion: {Healthy: 90, Critical: 60}, // pct, lower is worse
	telemetry.ColNOxDown:       {Healthy: 15, Critical: 60}, // ppm
}

// Oil indicators: fuel dilution pushes the level up from ~5.0 L; wear and
// viscosity loss pull pressure down from ~2.0 bar.
const (
	oilLevelChangeIndicator   = "oil_level_change"
	oilPressureSlopeIndicator = "oil_pressure_slope"
)

var oilThresholds = map[string]Threshold{
	telemetry.ColOilLevel:     {Healthy: 5.1, Critical: 6.5},  // L, higher is worse
	telemetry.ColOilPressure:  {Healthy: 1.9, Critical: 1.2},  // bar, lower is worse
	oilLevelChangeIndicator:   {Healthy: 0.05, Critical: 1.2}, // L over window, higher is worse
	oilPressureSlopeIndicator: {Healthy: 0.0, Critical: -0.00005}, // bar/sample, more negative is worse
}
