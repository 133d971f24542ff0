// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package health computes signal-based subsystem health scores in [0,1]
// purely from raw telemetry. The scores are independent of any trained
// model and deterministic for a given window; they exist because the raw
// model outputs saturate and cannot be trusted alone.
package health // import "github.com/fleetpulse/maintenance/internal/health"

import (
	"math"

	"github.com/fleetpulse/maintenance/internal/features"
	"github.com/fleetpulse/maintenance/internal/telemetry"
)

// recent-state horizons, in samples at the 5-minute interval
const (
	dpfScoreWindow = telemetry.SamplesPerDay     // last day
	scrScoreWindow = telemetry.SamplesPerDay     // last day
	oilScoreWindow = telemetry.SamplesPerDay * 2 // last two days
)

// scoreHigherWorse normalizes an indicator where larger values indicate
// degradation: 1.0 at or below the healthy point, 0.0 at or beyond critical.
func scoreHigherWorse(value float64, t Threshold) float64 {
	return 1.0 - features.Clip((value-t.Healthy)/(t.Critical-t.Healthy), 0, 1)
}

// scoreLowerWorse normalizes an indicator where smaller values indicate
// degradation.
func scoreLowerWorse(value float64, t Threshold) float64 {
	return features.Clip((value-t.Critical)/(t.Healthy-t.Critical), 0, 1)
}

// DPFScore scores the particulate filter from the last day of telemetry:
// mean soot load, latest failed-regeneration count, and the absolute mean
// differential pressure.
func DPFScore(w telemetry.Window) (float64, error) {
	win := w.Last(dpfScoreWindow)
	var scores []float64

	soot, ok := win.Column(telemetry.ColDPFSootLoad)
	if !ok {
		return 0, &features.MissingColumnError{Subsystem: "dpf", Column: telemetry.ColDPFSootLoad}
	}
	scores = append(scores, scoreHigherWorse(features.Mean(soot), dpfThresholds[telemetry.ColDPFSootLoad]))

	regen, ok := win.Column(telemetry.ColDPFFailedRegenCount)
	if !ok {
		return 0, &features.MissingColumnError{Subsystem: "dpf", Column: telemetry.ColDPFFailedRegenCount}
	}
	scores = append(scores, scoreHigherWorse(regen[len(regen)-1], dpfThresholds[telemetry.ColDPFFailedRegenCount]))

	deltaP, err := features.DPFDeltaP(win)
	if err != nil {
		return 0, err
	}
	scores = append(scores, scoreHigherWorse(math.Abs(features.Mean(deltaP)), dpfThresholds[telemetry.ColDPFDeltaP]))

	return features.Mean(scores), nil
}

// SCRScore scores the SCR system from the last day of telemetry: mean NOx
// conversion efficiency (lower is worse) and mean downstream NOx.
func SCRScore(w telemetry.Window) (float64, error) {
	win := w.Last(scrScoreWindow)
	var scores []float64

	conv, ok := win.Column(telemetry.ColNOxConversion)
	if !ok {
		return 0, &features.MissingColumnError{Subsystem: "scr", Column: telemetry.ColNOxConversion}
	}
	scores = append(scores, scoreLowerWorse(features.Mean(conv), scrThresholds[telemetry.ColNOxConversion]))

	noxDown, ok := win.Column(telemetry.ColNOxDown)
	if !ok {
		return 0, &features.MissingColumnError{Subsystem: "scr", Column: telemetry.ColNOxDown}
	}
	scores = append(scores, scoreHigherWorse(features.Mean(noxDown), scrThresholds[telemetry.ColNOxDown]))

	return features.Mean(scores), nil
}

// OilScore scores the lubrication system. Instantaneous indicators (oil
// level, oil pressure) use the last two days, or the whole window when
// shorter; trend indicators (first-quarter vs last-quarter level change,
// pressure slope) use the full window.
func OilScore(w telemetry.Window) (float64, error) {
	win := w.Last(oilScoreWindow)
	var scores []float64

	level, ok := win.Column(telemetry.ColOilLevel)
	if !ok {
		return 0, &features.MissingColumnError{Subsystem: "oil", Column: telemetry.ColOilLevel}
	}
	scores = append(scores, scoreHigherWorse(features.Mean(level), oilThresholds[telemetry.ColOilLevel]))

	pressure, ok := win.Column(telemetry.ColOilPressure)
	if !ok {
		return 0, &features.MissingColumnError{Subsystem: "oil", Column: telemetry.ColOilPressure}
	}
	scores = append(scores, scoreLowerWorse(features.Mean(pressure), oilThresholds[telemetry.ColOilPressure]))

	fullLevel, _ := w.Column(telemetry.ColOilLevel)
	if q := len(fullLevel) / 4; q > 0 {
		change := features.Mean(fullLevel[len(fullLevel)-q:]) - features.Mean(fullLevel[:q])
		scores = append(scores, scoreHigherWorse(change, oilThresholds[oilLevelChangeIndicator]))
	}

	fullPressure, _ := w.Column(telemetry.ColOilPressure)
	scores = append(scores, slopeScore(features.Slope(fullPressure), oilThresholds[oilPressureSlopeIndicator]))

	return features.Mean(scores), nil
}

// slopeScore penalizes only degrading trends: a slope at or better than the
// healthy point (flat or improving) scores 1.0 regardless of magnitude.
func slopeScore(slope float64, t Threshold) float64 {
	if slope >= t.Healthy {
		return 1.0
	}
	return 1.0 - features.Clip((t.Healthy-slope)/(t.Healthy-t.Critical), 0, 1)
}
