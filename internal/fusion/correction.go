// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package fusion // import "github.com/fleetpulse/maintenance/internal/fusion"

import (
	"math"

	"github.com/fleetpulse/maintenance/internal/features"
)

// Correction blend constants. The signal-based health score carries the
// larger weight: the raw model probabilities were observed to saturate near
// a constant and discriminate poorly.
const (
	minRULDays = 5.0
	maxRULDays = 90.0
	// rulExponent skews the health→RUL map so mid-range health scores
	// still produce conservative RUL estimates (0.5 → ~29 days).
	rulExponent = 1.8

	modelProbabilityWeight  = 0.4
	signalProbabilityWeight = 0.6
)

// HealthScoreToRUL maps a [0,1] health score to remaining-useful-life days:
// 1.0 → 90 days, 0.0 → 5 days, nonlinear in between. Rounded to 2 decimals.
func HealthScoreToRUL(score float64) float64 {
	rul := minRULDays + (maxRULDays-minRULDays)*math.Pow(score, rulExponent)
	if rul < minRULDays {
		rul = minRULDays
	}
	return Round2(rul)
}

// CorrectedProbability blends the raw model probability with the
// signal-based health score. Good health pulls the probability down, bad
// health boosts it. Rounded to 4 decimals.
func CorrectedProbability(modelProb, healthScore float64) float64 {
	signalProb := 1.0 - healthScore
	combined := modelProbabilityWeight*modelProb + signalProbabilityWeight*signalProb
	return Round4(features.Clip(combined, 0, 1))
}

// Round2 rounds to 2 decimal places (RUL precision).
func Round2(v float64) float64 { return math.Round(v*100) / 100 }

// Round4 rounds to 4 decimal places (probability precision).
func Round4(v float64) float64 { return math.Round(v*10000) / 10000 }
