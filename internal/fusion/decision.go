// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package fusion // import "github.com/fleetpulse/maintenance/internal/fusion"

// Decision thresholds, in days / probability / health-score units.
const (
	// anomalyOverrideMinRUL: an anomaly flag may not override a genuinely
	// imminent subsystem failure, only a vehicle with runway left.
	anomalyOverrideMinRUL = 30.0
	healthyMinRUL         = 55.0
	cascadeRULThreshold   = 21.0
	cascadeProbThreshold  = 0.6
	degradedMaxRUL        = 70.0
	degradedHealthScore   = 0.85
	probFallbackThreshold = 0.55
)

// classify runs the priority-ordered decision cascade over the successful
// RUL-producing results; first match wins.
func classify(rulResults, probResults []SubsystemResult, anomalous bool) PredictionType {
	worst := worstRUL(rulResults)
	eta := *worst.RULDays

	if anomalous && eta > anomalyOverrideMinRUL {
		return PredictionAnomaly
	}
	if eta >= healthyMinRUL {
		return PredictionHealthy
	}

	criticalByRUL := 0
	for _, r := range rulResults {
		if *r.RULDays < cascadeRULThreshold {
			criticalByRUL++
		}
	}
	criticalByProb := 0
	for _, r := range probResults {
		if *r.FailureProbability >= cascadeProbThreshold {
			criticalByProb++
		}
	}
	if criticalByRUL >= 2 || criticalByProb >= 2 {
		return PredictionCascade
	}

	// Prefer a subsystem whose raw signals are genuinely degrading over one
	// that merely carries a pessimistic model output.
	var degraded *SubsystemResult
	for i := range rulResults {
		r := &rulResults[i]
		if *r.RULDays >= degradedMaxRUL || r.HealthScore == nil || *r.HealthScore >= degradedHealthScore {
			continue
		}
		if degraded == nil || *r.RULDays < *degraded.RULDays {
			degraded = r
		}
	}
	if degraded != nil {
		return failureLabel[degraded.Subsystem]
	}

	if winner := highestProbability(probResults); winner != nil && *winner.FailureProbability >= probFallbackThreshold {
		return failureLabel[winner.Subsystem]
	}

	return failureLabel[worst.Subsystem]
}

// worstRUL returns the result with the minimum RUL. Callers guarantee at
// least one result.
func worstRUL(rulResults []SubsystemResult) *SubsystemResult {
	worst := &rulResults[0]
	for i := range rulResults[1:] {
		r := &rulResults[i+1]
		if *r.RULDays < *worst.RULDays {
			worst = r
		}
	}
	return worst
}

func highestProbability(probResults []SubsystemResult) *SubsystemResult {
	var winner *SubsystemResult
	for i := range probResults {
		r := &probResults[i]
		if winner == nil || *r.FailureProbability > *winner.FailureProbability {
			winner = r
		}
	}
	return winner
}
