// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package fusion // import "github.com/fleetpulse/maintenance/internal/fusion"

import (
	"github.com/fleetpulse/maintenance/internal/telemetry"
)

// Subsystem identifies one of the four predictive pipelines.
type Subsystem string

const (
	SubsystemDPF     Subsystem = "dpf"
	SubsystemSCR     Subsystem = "scr"
	SubsystemOil     Subsystem = "oil"
	SubsystemAnomaly Subsystem = "anomaly"
)

// PredictionType is the vehicle-level classification. The enumerated
// values are a stable contract with the downstream ingestion service.
type PredictionType string

const (
	PredictionHealthy PredictionType = "healthy"
	PredictionAnomaly PredictionType = "anomaly"
	PredictionDPF     PredictionType = "dpf_failure"
	PredictionSCR     PredictionType = "scr_failure"
	PredictionOil     PredictionType = "oil_failure"
	PredictionCascade PredictionType = "cascade_failure"
)

// failureLabel maps a RUL-producing subsystem to its failure classification.
var failureLabel = map[Subsystem]PredictionType{
	SubsystemDPF: PredictionDPF,
	SubsystemSCR: PredictionSCR,
	SubsystemOil: PredictionOil,
}

// Result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// SubsystemResult is one subsystem's corrected prediction. Results are
// created fresh per request, owned by that request, and discarded once the
// unified response is built.
type SubsystemResult struct {
	Subsystem          Subsystem      `json:"model"`
	Status             string         `json:"status"`
	RULDays            *float64       `json:"rul_days,omitempty"`
	FailureProbability *float64       `json:"failure_probability,omitempty"`
	HealthScore        *float64       `json:"health_score,omitempty"`
	AnomalyScore       *float64       `json:"anomaly_score,omitempty"`
	IsAnomaly          *bool          `json:"is_anomaly,omitempty"`
	Error              string         `json:"error,omitempty"`
	Details            map[string]any `json:"details,omitempty"`
}

// UnifiedPrediction is the single vehicle-level maintenance decision.
type UnifiedPrediction struct {
	VehicleID      string                             `json:"vehicle_id"`
	PredictionType PredictionType                     `json:"prediction_type"`
	Confidence     float64                            `json:"confidence"`
	ETADays        float64                            `json:"eta_days"`
	Signals        map[string]telemetry.SignalSummary `json:"signals"`
	Results        []SubsystemResult                  `json:"per_subsystem_results"`
}
