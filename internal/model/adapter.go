// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package model is the boundary to the four externally-trained predictive
// models. The models are opaque collaborators: the fusion layer sees only
// the capability interfaces here and never inspects model internals.
package model // import "github.com/fleetpulse/maintenance/internal/model"

import (
	"context"
	"fmt"
	"math"
)

// Output is the raw result of one predictor call. The populated fields are
// subsystem-specific: DPF returns RULLog+Probability, SCR returns
// RULHours+Probability, Oil returns Probability only. The scales are opaque
// and may be saturated; callers must not trust them without correction.
type Output struct {
	RULLog      *float64
	RULHours    *float64
	Probability *float64
}

// Predictor runs a sequence model over a (rows, features) tensor.
type Predictor interface {
	Predict(ctx context.Context, tensor [][]float64) (Output, error)
}

// Scorer runs the anomaly model over a (windows, features) matrix and
// returns one decision score per window; more negative means more
// anomalous.
type Scorer interface {
	Score(ctx context.Context, matrix [][]float64) ([]float64, error)
}

// AdapterError wraps any failure raised by an external model call. The
// fusion engine treats it as opaque: recorded, excluded from aggregation,
// never retried.
type AdapterError struct {
	Subsystem string
	Err       error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("%s model adapter: %v", e.Subsystem, e.Err)
}

func (e *AdapterError) Unwrap() error { return e.Err }

// RULLogToDays converts a log1p-transformed RUL in hours to days, floored
// at zero.
func RULLogToDays(rulLog float64) float64 {
	hours := math.Exp(rulLog) - 1
	if hours < 0 {
		return 0
	}
	return hours / 24.0
}
