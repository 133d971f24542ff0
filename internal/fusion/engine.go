// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package fusion combines the four subsystem pipelines into a single
// vehicle-level maintenance decision: feature construction, signal-based
// health scoring, model-output correction and the priority-ordered
// classification cascade.
package fusion // import "github.com/fleetpulse/maintenance/internal/fusion"

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fleetpulse/maintenance/internal/features"
	"github.com/fleetpulse/maintenance/internal/health"
	"github.com/fleetpulse/maintenance/internal/model"
	"github.com/fleetpulse/maintenance/internal/telemetry"
)

// DefaultAnomalyThreshold is the decision boundary on the minimum
// isolation-score across sliding windows. Healthy vehicles score around
// -0.10, anomalous ones around -0.11; more negative is anomalous.
const DefaultAnomalyThreshold = -0.105

// anomalyConfidenceBump is added to the overall confidence when the
// anomaly detector fires, capped at 1.0.
const anomalyConfidenceBump = 0.10

// defaultConfidence is used when no subsystem produced a probability.
const defaultConfidence = 0.5

// ErrAllSubsystemsFailed is returned when every RUL-producing subsystem
// errored; no partial unified prediction is possible.
var ErrAllSubsystemsFailed = errors.New("all RUL subsystems failed, cannot produce a unified prediction")

// Adapters are the opaque external model collaborators, loaded once at
// startup and read-only afterwards.
type Adapters struct {
	DPF     model.Predictor
	SCR     model.Predictor
	Oil     model.Predictor
	Anomaly model.Scorer
}

// Engine runs the full fusion pipeline for one telemetry window per call.
// It holds no per-request state; a single Engine serves concurrent
// requests.
type Engine struct {
	adapters         Adapters
	anomalyThreshold float64
	logger           *zap.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithAnomalyThreshold overrides the anomaly decision boundary.
func WithAnomalyThreshold(threshold float64) Option {
	return func(e *Engine) { e.anomalyThreshold = threshold }
}

// NewEngine wires the fusion engine to its model adapters.
func NewEngine(adapters Adapters, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		adapters:         adapters,
		anomalyThreshold: DefaultAnomalyThreshold,
		logger:           logger.Named("fusion"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Predict runs all four subsystem pipelines over the window and fuses the
// results. Per-subsystem failures are recorded with status=error and
// excluded from aggregation; the request fails only when every
// RUL-producing subsystem failed.
func (e *Engine) Predict(ctx context.Context, w telemetry.Window) (*UnifiedPrediction, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	// The pipelines are independent and share only read-only state, so
	// they fan out. Each slot collects its own result; adapter errors are
	// captured in the result, never propagated through the group.
	results := make([]SubsystemResult, 4)
	pipelines := []struct {
		sub Subsystem
		run func(context.Context, telemetry.Window) (SubsystemResult, error)
	}{
		{SubsystemDPF, e.PredictDPF},
		{SubsystemSCR, e.PredictSCR},
		{SubsystemOil, e.PredictOil},
		{SubsystemAnomaly, e.PredictAnomaly},
	}
	var g errgroup.Group
	for i, p := range pipelines {
		g.Go(func() error {
			res, err := p.run(ctx, w)
			results[i] = e.collect(p.sub, res, err)
			return nil
		})
	}
	_ = g.Wait()

	return e.fuse(w, results)
}

// collect turns a pipeline error into an errored result so one subsystem
// can never corrupt another's independently-computed output.
func (e *Engine) collect(sub Subsystem, res SubsystemResult, err error) SubsystemResult {
	if err != nil {
		e.logger.Warn("subsystem pipeline failed",
			zap.String("subsystem", string(sub)),
			zap.Error(err))
		return SubsystemResult{Subsystem: sub, Status: StatusError, Error: err.Error()}
	}
	return res
}

// fuse aggregates per-subsystem results into the unified prediction.
func (e *Engine) fuse(w telemetry.Window, results []SubsystemResult) (*UnifiedPrediction, error) {
	var rulResults, probResults []SubsystemResult
	var anomalyResult *SubsystemResult
	for i := range results {
		r := results[i]
		if r.Status != StatusSuccess {
			continue
		}
		if r.RULDays != nil {
			rulResults = append(rulResults, r)
		}
		if r.FailureProbability != nil {
			probResults = append(probResults, r)
		}
		if r.Subsystem == SubsystemAnomaly {
			anomalyResult = &results[i]
		}
	}
	if len(rulResults) == 0 {
		return nil, ErrAllSubsystemsFailed
	}

	etaDays := *worstRUL(rulResults).RULDays

	confidence := defaultConfidence
	if winner := highestProbability(probResults); winner != nil {
		confidence = *winner.FailureProbability
	}

	anomalous := anomalyResult != nil && anomalyResult.IsAnomaly != nil && *anomalyResult.IsAnomaly
	if anomalous {
		confidence = min(1.0, confidence+anomalyConfidenceBump)
	}

	predictionType := classify(rulResults, probResults, anomalous)

	e.logger.Info("unified prediction",
		zap.String("vehicle_id", w.VehicleID()),
		zap.String("prediction_type", string(predictionType)),
		zap.Float64("eta_days", etaDays),
		zap.Float64("confidence", confidence),
		zap.Bool("anomalous", anomalous))

	return &UnifiedPrediction{
		VehicleID:      w.VehicleID(),
		PredictionType: predictionType,
		Confidence:     Round4(confidence),
		ETADays:        Round2(etaDays),
		Signals:        w.SummarizeSignals(signalColumns()),
		Results:        results,
	}, nil
}

// PredictDPF runs the particulate-filter pipeline: one day of telemetry,
// health correction against the saturated model RUL head.
func (e *Engine) PredictDPF(ctx context.Context, w telemetry.Window) (SubsystemResult, error) {
	tensor, err := features.BuildDPF(w)
	if err != nil {
		return SubsystemResult{}, err
	}
	healthScore, err := health.DPFScore(w)
	if err != nil {
		return SubsystemResult{}, err
	}
	out, err := e.adapters.DPF.Predict(ctx, tensor)
	if err != nil {
		return SubsystemResult{}, err
	}

	rawProb := deref(out.Probability)
	details := map[string]any{
		"raw_model_prob":      Round4(rawProb),
		"signal_health_score": Round4(healthScore),
	}
	if out.RULLog != nil {
		details["rul_pred_log"] = *out.RULLog
		details["raw_model_rul_days"] = Round2(model.RULLogToDays(*out.RULLog))
	}

	return SubsystemResult{
		Subsystem:          SubsystemDPF,
		Status:             StatusSuccess,
		RULDays:            ptr(HealthScoreToRUL(healthScore)),
		FailureProbability: ptr(CorrectedProbability(rawProb, healthScore)),
		HealthScore:        ptr(Round4(healthScore)),
		Details:            details,
	}, nil
}

// PredictSCR runs the SCR pipeline: seven days of engineered telemetry.
func (e *Engine) PredictSCR(ctx context.Context, w telemetry.Window) (SubsystemResult, error) {
	tensor, err := features.BuildSCR(w)
	if err != nil {
		return SubsystemResult{}, err
	}
	healthScore, err := health.SCRScore(w)
	if err != nil {
		return SubsystemResult{}, err
	}
	out, err := e.adapters.SCR.Predict(ctx, tensor)
	if err != nil {
		return SubsystemResult{}, err
	}

	rawProb := deref(out.Probability)
	details := map[string]any{
		"raw_model_prob":      Round4(rawProb),
		"signal_health_score": Round4(healthScore),
	}
	if out.RULHours != nil {
		hours := max(*out.RULHours, 0)
		details["rul_hours"] = Round2(hours)
		details["raw_model_rul_days"] = Round2(hours / 24.0)
	}

	return SubsystemResult{
		Subsystem:          SubsystemSCR,
		Status:             StatusSuccess,
		RULDays:            ptr(HealthScoreToRUL(healthScore)),
		FailureProbability: ptr(CorrectedProbability(rawProb, healthScore)),
		HealthScore:        ptr(Round4(healthScore)),
		Details:            details,
	}, nil
}

// PredictOil runs the oil-degradation pipeline. Columns synthesized by the
// feature builder are surfaced in the details so callers know they are
// approximations, not measurements.
func (e *Engine) PredictOil(ctx context.Context, w telemetry.Window) (SubsystemResult, error) {
	feats, err := features.BuildOil(w)
	if err != nil {
		return SubsystemResult{}, err
	}
	healthScore, err := health.OilScore(w)
	if err != nil {
		return SubsystemResult{}, err
	}
	out, err := e.adapters.Oil.Predict(ctx, feats.Matrix)
	if err != nil {
		return SubsystemResult{}, err
	}

	rawProb := deref(out.Probability)
	details := map[string]any{
		"raw_model_probability": Round4(rawProb),
		"signal_health_score":   Round4(healthScore),
	}
	if len(feats.SynthesizedColumns) > 0 {
		details["synthesized_columns"] = feats.SynthesizedColumns
	}

	return SubsystemResult{
		Subsystem:          SubsystemOil,
		Status:             StatusSuccess,
		RULDays:            ptr(HealthScoreToRUL(healthScore)),
		FailureProbability: ptr(CorrectedProbability(rawProb, healthScore)),
		HealthScore:        ptr(Round4(healthScore)),
		Details:            details,
	}, nil
}

// PredictAnomaly runs the sliding-window anomaly pipeline. The vehicle is
// anomalous when any window's score falls below the decision threshold.
func (e *Engine) PredictAnomaly(ctx context.Context, w telemetry.Window) (SubsystemResult, error) {
	matrix, err := features.BuildAnomaly(w)
	if err != nil {
		return SubsystemResult{}, err
	}
	scores, err := e.adapters.Anomaly.Score(ctx, matrix)
	if err != nil {
		return SubsystemResult{}, err
	}
	if len(scores) == 0 {
		return SubsystemResult{}, fmt.Errorf("anomaly model returned no scores")
	}

	worstIdx := 0
	for i, s := range scores {
		if s < scores[worstIdx] {
			worstIdx = i
		}
	}
	worstScore := scores[worstIdx]

	return SubsystemResult{
		Subsystem:    SubsystemAnomaly,
		Status:       StatusSuccess,
		AnomalyScore: ptr(Round4(worstScore)),
		IsAnomaly:    ptr(worstScore < e.anomalyThreshold),
		Details: map[string]any{
			"window_index": worstIdx,
			"threshold":    Round4(e.anomalyThreshold),
		},
	}, nil
}

// signalColumns is the union of DPF signal channels and anomaly raw
// channels summarized in the unified response.
func signalColumns() []string {
	seen := make(map[string]bool)
	var cols []string
	for _, c := range append(append([]string{}, features.DPFSignalColumns...), features.AnomalyRawColumns...) {
		if !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	return cols
}

func ptr[T any](v T) *T { return &v }

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
