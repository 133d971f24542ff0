// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package fusion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fleetpulse/maintenance/internal/model"
	"github.com/fleetpulse/maintenance/internal/telemetry"
)

type fakePredictor struct {
	out  model.Output
	err  error
	rows int
	cols int
}

func (f *fakePredictor) Predict(_ context.Context, tensor [][]float64) (model.Output, error) {
	f.rows = len(tensor)
	if len(tensor) > 0 {
		f.cols = len(tensor[0])
	}
	if f.err != nil {
		return model.Output{}, f.err
	}
	return f.out, nil
}

type fakeScorer struct {
	scores  []float64
	err     error
	windows int
}

func (f *fakeScorer) Score(_ context.Context, matrix [][]float64) ([]float64, error) {
	f.windows = len(matrix)
	if f.err != nil {
		return nil, f.err
	}
	if f.scores != nil {
		return f.scores, nil
	}
	out := make([]float64, len(matrix))
	for i := range out {
		out[i] = -0.09
	}
	return out, nil
}

// healthyWindow builds a week of nominal telemetry carrying every channel
// all four pipelines need.
func healthyWindow(n int) telemetry.Window {
	values := map[string]float64{
		telemetry.ColDPFUpstreamPressure:   5,
		telemetry.ColDPFDownstreamPressure: 0,
		telemetry.ColDPFSootLoad:           42,
		telemetry.ColDPFFailedRegenCount:   0,
		telemetry.ColDPFPreTemp:            310,
		telemetry.ColDPFPostTemp:           300,
		telemetry.ColDPFRegenFlag:          0,
		telemetry.ColEngineRPM:             1500,
		telemetry.ColEngineLoad:            45,
		telemetry.ColOilLevel:              5.0,
		telemetry.ColOilPressure:           2.0,
		telemetry.ColFuelConsumption:       18,
		telemetry.ColExhaustBackpressure:   8,
		telemetry.ColBoostPressure:         120,
		telemetry.ColSpeed:                 72,
		telemetry.ColIdleSeconds:           0,
		telemetry.ColNOxUp:                 400,
		telemetry.ColNOxDown:               10,
		telemetry.ColNOxConversion:         95,
		telemetry.ColSCRInletTemp:          280,
		telemetry.ColSCROutletTemp:         250,
		telemetry.ColDEFQuality:            0.95,
		telemetry.ColDEFInjectorDuty:       55,
		telemetry.ColDEFPumpPressure:       9,
		telemetry.ColDEFPumpCurrent:        1.2,
		telemetry.ColCANDropRate:           0.001,
	}
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]telemetry.Row, n)
	for i := 0; i < n; i++ {
		copied := make(map[string]float64, len(values))
		for k, v := range values {
			copied[k] = v
		}
		rows[i] = telemetry.Row{
			VehicleID: "VH42",
			Timestamp: base.Add(time.Duration(i) * telemetry.SamplingInterval),
			Values:    copied,
		}
	}
	return telemetry.Window{Rows: rows}
}

func testAdapters() (Adapters, *fakePredictor, *fakePredictor, *fakePredictor, *fakeScorer) {
	dpf := &fakePredictor{out: model.Output{RULLog: ptr(7.0), Probability: ptr(0.9)}}
	scr := &fakePredictor{out: model.Output{RULHours: ptr(2000.0), Probability: ptr(0.9)}}
	oil := &fakePredictor{out: model.Output{Probability: ptr(0.9)}}
	anomaly := &fakeScorer{}
	return Adapters{DPF: dpf, SCR: scr, Oil: oil, Anomaly: anomaly}, dpf, scr, oil, anomaly
}

func TestEnginePredictHealthyVehicle(t *testing.T) {
	adapters, dpf, scr, oil, anomaly := testAdapters()
	engine := NewEngine(adapters, zaptest.NewLogger(t))

	pred, err := engine.Predict(context.Background(), healthyWindow(telemetry.SamplesPerWeek))
	require.NoError(t, err)

	assert.Equal(t, "VH42", pred.VehicleID)
	assert.Equal(t, PredictionHealthy, pred.PredictionType)
	assert.Equal(t, 90.0, pred.ETADays)
	// Saturated 0.9 model probability corrected by perfect signal health.
	assert.InDelta(t, 0.36, pred.Confidence, 1e-9)
	require.Len(t, pred.Results, 4)
	for _, r := range pred.Results {
		assert.Equal(t, StatusSuccess, r.Status)
	}
	assert.NotEmpty(t, pred.Signals)

	// Tensor shapes delivered to the adapters.
	assert.Equal(t, 288, dpf.rows)
	assert.Equal(t, 8, dpf.cols)
	assert.Equal(t, 2016, scr.rows)
	assert.Equal(t, 11, scr.cols)
	assert.Equal(t, 2016, oil.rows)
	assert.Equal(t, 14, oil.cols)
	assert.Equal(t, 2016-5, anomaly.windows)
}

func TestEnginePredictAnomalyOverride(t *testing.T) {
	adapters, _, _, _, anomaly := testAdapters()
	anomalyScores := make([]float64, telemetry.SamplesPerWeek-5)
	for i := range anomalyScores {
		anomalyScores[i] = -0.09
	}
	anomalyScores[17] = -0.12
	anomaly.scores = anomalyScores

	engine := NewEngine(adapters, zaptest.NewLogger(t))
	pred, err := engine.Predict(context.Background(), healthyWindow(telemetry.SamplesPerWeek))
	require.NoError(t, err)

	assert.Equal(t, PredictionAnomaly, pred.PredictionType)
	// Confidence bumped by the anomaly flag.
	assert.InDelta(t, 0.46, pred.Confidence, 1e-9)

	var anomalyResult *SubsystemResult
	for i := range pred.Results {
		if pred.Results[i].Subsystem == SubsystemAnomaly {
			anomalyResult = &pred.Results[i]
		}
	}
	require.NotNil(t, anomalyResult)
	require.NotNil(t, anomalyResult.IsAnomaly)
	assert.True(t, *anomalyResult.IsAnomaly)
	assert.Equal(t, -0.12, *anomalyResult.AnomalyScore)
	assert.Equal(t, 17, anomalyResult.Details["window_index"])
}

func TestEnginePredictPartialFailure(t *testing.T) {
	adapters, _, scr, _, _ := testAdapters()
	scr.err = &model.AdapterError{Subsystem: "scr", Err: errors.New("endpoint unavailable")}

	engine := NewEngine(adapters, zaptest.NewLogger(t))
	pred, err := engine.Predict(context.Background(), healthyWindow(telemetry.SamplesPerWeek))
	require.NoError(t, err, "partial success is a supported outcome")

	bySubsystem := map[Subsystem]SubsystemResult{}
	for _, r := range pred.Results {
		bySubsystem[r.Subsystem] = r
	}
	assert.Equal(t, StatusError, bySubsystem[SubsystemSCR].Status)
	assert.Contains(t, bySubsystem[SubsystemSCR].Error, "endpoint unavailable")
	assert.Nil(t, bySubsystem[SubsystemSCR].RULDays, "errored subsystem excluded from aggregates")
	assert.Equal(t, StatusSuccess, bySubsystem[SubsystemDPF].Status)
	assert.Equal(t, StatusSuccess, bySubsystem[SubsystemOil].Status)
	assert.Equal(t, PredictionHealthy, pred.PredictionType)
}

func TestEnginePredictAllRULSubsystemsFailed(t *testing.T) {
	adapters, dpf, scr, oil, _ := testAdapters()
	failure := errors.New("model exploded")
	dpf.err, scr.err, oil.err = failure, failure, failure

	engine := NewEngine(adapters, zaptest.NewLogger(t))
	_, err := engine.Predict(context.Background(), healthyWindow(telemetry.SamplesPerWeek))
	assert.ErrorIs(t, err, ErrAllSubsystemsFailed)
}

func TestEnginePredictRejectsUnorderedWindow(t *testing.T) {
	adapters, _, _, _, _ := testAdapters()
	engine := NewEngine(adapters, zaptest.NewLogger(t))

	w := healthyWindow(telemetry.SamplesPerWeek)
	w.Rows[0], w.Rows[1] = w.Rows[1], w.Rows[0]

	_, err := engine.Predict(context.Background(), w)
	var ordering *telemetry.OrderingError
	assert.ErrorAs(t, err, &ordering)
}

func TestEngineAnomalyThresholdOption(t *testing.T) {
	adapters, _, _, _, anomaly := testAdapters()
	// Default scores of -0.09 cross a loosened threshold.
	engine := NewEngine(adapters, zaptest.NewLogger(t), WithAnomalyThreshold(-0.08))

	res, err := engine.PredictAnomaly(context.Background(), healthyWindow(telemetry.SamplesPerWeek))
	require.NoError(t, err)
	require.NotNil(t, res.IsAnomaly)
	assert.True(t, *res.IsAnomaly)
	assert.Equal(t, telemetry.SamplesPerWeek-5, anomaly.windows)
}
