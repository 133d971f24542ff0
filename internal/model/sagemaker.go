// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package model // import "github.com/fleetpulse/maintenance/internal/model"

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
	"go.uber.org/zap"
)

// InvokeClient is the subset of the SageMaker Runtime API the adapters use.
type InvokeClient interface {
	InvokeEndpoint(ctx context.Context, params *sagemakerruntime.InvokeEndpointInput, optFns ...func(*sagemakerruntime.Options)) (*sagemakerruntime.InvokeEndpointOutput, error)
}

// predictResponse is the JSON body the sequence-model endpoints return.
type predictResponse struct {
	RULLog      *float64 `json:"rul_log,omitempty"`
	RULHours    *float64 `json:"rul_hours,omitempty"`
	Probability *float64 `json:"probability,omitempty"`
}

// scoreResponse is the JSON body the anomaly endpoint returns.
type scoreResponse struct {
	Scores []float64 `json:"scores"`
}

// EndpointPredictor invokes a hosted sequence model. The scaler is applied
// client-side before invocation, mirroring how the artifacts were exported
// at training time.
type EndpointPredictor struct {
	client    InvokeClient
	endpoint  string
	subsystem string
	scaler    *ScalerParams
	logger    *zap.Logger
}

// NewEndpointPredictor builds a predictor for one subsystem endpoint.
func NewEndpointPredictor(client InvokeClient, endpoint, subsystem string, scaler *ScalerParams, logger *zap.Logger) *EndpointPredictor {
	return &EndpointPredictor{
		client:    client,
		endpoint:  endpoint,
		subsystem: subsystem,
		scaler:    scaler,
		logger:    logger.Named(subsystem + "-adapter"),
	}
}

// Predict scales the tensor and invokes the endpoint.
func (p *EndpointPredictor) Predict(ctx context.Context, tensor [][]float64) (Output, error) {
	scaled, err := p.scaler.Transform(tensor)
	if err != nil {
		return Output{}, &AdapterError{Subsystem: p.subsystem, Err: err}
	}
	body, err := p.invoke(ctx, scaled)
	if err != nil {
		return Output{}, &AdapterError{Subsystem: p.subsystem, Err: err}
	}
	var resp predictResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Output{}, &AdapterError{Subsystem: p.subsystem, Err: fmt.Errorf("parse response: %w", err)}
	}
	p.logger.Debug("model invoked",
		zap.Int("rows", len(tensor)),
		zap.Float64p("rul_log", resp.RULLog),
		zap.Float64p("rul_hours", resp.RULHours),
		zap.Float64p("probability", resp.Probability))
	return Output{RULLog: resp.RULLog, RULHours: resp.RULHours, Probability: resp.Probability}, nil
}

// EndpointScorer invokes the hosted anomaly model over window feature
// vectors.
type EndpointScorer struct {
	client   InvokeClient
	endpoint string
	scaler   *ScalerParams
	logger   *zap.Logger
}

// NewEndpointScorer builds the anomaly scorer adapter.
func NewEndpointScorer(client InvokeClient, endpoint string, scaler *ScalerParams, logger *zap.Logger) *EndpointScorer {
	return &EndpointScorer{
		client:   client,
		endpoint: endpoint,
		scaler:   scaler,
		logger:   logger.Named("anomaly-adapter"),
	}
}

// Score scales the window matrix, invokes the endpoint and returns one
// decision score per window.
func (s *EndpointScorer) Score(ctx context.Context, matrix [][]float64) ([]float64, error) {
	scaled, err := s.scaler.Transform(matrix)
	if err != nil {
		return nil, &AdapterError{Subsystem: "anomaly", Err: err}
	}
	body, err := invokeEndpoint(ctx, s.client, s.endpoint, scaled)
	if err != nil {
		return nil, &AdapterError{Subsystem: "anomaly", Err: err}
	}
	var resp scoreResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &AdapterError{Subsystem: "anomaly", Err: fmt.Errorf("parse response: %w", err)}
	}
	if len(resp.Scores) != len(matrix) {
		return nil, &AdapterError{Subsystem: "anomaly", Err: fmt.Errorf("endpoint returned %d scores for %d windows", len(resp.Scores), len(matrix))}
	}
	s.logger.Debug("anomaly model invoked", zap.Int("windows", len(matrix)))
	return resp.Scores, nil
}

func (p *EndpointPredictor) invoke(ctx context.Context, tensor [][]float64) ([]byte, error) {
	return invokeEndpoint(ctx, p.client, p.endpoint, tensor)
}

// invokeEndpoint posts the feature tensor as a single-instance JSON payload
// and returns the raw response body.
func invokeEndpoint(ctx context.Context, client InvokeClient, endpoint string, tensor [][]float64) ([]byte, error) {
	payload, err := json.Marshal(map[string]any{"instances": tensor})
	if err != nil {
		return nil, err
	}
	out, err := client.InvokeEndpoint(ctx, &sagemakerruntime.InvokeEndpointInput{
		EndpointName: aws.String(endpoint),
		Body:         payload,
		ContentType:  aws.String("application/json"),
		Accept:       aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("invoke endpoint %s: %w", endpoint, err)
	}
	return out.Body, nil
}
