// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeInvoker struct {
	response string
	err      error

	endpoint string
	payload  []byte
}

func (f *fakeInvoker) InvokeEndpoint(_ context.Context, params *sagemakerruntime.InvokeEndpointInput, _ ...func(*sagemakerruntime.Options)) (*sagemakerruntime.InvokeEndpointOutput, error) {
	f.endpoint = *params.EndpointName
	f.payload = params.Body
	if f.err != nil {
		return nil, f.err
	}
	return &sagemakerruntime.InvokeEndpointOutput{Body: []byte(f.response)}, nil
}

func identityScaler(features int) *ScalerParams {
	params := &ScalerParams{
		Center: make([]float64, features),
		Scale:  make([]float64, features),
	}
	for i := range params.Scale {
		params.Scale[i] = 1
	}
	return params
}

func TestEndpointPredictor(t *testing.T) {
	invoker := &fakeInvoker{response: `{"rul_log":7.2,"probability":0.83}`}
	predictor := NewEndpointPredictor(invoker, "dpf-endpoint", "dpf", identityScaler(2), zaptest.NewLogger(t))

	out, err := predictor.Predict(context.Background(), [][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	require.NotNil(t, out.RULLog)
	assert.Equal(t, 7.2, *out.RULLog)
	require.NotNil(t, out.Probability)
	assert.Equal(t, 0.83, *out.Probability)
	assert.Nil(t, out.RULHours)

	assert.Equal(t, "dpf-endpoint", invoker.endpoint)
	var body struct {
		Instances [][]float64 `json:"instances"`
	}
	require.NoError(t, json.Unmarshal(invoker.payload, &body))
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, body.Instances, "identity scaler leaves the tensor unchanged")
}

func TestEndpointPredictorScalesBeforeInvoking(t *testing.T) {
	invoker := &fakeInvoker{response: `{"probability":0.1}`}
	scaler := &ScalerParams{Center: []float64{10}, Scale: []float64{2}}
	predictor := NewEndpointPredictor(invoker, "oil-endpoint", "oil", scaler, zaptest.NewLogger(t))

	_, err := predictor.Predict(context.Background(), [][]float64{{14}})
	require.NoError(t, err)

	var body struct {
		Instances [][]float64 `json:"instances"`
	}
	require.NoError(t, json.Unmarshal(invoker.payload, &body))
	assert.Equal(t, [][]float64{{2}}, body.Instances)
}

func TestEndpointPredictorErrors(t *testing.T) {
	t.Run("invoke failure", func(t *testing.T) {
		invoker := &fakeInvoker{err: errors.New("throttled")}
		predictor := NewEndpointPredictor(invoker, "dpf-endpoint", "dpf", identityScaler(1), zaptest.NewLogger(t))

		_, err := predictor.Predict(context.Background(), [][]float64{{1}})
		var adapterErr *AdapterError
		require.ErrorAs(t, err, &adapterErr)
		assert.Equal(t, "dpf", adapterErr.Subsystem)
	})

	t.Run("malformed response", func(t *testing.T) {
		invoker := &fakeInvoker{response: `not json`}
		predictor := NewEndpointPredictor(invoker, "dpf-endpoint", "dpf", identityScaler(1), zaptest.NewLogger(t))

		_, err := predictor.Predict(context.Background(), [][]float64{{1}})
		var adapterErr *AdapterError
		require.ErrorAs(t, err, &adapterErr)
		assert.ErrorContains(t, err, "parse response")
	})

	t.Run("tensor shape mismatch", func(t *testing.T) {
		invoker := &fakeInvoker{response: `{}`}
		predictor := NewEndpointPredictor(invoker, "dpf-endpoint", "dpf", identityScaler(3), zaptest.NewLogger(t))

		_, err := predictor.Predict(context.Background(), [][]float64{{1}})
		var adapterErr *AdapterError
		require.ErrorAs(t, err, &adapterErr)
		assert.Nil(t, invoker.payload, "endpoint is never invoked on a shape mismatch")
	})
}

func TestEndpointScorer(t *testing.T) {
	invoker := &fakeInvoker{response: `{"scores":[-0.09,-0.12]}`}
	scorer := NewEndpointScorer(invoker, "anomaly-endpoint", identityScaler(2), zaptest.NewLogger(t))

	scores, err := scorer.Score(context.Background(), [][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	assert.Equal(t, []float64{-0.09, -0.12}, scores)
	assert.Equal(t, "anomaly-endpoint", invoker.endpoint)
}

func TestEndpointScorerLengthMismatch(t *testing.T) {
	invoker := &fakeInvoker{response: `{"scores":[-0.09]}`}
	scorer := NewEndpointScorer(invoker, "anomaly-endpoint", identityScaler(2), zaptest.NewLogger(t))

	_, err := scorer.Score(context.Background(), [][]float64{{1, 2}, {3, 4}})
	var adapterErr *AdapterError
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, "anomaly", adapterErr.Subsystem)
	assert.ErrorContains(t, err, "1 scores for 2 windows")
}

func TestRULLogToDays(t *testing.T) {
	// exp(x)-1 hours, floored at zero days.
	assert.InDelta(t, 0.0, RULLogToDays(0), 1e-9)
	assert.InDelta(t, 41.677, RULLogToDays(6.909), 0.01)
	assert.Equal(t, 0.0, RULLogToDays(-5))
}
