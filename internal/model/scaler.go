// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package model // import "github.com/fleetpulse/maintenance/internal/model"

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrScalerUnfitted is returned when a scaler has no parameters loaded.
var ErrScalerUnfitted = errors.New("scaler has no fitted parameters")

// ScalerParams are the per-column standardization parameters exported at
// training time. Loaded once at process start and read-only afterwards;
// shared freely across concurrent requests.
type ScalerParams struct {
	Center []float64 `json:"center"`
	Scale  []float64 `json:"scale"`
}

// Validate checks that the parameters are usable.
func (p *ScalerParams) Validate() error {
	if len(p.Center) == 0 || len(p.Scale) == 0 {
		return ErrScalerUnfitted
	}
	if len(p.Center) != len(p.Scale) {
		return fmt.Errorf("scaler center/scale length mismatch: %d vs %d", len(p.Center), len(p.Scale))
	}
	return nil
}

// Transform standardizes a (rows, features) tensor column-wise into a new
// matrix. The input is never modified. A column-count mismatch means the
// tensor was built for a different model and is an adapter error.
func (p *ScalerParams) Transform(tensor [][]float64) ([][]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	out := make([][]float64, len(tensor))
	for i, row := range tensor {
		if len(row) != len(p.Center) {
			return nil, fmt.Errorf("scaler expects %d features, tensor row has %d", len(p.Center), len(row))
		}
		scaled := make([]float64, len(row))
		for j, v := range row {
			if p.Scale[j] != 0 {
				scaled[j] = (v - p.Center[j]) / p.Scale[j]
			} else {
				scaled[j] = v - p.Center[j]
			}
		}
		out[i] = scaled
	}
	return out, nil
}

// LoadScalerParamsFile reads scaler parameters from a local JSON file.
func LoadScalerParamsFile(path string) (*ScalerParams, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scaler parameters: %w", err)
	}
	defer f.Close()
	return decodeScalerParams(f)
}

// S3Client is the subset of the S3 API the scaler loader needs.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// LoadScalerParamsS3 fetches scaler parameters from an S3 object, for
// deployments where model artifacts live alongside the endpoints.
func LoadScalerParamsS3(ctx context.Context, client S3Client, bucket, key string) (*ScalerParams, error) {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("download scaler parameters s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()
	return decodeScalerParams(out.Body)
}

func decodeScalerParams(r io.Reader) (*ScalerParams, error) {
	var params ScalerParams
	if err := json.NewDecoder(r).Decode(&params); err != nil {
		return nil, fmt.Errorf("parse scaler parameters: %w", err)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &params, nil
}
