// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package model // import "github.com/fleetpulse/maintenance/internal/model"

import (
	"context"
	"path"
	"path/filepath"
)

// Scaler artifact file names, one per subsystem, as exported at training
// time.
const (
	DPFScalerFile     = "dpf_scaler.json"
	SCRScalerFile     = "scr_scaler.json"
	OilScalerFile     = "oil_scaler.json"
	AnomalyScalerFile = "anomaly_scaler.json"
)

// Scalers holds the per-subsystem standardization parameters. Loaded once
// at process start; read-only afterwards.
type Scalers struct {
	DPF     *ScalerParams
	SCR     *ScalerParams
	Oil     *ScalerParams
	Anomaly *ScalerParams
}

// LoadScalersFromDir reads all four scaler artifacts from a local
// directory.
func LoadScalersFromDir(dir string) (*Scalers, error) {
	out := &Scalers{}
	for _, entry := range []struct {
		file string
		dst  **ScalerParams
	}{
		{DPFScalerFile, &out.DPF},
		{SCRScalerFile, &out.SCR},
		{OilScalerFile, &out.Oil},
		{AnomalyScalerFile, &out.Anomaly},
	} {
		params, err := LoadScalerParamsFile(filepath.Join(dir, entry.file))
		if err != nil {
			return nil, err
		}
		*entry.dst = params
	}
	return out, nil
}

// LoadScalersFromS3 fetches all four scaler artifacts from an S3 prefix.
func LoadScalersFromS3(ctx context.Context, client S3Client, bucket, prefix string) (*Scalers, error) {
	out := &Scalers{}
	for _, entry := range []struct {
		file string
		dst  **ScalerParams
	}{
		{DPFScalerFile, &out.DPF},
		{SCRScalerFile, &out.SCR},
		{OilScalerFile, &out.Oil},
		{AnomalyScalerFile, &out.Anomaly},
	} {
		params, err := LoadScalerParamsS3(ctx, client, bucket, path.Join(prefix, entry.file))
		if err != nil {
			return nil, err
		}
		*entry.dst = params
	}
	return out, nil
}
