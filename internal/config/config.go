// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package config loads process configuration from environment variables
// with sensible defaults. A .env file is honored when present.
package config // import "github.com/fleetpulse/maintenance/internal/config"

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fleetpulse/maintenance/internal/fusion"
)

// Config is the immutable process configuration, resolved once at startup.
type Config struct {
	// HTTP
	HTTPPort string

	// AWS / model endpoints
	AWSRegion       string
	DPFEndpoint     string
	SCREndpoint     string
	OilEndpoint     string
	AnomalyEndpoint string

	// Scaler artifacts: either a local directory of
	// {dpf,scr,oil,anomaly}_scaler.json files, or an S3 bucket + prefix.
	ScalerDir      string
	ScalerS3Bucket string
	ScalerS3Prefix string

	// Fusion tuning
	AnomalyThreshold float64

	// Server tuning
	ReadTimeoutSeconds     int
	ShutdownTimeoutSeconds int
}

// Load resolves the configuration from the environment.
func Load() *Config {
	return &Config{
		HTTPPort:               getEnv("HTTP_PORT", "8000"),
		AWSRegion:              getEnv("AWS_REGION", "eu-west-1"),
		DPFEndpoint:            getEnv("DPF_ENDPOINT_NAME", ""),
		SCREndpoint:            getEnv("SCR_ENDPOINT_NAME", ""),
		OilEndpoint:            getEnv("OIL_ENDPOINT_NAME", ""),
		AnomalyEndpoint:        getEnv("ANOMALY_ENDPOINT_NAME", ""),
		ScalerDir:              getEnv("SCALER_DIR", ""),
		ScalerS3Bucket:         getEnv("SCALER_S3_BUCKET", ""),
		ScalerS3Prefix:         getEnv("SCALER_S3_PREFIX", "models/"),
		AnomalyThreshold:       getEnvFloat("ANOMALY_THRESHOLD", fusion.DefaultAnomalyThreshold),
		ReadTimeoutSeconds:     getEnvInt("READ_TIMEOUT_SECONDS", 60),
		ShutdownTimeoutSeconds: getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 10),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	for name, v := range map[string]string{
		"DPF_ENDPOINT_NAME":     c.DPFEndpoint,
		"SCR_ENDPOINT_NAME":     c.SCREndpoint,
		"OIL_ENDPOINT_NAME":     c.OilEndpoint,
		"ANOMALY_ENDPOINT_NAME": c.AnomalyEndpoint,
	} {
		if v == "" {
			return fmt.Errorf("%s is required", name)
		}
	}
	if c.ScalerDir == "" && c.ScalerS3Bucket == "" {
		return fmt.Errorf("either SCALER_DIR or SCALER_S3_BUCKET is required")
	}
	if c.AnomalyThreshold >= 0 {
		return fmt.Errorf("ANOMALY_THRESHOLD must be negative, got %v", c.AnomalyThreshold)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
