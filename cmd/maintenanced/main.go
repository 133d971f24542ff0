// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// maintenanced serves vehicle maintenance predictions: it loads the model
// adapters and scaler artifacts once, then exposes the fusion engine over
// HTTP until terminated.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fleetpulse/maintenance/internal/config"
	"github.com/fleetpulse/maintenance/internal/fusion"
	"github.com/fleetpulse/maintenance/internal/model"
	"github.com/fleetpulse/maintenance/internal/server"
)

func main() {
	// No .env file is fine; the environment is authoritative.
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("maintenanced exited", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return err
	}

	// Model and scaler artifacts are loaded exactly once here and shared,
	// read-only, across all requests for the life of the process.
	var scalers *model.Scalers
	if cfg.ScalerDir != "" {
		scalers, err = model.LoadScalersFromDir(cfg.ScalerDir)
	} else {
		scalers, err = model.LoadScalersFromS3(ctx, s3.NewFromConfig(awsCfg), cfg.ScalerS3Bucket, cfg.ScalerS3Prefix)
	}
	if err != nil {
		return err
	}
	logger.Info("scaler artifacts loaded")

	smClient := sagemakerruntime.NewFromConfig(awsCfg)
	adapters := fusion.Adapters{
		DPF:     model.NewEndpointPredictor(smClient, cfg.DPFEndpoint, "dpf", scalers.DPF, logger),
		SCR:     model.NewEndpointPredictor(smClient, cfg.SCREndpoint, "scr", scalers.SCR, logger),
		Oil:     model.NewEndpointPredictor(smClient, cfg.OilEndpoint, "oil", scalers.Oil, logger),
		Anomaly: model.NewEndpointScorer(smClient, cfg.AnomalyEndpoint, scalers.Anomaly, logger),
	}

	engine := fusion.NewEngine(adapters, logger, fusion.WithAnomalyThreshold(cfg.AnomalyThreshold))
	srv := &http.Server{
		Addr:        ":" + cfg.HTTPPort,
		Handler:     server.New(engine, logger).Handler(),
		ReadTimeout: time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving predictions", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
