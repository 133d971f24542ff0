// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the prediction engine over HTTP: one endpoint per
// subsystem, the unified /predict/all endpoint, and a readiness probe.
package server // import "github.com/fleetpulse/maintenance/internal/server"

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fleetpulse/maintenance/internal/features"
	"github.com/fleetpulse/maintenance/internal/fusion"
	"github.com/fleetpulse/maintenance/internal/telemetry"
)

// Server routes prediction requests to the fusion engine.
type Server struct {
	engine *fusion.Engine
	logger *zap.Logger
}

// New builds the HTTP server facade.
func New(engine *fusion.Engine, logger *zap.Logger) *Server {
	return &Server{engine: engine, logger: logger.Named("http")}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /predict/all", s.handlePredictAll)
	mux.HandleFunc("POST /predict/dpf", s.subsystemHandler(s.engine.PredictDPF))
	mux.HandleFunc("POST /predict/scr", s.subsystemHandler(s.engine.PredictSCR))
	mux.HandleFunc("POST /predict/oil", s.subsystemHandler(s.engine.PredictOil))
	mux.HandleFunc("POST /predict/anomaly", s.subsystemHandler(s.engine.PredictAnomaly))
	mux.HandleFunc("GET /health", s.handleHealth)
	return s.logRequests(mux)
}

func (s *Server) handlePredictAll(w http.ResponseWriter, r *http.Request) {
	window, ok := s.decodeWindow(w, r)
	if !ok {
		return
	}
	prediction, err := s.engine.Predict(r.Context(), window)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, prediction)
}

// subsystemHandler adapts one subsystem pipeline to an HTTP endpoint.
func (s *Server) subsystemHandler(predict func(context.Context, telemetry.Window) (fusion.SubsystemResult, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window, ok := s.decodeWindow(w, r)
		if !ok {
			return
		}
		if err := window.Validate(); err != nil {
			s.writeErrorStatus(w, http.StatusBadRequest, err)
			return
		}
		result, err := predict(r.Context(), window)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// decodeWindow parses the request body into a telemetry window; on failure
// it writes a 400 and returns ok=false.
func (s *Server) decodeWindow(w http.ResponseWriter, r *http.Request) (telemetry.Window, bool) {
	window, err := DecodeWindow(r.Body)
	if err != nil {
		s.writeErrorStatus(w, http.StatusBadRequest, err)
		return telemetry.Window{}, false
	}
	return window, true
}

// writeError maps the error taxonomy to HTTP statuses: validation failures
// are the caller's fault, everything else is a server-side failure.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var insufficient *features.InsufficientDataError
	var missing *features.MissingColumnError
	var ordering *telemetry.OrderingError
	switch {
	case errors.As(err, &insufficient), errors.As(err, &missing), errors.As(err, &ordering):
		s.writeErrorStatus(w, http.StatusBadRequest, err)
	default:
		s.writeErrorStatus(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) writeErrorStatus(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", zap.Error(err))
	}
}

// logRequests is the access-log middleware.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}
