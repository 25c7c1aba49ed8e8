// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package main is the fivefrets HTTP service. It serves the chord chart
// pages and the JSON API, and runs the song ingestion workflow for the
// requests arriving on the ingest subscription.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jaycherian/gcp-go-fivefrets/internal/api"
	"github.com/jaycherian/gcp-go-fivefrets/internal/cloud"
	"github.com/jaycherian/gcp-go-fivefrets/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config, err := GetConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	closeLog, err := telemetry.SetupLogging(telemetry.LogOptions{File: config.Application.LogFile})
	if err != nil {
		log.Fatal(err)
	}
	defer closeLog()
	slog.Info("logging initialized", "runtime", os.Getenv(cloud.EnvConfigRuntime))

	shutdownTelemetry, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("failed to setup OpenTelemetry", "error", err)
		os.Exit(1)
	}
	slog.Info("tracing initialized", "exporter", config.Application.TelemetryExporter)

	state, err := InitState(ctx, config)
	if err != nil {
		slog.Error("failed to initialize state", "error", err)
		os.Exit(1)
	}
	slog.Info("initialized state", "ingest_mode", config.Application.IngestMode)

	router, err := api.NewRouter(state.server, config.Application.Name)
	if err != nil {
		slog.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         config.Application.HttpAddress,
		Handler:      router,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen", "error", err)
			cancel()
		}
	}()
	slog.Info("server ready", "address", srv.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	// Stops the Pub/Sub receive loops.
	cancel()
	state.Close(shutdownCtx)

	if err := shutdownTelemetry(shutdownCtx); err != nil {
		slog.Error("failed to shutdown telemetry", "error", err)
	}
	slog.Info("server exiting")
}
