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

package telemetry_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/jaycherian/gcp-go-fivefrets/internal/cloud"
	"github.com/jaycherian/gcp-go-fivefrets/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	out := make(map[string]interface{})
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestLogHandlerCloudLoggingKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(telemetry.NewLogHandler(&buf, slog.LevelInfo))

	logger.Warn("careful", "chord", "F#m7")
	record := decode(t, &buf)

	assert.Equal(t, "WARNING", record["severity"])
	assert.Equal(t, "careful", record["message"])
	assert.Contains(t, record, "timestamp")
	assert.Equal(t, "F#m7", record["chord"])
	assert.NotContains(t, record, "logging.googleapis.com/trace")
}

func TestLogHandlerAddsTraceIds(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "display")
	defer span.End()

	var buf bytes.Buffer
	logger := slog.New(telemetry.NewLogHandler(&buf, slog.LevelInfo)).With("component", "api")
	logger.InfoContext(ctx, "rendered")
	record := decode(t, &buf)

	assert.Equal(t, span.SpanContext().TraceID().String(), record["logging.googleapis.com/trace"])
	assert.Equal(t, span.SpanContext().SpanID().String(), record["logging.googleapis.com/spanId"])
	assert.Equal(t, true, record["logging.googleapis.com/trace_sampled"])
	assert.Equal(t, "api", record["component"])
}

func TestLogHandlerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(telemetry.NewLogHandler(&buf, slog.LevelInfo))
	logger.Debug("hidden")
	assert.Zero(t, buf.Len())
}

func TestSetupLoggingWithFile(t *testing.T) {
	previous := slog.Default()
	defer slog.SetDefault(previous)

	file := t.TempDir() + "/fivefrets.log"
	closeLog, err := telemetry.SetupLogging(telemetry.LogOptions{File: file})
	require.NoError(t, err)
	slog.Info("to the file")
	require.NoError(t, closeLog())
	assert.FileExists(t, file)
}

func TestSetupOpenTelemetryDisabled(t *testing.T) {
	config := cloud.NewConfig()
	config.Application.TelemetryExporter = cloud.ExporterNone

	shutdown, err := telemetry.SetupOpenTelemetry(context.Background(), config)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	// The bridge logger works against whatever provider is installed.
	otelslog.NewLogger("fivefrets-test").Info("telemetry disabled")
}

func TestSetupOpenTelemetryUnknownExporter(t *testing.T) {
	config := cloud.NewConfig()
	config.Application.TelemetryExporter = "jaeger"
	_, err := telemetry.SetupOpenTelemetry(context.Background(), config)
	assert.ErrorContains(t, err, "jaeger")
}
