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

package cloud_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jaycherian/gcp-go-fivefrets/internal/cloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"google.golang.org/genai"
)

const baseToml = `
[application]
name = "fivefrets"
google_project_id = "base-project"
location = "us-central1"
thread_pool_size = 2

[big_query_data_source]
dataset = "fivefrets"
song_table = "songs"
chord_table = "song_chords"

[topics]
ingest = "song-ingest"

[topic_subscriptions.SongIngestTopic]
name = "song-ingest-sub"
timeout_in_seconds = 600

[agent_models.chord-flash]
model = "gemini-2.0-flash"
temperature = 0.2
output_format = "application/json"
rate_limit = 2
`

const runtimeToml = `
[application]
google_project_id = "runtime-project"
ingest_mode = "sync"
`

func writeConfigs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	return dir
}

func TestLoadConfigMergesRuntimeFile(t *testing.T) {
	dir := writeConfigs(t, map[string]string{
		".env.toml":       baseToml,
		".env.local.toml": runtimeToml,
	})
	t.Setenv(cloud.EnvConfigFilePrefix, dir)
	t.Setenv(cloud.EnvConfigRuntime, "local")

	config := cloud.NewConfig()
	require.NoError(t, cloud.LoadConfig(config))
	config.ApplyDefaults()

	assert.Equal(t, "runtime-project", config.Application.GoogleProjectId)
	assert.Equal(t, "us-central1", config.Application.GoogleLocation)
	assert.Equal(t, cloud.IngestModeSync, config.Application.IngestMode)
	assert.Equal(t, 2, config.Application.ThreadPoolSize)
	assert.Equal(t, ":8080", config.Application.HttpAddress)
	assert.Equal(t, "song_chords", config.BigQueryDataSource.ChordTable)
	assert.Equal(t, "song-ingest", config.Topics.Ingest)
	assert.Equal(t, "song-ingest-sub", config.TopicSubscriptions[cloud.IngestSubscriptionKey].Name)
	assert.Equal(t, 2, config.AgentModels[cloud.ChordModelName].RateLimit)
}

func TestLoadConfigDefaultsToTestRuntime(t *testing.T) {
	dir := writeConfigs(t, map[string]string{".env.test.toml": runtimeToml})
	t.Setenv(cloud.EnvConfigFilePrefix, dir)
	t.Setenv(cloud.EnvConfigRuntime, "")

	base, runtime := cloud.ConfigFiles()
	assert.Equal(t, filepath.Join(dir, ".env.toml"), base)
	assert.Equal(t, filepath.Join(dir, ".env.test.toml"), runtime)

	config := cloud.NewConfig()
	require.NoError(t, cloud.LoadConfig(config))
	assert.Equal(t, "runtime-project", config.Application.GoogleProjectId)
}

func TestLoadConfigRejectsBadToml(t *testing.T) {
	dir := writeConfigs(t, map[string]string{".env.toml": "[application\nname="})
	t.Setenv(cloud.EnvConfigFilePrefix, dir)
	t.Setenv(cloud.EnvConfigRuntime, "test")

	assert.Error(t, cloud.LoadConfig(cloud.NewConfig()))
}

func TestLoadDotEnv(t *testing.T) {
	dir := writeConfigs(t, map[string]string{".env": "FIVEFRETS_TEST_VALUE=from-file\nGCP_RUNTIME=local\n"})
	t.Setenv("FIVEFRETS_TEST_VALUE", "")
	require.NoError(t, os.Unsetenv("FIVEFRETS_TEST_VALUE"))
	t.Setenv(cloud.EnvConfigRuntime, "prod")

	require.NoError(t, cloud.LoadDotEnv(filepath.Join(dir, ".env")))
	assert.Equal(t, "from-file", os.Getenv("FIVEFRETS_TEST_VALUE"))
	// Variables already present in the environment win.
	assert.Equal(t, "prod", os.Getenv(cloud.EnvConfigRuntime))

	assert.NoError(t, cloud.LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestLoadApplicationConfigKeepsEnvironment(t *testing.T) {
	dir := writeConfigs(t, map[string]string{
		".env.toml":       baseToml,
		".env.local.toml": runtimeToml,
	})
	t.Setenv(cloud.EnvConfigFilePrefix, dir)
	t.Setenv(cloud.EnvConfigRuntime, "local")

	// The arguments are only defaults; the environment points elsewhere.
	config, err := cloud.LoadApplicationConfig("configs", "prod")
	require.NoError(t, err)
	assert.Equal(t, "runtime-project", config.Application.GoogleProjectId)
	assert.Equal(t, cloud.ExporterGCP, config.Application.TelemetryExporter)
	assert.Equal(t, "diagrams", config.Storage.DiagramPrefix)
}

// scriptedGenerator fails a fixed number of times before answering.
type scriptedGenerator struct {
	failures int
	calls    int
	answer   string
}

func (s *scriptedGenerator) GenerateContent(_ context.Context, _ []*genai.Content) (*genai.GenerateContentResponse, error) {
	s.calls++
	if s.calls <= s.failures {
		return nil, errors.New("unavailable")
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: s.answer}}}}},
	}, nil
}

func counters(t *testing.T) (in, out, retry metric.Int64Counter) {
	t.Helper()
	meter := noop.NewMeterProvider().Meter("test")
	in, _ = meter.Int64Counter("in")
	out, _ = meter.Int64Counter("out")
	retry, _ = meter.Int64Counter("retry")
	return in, out, retry
}

func TestGenerateMultiModalResponseStripsFence(t *testing.T) {
	in, out, retry := counters(t)
	gen := &scriptedGenerator{answer: "```json\n{\"title\":\"x\"}\n```"}

	value, err := cloud.GenerateMultiModalResponse(context.Background(), in, out, retry, 0, gen, cloud.NewUserContent(cloud.NewTextPart("hi")))
	require.NoError(t, err)
	assert.Equal(t, `{"title":"x"}`, value)
	assert.Equal(t, 1, gen.calls)
}

func TestGenerateMultiModalResponseRetries(t *testing.T) {
	in, out, retry := counters(t)
	gen := &scriptedGenerator{failures: cloud.MaxRetries, answer: "{}"}

	value, err := cloud.GenerateMultiModalResponse(context.Background(), in, out, retry, 0, gen, nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", value)
	assert.Equal(t, cloud.MaxRetries+1, gen.calls)
}

func TestGenerateMultiModalResponseGivesUp(t *testing.T) {
	in, out, retry := counters(t)
	gen := &scriptedGenerator{failures: cloud.MaxRetries + 1, answer: "{}"}

	_, err := cloud.GenerateMultiModalResponse(context.Background(), in, out, retry, 0, gen, nil)
	assert.Error(t, err)
	assert.Equal(t, cloud.MaxRetries+1, gen.calls)
}

func TestGenerateMultiModalResponseEmpty(t *testing.T) {
	in, out, retry := counters(t)
	gen := &scriptedGenerator{answer: "  "}

	_, err := cloud.GenerateMultiModalResponse(context.Background(), in, out, retry, 0, gen, nil)
	assert.ErrorIs(t, err, cloud.ErrEmptyResponse)
}

func TestNewFileData(t *testing.T) {
	part := cloud.NewFileData("https://www.youtube.com/watch?v=dQw4w9WgXcQ", "video/mp4")
	require.NotNil(t, part.FileData)
	assert.Equal(t, "video/mp4", part.FileData.MIMEType)

	content := cloud.NewUserContent(cloud.NewTextPart("prompt"), part)
	require.Len(t, content, 1)
	assert.Equal(t, "user", content[0].Role)
	assert.Len(t, content[0].Parts, 2)
}
