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

// Package cloud provides components for interacting with Google Cloud services.
// This file contains general-purpose utility functions that support the cloud package.
//
// Functions:
//   - LoadDotEnv: Loads a local .env file into the process environment.
//   - LoadApplicationConfig: The startup sequence used by cmd/server and cmd/fivefrets.
//   - LoadConfig: Hierarchical configuration loader. It reads a base TOML file
//     and then overwrites values with an environment-specific file
//     (e.g., .env.local.toml, .env.test.toml) chosen by GCP_RUNTIME.
//   - GenerateMultiModalResponse: Calls a GenAI model with retries and records
//     token usage and retry metrics.
//   - NewTextPart, NewFileData, NewUserContent: Small factories for prompt parts.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"
)

// Cloud Constants define key strings and values used throughout the package,
// primarily for configuration loading and API interaction policies.
const (
	ConfigFileBaseName  = ".env"              // The base name for configuration files (e.g., ".env.toml").
	ConfigFileExtension = ".toml"             // The file extension for configuration files.
	ConfigSeparator     = "."                 // The separator used in config file names (e.g., ".env.local.toml").
	EnvConfigFilePrefix = "GCP_CONFIG_PREFIX" // The environment variable for specifying the config directory.
	EnvConfigRuntime    = "GCP_RUNTIME"       // The environment variable for specifying the runtime context (e.g., "local", "test", "prod").
	DotEnvFile          = ".env"              // Optional KEY=VALUE file read before the TOML files.
	MaxRetries          = 3                   // The maximum number of times to retry a failed API call.
)

// ErrEmptyResponse is returned when the model answers without any text.
var ErrEmptyResponse = errors.New("model returned an empty response")

func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (DotEnvFile when none
// is given) into the environment. Variables already set are left untouched and
// missing files are ignored, so a deployed service without a .env file behaves
// exactly as before.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{DotEnvFile}
	}
	present := make([]string, 0, len(files))
	for _, f := range files {
		if fileExists(f) {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("failed to load %v: %w", present, err)
	}
	return nil
}

// ConfigFiles returns the base and runtime specific configuration file paths
// derived from GCP_CONFIG_PREFIX and GCP_RUNTIME.
func ConfigFiles() (base string, runtime string) {
	configurationFilePrefix := os.Getenv(EnvConfigFilePrefix)
	if len(configurationFilePrefix) > 0 && !strings.HasSuffix(configurationFilePrefix, string(os.PathSeparator)) {
		configurationFilePrefix = configurationFilePrefix + string(os.PathSeparator)
	}

	runtimeEnvironment := os.Getenv(EnvConfigRuntime)
	if runtimeEnvironment == "" {
		runtimeEnvironment = "test"
	}

	base = configurationFilePrefix + ConfigFileBaseName + ConfigFileExtension
	runtime = configurationFilePrefix + ConfigFileBaseName + ConfigSeparator + runtimeEnvironment + ConfigFileExtension
	return base, runtime
}

// LoadConfig decodes the base configuration file and then the runtime
// specific one into baseConfig. Values from the second file win. Missing
// files are skipped; a file that fails to decode is an error.
func LoadConfig(baseConfig interface{}) error {
	baseConfigFileName, envConfigFileName := ConfigFiles()
	slog.Debug("loading configuration", "base", baseConfigFileName, "runtime", envConfigFileName)

	for _, name := range []string{baseConfigFileName, envConfigFileName} {
		if !fileExists(name) {
			continue
		}
		if _, err := toml.DecodeFile(name, baseConfig); err != nil {
			return fmt.Errorf("failed to decode configuration file %s: %w", name, err)
		}
	}
	return nil
}

// LoadApplicationConfig is the startup sequence shared by the binaries: the
// .env file, then GCP_CONFIG_PREFIX and GCP_RUNTIME defaults for variables
// that are still unset, then the TOML files and the defaults.
func LoadApplicationConfig(configDir string, runtime string) (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	for key, value := range map[string]string{EnvConfigFilePrefix: configDir, EnvConfigRuntime: runtime} {
		if _, ok := os.LookupEnv(key); ok || value == "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return nil, err
		}
	}
	config := NewConfig()
	if err := LoadConfig(config); err != nil {
		return nil, err
	}
	config.ApplyDefaults()
	return config, nil
}

// GenerateMultiModalResponse sends content to the model and returns the
// concatenated text of all candidates, with any markdown code fence removed.
// A failed call is retried until tryCount reaches MaxRetries.
func GenerateMultiModalResponse(
	ctx context.Context,
	inputTokenCounter metric.Int64Counter,
	outputTokenCounter metric.Int64Counter,
	retryCounter metric.Int64Counter,
	tryCount int,
	model ContentGenerator,
	content []*genai.Content) (value string, err error) {
	resp, err := model.GenerateContent(ctx, content)
	if err != nil {
		if tryCount < MaxRetries && ctx.Err() == nil {
			retryCounter.Add(ctx, 1)
			slog.WarnContext(ctx, "model call failed, retrying", "attempt", tryCount+1, "error", err)
			return GenerateMultiModalResponse(ctx, inputTokenCounter, outputTokenCounter, retryCounter, tryCount+1, model, content)
		}
		return "", err
	}

	if resp.UsageMetadata != nil {
		inputTokenCounter.Add(ctx, int64(resp.UsageMetadata.PromptTokenCount))
		outputTokenCounter.Add(ctx, int64(resp.UsageMetadata.CandidatesTokenCount))
	}

	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	value = strings.TrimSpace(sb.String())
	value = strings.TrimPrefix(value, "```json")
	value = strings.TrimPrefix(value, "```")
	value = strings.TrimSuffix(value, "```")
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ErrEmptyResponse
	}
	return value, nil
}

// NewTextPart creates a text part.
func NewTextPart(in string) *genai.Part {
	return &genai.Part{Text: in}
}

// NewFileData creates a part referencing a file by URI, e.g. a gs:// object
// or a YouTube watch URL.
func NewFileData(in string, mimeType string) *genai.Part {
	return &genai.Part{FileData: &genai.FileData{FileURI: in, MIMEType: mimeType}}
}

// NewUserContent wraps parts in a single user turn.
func NewUserContent(parts ...*genai.Part) []*genai.Content {
	return []*genai.Content{{Role: "user", Parts: parts}}
}
