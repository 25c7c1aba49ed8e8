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

// Package test holds helpers shared by the test suites: configuration
// loading, sample messages and in-memory fakes of the external collaborators.
package test

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jaycherian/gcp-go-fivefrets/internal/cloud"
)

// EnvIntegration enables the tests that talk to real Google Cloud services.
const EnvIntegration = "FIVEFRETS_INTEGRATION"

var (
	configOnce sync.Once
	config     *cloud.Config
	configErr  error
)

func HandleErr(err error, t *testing.T) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// RequireIntegration skips t unless FIVEFRETS_INTEGRATION is set.
func RequireIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv(EnvIntegration) == "" {
		t.Skipf("set %s=1 to run tests against Google Cloud", EnvIntegration)
	}
}

// ConfigDir finds the repository's configs directory by walking up from the
// working directory of the test binary.
func ConfigDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, "configs")
		if _, err := os.Stat(filepath.Join(candidate, cloud.ConfigFileBaseName+cloud.ConfigFileExtension)); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("configs directory not found above the working directory")
		}
		dir = parent
	}
}

// SetupOS points the configuration loader at the test runtime.
func SetupOS() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err = os.Setenv(cloud.EnvConfigFilePrefix, dir); err != nil {
		return err
	}
	return os.Setenv(cloud.EnvConfigRuntime, "test")
}

// GetConfig loads the test configuration once per test binary.
func GetConfig(t *testing.T) *cloud.Config {
	t.Helper()
	configOnce.Do(func() {
		if configErr = SetupOS(); configErr != nil {
			return
		}
		config = cloud.NewConfig()
		if configErr = cloud.LoadConfig(config); configErr != nil {
			return
		}
		config.ApplyDefaults()
	})
	HandleErr(configErr, t)
	return config
}

// GetTestIngestMessageText is the Pub/Sub payload published for a lookup miss.
func GetTestIngestMessageText(youTubeId string) string {
	return fmt.Sprintf(`{"youtube_id": %q, "requested_at": "2024-10-11T03:04:08.672Z"}`, youTubeId)
}
