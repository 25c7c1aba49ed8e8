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
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-fivefrets/internal/cloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type recordingModels struct {
	models  []string
	configs []*genai.GenerateContentConfig
}

func (r *recordingModels) GenerateContent(_ context.Context, model string, _ []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	r.models = append(r.models, model)
	r.configs = append(r.configs, config)
	return &genai.GenerateContentResponse{}, nil
}

func TestQuotaAwareModelPassesModelAndConfig(t *testing.T) {
	handle := &recordingModels{}
	config := cloud.NewGenerateContentConfig(cloud.VertexAiLLMModel{
		Model:              "gemini-2.0-flash",
		SystemInstructions: "You transcribe chords.",
		Temperature:        0.2,
		OutputFormat:       "application/json",
	})
	model := cloud.NewQuotaAwareModel(config, "gemini-2.0-flash", handle, 0)

	_, err := model.GenerateContent(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"gemini-2.0-flash"}, handle.models)
	assert.Same(t, config, handle.configs[0])
	assert.Equal(t, "application/json", config.ResponseMIMEType)
	require.NotNil(t, config.SystemInstruction)
	assert.Equal(t, "You transcribe chords.", config.SystemInstruction.Parts[0].Text)
}

func TestQuotaAwareModelWaitsForToken(t *testing.T) {
	handle := &recordingModels{}
	model := cloud.NewQuotaAwareModel(&genai.GenerateContentConfig{}, "m", handle, 1)

	// The first call drains the burst; the second must wait for a new token.
	_, err := model.GenerateContent(context.Background(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = model.GenerateContent(ctx, nil)
	assert.Error(t, err)
	assert.Len(t, handle.models, 1)
}
