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

package main

import (
	"context"
	"testing"

	"github.com/jaycherian/gcp-go-fivefrets/internal/cloud"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/services"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/workflow"
	test "github.com/jaycherian/gcp-go-fivefrets/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIngestion(t *testing.T) *workflow.SongIngestionWorkflow {
	t.Helper()
	store := test.NewSongStore()
	w, err := workflow.NewSongIngestionWorkflow(workflow.SongIngestionDeps{
		Store: store, Writer: store, Model: test.NewChartGenerator(), Uploader: test.NewUploader(),
		PromptTemplate: "{{.VIDEO_URL}}", DiagramPrefix: "diagrams", Workers: 1,
	})
	require.NoError(t, err)
	return w
}

func TestNewFeatureExtractorSync(t *testing.T) {
	config := cloud.NewConfig()
	config.Application.IngestMode = cloud.IngestModeSync

	extractor, requester, err := NewFeatureExtractor(config, &cloud.ServiceClients{}, newIngestion(t))
	require.NoError(t, err)
	assert.Nil(t, requester)
	assert.IsType(t, &services.ChainFeatureExtractor{}, extractor)
	assert.NoError(t, extractor.RequestFeatures(context.Background(), "dQw4w9WgXcQ"))
}

func TestNewFeatureExtractorAsyncNeedsTopic(t *testing.T) {
	config := cloud.NewConfig()
	config.Application.IngestMode = cloud.IngestModeAsync

	_, _, err := NewFeatureExtractor(config, &cloud.ServiceClients{}, newIngestion(t))
	assert.ErrorContains(t, err, "topics.ingest")
}

func TestNewFeatureExtractorUnknownMode(t *testing.T) {
	config := cloud.NewConfig()
	config.Application.IngestMode = "batch"

	_, _, err := NewFeatureExtractor(config, &cloud.ServiceClients{}, newIngestion(t))
	assert.ErrorContains(t, err, "batch")
}
