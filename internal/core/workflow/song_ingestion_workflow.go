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

// Package workflow combines commands into the pipelines run by the service.
// This file implements song ingestion: a YouTube id goes in, a Song with its
// chord chart and diagram images comes out in BigQuery and Cloud Storage.
package workflow

import (
	"errors"
	"fmt"
	"text/template"

	"github.com/jaycherian/gcp-go-fivefrets/internal/cloud"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/commands"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/cor"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/services"
)

// SongIngestionDeps are the collaborators of the ingestion chain.
type SongIngestionDeps struct {
	Store          services.SongStore
	Writer         services.SongWriter
	Model          cloud.ContentGenerator
	Uploader       commands.DiagramUploader
	PromptTemplate string // text/template source of the chord prompt.
	DiagramPrefix  string
	Workers        int // Diagram render workers.
}

// SongIngestionWorkflow runs the ingestion chain. The chain input (CtxIn)
// is the JSON text of a model.IngestRequest.
type SongIngestionWorkflow struct {
	cor.BaseCommand
	deps   SongIngestionDeps
	prompt *template.Template
	chain  cor.Chain
}

func (w *SongIngestionWorkflow) IsExecutable(context cor.Context) bool {
	return w.chain.IsExecutable(context)
}

func (w *SongIngestionWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// Chain exposes the underlying chain, mainly for tests.
func (w *SongIngestionWorkflow) Chain() cor.Chain {
	return w.chain
}

func (w *SongIngestionWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())

	// 1. Pub/Sub payload to *model.IngestRequest.
	out.AddCommand(commands.NewIngestTriggerReader("ingest-trigger-reader"))

	// 2. A song that already exists ends the chain without an error, so
	// redelivered messages are harmless.
	out.AddCommand(commands.NewSongExistenceCheck("song-existence-check", w.deps.Store))

	// 3. Ask Gemini for the chord chart of the video.
	out.AddCommand(commands.NewChordChartCreator("generate-chord-chart", w.deps.Model, w.prompt))
	out.AddCommand(commands.NewChordChartJsonToStruct("convert-chord-chart"))

	// 4. One diagram per distinct chord, then store the images.
	out.AddCommand(commands.NewChordDiagramRenderer("render-chord-diagrams", w.deps.Workers))
	out.AddCommand(commands.NewDiagramUpload("upload-chord-diagrams", w.deps.Uploader, w.deps.DiagramPrefix))

	// 5. Build and write the rows.
	out.AddCommand(commands.NewSongAssembly("assemble-song"))
	out.AddCommand(commands.NewSongPersist("write-to-bigquery", w.deps.Writer))

	w.chain = out
}

// NewSongIngestionWorkflow validates deps, compiles the prompt and builds the
// chain.
func NewSongIngestionWorkflow(deps SongIngestionDeps) (*SongIngestionWorkflow, error) {
	if deps.Store == nil || deps.Writer == nil || deps.Model == nil || deps.Uploader == nil {
		return nil, errors.New("song ingestion needs a store, a writer, a model and an uploader")
	}
	if deps.PromptTemplate == "" {
		return nil, errors.New("chord prompt template is empty")
	}
	prompt, err := template.New("chord-template").Parse(deps.PromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse chord prompt template: %w", err)
	}

	w := &SongIngestionWorkflow{
		BaseCommand: *cor.NewBaseCommand("song-ingestion-pipeline"),
		deps:        deps,
		prompt:      prompt,
	}
	w.initializeChain()
	return w, nil
}

// NewSongIngestionPipeline wires the workflow to the Google Cloud clients.
func NewSongIngestionPipeline(config *cloud.Config, serviceClients *cloud.ServiceClients, agentModelName string) (*SongIngestionWorkflow, error) {
	model, err := serviceClients.AgentModel(agentModelName)
	if err != nil {
		return nil, err
	}
	if config.Storage.DiagramBucket == "" {
		return nil, errors.New("storage.diagram_bucket is not configured")
	}

	songs := &services.SongService{
		BigqueryClient: serviceClients.BigQueryClient,
		DatasetName:    config.BigQueryDataSource.DatasetName,
		SongTable:      config.BigQueryDataSource.SongTable,
		ChordTable:     config.BigQueryDataSource.ChordTable,
	}
	return NewSongIngestionWorkflow(SongIngestionDeps{
		Store:          songs,
		Writer:         songs,
		Model:          model,
		Uploader:       cloud.NewGCSObjectWriter(serviceClients.StorageClient, config.Storage.DiagramBucket),
		PromptTemplate: config.PromptTemplates.ChordPrompt,
		DiagramPrefix:  config.Storage.DiagramPrefix,
		Workers:        config.Application.ThreadPoolSize,
	})
}
