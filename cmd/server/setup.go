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
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jaycherian/gcp-go-fivefrets/internal/api"
	"github.com/jaycherian/gcp-go-fivefrets/internal/cloud"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/services"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/workflow"
)

// ExtractionSuppressWindow keeps a popular unknown id from being published
// for every page view while its ingestion is still running.
const ExtractionSuppressWindow = 10 * time.Minute

// StateManager holds everything built at startup.
type StateManager struct {
	config    *cloud.Config
	cloud     *cloud.ServiceClients
	ingestion *workflow.SongIngestionWorkflow
	requester *services.PubSubFeatureRequester // Nil in sync mode.
	server    *api.Server
}

// GetConfig loads configs/.env.toml and the local runtime overrides unless
// GCP_CONFIG_PREFIX and GCP_RUNTIME say otherwise.
func GetConfig() (*cloud.Config, error) {
	return cloud.LoadApplicationConfig("configs", "local")
}

// NewFeatureExtractor picks the collaborator called on a lookup miss.
func NewFeatureExtractor(config *cloud.Config, clients *cloud.ServiceClients, ingestion *workflow.SongIngestionWorkflow) (services.FeatureExtractor, *services.PubSubFeatureRequester, error) {
	switch config.Application.IngestMode {
	case cloud.IngestModeSync:
		slog.Warn("ingest_mode sync runs transcription inside the request; a miss outlives the HTTP write timeout")
		return services.NewChainFeatureExtractor(ingestion), nil, nil
	case cloud.IngestModeAsync:
		topic, ok := clients.Topics["ingest"]
		if !ok {
			return nil, nil, errors.New("ingest_mode is async but topics.ingest is not configured")
		}
		requester := services.NewPubSubFeatureRequester(topic, ExtractionSuppressWindow)
		return requester, requester, nil
	default:
		return nil, nil, fmt.Errorf("unknown ingest_mode %q", config.Application.IngestMode)
	}
}

// InitState creates the clients, the ingestion workflow, the HTTP
// collaborators and starts the listeners.
func InitState(ctx context.Context, config *cloud.Config) (_ *StateManager, err error) {
	clients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = clients.Close()
		}
	}()

	ingestion, err := workflow.NewSongIngestionPipeline(config, clients, cloud.ChordModelName)
	if err != nil {
		return nil, err
	}

	extractor, requester, err := NewFeatureExtractor(config, clients, ingestion)
	if err != nil {
		return nil, err
	}

	store := &services.SongService{
		BigqueryClient: clients.BigQueryClient,
		DatasetName:    config.BigQueryDataSource.DatasetName,
		SongTable:      config.BigQueryDataSource.SongTable,
		ChordTable:     config.BigQueryDataSource.ChordTable,
	}

	server := &api.Server{
		Dispatcher: services.NewDispatcher(store, extractor),
		Store:      store,
	}
	if config.Application.SignerServiceAccountEmail != "" {
		server.Signer = &services.DiagramService{
			StorageClient: clients.StorageClient,
			IAMClient:     clients.IAMClient,
			SignerEmail:   config.Application.SignerServiceAccountEmail,
		}
	} else {
		slog.Warn("no signer_service_account_email, diagram urls are disabled")
	}

	SetupListeners(ctx, clients, ingestion)

	return &StateManager{
		config:    config,
		cloud:     clients,
		ingestion: ingestion,
		requester: requester,
		server:    server,
	}, nil
}

// Close waits for the listeners and pending publishes, then closes the
// clients. ctx bounds the wait.
func (s *StateManager) Close(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if l, ok := s.cloud.PubSubListeners[cloud.IngestSubscriptionKey]; ok {
			<-l.Done()
		}
		if s.requester != nil {
			s.requester.Wait()
		}
	}()
	select {
	case <-done:
	case <-ctx.Done():
		slog.Warn("gave up waiting for listeners", "error", ctx.Err())
	}
	if err := s.cloud.Close(); err != nil {
		slog.Error("failed to close clients", "error", err)
	}
}
