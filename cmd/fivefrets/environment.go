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
	"log/slog"

	"github.com/jaycherian/gcp-go-fivefrets/internal/cloud"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/cor"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/services"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/workflow"
	"github.com/jaycherian/gcp-go-fivefrets/internal/telemetry"
)

// Environment opens the collaborators of the commands. Each returned close
// function releases what was opened.
type Environment interface {
	OpenStore(ctx context.Context) (services.SongStore, func() error, error)
	OpenIngestion(ctx context.Context) (cor.Command, func() error, error)
}

// CloudEnvironment talks to the services named in the configuration.
type CloudEnvironment struct {
	ConfigDir string
	Runtime   string
}

func NewCloudEnvironment() *CloudEnvironment {
	return &CloudEnvironment{ConfigDir: "configs", Runtime: "local"}
}

func (e *CloudEnvironment) open(ctx context.Context) (*cloud.Config, *cloud.ServiceClients, error) {
	config, err := cloud.LoadApplicationConfig(e.ConfigDir, e.Runtime)
	if err != nil {
		return nil, nil, err
	}
	if _, err := telemetry.SetupLogging(telemetry.LogOptions{Level: slog.LevelWarn}); err != nil {
		return nil, nil, err
	}
	clients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		return nil, nil, err
	}
	return config, clients, nil
}

func (e *CloudEnvironment) OpenStore(ctx context.Context) (services.SongStore, func() error, error) {
	config, clients, err := e.open(ctx)
	if err != nil {
		return nil, nil, err
	}
	return &services.SongService{
		BigqueryClient: clients.BigQueryClient,
		DatasetName:    config.BigQueryDataSource.DatasetName,
		SongTable:      config.BigQueryDataSource.SongTable,
		ChordTable:     config.BigQueryDataSource.ChordTable,
	}, clients.Close, nil
}

func (e *CloudEnvironment) OpenIngestion(ctx context.Context) (cor.Command, func() error, error) {
	config, clients, err := e.open(ctx)
	if err != nil {
		return nil, nil, err
	}
	ingestion, err := workflow.NewSongIngestionPipeline(config, clients, cloud.ChordModelName)
	if err != nil {
		_ = clients.Close()
		return nil, nil, err
	}
	return ingestion, clients.Close, nil
}
