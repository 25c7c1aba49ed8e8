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
// This file initialises and holds every client the application needs. The
// ServiceClients struct is created once at startup and handed to the API
// handlers, the workflows and the CLI.
//
// Logic Flow:
//  1. NewCloudServiceClients is called at startup with the loaded Config.
//  2. It creates the Storage, Pub/Sub, GenAI, BigQuery and IAM clients.
//  3. It creates a PubSubListener per configured subscription, a topic
//     handle per configured topic and a rate-limited model per agent model.
//  4. Close releases all of them on shutdown.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/bigquery"
	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"google.golang.org/genai"
)

// ServiceClients is the container of all external clients.
type ServiceClients struct {
	StorageClient   *storage.Client                   // Client for Google Cloud Storage (GCS).
	PubsubClient    *pubsub.Client                    // Client for Google Cloud Pub/Sub.
	GenAIClient     *genai.Client                     // Client for Vertex AI.
	BigQueryClient  *bigquery.Client                  // Client for Google Cloud BigQuery.
	IAMClient       *credentials.IamCredentialsClient // Signs GCS URLs. Nil when no signer is configured.
	PubSubListeners map[string]*PubSubListener        // Keyed by the logical subscription name from the config.
	Topics          map[string]*pubsub.Topic          // Keyed by the logical topic name ("ingest").
	AgentModels     map[string]*QuotaAwareGenerativeAIModel
}

// Close stops the topics and closes every client. Errors are joined.
func (c *ServiceClients) Close() error {
	for _, t := range c.Topics {
		t.Stop()
	}
	var errs []error
	if c.StorageClient != nil {
		errs = append(errs, c.StorageClient.Close())
	}
	if c.PubsubClient != nil {
		errs = append(errs, c.PubsubClient.Close())
	}
	if c.BigQueryClient != nil {
		errs = append(errs, c.BigQueryClient.Close())
	}
	if c.IAMClient != nil {
		errs = append(errs, c.IAMClient.Close())
	}
	return errors.Join(errs...)
}

// AgentModel returns the named model or an error naming the missing key.
func (c *ServiceClients) AgentModel(name string) (*QuotaAwareGenerativeAIModel, error) {
	m, ok := c.AgentModels[name]
	if !ok {
		return nil, fmt.Errorf("agent model %q is not configured", name)
	}
	return m, nil
}

// NewGenerateContentConfig maps a configured model onto the genai request
// configuration.
func NewGenerateContentConfig(values VertexAiLLMModel) *genai.GenerateContentConfig {
	out := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](values.Temperature),
		TopP:             genai.Ptr[float32](values.TopP),
		TopK:             genai.Ptr[float32](values.TopK),
		MaxOutputTokens:  values.MaxTokens,
		SafetySettings:   DefaultSafetySettings,
		ResponseMIMEType: values.OutputFormat,
	}
	if values.SystemInstructions != "" {
		out.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: values.SystemInstructions}}}
	}
	return out
}

// NewCloudServiceClients creates every client described by config.
func NewCloudServiceClients(ctx context.Context, config *Config) (_ *ServiceClients, err error) {
	cloud := &ServiceClients{
		PubSubListeners: make(map[string]*PubSubListener),
		Topics:          make(map[string]*pubsub.Topic),
		AgentModels:     make(map[string]*QuotaAwareGenerativeAIModel),
	}
	// Release whatever was created if a later client fails.
	defer func() {
		if err != nil {
			_ = cloud.Close()
		}
	}()

	if cloud.StorageClient, err = storage.NewClient(ctx); err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	if cloud.PubsubClient, err = pubsub.NewClient(ctx, config.Application.GoogleProjectId); err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	slog.Info("creating genai client", "project", config.Application.GoogleProjectId, "location", config.Application.GoogleLocation)
	if cloud.GenAIClient, err = genai.NewClient(ctx, &genai.ClientConfig{
		Project:  config.Application.GoogleProjectId,
		Location: config.Application.GoogleLocation,
		Backend:  genai.BackendVertexAI,
	}); err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	if cloud.BigQueryClient, err = bigquery.NewClient(ctx, config.Application.GoogleProjectId); err != nil {
		return nil, fmt.Errorf("failed to create bigquery client: %w", err)
	}

	if config.Application.SignerServiceAccountEmail != "" {
		if cloud.IAMClient, err = credentials.NewIamCredentialsClient(ctx); err != nil {
			return nil, fmt.Errorf("failed to create iam credentials client: %w", err)
		}
	}

	// Commands are attached later, once the workflows are built.
	for subKey, values := range config.TopicSubscriptions {
		actual, err := NewPubSubListener(cloud.PubsubClient, values.Name, nil)
		if err != nil {
			return nil, err
		}
		cloud.PubSubListeners[subKey] = actual
	}

	if config.Topics.Ingest != "" {
		cloud.Topics["ingest"] = cloud.PubsubClient.Topic(config.Topics.Ingest)
	}

	for amKey, values := range config.AgentModels {
		slog.Debug("configuring agent model", "key", amKey, "model", values.Model)
		cloud.AgentModels[amKey] = NewQuotaAwareModel(NewGenerateContentConfig(values), values.Model, cloud.GenAIClient.Models, values.RateLimit)
	}

	return cloud, nil
}
