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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files, together with the clients and wrappers used to
// talk to Google Cloud: Storage, Pub/Sub, BigQuery, IAM and Vertex AI.
//
// Structs:
//   - BigQueryDataSource: BigQuery dataset and table names.
//   - PromptTemplates: Text templates for prompts sent to GenAI models.
//   - VertexAiLLMModel: Configuration for a Vertex AI Large Language Model (LLM).
//   - TopicSubscription: Configuration for a single Pub/Sub topic subscription.
//   - Topics: Pub/Sub topics the service publishes to.
//   - Storage: Cloud Storage buckets.
//   - Config: The top-level struct that aggregates all other configuration structs.
package cloud

import "google.golang.org/genai"

// Ingest modes for a lookup miss.
const (
	IngestModeAsync = "async" // Publish an ingest request and return immediately.
	IngestModeSync  = "sync"  // Run the ingestion chain inline. Meant for the CLI and tests.
)

// Telemetry exporters.
const (
	ExporterGCP  = "gcp"
	ExporterNone = "none"
)

// Logical names used as keys in the configuration maps.
const (
	ChordModelName        = "chord-flash"
	IngestSubscriptionKey = "SongIngestTopic"
)

// DefaultSafetySettings defines the default content safety thresholds for GenAI models.
// Song lyrics routinely trip the default filters, so nothing is blocked.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// BigQueryDataSource represents the configuration for a BigQuery data source.
type BigQueryDataSource struct {
	DatasetName string `toml:"dataset"`     // The name of the BigQuery dataset.
	SongTable   string `toml:"song_table"`  // One row per song.
	ChordTable  string `toml:"chord_table"` // One row per chord occurrence.
}

// PromptTemplates holds the templates for different types of prompts.
type PromptTemplates struct {
	ChordPrompt string `toml:"chords"` // Go text/template for chord chart extraction.
}

// VertexAiLLMModel represents the configuration for a Vertex AI large language model (LLM).
type VertexAiLLMModel struct {
	Model              string  `toml:"model"`               // The name of the Vertex AI LLM.
	SystemInstructions string  `toml:"system_instructions"` // The system instructions for the LLM.
	Temperature        float32 `toml:"temperature"`         // The temperature parameter for the LLM.
	TopP               float32 `toml:"top_p"`               // The top_p parameter for the LLM.
	TopK               float32 `toml:"top_k"`               // The top_k parameter for the LLM.
	MaxTokens          int32   `toml:"max_tokens"`          // The maximum number of tokens for the LLM output.
	OutputFormat       string  `toml:"output_format"`       // The desired output format for the LLM.
	RateLimit          int     `toml:"rate_limit"`          // The rate limit for the LLM in requests per second.
}

// TopicSubscription represents the configuration for a Pub/Sub topic subscription.
type TopicSubscription struct {
	Name             string `toml:"name"`               // The name of the Pub/Sub subscription.
	DeadLetterTopic  string `toml:"dead_letter_topic"`  // The name of the dead-letter topic for the subscription.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // The timeout for the subscription in seconds.
}

// Topics names the Pub/Sub topics the service publishes to.
type Topics struct {
	Ingest string `toml:"ingest"` // Receives an IngestRequest for every lookup miss.
}

// Storage represents the configuration for storage buckets.
type Storage struct {
	DiagramBucket string `toml:"diagram_bucket"` // Rendered chord diagram PNGs.
	DiagramPrefix string `toml:"diagram_prefix"` // Object name prefix inside the bucket.
}

// Config represents the overall configuration for the application, loaded from TOML files.
type Config struct {
	Application struct {
		Name                      string `toml:"name"`
		GoogleProjectId           string `toml:"google_project_id"`
		GoogleLocation            string `toml:"location"`
		ThreadPoolSize            int    `toml:"thread_pool_size"`             // Workers used to render chord diagrams.
		SignerServiceAccountEmail string `toml:"signer_service_account_email"` // Used for signing GCS URLs.
		HttpAddress               string `toml:"http_address"`
		IngestMode                string `toml:"ingest_mode"` // IngestModeAsync or IngestModeSync.
		LogFile                   string `toml:"log_file"`    // Optional, JSON logs are also appended here.
		TelemetryExporter         string `toml:"telemetry_exporter"`
	} `toml:"application"`
	Storage            Storage                      `toml:"storage"`
	BigQueryDataSource BigQueryDataSource           `toml:"big_query_data_source"`
	PromptTemplates    PromptTemplates              `toml:"prompt_templates"`
	Topics             Topics                       `toml:"topics"`
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"` // Keyed by a logical name (e.g., "SongIngestTopic").
	AgentModels        map[string]VertexAiLLMModel  `toml:"agent_models"`        // Keyed by a logical name (e.g., "chord-flash").
}

// NewConfig creates a Config with its maps initialised, so the TOML decoder
// can merge several files into it.
func NewConfig() *Config {
	return &Config{
		TopicSubscriptions: make(map[string]TopicSubscription),
		AgentModels:        make(map[string]VertexAiLLMModel),
	}
}

// ApplyDefaults fills the settings that have a sensible fallback.
func (c *Config) ApplyDefaults() {
	if c.Application.ThreadPoolSize <= 0 {
		c.Application.ThreadPoolSize = 4
	}
	if c.Application.HttpAddress == "" {
		c.Application.HttpAddress = ":8080"
	}
	if c.Application.IngestMode == "" {
		c.Application.IngestMode = IngestModeAsync
	}
	if c.Application.TelemetryExporter == "" {
		c.Application.TelemetryExporter = ExporterGCP
	}
	if c.Storage.DiagramPrefix == "" {
		c.Storage.DiagramPrefix = "diagrams"
	}
}
