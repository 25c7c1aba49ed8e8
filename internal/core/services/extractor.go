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

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/cor"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/model"
)

// FeatureExtractor is asked to derive the chord chart of an unknown song.
type FeatureExtractor interface {
	RequestFeatures(ctx context.Context, youTubeId string) error
}

// FeatureExtractorFunc adapts a function to FeatureExtractor.
type FeatureExtractorFunc func(ctx context.Context, youTubeId string) error

func (f FeatureExtractorFunc) RequestFeatures(ctx context.Context, youTubeId string) error {
	return f(ctx, youTubeId)
}

// NewIngestMessage encodes the Pub/Sub payload for an ingestion request.
func NewIngestMessage(youTubeId string) ([]byte, error) {
	return json.Marshal(&model.IngestRequest{YouTubeId: youTubeId, RequestedAt: time.Now().UTC()})
}

// PubSubFeatureRequester publishes an IngestRequest and returns without
// waiting for the publish to complete. The outcome is logged from a
// background goroutine. Ids that cannot be YouTube ids are dropped, and an id
// published within the suppression window is not published again.
type PubSubFeatureRequester struct {
	topic    *pubsub.Topic
	suppress time.Duration

	mu     sync.Mutex
	recent map[string]time.Time
	wg     sync.WaitGroup
}

// NewPubSubFeatureRequester publishes to topic. suppress <= 0 publishes every
// request.
func NewPubSubFeatureRequester(topic *pubsub.Topic, suppress time.Duration) *PubSubFeatureRequester {
	return &PubSubFeatureRequester{
		topic:    topic,
		suppress: suppress,
		recent:   make(map[string]time.Time),
	}
}

func (r *PubSubFeatureRequester) RequestFeatures(ctx context.Context, youTubeId string) error {
	if !model.IsValidYouTubeId(youTubeId) {
		slog.InfoContext(ctx, "not requesting extraction for invalid youtube id", "youtube_id", youTubeId)
		return nil
	}
	if !r.claim(youTubeId) {
		slog.DebugContext(ctx, "extraction already requested recently", "youtube_id", youTubeId)
		return nil
	}

	data, err := NewIngestMessage(youTubeId)
	if err != nil {
		r.release(youTubeId)
		return fmt.Errorf("failed to encode ingest request: %w", err)
	}

	result := r.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"youtube_id": youTubeId},
	})

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		// The request that triggered the publish may finish first.
		id, err := result.Get(context.WithoutCancel(ctx))
		if err != nil {
			r.release(youTubeId)
			slog.ErrorContext(ctx, "failed to publish ingest request", "youtube_id", youTubeId, "error", err)
			return
		}
		slog.InfoContext(ctx, "published ingest request", "youtube_id", youTubeId, "message_id", id)
	}()
	return nil
}

// Wait blocks until every publish started so far has completed.
func (r *PubSubFeatureRequester) Wait() {
	r.wg.Wait()
}

func (r *PubSubFeatureRequester) claim(youTubeId string) bool {
	if r.suppress <= 0 {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for id, at := range r.recent {
		if now.Sub(at) >= r.suppress {
			delete(r.recent, id)
		}
	}
	if _, ok := r.recent[youTubeId]; ok {
		return false
	}
	r.recent[youTubeId] = now
	return true
}

func (r *PubSubFeatureRequester) release(youTubeId string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.recent, youTubeId)
}

// ChainFeatureExtractor runs the ingestion command in the caller's goroutine
// and returns once the song is persisted or the command failed. The chain
// keeps the caller's values but not its cancellation, so a dropped HTTP
// client does not abort a write halfway.
type ChainFeatureExtractor struct {
	command cor.Command
}

func NewChainFeatureExtractor(command cor.Command) *ChainFeatureExtractor {
	return &ChainFeatureExtractor{command: command}
}

func (e *ChainFeatureExtractor) RequestFeatures(ctx context.Context, youTubeId string) error {
	data, err := NewIngestMessage(youTubeId)
	if err != nil {
		return fmt.Errorf("failed to encode ingest request: %w", err)
	}
	chCtx := cor.NewBaseContextWithInput(context.WithoutCancel(ctx), string(data))
	defer chCtx.Close()

	e.command.Execute(chCtx)
	if err := cor.ContextError(chCtx); err != nil {
		return fmt.Errorf("ingestion of %q failed: %w", youTubeId, err)
	}
	return nil
}
