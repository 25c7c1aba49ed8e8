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
	"fmt"
	"log/slog"

	"github.com/jaycherian/gcp-go-fivefrets/internal/core/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Dispatcher builds the view models of the index and display pages.
type Dispatcher struct {
	store     SongStore
	extractor FeatureExtractor
}

func NewDispatcher(store SongStore, extractor FeatureExtractor) *Dispatcher {
	return &Dispatcher{store: store, extractor: extractor}
}

// Index returns the fixed placeholder context of the index page.
func (d *Dispatcher) Index() *model.IndexView {
	return &model.IndexView{Test: model.IndexPlaceholder}
}

// Display looks the song up and assembles its view. On a miss the feature
// extractor is asked, exactly once, to ingest the id and the NOT FOUND view is
// returned; a failure to ask is logged and does not change the response.
// Store errors other than a miss are returned.
func (d *Dispatcher) Display(ctx context.Context, youTubeId string) (*model.DisplayView, error) {
	ctx, span := otel.Tracer("dispatcher").Start(ctx, "display")
	defer span.End()
	span.SetAttributes(attribute.String("youtube_id", youTubeId))

	result, err := Lookup(ctx, d.store, youTubeId)
	if err != nil {
		span.SetStatus(codes.Error, "lookup failed")
		return nil, fmt.Errorf("failed to look up song %q: %w", youTubeId, err)
	}
	span.SetAttributes(attribute.String("outcome", result.Outcome.String()))

	switch result.Outcome {
	case Found:
		chordList, diagrams, err := GetSongChordList(ctx, d.store, result.Song.Id)
		if err != nil {
			span.SetStatus(codes.Error, "chord list failed")
			return nil, fmt.Errorf("failed to load chords of song %q: %w", youTubeId, err)
		}
		return &model.DisplayView{
			Found:        true,
			YouTubeId:    youTubeId,
			Song:         result.Song,
			SongInfo:     GetSongInfo(result.Song, chordList),
			ChordList:    chordList,
			ChordDiagram: diagrams,
		}, nil
	default:
		if d.extractor != nil {
			if err := d.extractor.RequestFeatures(ctx, youTubeId); err != nil {
				slog.WarnContext(ctx, "failed to request feature extraction", "youtube_id", youTubeId, "error", err)
			}
		}
		return model.NewNotFoundView(youTubeId), nil
	}
}
