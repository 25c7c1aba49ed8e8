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

package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jaycherian/gcp-go-fivefrets/internal/core/cor"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/model"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/services"
)

// SongExistenceCheck ends the chain without error when the song is already
// stored, which makes redelivered and duplicate requests harmless.
type SongExistenceCheck struct {
	cor.BaseCommand
	store services.SongStore
}

func NewSongExistenceCheck(name string, store services.SongStore) *SongExistenceCheck {
	return &SongExistenceCheck{BaseCommand: *cor.NewBaseCommand(name), store: store}
}

func (c *SongExistenceCheck) Execute(context cor.Context) {
	req := context.Get(c.GetInputParam()).(*model.IngestRequest)

	_, err := c.store.FindByYouTubeId(context.GetContext(), req.YouTubeId)
	switch {
	case err == nil:
		slog.InfoContext(context.GetContext(), "song already ingested, skipping", "youtube_id", req.YouTubeId)
		context.Add(cor.StopKey, true)
	case errors.Is(err, services.ErrSongNotFound):
		context.Add(c.GetOutputParam(), req)
	default:
		c.Fail(context, fmt.Errorf("failed to check for song %q: %w", req.YouTubeId, err))
		return
	}
	c.Succeed(context)
}
