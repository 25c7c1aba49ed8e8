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
	"fmt"
	"log/slog"

	"github.com/jaycherian/gcp-go-fivefrets/internal/core/cor"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/model"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/services"
)

// SongPersist writes the assembled song and its chords.
type SongPersist struct {
	cor.BaseCommand
	writer services.SongWriter
}

func NewSongPersist(name string, writer services.SongWriter) *SongPersist {
	return &SongPersist{BaseCommand: *cor.NewBaseCommand(name), writer: writer}
}

func (s *SongPersist) Execute(context cor.Context) {
	song := context.Get(s.GetInputParam()).(*model.Song)
	songChords, _ := context.Get(SongChordsParam).([]*model.SongChord)

	if err := s.writer.PutSong(context.GetContext(), song, songChords); err != nil {
		s.Fail(context, fmt.Errorf("failed to persist song %q: %w", song.YouTubeId, err))
		return
	}

	s.Succeed(context)
	slog.InfoContext(context.GetContext(), "persisted song", "youtube_id", song.YouTubeId, "id", song.Id, "title", song.Title, "chords", len(songChords))
	context.Add(s.GetOutputParam(), song)
}
