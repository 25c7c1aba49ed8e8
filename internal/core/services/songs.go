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

// Package services contains the business logic of the application: the song
// store backed by BigQuery, the lookup dispatcher used by the web tier, the
// display assembler, and the collaborators that request feature extraction
// and sign diagram URLs.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/model"
	"google.golang.org/api/iterator"
)

// ErrSongNotFound is returned by a SongStore when no song has the requested
// YouTube id. It is the only lookup error the dispatcher handles itself.
var ErrSongNotFound = errors.New("song not found")

// SongStore is the read side of the song store.
type SongStore interface {
	// FindByYouTubeId returns the song for an exact YouTube id match, or
	// ErrSongNotFound.
	FindByYouTubeId(ctx context.Context, youTubeId string) (*model.Song, error)
	// ListSongChords returns the chord chart of a song ordered by sequence.
	ListSongChords(ctx context.Context, songId string) ([]*model.SongChord, error)
}

// SongWriter is the write side used by the ingestion workflow.
type SongWriter interface {
	PutSong(ctx context.Context, song *model.Song, chords []*model.SongChord) error
}

// SongService implements SongStore and SongWriter on two BigQuery tables.
type SongService struct {
	BigqueryClient *bigquery.Client
	DatasetName    string
	SongTable      string
	ChordTable     string
}

// fqn returns the table name in the `project.dataset.table` form that
// standard SQL expects.
func (s *SongService) fqn(table string) string {
	fqn := s.BigqueryClient.Dataset(s.DatasetName).Table(table).FullyQualifiedName()
	return strings.Replace(fqn, ":", ".", -1)
}

func (s *SongService) FindByYouTubeId(ctx context.Context, youTubeId string) (*model.Song, error) {
	q := s.BigqueryClient.Query(fmt.Sprintf(QryFindSongByYouTubeId, s.fqn(s.SongTable)))
	q.Parameters = []bigquery.QueryParameter{{Name: "youtube_id", Value: youTubeId}}

	itr, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query song %q: %w", youTubeId, err)
	}
	song := &model.Song{}
	err = itr.Next(song)
	if errors.Is(err, iterator.Done) {
		return nil, ErrSongNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read song %q: %w", youTubeId, err)
	}
	return song, nil
}

func (s *SongService) ListSongChords(ctx context.Context, songId string) ([]*model.SongChord, error) {
	q := s.BigqueryClient.Query(fmt.Sprintf(QryListSongChords, s.fqn(s.ChordTable)))
	q.Parameters = []bigquery.QueryParameter{{Name: "song_id", Value: songId}}

	itr, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query chords of song %s: %w", songId, err)
	}

	out := make([]*model.SongChord, 0)
	for {
		c := &model.SongChord{}
		err := itr.Next(c)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate chords of song %s: %w", songId, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// ChordInsertID is the streaming insert id of a chord row. It depends only
// on the song and the position, so a retried write of the same chart is
// dropped by BigQuery's best-effort deduplication.
func ChordInsertID(c *model.SongChord) string {
	return fmt.Sprintf("%s-%d", c.SongId, c.Sequence)
}

func chordSavers(chords []*model.SongChord) []*bigquery.StructSaver {
	out := make([]*bigquery.StructSaver, 0, len(chords))
	for _, c := range chords {
		out = append(out, &bigquery.StructSaver{Struct: c, InsertID: ChordInsertID(c)})
	}
	return out
}

// PutSong streams the chords first and the song last, so a reader that finds
// the song always finds its complete chart. Rows carry deterministic insert
// ids, which makes a retry after a partial failure safe.
func (s *SongService) PutSong(ctx context.Context, song *model.Song, chords []*model.SongChord) error {
	if len(chords) > 0 {
		inserter := s.BigqueryClient.Dataset(s.DatasetName).Table(s.ChordTable).Inserter()
		if err := inserter.Put(ctx, chordSavers(chords)); err != nil {
			return fmt.Errorf("bigquery insert of %d chords failed for song %s: %w", len(chords), song.Id, err)
		}
	}
	inserter := s.BigqueryClient.Dataset(s.DatasetName).Table(s.SongTable).Inserter()
	if err := inserter.Put(ctx, &bigquery.StructSaver{Struct: song, InsertID: song.Id}); err != nil {
		return fmt.Errorf("bigquery insert failed for song '%s': %w", song.Title, err)
	}
	return nil
}
