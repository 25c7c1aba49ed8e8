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

package test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jaycherian/gcp-go-fivefrets/internal/core/model"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/services"
	"google.golang.org/genai"
)

// SongStore is an in-memory services.SongStore and services.SongWriter.
type SongStore struct {
	mu        sync.Mutex
	songs     map[string]*model.Song        // by YouTube id
	chords    map[string][]*model.SongChord // by song id
	inserted  map[string]bool               // chord insert ids already stored
	FindErr   error                         // Returned by FindByYouTubeId when set.
	ListErr   error                         // Returned by ListSongChords when set.
	PutErr    error                         // Returned by PutSong when set.
	FindCalls int
	PutCalls  int
}

func NewSongStore() *SongStore {
	return &SongStore{
		songs:    make(map[string]*model.Song),
		chords:   make(map[string][]*model.SongChord),
		inserted: make(map[string]bool),
	}
}

func (s *SongStore) FindByYouTubeId(_ context.Context, youTubeId string) (*model.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FindCalls++
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	song, ok := s.songs[youTubeId]
	if !ok {
		return nil, services.ErrSongNotFound
	}
	return song, nil
}

func (s *SongStore) ListSongChords(_ context.Context, songId string) ([]*model.SongChord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	out := make([]*model.SongChord, len(s.chords[songId]))
	copy(out, s.chords[songId])
	return out, nil
}

func (s *SongStore) PutSong(_ context.Context, song *model.Song, chords []*model.SongChord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.PutCalls++
	if s.PutErr != nil {
		return s.PutErr
	}
	// Rows are keyed by insert id the way streaming inserts deduplicate.
	for _, c := range chords {
		id := services.ChordInsertID(c)
		if s.inserted[id] {
			continue
		}
		s.inserted[id] = true
		s.chords[c.SongId] = append(s.chords[c.SongId], c)
	}
	s.songs[song.YouTubeId] = song
	return nil
}

// Songs returns the number of stored songs.
func (s *SongStore) Songs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.songs)
}

// Extractor records every RequestFeatures call.
type Extractor struct {
	mu    sync.Mutex
	Err   error
	calls []string
}

func (e *Extractor) RequestFeatures(_ context.Context, youTubeId string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, youTubeId)
	return e.Err
}

func (e *Extractor) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

// Generator is a cloud.ContentGenerator answering with a fixed text.
type Generator struct {
	mu       sync.Mutex
	Answer   string
	Err      error
	Contents [][]*genai.Content
}

func (g *Generator) GenerateContent(_ context.Context, content []*genai.Content) (*genai.GenerateContentResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Contents = append(g.Contents, content)
	if g.Err != nil {
		return nil, g.Err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: g.Answer}}}}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     100,
			CandidatesTokenCount: 50,
		},
	}, nil
}

// Calls returns the number of model calls made.
func (g *Generator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Contents)
}

// NewChartGenerator answers every prompt with the example chord chart.
func NewChartGenerator() *Generator {
	data, _ := json.Marshal(model.GetExampleChordChart())
	return &Generator{Answer: "```json\n" + string(data) + "\n```"}
}

// Uploader keeps uploaded objects in memory.
type Uploader struct {
	mu      sync.Mutex
	Bucket  string
	Err     error
	Objects map[string][]byte
	Types   map[string]string
}

func NewUploader() *Uploader {
	return &Uploader{Bucket: "fivefrets-test-diagrams", Objects: make(map[string][]byte), Types: make(map[string]string)}
}

func (u *Uploader) Upload(_ context.Context, object string, data []byte, contentType string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return "", u.Err
	}
	u.Objects[object] = data
	u.Types[object] = contentType
	return fmt.Sprintf("gs://%s/%s", u.Bucket, object), nil
}

// SampleSong returns a stored song with a four chord chart. G appears twice.
func SampleSong() (*model.Song, []*model.SongChord) {
	song := model.NewSong("dQw4w9WgXcQ")
	song.Title = "Knockin' on Heaven's Door"
	song.Artist = "Bob Dylan"
	song.Key = "G"
	song.TempoBPM = 69
	song.TimeSignature = "4/4"
	song.LengthInSeconds = 149

	chords := []*model.SongChord{
		{SongId: song.Id, Sequence: 0, Chord: "G", Start: "00:00:00", End: "00:00:03", Frets: "320003", BaseFret: 1, DiagramURI: "gs://fivefrets-test-diagrams/diagrams/G.png"},
		{SongId: song.Id, Sequence: 1, Chord: "D", Start: "00:00:03", End: "00:00:06", Frets: "xx0232", BaseFret: 1, DiagramURI: "gs://fivefrets-test-diagrams/diagrams/D.png"},
		{SongId: song.Id, Sequence: 2, Chord: "Am7", Start: "00:00:06", End: "00:00:12", Frets: "x02010", BaseFret: 1, DiagramURI: "gs://fivefrets-test-diagrams/diagrams/Am7.png"},
		{SongId: song.Id, Sequence: 3, Chord: "G", Start: "00:00:12", End: "00:00:15", Frets: "320003", BaseFret: 1, DiagramURI: "gs://fivefrets-test-diagrams/diagrams/G.png"},
	}
	return song, chords
}

// NewStoreWithSample returns a store holding SampleSong.
func NewStoreWithSample() (*SongStore, *model.Song, []*model.SongChord) {
	store := NewSongStore()
	song, chords := SampleSong()
	_ = store.PutSong(context.Background(), song, chords)
	store.PutCalls = 0
	return store, song, chords
}
