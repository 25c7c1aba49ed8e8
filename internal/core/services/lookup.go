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
	"errors"

	"github.com/jaycherian/gcp-go-fivefrets/internal/core/model"
)

// Outcome is the result of a song lookup.
type Outcome int

const (
	NotFound Outcome = iota
	Found
)

func (o Outcome) String() string {
	if o == Found {
		return "found"
	}
	return "not_found"
}

// LookupResult carries the Song when Outcome is Found.
type LookupResult struct {
	Outcome Outcome
	Song    *model.Song
}

// Lookup retrieves the song with an exact YouTube id match. A missing song
// is a NotFound result, not an error; every other store error is returned.
func Lookup(ctx context.Context, store SongStore, youTubeId string) (LookupResult, error) {
	song, err := store.FindByYouTubeId(ctx, youTubeId)
	switch {
	case errors.Is(err, ErrSongNotFound):
		return LookupResult{Outcome: NotFound}, nil
	case err != nil:
		return LookupResult{}, err
	case song == nil:
		return LookupResult{Outcome: NotFound}, nil
	}
	return LookupResult{Outcome: Found, Song: song}, nil
}
