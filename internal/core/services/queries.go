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

// Package services contains the business logic for interacting with data sources.
// This file, `queries.go`, centralizes the BigQuery SQL used by SongService.
// The `%s` verb receives the fully qualified table name; values are always
// passed as named query parameters (`@name`), never formatted into the text.
package services

const (
	// QryFindSongByYouTubeId fetches the single song for a YouTube id.
	//
	// Placeholders:
	// - `%s`: The fully qualified name of the `songs` table.
	// Parameters:
	// - `@youtube_id`: The external lookup key.
	QryFindSongByYouTubeId = "SELECT * FROM `%s` WHERE youtube_id = @youtube_id ORDER BY create_date LIMIT 1"

	// QryListSongChords returns the chord chart of a song in playing order,
	// one row per sequence even when a retried insert left duplicates.
	//
	// Placeholders:
	// - `%s`: The fully qualified name of the `song_chords` table.
	// Parameters:
	// - `@song_id`: The song's primary key.
	QryListSongChords = "SELECT * FROM `%s` WHERE song_id = @song_id " +
		"QUALIFY ROW_NUMBER() OVER (PARTITION BY sequence) = 1 ORDER BY sequence"
)
