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

package model

import (
	"fmt"
	"regexp"
)

var youTubeIdPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// IsValidYouTubeId reports whether id has the shape of a YouTube video id:
// eleven characters from the URL-safe base64 alphabet.
func IsValidYouTubeId(id string) bool {
	return youTubeIdPattern.MatchString(id)
}

// YouTubeWatchURL is the public watch page of a video. It is also the URI
// handed to the model as file data.
func YouTubeWatchURL(id string) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", id)
}

func YouTubeEmbedURL(id string) string {
	return fmt.Sprintf("https://www.youtube.com/embed/%s", id)
}
