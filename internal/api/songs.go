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

package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/services"
)

// SongRouter registers the JSON routes.
func SongRouter(r *gin.RouterGroup, s *Server) {
	r.GET("/index", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.Dispatcher.Index())
	})

	songs := r.Group("/songs")
	{
		// A miss answers 200 with {"song":"NOT FOUND"}, like the page.
		songs.GET("/:yt_id", func(c *gin.Context) {
			view, err := s.Dispatcher.Display(c.Request.Context(), c.Param("yt_id"))
			if err != nil {
				slog.ErrorContext(c.Request.Context(), "display failed", "youtube_id", c.Param("yt_id"), "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
				return
			}
			c.JSON(http.StatusOK, view)
		})

		songs.GET("/:yt_id/diagrams/:sequence/url", s.diagramURL)
	}
}

// diagramURL signs the stored diagram of the chord at :sequence. It reads the
// store directly so that asking for a URL never queues an ingestion.
func (s *Server) diagramURL(c *gin.Context) {
	ctx := c.Request.Context()
	youTubeId := c.Param("yt_id")
	sequence, err := strconv.Atoi(c.Param("sequence"))
	if err != nil || sequence < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sequence must be a non-negative integer"})
		return
	}
	if s.Signer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "url signing is not configured"})
		return
	}

	song, err := s.Store.FindByYouTubeId(ctx, youTubeId)
	if errors.Is(err, services.ErrSongNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "song not found"})
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "song lookup failed", "youtube_id", youTubeId, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	chordList, err := s.Store.ListSongChords(ctx, song.Id)
	if err != nil {
		slog.ErrorContext(ctx, "chord list failed", "youtube_id", youTubeId, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	var uri string
	for _, sc := range chordList {
		if sc.Sequence == sequence {
			uri = sc.DiagramURI
			break
		}
	}
	if uri == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no diagram for this chord"})
		return
	}

	signedURL, err := s.Signer.GenerateSignedURL(ctx, uri)
	if errors.Is(err, services.ErrSigningUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "error generating signed url", "uri", uri, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate diagram url"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": signedURL})
}
