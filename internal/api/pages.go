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

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/chords"
)

// Pages registers the HTML routes and the diagram renderer.
func Pages(r gin.IRoutes, s *Server) {
	r.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", s.Dispatcher.Index())
	})

	// yt_id defaults to the empty string, which is looked up like any other id.
	display := func(c *gin.Context) {
		view, err := s.Dispatcher.Display(c.Request.Context(), c.Param("yt_id"))
		if err != nil {
			slog.ErrorContext(c.Request.Context(), "display failed", "youtube_id", c.Param("yt_id"), "error", err)
			c.String(http.StatusInternalServerError, "internal server error")
			return
		}
		c.HTML(http.StatusOK, "display.html", view)
	}
	r.GET("/display/", display)
	r.GET("/display/:yt_id", display)

	r.GET("/diagram.png", func(c *gin.Context) {
		symbol := c.Query("chord")
		if symbol == "" {
			c.String(http.StatusBadRequest, "chord is required")
			return
		}
		_, voicing, err := chords.LookupSymbol(symbol)
		if errors.Is(err, chords.ErrUnknownChord) {
			c.String(http.StatusNotFound, "no diagram for %q", symbol)
			return
		}
		if err != nil {
			slog.ErrorContext(c.Request.Context(), "chord lookup failed", "chord", symbol, "error", err)
			c.Status(http.StatusInternalServerError)
			return
		}
		png, err := chords.RenderPNG(voicing)
		if err != nil {
			slog.ErrorContext(c.Request.Context(), "diagram rendering failed", "chord", symbol, "error", err)
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Header("Cache-Control", "public, max-age=86400")
		c.Data(http.StatusOK, "image/png", png)
	})
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
