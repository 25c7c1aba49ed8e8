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

// Package api exposes the fivefrets pages and the JSON API over gin.
//
// Routes:
//   - GET /                     index page
//   - GET /display/, /display/:yt_id
//     display page of a song, NOT FOUND placeholder for unknown ids
//   - GET /diagram.png?chord=   chord diagram rendered on the fly
//   - GET /api/v1/index, /api/v1/songs/:yt_id
//     the same view models as JSON
//   - GET /api/v1/songs/:yt_id/diagrams/:sequence/url
//     signed URL of the stored diagram of one chord of a song
//   - GET /healthz
package api

import (
	"context"
	"embed"
	"html/template"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/services"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

//go:embed templates/*.html
var templateFS embed.FS

// URLSigner issues browser-usable URLs for gs:// objects. It is implemented
// by services.DiagramService.
type URLSigner interface {
	GenerateSignedURL(ctx context.Context, gcsURI string) (string, error)
}

// Server holds the handlers' collaborators.
type Server struct {
	Dispatcher *services.Dispatcher
	Store      services.SongStore
	Signer     URLSigner // Optional. Without it the signed URL route answers 503.
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// NewRouter builds the gin engine with tracing and CORS middleware and every
// route registered.
func NewRouter(s *Server, serviceName string) (*gin.Engine, error) {
	tmpl, err := Templates()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(cors.Default())
	r.SetHTMLTemplate(tmpl)

	r.GET("/healthz", s.Health)
	Pages(r, s)

	apiV1 := r.Group("/api/v1")
	{
		SongRouter(apiV1, s)
	}
	return r, nil
}
