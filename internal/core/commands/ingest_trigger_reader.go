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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jaycherian/gcp-go-fivefrets/internal/core/cor"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/model"
)

// IngestTriggerReader decodes the Pub/Sub payload into an IngestRequest and
// rejects ids that cannot be YouTube video ids.
type IngestTriggerReader struct {
	cor.BaseCommand
}

func NewIngestTriggerReader(name string) *IngestTriggerReader {
	return &IngestTriggerReader{BaseCommand: *cor.NewBaseCommand(name)}
}

func (c *IngestTriggerReader) Execute(context cor.Context) {
	in, ok := context.Get(c.GetInputParam()).(string)
	if !ok {
		c.Fail(context, fmt.Errorf("expected a string payload, got %T", context.Get(c.GetInputParam())))
		return
	}

	var out model.IngestRequest
	if err := json.Unmarshal([]byte(in), &out); err != nil {
		c.Fail(context, fmt.Errorf("failed to unmarshal ingest request: %w", err))
		return
	}
	out.YouTubeId = strings.TrimSpace(out.YouTubeId)
	if !model.IsValidYouTubeId(out.YouTubeId) {
		c.Fail(context, fmt.Errorf("invalid youtube id %q", out.YouTubeId))
		return
	}

	c.Succeed(context)
	context.Add(IngestRequestParam, &out)
	context.Add(c.GetOutputParam(), &out)
}
