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
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"go.opentelemetry.io/otel/metric"

	"github.com/jaycherian/gcp-go-fivefrets/internal/cloud"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/cor"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/model"
)

// VideoMIMEType is sent with the YouTube URL so Vertex AI treats it as video.
const VideoMIMEType = "video/mp4"

// ChordChartCreator asks the model to transcribe the chords of the video.
// The answer is the raw JSON text of a model.ChordChart.
type ChordChartCreator struct {
	cor.BaseCommand
	generativeAIModel        cloud.ContentGenerator
	template                 *template.Template
	geminiInputTokenCounter  metric.Int64Counter
	geminiOutputTokenCounter metric.Int64Counter
	geminiRetryCounter       metric.Int64Counter
}

func NewChordChartCreator(
	name string,
	generativeAIModel cloud.ContentGenerator,
	template *template.Template) *ChordChartCreator {

	out := &ChordChartCreator{
		BaseCommand:       *cor.NewBaseCommand(name),
		generativeAIModel: generativeAIModel,
		template:          template}

	out.geminiInputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.input", out.GetName()))
	out.geminiOutputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.output", out.GetName()))
	out.geminiRetryCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.retry", out.GetName()))

	return out
}

// GenerateParams returns the template vocabulary for one request.
func (t *ChordChartCreator) GenerateParams(req *model.IngestRequest) map[string]interface{} {
	params := make(map[string]interface{})
	exampleChart, _ := json.Marshal(model.GetExampleChordChart())
	params["EXAMPLE_JSON"] = string(exampleChart)
	params["YOUTUBE_ID"] = req.YouTubeId
	params["VIDEO_URL"] = model.YouTubeWatchURL(req.YouTubeId)
	return params
}

func (t *ChordChartCreator) Execute(context cor.Context) {
	req := context.Get(t.GetInputParam()).(*model.IngestRequest)

	var buffer bytes.Buffer
	if err := t.template.Execute(&buffer, t.GenerateParams(req)); err != nil {
		t.Fail(context, fmt.Errorf("failed to execute prompt template: %w", err))
		return
	}

	contents := cloud.NewUserContent(
		cloud.NewTextPart(buffer.String()),
		cloud.NewFileData(model.YouTubeWatchURL(req.YouTubeId), VideoMIMEType),
	)

	out, err := cloud.GenerateMultiModalResponse(context.GetContext(), t.geminiInputTokenCounter, t.geminiOutputTokenCounter, t.geminiRetryCounter, 0, t.generativeAIModel, contents)
	if err != nil {
		t.Fail(context, fmt.Errorf("gemini request failed: %w", err))
		return
	}

	t.Succeed(context)
	context.Add(t.GetOutputParam(), out)
}
