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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jaycherian/gcp-go-fivefrets/internal/core/cor"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/services"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/workflow"
	test "github.com/jaycherian/gcp-go-fivefrets/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnvironment struct {
	store  *test.SongStore
	closed int
}

func (e *fakeEnvironment) OpenStore(context.Context) (services.SongStore, func() error, error) {
	return e.store, e.close, nil
}

func (e *fakeEnvironment) OpenIngestion(context.Context) (cor.Command, func() error, error) {
	w, err := workflow.NewSongIngestionWorkflow(workflow.SongIngestionDeps{
		Store: e.store, Writer: e.store, Model: test.NewChartGenerator(), Uploader: test.NewUploader(),
		PromptTemplate: "{{.VIDEO_URL}}", DiagramPrefix: "diagrams", Workers: 2,
	})
	return w, e.close, err
}

func (e *fakeEnvironment) close() error {
	e.closed++
	return nil
}

func run(t *testing.T, env Environment, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd(env)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--no-color"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLookupFound(t *testing.T) {
	store, _, _ := test.NewStoreWithSample()
	env := &fakeEnvironment{store: store}

	out, err := run(t, env, "lookup", "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Contains(t, out, "Knockin' on Heaven's Door - Bob Dylan")
	assert.Contains(t, out, "2:29")
	assert.Contains(t, out, "Am7 x02010")
	assert.Equal(t, 1, env.closed)
}

func TestLookupNotFoundJSON(t *testing.T) {
	env := &fakeEnvironment{store: test.NewSongStore()}

	out, err := run(t, env, "--json", "lookup", "aaaaaaaaaaa")
	require.NoError(t, err)
	assert.JSONEq(t, `{"song":"NOT FOUND"}`, out)
}

func TestIngest(t *testing.T) {
	env := &fakeEnvironment{store: test.NewSongStore()}

	out, err := run(t, env, "ingest", "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Contains(t, out, "ingested dQw4w9WgXcQ")
	assert.Equal(t, 1, env.store.Songs())

	_, err = run(t, env, "ingest", "nope")
	assert.ErrorContains(t, err, "not a YouTube video id")
}

func TestDiagram(t *testing.T) {
	file := filepath.Join(t.TempDir(), "c.png")

	out, err := run(t, &fakeEnvironment{}, "diagram", "C", "--png", file)
	require.NoError(t, err)
	assert.Contains(t, out, "C")
	assert.Contains(t, out, "wrote "+file)
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), data[:4])

	out, err = run(t, &fakeEnvironment{}, "--json", "diagram", "Am7")
	require.NoError(t, err)
	var diagram map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &diagram))
	assert.Equal(t, "x02010", diagram["frets"])

	_, err = run(t, &fakeEnvironment{}, "diagram", "Hmaj99")
	assert.Error(t, err)
}

func TestOutputErrorPrintsInJSONMode(t *testing.T) {
	var buf bytes.Buffer
	NewOutput(&buf, true, true).Error("Error: %v", "store unavailable")
	assert.Equal(t, "Error: store unavailable\n", buf.String())

	buf.Reset()
	NewOutput(&buf, true, true).Warn("ignored")
	assert.Empty(t, buf.String())
}
