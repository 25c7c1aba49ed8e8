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
	"fmt"
	"os"
	"strings"

	"github.com/jaycherian/gcp-go-fivefrets/internal/core/chords"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/model"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/services"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	JSON    bool
	NoColor bool
}

func (o *rootOptions) output(cmd *cobra.Command) *Output {
	return NewOutput(cmd.OutOrStdout(), o.JSON, o.NoColor)
}

// NewRootCmd builds the command tree.
func NewRootCmd(env Environment) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "fivefrets",
		Short:         "Chord charts for YouTube videos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&opts.JSON, "json", false, "print JSON instead of text")
	root.PersistentFlags().BoolVar(&opts.NoColor, "no-color", os.Getenv("NO_COLOR") != "", "disable colours")

	root.AddCommand(newLookupCmd(env, opts), newIngestCmd(env, opts), newDiagramCmd(opts))
	return root
}

func newLookupCmd(env Environment, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <yt_id>",
		Short: "Show the stored chord chart of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := env.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			// Without an extractor a miss is only reported.
			view, err := services.NewDispatcher(store, nil).Display(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := opts.output(cmd)
			if out.JSON {
				return out.EmitJSON(view)
			}
			printView(out, view)
			return nil
		},
	}
}

func printView(out *Output, view *model.DisplayView) {
	if !view.Found {
		out.Warn("%s: %s", view.YouTubeId, model.NotFoundSong)
		return
	}
	info := view.SongInfo
	out.Heading("%s - %s", info.Title, info.Artist)
	out.Field("key", info.Key)
	if info.TempoBPM > 0 {
		out.Field("tempo", fmt.Sprintf("%d bpm", info.TempoBPM))
	}
	out.Field("duration", info.Duration)
	out.Field("chords", fmt.Sprintf("%d (%d distinct)", info.ChordCount, info.DistinctChords))
	out.Field("watch", info.WatchURL)

	names := make([]string, 0, len(view.ChordDiagram))
	for _, d := range view.ChordDiagram {
		names = append(names, fmt.Sprintf("%s %s", d.Chord, d.Frets))
	}
	out.Field("voicings", strings.Join(names, ", "))
	for _, c := range view.ChordList {
		out.Print(fmt.Sprintf("%3d  %s-%s  %s\n", c.Sequence, c.Start, c.End, c.Chord))
	}
}

func newIngestCmd(env Environment, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <yt_id>",
		Short: "Extract and store the chord chart of a video, waiting for the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			youTubeId := strings.TrimSpace(args[0])
			if !model.IsValidYouTubeId(youTubeId) {
				return fmt.Errorf("%q is not a YouTube video id", youTubeId)
			}
			ingestion, closeIngestion, err := env.OpenIngestion(cmd.Context())
			if err != nil {
				return err
			}
			defer closeIngestion()

			if err := services.NewChainFeatureExtractor(ingestion).RequestFeatures(cmd.Context(), youTubeId); err != nil {
				return err
			}
			out := opts.output(cmd)
			if out.JSON {
				return out.EmitJSON(map[string]string{"status": "ok", "youtube_id": youTubeId})
			}
			out.Success("ingested %s", youTubeId)
			return nil
		},
	}
}

func newDiagramCmd(opts *rootOptions) *cobra.Command {
	var pngFile string
	cmd := &cobra.Command{
		Use:   "diagram <chord>",
		Short: "Print the voicing of a chord, optionally writing its PNG diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chord, voicing, err := chords.LookupSymbol(args[0])
			if err != nil {
				return err
			}
			if pngFile != "" {
				data, err := chords.RenderPNG(voicing)
				if err != nil {
					return err
				}
				if err := os.WriteFile(pngFile, data, 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", pngFile, err)
				}
			}

			out := opts.output(cmd)
			if out.JSON {
				return out.EmitJSON(&model.ChordDiagram{Chord: chord.Name(), Frets: voicing.String(), BaseFret: voicing.BaseFret})
			}
			out.Print(chords.RenderASCII(chord.Name(), voicing))
			if pngFile != "" {
				out.Success("wrote %s", pngFile)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&pngFile, "png", "o", "", "write the diagram image to this file")
	return cmd
}
