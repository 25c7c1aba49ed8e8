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

// Command fivefrets is the operator CLI: look songs up, ingest a video
// synchronously and preview chord diagrams.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

const (
	exitSuccess = 0
	exitFailure = 1
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd(NewCloudEnvironment())
	if err := root.ExecuteContext(ctx); err != nil {
		NewOutput(os.Stderr, false, os.Getenv("NO_COLOR") != "").Error("Error: %v", err)
		stop()
		os.Exit(exitFailure)
	}
	os.Exit(exitSuccess)
}
