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
	"context"
	"log/slog"

	"github.com/jaycherian/gcp-go-fivefrets/internal/cloud"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/cor"
)

// SetupListeners attaches the ingestion workflow to the ingest subscription
// and starts receiving. Listeners without a command are not started, since
// every message they received would be nacked.
func SetupListeners(ctx context.Context, clients *cloud.ServiceClients, ingestion cor.Command) {
	for key, listener := range clients.PubSubListeners {
		if key == cloud.IngestSubscriptionKey {
			listener.SetCommand(ingestion)
			listener.Listen(ctx)
			continue
		}
		slog.Warn("no workflow for subscription, not listening", "key", key)
	}
}
