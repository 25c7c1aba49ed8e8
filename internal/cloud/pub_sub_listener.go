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

// Package cloud provides components for interacting with Google Cloud services.
// This file defines a generic Pub/Sub message listener that delegates the
// processing of every message to a cor.Command.
//
// Logic Flow:
//  1. A PubSubListener is created with a client and a subscription ID.
//  2. A Command is attached with SetCommand once the workflows are built.
//  3. Listen starts a goroutine that receives messages until ctx is done.
//  4. Each message runs the command in its own cor.Context.
//  5. The message is acknowledged only if the command recorded no errors.
//     Otherwise it is nacked and redelivered (or dead-lettered).
package cloud

import (
	"context"
	"log/slog"
	"sync"

	"cloud.google.com/go/pubsub"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/cor"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PubSubListener connects a subscription to a processing command.
type PubSubListener struct {
	client       *pubsub.Client
	subscription *pubsub.Subscription
	mu           sync.RWMutex
	command      cor.Command
	done         chan struct{}
}

// NewPubSubListener creates a listener for subscriptionID. command may be
// nil and attached later with SetCommand.
func NewPubSubListener(
	pubsubClient *pubsub.Client,
	subscriptionID string,
	command cor.Command,
) (cmd *PubSubListener, err error) {
	sub := pubsubClient.Subscription(subscriptionID)
	cmd = &PubSubListener{
		client:       pubsubClient,
		subscription: sub,
		command:      command,
		done:         make(chan struct{}),
	}
	return cmd, nil
}

// SetCommand attaches the command executed for every message. An already
// attached command is never replaced.
func (m *PubSubListener) SetCommand(command cor.Command) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.command == nil {
		m.command = command
	}
}

func (m *PubSubListener) getCommand() cor.Command {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.command
}

// Done is closed when the receive loop started by Listen has returned.
func (m *PubSubListener) Done() <-chan struct{} {
	return m.done
}

// Listen starts receiving in a background goroutine. Cancelling ctx stops
// the receive loop.
func (m *PubSubListener) Listen(ctx context.Context) {
	slog.Info("listening", "subscription", m.subscription.String())

	go func() {
		defer close(m.done)
		tracer := otel.Tracer("message-listener")

		err := m.subscription.Receive(ctx, func(msgCtx context.Context, msg *pubsub.Message) {
			spanCtx, span := tracer.Start(msgCtx, "receive-message")
			defer span.End()
			span.SetAttributes(
				attribute.String("msg", string(msg.Data)),
				attribute.String("msg.id", msg.ID),
			)

			command := m.getCommand()
			if command == nil {
				slog.ErrorContext(spanCtx, "no command attached to listener, message not acknowledged", "subscription", m.subscription.String())
				span.SetStatus(codes.Error, "no command")
				msg.Nack()
				return
			}

			chainCtx := cor.NewBaseContextWithInput(spanCtx, string(msg.Data))
			defer chainCtx.Close()

			command.Execute(chainCtx)

			if !chainCtx.HasErrors() {
				span.SetStatus(codes.Ok, "success")
				msg.Ack()
				return
			}

			span.SetStatus(codes.Error, "failed")
			for name, e := range chainCtx.GetErrors() {
				slog.ErrorContext(spanCtx, "error executing chain", "command", name, "message_id", msg.ID, "error", e)
			}
			// Redelivery follows the subscription's retry and dead-letter policy.
			msg.Nack()
		})
		if err != nil {
			slog.Error("error receiving data", "subscription", m.subscription.String(), "error", err)
		}
	}()
}
