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

// Package cor (Chain of Responsibility) provides the building blocks used to
// express song ingestion as a sequence of small commands. A Command reads its
// input from a shared Context, does one thing, and writes its output back;
// a Chain runs commands in order and pipes each output into the next input.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the keys used to pipe data between commands of a chain.
const (
	// CtxIn holds the primary input of the command being executed. A chain
	// fills it with the previous command's CtxOut.
	CtxIn = "__IN__"
	// CtxOut is where a command places its primary output.
	CtxOut = "__OUT__"
)

// Context is the state shared by all commands of one workflow execution.
// Implementations must be safe for concurrent use, since commands may fan
// work out to goroutines that record results and errors.
type Context interface {
	// SetContext replaces the Go context (used to carry the current span).
	SetContext(context context.Context)

	// GetContext returns the Go context.
	GetContext() context.Context

	// Add stores a value under a key.
	Add(key string, value interface{}) Context

	// AddError records an error, keyed by the name of the command that failed.
	AddError(key string, err error)

	// GetErrors returns a copy of all recorded errors.
	GetErrors() map[string]error

	// Get returns the value stored under key, or nil.
	Get(key string) interface{}

	// Remove deletes a key.
	Remove(key string)

	// HasErrors reports whether any error has been recorded.
	HasErrors() bool

	// Close releases resources held by the context.
	Close()
}

// Executable is anything with a unit of work to run against a Context.
type Executable interface {
	Execute(context Context)
}

// Command is an atomic, testable unit of work.
type Command interface {
	Executable

	// GetName returns the name used for spans, metrics and error keys.
	GetName() string

	// GetInputParam returns the context key of the primary input.
	GetInputParam() string

	// GetOutputParam returns the context key of the primary output.
	GetOutputParam() string

	// IsExecutable is the precondition checked before Execute.
	IsExecutable(context Context) bool

	GetTracer() trace.Tracer
	GetMeter() metric.Meter
	GetSuccessCounter() metric.Int64Counter
	GetErrorCounter() metric.Int64Counter
}

// Chain is a Command made of other commands, so chains can nest.
type Chain interface {
	Command

	// ContinueOnFailure makes the chain keep going after a command records an error.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command to the chain.
	AddCommand(command Command) Chain
}
