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

package cor

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// BaseContext is the default Context: a mutex-guarded property bag with an
// error map and the current Go context.
type BaseContext struct {
	mu      sync.RWMutex
	data    map[string]interface{}
	errors  map[string]error // Keyed by the name of the command that failed.
	context context.Context
}

// NewBaseContext returns an empty context. Callers set the Go context with
// SetContext before executing a command.
func NewBaseContext() Context {
	return &BaseContext{
		data:   make(map[string]interface{}),
		errors: make(map[string]error),
	}
}

// NewBaseContextWithInput is a convenience for the common case of starting a
// workflow with a Go context and a single input value.
func NewBaseContextWithInput(ctx context.Context, input interface{}) Context {
	out := NewBaseContext()
	out.SetContext(ctx)
	out.Add(CtxIn, input)
	return out
}

func (c *BaseContext) SetContext(context context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.context = context
}

func (c *BaseContext) GetContext() context.Context {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.context
}

// Close drops the stored values, which include the rendered diagram images.
// Recorded errors are kept.
func (c *BaseContext) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.data)
}

func (c *BaseContext) Add(key string, value interface{}) Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return c
}

// AddError records err under key. A second error for the same key is kept
// alongside the first rather than replacing it.
func (c *BaseContext) AddError(key string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.errors[key]; ok {
		err = errors.Join(prev, err)
	}
	c.errors[key] = err
}

func (c *BaseContext) GetErrors() map[string]error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.errors)
}

func (c *BaseContext) Get(key string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data[key]
}

func (c *BaseContext) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

func (c *BaseContext) HasErrors() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.errors) > 0
}

// ContextError joins the errors recorded on c, ordered by command name, or
// returns nil when there are none.
func ContextError(c Context) error {
	recorded := c.GetErrors()
	if len(recorded) == 0 {
		return nil
	}
	errs := make([]error, 0, len(recorded))
	for _, name := range slices.Sorted(maps.Keys(recorded)) {
		errs = append(errs, fmt.Errorf("%s: %w", name, recorded[name]))
	}
	return errors.Join(errs...)
}
