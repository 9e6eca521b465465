/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"reflect"
	"sort"
	"sync"
)

var defaultRegistry = NewModelRegistry()

// Model is an entity type known to the connection. Instance returns a
// pointer to a zero struct; Priority orders registration, lower first.
type Model interface {
	Instance() any
	Priority() int
}

// ModelRegistry stores models and exposes them in a deterministic order.
// Registering the same struct type twice keeps the first entry.
type ModelRegistry struct {
	mu     sync.RWMutex
	models []Model
	seen   map[reflect.Type]bool
}

func NewModelRegistry() *ModelRegistry {
	return &ModelRegistry{seen: map[reflect.Type]bool{}}
}

func (r *ModelRegistry) Register(model Model) bool {
	typ := reflect.TypeOf(model.Instance())
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seen[typ] {
		return false
	}
	r.seen[typ] = true
	r.models = append(r.models, model)
	return true
}

// Models returns the registered models sorted by priority, keeping
// registration order for equal priorities.
func (r *ModelRegistry) Models() []Model {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Model, len(r.models))
	copy(result, r.models)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Priority() < result[j].Priority()
	})
	return result
}

func (r *ModelRegistry) Instances() []any {
	models := r.Models()
	out := make([]any, len(models))
	for i, m := range models {
		out[i] = m.Instance()
	}
	return out
}

type modelAdapter struct {
	instance any
	priority int
}

func (a *modelAdapter) Instance() any { return a.instance }
func (a *modelAdapter) Priority() int { return a.priority }

// NewModel wraps a struct pointer and priority into a Model.
func NewModel(instance any, priority int) Model {
	return &modelAdapter{instance: instance, priority: priority}
}

// RegisterModel adds T to the default registry.
func RegisterModel[T any](priority int) {
	defaultRegistry.Register(NewModel((*T)(nil), priority))
}

// RegisteredModelInstances returns typed nil pointers for every model in the
// default registry, suitable for bun.DB.RegisterModel.
func RegisteredModelInstances() []any {
	return defaultRegistry.Instances()
}
