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

package store

import (
	"reflect"
	"sync"
)

type identityKey struct {
	typ reflect.Type
	key any
}

// identityMap keeps at most one managed instance per (type, key).
type identityMap struct {
	mu    sync.RWMutex
	byKey map[identityKey]any
	byPtr map[any]identityKey
}

func newIdentityMap() *identityMap {
	return &identityMap{
		byKey: make(map[identityKey]any),
		byPtr: make(map[any]identityKey),
	}
}

func (m *identityMap) lookup(typ reflect.Type, key any) any {
	if !comparableKey(key) {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byKey[identityKey{typ: typ, key: key}]
}

func (m *identityMap) contains(entity any) bool {
	if entity == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byPtr[entity]
	return ok
}

// put registers entity under key. If another instance already holds the key
// it receives a copy of entity's state and is returned.
func (m *identityMap) put(typ reflect.Type, key any, entity any) any {
	if !comparableKey(key) {
		return entity
	}
	k := identityKey{typ: typ, key: key}

	m.mu.Lock()
	defer m.mu.Unlock()
	if managed, ok := m.byKey[k]; ok {
		if managed != entity {
			reflect.ValueOf(managed).Elem().Set(reflect.ValueOf(entity).Elem())
		}
		return managed
	}
	m.byKey[k] = entity
	m.byPtr[entity] = k
	return entity
}

func (m *identityMap) forget(typ reflect.Type, key any) {
	if !comparableKey(key) {
		return
	}
	k := identityKey{typ: typ, key: key}

	m.mu.Lock()
	defer m.mu.Unlock()
	if managed, ok := m.byKey[k]; ok {
		delete(m.byPtr, managed)
		delete(m.byKey, k)
	}
}

func comparableKey(key any) bool {
	return key != nil && reflect.TypeOf(key).Comparable()
}
