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
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct {
	ID   int64
	Name string
}

func TestIdentityMapPutCopiesIntoManaged(t *testing.T) {
	m := newIdentityMap()
	typ := reflect.TypeOf(item{})

	first := &item{ID: 1, Name: "a"}
	assert.Same(t, first, m.put(typ, int64(1), first))

	second := &item{ID: 1, Name: "b"}
	assert.Same(t, first, m.put(typ, int64(1), second))
	assert.Equal(t, "b", first.Name)

	assert.True(t, m.contains(first))
	assert.False(t, m.contains(second))
	assert.Same(t, first, m.lookup(typ, int64(1)))
	assert.Nil(t, m.lookup(typ, 1), "keys are matched by type")

	m.forget(typ, int64(1))
	assert.False(t, m.contains(first))
	assert.Nil(t, m.lookup(typ, int64(1)))
}

func TestIdentityMapSkipsUncomparableKeys(t *testing.T) {
	m := newIdentityMap()
	typ := reflect.TypeOf(item{})
	e := &item{}

	assert.Same(t, e, m.put(typ, []byte("k"), e))
	assert.Nil(t, m.lookup(typ, []byte("k")))
	assert.Nil(t, m.lookup(typ, nil))
	assert.False(t, m.contains(e))
	m.forget(typ, []byte("k"))
}
