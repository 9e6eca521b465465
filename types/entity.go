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

package types

// Entity is a persistent record identified solely by its primary key.
// The zero value of ID means the key is absent and the entity is new.
type Entity[ID comparable] interface {
	GetID() ID
	SetID(id ID)
}

// Versioned entities carry an optimistic-lock counter that the store checks
// and increments on every update.
type Versioned interface {
	GetVersion() int64
	SetVersion(v int64)
}

// HasKey reports whether id is set.
func HasKey[ID comparable](id ID) bool {
	var zero ID
	return id != zero
}
