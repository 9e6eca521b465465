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
	"context"
	"time"

	"github.com/tomoncle/daokit/types"
)

// LockMode selects how Session.Lock treats an entity.
type LockMode int

const (
	// LockOptimisticForceIncrement bumps the version of a Versioned entity
	// even though none of its fields changed.
	LockOptimisticForceIncrement LockMode = iota + 1
)

func (m LockMode) String() string {
	switch m {
	case LockOptimisticForceIncrement:
		return "OPTIMISTIC_FORCE_INCREMENT"
	default:
		return "UNKNOWN"
	}
}

// Session is a unit-of-work scoped view of the persistent store. It tracks
// the instances it loaded, inserted or merged so that callers can tell
// managed entities from detached ones.
//
// Entities are passed as pointers to structs. A Session is not meant to be
// shared between concurrent logical operations.
type Session interface {
	// Find loads the record with the given key into dest and returns the
	// managed instance, which may be an already tracked instance rather than
	// dest. It returns nil, nil when no record exists.
	Find(ctx context.Context, dest any, id any) (any, error)

	// Insert persists a new entity and starts tracking it. Generated keys
	// are written back into the entity.
	Insert(ctx context.Context, entity any) error

	// Merge writes the state of entity to the store and returns the managed
	// instance carrying that state.
	Merge(ctx context.Context, entity any) (any, error)

	// Remove deletes the record behind entity.
	Remove(ctx context.Context, entity any) error

	// Reference returns an instance of model's type that only carries the
	// key. The record is not fetched.
	Reference(model any, id any) (any, error)

	// Contains reports whether the session tracks this exact instance.
	Contains(entity any) bool

	// Lock applies mode to a managed entity.
	Lock(ctx context.Context, entity any, mode LockMode) error

	// NewQuery starts a query selecting records of model's type.
	NewQuery(model any) Query
}

// Query is a structured select over one entity type. Builder methods return
// the receiver for chaining.
type Query interface {
	Where(filter *types.QueryFilter) Query

	// WhereKeyIn restricts the query to the given primary keys.
	WhereKeyIn(keys []any) Query

	OrderBy(field string, dir types.Direction) Query

	Limit(n int) Query

	Offset(n int) Query

	// Timeout bounds every execution of the query. Expiry surfaces as an
	// error matching errors.ErrTimeout.
	Timeout(d time.Duration) Query

	// Execute runs the query and scans the rows into dest, a pointer to a
	// slice of entity pointers.
	Execute(ctx context.Context, dest any) error

	// Count returns the number of rows matching the filters only. Order,
	// limit and offset are ignored.
	Count(ctx context.Context) (int, error)
}
