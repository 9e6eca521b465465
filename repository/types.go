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

package repository

import (
	"context"

	"github.com/tomoncle/daokit/store"
	"github.com/tomoncle/daokit/types"
)

// EntityPointer constrains E to a pointer to T implementing types.Entity.
type EntityPointer[T any, ID comparable] interface {
	*T
	types.Entity[ID]
}

// CrudRepository defines basic CRUD operations for a generic entity type.
type CrudRepository[ID comparable, E types.Entity[ID]] interface {
	// Save inserts a new entity or merges one whose key already exists.
	// Saving an entity whose key has no record fails with NotFound.
	Save(ctx context.Context, entity E) (E, error)

	// SaveAll saves entities in order and stops at the first failure.
	SaveAll(ctx context.Context, entities []E) error

	// FindOne returns nil when no record has the key.
	FindOne(ctx context.Context, id ID) (E, error)

	// Find fails with NotFound when no record has the key.
	Find(ctx context.Context, id ID) (E, error)

	Exists(ctx context.Context, id ID) (bool, error)

	FindAll(ctx context.Context) ([]E, error)

	FindAllByIDs(ctx context.Context, ids []ID) ([]E, error)

	List(ctx context.Context, filter *types.QueryFilter) ([]E, error)

	Delete(ctx context.Context, entity E) error

	DeleteByID(ctx context.Context, id ID) error

	DeleteAll(ctx context.Context, entities []E) error
}

// LockingRepository exposes optimistic locking controls.
type LockingRepository[ID comparable, E types.Entity[ID]] interface {
	ForceIncrementVersion(ctx context.Context, entity E) error
}

// PageQueryRepository defines paginated search over a caller supplied query.
type PageQueryRepository[ID comparable, E types.Entity[ID]] interface {
	// FindPaginated validates criteria, then applies its sort terms, offset,
	// limit and timeout to query before running it. The ordering and paging
	// stay on query afterwards, so a reused query carries them. A nil query
	// searches every entity.
	FindPaginated(ctx context.Context, criteria *types.SearchCriteria, query store.Query) (*types.PaginatedList[E], error)

	// FindPaginatedManualSort behaves like FindPaginated but leaves ordering
	// to query.
	FindPaginatedManualSort(ctx context.Context, criteria *types.SearchCriteria, query store.Query) (*types.PaginatedList[E], error)

	Page(ctx context.Context, page *types.PageRequest, filter *types.QueryFilter) (*types.PaginatedList[E], error)
}

// Repository combines CRUD, locking and pagination and exposes the session
// query builder for advanced use cases.
type Repository[ID comparable, E types.Entity[ID]] interface {
	CrudRepository[ID, E]
	LockingRepository[ID, E]
	PageQueryRepository[ID, E]
	NewQuery() store.Query
	EntityName() string
}
