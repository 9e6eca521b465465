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

package daokit

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/tomoncle/daokit/database"
	"github.com/tomoncle/daokit/repository"
	"github.com/tomoncle/daokit/store"
	"github.com/tomoncle/daokit/types"
)

type Service[ID comparable, E types.Entity[ID]] interface {
	// Get returns the entity with the given key or a NotFound error.
	Get(ctx context.Context, id ID) (E, error)

	// Exists reports whether a record has the given key.
	Exists(ctx context.Context, id ID) (bool, error)

	// All returns all entities.
	All(ctx context.Context) ([]E, error)

	// List returns entities that match the provided filter.
	List(ctx context.Context, filter *types.QueryFilter) ([]E, error)

	// Page returns one page of the entities matching filter.
	Page(ctx context.Context, page *types.PageRequest, filter *types.QueryFilter) (*types.PaginatedList[E], error)

	// Search runs a paginated, sorted search over the entities matching filter.
	Search(ctx context.Context, criteria *types.SearchCriteria, filter *types.QueryFilter) (*types.PaginatedList[E], error)

	// Save inserts new entities and merges existing ones, in order.
	Save(ctx context.Context, entities ...E) error

	// Delete removes an entity by its identifier.
	Delete(ctx context.Context, id ID) error

	// Lock bumps the version of entity without changing anything else.
	Lock(ctx context.Context, entity E) error

	// Repository opens a repository over a fresh session. Entities loaded
	// through it stay tracked until it is dropped.
	Repository() (repository.Repository[ID, E], error)

	// WithTx returns a Service whose operations run inside tx.
	WithTx(tx bun.Tx) Service[ID, E]

	// SelectBuilder returns a Bun select query builder for the entity.
	SelectBuilder() (*bun.SelectQuery, error)
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	db       bun.IDB
	repoOpts []repository.Option
	sessOpts []store.SessionOption
}

// WithDB binds the service to db instead of the global connection.
func WithDB(db bun.IDB) ServiceOption {
	return func(o *serviceOptions) { o.db = db }
}

// WithRepositoryOptions passes opts to every repository the service opens.
func WithRepositoryOptions(opts ...repository.Option) ServiceOption {
	return func(o *serviceOptions) { o.repoOpts = append(o.repoOpts, opts...) }
}

// WithSessionOptions passes opts to every session the service opens. They
// are applied after the configured version column.
func WithSessionOptions(opts ...store.SessionOption) ServiceOption {
	return func(o *serviceOptions) { o.sessOpts = append(o.sessOpts, opts...) }
}

type baseServiceImpl[T any, ID comparable, E repository.EntityPointer[T, ID]] struct {
	opts serviceOptions
}

// NewService returns a Service backed by the global database connection,
// or by the handle given with WithDB. Every call opens its own session, so
// nothing is cached between calls.
func NewService[T any, ID comparable, E repository.EntityPointer[T, ID]](opts ...ServiceOption) Service[ID, E] {
	s := &baseServiceImpl[T, ID, E]{}
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s
}

func (s *baseServiceImpl[T, ID, E]) handle() (bun.IDB, error) {
	if s.opts.db != nil {
		return s.opts.db, nil
	}
	if db := database.GetDB(); db != nil {
		return db, nil
	}
	return nil, fmt.Errorf("database not initialized")
}

func (s *baseServiceImpl[T, ID, E]) Repository() (repository.Repository[ID, E], error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	var sessOpts []store.SessionOption
	if cfg := database.GetConfig(); cfg != nil && cfg.Session.VersionColumn != "" {
		sessOpts = append(sessOpts, store.WithVersionColumn(cfg.Session.VersionColumn))
	}
	sessOpts = append(sessOpts, s.opts.sessOpts...)
	return repository.NewRepository[T, ID, E](store.NewBunSession(db, sessOpts...), s.opts.repoOpts...), nil
}

func (s *baseServiceImpl[T, ID, E]) WithTx(tx bun.Tx) Service[ID, E] {
	opts := s.opts
	opts.db = tx
	return &baseServiceImpl[T, ID, E]{opts: opts}
}

func (s *baseServiceImpl[T, ID, E]) Get(ctx context.Context, id ID) (E, error) {
	repo, err := s.Repository()
	if err != nil {
		return nil, err
	}
	return repo.Find(ctx, id)
}

func (s *baseServiceImpl[T, ID, E]) Exists(ctx context.Context, id ID) (bool, error) {
	repo, err := s.Repository()
	if err != nil {
		return false, err
	}
	return repo.Exists(ctx, id)
}

func (s *baseServiceImpl[T, ID, E]) All(ctx context.Context) ([]E, error) {
	repo, err := s.Repository()
	if err != nil {
		return nil, err
	}
	return repo.FindAll(ctx)
}

func (s *baseServiceImpl[T, ID, E]) List(ctx context.Context, filter *types.QueryFilter) ([]E, error) {
	repo, err := s.Repository()
	if err != nil {
		return nil, err
	}
	return repo.List(ctx, filter)
}

func (s *baseServiceImpl[T, ID, E]) Page(ctx context.Context, page *types.PageRequest, filter *types.QueryFilter) (*types.PaginatedList[E], error) {
	repo, err := s.Repository()
	if err != nil {
		return nil, err
	}
	return repo.Page(ctx, page, filter)
}

func (s *baseServiceImpl[T, ID, E]) Search(ctx context.Context, criteria *types.SearchCriteria, filter *types.QueryFilter) (*types.PaginatedList[E], error) {
	repo, err := s.Repository()
	if err != nil {
		return nil, err
	}
	return repo.FindPaginated(ctx, criteria, repo.NewQuery().Where(filter))
}

func (s *baseServiceImpl[T, ID, E]) Save(ctx context.Context, entities ...E) error {
	repo, err := s.Repository()
	if err != nil {
		return err
	}
	return repo.SaveAll(ctx, entities)
}

func (s *baseServiceImpl[T, ID, E]) Delete(ctx context.Context, id ID) error {
	repo, err := s.Repository()
	if err != nil {
		return err
	}
	return repo.DeleteByID(ctx, id)
}

func (s *baseServiceImpl[T, ID, E]) Lock(ctx context.Context, entity E) error {
	repo, err := s.Repository()
	if err != nil {
		return err
	}
	return repo.ForceIncrementVersion(ctx, entity)
}

func (s *baseServiceImpl[T, ID, E]) SelectBuilder() (*bun.SelectQuery, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	return db.NewSelect().Model((*T)(nil)), nil
}
