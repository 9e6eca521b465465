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
	"fmt"
	"reflect"

	"github.com/sirupsen/logrus"

	daoerrors "github.com/tomoncle/daokit/errors"
	"github.com/tomoncle/daokit/store"
	"github.com/tomoncle/daokit/types"
	"github.com/tomoncle/daokit/utils"
)

type baseRepositoryImpl[T any, ID comparable, E EntityPointer[T, ID]] struct {
	sess store.Session
	name string
	opts options
}

// NewRepository returns a generic repository over sess. E is inferred, so
// callers write NewRepository[Offer, int64](sess).
func NewRepository[T any, ID comparable, E EntityPointer[T, ID]](sess store.Session, opts ...Option) Repository[ID, E] {
	r := &baseRepositoryImpl[T, ID, E]{
		sess: sess,
		name: reflect.TypeOf((*T)(nil)).Elem().Name(),
	}
	for _, opt := range opts {
		opt(&r.opts)
	}
	if r.opts.log == nil {
		r.opts.log = utils.GetLogger("REPOSITORY")
	}
	return r
}

func (r *baseRepositoryImpl[T, ID, E]) EntityName() string { return r.name }

func (r *baseRepositoryImpl[T, ID, E]) NewQuery() store.Query {
	return r.sess.NewQuery(r.model())
}

func (r *baseRepositoryImpl[T, ID, E]) model() E { return E(new(T)) }

func (r *baseRepositoryImpl[T, ID, E]) logger(id any) *logrus.Entry {
	return r.opts.log.WithFields(logrus.Fields{"entity": r.name, "id": id})
}

func (r *baseRepositoryImpl[T, ID, E]) isNew(entity E) bool {
	if r.opts.newCheck != nil {
		return r.opts.newCheck(entity)
	}
	return !types.HasKey(entity.GetID())
}

func (r *baseRepositoryImpl[T, ID, E]) Save(ctx context.Context, entity E) (E, error) {
	var zero E
	if entity == nil {
		return zero, daoerrors.NewValidationError("entity", "must not be nil")
	}
	if r.isNew(entity) {
		if r.opts.keyGen != nil && !types.HasKey(entity.GetID()) {
			generated := r.opts.keyGen()
			id, ok := generated.(ID)
			if !ok {
				return zero, daoerrors.NewValidationError("id", fmt.Sprintf("key generator produced %T, %s expects %T", generated, r.name, id))
			}
			entity.SetID(id)
		}
		if err := r.sess.Insert(ctx, entity); err != nil {
			return zero, err
		}
		r.logger(entity.GetID()).Debug("saved new entity")
		return entity, nil
	}

	id := entity.GetID()
	existing, err := r.FindOne(ctx, id)
	if err != nil {
		return zero, err
	}
	if existing == nil {
		return zero, daoerrors.NewNotFoundError(r.name, id)
	}
	merged, err := r.sess.Merge(ctx, entity)
	if err != nil {
		return zero, err
	}
	r.logger(id).Debug("updated entity")
	return merged.(E), nil
}

func (r *baseRepositoryImpl[T, ID, E]) SaveAll(ctx context.Context, entities []E) error {
	for _, entity := range entities {
		if _, err := r.Save(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}

func (r *baseRepositoryImpl[T, ID, E]) FindOne(ctx context.Context, id ID) (E, error) {
	var zero E
	found, err := r.sess.Find(ctx, r.model(), id)
	if err != nil || found == nil {
		return zero, err
	}
	return found.(E), nil
}

func (r *baseRepositoryImpl[T, ID, E]) Find(ctx context.Context, id ID) (E, error) {
	entity, err := r.FindOne(ctx, id)
	if err != nil {
		return entity, err
	}
	if entity == nil {
		return entity, daoerrors.NewNotFoundError(r.name, id)
	}
	return entity, nil
}

// Exists performs a full lookup.
func (r *baseRepositoryImpl[T, ID, E]) Exists(ctx context.Context, id ID) (bool, error) {
	entity, err := r.FindOne(ctx, id)
	if err != nil {
		return false, err
	}
	return entity != nil, nil
}

func (r *baseRepositoryImpl[T, ID, E]) FindAll(ctx context.Context) ([]E, error) {
	entities := make([]E, 0)
	if err := r.NewQuery().Execute(ctx, &entities); err != nil {
		return nil, err
	}
	r.opts.log.WithFields(logrus.Fields{"entity": r.name, "hits": len(entities)}).Debug("find all")
	return entities, nil
}

func (r *baseRepositoryImpl[T, ID, E]) FindAllByIDs(ctx context.Context, ids []ID) ([]E, error) {
	entities := make([]E, 0, len(ids))
	if len(ids) == 0 {
		return entities, nil
	}
	keys := make([]any, len(ids))
	for i, id := range ids {
		keys[i] = id
	}
	if err := r.NewQuery().WhereKeyIn(keys).Execute(ctx, &entities); err != nil {
		return nil, err
	}
	r.opts.log.WithFields(logrus.Fields{"entity": r.name, "requested": len(ids), "hits": len(entities)}).Debug("find all by ids")
	return entities, nil
}

func (r *baseRepositoryImpl[T, ID, E]) List(ctx context.Context, filter *types.QueryFilter) ([]E, error) {
	entities := make([]E, 0)
	if err := r.NewQuery().Where(filter).Execute(ctx, &entities); err != nil {
		return nil, err
	}
	return entities, nil
}

// Delete removes a tracked entity directly. Detached instances are deleted
// by key.
func (r *baseRepositoryImpl[T, ID, E]) Delete(ctx context.Context, entity E) error {
	if entity == nil {
		return daoerrors.NewValidationError("entity", "must not be nil")
	}
	if !r.sess.Contains(entity) {
		return r.DeleteByID(ctx, entity.GetID())
	}
	if err := r.sess.Remove(ctx, entity); err != nil {
		return err
	}
	r.logger(entity.GetID()).Debug("deleted entity")
	return nil
}

// DeleteByID removes the record through a key-only reference without
// loading it.
func (r *baseRepositoryImpl[T, ID, E]) DeleteByID(ctx context.Context, id ID) error {
	ref, err := r.sess.Reference(r.model(), id)
	if err != nil {
		return err
	}
	if err := r.sess.Remove(ctx, ref); err != nil {
		return err
	}
	r.logger(id).Debug("deleted entity by id")
	return nil
}

func (r *baseRepositoryImpl[T, ID, E]) DeleteAll(ctx context.Context, entities []E) error {
	for _, entity := range entities {
		if err := r.Delete(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}

func (r *baseRepositoryImpl[T, ID, E]) ForceIncrementVersion(ctx context.Context, entity E) error {
	if entity == nil {
		return daoerrors.NewValidationError("entity", "must not be nil")
	}
	return r.sess.Lock(ctx, entity, store.LockOptimisticForceIncrement)
}

func (r *baseRepositoryImpl[T, ID, E]) FindPaginated(ctx context.Context, criteria *types.SearchCriteria, query store.Query) (*types.PaginatedList[E], error) {
	return r.findPaginated(ctx, criteria, query, true)
}

func (r *baseRepositoryImpl[T, ID, E]) FindPaginatedManualSort(ctx context.Context, criteria *types.SearchCriteria, query store.Query) (*types.PaginatedList[E], error) {
	return r.findPaginated(ctx, criteria, query, false)
}

// Page runs a page-number request against the rows matching filter.
func (r *baseRepositoryImpl[T, ID, E]) Page(ctx context.Context, page *types.PageRequest, filter *types.QueryFilter) (*types.PaginatedList[E], error) {
	if page == nil {
		page = types.NewPageRequest(1, 0)
	}
	return r.FindPaginated(ctx, page.Criteria(), r.NewQuery().Where(filter))
}

func (r *baseRepositoryImpl[T, ID, E]) findPaginated(ctx context.Context, criteria *types.SearchCriteria, query store.Query, applySortOrder bool) (*types.PaginatedList[E], error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	if query == nil {
		query = r.NewQuery()
	}
	if applySortOrder {
		for _, order := range criteria.Sort {
			query = query.OrderBy(order.Field, order.Direction)
		}
	}
	query = query.Offset(criteria.Offset)
	if criteria.Limit != nil {
		query = query.Limit(*criteria.Limit)
	}
	if criteria.Timeout != nil {
		query = query.Timeout(*criteria.Timeout)
	}

	result := types.NewPaginatedList[E](criteria)
	if err := query.Execute(ctx, &result.Items); err != nil {
		return nil, err
	}
	if result.Items == nil {
		result.Items = make([]E, 0)
	}
	if criteria.Total {
		total, err := query.Count(ctx)
		if err != nil {
			return nil, err
		}
		result.Total = &total
	}
	r.opts.log.WithFields(logrus.Fields{
		"entity": r.name,
		"offset": criteria.Offset,
		"hits":   len(result.Items),
	}).Debug("find paginated")
	return result, nil
}
