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
	"fmt"
	"reflect"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	daoerrors "github.com/tomoncle/daokit/errors"
	"github.com/tomoncle/daokit/types"
)

type orderTerm struct {
	field string
	dir   types.Direction
}

type bunQuery struct {
	sess    *BunSession
	model   any
	filters []*types.QueryFilter
	keys    []any
	hasKeys bool
	orders  []orderTerm
	limit   *int
	offset  int
	timeout time.Duration
}

var _ Query = (*bunQuery)(nil)

func (q *bunQuery) Where(filter *types.QueryFilter) Query {
	if filter != nil && filter.Schema != "" {
		q.filters = append(q.filters, filter)
	}
	return q
}

func (q *bunQuery) WhereKeyIn(keys []any) Query {
	q.keys = append(q.keys, keys...)
	q.hasKeys = true
	return q
}

func (q *bunQuery) OrderBy(field string, dir types.Direction) Query {
	q.orders = append(q.orders, orderTerm{field: field, dir: dir})
	return q
}

func (q *bunQuery) Limit(n int) Query {
	q.limit = &n
	return q
}

func (q *bunQuery) Offset(n int) Query {
	q.offset = n
	return q
}

func (q *bunQuery) Timeout(d time.Duration) Query {
	q.timeout = d
	return q
}

func (q *bunQuery) Execute(ctx context.Context, dest any) error {
	slice := reflect.ValueOf(dest)
	if slice.Kind() != reflect.Pointer || slice.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("execute: dest must be a pointer to a slice, got %T", dest)
	}
	typ, err := structType(q.model)
	if err != nil {
		return err
	}
	if q.offset < 0 || q.offset > types.MaxRows {
		return daoerrors.NewValidationError("offset", fmt.Sprintf("must be within [0, %d], got %d", types.MaxRows, q.offset))
	}
	if q.limit != nil && (*q.limit <= 0 || *q.limit > types.MaxRows) {
		return daoerrors.NewValidationError("limit", fmt.Sprintf("must be within [1, %d], got %d", types.MaxRows, *q.limit))
	}
	if q.hasKeys && len(q.keys) == 0 {
		slice.Elem().SetLen(0)
		return nil
	}

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	sel := q.where(q.sess.db.NewSelect().Model(dest))
	for _, o := range q.orders {
		if o.dir == types.DESC {
			sel = sel.OrderExpr("? DESC", bun.Ident(o.field))
		} else {
			sel = sel.OrderExpr("? ASC", bun.Ident(o.field))
		}
	}
	switch {
	case q.limit != nil:
		sel = sel.Limit(*q.limit)
	case q.offset > 0 && q.sess.db.Dialect().Name() != dialect.PG:
		// sqlite and mysql reject OFFSET without LIMIT
		sel = sel.Limit(types.MaxRows)
	}
	if q.offset > 0 {
		sel = sel.Offset(q.offset)
	}

	if err := sel.Scan(ctx); err != nil {
		return q.sess.translate(err, "select", typ.Name(), nil, q.timeout)
	}

	rows := slice.Elem()
	for i := 0; i < rows.Len(); i++ {
		managed, err := q.sess.attach(rows.Index(i).Interface())
		if err != nil {
			return err
		}
		rows.Index(i).Set(reflect.ValueOf(managed))
	}
	q.sess.log.WithFields(logrus.Fields{"entity": typ.Name(), "rows": rows.Len()}).Debug("select executed")
	return nil
}

func (q *bunQuery) Count(ctx context.Context) (int, error) {
	typ, err := structType(q.model)
	if err != nil {
		return 0, err
	}
	if q.hasKeys && len(q.keys) == 0 {
		return 0, nil
	}

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	n, err := q.where(q.sess.db.NewSelect().Model(q.model)).Count(ctx)
	if err != nil {
		return 0, q.sess.translate(err, "count", typ.Name(), nil, q.timeout)
	}
	return n, nil
}

func (q *bunQuery) where(sel *bun.SelectQuery) *bun.SelectQuery {
	for _, f := range q.filters {
		sel = sel.Where(f.Schema, f.Args...)
	}
	if q.hasKeys {
		sel = sel.Where("?PKs IN (?)", bun.In(q.keys))
	}
	return sel
}

func (q *bunQuery) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if q.timeout > 0 {
		return context.WithTimeout(ctx, q.timeout)
	}
	return ctx, func() {}
}
