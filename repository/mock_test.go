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
	"errors"
	"fmt"
	"sort"
	"time"

	daoerrors "github.com/tomoncle/daokit/errors"
	"github.com/tomoncle/daokit/store"
	"github.com/tomoncle/daokit/types"
)

type offer struct {
	ID      int64
	Name    string
	Rank    int
	Version int64
}

func (o *offer) GetID() int64      { return o.ID }
func (o *offer) SetID(id int64)    { o.ID = id }
func (o *offer) GetVersion() int64 { return o.Version }
func (o *offer) SetVersion(v int64) {
	o.Version = v
}

func (o *offer) clone() *offer {
	c := *o
	return &c
}

func newOffer(name string, rank int) *offer {
	return &offer{Name: name, Rank: rank}
}

// mockSession is an in-memory store.Session for offers that counts calls.
type mockSession struct {
	rows    map[int64]*offer
	managed map[int64]*offer
	nextID  int64
	calls   map[string]int

	// queryLatency simulates how long a query takes in the store.
	queryLatency time.Duration
	failOn       map[string]error
}

var _ store.Session = (*mockSession)(nil)

func newMockSession() *mockSession {
	return &mockSession{
		rows:    map[int64]*offer{},
		managed: map[int64]*offer{},
		calls:   map[string]int{},
		failOn:  map[string]error{},
	}
}

// seed stores offers directly without tracking them.
func (s *mockSession) seed(offers ...*offer) {
	for _, o := range offers {
		s.nextID++
		o.ID = s.nextID
		s.rows[o.ID] = o.clone()
	}
}

func (s *mockSession) storeCalls() int {
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func (s *mockSession) record(op string) error {
	s.calls[op]++
	return s.failOn[op]
}

func (s *mockSession) track(o *offer) *offer {
	if m, ok := s.managed[o.ID]; ok {
		if m != o {
			*m = *o
		}
		return m
	}
	s.managed[o.ID] = o
	return o
}

func (s *mockSession) Find(_ context.Context, dest any, id any) (any, error) {
	if err := s.record("find"); err != nil {
		return nil, err
	}
	key := id.(int64)
	if m, ok := s.managed[key]; ok {
		return m, nil
	}
	row, ok := s.rows[key]
	if !ok {
		return nil, nil
	}
	o := dest.(*offer)
	*o = *row
	return s.track(o), nil
}

func (s *mockSession) Insert(_ context.Context, entity any) error {
	if err := s.record("insert"); err != nil {
		return err
	}
	o := entity.(*offer)
	if o.ID == 0 {
		s.nextID++
		o.ID = s.nextID
	}
	if _, ok := s.rows[o.ID]; ok {
		return fmt.Errorf("duplicate key %d", o.ID)
	}
	s.rows[o.ID] = o.clone()
	s.track(o)
	return nil
}

func (s *mockSession) Merge(_ context.Context, entity any) (any, error) {
	if err := s.record("merge"); err != nil {
		return nil, err
	}
	o := entity.(*offer)
	row, ok := s.rows[o.ID]
	if !ok {
		return nil, daoerrors.NewNotFoundError("offer", o.ID)
	}
	if row.Version != o.Version {
		return nil, daoerrors.NewConflictError("offer", o.ID, "stale version", nil)
	}
	o.Version++
	s.rows[o.ID] = o.clone()
	return s.track(o), nil
}

func (s *mockSession) Remove(_ context.Context, entity any) error {
	if err := s.record("remove"); err != nil {
		return err
	}
	o := entity.(*offer)
	row, ok := s.rows[o.ID]
	if !ok {
		return daoerrors.NewNotFoundError("offer", o.ID)
	}
	if s.managed[o.ID] == o && row.Version != o.Version {
		return daoerrors.NewConflictError("offer", o.ID, "stale version", nil)
	}
	delete(s.rows, o.ID)
	delete(s.managed, o.ID)
	return nil
}

func (s *mockSession) Reference(_ any, id any) (any, error) {
	s.calls["reference"]++
	key := id.(int64)
	if m, ok := s.managed[key]; ok {
		return m, nil
	}
	return &offer{ID: key}, nil
}

func (s *mockSession) Contains(entity any) bool {
	o, ok := entity.(*offer)
	return ok && o != nil && s.managed[o.ID] == o
}

func (s *mockSession) Lock(_ context.Context, entity any, mode store.LockMode) error {
	if err := s.record("lock"); err != nil {
		return err
	}
	if mode != store.LockOptimisticForceIncrement {
		return errors.New("unsupported lock mode")
	}
	o := entity.(*offer)
	row, ok := s.rows[o.ID]
	if !ok || row.Version != o.Version {
		return daoerrors.NewConflictError("offer", o.ID, "stale version", nil)
	}
	row.Version++
	o.Version++
	return nil
}

func (s *mockSession) NewQuery(_ any) store.Query {
	return &mockQuery{sess: s}
}

type mockOrder struct {
	field string
	dir   types.Direction
}

type mockQuery struct {
	sess    *mockSession
	filters []*types.QueryFilter
	keys    map[int64]bool
	orders  []mockOrder
	limit   *int
	offset  int
	timeout time.Duration
}

func (q *mockQuery) Where(filter *types.QueryFilter) store.Query {
	if filter != nil {
		q.filters = append(q.filters, filter)
	}
	return q
}

func (q *mockQuery) WhereKeyIn(keys []any) store.Query {
	q.keys = map[int64]bool{}
	for _, k := range keys {
		q.keys[k.(int64)] = true
	}
	return q
}

func (q *mockQuery) OrderBy(field string, dir types.Direction) store.Query {
	q.orders = append(q.orders, mockOrder{field: field, dir: dir})
	return q
}

func (q *mockQuery) Limit(n int) store.Query {
	q.limit = &n
	return q
}

func (q *mockQuery) Offset(n int) store.Query {
	q.offset = n
	return q
}

func (q *mockQuery) Timeout(d time.Duration) store.Query {
	q.timeout = d
	return q
}

// matches understands "rank >= ?" and "name = ?".
func (q *mockQuery) matches(o *offer) bool {
	if q.keys != nil && !q.keys[o.ID] {
		return false
	}
	for _, f := range q.filters {
		switch f.Schema {
		case "rank >= ?":
			if o.Rank < f.Args[0].(int) {
				return false
			}
		case "name = ?":
			if o.Name != f.Args[0].(string) {
				return false
			}
		}
	}
	return true
}

func (q *mockQuery) selected() []*offer {
	var out []*offer
	for _, o := range q.sess.rows {
		if q.matches(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (q *mockQuery) checkTimeout(op string) error {
	if q.timeout > 0 && q.sess.queryLatency > q.timeout {
		return daoerrors.NewTimeoutError(op, q.timeout, context.DeadlineExceeded)
	}
	return nil
}

func (q *mockQuery) Execute(_ context.Context, dest any) error {
	if err := q.sess.record("execute"); err != nil {
		return err
	}
	if err := q.checkTimeout("select"); err != nil {
		return err
	}
	rows := q.selected()
	sort.SliceStable(rows, func(i, j int) bool {
		for _, o := range q.orders {
			a, b := sortValue(rows[i], o.field), sortValue(rows[j], o.field)
			if a == b {
				continue
			}
			if o.dir == types.DESC {
				return a > b
			}
			return a < b
		}
		return false
	})

	if q.offset >= len(rows) {
		rows = nil
	} else {
		rows = rows[q.offset:]
	}
	if q.limit != nil && *q.limit < len(rows) {
		rows = rows[:*q.limit]
	}

	out := dest.(*[]*offer)
	*out = (*out)[:0]
	for _, row := range rows {
		*out = append(*out, q.sess.track(row.clone()))
	}
	return nil
}

func (q *mockQuery) Count(_ context.Context) (int, error) {
	if err := q.sess.record("count"); err != nil {
		return 0, err
	}
	if err := q.checkTimeout("count"); err != nil {
		return 0, err
	}
	return len(q.selected()), nil
}

func sortValue(o *offer, field string) string {
	switch field {
	case "rank":
		return fmt.Sprintf("%010d", o.Rank)
	case "name":
		return o.Name
	default:
		return fmt.Sprintf("%020d", o.ID)
	}
}
