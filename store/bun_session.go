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
	"database/sql"
	"errors"
	"fmt"
	"reflect"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"

	daoerrors "github.com/tomoncle/daokit/errors"
	"github.com/tomoncle/daokit/types"
	"github.com/tomoncle/daokit/utils"
)

const defaultVersionColumn = "version"

// BunSession implements Session on top of a bun.IDB, which is either a
// *bun.DB or a bun.Tx owned by the caller.
type BunSession struct {
	db            bun.IDB
	versionColumn string
	log           *logrus.Logger
	tracked       *identityMap
}

var _ Session = (*BunSession)(nil)

// SessionOption configures a BunSession.
type SessionOption func(*BunSession)

// WithVersionColumn sets the column used for optimistic locking of
// types.Versioned entities. The default is "version".
func WithVersionColumn(column string) SessionOption {
	return func(s *BunSession) { s.versionColumn = column }
}

// WithSessionLogger replaces the default STORE logger.
func WithSessionLogger(l *logrus.Logger) SessionOption {
	return func(s *BunSession) { s.log = l }
}

// NewBunSession opens a session over db. Pass a bun.Tx to make every
// operation of the session part of the caller's transaction.
func NewBunSession(db bun.IDB, opts ...SessionOption) *BunSession {
	s := &BunSession{
		db:            db,
		versionColumn: defaultVersionColumn,
		tracked:       newIdentityMap(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = utils.GetLogger("STORE")
	}
	return s
}

// DB returns the underlying bun handle.
func (s *BunSession) DB() bun.IDB { return s.db }

func (s *BunSession) Find(ctx context.Context, dest any, id any) (any, error) {
	typ, err := structType(dest)
	if err != nil {
		return nil, err
	}
	if managed := s.tracked.lookup(typ, id); managed != nil {
		return managed, nil
	}
	err = s.db.NewSelect().Model(dest).Where("?PKs = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, s.translate(err, "find", typ.Name(), id, 0)
	}
	return s.attach(dest)
}

func (s *BunSession) Insert(ctx context.Context, entity any) error {
	typ, err := structType(entity)
	if err != nil {
		return err
	}
	if _, err := s.db.NewInsert().Model(entity).Exec(ctx); err != nil {
		return s.translate(err, "insert", typ.Name(), nil, 0)
	}
	_, err = s.attach(entity)
	return err
}

func (s *BunSession) Merge(ctx context.Context, entity any) (any, error) {
	typ, key, err := s.keyOf(entity)
	if err != nil {
		return nil, err
	}
	q := s.db.NewUpdate().Model(entity).WherePK()
	versioned, isVersioned := entity.(types.Versioned)
	var previous int64
	if isVersioned {
		previous = versioned.GetVersion()
		versioned.SetVersion(previous + 1)
		q = q.Where("? = ?", bun.Ident(s.versionColumn), previous)
	}
	res, err := q.Exec(ctx)
	if err != nil {
		if isVersioned {
			versioned.SetVersion(previous)
		}
		return nil, s.translate(err, "update", typ.Name(), key, 0)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if isVersioned {
			versioned.SetVersion(previous)
			s.log.WithFields(logrus.Fields{"entity": typ.Name(), "id": key, "version": previous}).Debug("stale version on update")
			return nil, daoerrors.NewConflictError(typ.Name(), key, fmt.Sprintf("version %d is stale", previous), nil)
		}
		return nil, daoerrors.NewNotFoundError(typ.Name(), key)
	}
	return s.attach(entity)
}

func (s *BunSession) Remove(ctx context.Context, entity any) error {
	typ, key, err := s.keyOf(entity)
	if err != nil {
		return err
	}
	managed := s.tracked.contains(entity)
	q := s.db.NewDelete().Model(entity).WherePK()
	versioned, isVersioned := entity.(types.Versioned)
	checkVersion := isVersioned && managed
	if checkVersion {
		q = q.Where("? = ?", bun.Ident(s.versionColumn), versioned.GetVersion())
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return s.translate(err, "delete", typ.Name(), key, 0)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if checkVersion {
			return daoerrors.NewConflictError(typ.Name(), key, fmt.Sprintf("version %d is stale", versioned.GetVersion()), nil)
		}
		return daoerrors.NewNotFoundError(typ.Name(), key)
	}
	s.tracked.forget(typ, key)
	return nil
}

func (s *BunSession) Reference(model any, id any) (any, error) {
	typ, err := structType(model)
	if err != nil {
		return nil, err
	}
	if managed := s.tracked.lookup(typ, id); managed != nil {
		return managed, nil
	}
	pk, err := s.primaryKey(typ)
	if err != nil {
		return nil, err
	}
	ref := reflect.New(typ)
	if err := assignKey(pk, ref.Elem(), id); err != nil {
		return nil, fmt.Errorf("reference %s: %w", typ.Name(), err)
	}
	return ref.Interface(), nil
}

func (s *BunSession) Contains(entity any) bool {
	return s.tracked.contains(entity)
}

func (s *BunSession) Lock(ctx context.Context, entity any, mode LockMode) error {
	if mode != LockOptimisticForceIncrement {
		return daoerrors.NewValidationError("mode", fmt.Sprintf("unsupported lock mode %s", mode))
	}
	typ, key, err := s.keyOf(entity)
	if err != nil {
		return err
	}
	versioned, ok := entity.(types.Versioned)
	if !ok {
		return daoerrors.NewValidationError("entity", fmt.Sprintf("%s does not carry a version", typ.Name()))
	}
	previous := versioned.GetVersion()
	col := bun.Ident(s.versionColumn)
	res, err := s.db.NewUpdate().
		Model(entity).
		Set("? = ? + 1", col, col).
		WherePK().
		Where("? = ?", col, previous).
		Exec(ctx)
	if err != nil {
		return s.translate(err, "lock", typ.Name(), key, 0)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return daoerrors.NewConflictError(typ.Name(), key, fmt.Sprintf("version %d is stale", previous), nil)
	}
	versioned.SetVersion(previous + 1)
	return nil
}

func (s *BunSession) NewQuery(model any) Query {
	return &bunQuery{sess: s, model: model}
}

// attach tracks entity. When another instance with the same key is already
// tracked, the state of entity is copied into it and that instance is
// returned instead.
func (s *BunSession) attach(entity any) (any, error) {
	typ, key, err := s.keyOf(entity)
	if err != nil {
		return nil, err
	}
	return s.tracked.put(typ, key, entity), nil
}

func (s *BunSession) primaryKey(typ reflect.Type) (*schema.Field, error) {
	table := s.db.Dialect().Tables().Get(typ)
	if len(table.PKs) != 1 {
		return nil, fmt.Errorf("%s must have exactly one primary key, has %d", typ.Name(), len(table.PKs))
	}
	return table.PKs[0], nil
}

func (s *BunSession) keyOf(entity any) (reflect.Type, any, error) {
	typ, err := structType(entity)
	if err != nil {
		return nil, nil, err
	}
	pk, err := s.primaryKey(typ)
	if err != nil {
		return nil, nil, err
	}
	return typ, pk.Value(reflect.ValueOf(entity).Elem()).Interface(), nil
}

func structType(v any) (reflect.Type, error) {
	typ := reflect.TypeOf(v)
	if typ == nil || typ.Kind() != reflect.Pointer || typ.Elem().Kind() != reflect.Struct {
		return nil, daoerrors.NewValidationError("entity", fmt.Sprintf("expected a pointer to a struct, got %T", v))
	}
	return typ.Elem(), nil
}

func assignKey(pk *schema.Field, strct reflect.Value, id any) error {
	field := pk.Value(strct)
	idv := reflect.ValueOf(id)
	switch {
	case !idv.IsValid():
		return fmt.Errorf("key must not be nil")
	case idv.Type().AssignableTo(field.Type()):
		field.Set(idv)
	case sameKindFamily(idv.Kind(), field.Kind()) && idv.Type().ConvertibleTo(field.Type()):
		field.Set(idv.Convert(field.Type()))
	default:
		return pk.ScanValue(strct, id)
	}
	return nil
}

func sameKindFamily(a, b reflect.Kind) bool {
	if a == b {
		return true
	}
	return isInteger(a) && isInteger(b)
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
