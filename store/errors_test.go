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
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	daoerrors "github.com/tomoncle/daokit/errors"
)

func TestTranslate(t *testing.T) {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	s := &BunSession{log: quiet}
	plain := errors.New("syntax error")

	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"deadline", fmt.Errorf("scan: %w", context.DeadlineExceeded), daoerrors.IsTimeout},
		{"pq query canceled", &pq.Error{Code: "57014"}, daoerrors.IsTimeout},
		{"mysql max execution time", &mysql.MySQLError{Number: 3024}, daoerrors.IsTimeout},
		{"mysql lock wait", &mysql.MySQLError{Number: 1205}, daoerrors.IsTimeout},
		{"sqlite interrupted", errors.New("interrupted (9)"), daoerrors.IsTimeout},
		{"pq serialization", &pq.Error{Code: "40001"}, daoerrors.IsConflict},
		{"mysql deadlock", &mysql.MySQLError{Number: 1213}, daoerrors.IsConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.translate(tt.err, "select", "Offer", nil, time.Second)
			assert.True(t, tt.check(got), "got %v", got)
			assert.ErrorIs(t, got, tt.err)
		})
	}

	assert.Same(t, context.Canceled, s.translate(context.Canceled, "select", "Offer", nil, 0))
	assert.NoError(t, s.translate(nil, "select", "Offer", nil, 0))

	wrapped := s.translate(plain, "insert", "Offer", nil, 0)
	assert.ErrorIs(t, wrapped, plain)
	assert.EqualError(t, wrapped, "insert Offer: syntax error")
}
