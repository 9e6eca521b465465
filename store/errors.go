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
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tomoncle/daokit/database"
	daoerrors "github.com/tomoncle/daokit/errors"
)

// translate maps driver and context errors onto the errors package.
// Cancellation by the caller is returned unchanged.
func (s *BunSession) translate(err error, op, typeName string, key any, timeout time.Duration) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		s.log.WithFields(logrus.Fields{"entity": typeName, "op": op, "timeout": timeout}).Warn("query timed out")
		return daoerrors.NewTimeoutError(op, timeout, err)
	}

	is, kind := database.IsSqlError(err)
	switch {
	case is && kind.IsTimeout():
		s.log.WithFields(logrus.Fields{"entity": typeName, "op": op, "timeout": timeout}).Warn("query canceled by the database")
		return daoerrors.NewTimeoutError(op, timeout, err)
	case is && kind.IsConflict():
		return daoerrors.NewConflictError(typeName, key, "concurrent transaction", err)
	}
	return fmt.Errorf("%s %s: %w", op, typeName, err)
}
