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

package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
)

var bunSqlSilentMode atomic.Bool

// EnableBunSqlSilent mutes both query hooks.
func EnableBunSqlSilent(b bool) {
	bunSqlSilentMode.Store(b)
}

// QueryLogHook logs every statement at debug level, coloured by operation.
// Failed statements are logged at warn level; sql.ErrNoRows is not a failure.
type QueryLogHook struct {
	log *logrus.Logger
}

var _ bun.QueryHook = (*QueryLogHook)(nil)

func NewQueryLogHook(log *logrus.Logger) *QueryLogHook {
	return &QueryLogHook{log: log}
}

func (h *QueryLogHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryLogHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if bunSqlSilentMode.Load() {
		return
	}
	entry := h.log.WithFields(logrus.Fields{
		"operation": event.Operation(),
		"duration":  time.Since(event.StartTime).Round(time.Microsecond),
	})
	switch {
	case event.Err == nil, errors.Is(event.Err, sql.ErrNoRows), errors.Is(event.Err, sql.ErrTxDone):
		entry.Debug(operationColor(event.Operation()).Sprint(event.Query))
	default:
		entry.WithError(event.Err).Warn(color.New(color.BgRed).Sprint(event.Query))
	}
}

func operationColor(operation string) *color.Color {
	switch operation {
	case "SELECT":
		return color.New(color.FgGreen)
	case "INSERT":
		return color.New(color.FgBlue)
	case "UPDATE":
		return color.New(color.FgYellow)
	case "DELETE":
		return color.New(color.FgMagenta)
	default:
		return color.New(color.FgRed)
	}
}

// SlowQueryHook warns about successful statements slower than the threshold.
// Setting BUN_SLOW_QUERY=0 in the environment disables it.
type SlowQueryHook struct {
	slowTime time.Duration
	log      *logrus.Logger
}

var _ bun.QueryHook = (*SlowQueryHook)(nil)

func NewSlowQueryHook(slowTime time.Duration, log *logrus.Logger) *SlowQueryHook {
	return &SlowQueryHook{slowTime: slowTime, log: log}
}

func (h *SlowQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *SlowQueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if bunSqlSilentMode.Load() || event.Err != nil || os.Getenv("BUN_SLOW_QUERY") == "0" {
		return
	}
	duration := time.Since(event.StartTime)
	if duration <= h.slowTime {
		return
	}
	h.log.WithFields(logrus.Fields{
		"duration":       duration.Round(time.Microsecond),
		"slow_threshold": h.slowTime,
		"query":          event.Query,
	}).Warn(color.New(color.FgYellow, color.BlinkSlow).Sprint("database slow query detected"))
}
