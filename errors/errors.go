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

package errors

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors matched by the typed errors below via errors.Is.
var (
	// ErrNotFound is returned when a lookup requires presence and finds nothing.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidArgument is returned for malformed search criteria or arguments.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrTimeout is returned when a query exceeds its time budget.
	ErrTimeout = errors.New("query timeout")

	// ErrConflict is returned on optimistic-lock version mismatches.
	ErrConflict = errors.New("entity conflict detected")
)

// NotFoundError reports a missing entity of a given type and key.
type NotFoundError struct {
	Type string
	Key  any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %v not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError reports an invalid argument.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid argument %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid argument: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// TimeoutError wraps the store failure raised when a query ran out of time.
type TimeoutError struct {
	Operation string
	Timeout   time.Duration
	Err       error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("%s timed out", e.Operation)
	if e.Timeout > 0 {
		msg = fmt.Sprintf("%s after %s", msg, e.Timeout)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// ConflictError reports a concurrent modification detected by the store.
type ConflictError struct {
	Type   string
	Key    any
	Reason string
	Err    error
}

func (e *ConflictError) Error() string {
	msg := "conflict"
	if e.Type != "" {
		msg = fmt.Sprintf("conflict on %s with key %v", e.Type, e.Key)
	}
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

func (e *ConflictError) Unwrap() error { return e.Err }

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(entityType string, key any) error {
	return &NotFoundError{Type: entityType, Key: key}
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewTimeoutError creates a new TimeoutError wrapping cause.
func NewTimeoutError(operation string, timeout time.Duration, cause error) error {
	return &TimeoutError{Operation: operation, Timeout: timeout, Err: cause}
}

// NewConflictError creates a new ConflictError.
func NewConflictError(entityType string, key any, reason string, cause error) error {
	return &ConflictError{Type: entityType, Key: key, Reason: reason, Err: cause}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidArgument checks if an error is a validation error
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsConflict checks if an error is an optimistic-lock conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
