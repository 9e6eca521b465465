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
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type options struct {
	log      *logrus.Logger
	keyGen   func() any
	newCheck func(entity any) bool
}

type Option func(*options)

// WithLogger replaces the default REPOSITORY logger.
func WithLogger(l *logrus.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithKeyGenerator assigns keys to new entities before insert. Without a
// generator the store is expected to produce the key.
func WithKeyGenerator[ID comparable](gen func() ID) Option {
	return func(o *options) {
		o.keyGen = func() any { return gen() }
	}
}

// UUIDKeys generates random uuid.UUID keys.
func UUIDKeys() Option {
	return WithKeyGenerator(uuid.New)
}

// UUIDStringKeys generates random UUID keys in their string form.
func UUIDStringKeys() Option {
	return WithKeyGenerator(func() string { return uuid.NewString() })
}

// WithNewEntityCheck overrides how Save tells new entities from existing
// ones. The default treats a zero key as new.
func WithNewEntityCheck(isNew func(entity any) bool) Option {
	return func(o *options) { o.newCheck = isNew }
}
