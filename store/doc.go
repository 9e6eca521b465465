// Package store defines the unit-of-work Session and Query abstractions used
// by repositories, and implements them on top of Bun with an identity map and
// optimistic locking through a version column.
package store
