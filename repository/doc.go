// Package repository provides a generic repository over a store.Session for
// CRUD operations, existence checks, batch save and delete, optimistic lock
// control and paginated, sorted, time-bounded search.
package repository
