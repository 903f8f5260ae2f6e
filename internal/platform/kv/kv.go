// Package kv defines the string key/value store the ledger persists into,
// with in-memory, PostgreSQL and MongoDB backends.
package kv

import (
	"context"
	"errors"
)

// ErrClosed is returned by backends used after Close.
var ErrClosed = errors.New("kv store closed")

// Entry is a single key/value pair written by SetMany.
type Entry struct {
	Key   string
	Value string
}

// Store is a flat string-keyed store. Reads must observe prior writes made
// through the same Store.
type Store interface {
	// Get returns the value for key. ok is false when the key has never been
	// written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// SetMany writes entries in order. Backends that can do so apply the
	// whole batch atomically.
	SetMany(ctx context.Context, entries []Entry) error
	Close(ctx context.Context) error
}

// Pinger is implemented by backends with a remote connection to check.
type Pinger interface {
	Ping(ctx context.Context) error
}
