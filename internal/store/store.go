// Package store defines the document store port used by the API. Records
// are addressed by collection name and matched with flat equality filters.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by FindOne when no document matches.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidID is returned when an "_id" filter value is not a valid identifier.
	ErrInvalidID = errors.New("invalid document id")
	// ErrDuplicate is returned by Insert when a unique index rejects doc.
	ErrDuplicate = errors.New("duplicate document")
)

// Fields is an equality filter or a set of fields to write. A string value
// under "_id" is treated as the hex form of the store generated identifier.
type Fields map[string]any

type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
}

type Store interface {
	// Insert persists doc and returns its generated identifier.
	Insert(ctx context.Context, collection string, doc any) (string, error)
	// Find decodes up to limit matching documents into out, which must be a
	// pointer to a slice. A limit of zero means no limit.
	Find(ctx context.Context, collection string, filter Fields, limit int64, out any) error
	FindOne(ctx context.Context, collection string, filter Fields, out any) error
	// UpdateOne sets fields on the first matching document.
	UpdateOne(ctx context.Context, collection string, filter, set Fields) (UpdateResult, error)
	Ping(ctx context.Context) error
}
