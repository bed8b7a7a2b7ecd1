// Package store defines the position table that joystick clients mirror
// their history into, plus an in-memory implementation of it.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable marks failures to reach the store at all, as opposed to
// a request it rejected.
var ErrUnavailable = errors.New("store unavailable")

// Record is one stored position. ID increases with every insert.
type Record struct {
	ID        int64
	X, Y      int
	ClientID  string
	CreatedAt time.Time
}

// Store is the table contract a position store must provide.
type Store interface {
	// Insert stores one position; the store assigns ID and CreatedAt.
	Insert(ctx context.Context, x, y int, clientID string) (Record, error)
	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)
	// DeleteBelow removes every record with ID < id.
	DeleteBelow(ctx context.Context, id int64) (int, error)
	Count(ctx context.Context) (int, error)
}

type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeDelete ChangeKind = "delete"
)

// Change is a notification about one record.
type Change struct {
	Kind   ChangeKind
	Record Record
}

// Watcher is implemented by stores that can push changes. The returned
// channel is closed once ctx is done or the feed breaks.
type Watcher interface {
	Watch(ctx context.Context) (<-chan Change, error)
}

// Retain keeps the newest keep records given the record just inserted.
// IDs are monotonic, so everything below latest.ID-keep+1 is older.
func Retain(ctx context.Context, s Store, latest Record, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	threshold := latest.ID - int64(keep) + 1
	if threshold <= 1 {
		return 0, nil
	}
	return s.DeleteBelow(ctx, threshold)
}
