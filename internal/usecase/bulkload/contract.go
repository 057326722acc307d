package bulkload

import (
	"context"

	"github.com/kailas-cloud/jsonidx/internal/db"
)

// SessionOpener hands out exclusive write sessions from the connection pool.
type SessionOpener interface {
	WriteSession(ctx context.Context) (db.WriteSession, error)
}

// Item is one document to upsert at the root path of Key.
type Item struct {
	Key string
	Doc any
}

// Source yields items lazily. Next returns false once exhausted.
type Source interface {
	Next() (Item, bool)
}

// Sized is implemented by sources that know their length up front. A
// negative length means unknown.
type Sized interface {
	Len() int
}

// ProgressFunc is called after every acknowledged batch. Remaining is -1
// when the source size is unknown.
type ProgressFunc func(remaining, flushed int)
