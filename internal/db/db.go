package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // consumers depend on the narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	JSONStore
	KVStore
	IndexManager
	Searcher
	Suggester
	SessionOpener
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JSONSetItem holds a single key+path+data triple for pipelined JSON.SET.
type JSONSetItem struct {
	Key  string
	Path string
	Data []byte
}

// JSONStore provides JSON document operations over the shared pooled handle.
type JSONStore interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
}

// KVStore provides keyspace operations.
type KVStore interface {
	Del(ctx context.Context, keys ...string) (int64, error)
	DBSize(ctx context.Context) (int64, error)
}

// IndexManager provides FT index and alias lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexInfo(ctx context.Context, name string) (*IndexInfo, error)
	ListIndexes(ctx context.Context) ([]string, error)
	AliasAdd(ctx context.Context, alias, index string) error
	AliasUpdate(ctx context.Context, alias, index string) error
	AliasDel(ctx context.Context, alias string) error
}

// Searcher provides search and aggregation over FT indexes.
type Searcher interface {
	Search(ctx context.Context, q *SearchQuery) (*SearchResult, error)
	Aggregate(ctx context.Context, q *AggregateQuery) (*AggregateResult, error)
}

// Suggester provides autocomplete dictionary operations.
type Suggester interface {
	SugAdd(ctx context.Context, dict, term string, score float64, incr bool) error
	SugGet(ctx context.Context, dict, prefix string, limit int, fuzzy bool) ([]Suggestion, error)
}

// SessionOpener hands out exclusive, scoped write sessions.
type SessionOpener interface {
	WriteSession(ctx context.Context) (WriteSession, error)
}

// WriteSession is an exclusive connection used for pipelined writes.
// Close releases it back to the pool and must always be called.
type WriteSession interface {
	JSONSetMulti(ctx context.Context, items []JSONSetItem) error
	Close()
}
