package workflow

import (
	"context"

	"github.com/kailas-cloud/jsonidx/internal/db"
	"github.com/kailas-cloud/jsonidx/internal/domain/aggregation"
	"github.com/kailas-cloud/jsonidx/internal/domain/query"
	"github.com/kailas-cloud/jsonidx/internal/domain/result"
	"github.com/kailas-cloud/jsonidx/internal/domain/schema"
	"github.com/kailas-cloud/jsonidx/internal/repository/suggest"
	"github.com/kailas-cloud/jsonidx/internal/usecase/bulkload"
)

// IndexManager rebuilds the index and waits for it to catch up.
type IndexManager interface {
	Recreate(ctx context.Context, def schema.Definition, alias string) error
	WaitReady(ctx context.Context, name string) (*db.IndexInfo, error)
}

// Loader writes documents in batches.
type Loader interface {
	Load(ctx context.Context, src bulkload.Source, batchSize int) (bulkload.Report, error)
}

// KeyDeleter removes documents ahead of a reload.
type KeyDeleter interface {
	Del(ctx context.Context, keys ...string) (int64, error)
}

// Searcher runs built requests on the pooled handle.
type Searcher interface {
	Search(ctx context.Context, req query.SearchRequest) (result.Page, error)
	Aggregate(ctx context.Context, req aggregation.Request) (result.Aggregation, error)
}

// Suggester fills and queries the autocomplete dictionary.
type Suggester interface {
	Populate(ctx context.Context, dict string, terms []string) (int, error)
	Get(ctx context.Context, dict, prefix string, limit int, fuzzy bool) ([]suggest.Suggestion, error)
}
