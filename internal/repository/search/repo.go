package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jsonidx/internal/db"
	"github.com/kailas-cloud/jsonidx/internal/domain/aggregation"
	"github.com/kailas-cloud/jsonidx/internal/domain/query"
	"github.com/kailas-cloud/jsonidx/internal/domain/result"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
	Aggregate(ctx context.Context, q *db.AggregateQuery) (*db.AggregateResult, error)
}

// Repo runs built search and aggregation requests against the pooled handle.
type Repo struct {
	store  store
	logger *zap.Logger
}

// Option configures a Repo.
type Option func(*Repo)

// WithLogger sets the repository logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Repo) { r.logger = l }
}

// New creates a search repository.
func New(s store, opts ...Option) *Repo {
	r := &Repo{store: s, logger: zap.NewNop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Search executes req and projects the hits according to its dialect.
func (r *Repo) Search(ctx context.Context, req query.SearchRequest) (result.Page, error) {
	q := toSearchQuery(req)

	sr, err := r.store.Search(ctx, q)
	if err != nil {
		return result.Page{}, fmt.Errorf("search %s: %w", req.Index, err)
	}

	page := NewProjector(req.Dialect, req.Projections...).Page(sr)
	r.logger.Debug("search",
		zap.String("index", req.Index),
		zap.String("predicate", req.Predicate),
		zap.Int("total", page.Total),
		zap.Int("returned", len(page.Documents)),
	)
	return page, nil
}

// Count returns the number of documents matching predicate without fetching any.
func (r *Repo) Count(ctx context.Context, index, predicate string, dialect query.Dialect) (int, error) {
	sr, err := r.store.Search(ctx, &db.SearchQuery{
		IndexName: index,
		Query:     predicate,
		NoContent: true,
		Limit:     0,
		Dialect:   int(dialect),
	})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", index, err)
	}
	return sr.Total, nil
}

// Aggregate executes req and returns its rows.
func (r *Repo) Aggregate(ctx context.Context, req aggregation.Request) (result.Aggregation, error) {
	ar, err := r.store.Aggregate(ctx, toAggregateQuery(req))
	if err != nil {
		return result.Aggregation{}, fmt.Errorf("aggregate %s: %w", req.Index, err)
	}

	agg := NewProjector(req.Dialect).Aggregation(ar)
	r.logger.Debug("aggregate",
		zap.String("index", req.Index),
		zap.String("predicate", req.Predicate),
		zap.Int("rows", len(agg.Rows)),
	)
	return agg, nil
}

func toSearchQuery(req query.SearchRequest) *db.SearchQuery {
	fields := make([]db.ReturnField, len(req.Projections))
	for i, p := range req.Projections {
		fields[i] = db.ReturnField{Path: p.Path, As: p.As}
	}
	return &db.SearchQuery{
		IndexName:    req.Index,
		Query:        req.Predicate,
		ReturnFields: fields,
		Offset:       req.Offset,
		Limit:        req.Limit,
		Dialect:      int(req.Dialect),
	}
}

func toAggregateQuery(req aggregation.Request) *db.AggregateQuery {
	reducers := make([]db.Reducer, len(req.Reducers))
	for i, red := range req.Reducers {
		var args []string
		if red.Field != "" {
			args = []string{"@" + red.Field}
		}
		reducers[i] = db.Reducer{Func: string(red.Func), Args: args, As: red.Alias()}
	}
	return &db.AggregateQuery{
		IndexName: req.Index,
		Query:     req.Predicate,
		GroupBy:   req.GroupBy,
		Reducers:  reducers,
		Filter:    req.PostFilter,
		Dialect:   int(req.Dialect),
	}
}
