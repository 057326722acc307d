package jsonidx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jsonidx/internal/backoff"
	"github.com/kailas-cloud/jsonidx/internal/db"
	dbRedis "github.com/kailas-cloud/jsonidx/internal/db/redis"
	"github.com/kailas-cloud/jsonidx/internal/domain"
	"github.com/kailas-cloud/jsonidx/internal/domain/aggregation"
	"github.com/kailas-cloud/jsonidx/internal/domain/query"
	"github.com/kailas-cloud/jsonidx/internal/domain/result"
	"github.com/kailas-cloud/jsonidx/internal/domain/schema"
	indexrepo "github.com/kailas-cloud/jsonidx/internal/repository/index"
	searchrepo "github.com/kailas-cloud/jsonidx/internal/repository/search"
	suggestrepo "github.com/kailas-cloud/jsonidx/internal/repository/suggest"
	"github.com/kailas-cloud/jsonidx/internal/usecase/bulkload"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces so tests can substitute the store-backed services.
type indexManager interface {
	Recreate(ctx context.Context, def schema.Definition, alias string) error
	Drop(ctx context.Context, name string) error
	WaitReady(ctx context.Context, name string) (*db.IndexInfo, error)
	Info(ctx context.Context, name string) (*db.IndexInfo, error)
}

type searcher interface {
	Search(ctx context.Context, req query.SearchRequest) (result.Page, error)
	Aggregate(ctx context.Context, req aggregation.Request) (result.Aggregation, error)
	Count(ctx context.Context, index, predicate string, dialect query.Dialect) (int, error)
}

type loader interface {
	Load(ctx context.Context, src bulkload.Source, batchSize int) (bulkload.Report, error)
}

type suggester interface {
	Populate(ctx context.Context, dict string, terms []string) (int, error)
	Get(ctx context.Context, dict, prefix string, limit int, fuzzy bool) ([]suggestrepo.Suggestion, error)
}

type conn interface {
	Ping(ctx context.Context) error
	Close()
}

// Client is the jsonidx entry point. It is safe for concurrent use.
type Client struct {
	conn      conn
	index     indexManager
	search    searcher
	loader    loader
	suggest   suggester
	batchSize int
}

// New connects to Redis and waits until it answers.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		port:             6379,
		readinessTimeout: defaultReadinessTimeout,
		logger:           zap.NewNop(),
	}
	for _, o := range opts {
		o(cfg)
	}

	if cfg.host == "" {
		return nil, &domain.ConfigurationError{Field: "host", Err: errors.New("jsonidx: redis host required (use WithRedis)")}
	}
	if cfg.batchSize < 0 || cfg.batchSize > bulkload.MaxBatchSize {
		return nil, &domain.ConfigurationError{Field: "batch_size", Err: domain.ErrInvalidBatchSize}
	}

	if cfg.connectTimeout < 0 || cfg.requestTimeout < 0 {
		return nil, &domain.ConfigurationError{Field: "timeouts", Err: errors.New("jsonidx: timeouts must not be negative")}
	}

	store, err := dbRedis.NewStore(cfg.storeConfig())
	if err != nil {
		return nil, &domain.ConfigurationError{Field: "redis", Err: err}
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("jsonidx: redis not ready: %w", err)
	}

	return wireClient(store, cfg), nil
}

func wireClient(store *dbRedis.Store, cfg *clientConfig) *Client {
	idxOpts := []indexrepo.Option{indexrepo.WithLogger(cfg.logger)}
	if cfg.indexTimeout > 0 {
		idxOpts = append(idxOpts, indexrepo.WithReadiness(&backoff.Config{
			Exponential: &backoff.ExponentialConfig{
				InitialInterval: 50 * time.Millisecond,
				MaxInterval:     time.Second,
			},
		}, cfg.indexTimeout))
	}

	return &Client{
		conn:      store,
		index:     indexrepo.New(store, idxOpts...),
		search:    searchrepo.New(store, searchrepo.WithLogger(cfg.logger)),
		loader:    bulkload.New(store, bulkload.WithLogger(cfg.logger)),
		suggest:   suggestrepo.New(store, cfg.logger),
		batchSize: cfg.batchSize,
	}
}

// Close releases all connections.
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// Ping checks connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.conn.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// RecreateIndex drops def (keeping documents), builds it again and, when
// alias is set, points alias at it.
func (c *Client) RecreateIndex(ctx context.Context, def Definition, alias string) error {
	return c.index.Recreate(ctx, def, alias)
}

// DropIndex drops the index. Documents are kept.
func (c *Client) DropIndex(ctx context.Context, name string) error {
	return c.index.Drop(ctx, name)
}

// WaitReady blocks until background indexing of name has finished.
func (c *Client) WaitReady(ctx context.Context, name string) (*IndexInfo, error) {
	return c.index.WaitReady(ctx, name)
}

// IndexInfo returns document count and indexing progress.
func (c *Client) IndexInfo(ctx context.Context, name string) (*IndexInfo, error) {
	return c.index.Info(ctx, name)
}

// Load writes items as JSON documents in pipelined batches.
func (c *Client) Load(ctx context.Context, items []Item) (LoadReport, error) {
	return c.loader.Load(ctx, bulkload.NewSliceSource(items), c.batchSize)
}

// Search runs a built search request.
func (c *Client) Search(ctx context.Context, req SearchRequest) (Page, error) {
	return c.search.Search(ctx, req)
}

// Count returns how many documents in index match predicate.
func (c *Client) Count(ctx context.Context, index, predicate string) (int, error) {
	return c.search.Count(ctx, index, predicate, query.DefaultDialect)
}

// Aggregate runs a built aggregation request.
func (c *Client) Aggregate(ctx context.Context, req AggregateRequest) (Aggregation, error) {
	return c.search.Aggregate(ctx, req)
}

// AddSuggestions adds terms to an autocomplete dictionary and returns how
// many were written.
func (c *Client) AddSuggestions(ctx context.Context, dict string, terms ...string) (int, error) {
	return c.suggest.Populate(ctx, dict, terms)
}

// Suggest returns up to limit completions of prefix.
func (c *Client) Suggest(ctx context.Context, dict, prefix string, limit int, fuzzy bool) ([]Suggestion, error) {
	return c.suggest.Get(ctx, dict, prefix, limit, fuzzy)
}
