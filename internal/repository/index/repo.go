// Package index creates, drops, aliases and monitors FT indexes described by
// a schema.Definition.
package index

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jsonidx/internal/backoff"
	"github.com/kailas-cloud/jsonidx/internal/db"
	"github.com/kailas-cloud/jsonidx/internal/domain"
	"github.com/kailas-cloud/jsonidx/internal/domain/schema"
)

// store is the consumer interface for index management (ISP).
type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexInfo(ctx context.Context, name string) (*db.IndexInfo, error)
	ListIndexes(ctx context.Context) ([]string, error)
	AliasAdd(ctx context.Context, alias, index string) error
	AliasUpdate(ctx context.Context, alias, index string) error
	AliasDel(ctx context.Context, alias string) error
	DBSize(ctx context.Context) (int64, error)
}

// Default readiness polling: exponential from 50ms up to 1s between FT.INFO
// calls, giving up after DefaultReadyTimeout.
const (
	DefaultReadyTimeout = 30 * time.Second
	defaultPollInitial  = 50 * time.Millisecond
	defaultPollMax      = time.Second
)

var errNotReady = errors.New("index still indexing")

// Repo is the index schema builder.
type Repo struct {
	store        store
	logger       *zap.Logger
	clock        clockwork.Clock
	readiness    backoff.Provider
	readyTimeout time.Duration
}

// Option configures a Repo.
type Option func(*Repo)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Repo) { r.logger = l }
}

// WithClock replaces the wall clock used to measure readiness waits.
func WithClock(c clockwork.Clock) Option {
	return func(r *Repo) { r.clock = c }
}

// WithReadiness sets the FT.INFO polling policy and the overall bound.
func WithReadiness(cfg *backoff.Config, timeout time.Duration) Option {
	return func(r *Repo) {
		if cfg != nil {
			r.readiness = backoff.NewProvider(cfg)
		}
		if timeout > 0 {
			r.readyTimeout = timeout
		}
	}
}

// New creates an index repository.
func New(s store, opts ...Option) *Repo {
	r := &Repo{
		store:  s,
		logger: zap.NewNop(),
		clock:  clockwork.NewRealClock(),
		readiness: backoff.NewProvider(&backoff.Config{
			Exponential: &backoff.ExponentialConfig{
				InitialInterval: defaultPollInitial,
				MaxInterval:     defaultPollMax,
			},
		}),
		readyTimeout: DefaultReadyTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Build validates def and issues FT.CREATE. Validation failures are returned
// before any network call; store failures are fatal *domain.IndexError.
func (r *Repo) Build(ctx context.Context, def schema.Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	idx, err := ToIndexDefinition(def)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidSchema, err)
	}

	if err := r.store.CreateIndex(ctx, idx); err != nil {
		fields := []zap.Field{zap.String("index", def.Name), zap.Error(err)}
		if n, sizeErr := r.store.DBSize(ctx); sizeErr == nil {
			fields = append(fields, zap.Int64("db_keys", n))
		}
		r.logger.Error("index create failed", fields...)
		return &domain.IndexError{Op: "build", Index: def.Name, Fatal: true, Err: err}
	}
	r.logger.Info("index created",
		zap.String("index", def.Name),
		zap.Strings("prefixes", def.Prefixes),
		zap.Int("fields", len(def.Fields)),
	)
	return nil
}

// Drop removes the index, keeping documents. A missing index is not an error.
func (r *Repo) Drop(ctx context.Context, name string) error {
	err := r.store.DropIndex(ctx, name)
	switch {
	case err == nil:
		r.logger.Info("index dropped", zap.String("index", name))
		return nil
	case errors.Is(err, db.ErrIndexNotFound):
		r.logger.Warn("index not found, nothing to drop", zap.String("index", name))
		return nil
	default:
		return &domain.IndexError{Op: "drop", Index: name, Err: err}
	}
}

// Alias points alias at target, re-pointing it when it already exists.
// Alias names equal to a real index are refused.
func (r *Repo) Alias(ctx context.Context, alias, target string) error {
	names, err := r.store.ListIndexes(ctx)
	if err != nil {
		return &domain.IndexError{Op: "alias", Index: target, Fatal: true, Err: err}
	}
	if err := (schema.Alias{Name: alias, Target: target}).Validate(names); err != nil {
		return err
	}

	err = r.store.AliasAdd(ctx, alias, target)
	if errors.Is(err, db.ErrAliasExists) {
		r.logger.Debug("alias exists, re-pointing", zap.String("alias", alias), zap.String("index", target))
		err = r.store.AliasUpdate(ctx, alias, target)
	}
	if err != nil {
		return &domain.IndexError{Op: "alias", Index: target, Fatal: true, Err: err}
	}
	r.logger.Info("alias set", zap.String("alias", alias), zap.String("index", target))
	return nil
}

// RemoveAlias deletes alias. A missing alias is not an error.
func (r *Repo) RemoveAlias(ctx context.Context, alias string) error {
	err := r.store.AliasDel(ctx, alias)
	if err == nil || errors.Is(err, db.ErrAliasNotFound) {
		return nil
	}
	return &domain.IndexError{Op: "alias", Index: alias, Err: err}
}

// Recreate drops, builds and (when alias is set) aliases the index. Drop
// failures are logged and do not stop the rebuild.
func (r *Repo) Recreate(ctx context.Context, def schema.Definition, alias string) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if err := r.Drop(ctx, def.Name); err != nil {
		r.logger.Warn("drop before rebuild failed", zap.String("index", def.Name), zap.Error(err))
	}
	if err := r.Build(ctx, def); err != nil {
		return err
	}
	if alias == "" {
		return nil
	}
	return r.Alias(ctx, alias, def.Name)
}

// Info returns document count and indexing progress.
func (r *Repo) Info(ctx context.Context, name string) (*db.IndexInfo, error) {
	info, err := r.store.IndexInfo(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("index info %s: %w", name, err)
	}
	return info, nil
}

// KeyCount returns the number of keys in the selected database, indexed or not.
func (r *Repo) KeyCount(ctx context.Context) (int64, error) {
	n, err := r.store.DBSize(ctx)
	if err != nil {
		return 0, fmt.Errorf("key count: %w", err)
	}
	return n, nil
}

// WaitReady polls FT.INFO until background indexing is complete or the
// readiness timeout expires, in which case it returns
// *domain.IndexNotReadyError.
func (r *Repo) WaitReady(ctx context.Context, name string) (*db.IndexInfo, error) {
	start := r.clock.Now()
	ctx, cancel := context.WithTimeout(ctx, r.readyTimeout)
	defer cancel()

	var last *db.IndexInfo
	op := func() error {
		info, err := r.store.IndexInfo(ctx, name)
		if err != nil {
			if errors.Is(err, db.ErrIndexNotFound) {
				return fmt.Errorf("%w: %w", err, backoff.ErrPermanent)
			}
			return err
		}
		last = info
		if !info.Ready() {
			return errNotReady
		}
		return nil
	}
	notify := func(err error, next time.Duration) {
		fields := []zap.Field{zap.String("index", name), zap.Duration("retry_in", next), zap.Error(err)}
		if last != nil {
			fields = append(fields, zap.Float64("percent_indexed", last.PercentIndexed))
		}
		r.logger.Debug("waiting for index", fields...)
	}

	if err := r.readiness(ctx).RetryNotify(op, notify); err != nil {
		nr := &domain.IndexNotReadyError{Index: name, Waited: r.clock.Since(start), Err: err}
		if last != nil {
			nr.PercentIndexed = last.PercentIndexed
		}
		return nil, nr
	}

	r.logger.Info("index ready",
		zap.String("index", name),
		zap.Int64("num_docs", last.NumDocs),
		zap.Duration("waited", r.clock.Since(start)),
	)
	return last, nil
}

// ToIndexDefinition converts a validated schema definition into the FT.CREATE
// definition understood by the store.
func ToIndexDefinition(def schema.Definition) (*db.IndexDefinition, error) {
	b := db.NewIndex(def.Name).OnJSON().Prefix(def.Prefixes...)
	for _, f := range def.Fields {
		b.Field(db.IndexField{
			Name:         f.Path,
			Alias:        f.Alias,
			Type:         fieldType(f.Kind),
			Sortable:     f.Sortable,
			Weight:       f.Weight,
			Phonetic:     f.Phonetic,
			TagSeparator: f.Separator,
		})
	}
	return b.Build()
}

func fieldType(k schema.FieldKind) db.IndexFieldType {
	switch k {
	case schema.Numeric:
		return db.IndexFieldNumeric
	case schema.Tag:
		return db.IndexFieldTag
	default:
		return db.IndexFieldText
	}
}
