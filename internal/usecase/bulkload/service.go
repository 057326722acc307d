package bulkload

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jsonidx/internal/db"
	"github.com/kailas-cloud/jsonidx/internal/domain"
	"github.com/kailas-cloud/jsonidx/internal/json"
	"github.com/kailas-cloud/jsonidx/internal/metrics"
	"github.com/kailas-cloud/jsonidx/internal/progress"
)

const (
	// MaxBatchSize is the largest number of commands pipelined in one round trip.
	MaxBatchSize = 200
	// DefaultBatchSize is used when Load is called with a zero batch size.
	DefaultBatchSize = MaxBatchSize
)

// Job describes how a load of Total documents is split.
type Job struct {
	Total     int
	BatchSize int
}

// Batches is the number of flushes the job performs. An empty job still
// performs one empty flush.
func (j Job) Batches() int {
	if j.Total <= 0 || j.BatchSize <= 0 {
		return 1
	}
	return (j.Total + j.BatchSize - 1) / j.BatchSize
}

// Sizes lists the size of every batch in order.
func (j Job) Sizes() []int {
	n := j.Batches()
	sizes := make([]int, n)
	left := max(j.Total, 0)
	for i := range sizes {
		sizes[i] = min(left, j.BatchSize)
		left -= sizes[i]
	}
	return sizes
}

// Report summarizes a completed load.
type Report struct {
	Documents int
	Batches   int
	Duration  time.Duration
}

// Service writes documents in sequential, pipelined batches. Each batch
// runs on its own exclusive session and is fully acknowledged before the
// next one is read from the source.
type Service struct {
	writer   SessionOpener
	logger   *zap.Logger
	clock    clockwork.Clock
	progress ProgressFunc
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock replaces the wall clock used for batch timing.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithProgress registers a callback invoked after every flush.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Service) { s.progress = fn }
}

// WithProgressBar advances bar by the size of every flushed batch.
func WithProgressBar(bar progress.Bar) Option {
	last := 0
	return WithProgress(func(_, flushed int) {
		_ = bar.Add(flushed - last)
		last = flushed
	})
}

// New creates a bulk load service.
func New(w SessionOpener, opts ...Option) *Service {
	s := &Service{
		writer: w,
		logger: zap.NewNop(),
		clock:  clockwork.NewRealClock(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load drains src in batches of batchSize (1..MaxBatchSize, 0 for the
// default). On failure the returned error is a *domain.WriteError and no
// further batches are issued.
func (s *Service) Load(ctx context.Context, src Source, batchSize int) (Report, error) {
	if batchSize == 0 {
		batchSize = DefaultBatchSize
	}
	if batchSize < 0 || batchSize > MaxBatchSize {
		return Report{}, fmt.Errorf("%w: %d not in 1..%d", domain.ErrInvalidBatchSize, batchSize, MaxBatchSize)
	}

	total := -1
	if sz, ok := src.(Sized); ok && sz.Len() >= 0 {
		total = sz.Len()
	}

	start := s.clock.Now()
	flushed := 0
	batch := 0

	for {
		items := nextChunk(src, batchSize)
		if len(items) == 0 && batch > 0 {
			break
		}
		batch++

		if err := ctx.Err(); err != nil {
			return Report{}, &domain.WriteError{Flushed: flushed, Batch: batch, FailedKeys: keysOf(items), Err: err}
		}

		if err := s.flush(ctx, items); err != nil {
			s.logger.Error("bulk batch failed",
				zap.Int("batch", batch),
				zap.Int("flushed", flushed),
				zap.Int("size", len(items)),
				zap.Error(err),
			)
			return Report{}, &domain.WriteError{Flushed: flushed, Batch: batch, FailedKeys: keysOf(items), Err: err}
		}
		flushed += len(items)

		remaining := -1
		if total >= 0 {
			remaining = total - flushed
		}
		s.logger.Debug("bulk batch flushed",
			zap.Int("batch", batch),
			zap.Int("size", len(items)),
			zap.Int("flushed", flushed),
			zap.Int("remaining", remaining),
		)
		if s.progress != nil {
			s.progress(remaining, flushed)
		}

		if len(items) < batchSize {
			break
		}
	}

	r := Report{Documents: flushed, Batches: batch, Duration: s.clock.Since(start)}
	s.logger.Info("bulk load complete",
		zap.Int("documents", r.Documents),
		zap.Int("batches", r.Batches),
		zap.Duration("duration", r.Duration),
	)
	return r, nil
}

// flush encodes items and writes them on one exclusive session. The
// session is released before flush returns.
func (s *Service) flush(ctx context.Context, items []Item) (err error) {
	start := s.clock.Now()
	defer func() { metrics.ObserveBatch(len(items), s.clock.Since(start), err) }()

	set := make([]db.JSONSetItem, len(items))
	for i, it := range items {
		data, err := json.Marshal(it.Doc)
		if err != nil {
			return fmt.Errorf("encode %s: %w", it.Key, err)
		}
		set[i] = db.JSONSetItem{Key: it.Key, Path: "$", Data: data}
	}

	sess, err := s.writer.WriteSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	return sess.JSONSetMulti(ctx, set)
}

func nextChunk(src Source, size int) []Item {
	items := make([]Item, 0, size)
	for len(items) < size {
		it, ok := src.Next()
		if !ok {
			break
		}
		items = append(items, it)
	}
	return items
}

func keysOf(items []Item) []string {
	if len(items) == 0 {
		return nil
	}
	keys := make([]string, len(items))
	for i, it := range items {
		keys[i] = it.Key
	}
	return keys
}
