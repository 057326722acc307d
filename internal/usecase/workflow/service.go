package workflow

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/jsonidx/internal/db"
	"github.com/kailas-cloud/jsonidx/internal/domain"
	"github.com/kailas-cloud/jsonidx/internal/domain/activity"
	"github.com/kailas-cloud/jsonidx/internal/domain/aggregation"
	"github.com/kailas-cloud/jsonidx/internal/domain/query"
	"github.com/kailas-cloud/jsonidx/internal/domain/result"
	"github.com/kailas-cloud/jsonidx/internal/domain/schema"
	"github.com/kailas-cloud/jsonidx/internal/logger"
	"github.com/kailas-cloud/jsonidx/internal/metrics"
	"github.com/kailas-cloud/jsonidx/internal/repository/suggest"
	"github.com/kailas-cloud/jsonidx/internal/usecase/bulkload"
)

// Flags toggle the optional parts of a run.
type Flags struct {
	// Quantity of generated activities to load. Zero loads the two fixtures.
	Quantity      int
	// Limit caps each sample search. Nil means query.DefaultLimit; zero
	// returns only totals.
	Limit         *int
	Dialect       int
	SettleDelay   time.Duration
	SuggestTrials int
	BatchSize     int
	// Seed for the activity generator and suggestion prefixes. Zero picks one.
	Seed uint64
}

// Target names what a run operates on.
type Target struct {
	Definition schema.Definition
	Alias      string
	KeyPrefix  string
	Dictionary string
}

// DefaultTarget is the zoo events index.
func DefaultTarget() Target {
	return Target{
		Definition: schema.ZooEvents(),
		Alias:      schema.EventsAlias,
		KeyPrefix:  schema.EventsKeyPrefix,
		Dictionary: suggest.DefaultDictionary,
	}
}

// SearchOutcome is the result of one sample search.
type SearchOutcome struct {
	Name    string
	Request query.SearchRequest
	Page    result.Page
	Elapsed time.Duration
	Err     error
}

// AggregationOutcome is the result of the sample aggregation.
type AggregationOutcome struct {
	Request aggregation.Request
	Result  result.Aggregation
	Elapsed time.Duration
	Err     error
}

// SuggestOutcome is one autocomplete trial.
type SuggestOutcome struct {
	Prefix      string
	Suggestions []suggest.Suggestion
	Elapsed     time.Duration
	Err         error
}

// Outcome collects everything a run produced. Step failures that do not
// abort the run are recorded next to the step.
type Outcome struct {
	RunID       string
	Index       *db.IndexInfo
	IndexErr    error
	Load        bulkload.Report
	LoadErr     error
	Searches    []SearchOutcome
	Aggregation AggregationOutcome
	Suggestions []SuggestOutcome
}

// Service runs the end-to-end sequence: rebuild the index, load documents,
// query them and optionally exercise autocomplete.
type Service struct {
	target  Target
	index   IndexManager
	loader  Loader
	search  Searcher
	suggest Suggester
	keys    KeyDeleter
	clock   clockwork.Clock
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the clock used for the settle delay and timings.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithKeyDeleter makes fixture runs delete the fixture keys before
// writing them again.
func WithKeyDeleter(d KeyDeleter) Option {
	return func(s *Service) { s.keys = d }
}

// WithSuggester enables autocomplete trials.
func WithSuggester(sg Suggester) Option {
	return func(s *Service) { s.suggest = sg }
}

// New creates a workflow service.
func New(target Target, index IndexManager, loader Loader, search Searcher, opts ...Option) *Service {
	s := &Service{
		target: target,
		index:  index,
		loader: loader,
		search: search,
		clock:  clockwork.NewRealClock(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run executes one workflow. It returns an error only for invalid flags
// and fatal index failures; everything else is logged and recorded in the
// outcome while the run continues.
func (s *Service) Run(ctx context.Context, f Flags) (*Outcome, error) {
	dialect, err := query.ParseDialect(f.Dialect)
	if err != nil {
		return nil, &domain.ConfigurationError{Field: "dialect", Err: err}
	}
	limit := query.DefaultLimit
	if f.Limit != nil {
		limit = *f.Limit
	}
	if limit < 0 {
		return nil, &domain.ConfigurationError{Field: "limit", Err: domain.ErrInvalidLimit}
	}
	if f.Quantity < 0 {
		return nil, &domain.ConfigurationError{Field: "quantity", Err: fmt.Errorf("negative quantity %d", f.Quantity)}
	}

	ctx, runID := logger.StartRun(ctx)
	log := logger.FromContext(ctx)
	out := &Outcome{RunID: runID}

	seed := f.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rnd := rand.New(rand.NewPCG(seed, seed>>1|1))
	log.Info("workflow started",
		zap.Int("quantity", f.Quantity),
		zap.Int("limit", limit),
		zap.Int("dialect", int(dialect)),
		zap.Uint64("seed", seed),
	)

	if err := s.prepareIndex(ctx, out, f.SettleDelay); err != nil {
		return out, err
	}

	names := s.load(ctx, out, f, rnd)

	if err := s.query(ctx, out, limit, dialect); err != nil {
		return out, err
	}

	if s.suggest != nil && f.SuggestTrials > 0 {
		s.suggestTrials(ctx, out, names.list, f.SuggestTrials, rnd)
	}

	log.Info("workflow finished", zap.Int("documents", out.Load.Documents))
	return out, nil
}

func (s *Service) prepareIndex(ctx context.Context, out *Outcome, settle time.Duration) error {
	log := logger.FromContext(ctx)
	def := s.target.Definition

	if err := s.index.Recreate(ctx, def, s.target.Alias); err != nil {
		if domain.IsFatal(err) {
			log.Error("index rebuild failed", zap.String("index", def.Name), zap.Error(err))
			return err
		}
		log.Warn("index rebuild incomplete", zap.String("index", def.Name), zap.Error(err))
	}

	start := s.clock.Now()
	info, err := s.index.WaitReady(ctx, def.Name)
	metrics.IndexReadyWait.Observe(s.clock.Since(start).Seconds())
	out.Index = info
	if err != nil {
		out.IndexErr = err
		log.Warn("index not ready, continuing", zap.String("index", def.Name), zap.Error(err))
	}

	if settle > 0 {
		log.Debug("settling", zap.Duration("delay", settle))
		select {
		case <-s.clock.After(settle):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (s *Service) load(ctx context.Context, out *Outcome, f Flags, rnd *rand.Rand) *nameRecorder {
	log := logger.FromContext(ctx)

	var src bulkload.Source
	if f.Quantity == 0 {
		fixtures := bulkload.NewFixtureSource(s.target.KeyPrefix)
		s.clearKeys(ctx, fixtures.Keys())
		src = fixtures
	} else {
		src = bulkload.NewGeneratedSource(f.Quantity, s.target.KeyPrefix, activity.NewGenerator(rnd))
	}
	names := newNameRecorder(src)

	rep, err := s.loader.Load(ctx, names, f.BatchSize)
	out.Load = rep
	if err != nil {
		out.LoadErr = err
		log.Error("bulk load failed, querying what was written", zap.Error(err))
	}
	return names
}

// clearKeys deletes keys about to be rewritten. A failed delete is logged
// and the reload goes ahead.
func (s *Service) clearKeys(ctx context.Context, keys []string) {
	if s.keys == nil || len(keys) == 0 {
		return
	}
	n, err := s.keys.Del(ctx, keys...)
	if err != nil {
		logger.FromContext(ctx).Warn("clearing fixture keys failed", zap.Error(err))
		return
	}
	logger.FromContext(ctx).Debug("cleared fixture keys", zap.Int64("deleted", n))
}

// query runs the sample searches and the aggregation concurrently on the
// pooled handle. Request errors are recorded, not returned.
func (s *Service) query(ctx context.Context, out *Outcome, limit int, d query.Dialect) error {
	log := logger.FromContext(ctx)
	def := s.target.Definition

	searches, err := Searches(def, s.target.Alias, limit, d)
	if err != nil {
		log.Error("sample searches rejected", zap.Error(err))
	}
	agg, aggErr := PricedByLocation(def, s.target.Alias, d)

	out.Searches = make([]SearchOutcome, len(searches))
	out.Aggregation = AggregationOutcome{Request: agg, Err: aggErr}

	g, gctx := errgroup.WithContext(ctx)
	for i, ns := range searches {
		g.Go(func() error {
			start := s.clock.Now()
			page, err := s.search.Search(gctx, ns.Request)
			elapsed := s.clock.Since(start)
			metrics.ObserveQuery("search", elapsed, err)
			out.Searches[i] = SearchOutcome{Name: ns.Name, Request: ns.Request, Page: page, Elapsed: elapsed, Err: err}
			if err != nil {
				log.Warn("search failed", zap.String("name", ns.Name), zap.String("predicate", ns.Request.Predicate), zap.Error(err))
				return nil
			}
			log.Info("search",
				zap.String("name", ns.Name),
				zap.String("predicate", ns.Request.Predicate),
				zap.Int("total", page.Total),
				zap.Strings("keys", page.Keys()),
			)
			return nil
		})
	}
	if aggErr == nil {
		g.Go(func() error {
			start := s.clock.Now()
			res, err := s.search.Aggregate(gctx, agg)
			out.Aggregation.Elapsed = s.clock.Since(start)
			metrics.ObserveQuery("aggregate", out.Aggregation.Elapsed, err)
			out.Aggregation.Result = res
			out.Aggregation.Err = err
			if err != nil {
				log.Warn("aggregation failed", zap.String("predicate", agg.Predicate), zap.Error(err))
				return nil
			}
			log.Info("aggregation", zap.String("predicate", agg.Predicate), zap.Int("rows", len(res.Rows)))
			return nil
		})
	} else {
		log.Error("sample aggregation rejected", zap.Error(aggErr))
	}
	return g.Wait()
}

func (s *Service) suggestTrials(ctx context.Context, out *Outcome, names []string, trials int, rnd *rand.Rand) {
	log := logger.FromContext(ctx)
	dict := s.target.Dictionary

	if _, err := s.suggest.Populate(ctx, dict, names); err != nil {
		log.Warn("populating suggestions failed", zap.String("dict", dict), zap.Error(err))
	}
	if len(names) == 0 {
		return
	}

	out.Suggestions = make([]SuggestOutcome, 0, trials)
	for range trials {
		prefix := randomPrefix(names[rnd.IntN(len(names))], rnd)
		start := s.clock.Now()
		got, err := s.suggest.Get(ctx, dict, prefix, 5, true)
		elapsed := s.clock.Since(start)
		metrics.ObserveQuery("suggest", elapsed, err)
		if err != nil {
			log.Warn("suggestion lookup failed", zap.String("prefix", prefix), zap.Error(err))
		}
		out.Suggestions = append(out.Suggestions, SuggestOutcome{Prefix: prefix, Suggestions: got, Elapsed: elapsed, Err: err})
	}
}

// randomPrefix returns the first 2 to 4 runes of name.
func randomPrefix(name string, rnd *rand.Rand) string {
	runes := []rune(name)
	if len(runes) <= 2 {
		return name
	}
	n := 2 + rnd.IntN(min(len(runes), 4)-1)
	return string(runes[:n])
}

// nameRecorder passes items through and remembers distinct activity names.
type nameRecorder struct {
	src  bulkload.Source
	seen map[string]bool
	list []string
}

func newNameRecorder(src bulkload.Source) *nameRecorder {
	return &nameRecorder{src: src, seen: make(map[string]bool)}
}

func (r *nameRecorder) Next() (bulkload.Item, bool) {
	it, ok := r.src.Next()
	if !ok {
		return it, false
	}
	if a, isActivity := it.Doc.(activity.Activity); isActivity && !r.seen[a.Name] {
		r.seen[a.Name] = true
		r.list = append(r.list, a.Name)
	}
	return it, true
}

// Len forwards the size of the wrapped source when it has one.
func (r *nameRecorder) Len() int {
	if sz, ok := r.src.(bulkload.Sized); ok {
		return sz.Len()
	}
	return -1
}
