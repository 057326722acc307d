package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jsonidx/internal/domain/activity"
	"github.com/kailas-cloud/jsonidx/internal/logger"
	"github.com/kailas-cloud/jsonidx/internal/metrics"
	indexrepo "github.com/kailas-cloud/jsonidx/internal/repository/index"
	searchrepo "github.com/kailas-cloud/jsonidx/internal/repository/search"
	suggestrepo "github.com/kailas-cloud/jsonidx/internal/repository/suggest"
	"github.com/kailas-cloud/jsonidx/internal/progress"
	"github.com/kailas-cloud/jsonidx/internal/usecase/bulkload"
	"github.com/kailas-cloud/jsonidx/internal/usecase/workflow"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Rebuild the index, load activities, run the sample queries",
		Example: `
	jsonidx run
	jsonidx run --quantity 5000 --limit 10 --dialect 3
	jsonidx run --addr redis.internal:6380 --user app --password secret --suggest-trials 3`,
		RunE: withSignalWatcher(a.run),
	}

	fs := cmd.Flags()
	fs.Int("quantity", 0, "number of generated activities to load; 0 loads the two fixtures")
	fs.Int("limit", 0, "maximum hits per sample search")
	fs.Int("dialect", 0, "query dialect: 1, 2 or 3")
	fs.Duration("sleep", 0, "settle delay between index readiness and loading")
	fs.Int("suggest-trials", 0, "number of autocomplete lookups to try after loading")
	fs.Int("batch-size", 0, "documents per pipelined write batch (max 200)")
	fs.Uint64("seed", 0, "seed for generated data; 0 picks one")
	fs.String("metrics-addr", "", "expose Prometheus metrics on this address while running")
	return cmd
}

// flags merges the run flags over the load section of the config.
func (a *app) flags(cmd *cobra.Command) workflow.Flags {
	l := a.cfg.Load
	f := workflow.Flags{
		Quantity:      l.Quantity,
		Limit:         l.Limit,
		Dialect:       l.Dialect,
		SettleDelay:   l.SettleDelay,
		SuggestTrials: l.SuggestTrials,
		BatchSize:     l.BatchSize,
		Seed:          l.Seed,
	}
	fs := cmd.Flags()
	if fs.Changed("quantity") {
		f.Quantity, _ = fs.GetInt("quantity")
	}
	if fs.Changed("limit") {
		limit, _ := fs.GetInt("limit")
		f.Limit = &limit
	}
	if fs.Changed("dialect") {
		f.Dialect, _ = fs.GetInt("dialect")
	}
	if fs.Changed("sleep") {
		f.SettleDelay, _ = fs.GetDuration("sleep")
	}
	if fs.Changed("suggest-trials") {
		f.SuggestTrials, _ = fs.GetInt("suggest-trials")
	}
	if fs.Changed("batch-size") {
		f.BatchSize, _ = fs.GetInt("batch-size")
	}
	if fs.Changed("seed") {
		f.Seed, _ = fs.GetUint64("seed")
	}
	return f
}

func (a *app) run(ctx context.Context, cmd *cobra.Command, _ []string) error {
	flags := a.flags(cmd)
	ctx = logger.ContextWithLogger(ctx, a.log)

	metrics.RegisterStoreMetrics()
	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		stop := serveMetrics(addr, a.log)
		defer stop()
	}

	store, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	total := flags.Quantity
	if total == 0 {
		total = len(activity.Fixtures())
	}
	bar := progress.NewDocumentsBar(total, "loading activities", os.Stderr)
	defer func() { _ = bar.Close() }()

	target := workflow.Target{
		Definition: a.definition(),
		Alias:      a.cfg.Index.Alias,
		KeyPrefix:  a.cfg.Index.KeyPrefix,
		Dictionary: a.cfg.Index.Dictionary,
	}
	wf := workflow.New(target,
		indexrepo.New(store,
			indexrepo.WithLogger(a.log),
			indexrepo.WithReadiness(a.cfg.Index.Readiness, a.cfg.Index.ReadyTimeout),
		),
		bulkload.New(store, bulkload.WithLogger(a.log), bulkload.WithProgressBar(bar)),
		searchrepo.New(store, searchrepo.WithLogger(a.log)),
		workflow.WithSuggester(suggestrepo.New(store, a.log)),
		workflow.WithKeyDeleter(store),
	)

	out, err := wf.Run(ctx, flags)
	if out != nil {
		printOutcome(out)
	}
	if err != nil {
		return err
	}
	if out.LoadErr != nil {
		pterm.Warning.Println("load incomplete: " + out.LoadErr.Error())
	}
	return nil
}

// serveMetrics exposes /metrics in the background and returns a stop func.
func serveMetrics(addr string, log *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server error", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
