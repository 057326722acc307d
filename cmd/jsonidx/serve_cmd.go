package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jsonidx/internal/metrics"
	indexrepo "github.com/kailas-cloud/jsonidx/internal/repository/index"
	searchrepo "github.com/kailas-cloud/jsonidx/internal/repository/search"
	suggestrepo "github.com/kailas-cloud/jsonidx/internal/repository/suggest"
	chiTransport "github.com/kailas-cloud/jsonidx/internal/transport/chi"
	healthuc "github.com/kailas-cloud/jsonidx/internal/usecase/health"
	"github.com/kailas-cloud/jsonidx/internal/version"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve search, aggregation and autocomplete over HTTP",
		RunE:  withSignalWatcher(a.serve),
	}
	cmd.Flags().Int("http-port", 0, "HTTP listen port; overrides http.port")
	return cmd
}

func (a *app) serve(ctx context.Context, cmd *cobra.Command, _ []string) error {
	cfg := a.cfg
	if cmd.Flags().Changed("http-port") {
		cfg.HTTP.Port, _ = cmd.Flags().GetInt("http-port")
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	a.log.Info("Starting jsonidx API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("redis_addr", cfg.Redis.Store().Addr()),
		zap.String("index", cfg.Index.Name),
	)

	store, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	metrics.RegisterStoreMetrics()

	indexRepo := indexrepo.New(store, indexrepo.WithLogger(a.log))
	searchRepo := searchrepo.New(store, searchrepo.WithLogger(a.log))
	server := chiTransport.NewServer(
		a.definition(), cfg.Index.Alias, cfg.Index.Dictionary,
		chiTransport.ObserveQueries(searchRepo),
		suggestrepo.New(store, a.log),
		indexRepo,
		healthuc.New(store, indexRepo, cfg.Index.Name),
		a.log,
	)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, a.log, cfg.HTTP.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.log.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		a.log.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("Error during shutdown", zap.Error(err))
		return err
	}

	a.log.Info("Server stopped gracefully")
	return nil
}
