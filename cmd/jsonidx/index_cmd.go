package main

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	indexrepo "github.com/kailas-cloud/jsonidx/internal/repository/index"
)

func newIndexCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the search index",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "recreate",
		Short: "Drop and rebuild the index, point the alias at it and wait until it is ready",
		RunE: withSignalWatcher(func(ctx context.Context, _ *cobra.Command, _ []string) error {
			repo, closeFn, err := a.indexRepo(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			sp, _ := pterm.DefaultSpinner.WithText("rebuilding " + a.cfg.Index.Name + "...").Start()
			if err := repo.Recreate(ctx, a.definition(), a.cfg.Index.Alias); err != nil {
				sp.Fail(err.Error())
				return err
			}
			info, err := repo.WaitReady(ctx, a.cfg.Index.Name)
			if err != nil {
				sp.Warning(err.Error())
				return err
			}
			sp.Success("index " + a.cfg.Index.Name + " ready")
			printIndexInfo(info, nil)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "drop",
		Short: "Remove the alias and drop the index; documents are kept",
		RunE: withSignalWatcher(func(ctx context.Context, _ *cobra.Command, _ []string) error {
			repo, closeFn, err := a.indexRepo(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			sp, _ := pterm.DefaultSpinner.WithText("dropping " + a.cfg.Index.Name + "...").Start()
			if err := repo.RemoveAlias(ctx, a.cfg.Index.Alias); err != nil {
				a.log.Debug("alias not removed", zap.String("alias", a.cfg.Index.Alias), zap.Error(err))
			}
			if err := repo.Drop(ctx, a.cfg.Index.Name); err != nil {
				sp.Fail(err.Error())
				return err
			}
			sp.Success("index " + a.cfg.Index.Name + " dropped")
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Show document count and indexing progress",
		RunE: withSignalWatcher(func(ctx context.Context, _ *cobra.Command, _ []string) error {
			repo, closeFn, err := a.indexRepo(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			info, err := repo.Info(ctx, a.cfg.Index.Name)
			if err != nil {
				return err
			}
			printIndexInfo(info, nil)
			keys, err := repo.KeyCount(ctx)
			if err != nil {
				a.log.Debug("key count unavailable", zap.Error(err))
				return nil
			}
			pterm.Info.Printfln("%d keys in db %d (indexed or not)", keys, a.cfg.Redis.DB)
			return nil
		}),
	})

	return cmd
}

func (a *app) indexRepo(ctx context.Context) (*indexrepo.Repo, func(), error) {
	store, err := a.connect(ctx)
	if err != nil {
		return nil, nil, err
	}
	repo := indexrepo.New(store,
		indexrepo.WithLogger(a.log),
		indexrepo.WithReadiness(a.cfg.Index.Readiness, a.cfg.Index.ReadyTimeout),
	)
	return repo, store.Close, nil
}
