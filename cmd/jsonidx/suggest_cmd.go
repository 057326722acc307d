package main

import (
	"context"

	"github.com/spf13/cobra"

	suggestrepo "github.com/kailas-cloud/jsonidx/internal/repository/suggest"
)

func newSuggestCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "suggest <prefix>",
		Short:   "Look up autocomplete suggestions for a prefix",
		Args:    cobra.ExactArgs(1),
		Example: `  jsonidx suggest gor --fuzzy`,
		RunE:    withSignalWatcher(a.suggest),
	}
	cmd.Flags().Int("max", 5, "maximum number of suggestions")
	cmd.Flags().Bool("fuzzy", false, "allow one edit of distance in the prefix")
	cmd.Flags().StringSlice("add", nil, "terms to add to the dictionary before the lookup")
	return cmd
}

func (a *app) suggest(ctx context.Context, cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("max")
	fuzzy, _ := cmd.Flags().GetBool("fuzzy")
	terms, _ := cmd.Flags().GetStringSlice("add")

	store, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	repo := suggestrepo.New(store, a.log)
	if len(terms) > 0 {
		if _, err := repo.Populate(ctx, a.cfg.Index.Dictionary, terms); err != nil {
			return err
		}
	}

	ss, err := repo.Get(ctx, a.cfg.Index.Dictionary, args[0], limit, fuzzy)
	if err != nil {
		return err
	}
	renderTable(suggestionTable(ss))
	return nil
}
