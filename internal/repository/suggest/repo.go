// Package suggest manages autocomplete dictionaries.
package suggest

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jsonidx/internal/db"
	"github.com/kailas-cloud/jsonidx/internal/domain"
)

// DefaultDictionary holds the activity names.
const DefaultDictionary = "zew:suggest:names"

// store is the consumer interface for dictionary operations (ISP).
type store interface {
	SugAdd(ctx context.Context, dict, term string, score float64, incr bool) error
	SugGet(ctx context.Context, dict, prefix string, limit int, fuzzy bool) ([]db.Suggestion, error)
}

// Suggestion is one completion with its accumulated score.
type Suggestion struct {
	Term  string
	Score float64
}

// Repo wraps FT.SUGADD / FT.SUGGET.
type Repo struct {
	store  store
	logger *zap.Logger
}

// New creates a suggestion repository.
func New(s store, logger *zap.Logger) *Repo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{store: s, logger: logger}
}

// Add increments the score of term in dict, creating it when absent.
func (r *Repo) Add(ctx context.Context, dict, term string, score float64) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return fmt.Errorf("%w: empty suggestion term", domain.ErrInvalidSchema)
	}
	if err := r.store.SugAdd(ctx, dict, term, score, true); err != nil {
		return fmt.Errorf("suggest add %q: %w", term, err)
	}
	return nil
}

// Populate adds every term with score 1. Repeated terms accumulate score.
// It stops at the first failure and returns how many terms were added.
func (r *Repo) Populate(ctx context.Context, dict string, terms []string) (int, error) {
	added := 0
	for _, t := range terms {
		if err := ctx.Err(); err != nil {
			return added, err
		}
		if err := r.Add(ctx, dict, t, 1); err != nil {
			return added, err
		}
		added++
	}
	r.logger.Debug("suggestion dictionary populated", zap.String("dict", dict), zap.Int("terms", added))
	return added, nil
}

// Get returns at most limit completions of prefix, best score first.
func (r *Repo) Get(ctx context.Context, dict, prefix string, limit int, fuzzy bool) ([]Suggestion, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit %d", domain.ErrInvalidLimit, limit)
	}
	raw, err := r.store.SugGet(ctx, dict, prefix, limit, fuzzy)
	if err != nil {
		return nil, fmt.Errorf("suggest get %q: %w", prefix, err)
	}
	out := make([]Suggestion, len(raw))
	for i, s := range raw {
		out[i] = Suggestion{Term: s.Term, Score: s.Score}
	}
	return out, nil
}
