package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/jsonidx/internal/db"
)

// SugAdd adds term to an autocomplete dictionary. With incr the score is
// added to an existing entry instead of replacing it.
func (s *Store) SugAdd(ctx context.Context, dict, term string, score float64, incr bool) error {
	args := []string{term, strconv.FormatFloat(score, 'f', -1, 64)}
	if incr {
		args = append(args, "INCR")
	}
	cmd := s.b().Arbitrary("FT.SUGADD").Keys(dict).Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSugAdd, Err: err}
	}
	return nil
}

// SugGet returns up to limit completions of prefix, with scores.
func (s *Store) SugGet(ctx context.Context, dict, prefix string, limit int, fuzzy bool) ([]db.Suggestion, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", db.ErrInvalidRequest)
	}
	args := []string{prefix}
	if fuzzy {
		args = append(args, "FUZZY")
	}
	args = append(args, "WITHSCORES", "MAX", strconv.Itoa(limit))

	cmd := s.b().Arbitrary("FT.SUGGET").Keys(dict).Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		return nil, &db.Error{Op: db.OpSugGet, Err: err}
	}

	out := make([]db.Suggestion, 0, len(raw)/2)
	// [term1, score1, term2, score2, ...]
	for i := 0; i+1 < len(raw); i += 2 {
		term, err := raw[i].ToString()
		if err != nil {
			continue
		}
		score, err := raw[i+1].AsFloat64()
		if err != nil {
			continue
		}
		out = append(out, db.Suggestion{Term: term, Score: score})
	}
	return out, nil
}
