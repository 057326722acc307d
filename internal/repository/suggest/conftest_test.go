package suggest

import (
	"context"
	"testing"

	"github.com/kailas-cloud/jsonidx/internal/db"
)

type sugAddCall struct {
	dict  string
	term  string
	score float64
	incr  bool
}

// mockStore implements the consumer interface for tests.
type mockStore struct {
	sugAddFn func(ctx context.Context, dict, term string, score float64, incr bool) error
	sugGetFn func(ctx context.Context, dict, prefix string, limit int, fuzzy bool) ([]db.Suggestion, error)
	adds     []sugAddCall
}

func (m *mockStore) SugAdd(ctx context.Context, dict, term string, score float64, incr bool) error {
	m.adds = append(m.adds, sugAddCall{dict: dict, term: term, score: score, incr: incr})
	if m.sugAddFn != nil {
		return m.sugAddFn(ctx, dict, term, score, incr)
	}
	return nil
}

func (m *mockStore) SugGet(ctx context.Context, dict, prefix string, limit int, fuzzy bool) ([]db.Suggestion, error) {
	if m.sugGetFn != nil {
		return m.sugGetFn(ctx, dict, prefix, limit, fuzzy)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, nil), ms
}
