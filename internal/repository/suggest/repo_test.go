package suggest

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/jsonidx/internal/db"
	"github.com/kailas-cloud/jsonidx/internal/domain"
)

func TestAdd_UsesIncr(t *testing.T) {
	repo, ms := newTestRepo(t)

	if err := repo.Add(context.Background(), DefaultDictionary, " Gorilla Feeding ", 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ms.adds) != 1 {
		t.Fatalf("expected 1 call, got %d", len(ms.adds))
	}
	got := ms.adds[0]
	if got.dict != DefaultDictionary || got.term != "Gorilla Feeding" || got.score != 2 || !got.incr {
		t.Errorf("unexpected call: %+v", got)
	}
}

func TestAdd_EmptyTerm(t *testing.T) {
	repo, ms := newTestRepo(t)

	err := repo.Add(context.Background(), DefaultDictionary, "  ", 1)
	if !errors.Is(err, domain.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
	if len(ms.adds) != 0 {
		t.Error("store must not be called for an empty term")
	}
}

func TestPopulate_StopsAtFirstFailure(t *testing.T) {
	repo, ms := newTestRepo(t)
	boom := errors.New("boom")
	ms.sugAddFn = func(_ context.Context, _, term string, _ float64, _ bool) error {
		if term == "Bonobo Lecture" {
			return boom
		}
		return nil
	}

	n, err := repo.Populate(context.Background(), DefaultDictionary,
		[]string{"Gorilla Feeding", "Bonobo Lecture", "Tiger Talk"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 added, got %d", n)
	}
	if len(ms.adds) != 2 {
		t.Errorf("expected 2 store calls, got %d", len(ms.adds))
	}
}

func TestGet(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.sugGetFn = func(_ context.Context, dict, prefix string, limit int, fuzzy bool) ([]db.Suggestion, error) {
		if dict != DefaultDictionary || prefix != "Gor" || limit != 5 || !fuzzy {
			t.Errorf("unexpected args: %s %s %d %v", dict, prefix, limit, fuzzy)
		}
		return []db.Suggestion{{Term: "Gorilla Feeding", Score: 3}}, nil
	}

	got, err := repo.Get(context.Background(), DefaultDictionary, "Gor", 5, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Term != "Gorilla Feeding" || got[0].Score != 3 {
		t.Errorf("unexpected suggestions: %+v", got)
	}
}

func TestGet_InvalidMax(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Get(context.Background(), DefaultDictionary, "Gor", 0, false)
	if !errors.Is(err, domain.ErrInvalidLimit) {
		t.Fatalf("expected ErrInvalidLimit, got %v", err)
	}
}
