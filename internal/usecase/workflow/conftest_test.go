package workflow

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/kailas-cloud/jsonidx/internal/db"
	"github.com/kailas-cloud/jsonidx/internal/domain/activity"
	"github.com/kailas-cloud/jsonidx/internal/domain/aggregation"
	"github.com/kailas-cloud/jsonidx/internal/domain/query"
	"github.com/kailas-cloud/jsonidx/internal/domain/result"
	"github.com/kailas-cloud/jsonidx/internal/domain/schema"
	"github.com/kailas-cloud/jsonidx/internal/repository/suggest"
	"github.com/kailas-cloud/jsonidx/internal/usecase/bulkload"
)

// recorder keeps the order of workflow steps across fakes.
type recorder struct {
	mu    sync.Mutex
	steps []string
}

func (r *recorder) add(step string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, step)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.steps...)
}

type mockIndex struct {
	rec         *recorder
	recreateErr error
	waitErr     error
}

func (m *mockIndex) Recreate(_ context.Context, def schema.Definition, alias string) error {
	m.rec.add("recreate " + def.Name + " " + alias)
	return m.recreateErr
}

func (m *mockIndex) WaitReady(_ context.Context, name string) (*db.IndexInfo, error) {
	m.rec.add("wait " + name)
	if m.waitErr != nil {
		return nil, m.waitErr
	}
	return &db.IndexInfo{Name: name, PercentIndexed: 1}, nil
}

// mockLoader drains the source like the real loader and keeps the documents.
type mockLoader struct {
	rec  *recorder
	docs map[string]activity.Activity
	err  error
}

func (m *mockLoader) Load(_ context.Context, src bulkload.Source, _ int) (bulkload.Report, error) {
	m.rec.add("load")
	m.docs = make(map[string]activity.Activity)
	for {
		it, ok := src.Next()
		if !ok {
			break
		}
		m.docs[it.Key] = it.Doc.(activity.Activity)
	}
	if m.err != nil {
		return bulkload.Report{}, m.err
	}
	return bulkload.Report{Documents: len(m.docs), Batches: 1}, nil
}

// mockSearcher answers the sample requests from the loaded fixtures.
type mockSearcher struct {
	rec       *recorder
	loader    *mockLoader
	searchErr map[string]error
	aggErr    error
}

func (m *mockSearcher) Search(_ context.Context, req query.SearchRequest) (result.Page, error) {
	m.rec.add("search")
	if err := m.searchErr[req.Predicate]; err != nil {
		return result.Page{}, err
	}
	var docs []result.Document
	for key, a := range m.loader.docs {
		if matches(req.Predicate, a) {
			docs = append(docs, result.Document{
				Key:    key,
				Fields: []result.Field{{Name: "event_name", Values: []string{a.Name}}},
			})
		}
	}
	return result.Page{Total: len(docs), Documents: docs}, nil
}

func (m *mockSearcher) Aggregate(_ context.Context, req aggregation.Request) (result.Aggregation, error) {
	m.rec.add("aggregate")
	if m.aggErr != nil {
		return result.Aggregation{}, m.aggErr
	}
	counts := map[string]int{}
	for _, a := range m.loader.docs {
		if a.Cost >= 9 {
			counts[a.Location]++
		}
	}
	var rows []result.Row
	for loc, n := range counts {
		rows = append(rows, result.Row{"location": loc, "event_match_count": strconv.Itoa(n)})
	}
	return result.Aggregation{Total: len(rows), Rows: rows}, nil
}

// matches evaluates the three sample predicates against an activity.
func matches(predicate string, a activity.Activity) bool {
	has := func(day string) bool {
		for _, d := range a.Days {
			if d == day {
				return true
			}
		}
		return false
	}
	switch predicate {
	case "@days:{Mon} -@location:(House)":
		return has("Mon") && !strings.Contains(a.Location, "House")
	case "@days:{Mon} @days:{Tue} @times:{08*}":
		if !has("Mon") || !has("Tue") {
			return false
		}
		for _, t := range a.Times {
			if t.Military != nil && strings.HasPrefix(*t.Military, "08") {
				return true
			}
		}
		return false
	case "@cost:[-inf 5.00]":
		return a.Cost <= 5
	}
	return false
}

type mockSuggester struct {
	rec    *recorder
	terms  []string
	// lookup is how far each Get moves clock.
	clock  *clockwork.FakeClock
	lookup time.Duration
}

func (m *mockSuggester) Populate(_ context.Context, _ string, terms []string) (int, error) {
	m.rec.add("populate")
	m.terms = append(m.terms, terms...)
	return len(terms), nil
}

func (m *mockSuggester) Get(_ context.Context, _, prefix string, _ int, _ bool) ([]suggest.Suggestion, error) {
	if m.clock != nil {
		m.clock.Advance(m.lookup)
	}
	var out []suggest.Suggestion
	for _, t := range m.terms {
		if strings.HasPrefix(t, prefix) {
			out = append(out, suggest.Suggestion{Term: t, Score: 1})
		}
	}
	return out, nil
}

type mockDeleter struct {
	rec  *recorder
	keys []string
	err  error
}

func (m *mockDeleter) Del(_ context.Context, keys ...string) (int64, error) {
	m.rec.add("del " + strings.Join(keys, " "))
	m.keys = append(m.keys, keys...)
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(keys)), nil
}

type fixture struct {
	svc      *Service
	rec      *recorder
	index    *mockIndex
	loader   *mockLoader
	searcher *mockSearcher
	sugg     *mockSuggester
	deleter  *mockDeleter
	clock    *clockwork.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rec := &recorder{}
	f := &fixture{
		rec:     rec,
		index:   &mockIndex{rec: rec},
		loader:  &mockLoader{rec: rec},
		sugg:    &mockSuggester{rec: rec},
		deleter: &mockDeleter{rec: rec},
		clock:   clockwork.NewFakeClock(),
	}
	f.searcher = &mockSearcher{rec: rec, loader: f.loader, searchErr: map[string]error{}}
	f.svc = New(DefaultTarget(), f.index, f.loader, f.searcher,
		WithClock(f.clock),
		WithSuggester(f.sugg),
		WithKeyDeleter(f.deleter),
	)
	return f
}
