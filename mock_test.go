package jsonidx

import (
	"context"
	"errors"

	"github.com/kailas-cloud/jsonidx/internal/db"
	"github.com/kailas-cloud/jsonidx/internal/domain/aggregation"
	"github.com/kailas-cloud/jsonidx/internal/domain/query"
	"github.com/kailas-cloud/jsonidx/internal/domain/result"
	"github.com/kailas-cloud/jsonidx/internal/domain/schema"
	suggestrepo "github.com/kailas-cloud/jsonidx/internal/repository/suggest"
	"github.com/kailas-cloud/jsonidx/internal/usecase/bulkload"
)

type mockConn struct {
	pingErr error
	closed  bool
}

func (m *mockConn) Ping(context.Context) error { return m.pingErr }
func (m *mockConn) Close()                     { m.closed = true }

type mockIndex struct {
	recreated []string
	info      *db.IndexInfo
	err       error
}

func (m *mockIndex) Recreate(_ context.Context, def schema.Definition, alias string) error {
	m.recreated = append(m.recreated, def.Name+"->"+alias)
	return m.err
}

func (m *mockIndex) Drop(context.Context, string) error { return m.err }

func (m *mockIndex) WaitReady(context.Context, string) (*db.IndexInfo, error) {
	return m.info, m.err
}

func (m *mockIndex) Info(context.Context, string) (*db.IndexInfo, error) { return m.info, m.err }

type mockSearcher struct {
	searchFn    func(query.SearchRequest) (result.Page, error)
	aggregateFn func(aggregation.Request) (result.Aggregation, error)
	countFn     func(index, predicate string) (int, error)
}

func (m *mockSearcher) Search(_ context.Context, req query.SearchRequest) (result.Page, error) {
	if m.searchFn == nil {
		return result.Page{}, errors.New("search not expected")
	}
	return m.searchFn(req)
}

func (m *mockSearcher) Aggregate(_ context.Context, req aggregation.Request) (result.Aggregation, error) {
	if m.aggregateFn == nil {
		return result.Aggregation{}, errors.New("aggregate not expected")
	}
	return m.aggregateFn(req)
}

func (m *mockSearcher) Count(_ context.Context, index, predicate string, _ query.Dialect) (int, error) {
	if m.countFn == nil {
		return 0, errors.New("count not expected")
	}
	return m.countFn(index, predicate)
}

type mockLoader struct {
	items     []bulkload.Item
	batchSize int
}

func (m *mockLoader) Load(_ context.Context, src bulkload.Source, batchSize int) (bulkload.Report, error) {
	m.batchSize = batchSize
	for {
		it, ok := src.Next()
		if !ok {
			break
		}
		m.items = append(m.items, it)
	}
	return bulkload.Report{Documents: len(m.items), Batches: 1}, nil
}

type mockSuggester struct {
	terms []string
}

func (m *mockSuggester) Populate(_ context.Context, _ string, terms []string) (int, error) {
	m.terms = append(m.terms, terms...)
	return len(terms), nil
}

func (m *mockSuggester) Get(_ context.Context, _, prefix string, _ int, _ bool) ([]suggestrepo.Suggestion, error) {
	var out []suggestrepo.Suggestion
	for _, t := range m.terms {
		if len(t) >= len(prefix) && t[:len(prefix)] == prefix {
			out = append(out, suggestrepo.Suggestion{Term: t, Score: 1})
		}
	}
	return out, nil
}

// newTestClient wires a Client around in-memory fakes.
func newTestClient() (*Client, *mockIndex, *mockSearcher, *mockLoader) {
	idx := &mockIndex{info: &db.IndexInfo{Name: "idx", PercentIndexed: 1}}
	s := &mockSearcher{}
	l := &mockLoader{}
	return &Client{
		conn:    &mockConn{},
		index:   idx,
		search:  s,
		loader:  l,
		suggest: &mockSuggester{},
	}, idx, s, l
}
