package index

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/jsonidx/internal/backoff"
	"github.com/kailas-cloud/jsonidx/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	dropIndexFn   func(ctx context.Context, name string) error
	indexInfoFn   func(ctx context.Context, name string) (*db.IndexInfo, error)
	listFn        func(ctx context.Context) ([]string, error)
	aliasAddFn    func(ctx context.Context, alias, index string) error
	aliasUpdateFn func(ctx context.Context, alias, index string) error
	aliasDelFn    func(ctx context.Context, alias string) error
	dbSizeFn      func(ctx context.Context) (int64, error)

	calls []string
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	m.calls = append(m.calls, "FT.CREATE "+def.Name)
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) DropIndex(ctx context.Context, name string) error {
	m.calls = append(m.calls, "FT.DROPINDEX "+name)
	if m.dropIndexFn != nil {
		return m.dropIndexFn(ctx, name)
	}
	return nil
}

func (m *mockStore) IndexInfo(ctx context.Context, name string) (*db.IndexInfo, error) {
	if m.indexInfoFn != nil {
		return m.indexInfoFn(ctx, name)
	}
	return &db.IndexInfo{Name: name, PercentIndexed: 1}, nil
}

func (m *mockStore) ListIndexes(ctx context.Context) ([]string, error) {
	m.calls = append(m.calls, "FT._LIST")
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockStore) AliasAdd(ctx context.Context, alias, index string) error {
	m.calls = append(m.calls, "FT.ALIASADD "+alias+" "+index)
	if m.aliasAddFn != nil {
		return m.aliasAddFn(ctx, alias, index)
	}
	return nil
}

func (m *mockStore) AliasUpdate(ctx context.Context, alias, index string) error {
	m.calls = append(m.calls, "FT.ALIASUPDATE "+alias+" "+index)
	if m.aliasUpdateFn != nil {
		return m.aliasUpdateFn(ctx, alias, index)
	}
	return nil
}

func (m *mockStore) AliasDel(ctx context.Context, alias string) error {
	m.calls = append(m.calls, "FT.ALIASDEL "+alias)
	if m.aliasDelFn != nil {
		return m.aliasDelFn(ctx, alias)
	}
	return nil
}

func (m *mockStore) DBSize(ctx context.Context) (int64, error) {
	m.calls = append(m.calls, "DBSIZE")
	if m.dbSizeFn != nil {
		return m.dbSizeFn(ctx)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, WithReadiness(&backoff.Config{
		Constant: &backoff.ConstantConfig{Interval: time.Millisecond},
	}, 100*time.Millisecond))
	return repo, ms
}
