package jsonidx

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/jsonidx/internal/domain/query"
)

// rootAlias is the projection name of the whole document.
const rootAlias = "$"

// Hit is a typed search result.
type Hit[T any] struct {
	Key  string
	Item T
}

// SearchBuilder is a fluent builder for typed search queries.
type SearchBuilder[T any] struct {
	idx       *TypedIndex[T]
	target    string
	predicate string
	offset    int
	limit     int
	dialect   Dialect
}

// Via runs the search against an alias instead of the index name.
func (b *SearchBuilder[T]) Via(alias string) *SearchBuilder[T] {
	b.target = alias
	return b
}

// Limit sets the page window.
func (b *SearchBuilder[T]) Limit(n int) *SearchBuilder[T] {
	b.limit = n
	return b
}

// Offset skips the first n hits.
func (b *SearchBuilder[T]) Offset(n int) *SearchBuilder[T] {
	b.offset = n
	return b
}

// Dialect selects the query dialect.
func (b *SearchBuilder[T]) Dialect(d Dialect) *SearchBuilder[T] {
	b.dialect = d
	return b
}

// Request builds the underlying search request.
func (b *SearchBuilder[T]) Request() (SearchRequest, error) {
	qb := query.New(b.idx.def).
		Index(b.target).
		WithPredicate(b.predicate).
		ReturnPath(rootAlias, "")
	if b.limit >= 0 || b.offset != 0 {
		limit := b.limit
		if limit < 0 {
			limit = query.DefaultLimit
		}
		qb.Limit(b.offset, limit)
	}
	if b.dialect != 0 {
		qb.Dialect(b.dialect)
	}
	return qb.Build()
}

// Do executes the search and returns typed hits and the total match count.
func (b *SearchBuilder[T]) Do(ctx context.Context) ([]Hit[T], int, error) {
	req, err := b.Request()
	if err != nil {
		return nil, 0, fmt.Errorf("search: %w", err)
	}
	page, err := b.idx.client.Search(ctx, req)
	if err != nil {
		return nil, 0, fmt.Errorf("search: %w", err)
	}

	hits := make([]Hit[T], 0, len(page.Documents))
	for _, d := range page.Documents {
		item, err := b.idx.decode(d)
		if err != nil {
			return nil, 0, fmt.Errorf("search: %w", err)
		}
		hits = append(hits, Hit[T]{Key: d.Key, Item: item})
	}
	return hits, page.Total, nil
}
