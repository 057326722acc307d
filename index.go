package jsonidx

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/kailas-cloud/jsonidx/internal/json"
)

// TypedIndex is a schema-first index over documents of type T.
// The schema is inferred from T's struct tags at construction time.
type TypedIndex[T any] struct {
	name   string
	prefix string
	client *Client
	meta   *schemaMeta
	def    Definition
}

// NewIndex creates a typed index handle. Documents are stored under
// prefix+key. The inferred definition is validated without touching the
// network.
func NewIndex[T any](client *Client, name, prefix string) (*TypedIndex[T], error) {
	meta, err := parseSchema[T]()
	if err != nil {
		return nil, fmt.Errorf("new index %q: %w", name, err)
	}
	def := meta.definition(name, prefix)
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("new index %q: %w", name, err)
	}
	return &TypedIndex[T]{name: name, prefix: prefix, client: client, meta: meta, def: def}, nil
}

// Definition returns the inferred index definition.
func (idx *TypedIndex[T]) Definition() Definition { return idx.def }

// Recreate rebuilds the index, aliases it and waits until it is ready.
func (idx *TypedIndex[T]) Recreate(ctx context.Context, alias string) (*IndexInfo, error) {
	if err := idx.client.RecreateIndex(ctx, idx.def, alias); err != nil {
		return nil, fmt.Errorf("recreate %q: %w", idx.name, err)
	}
	return idx.client.WaitReady(ctx, idx.name)
}

// Load writes items under prefix+key in pipelined batches.
func (idx *TypedIndex[T]) Load(ctx context.Context, items []T) (LoadReport, error) {
	batch := make([]Item, len(items))
	for i, item := range items {
		id, err := idx.meta.key(item)
		if err != nil {
			return LoadReport{}, fmt.Errorf("item %d: %w", i, err)
		}
		batch[i] = Item{Key: idx.prefix + id, Doc: item}
	}
	return idx.client.Load(ctx, batch)
}

// Search returns a fluent search builder for predicate.
func (idx *TypedIndex[T]) Search(predicate string) *SearchBuilder[T] {
	return &SearchBuilder[T]{idx: idx, target: idx.name, predicate: predicate, limit: -1}
}

// decode turns a projected root document into T and restores its key.
func (idx *TypedIndex[T]) decode(d Document) (T, error) {
	var item T
	f, ok := d.Get(rootAlias)
	if !ok || f.Value() == "" {
		return item, fmt.Errorf("document %q has no content", d.Key)
	}
	if err := json.Unmarshal([]byte(f.Value()), &item); err != nil {
		return item, fmt.Errorf("decode %q: %w", d.Key, err)
	}
	v := reflect.ValueOf(&item).Elem()
	if v.Kind() == reflect.Struct {
		idx.meta.setKey(v, strings.TrimPrefix(d.Key, idx.prefix))
	}
	return item, nil
}
