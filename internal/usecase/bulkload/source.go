package bulkload

import (
	"strconv"

	"github.com/kailas-cloud/jsonidx/internal/domain/activity"
)

// SliceSource yields a fixed list of items.
type SliceSource struct {
	items []Item
	pos   int
}

// NewSliceSource wraps items.
func NewSliceSource(items []Item) *SliceSource {
	return &SliceSource{items: items}
}

func (s *SliceSource) Next() (Item, bool) {
	if s.pos >= len(s.items) {
		return Item{}, false
	}
	it := s.items[s.pos]
	s.pos++
	return it, true
}

// Len returns the total number of items.
func (s *SliceSource) Len() int { return len(s.items) }

// Keys lists the keys of all items, consumed or not.
func (s *SliceSource) Keys() []string {
	keys := make([]string, len(s.items))
	for i, it := range s.items {
		keys[i] = it.Key
	}
	return keys
}

// NewFixtureSource yields the built-in activity fixtures under prefix.
func NewFixtureSource(prefix string) *SliceSource {
	fx := activity.Fixtures()
	items := make([]Item, len(fx))
	for i, f := range fx {
		items[i] = Item{Key: activity.Key(prefix, f.ID), Doc: f.Activity}
	}
	return NewSliceSource(items)
}

// GeneratedSource yields total fake activities keyed total, total-1, ..., 1.
type GeneratedSource struct {
	prefix    string
	total     int
	remaining int
	gen       *activity.Generator
}

// NewGeneratedSource creates a source of total generated activities.
func NewGeneratedSource(total int, prefix string, gen *activity.Generator) *GeneratedSource {
	if total < 0 {
		total = 0
	}
	return &GeneratedSource{prefix: prefix, total: total, remaining: total, gen: gen}
}

func (s *GeneratedSource) Next() (Item, bool) {
	if s.remaining <= 0 {
		return Item{}, false
	}
	key := activity.Key(s.prefix, strconv.Itoa(s.remaining))
	s.remaining--
	return Item{Key: key, Doc: s.gen.Next()}, true
}

// Len returns the total number of activities the source produces.
func (s *GeneratedSource) Len() int { return s.total }
