package bulkload

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/jonboulle/clockwork"

	"github.com/kailas-cloud/jsonidx/internal/db"
)

// fakeSession records pipelined writes.
type fakeSession struct {
	opener *fakeOpener
	closed bool
}

func (s *fakeSession) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	return s.opener.record(ctx, items)
}

func (s *fakeSession) Close() {
	if !s.closed {
		s.closed = true
		s.opener.release()
	}
}

// fakeOpener hands out fakeSessions and tracks how many are open at once.
type fakeOpener struct {
	mu        sync.Mutex
	batches   [][]db.JSONSetItem
	open      int
	maxOpen   int
	openErr   error
	failBatch int // 1-based; 0 never fails
	failErr   error
}

func (o *fakeOpener) WriteSession(context.Context) (db.WriteSession, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.openErr != nil {
		return nil, o.openErr
	}
	o.open++
	o.maxOpen = max(o.maxOpen, o.open)
	return &fakeSession{opener: o}, nil
}

func (o *fakeOpener) record(_ context.Context, items []db.JSONSetItem) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.batches = append(o.batches, append([]db.JSONSetItem(nil), items...))
	if o.failBatch > 0 && len(o.batches) == o.failBatch {
		return o.failErr
	}
	return nil
}

func (o *fakeOpener) release() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.open--
}

func (o *fakeOpener) sizes() []int {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]int, len(o.batches))
	for i, b := range o.batches {
		out[i] = len(b)
	}
	return out
}

func newTestService(t *testing.T, opts ...Option) (*Service, *fakeOpener) {
	t.Helper()
	fo := &fakeOpener{}
	opts = append([]Option{WithClock(clockwork.NewFakeClock())}, opts...)
	return New(fo, opts...), fo
}

func items(n int) []Item {
	out := make([]Item, n)
	for i := range out {
		out[i] = Item{Key: fmt.Sprintf("k:%d", i), Doc: map[string]int{"n": i}}
	}
	return out
}
