package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/jsonidx/internal/db"
)

// Session is an exclusive connection for pipelined writes.
type Session struct {
	client  rueidis.DedicatedClient
	release func()
	// timeout bounds each pipeline round trip; zero leaves ctx as is.
	timeout time.Duration
	once    sync.Once
	closed  bool
}

// JSONSetMulti sends every JSON.SET in a single DoMulti round trip and waits
// for all replies. The first failed reply is returned; earlier and later
// commands in the same pipeline may still have been applied.
func (s *Session) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	if s.closed {
		return db.ErrSessionClosed
	}
	if len(items) == 0 {
		return nil
	}

	cmds := make(rueidis.Commands, len(items))
	for i, item := range items {
		path := item.Path
		if path == "" {
			path = "$"
		}
		cmds[i] = s.client.B().JsonSet().Key(item.Key).Path(path).Value(string(item.Data)).Build()
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpJSONSet, Err: fmt.Errorf("key %s: %w", items[i].Key, err)}
		}
	}
	return nil
}

// Close returns the connection to the pool. Safe to call more than once.
func (s *Session) Close() {
	s.once.Do(func() {
		s.closed = true
		if s.release != nil {
			s.release()
		}
	})
}
