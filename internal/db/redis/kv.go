package redis

import (
	"context"

	"github.com/kailas-cloud/jsonidx/internal/db"
)

// Del deletes keys and returns how many existed.
func (s *Store) Del(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	cmd := s.b().Del().Key(keys...).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpDel, Err: err}
	}
	return n, nil
}

// DBSize returns the number of keys in the selected database.
func (s *Store) DBSize(ctx context.Context) (int64, error) {
	cmd := s.b().Dbsize().Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpDBSize, Err: err}
	}
	return n, nil
}
