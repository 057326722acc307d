package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/jsonidx/internal/db"
	"github.com/kailas-cloud/jsonidx/internal/json"
)

// Aggregate runs FT.AGGREGATE with GROUPBY, REDUCE and FILTER stages.
func (s *Store) Aggregate(ctx context.Context, q *db.AggregateQuery) (*db.AggregateResult, error) {
	args, err := buildAggregateArgs(q)
	if err != nil {
		return nil, err
	}

	cmd := s.b().Arbitrary("FT.AGGREGATE").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isNotFound(err) {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}
	return parseAggregateResult(raw)
}

func buildAggregateArgs(q *db.AggregateQuery) ([]string, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("%w: index name is required", db.ErrInvalidRequest)
	}
	query := q.Query
	if query == "" {
		query = "*"
	}

	args := []string{q.IndexName, query}

	if len(q.GroupBy) > 0 {
		args = append(args, "GROUPBY", strconv.Itoa(len(q.GroupBy)))
		args = append(args, q.GroupBy...)
	}

	for _, r := range q.Reducers {
		if r.Func == "" {
			return nil, fmt.Errorf("%w: reducer function is required", db.ErrInvalidRequest)
		}
		args = append(args, "REDUCE", r.Func, strconv.Itoa(len(r.Args)))
		args = append(args, r.Args...)
		if r.As != "" {
			args = append(args, "AS", r.As)
		}
	}

	if q.Filter != "" {
		args = append(args, "FILTER", q.Filter)
	}

	if q.Dialect > 0 {
		args = append(args, "DIALECT", strconv.Itoa(q.Dialect))
	}
	return args, nil
}

func parseAggregateResult(raw []rueidis.RedisMessage) (*db.AggregateResult, error) {
	if len(raw) == 0 {
		return &db.AggregateResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	rows := make([]map[string]string, 0, len(raw)-1)
	for _, m := range raw[1:] {
		pairs, err := m.ToArray()
		if err != nil {
			continue
		}
		row := make(map[string]string, len(pairs)/2)
		for j := 0; j+1 < len(pairs); j += 2 {
			name, err := pairs[j].ToString()
			if err != nil {
				continue
			}
			row[name] = aggregateValue(pairs[j+1])
		}
		rows = append(rows, row)
	}

	return &db.AggregateResult{Total: int(total), Rows: rows}, nil
}

// aggregateValue flattens a reducer output. TOLIST yields an array, which is
// rendered as a JSON array of strings.
func aggregateValue(m rueidis.RedisMessage) string {
	if v, err := m.ToString(); err == nil {
		return v
	}
	if list, err := m.AsStrSlice(); err == nil {
		b, err := json.Marshal(list)
		if err == nil {
			return string(b)
		}
	}
	return ""
}
