package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/jsonidx/internal/db"
)

// Search runs FT.SEARCH with RETURN projections, paging and dialect.
func (s *Store) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	args, err := buildSearchArgs(q)
	if err != nil {
		return nil, err
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isNotFound(err) {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	if q.NoContent {
		return parseNoContentResult(raw)
	}
	return parseSearchResult(raw)
}

func buildSearchArgs(q *db.SearchQuery) ([]string, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("%w: index name is required", db.ErrInvalidRequest)
	}
	if q.Query == "" {
		return nil, fmt.Errorf("%w: query is required", db.ErrInvalidRequest)
	}
	if q.Offset < 0 || q.Limit < 0 {
		return nil, fmt.Errorf("%w: offset and limit must be non-negative", db.ErrInvalidRequest)
	}

	args := []string{q.IndexName, q.Query}

	if q.NoContent {
		args = append(args, "NOCONTENT")
	} else if len(q.ReturnFields) > 0 {
		ret := make([]string, 0, len(q.ReturnFields)*3)
		for _, f := range q.ReturnFields {
			ret = append(ret, f.Path)
			if f.As != "" && f.As != f.Path {
				ret = append(ret, "AS", f.As)
			}
		}
		args = append(args, "RETURN", strconv.Itoa(len(ret)))
		args = append(args, ret...)
	}

	args = append(args, "LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit))

	if q.Dialect > 0 {
		args = append(args, "DIALECT", strconv.Itoa(q.Dialect))
	}
	return args, nil
}

// --- Result parsing ---

func parseSearchResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/2)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			// A hit whose projections all missed comes back as an empty or nil array.
			entries = append(entries, db.SearchEntry{Key: key})
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseNoContentResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	entries := make([]db.SearchEntry, 0, len(raw)-1)
	for _, m := range raw[1:] {
		key, err := m.ToString()
		if err != nil {
			continue
		}
		entries = append(entries, db.SearchEntry{Key: key})
	}
	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

// parseFieldPairs keeps reply order so projections line up with the RETURN clause.
func parseFieldPairs(fields []rueidis.RedisMessage) []db.FieldValue {
	out := make([]db.FieldValue, 0, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		out = append(out, db.FieldValue{Name: name, Value: value})
	}
	return out
}
