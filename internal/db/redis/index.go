package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/jsonidx/internal/db"
)

// CreateIndex creates an FT index from the given definition.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := buildCreateArgs(def)
	if err != nil {
		return err
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// DropIndex removes an FT index by name. Documents are kept.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	cmd := s.b().Arbitrary("FT.DROPINDEX").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isNotFound(err) {
			return db.ErrIndexNotFound
		}
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
	return nil
}

// IndexInfo reads document count and background indexing progress via FT.INFO.
// Aliases resolve to their target index.
func (s *Store) IndexInfo(ctx context.Context, name string) (*db.IndexInfo, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isNotFound(err) {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpIndexInfo, Err: err}
	}

	info := &db.IndexInfo{Name: name}
	// RESP2 flat list: [key1, value1, key2, value2, ...]
	for i := 0; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		v := raw[i+1]
		switch key {
		case "index_name":
			if n, err := v.ToString(); err == nil {
				info.Name = n
			}
		case "num_docs":
			if n, err := v.AsInt64(); err == nil {
				info.NumDocs = n
			}
		case "indexing":
			if n, err := v.AsInt64(); err == nil {
				info.Indexing = n != 0
			}
		case "percent_indexed":
			if f, err := v.AsFloat64(); err == nil {
				info.PercentIndexed = f
			}
		case "hash_indexing_failures":
			if n, err := v.AsInt64(); err == nil {
				info.IndexingFailures = n
			}
		}
	}
	return info, nil
}

// ListIndexes returns the names of all real indexes (aliases are not listed).
func (s *Store) ListIndexes(ctx context.Context) ([]string, error) {
	cmd := s.b().Arbitrary("FT._LIST").Build()
	names, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpListIndexes, Err: err}
	}
	return names, nil
}

// AliasAdd points a new alias at index.
func (s *Store) AliasAdd(ctx context.Context, alias, index string) error {
	cmd := s.b().Arbitrary("FT.ALIASADD").Args(alias, index).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "alias already exists") {
			return db.ErrAliasExists
		}
		if isNotFound(err) {
			return db.ErrIndexNotFound
		}
		return &db.Error{Op: db.OpAliasAdd, Err: err}
	}
	return nil
}

// AliasUpdate re-points an alias, creating it when missing.
func (s *Store) AliasUpdate(ctx context.Context, alias, index string) error {
	cmd := s.b().Arbitrary("FT.ALIASUPDATE").Args(alias, index).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isNotFound(err) {
			return db.ErrIndexNotFound
		}
		return &db.Error{Op: db.OpAliasUpdate, Err: err}
	}
	return nil
}

// AliasDel removes an alias.
func (s *Store) AliasDel(ctx context.Context, alias string) error {
	cmd := s.b().Arbitrary("FT.ALIASDEL").Args(alias).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "alias does not exist") || isNotFound(err) {
			return db.ErrAliasNotFound
		}
		return &db.Error{Op: db.OpAliasDel, Err: err}
	}
	return nil
}

func buildCreateArgs(idx *db.IndexDefinition) ([]string, error) {
	if idx.Name == "" {
		return nil, errors.New("index name is required")
	}
	if len(idx.Fields) == 0 {
		return nil, errors.New("at least one field is required")
	}

	args := []string{idx.Name}

	storage := idx.StorageType
	if storage == "" {
		storage = db.StorageJSON
	}
	args = append(args, "ON", string(storage))

	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}

	args = append(args, "SCHEMA")

	for i := range idx.Fields {
		fieldArgs, err := buildFieldArgs(&idx.Fields[i])
		if err != nil {
			return nil, err
		}
		args = append(args, fieldArgs...)
	}

	return args, nil
}

func buildFieldArgs(f *db.IndexField) ([]string, error) {
	if f.Name == "" {
		return nil, errors.New("field name is required")
	}

	args := []string{f.Name}

	if f.Alias != "" {
		args = append(args, "AS", f.Alias)
	}

	switch f.Type {
	case db.IndexFieldNumeric:
		args = append(args, "NUMERIC")

	case db.IndexFieldText:
		args = append(args, "TEXT")
		if f.Weight > 0 {
			args = append(args, "WEIGHT", strconv.FormatFloat(f.Weight, 'f', -1, 64))
		}
		if f.Phonetic != "" {
			args = append(args, "PHONETIC", f.Phonetic)
		}

	case db.IndexFieldTag:
		args = append(args, "TAG")
		if f.TagSeparator != "" {
			args = append(args, "SEPARATOR", f.TagSeparator)
		}
		if f.TagCaseSensitive {
			args = append(args, "CASESENSITIVE")
		}

	default:
		return nil, fmt.Errorf("unknown field type %d", f.Type)
	}

	if f.Sortable {
		args = append(args, "SORTABLE")
	}

	return args, nil
}
