// Package aggregation builds validated FT.AGGREGATE requests: a pre-group
// predicate, one GROUPBY stage with reducers, and an optional post-group filter.
package aggregation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/jsonidx/internal/domain"
	"github.com/kailas-cloud/jsonidx/internal/domain/query"
	"github.com/kailas-cloud/jsonidx/internal/domain/schema"
)

// ReduceFunc is a store-side reducer applied to each group.
type ReduceFunc string

const (
	Count         ReduceFunc = "COUNT"
	CountDistinct ReduceFunc = "COUNT_DISTINCT"
	Sum           ReduceFunc = "SUM"
	Min           ReduceFunc = "MIN"
	Max           ReduceFunc = "MAX"
	Avg           ReduceFunc = "AVG"
	ToList        ReduceFunc = "TOLIST"
)

func (f ReduceFunc) valid() bool {
	switch f {
	case Count, CountDistinct, Sum, Min, Max, Avg, ToList:
		return true
	}
	return false
}

// Reducer is one REDUCE clause. Field is empty for COUNT.
type Reducer struct {
	Func  ReduceFunc
	Field string
	As    string
}

// Alias is the output column: As, or the lowercased function name with the
// field appended when there is one.
func (r Reducer) Alias() string {
	if r.As != "" {
		return r.As
	}
	name := strings.ToLower(string(r.Func))
	if r.Field != "" {
		name += "_" + strings.TrimPrefix(r.Field, "@")
	}
	return name
}

// CountAs counts rows per group.
func CountAs(as string) Reducer { return Reducer{Func: Count, As: as} }

// CountDistinctOf counts distinct values of field per group.
func CountDistinctOf(field, as string) Reducer {
	return Reducer{Func: CountDistinct, Field: field, As: as}
}

// SumOf sums a numeric field.
func SumOf(field, as string) Reducer { return Reducer{Func: Sum, Field: field, As: as} }

// MinOf returns the smallest value of a numeric field.
func MinOf(field, as string) Reducer { return Reducer{Func: Min, Field: field, As: as} }

// MaxOf returns the largest value of a numeric field.
func MaxOf(field, as string) Reducer { return Reducer{Func: Max, Field: field, As: as} }

// AvgOf averages a numeric field.
func AvgOf(field, as string) Reducer { return Reducer{Func: Avg, Field: field, As: as} }

// ToListOf collects distinct values of field.
func ToListOf(field, as string) Reducer { return Reducer{Func: ToList, Field: field, As: as} }

// Request is a validated aggregation. GroupBy entries carry the @ prefix.
type Request struct {
	Index      string
	Predicate  string
	GroupBy    []string
	Reducers   []Reducer
	PostFilter string
	Dialect    query.Dialect
}

// Builder accumulates an aggregation request against a schema.Definition.
type Builder struct {
	def       schema.Definition
	index     string
	predicate string
	groupBy   []string
	reducers  []Reducer
	filter    string
	dialect   query.Dialect
	errs      []error
}

// New starts an aggregation against def.
func New(def schema.Definition) *Builder {
	return &Builder{
		def:     def,
		index:   def.Name,
		dialect: query.DefaultDialect,
	}
}

// Index overrides the index or alias the request runs against.
func (b *Builder) Index(name string) *Builder {
	b.index = name
	return b
}

// WithPredicate sets the pre-group query. It is checked in Build, once all
// reducer aliases are known.
func (b *Builder) WithPredicate(predicate string) *Builder {
	b.predicate = predicate
	return b
}

// GroupBy adds group keys (with or without @) and their reducers.
func (b *Builder) GroupBy(fields []string, reducers ...Reducer) *Builder {
	for _, f := range fields {
		alias := strings.TrimPrefix(f, "@")
		if _, ok := b.def.Field(alias); !ok {
			b.errs = append(b.errs, &domain.UnknownFieldError{Field: alias, Where: "group-by"})
			continue
		}
		b.groupBy = append(b.groupBy, alias)
	}
	for _, r := range reducers {
		if err := b.checkReducer(r); err != nil {
			b.errs = append(b.errs, err)
			continue
		}
		r.Field = strings.TrimPrefix(r.Field, "@")
		b.reducers = append(b.reducers, r)
	}
	return b
}

func (b *Builder) checkReducer(r Reducer) error {
	if !r.Func.valid() {
		return fmt.Errorf("%w: unknown reducer %q", domain.ErrInvalidSchema, r.Func)
	}
	field := strings.TrimPrefix(r.Field, "@")
	if r.Func == Count {
		if field != "" {
			return fmt.Errorf("%w: COUNT takes no field", domain.ErrInvalidSchema)
		}
		return nil
	}
	if field == "" {
		return fmt.Errorf("%w: %s requires a field", domain.ErrInvalidSchema, r.Func)
	}
	if _, ok := b.def.Field(field); !ok {
		return &domain.UnknownFieldError{Field: field, Where: "reducer"}
	}
	return nil
}

// Filter sets the post-group filter expression, e.g. "@event_match_count > 1".
func (b *Builder) Filter(expr string) *Builder {
	b.filter = expr
	return b
}

// Dialect selects the query dialect.
func (b *Builder) Dialect(d query.Dialect) *Builder {
	if !d.Valid() {
		b.errs = append(b.errs, fmt.Errorf("%w: %d", domain.ErrInvalidDialect, int(d)))
		return b
	}
	b.dialect = d
	return b
}

// Build validates ordering rules and returns the request.
func (b *Builder) Build() (Request, error) {
	errs := append([]error(nil), b.errs...)

	outputs := make(map[string]bool, len(b.reducers))
	for _, r := range b.reducers {
		alias := r.Alias()
		if outputs[alias] || containsAlias(b.groupBy, alias) {
			errs = append(errs, fmt.Errorf("%w: duplicate output column %q", domain.ErrSchemaConflict, alias))
		}
		outputs[alias] = true
	}

	predicate := b.predicate
	if predicate == "" {
		predicate = "*"
	}
	for _, ref := range query.ScanFields(predicate) {
		if _, isField := b.def.Field(ref.Alias); !isField && outputs[ref.Alias] {
			errs = append(errs, &domain.InvalidAggregationOrderError{Alias: ref.Alias})
			continue
		}
		if err := query.CheckRef(b.def, ref, "predicate"); err != nil {
			errs = append(errs, err)
		}
	}

	if b.filter != "" {
		if len(b.groupBy) == 0 {
			errs = append(errs, fmt.Errorf("%w: filter without group-by", domain.ErrInvalidSchema))
		}
		for _, ref := range query.ScanFields(b.filter) {
			if !outputs[ref.Alias] && !containsAlias(b.groupBy, ref.Alias) {
				errs = append(errs, &domain.UnknownFieldError{Field: ref.Alias, Where: "filter"})
			}
		}
	}

	if b.index == "" {
		errs = append(errs, fmt.Errorf("%w: index name is required", domain.ErrInvalidSchema))
	}
	if len(errs) > 0 {
		return Request{}, errors.Join(errs...)
	}

	groupBy := make([]string, len(b.groupBy))
	for i, g := range b.groupBy {
		groupBy[i] = "@" + g
	}

	return Request{
		Index:      b.index,
		Predicate:  predicate,
		GroupBy:    groupBy,
		Reducers:   append([]Reducer(nil), b.reducers...),
		PostFilter: b.filter,
		Dialect:    b.dialect,
	}, nil
}

func containsAlias(list []string, alias string) bool {
	for _, a := range list {
		if a == alias {
			return true
		}
	}
	return false
}
