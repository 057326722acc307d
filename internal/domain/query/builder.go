// Package query builds validated search requests against a schema.Definition.
// Building is pure: nothing here talks to the store.
package query

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/jsonidx/internal/domain"
	"github.com/kailas-cloud/jsonidx/internal/domain/jsonpath"
	"github.com/kailas-cloud/jsonidx/internal/domain/schema"
)

// DefaultLimit is the page size used when Limit is never called.
const DefaultLimit = 3

// Encoding tells the result projector how to render a single-value reply.
type Encoding int

const (
	// EncodeAuto keeps JSON objects and arrays as JSON and every scalar as
	// a string. Used for JSONPath projections, whose type is unknown.
	EncodeAuto Encoding = iota
	// EncodeString is used for TEXT and TAG aliases.
	EncodeString
	// EncodeNumber is used for NUMERIC aliases.
	EncodeNumber
)

// Projection is one returned field: an alias, or a JSONPath optionally
// renamed with As. Encoding is filled in by the Builder for aliases.
type Projection struct {
	Path     string
	As       string
	Encoding Encoding
}

// Name is the key the projection is returned under.
func (p Projection) Name() string {
	if p.As != "" {
		return p.As
	}
	return p.Path
}

// SearchRequest is a validated FT.SEARCH request.
type SearchRequest struct {
	Index       string
	Predicate   string
	Projections []Projection
	Offset      int
	Limit       int
	Dialect     Dialect
}

// Builder accumulates a search request. Errors are collected and reported
// together by Build.
type Builder struct {
	def         schema.Definition
	index       string
	predicate   string
	projections []Projection
	offset      int
	limit       int
	dialect     Dialect
	errs        []error
	// predErrs belongs to the current predicate only.
	predErrs []error
}

// New starts a request against def. The index defaults to def.Name; use
// Index to target an alias instead.
func New(def schema.Definition) *Builder {
	return &Builder{
		def:     def,
		index:   def.Name,
		limit:   DefaultLimit,
		dialect: DefaultDialect,
	}
}

// Index overrides the index or alias the request runs against.
func (b *Builder) Index(name string) *Builder {
	b.index = name
	return b
}

// WithPredicate sets the query expression. Every @alias it references is
// checked against the definition. Calling it again replaces both the
// predicate and the problems found in the previous one.
func (b *Builder) WithPredicate(predicate string) *Builder {
	b.predicate = predicate
	b.predErrs = nil
	for _, ref := range ScanFields(predicate) {
		if err := CheckRef(b.def, ref, "predicate"); err != nil {
			b.predErrs = append(b.predErrs, err)
		}
	}
	return b
}

// ReturnField adds a projection. Paths starting with $ must be valid
// JSONPath; anything else must be a known alias.
func (b *Builder) ReturnField(p Projection) *Builder {
	if jsonpath.IsPath(p.Path) {
		if err := jsonpath.Validate(p.Path); err != nil {
			b.errs = append(b.errs, err)
			return b
		}
	} else if kind, ok := b.def.Kind(p.Path); ok {
		p.Encoding = EncodeString
		if kind == schema.Numeric {
			p.Encoding = EncodeNumber
		}
	} else {
		b.errs = append(b.errs, &domain.UnknownFieldError{Field: p.Path, Where: "projection"})
		return b
	}
	b.projections = append(b.projections, p)
	return b
}

// Return adds alias projections.
func (b *Builder) Return(aliases ...string) *Builder {
	for _, a := range aliases {
		b.ReturnField(Projection{Path: a})
	}
	return b
}

// ReturnPath adds a JSONPath projection renamed to as.
func (b *Builder) ReturnPath(path, as string) *Builder {
	return b.ReturnField(Projection{Path: path, As: as})
}

// Limit sets the page window. Both values must be non-negative.
func (b *Builder) Limit(offset, count int) *Builder {
	if offset < 0 || count < 0 {
		b.errs = append(b.errs, fmt.Errorf("%w: offset %d, count %d", domain.ErrInvalidLimit, offset, count))
		return b
	}
	b.offset = offset
	b.limit = count
	return b
}

// Dialect selects the response dialect.
func (b *Builder) Dialect(d Dialect) *Builder {
	if !d.Valid() {
		b.errs = append(b.errs, fmt.Errorf("%w: %d", domain.ErrInvalidDialect, int(d)))
		return b
	}
	b.dialect = d
	return b
}

// Build returns the request or every problem found while building it.
func (b *Builder) Build() (SearchRequest, error) {
	errs := append(append([]error(nil), b.errs...), b.predErrs...)
	if b.predicate == "" {
		errs = append(errs, domain.ErrEmptyPredicate)
	}
	if b.index == "" {
		errs = append(errs, fmt.Errorf("%w: index name is required", domain.ErrInvalidSchema))
	}
	if len(errs) > 0 {
		return SearchRequest{}, errors.Join(errs...)
	}

	return SearchRequest{
		Index:       b.index,
		Predicate:   b.predicate,
		Projections: append([]Projection(nil), b.projections...),
		Offset:      b.offset,
		Limit:       b.limit,
		Dialect:     b.dialect,
	}, nil
}
