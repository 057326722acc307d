// Package schema declares how JSON documents are indexed: which JSONPath
// feeds which alias, and with what field kind.
package schema

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/kailas-cloud/jsonidx/internal/domain"
	"github.com/kailas-cloud/jsonidx/internal/domain/jsonpath"
)

var identRegex = regexp.MustCompile(`^[a-zA-Z0-9_:-]+$`)

// aliasRegex matches names usable after @ in a query predicate.
var aliasRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// FieldKind is the index type of a field.
type FieldKind int

const (
	// Text is full-text searchable (stemming, optional phonetics and weight).
	Text FieldKind = iota
	// Numeric supports range predicates and sorting.
	Numeric
	// Tag supports exact-match set membership.
	Tag
)

func (k FieldKind) String() string {
	switch k {
	case Text:
		return "TEXT"
	case Numeric:
		return "NUMERIC"
	case Tag:
		return "TAG"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// ParseKind accepts TEXT, NUMERIC or TAG in any case.
func ParseKind(s string) (FieldKind, error) {
	switch strings.ToUpper(s) {
	case "TEXT":
		return Text, nil
	case "NUMERIC":
		return Numeric, nil
	case "TAG":
		return Tag, nil
	}
	return 0, fmt.Errorf("%w: unknown field kind %q", domain.ErrInvalidSchema, s)
}

// FieldMapping maps one JSONPath in the stored document to a queryable alias.
type FieldMapping struct {
	Path     string
	Alias    string
	Kind     FieldKind
	Weight   float64 // TEXT only; 0 means store default
	Sortable bool
	Phonetic string // TEXT only, e.g. "dm:en"
	// Separator is the TAG separator; empty means the store default (",").
	Separator string
}

// Definition is a named JSON index over every key matching one of Prefixes.
// It is the single source of truth for alias -> kind lookups.
type Definition struct {
	Name     string
	Prefixes []string
	Fields   []FieldMapping
}

// Validate checks the definition without touching the network.
// Duplicate aliases fail with domain.ErrSchemaConflict; other structural
// problems fail with domain.ErrInvalidSchema or *domain.InvalidJSONPathError.
func (d Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: index name is required", domain.ErrInvalidSchema)
	}
	if !identRegex.MatchString(d.Name) {
		return fmt.Errorf("%w: index name %q contains invalid characters", domain.ErrInvalidSchema, d.Name)
	}
	if len(d.Fields) == 0 {
		return fmt.Errorf("%w: at least one field is required", domain.ErrInvalidSchema)
	}

	seen := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		if err := f.validate(); err != nil {
			return err
		}
		if seen[f.Alias] {
			return fmt.Errorf("%w: duplicate alias %q", domain.ErrSchemaConflict, f.Alias)
		}
		seen[f.Alias] = true
	}
	return nil
}

func (f FieldMapping) validate() error {
	if err := jsonpath.Validate(f.Path); err != nil {
		return err
	}
	if !aliasRegex.MatchString(f.Alias) {
		return fmt.Errorf("%w: alias %q for %s must be a plain identifier", domain.ErrInvalidSchema, f.Alias, f.Path)
	}
	switch f.Kind {
	case Text, Numeric, Tag:
	default:
		return fmt.Errorf("%w: field %q has unknown kind %d", domain.ErrInvalidSchema, f.Alias, int(f.Kind))
	}
	if f.Weight < 0 {
		return fmt.Errorf("%w: field %q has negative weight", domain.ErrInvalidSchema, f.Alias)
	}
	if f.Weight > 0 && f.Kind != Text {
		return fmt.Errorf("%w: weight on %s field %q", domain.ErrInvalidSchema, f.Kind, f.Alias)
	}
	if f.Phonetic != "" && f.Kind != Text {
		return fmt.Errorf("%w: phonetic matcher on %s field %q", domain.ErrInvalidSchema, f.Kind, f.Alias)
	}
	if f.Separator != "" && (f.Kind != Tag || len(f.Separator) != 1) {
		return fmt.Errorf("%w: separator on field %q must be a single character on a TAG field", domain.ErrInvalidSchema, f.Alias)
	}
	return nil
}

// Field looks up a mapping by alias.
func (d Definition) Field(alias string) (FieldMapping, bool) {
	for _, f := range d.Fields {
		if f.Alias == alias {
			return f, true
		}
	}
	return FieldMapping{}, false
}

// Kind returns the kind of the field behind alias.
func (d Definition) Kind(alias string) (FieldKind, bool) {
	f, ok := d.Field(alias)
	return f.Kind, ok
}

// Aliases returns the aliases in declaration order.
func (d Definition) Aliases() []string {
	out := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		out = append(out, f.Alias)
	}
	return out
}

// Alias is a secondary name resolving to a real index. Re-pointing an alias
// lets readers switch indexes without changing their queries.
type Alias struct {
	Name   string
	Target string
}

// Validate rejects empty names and names that shadow a real index.
func (a Alias) Validate(indexes []string) error {
	if !identRegex.MatchString(a.Name) {
		return fmt.Errorf("%w: alias name %q contains invalid characters", domain.ErrInvalidSchema, a.Name)
	}
	if a.Target == "" {
		return fmt.Errorf("%w: alias %q has no target", domain.ErrInvalidSchema, a.Name)
	}
	if a.Name == a.Target || slices.Contains(indexes, a.Name) {
		return fmt.Errorf("%w: %q", domain.ErrAliasCollision, a.Name)
	}
	return nil
}
