// Package result holds projected search hits and aggregation rows.
package result

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Field is one projected value of a hit. Values holds a single entry for
// single-value dialects and every JSONPath match for multi-value dialects.
// JSON marks Raw as JSON text to embed unchanged when rendering.
type Field struct {
	Name   string
	Raw    string
	Values []string
	Multi  bool
	JSON   bool
}

// Value returns the first value, or "" when the path matched nothing.
func (f Field) Value() string {
	if len(f.Values) == 0 {
		return ""
	}
	return f.Values[0]
}

// Document is a search hit with its projected fields in RETURN order.
type Document struct {
	Key    string
	Fields []Field
}

// Get looks up a projected field by name.
func (d Document) Get(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Value returns the first value of the named field.
func (d Document) Value(name string) string {
	f, _ := d.Get(name)
	return f.Value()
}

// JSON renders the projected fields as one JSON object keyed by field name.
// Fields marked JSON are embedded as returned by the store, everything else
// is a string.
func (d Document) JSON() (string, error) {
	out := "{}"
	for _, f := range d.Fields {
		path := escapeKey(f.Name)
		var err error
		switch {
		case f.JSON:
			if !gjson.Valid(f.Raw) {
				return "", fmt.Errorf("field %s: invalid JSON %q", f.Name, f.Raw)
			}
			out, err = sjson.SetRaw(out, path, f.Raw)
		case f.Multi:
			arr := "[]"
			for _, v := range f.Values {
				if arr, err = sjson.Set(arr, "-1", v); err != nil {
					return "", fmt.Errorf("field %s: %w", f.Name, err)
				}
			}
			out, err = sjson.SetRaw(out, path, arr)
		default:
			out, err = sjson.Set(out, path, f.Value())
		}
		if err != nil {
			return "", fmt.Errorf("field %s: %w", f.Name, err)
		}
	}
	return out, nil
}

var keyEscaper = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`*`, `\*`,
	`?`, `\?`,
	`|`, `\|`,
	`#`, `\#`,
	`@`, `\@`,
	`:`, `\:`,
)

// escapeKey makes a projection name such as "$.description" usable as a
// single sjson key.
func escapeKey(name string) string {
	return keyEscaper.Replace(name)
}

// Page is one window of search hits. Total counts all matches, not just
// the returned documents.
type Page struct {
	Total     int
	Documents []Document
}

// Keys returns the document keys in reply order.
func (p Page) Keys() []string {
	keys := make([]string, len(p.Documents))
	for i, d := range p.Documents {
		keys[i] = d.Key
	}
	return keys
}

// Row is one aggregation output row, column -> value.
type Row map[string]string

// Int parses a column as an integer.
func (r Row) Int(col string) (int64, error) {
	v, ok := r[col]
	if !ok {
		return 0, fmt.Errorf("column %q not in row", col)
	}
	return strconv.ParseInt(v, 10, 64)
}

// Float parses a column as a float.
func (r Row) Float(col string) (float64, error) {
	v, ok := r[col]
	if !ok {
		return 0, fmt.Errorf("column %q not in row", col)
	}
	return strconv.ParseFloat(v, 64)
}

// Aggregation is the full output of an aggregation. Row order is chosen by
// the store.
type Aggregation struct {
	Total int
	Rows  []Row
}
