package jsonidx

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/kailas-cloud/jsonidx/internal/domain/schema"
)

const tagKey = "jsonidx"

// schemaMeta holds parsed struct tag metadata, cached per TypedIndex.
type schemaMeta struct {
	typ    reflect.Type
	keyIdx int
	fields []schema.FieldMapping
}

// parseSchema reflects on T and extracts jsonidx struct tag metadata.
//
// Tag grammar: `jsonidx:"<alias>,<kind>[,sortable][,path=<jsonpath>][,weight=<n>][,phonetic=<matcher>][,separator=<c>]"`
// or `jsonidx:",key"` for the field holding the document id. The JSONPath
// defaults to $.<json name>, with [*] appended for slices.
func parseSchema[T any]() (*schemaMeta, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("jsonidx: type %v is not a struct", t)
	}

	meta := &schemaMeta{typ: t, keyIdx: -1}
	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get(tagKey)
		if tag == "" || tag == "-" {
			continue
		}
		if err := applyTag(meta, i, f, tag); err != nil {
			return nil, err
		}
	}

	if meta.keyIdx == -1 {
		return nil, fmt.Errorf("jsonidx: no field with `jsonidx:\",key\"` tag in %s", t)
	}
	if len(meta.fields) == 0 {
		return nil, fmt.Errorf("jsonidx: no indexed fields in %s", t)
	}
	return meta, nil
}

// applyTag processes a single struct field's jsonidx tag.
func applyTag(meta *schemaMeta, idx int, f reflect.StructField, tag string) error {
	parts := strings.Split(tag, ",")
	alias := parts[0]

	if len(parts) == 2 && parts[1] == "key" {
		if meta.keyIdx != -1 {
			return fmt.Errorf("jsonidx: duplicate key tag on field %s", f.Name)
		}
		meta.keyIdx = idx
		return nil
	}
	if len(parts) < 2 {
		return fmt.Errorf("jsonidx: field %s: missing kind in tag %q", f.Name, tag)
	}

	kind, err := schema.ParseKind(parts[1])
	if err != nil {
		return fmt.Errorf("jsonidx: field %s: %w", f.Name, err)
	}
	if alias == "" {
		alias = jsonName(f)
	}
	fm := schema.FieldMapping{Path: defaultPath(f), Alias: alias, Kind: kind}

	for _, opt := range parts[2:] {
		name, val, _ := strings.Cut(opt, "=")
		switch name {
		case "sortable":
			fm.Sortable = true
		case "path":
			fm.Path = val
		case "weight":
			w, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("jsonidx: field %s: weight %q: %w", f.Name, val, err)
			}
			fm.Weight = w
		case "phonetic":
			fm.Phonetic = val
		case "separator":
			fm.Separator = val
		default:
			return fmt.Errorf("jsonidx: unknown option %q on field %s", name, f.Name)
		}
	}

	meta.fields = append(meta.fields, fm)
	return nil
}

// jsonName is the key encoding/json would use for f.
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

func defaultPath(f reflect.StructField) string {
	p := "$." + jsonName(f)
	if k := f.Type.Kind(); k == reflect.Slice || k == reflect.Array {
		p += "[*]"
	}
	return p
}

// definition names the parsed schema.
func (m *schemaMeta) definition(name, prefix string) schema.Definition {
	fields := make([]schema.FieldMapping, len(m.fields))
	copy(fields, m.fields)
	return schema.Definition{Name: name, Prefixes: []string{prefix}, Fields: fields}
}

// key returns the document id held by item's key field.
func (m *schemaMeta) key(item any) (string, error) {
	v := reflect.ValueOf(item)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	id := fmt.Sprint(v.Field(m.keyIdx).Interface())
	if id == "" {
		return "", fmt.Errorf("jsonidx: empty key in field %s", m.typ.Field(m.keyIdx).Name)
	}
	return id, nil
}

// setKey writes id back into the key field when it is a string.
func (m *schemaMeta) setKey(v reflect.Value, id string) {
	f := v.Field(m.keyIdx)
	if f.Kind() == reflect.String && f.CanSet() {
		f.SetString(id)
	}
}
