package search

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/kailas-cloud/jsonidx/internal/db"
	"github.com/kailas-cloud/jsonidx/internal/domain/query"
	"github.com/kailas-cloud/jsonidx/internal/domain/result"
)

// Projector turns raw store replies into result types. The dialect decides
// whether a returned value is one value or a JSON array of every match; the
// projections decide how single values are typed.
type Projector struct {
	dialect   query.Dialect
	encodings map[string]query.Encoding
}

// NewProjector returns a projector for replies produced under d.
// An unset dialect is treated as the default.
func NewProjector(d query.Dialect, projections ...query.Projection) Projector {
	if !d.Valid() {
		d = query.DefaultDialect
	}
	enc := make(map[string]query.Encoding, len(projections))
	for _, pr := range projections {
		enc[pr.Name()] = pr.Encoding
	}
	return Projector{dialect: d, encodings: enc}
}

// Page projects a search reply.
func (p Projector) Page(sr *db.SearchResult) result.Page {
	if sr == nil {
		return result.Page{}
	}
	docs := make([]result.Document, len(sr.Entries))
	for i, e := range sr.Entries {
		docs[i] = p.Document(e)
	}
	return result.Page{Total: sr.Total, Documents: docs}
}

// Document projects a single hit. Field order follows the reply.
func (p Projector) Document(e db.SearchEntry) result.Document {
	fields := make([]result.Field, len(e.Fields))
	for i, fv := range e.Fields {
		fields[i] = p.field(fv)
	}
	return result.Document{Key: e.Key, Fields: fields}
}

func (p Projector) field(fv db.FieldValue) result.Field {
	f := result.Field{Name: fv.Name, Raw: fv.Value}
	if p.dialect.MultiValue() {
		f.Multi = true
		if parsed := gjson.Parse(fv.Value); parsed.IsArray() && gjson.Valid(fv.Value) {
			// The store sends every match JSON-encoded; keep it as is.
			f.JSON = true
			for _, v := range parsed.Array() {
				f.Values = append(f.Values, scalar(v))
			}
			return f
		}
	}
	f.Values = []string{fv.Value}
	f.JSON = p.singleIsJSON(fv)
	return f
}

// singleIsJSON decides whether a single-value reply is embedded as JSON.
// Strings that merely look like numbers ("1500", "0800") stay strings.
func (p Projector) singleIsJSON(fv db.FieldValue) bool {
	v := strings.TrimSpace(fv.Value)
	if v == "" || !gjson.Valid(v) {
		return false
	}
	switch p.encodings[fv.Name] {
	case query.EncodeNumber:
		return gjson.Parse(v).Type == gjson.Number
	case query.EncodeString:
		return false
	default:
		return v[0] == '{' || v[0] == '['
	}
}

// scalar unquotes JSON strings and keeps every other value as raw JSON.
func scalar(v gjson.Result) string {
	if v.Type == gjson.String {
		return v.Str
	}
	return strings.TrimSpace(v.Raw)
}

// Aggregation projects an aggregate reply.
func (p Projector) Aggregation(ar *db.AggregateResult) result.Aggregation {
	if ar == nil {
		return result.Aggregation{}
	}
	rows := make([]result.Row, len(ar.Rows))
	for i, r := range ar.Rows {
		row := make(result.Row, len(r))
		for k, v := range r {
			row[k] = v
		}
		rows[i] = row
	}
	return result.Aggregation{Total: ar.Total, Rows: rows}
}
