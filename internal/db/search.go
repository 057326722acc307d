package db

// ReturnField is one RETURN projection: a field alias or a JSONPath, optionally renamed.
type ReturnField struct {
	Path string
	As   string
}

// Name is the key the store uses for this projection in the reply.
func (r ReturnField) Name() string {
	if r.As != "" {
		return r.As
	}
	return r.Path
}

// SearchQuery is the input for FT.SEARCH.
type SearchQuery struct {
	IndexName    string
	Query        string
	ReturnFields []ReturnField
	Offset       int
	Limit        int
	Dialect      int
	NoContent    bool
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
// Fields keeps reply order; values are raw strings as sent by the store.
type SearchEntry struct {
	Key    string
	Fields []FieldValue
}

// FieldValue is one name/value pair of a search hit.
type FieldValue struct {
	Name  string
	Value string
}

// Reducer is one REDUCE clause of FT.AGGREGATE.
type Reducer struct {
	Func string
	Args []string
	As   string
}

// AggregateQuery is the input for FT.AGGREGATE.
type AggregateQuery struct {
	IndexName string
	Query     string
	GroupBy   []string
	Reducers  []Reducer
	Filter    string
	Dialect   int
}

// AggregateResult is the output of an aggregation.
type AggregateResult struct {
	Total int
	Rows  []map[string]string
}

// Suggestion is one FT.SUGGET hit.
type Suggestion struct {
	Term  string
	Score float64
}
