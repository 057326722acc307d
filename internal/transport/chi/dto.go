package chi

// ErrorCode is a stable machine-readable error identifier.
type ErrorCode string

const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeIndexNotFound    ErrorCode = "index_not_found"
	CodeUnavailable      ErrorCode = "store_unavailable"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ProjectionDTO is one RETURN entry.
type ProjectionDTO struct {
	Path string `json:"path"`
	As   string `json:"as,omitempty"`
}

// SearchRequest is the body of POST /v1/search.
type SearchRequest struct {
	Index     string          `json:"index,omitempty"`
	Predicate string          `json:"predicate"`
	Return    []ProjectionDTO `json:"return,omitempty"`
	Offset    int             `json:"offset,omitempty"`
	Limit     *int            `json:"limit,omitempty"`
	Dialect   int             `json:"dialect,omitempty"`
}

// DocumentDTO is one projected hit. Fields is the JSON object rendered
// from the projections.
type DocumentDTO struct {
	Key    string `json:"key"`
	Fields any    `json:"fields"`
}

// SearchResponse is the reply of POST /v1/search.
type SearchResponse struct {
	Total     int           `json:"total"`
	Documents []DocumentDTO `json:"documents"`
}

// ReducerDTO is one REDUCE entry.
type ReducerDTO struct {
	Func  string `json:"func"`
	Field string `json:"field,omitempty"`
	As    string `json:"as,omitempty"`
}

// AggregateRequest is the body of POST /v1/aggregate.
type AggregateRequest struct {
	Index     string       `json:"index,omitempty"`
	Predicate string       `json:"predicate,omitempty"`
	GroupBy   []string     `json:"group_by"`
	Reducers  []ReducerDTO `json:"reducers"`
	Filter    string       `json:"filter,omitempty"`
	Dialect   int          `json:"dialect,omitempty"`
}

// AggregateResponse is the reply of POST /v1/aggregate.
type AggregateResponse struct {
	Total int                 `json:"total"`
	Rows  []map[string]string `json:"rows"`
}

// SuggestionDTO is one completion.
type SuggestionDTO struct {
	Term  string  `json:"term"`
	Score float64 `json:"score"`
}

// IndexInfoResponse is the reply of GET /v1/index.
type IndexInfoResponse struct {
	Name             string  `json:"name"`
	NumDocs          int64   `json:"num_docs"`
	Indexing         bool    `json:"indexing"`
	PercentIndexed   float64 `json:"percent_indexed"`
	IndexingFailures int64   `json:"indexing_failures"`
}

// HealthResponse is the reply of GET /healthz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
