package chi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jsonidx/internal/db"
	"github.com/kailas-cloud/jsonidx/internal/domain"
	"github.com/kailas-cloud/jsonidx/internal/domain/aggregation"
	"github.com/kailas-cloud/jsonidx/internal/domain/query"
	"github.com/kailas-cloud/jsonidx/internal/domain/result"
	"github.com/kailas-cloud/jsonidx/internal/domain/schema"
	"github.com/kailas-cloud/jsonidx/internal/json"
	"github.com/kailas-cloud/jsonidx/internal/logger"
	"github.com/kailas-cloud/jsonidx/internal/metrics"
	"github.com/kailas-cloud/jsonidx/internal/repository/suggest"
	healthuc "github.com/kailas-cloud/jsonidx/internal/usecase/health"
)

const maxBodyBytes = 1 << 20

// Searcher runs built requests.
type Searcher interface {
	Search(ctx context.Context, req query.SearchRequest) (result.Page, error)
	Aggregate(ctx context.Context, req aggregation.Request) (result.Aggregation, error)
}

// Suggester reads the autocomplete dictionary.
type Suggester interface {
	Get(ctx context.Context, dict, prefix string, limit int, fuzzy bool) ([]suggest.Suggestion, error)
}

// IndexInspector reads index state.
type IndexInspector interface {
	Info(ctx context.Context, name string) (*db.IndexInfo, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves search, aggregation and autocomplete over one index definition.
type Server struct {
	def           schema.Definition
	target        string
	dictionary    string
	search        Searcher
	suggest       Suggester
	index         IndexInspector
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. Requests run against target (an
// index or alias of def) unless they name another one.
func NewServer(
	def schema.Definition, target, dictionary string,
	search Searcher, sugg Suggester, index IndexInspector, health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		def:        def,
		target:     target,
		dictionary: dictionary,
		search:     search,
		suggest:    sugg,
		index:      index,
		health:     health,
		logger:     logger,
	}
	s.errorHandlers = []errorHandler{
		typedHandler[*domain.UnknownFieldError](http.StatusBadRequest, CodeValidationFailed),
		typedHandler[*domain.FieldKindMismatchError](http.StatusBadRequest, CodeValidationFailed),
		typedHandler[*domain.InvalidJSONPathError](http.StatusBadRequest, CodeValidationFailed),
		typedHandler[*domain.InvalidAggregationOrderError](http.StatusBadRequest, CodeValidationFailed),
		typedHandler[*domain.ConnectionUnavailableError](http.StatusServiceUnavailable, CodeUnavailable),
		sentinelHandler(domain.ErrSchemaConflict, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidSchema, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidLimit, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidDialect, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrEmptyPredicate, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(db.ErrInvalidRequest, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(db.ErrIndexNotFound, http.StatusNotFound, CodeIndexNotFound),
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/v1", func(r chi.Router) {
		r.Post("/search", s.Search)
		r.Post("/aggregate", s.Aggregate)
		r.Get("/suggest", s.Suggest)
		r.Get("/index", s.IndexInfo)
	})
}

// Search handles POST /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decode(w, r, &req) {
		return
	}

	b := query.New(s.def).Index(s.indexOr(req.Index)).WithPredicate(req.Predicate)
	for _, p := range req.Return {
		b.ReturnField(query.Projection{Path: p.Path, As: p.As})
	}
	if req.Limit != nil || req.Offset != 0 {
		limit := query.DefaultLimit
		if req.Limit != nil {
			limit = *req.Limit
		}
		b.Limit(req.Offset, limit)
	}
	if req.Dialect != 0 {
		b.Dialect(query.Dialect(req.Dialect))
	}
	built, err := b.Build()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	page, err := s.search.Search(r.Context(), built)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := SearchResponse{Total: page.Total, Documents: make([]DocumentDTO, len(page.Documents))}
	for i, d := range page.Documents {
		fields, err := d.JSON()
		if err != nil {
			s.handleDomainError(w, r, fmt.Errorf("render %s: %w", d.Key, err))
			return
		}
		resp.Documents[i] = DocumentDTO{Key: d.Key, Fields: rawJSON(fields)}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Aggregate handles POST /v1/aggregate.
func (s *Server) Aggregate(w http.ResponseWriter, r *http.Request) {
	var req AggregateRequest
	if !decode(w, r, &req) {
		return
	}

	reducers := make([]aggregation.Reducer, len(req.Reducers))
	for i, rd := range req.Reducers {
		reducers[i] = aggregation.Reducer{Func: aggregation.ReduceFunc(rd.Func), Field: rd.Field, As: rd.As}
	}
	b := aggregation.New(s.def).
		Index(s.indexOr(req.Index)).
		WithPredicate(req.Predicate).
		GroupBy(req.GroupBy, reducers...).
		Filter(req.Filter)
	if req.Dialect != 0 {
		b.Dialect(query.Dialect(req.Dialect))
	}
	built, err := b.Build()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	agg, err := s.search.Aggregate(r.Context(), built)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	rows := make([]map[string]string, len(agg.Rows))
	for i, row := range agg.Rows {
		rows[i] = row
	}
	writeJSON(w, http.StatusOK, AggregateResponse{Total: agg.Total, Rows: rows})
}

// Suggest handles GET /v1/suggest?prefix=..&max=..&fuzzy=..
func (s *Server) Suggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	prefix := q.Get("prefix")
	if prefix == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "prefix is required")
		return
	}
	limit := 5
	if v := q.Get("max"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "max must be an integer")
			return
		}
		limit = n
	}
	fuzzy := q.Get("fuzzy") == "true"

	got, err := s.suggest.Get(r.Context(), s.dictionary, prefix, limit, fuzzy)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	items := make([]SuggestionDTO, len(got))
	for i, sg := range got {
		items[i] = SuggestionDTO{Term: sg.Term, Score: sg.Score}
	}
	writeJSON(w, http.StatusOK, items)
}

// IndexInfo handles GET /v1/index.
func (s *Server) IndexInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.index.Info(r.Context(), s.indexOr(r.URL.Query().Get("name")))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, IndexInfoResponse{
		Name:             info.Name,
		NumDocs:          info.NumDocs,
		Indexing:         info.Indexing,
		PercentIndexed:   info.PercentIndexed,
		IndexingFailures: info.IndexingFailures,
	})
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

func (s *Server) indexOr(name string) string {
	if name != "" {
		return name
	}
	return s.target
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	log.Warn("request failed", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

// typedHandler matches any error in the chain of type E.
func typedHandler[E error](status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		var target E
		if !errors.As(err, &target) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

type rawJSON string

func (r rawJSON) MarshalJSON() ([]byte, error) { return []byte(r), nil }

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"code":"internal_error","message":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// ObserveQueries wraps a Searcher so every call is recorded in the query metrics.
func ObserveQueries(s Searcher) Searcher {
	return observedSearcher{next: s}
}

type observedSearcher struct {
	next Searcher
}

func (o observedSearcher) Search(ctx context.Context, req query.SearchRequest) (result.Page, error) {
	start := time.Now()
	page, err := o.next.Search(ctx, req)
	metrics.ObserveQuery("search", time.Since(start), err)
	return page, err
}

func (o observedSearcher) Aggregate(ctx context.Context, req aggregation.Request) (result.Aggregation, error) {
	start := time.Now()
	agg, err := o.next.Aggregate(ctx, req)
	metrics.ObserveQuery("aggregate", time.Since(start), err)
	return agg, err
}
