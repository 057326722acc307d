package jsonidx

import (
	"github.com/kailas-cloud/jsonidx/internal/db"
	"github.com/kailas-cloud/jsonidx/internal/domain/aggregation"
	"github.com/kailas-cloud/jsonidx/internal/domain/query"
	"github.com/kailas-cloud/jsonidx/internal/domain/result"
	"github.com/kailas-cloud/jsonidx/internal/domain/schema"
	"github.com/kailas-cloud/jsonidx/internal/repository/suggest"
	"github.com/kailas-cloud/jsonidx/internal/usecase/bulkload"
)

// Schema and request types.
type (
	Definition   = schema.Definition
	FieldMapping = schema.FieldMapping
	FieldKind    = schema.FieldKind

	Dialect            = query.Dialect
	Projection         = query.Projection
	SearchRequest      = query.SearchRequest
	QueryBuilder       = query.Builder
	AggregateRequest   = aggregation.Request
	AggregationBuilder = aggregation.Builder
	Reducer            = aggregation.Reducer
)

// Result types.
type (
	Page        = result.Page
	Document    = result.Document
	Field       = result.Field
	Aggregation = result.Aggregation
	Row         = result.Row
	IndexInfo   = db.IndexInfo
	Suggestion  = suggest.Suggestion
	Item        = bulkload.Item
	LoadReport  = bulkload.Report
)

const (
	FieldText    = schema.Text
	FieldNumeric = schema.Numeric
	FieldTag     = schema.Tag

	Dialect1 = query.Dialect1
	Dialect2 = query.Dialect2
	Dialect3 = query.Dialect3
)

// NewQuery starts a search request against def.
func NewQuery(def Definition) *QueryBuilder { return query.New(def) }

// NewAggregation starts an aggregation request against def.
func NewAggregation(def Definition) *AggregationBuilder { return aggregation.New(def) }

// ZooEvents is the sample activity index.
func ZooEvents() Definition { return schema.ZooEvents() }

// Reducer constructors.
var (
	CountAs         = aggregation.CountAs
	CountDistinctOf = aggregation.CountDistinctOf
	SumOf           = aggregation.SumOf
	MinOf           = aggregation.MinOf
	MaxOf           = aggregation.MaxOf
	AvgOf           = aggregation.AvgOf
	ToListOf        = aggregation.ToListOf
)
