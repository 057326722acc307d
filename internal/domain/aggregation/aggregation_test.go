package aggregation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/jsonidx/internal/domain"
	"github.com/kailas-cloud/jsonidx/internal/domain/query"
	"github.com/kailas-cloud/jsonidx/internal/domain/schema"
)

func TestBuild_CostlyEventsByLocation(t *testing.T) {
	req, err := New(schema.ZooEvents()).
		Index(schema.EventsAlias).
		WithPredicate("@cost:[9.00 +inf]").
		GroupBy([]string{"@location"}, CountAs("event_match_count")).
		Build()
	require.NoError(t, err)
	require.Equal(t, Request{
		Index:     schema.EventsAlias,
		Predicate: "@cost:[9.00 +inf]",
		GroupBy:   []string{"@location"},
		Reducers:  []Reducer{{Func: Count, As: "event_match_count"}},
		Dialect:   query.Dialect2,
	}, req)
}

func TestReducer_Alias(t *testing.T) {
	require.Equal(t, "count", Reducer{Func: Count}.Alias())
	require.Equal(t, "avg_cost", Reducer{Func: Avg, Field: "@cost"}.Alias())
	require.Equal(t, "n", CountAs("n").Alias())
}

func TestBuild_AllReducers(t *testing.T) {
	req, err := New(schema.ZooEvents()).
		GroupBy([]string{"location"},
			CountAs(""),
			CountDistinctOf("event_name", ""),
			SumOf("cost", ""),
			MinOf("@cost", ""),
			MaxOf("cost", ""),
			AvgOf("cost", ""),
			ToListOf("event_name", "names"),
		).
		Filter("@sum_cost > 10 && @count >= 1").
		Build()
	require.NoError(t, err)
	require.Equal(t, "*", req.Predicate)
	require.Len(t, req.Reducers, 7)
	require.Equal(t, "cost", req.Reducers[3].Field)
}

func TestBuild_UnknownGroupBy(t *testing.T) {
	_, err := New(schema.ZooEvents()).GroupBy([]string{"@zone"}, CountAs("n")).Build()
	var unknown *domain.UnknownFieldError
	require.True(t, errors.As(err, &unknown))
	require.Equal(t, "group-by", unknown.Where)
}

func TestBuild_ReducerAliasInPredicate(t *testing.T) {
	_, err := New(schema.ZooEvents()).
		WithPredicate("@event_match_count:[2 +inf]").
		GroupBy([]string{"location"}, CountAs("event_match_count")).
		Build()
	var order *domain.InvalidAggregationOrderError
	require.True(t, errors.As(err, &order), "got %v", err)
	require.Equal(t, "event_match_count", order.Alias)
}

func TestBuild_FilterUnknownReference(t *testing.T) {
	_, err := New(schema.ZooEvents()).
		GroupBy([]string{"location"}, CountAs("n")).
		Filter("@cost > 1").
		Build()
	var unknown *domain.UnknownFieldError
	require.True(t, errors.As(err, &unknown))
	require.Equal(t, "filter", unknown.Where)
}

func TestBuild_ReducerErrors(t *testing.T) {
	tests := []struct {
		name    string
		reducer Reducer
	}{
		{"unknown func", Reducer{Func: "MEDIAN", Field: "cost"}},
		{"count with field", Reducer{Func: Count, Field: "cost"}},
		{"sum without field", Reducer{Func: Sum}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(schema.ZooEvents()).GroupBy([]string{"location"}, tc.reducer).Build()
			require.ErrorIs(t, err, domain.ErrInvalidSchema)
		})
	}

	_, err := New(schema.ZooEvents()).GroupBy([]string{"location"}, SumOf("price", "")).Build()
	var unknown *domain.UnknownFieldError
	require.True(t, errors.As(err, &unknown))
}

func TestBuild_DuplicateOutput(t *testing.T) {
	_, err := New(schema.ZooEvents()).
		GroupBy([]string{"location"}, CountAs("n"), SumOf("cost", "n")).
		Build()
	require.ErrorIs(t, err, domain.ErrSchemaConflict)

	_, err = New(schema.ZooEvents()).
		GroupBy([]string{"location"}, CountAs("location")).
		Build()
	require.ErrorIs(t, err, domain.ErrSchemaConflict)
}

func TestBuild_FilterWithoutGroupBy(t *testing.T) {
	_, err := New(schema.ZooEvents()).Filter("@cost > 1").Build()
	require.ErrorIs(t, err, domain.ErrInvalidSchema)
}
