package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/jsonidx/internal/domain"
	"github.com/kailas-cloud/jsonidx/internal/domain/schema"
)

func TestBuild_Defaults(t *testing.T) {
	req, err := New(schema.ZooEvents()).
		WithPredicate("@cost:[-inf 5.00]").
		Build()
	require.NoError(t, err)
	require.Equal(t, schema.EventsIndex, req.Index)
	require.Equal(t, DefaultLimit, req.Limit)
	require.Equal(t, 0, req.Offset)
	require.Equal(t, Dialect2, req.Dialect)
	require.Empty(t, req.Projections)
}

func TestBuild_MondayNotInHouse(t *testing.T) {
	req, err := New(schema.ZooEvents()).
		Index(schema.EventsAlias).
		WithPredicate("@days:{Mon} -@location:('House')").
		Return("location").
		ReturnPath("$.times.*.civilian", "first_event_time").
		ReturnPath("$.days", "days").
		ReturnPath("$.responsible-parties.hosts.[0].email", "contact_email").
		ReturnPath("$.responsible-parties.hosts.[0].phone", "contact_phone").
		Return("event_name").
		ReturnPath("$.times[2].military", "military1").
		ReturnPath("$.description", "").
		Limit(0, 3).
		Dialect(Dialect3).
		Build()
	require.NoError(t, err)
	require.Equal(t, schema.EventsAlias, req.Index)
	require.Len(t, req.Projections, 8)
	require.Equal(t, "$.description", req.Projections[7].Name())
	require.Equal(t, "first_event_time", req.Projections[1].Name())
	require.True(t, req.Dialect.MultiValue())
}

func TestBuild_UnknownAlias(t *testing.T) {
	_, err := New(schema.ZooEvents()).WithPredicate("@weekday:{Mon}").Build()
	var unknown *domain.UnknownFieldError
	require.True(t, errors.As(err, &unknown))
	require.Equal(t, "weekday", unknown.Field)
	require.Equal(t, "predicate", unknown.Where)
}

func TestBuild_UnknownAliasAfterApostrophe(t *testing.T) {
	_, err := New(schema.ZooEvents()).WithPredicate("@event_name:(Bob's) @bogus:{x}").Build()
	var unknown *domain.UnknownFieldError
	require.True(t, errors.As(err, &unknown), "got %v", err)
	require.Equal(t, "bogus", unknown.Field)

	_, err = New(schema.ZooEvents()).WithPredicate(`@location:"Gorilla House" @bogus:{x}`).Build()
	require.True(t, errors.As(err, &unknown), "got %v", err)
}

func TestBuild_MultiFieldText(t *testing.T) {
	req, err := New(schema.ZooEvents()).WithPredicate("@event_name|location:(gorilla)").Build()
	require.NoError(t, err)
	require.Equal(t, "@event_name|location:(gorilla)", req.Predicate)

	_, err = New(schema.ZooEvents()).WithPredicate("@event_name|weekday:(gorilla)").Build()
	var unknown *domain.UnknownFieldError
	require.True(t, errors.As(err, &unknown))
	require.Equal(t, "weekday", unknown.Field)

	_, err = New(schema.ZooEvents()).WithPredicate("@event_name|cost:(gorilla)").Build()
	var mismatch *domain.FieldKindMismatchError
	require.True(t, errors.As(err, &mismatch))
	require.Equal(t, "cost", mismatch.Field)
}

func TestBuild_PredicateReplaced(t *testing.T) {
	b := New(schema.ZooEvents()).WithPredicate("@weekday:{Mon}")
	_, err := b.Build()
	require.Error(t, err)

	req, err := b.WithPredicate("@days:{Mon}").Build()
	require.NoError(t, err)
	require.Equal(t, "@days:{Mon}", req.Predicate)
}

func TestBuild_UnknownProjection(t *testing.T) {
	_, err := New(schema.ZooEvents()).WithPredicate("*").Return("price").Build()
	var unknown *domain.UnknownFieldError
	require.True(t, errors.As(err, &unknown))
	require.Equal(t, "projection", unknown.Where)
}

func TestBuild_KindMismatch(t *testing.T) {
	tests := []struct {
		name      string
		predicate string
		field     string
	}{
		{"numeric range on tag", "@days:[1 2]", "days"},
		{"tag match on numeric", "@cost:{5}", "cost"},
		{"tag match on text", "@location:{House}", "location"},
		{"range on text", "@event_name:[0 1]", "event_name"},
		{"empty text term", "@location:", "location"},
		{"bare reference", "@cost > 5", "cost"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(schema.ZooEvents()).WithPredicate(tc.predicate).Build()
			var mismatch *domain.FieldKindMismatchError
			require.True(t, errors.As(err, &mismatch), "got %v", err)
			require.Equal(t, tc.field, mismatch.Field)
		})
	}
}

func TestBuild_InvalidJSONPath(t *testing.T) {
	_, err := New(schema.ZooEvents()).
		WithPredicate("*").
		ReturnPath("$.times[2.military", "m").
		Build()
	var pathErr *domain.InvalidJSONPathError
	require.True(t, errors.As(err, &pathErr))
}

func TestBuild_InvalidLimitAndDialect(t *testing.T) {
	_, err := New(schema.ZooEvents()).
		WithPredicate("*").
		Limit(-1, 3).
		Dialect(Dialect(7)).
		Build()
	require.ErrorIs(t, err, domain.ErrInvalidLimit)
	require.ErrorIs(t, err, domain.ErrInvalidDialect)
}

func TestBuild_EmptyPredicate(t *testing.T) {
	_, err := New(schema.ZooEvents()).Build()
	require.ErrorIs(t, err, domain.ErrEmptyPredicate)
}

func TestBuild_AccumulatesErrors(t *testing.T) {
	_, err := New(schema.ZooEvents()).
		WithPredicate("@nope:{x} @cost:{1}").
		Return("missing").
		Build()

	var unknown *domain.UnknownFieldError
	var mismatch *domain.FieldKindMismatchError
	require.True(t, errors.As(err, &unknown))
	require.True(t, errors.As(err, &mismatch))
}

func TestParseDialect(t *testing.T) {
	d, err := ParseDialect(0)
	require.NoError(t, err)
	require.Equal(t, DefaultDialect, d)

	d, err = ParseDialect(3)
	require.NoError(t, err)
	require.True(t, d.MultiValue())
	require.False(t, Dialect1.MultiValue())

	_, err = ParseDialect(4)
	require.ErrorIs(t, err, domain.ErrInvalidDialect)
}
