package workflow

import (
	"errors"

	"github.com/kailas-cloud/jsonidx/internal/domain/aggregation"
	"github.com/kailas-cloud/jsonidx/internal/domain/query"
	"github.com/kailas-cloud/jsonidx/internal/domain/schema"
)

// NamedSearch is one entry of the built-in query set.
type NamedSearch struct {
	Name    string
	Request query.SearchRequest
}

// Searches builds the three sample searches against target (an index or
// alias of def).
func Searches(def schema.Definition, target string, limit int, d query.Dialect) ([]NamedSearch, error) {
	base := func(predicate string) *query.Builder {
		return query.New(def).Index(target).WithPredicate(predicate).Limit(0, limit).Dialect(d)
	}

	builders := []struct {
		name string
		b    *query.Builder
	}{
		{
			name: "monday-outside-houses",
			b: base(query.And(query.TagMatch("days", "Mon"), query.Not(query.TextMatch("location", "House")))).
				Return("location").
				ReturnPath("$.times.*.civilian", "first_event_time").
				ReturnPath("$.days", "days").
				ReturnPath("$.responsible-parties.hosts.[0].email", "contact_email").
				ReturnPath("$.responsible-parties.hosts.[0].phone", "contact_phone").
				Return("event_name").
				ReturnPath("$.times[2].military", "military1").
				ReturnPath("$.description", ""),
		},
		{
			name: "monday-tuesday-8am",
			b: base(query.And(query.TagMatch("days", "Mon"), query.TagMatch("days", "Tue"), query.TagPrefix("times", "08"))).
				Return("location").
				ReturnPath("$.times.*.civilian", "first_event_time").
				ReturnPath("$.times", "all_times").
				ReturnPath("$.days", "days").
				ReturnPath("$.responsible-parties.hosts", "hosts").
				Return("event_name").
				ReturnPath("$.responsible-parties.number_of_contacts", "hosts_size"),
		},
		{
			name: "cheap",
			b: base(query.NumericRange("cost", query.NegInf, query.Bound(5))).
				Return("location").
				ReturnPath("$.times.*.civilian", "first_event_time").
				ReturnPath("$.times.[1].civilian", "second_event_time").
				ReturnPath("$.times", "all_times").
				ReturnPath("$.days", "days").
				Return("event_name").
				ReturnPath("$.cost", "cost_in_us_dollars"),
		},
	}

	out := make([]NamedSearch, 0, len(builders))
	var errs []error
	for _, nb := range builders {
		req, err := nb.b.Build()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, NamedSearch{Name: nb.name, Request: req})
	}
	return out, errors.Join(errs...)
}

// PricedByLocation counts events costing at least 9.00 per location.
func PricedByLocation(def schema.Definition, target string, d query.Dialect) (aggregation.Request, error) {
	return aggregation.New(def).
		Index(target).
		WithPredicate(query.NumericRange("cost", query.Bound(9), query.PosInf)).
		GroupBy([]string{"location"}, aggregation.CountAs("event_match_count")).
		Dialect(d).
		Build()
}
