package workflow

import (
	"context"
	"errors"
	"math/rand/v2"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/jsonidx/internal/db"
	"github.com/kailas-cloud/jsonidx/internal/domain"
)

func hitNames(out SearchOutcome) []string {
	var n []string
	for _, d := range out.Page.Documents {
		n = append(n, d.Value("event_name"))
	}
	sort.Strings(n)
	return n
}

func TestRun_Fixtures(t *testing.T) {
	f := newFixture(t)

	out, err := f.svc.Run(context.Background(), Flags{SuggestTrials: 3, Seed: 42})
	require.NoError(t, err)
	require.NotEmpty(t, out.RunID)

	steps := f.rec.all()
	require.Equal(t, []string{
		"recreate idx_zew_events idxa_zew_events",
		"wait idx_zew_events",
		"del zew:activities:gf zew:activities:bl",
		"load",
	}, steps[:4])
	require.Equal(t, "populate", steps[len(steps)-1])

	require.Equal(t, 2, out.Load.Documents)
	require.Len(t, out.Searches, 3)
	for _, s := range out.Searches {
		require.NoError(t, s.Err)
		require.Equal(t, "idxa_zew_events", s.Request.Index)
		require.Equal(t, 3, s.Request.Limit)
	}
	require.Equal(t, []string{"Bonobo Lecture"}, hitNames(out.Searches[0]))
	require.Equal(t, []string{"Gorilla Feeding"}, hitNames(out.Searches[1]))
	require.Equal(t, []string{"Gorilla Feeding"}, hitNames(out.Searches[2]))

	require.NoError(t, out.Aggregation.Err)
	require.Len(t, out.Aggregation.Result.Rows, 1)
	n, err := out.Aggregation.Result.Rows[0].Int("event_match_count")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	require.ElementsMatch(t, []string{"Gorilla Feeding", "Bonobo Lecture"}, f.sugg.terms)
	require.Len(t, out.Suggestions, 3)
	for _, s := range out.Suggestions {
		require.NoError(t, s.Err)
		require.GreaterOrEqual(t, len([]rune(s.Prefix)), 2)
		require.NotEmpty(t, s.Suggestions, "prefix %q comes from a loaded name", s.Prefix)
	}
}

func TestRun_GeneratedQuantity(t *testing.T) {
	f := newFixture(t)

	out, err := f.svc.Run(context.Background(), Flags{Quantity: 25, Seed: 1})
	require.NoError(t, err)
	require.Equal(t, 25, out.Load.Documents)
	require.Contains(t, f.loader.docs, "zew:activities:25")
	require.Contains(t, f.loader.docs, "zew:activities:1")
	require.Empty(t, out.Suggestions)
	require.Empty(t, f.deleter.keys, "generated runs keep existing keys")
}

func TestRun_FixtureKeysDeleteFailureContinues(t *testing.T) {
	f := newFixture(t)
	f.deleter.err = errors.New("READONLY")

	out, err := f.svc.Run(context.Background(), Flags{})
	require.NoError(t, err)
	require.Equal(t, []string{"zew:activities:gf", "zew:activities:bl"}, f.deleter.keys)
	require.Equal(t, 2, out.Load.Documents)
}

func TestRun_ZeroLimitIsKept(t *testing.T) {
	f := newFixture(t)
	zero := 0

	out, err := f.svc.Run(context.Background(), Flags{Limit: &zero})
	require.NoError(t, err)
	for _, s := range out.Searches {
		require.Equal(t, 0, s.Request.Limit)
	}
}

func TestRun_TimingsUseInjectedClock(t *testing.T) {
	f := newFixture(t)
	f.sugg.clock = f.clock
	f.sugg.lookup = 40 * time.Millisecond

	out, err := f.svc.Run(context.Background(), Flags{SuggestTrials: 2, Seed: 3})
	require.NoError(t, err)
	require.Len(t, out.Suggestions, 2)
	for _, s := range out.Suggestions {
		require.Equal(t, 40*time.Millisecond, s.Elapsed)
	}
	for _, s := range out.Searches {
		require.Zero(t, s.Elapsed, "fake clock does not move during searches")
	}
}

func TestRun_InvalidFlags(t *testing.T) {
	negative := -1
	for name, flags := range map[string]Flags{
		"dialect":  {Dialect: 9},
		"limit":    {Limit: &negative},
		"quantity": {Quantity: -5},
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Run(context.Background(), flags)

			var cfgErr *domain.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			require.Equal(t, name, cfgErr.Field)
			require.Empty(t, f.rec.all())
		})
	}
}

func TestRun_FatalIndexErrorAborts(t *testing.T) {
	f := newFixture(t)
	f.index.recreateErr = &domain.IndexError{Op: "build", Index: "idx_zew_events", Fatal: true, Err: errors.New("boom")}

	_, err := f.svc.Run(context.Background(), Flags{})
	require.True(t, domain.IsFatal(err))
	require.Equal(t, []string{"recreate idx_zew_events idxa_zew_events"}, f.rec.all())
}

func TestRun_NotReadyContinues(t *testing.T) {
	f := newFixture(t)
	f.index.waitErr = &domain.IndexNotReadyError{Index: "idx_zew_events", PercentIndexed: 0.5}

	out, err := f.svc.Run(context.Background(), Flags{})
	require.NoError(t, err)

	var nr *domain.IndexNotReadyError
	require.ErrorAs(t, out.IndexErr, &nr)
	require.Equal(t, 2, out.Load.Documents)
	require.Len(t, out.Searches, 3)
}

func TestRun_QueryFailuresAreRecorded(t *testing.T) {
	f := newFixture(t)
	f.searcher.searchErr["@cost:[-inf 5.00]"] = db.ErrIndexNotFound
	f.searcher.aggErr = errors.New("timeout")

	out, err := f.svc.Run(context.Background(), Flags{})
	require.NoError(t, err)
	require.NoError(t, out.Searches[0].Err)
	require.ErrorIs(t, out.Searches[2].Err, db.ErrIndexNotFound)
	require.Error(t, out.Aggregation.Err)
}

func TestRun_LoadFailureStillQueries(t *testing.T) {
	f := newFixture(t)
	f.loader.err = &domain.WriteError{Flushed: 0, Batch: 1, Err: db.ErrPoolExhausted}

	out, err := f.svc.Run(context.Background(), Flags{})
	require.NoError(t, err)

	var we *domain.WriteError
	require.ErrorAs(t, out.LoadErr, &we)
	require.Len(t, out.Searches, 3)
}

func TestRun_SettleDelay(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Run(ctx, Flags{SettleDelay: time.Second})
		done <- err
	}()

	require.NoError(t, f.clock.BlockUntilContext(ctx, 1))
	require.NotContains(t, f.rec.all(), "load", "load must wait for the settle delay")
	f.clock.Advance(time.Second)

	require.NoError(t, <-done)
	require.Contains(t, f.rec.all(), "load")
}

func TestRun_SettleDelayCancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Run(ctx, Flags{SettleDelay: time.Hour})
	require.ErrorIs(t, err, context.Canceled)
	require.NotContains(t, f.rec.all(), "load")
}

func TestSearches_BuildAgainstZooSchema(t *testing.T) {
	target := DefaultTarget()
	searches, err := Searches(target.Definition, target.Alias, 3, 3)
	require.NoError(t, err)
	require.Len(t, searches, 3)
	require.Equal(t, "@days:{Mon} -@location:(House)", searches[0].Request.Predicate)
	require.Len(t, searches[0].Request.Projections, 8)

	agg, err := PricedByLocation(target.Definition, target.Alias, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"@location"}, agg.GroupBy)
	require.Equal(t, "event_match_count", agg.Reducers[0].Alias())
}

func TestRandomPrefix(t *testing.T) {
	rnd := rand.New(rand.NewPCG(1, 2))
	require.Equal(t, "Go", randomPrefix("Go", rnd))

	for range 20 {
		p := randomPrefix("Gorilla Feeding", rnd)
		require.True(t, len(p) >= 2 && len(p) <= 4, "prefix %q", p)
		require.Equal(t, "Gorilla Feeding"[:len(p)], p)
	}
}
