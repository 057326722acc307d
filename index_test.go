package jsonidx

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/jsonidx/internal/domain"
	"github.com/kailas-cloud/jsonidx/internal/domain/query"
	"github.com/kailas-cloud/jsonidx/internal/domain/result"
)

type event struct {
	ID       string   `json:"-" jsonidx:",key"`
	Name     string   `json:"name" jsonidx:"event_name,text,sortable"`
	Cost     float64  `json:"cost" jsonidx:"cost,numeric"`
	Location string   `json:"location" jsonidx:"location,text,phonetic=dm:en"`
	Days     []string `json:"days" jsonidx:"days,tag"`
	Notes    string   `json:"notes,omitempty"`
}

func TestNewIndex_Definition(t *testing.T) {
	idx, err := NewIndex[event](nil, "idx_events", "events:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	def := idx.Definition()
	if def.Name != "idx_events" || len(def.Prefixes) != 1 || def.Prefixes[0] != "events:" {
		t.Fatalf("unexpected definition header %+v", def)
	}
	if len(def.Fields) != 4 {
		t.Fatalf("fields = %d, want 4", len(def.Fields))
	}

	days, ok := def.Field("days")
	if !ok || days.Path != "$.days[*]" || days.Kind != FieldTag {
		t.Errorf("days mapping = %+v", days)
	}
	name, _ := def.Field("event_name")
	if name.Path != "$.name" || !name.Sortable {
		t.Errorf("event_name mapping = %+v", name)
	}
	loc, _ := def.Field("location")
	if loc.Phonetic != "dm:en" {
		t.Errorf("location phonetic = %q", loc.Phonetic)
	}
}

func TestNewIndex_Invalid(t *testing.T) {
	type noKey struct {
		Name string `json:"name" jsonidx:"name,text"`
	}
	type badKind struct {
		ID   string `jsonidx:",key"`
		Name string `jsonidx:"name,vector"`
	}
	type dupAlias struct {
		ID string `jsonidx:",key"`
		A  string `json:"a" jsonidx:"x,text"`
		B  string `json:"b" jsonidx:"x,tag"`
	}
	type badPath struct {
		ID string `jsonidx:",key"`
		A  string `jsonidx:"a,text,path=name"`
	}

	if _, err := NewIndex[noKey](nil, "i", "p:"); err == nil {
		t.Error("expected error for missing key")
	}
	if _, err := NewIndex[badKind](nil, "i", "p:"); err == nil {
		t.Error("expected error for unknown kind")
	}
	if _, err := NewIndex[dupAlias](nil, "i", "p:"); !errors.Is(err, domain.ErrSchemaConflict) {
		t.Errorf("expected ErrSchemaConflict, got %v", err)
	}
	var pathErr *domain.InvalidJSONPathError
	if _, err := NewIndex[badPath](nil, "i", "p:"); !errors.As(err, &pathErr) {
		t.Errorf("expected InvalidJSONPathError, got %v", err)
	}
	if _, err := NewIndex[int](nil, "i", "p:"); err == nil {
		t.Error("expected error for non-struct")
	}
}

func TestTypedIndex_Recreate(t *testing.T) {
	c, mi, _, _ := newTestClient()
	idx, err := NewIndex[event](c, "idx_events", "events:")
	if err != nil {
		t.Fatal(err)
	}

	info, err := idx.Recreate(context.Background(), "idxa_events")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !info.Ready() {
		t.Error("expected ready index")
	}
	if len(mi.recreated) != 1 || mi.recreated[0] != "idx_events->idxa_events" {
		t.Errorf("recreated = %v", mi.recreated)
	}
}

func TestTypedIndex_Load(t *testing.T) {
	c, _, _, l := newTestClient()
	idx, _ := NewIndex[event](c, "idx_events", "events:")

	rep, err := idx.Load(context.Background(), []event{
		{ID: "gf", Name: "Gorilla Feeding"},
		{ID: "bl", Name: "Bonobo Lecture"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Documents != 2 {
		t.Errorf("documents = %d", rep.Documents)
	}
	if l.items[0].Key != "events:gf" || l.items[1].Key != "events:bl" {
		t.Errorf("keys = %q, %q", l.items[0].Key, l.items[1].Key)
	}

	if _, err := idx.Load(context.Background(), []event{{Name: "no key"}}); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestSearchBuilder_Do(t *testing.T) {
	c, _, s, _ := newTestClient()
	idx, _ := NewIndex[event](c, "idx_events", "events:")

	var got query.SearchRequest
	s.searchFn = func(req query.SearchRequest) (result.Page, error) {
		got = req
		return result.Page{Total: 7, Documents: []result.Document{{
			Key: "events:gf",
			Fields: []result.Field{{
				Name:   "$",
				Values: []string{`{"name":"Gorilla Feeding","cost":10.5,"location":"Primate House","days":["Mon","Tue"]}`},
			}},
		}}}, nil
	}

	hits, total, err := idx.Search("@cost:[9 +inf]").Via("idxa_events").Limit(10).Dialect(Dialect3).Do(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Index != "idxa_events" || got.Limit != 10 || got.Dialect != Dialect3 {
		t.Errorf("request = %+v", got)
	}
	if len(got.Projections) != 1 || got.Projections[0].Path != "$" {
		t.Errorf("projections = %+v", got.Projections)
	}
	if total != 7 || len(hits) != 1 {
		t.Fatalf("total = %d, hits = %d", total, len(hits))
	}

	h := hits[0]
	if h.Key != "events:gf" || h.Item.ID != "gf" || h.Item.Name != "Gorilla Feeding" || h.Item.Cost != 10.5 {
		t.Errorf("hit = %+v", h)
	}
	if len(h.Item.Days) != 2 {
		t.Errorf("days = %v", h.Item.Days)
	}
}

func TestSearchBuilder_Errors(t *testing.T) {
	c, _, s, _ := newTestClient()
	idx, _ := NewIndex[event](c, "idx_events", "events:")

	if _, _, err := idx.Search("@unknown:{x}").Do(context.Background()); err == nil {
		t.Error("expected error for unknown alias")
	} else {
		var unk *domain.UnknownFieldError
		if !errors.As(err, &unk) {
			t.Errorf("expected UnknownFieldError, got %v", err)
		}
	}

	s.searchFn = func(query.SearchRequest) (result.Page, error) {
		return result.Page{Total: 1, Documents: []result.Document{{Key: "events:x"}}}, nil
	}
	if _, _, err := idx.Search("@cost:[0 +inf]").Do(context.Background()); err == nil {
		t.Error("expected error for hit without content")
	}
}
