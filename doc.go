// Package jsonidx is a Go client for full-text and structured search over
// JSON documents stored in Redis with the search and JSON modules.
//
// # Low-level API
//
//	client, _ := jsonidx.New(jsonidx.WithRedis("localhost", 6379))
//	def := jsonidx.ZooEvents()
//	_ = client.RecreateIndex(ctx, def, "idxa_zew_events")
//	req, _ := jsonidx.NewQuery(def).
//	    Index("idxa_zew_events").
//	    WithPredicate("@location:(House) @days:{Mon}").
//	    Return("event_name").
//	    Build()
//	page, _ := client.Search(ctx, req)
//
// # Typed API
//
//	type Event struct {
//	    ID       string  `json:"-" jsonidx:",key"`
//	    Name     string  `json:"name" jsonidx:"event_name,text,sortable"`
//	    Cost     float64 `json:"cost" jsonidx:"cost,numeric"`
//	    Location string  `json:"location" jsonidx:"location,text"`
//	}
//
//	idx, _ := jsonidx.NewIndex[Event](client, "idx_events", "events:")
//	_ = idx.Recreate(ctx, "idxa_events")
//	_, _ = idx.Load(ctx, events)
//	hits, total, _ := idx.Search("@cost:[9 +inf]").Limit(10).Do(ctx)
package jsonidx
