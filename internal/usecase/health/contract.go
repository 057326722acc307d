package health

import (
	"context"

	"github.com/kailas-cloud/jsonidx/internal/db"
)

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexInspector reads the state of a search index.
type IndexInspector interface {
	Info(ctx context.Context, name string) (*db.IndexInfo, error)
}
