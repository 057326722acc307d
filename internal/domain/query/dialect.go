package query

import (
	"fmt"

	"github.com/kailas-cloud/jsonidx/internal/domain"
)

// Dialect selects the store's query dialect. It changes how multi-match
// JSONPath projections are returned, not which documents match.
type Dialect int

const (
	Dialect1 Dialect = 1
	Dialect2 Dialect = 2
	// Dialect3 returns every JSONPath match as a JSON array.
	Dialect3 Dialect = 3

	DefaultDialect = Dialect2
)

// ParseDialect validates an integer dialect; 0 selects DefaultDialect.
func ParseDialect(n int) (Dialect, error) {
	if n == 0 {
		return DefaultDialect, nil
	}
	d := Dialect(n)
	if !d.Valid() {
		return 0, fmt.Errorf("%w: %d (supported: 1, 2, 3)", domain.ErrInvalidDialect, n)
	}
	return d, nil
}

// Valid reports whether the store supports d.
func (d Dialect) Valid() bool {
	return d >= Dialect1 && d <= Dialect3
}

// MultiValue reports whether projections come back as arrays of all matches
// rather than the first match only.
func (d Dialect) MultiValue() bool {
	return d >= Dialect3
}

func (d Dialect) String() string {
	return fmt.Sprintf("DIALECT %d", int(d))
}
