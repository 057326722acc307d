package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrSchemaConflict signals a duplicate alias or otherwise conflicting field mapping.
	ErrSchemaConflict = errors.New("schema conflict")
	// ErrInvalidSchema signals an invalid schema definition.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrInvalidLimit signals a negative offset or count.
	ErrInvalidLimit = errors.New("invalid limit")
	// ErrInvalidBatchSize signals a batch size outside 1..MaxBatchSize.
	ErrInvalidBatchSize = errors.New("invalid batch size")
	// ErrAliasCollision signals an alias name equal to a real index name.
	ErrAliasCollision = errors.New("alias collides with index name")
	// ErrEmptyPredicate signals a request without a query predicate.
	ErrEmptyPredicate = errors.New("empty predicate")
	// ErrInvalidDialect signals a query dialect the store does not offer.
	ErrInvalidDialect = errors.New("invalid dialect")
)

// ConfigurationError reports a malformed connection descriptor or config value.
// Fatal: the process exits.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// IndexError reports a failed build, drop or alias operation.
// Fatal is true for build failures; drop failures are reported but not fatal.
type IndexError struct {
	Op    string
	Index string
	Fatal bool
	Err   error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %s %q: %v", e.Op, e.Index, e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }

// UnknownFieldError reports a reference to an alias absent from the index definition.
type UnknownFieldError struct {
	Field string
	Where string // predicate, projection, group-by, filter
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q in %s", e.Field, e.Where)
}

// FieldKindMismatchError reports an operator that does not fit the field kind,
// e.g. a numeric range against a TAG field.
type FieldKindMismatchError struct {
	Field    string
	Kind     string
	Operator string
}

func (e *FieldKindMismatchError) Error() string {
	return fmt.Sprintf("field %q is %s and cannot be used with %s", e.Field, e.Kind, e.Operator)
}

// InvalidJSONPathError reports a projection path that can never be valid.
type InvalidJSONPathError struct {
	Path   string
	Reason string
}

func (e *InvalidJSONPathError) Error() string {
	return fmt.Sprintf("invalid JSONPath %q: %s", e.Path, e.Reason)
}

// InvalidAggregationOrderError reports a reducer alias used in the pre-group predicate.
type InvalidAggregationOrderError struct {
	Alias string
}

func (e *InvalidAggregationOrderError) Error() string {
	return fmt.Sprintf("reducer alias %q referenced before GROUPBY; use a post-group filter", e.Alias)
}

// ConnectionUnavailableError reports pool exhaustion after the configured wait.
// It is not retried internally.
type ConnectionUnavailableError struct {
	Wait time.Duration
	Err  error
}

func (e *ConnectionUnavailableError) Error() string {
	return fmt.Sprintf("connection unavailable after %s: %v", e.Wait, e.Err)
}

func (e *ConnectionUnavailableError) Unwrap() error { return e.Err }

// WriteError reports a bulk load aborted mid-way.
// Flushed counts documents acknowledged by earlier batches.
type WriteError struct {
	Flushed    int
	Batch      int
	FailedKeys []string
	Err        error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("bulk write aborted at batch %d after %d flushed documents: %v", e.Batch, e.Flushed, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// IndexNotReadyError reports an index that did not finish background indexing in time.
type IndexNotReadyError struct {
	Index          string
	Waited         time.Duration
	PercentIndexed float64
	Err            error
}

func (e *IndexNotReadyError) Error() string {
	return fmt.Sprintf("index %q not ready after %s (%.0f%% indexed)", e.Index, e.Waited, e.PercentIndexed*100)
}

func (e *IndexNotReadyError) Unwrap() error { return e.Err }

// IsFatal reports whether err should stop the calling workflow.
func IsFatal(err error) bool {
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return true
	}
	var idxErr *IndexError
	if errors.As(err, &idxErr) {
		return idxErr.Fatal
	}
	return false
}
