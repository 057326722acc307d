package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound    = errors.New("db: key not found")
	ErrIndexNotFound  = errors.New("db: index not found")
	ErrIndexExists    = errors.New("db: index already exists")
	ErrAliasExists    = errors.New("db: alias already exists")
	ErrAliasNotFound  = errors.New("db: alias not found")
	ErrPoolExhausted  = errors.New("db: no pooled connection available")
	ErrSessionClosed  = errors.New("db: write session closed")
	ErrInvalidRequest = errors.New("db: invalid request")
)

// Op constants map to Redis command names for error context.
const (
	OpCreateIndex = "FT.CREATE"
	OpDropIndex   = "FT.DROPINDEX"
	OpIndexInfo   = "FT.INFO"
	OpListIndexes = "FT._LIST"
	OpAliasAdd    = "FT.ALIASADD"
	OpAliasUpdate = "FT.ALIASUPDATE"
	OpAliasDel    = "FT.ALIASDEL"
	OpSearch      = "FT.SEARCH"
	OpAggregate   = "FT.AGGREGATE"
	OpSugAdd      = "FT.SUGADD"
	OpSugGet      = "FT.SUGGET"
	OpJSONSet     = "JSON.SET"
	OpJSONGet     = "JSON.GET"
	OpDel         = "DEL"
	OpDBSize      = "DBSIZE"
	OpPing        = "PING"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
