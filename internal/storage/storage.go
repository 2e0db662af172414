// Package storage defines the backend-agnostic contract between the
// warehouse reload engine and the relational stores it can load into.
//
// The engine only ever needs four operations inside one transaction: delete
// everything in a table, append rows, read back (surrogate id, natural key)
// pairs, and commit/rollback. Each backend implements those in its own
// dialect (placeholders, identity columns, DDL) and registers itself here.
package storage

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Config selects and connects a backend.
type Config struct {
	Kind string
	DSN  string
}

// Repository is a live connection to a warehouse backend.
type Repository interface {
	// Close releases connections. Call once at shutdown.
	Close()

	// EnsureTables creates missing tables. Idempotent; safe on every run.
	EnsureTables(ctx context.Context, tables []TableSpec) error

	// Begin opens the single transactional scope a reload runs in.
	Begin(ctx context.Context) (Tx, error)
}

// Tx is one atomic reload scope. Either Commit or Rollback must be called
// exactly once; Rollback after Commit is a no-op.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// DeleteAll removes every row from table.
	DeleteAll(ctx context.Context, table string) error

	// InsertRows appends rows; all rows must match columns positionally.
	// Implementations may split the insert into multiple statements but must
	// stay within this transaction.
	InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// SelectKeyRows reads back (surrogate id, natural key columns) pairs,
	// including rows written earlier in this same transaction.
	SelectKeyRows(ctx context.Context, table string, idColumn string, keyColumns []string) ([]KeyRow, error)
}

// KeyRow is one persisted (surrogate id, natural key) pair.
type KeyRow struct {
	ID  int64
	Key []any // aligned with the keyColumns argument of SelectKeyRows
}

// ---- table specs ----

// TableSpec describes a warehouse table in backend-neutral terms. Backends
// translate Type tokens and the surrogate key into their own dialect.
type TableSpec struct {
	Name       string
	PrimaryKey *PrimaryKeySpec // auto-assigned surrogate id; nil for natural-keyed tables
	Columns    []ColumnSpec
	Unique     [][]string // unique constraints, one column list each
}

// PrimaryKeySpec names an identity/serial surrogate key column.
type PrimaryKeySpec struct {
	Name string
}

// ColumnSpec is one non-surrogate column. Type is a neutral token:
// "bigint", "int", "float", "text" or "date".
type ColumnSpec struct {
	Name    string
	Type    string
	NotNull bool
}

// ---- backend registry ----

type factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a backend under a kind ("mssql", "sqlite", "postgres").
// Called from backend init() functions; duplicate registration panics so an
// ambiguous backend selection fails at startup, not mid-load.
func Register(kind string, f factory) {
	regMu.Lock()
	defer regMu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// New constructs a Repository for the configured backend kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing kind")
	}

	regMu.RLock()
	f := factories[cfg.Kind]
	regMu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("storage: unsupported kind=%q", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ---- key canonicalization ----

// keySep separates components of a composite natural key. ASCII unit
// separator cannot appear in the source data.
const keySep = "\x1f"

// NormalizeKey converts a natural-key value to a canonical string form
// suitable for in-memory join maps. Backends return driver-dependent types
// (string vs []byte vs int64); this keeps lookups consistent across them.
func NormalizeKey(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []byte:
		return strings.TrimSpace(string(t))
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// CompositeKey canonicalizes a multi-column natural key into one map key.
func CompositeKey(parts ...any) string {
	if len(parts) == 1 {
		return NormalizeKey(parts[0])
	}
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = NormalizeKey(p)
	}
	return strings.Join(out, keySep)
}
