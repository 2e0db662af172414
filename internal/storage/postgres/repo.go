// Package postgres implements the warehouse storage contract on PostgreSQL
// via the native jackc/pgx/v5 driver and its connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"flightdw/internal/storage"
)

func init() {
	storage.Register("postgres", New)
}

// Repo implements storage.Repository for PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New opens a pgx pool and validates connectivity.
func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Repo{pool: pool}, nil
}

func (r *Repo) Close() { r.pool.Close() }

// EnsureTables creates missing warehouse tables. Idempotent.
func (r *Repo) EnsureTables(ctx context.Context, tables []storage.TableSpec) error {
	for _, t := range tables {
		ddl, err := buildCreateSQL(t)
		if err != nil {
			return err
		}
		if _, err := r.pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("postgres: create table %s: %w", t.Name, err)
		}
	}
	return nil
}

func (r *Repo) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

// Tx implements storage.Tx over pgx.Tx.
type Tx struct {
	tx pgx.Tx
}

func (t *Tx) Commit(ctx context.Context) error { return t.tx.Commit(ctx) }

func (t *Tx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

func (t *Tx) DeleteAll(ctx context.Context, table string) error {
	_, err := t.tx.Exec(ctx, "DELETE FROM "+sqlIdent(table))
	return err
}

func (t *Tx) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	q, args, err := buildInsertSQL(table, columns, rows)
	if err != nil {
		return 0, err
	}
	tag, err := t.tx.Exec(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (t *Tx) SelectKeyRows(ctx context.Context, table, idColumn string, keyColumns []string) ([]storage.KeyRow, error) {
	rows, err := t.tx.Query(ctx, buildSelectKeySQL(table, idColumn, keyColumns))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storage.KeyRow
	for rows.Next() {
		var id *int64
		key := make([]any, len(keyColumns))
		scan := make([]any, 0, len(keyColumns)+1)
		scan = append(scan, &id)
		for i := range key {
			scan = append(scan, &key[i])
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, err
		}
		if id == nil {
			return nil, fmt.Errorf(
				"postgres: %s.%s is NULL; surrogate key not auto-generated", table, idColumn)
		}
		out = append(out, storage.KeyRow{ID: *id, Key: key})
	}
	return out, rows.Err()
}

// ---- SQL builders (pure, unit-testable without a database) ----

func buildCreateSQL(t storage.TableSpec) (string, error) {
	if strings.TrimSpace(t.Name) == "" {
		return "", fmt.Errorf("postgres: table name is empty")
	}

	var parts []string
	if t.PrimaryKey != nil {
		parts = append(parts, sqlIdent(t.PrimaryKey.Name)+" BIGSERIAL PRIMARY KEY")
	}
	for _, c := range t.Columns {
		ct, err := columnType(c.Type)
		if err != nil {
			return "", fmt.Errorf("postgres: table %s column %s: %w", t.Name, c.Name, err)
		}
		col := sqlIdent(c.Name) + " " + ct
		if c.NotNull {
			col += " NOT NULL"
		}
		parts = append(parts, col)
	}
	for _, u := range t.Unique {
		cols := make([]string, len(u))
		for i, c := range u {
			cols[i] = sqlIdent(c)
		}
		parts = append(parts, "UNIQUE ("+strings.Join(cols, ", ")+")")
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", sqlIdent(t.Name), strings.Join(parts, ",\n  ")), nil
}

func columnType(token string) (string, error) {
	switch token {
	case "bigint":
		return "BIGINT", nil
	case "int":
		return "INTEGER", nil
	case "float":
		return "DOUBLE PRECISION", nil
	case "text":
		return "TEXT", nil
	case "date":
		return "DATE", nil
	}
	return "", fmt.Errorf("unknown column type %q", token)
}

func buildInsertSQL(table string, columns []string, rows [][]any) (string, []any, error) {
	colList := make([]string, len(columns))
	for i, c := range columns {
		colList[i] = sqlIdent(c)
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(sqlIdent(table))
	b.WriteString(" (")
	b.WriteString(strings.Join(colList, ", "))
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	p := 1
	for i, row := range rows {
		if len(row) != len(columns) {
			return "", nil, fmt.Errorf("postgres: row %d has %d values for %d columns", i, len(row), len(columns))
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := range columns {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", p)
			p++
		}
		b.WriteString(")")
		args = append(args, row...)
	}
	return b.String(), args, nil
}

func buildSelectKeySQL(table, idColumn string, keyColumns []string) string {
	cols := make([]string, 0, len(keyColumns)+1)
	cols = append(cols, sqlIdent(idColumn))
	for _, c := range keyColumns {
		cols = append(cols, sqlIdent(c))
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), sqlIdent(table))
}

func sqlIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
