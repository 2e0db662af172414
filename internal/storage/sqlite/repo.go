// Package sqlite implements the warehouse storage contract on SQLite via
// the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"flightdw/internal/storage"
)

func init() {
	storage.Register("sqlite", New)
}

// Repo implements storage.Repository for SQLite.
type Repo struct {
	db *sql.DB
}

// New opens a SQLite database and validates connectivity.
func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; more connections only produce lock errors
	// mid-transaction.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() { _ = r.db.Close() }

// EnsureTables creates missing warehouse tables. Idempotent.
func (r *Repo) EnsureTables(ctx context.Context, tables []storage.TableSpec) error {
	for _, t := range tables {
		ddl, err := buildCreateSQL(t)
		if err != nil {
			return err
		}
		if _, err := r.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("sqlite: create table %s: %w", t.Name, err)
		}
	}
	return nil
}

// Begin opens the reload transaction.
func (r *Repo) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

// Tx implements storage.Tx over *sql.Tx.
type Tx struct {
	tx *sql.Tx
}

func (t *Tx) Commit(context.Context) error { return t.tx.Commit() }

func (t *Tx) Rollback(context.Context) error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

func (t *Tx) DeleteAll(ctx context.Context, table string) error {
	_, err := t.tx.ExecContext(ctx, "DELETE FROM "+sqlIdent(table))
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
	res, err := t.tx.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (t *Tx) SelectKeyRows(ctx context.Context, table, idColumn string, keyColumns []string) ([]storage.KeyRow, error) {
	rows, err := t.tx.QueryContext(ctx, buildSelectKeySQL(table, idColumn, keyColumns))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storage.KeyRow
	for rows.Next() {
		var id sql.NullInt64
		key := make([]any, len(keyColumns))
		scan := make([]any, 0, len(keyColumns)+1)
		scan = append(scan, &id)
		for i := range key {
			scan = append(scan, &key[i])
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, err
		}
		if !id.Valid {
			return nil, fmt.Errorf(
				"sqlite: %s.%s is NULL; surrogate key not auto-generated", table, idColumn)
		}
		out = append(out, storage.KeyRow{ID: id.Int64, Key: key})
	}
	return out, rows.Err()
}

// ---- SQL builders (pure, unit-testable without a database) ----

func buildCreateSQL(t storage.TableSpec) (string, error) {
	if strings.TrimSpace(t.Name) == "" {
		return "", fmt.Errorf("sqlite: table name is empty")
	}

	var parts []string
	if t.PrimaryKey != nil {
		// "INTEGER PRIMARY KEY" is the rowid in SQLite and auto-generates.
		parts = append(parts, sqlIdent(t.PrimaryKey.Name)+" INTEGER PRIMARY KEY AUTOINCREMENT")
	}
	for _, c := range t.Columns {
		ct, err := columnType(c.Type)
		if err != nil {
			return "", fmt.Errorf("sqlite: table %s column %s: %w", t.Name, c.Name, err)
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
	case "bigint", "int":
		return "INTEGER", nil
	case "float":
		return "REAL", nil
	case "text":
		return "TEXT", nil
	case "date":
		// Stored as ISO-8601 text; modernc.org/sqlite has no DATE affinity.
		return "TEXT", nil
	}
	return "", fmt.Errorf("unknown column type %q", token)
}

func buildInsertSQL(table string, columns []string, rows [][]any) (string, []any, error) {
	colList := make([]string, len(columns))
	for i, c := range columns {
		colList[i] = sqlIdent(c)
	}
	placeholders := "(" + strings.TrimRight(strings.Repeat("?,", len(columns)), ",") + ")"

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(sqlIdent(table))
	b.WriteString(" (")
	b.WriteString(strings.Join(colList, ", "))
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return "", nil, fmt.Errorf("sqlite: row %d has %d values for %d columns", i, len(row), len(columns))
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(placeholders)
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
