// Package mssql implements the warehouse storage contract on SQL Server
// via github.com/microsoft/go-mssqldb.
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"flightdw/internal/storage"
)

// SQL Server caps a statement at 2100 parameters; stay comfortably under it
// so any column count fits.
const maxParamsPerInsert = 2000

func init() {
	storage.Register("mssql", New)
}

// Repo implements storage.Repository for SQL Server.
type Repo struct {
	db *sql.DB
}

// New opens a SQL Server connection pool and validates connectivity.
func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, err
	}
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
			return fmt.Errorf("mssql: create table %s: %w", t.Name, err)
		}
	}
	return nil
}

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

// InsertRows inserts in chunks sized to the server's parameter limit. The
// chunks share the surrounding transaction, so atomicity is unaffected.
func (t *Tx) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mssql: insert into %s with no columns", table)
	}
	chunk := maxParamsPerInsert / len(columns)
	if chunk < 1 {
		chunk = 1
	}

	var total int64
	for len(rows) > 0 {
		n := chunk
		if n > len(rows) {
			n = len(rows)
		}
		q, args, err := buildInsertSQL(table, columns, rows[:n])
		if err != nil {
			return total, err
		}
		res, err := t.tx.ExecContext(ctx, q, args...)
		if err != nil {
			return total, err
		}
		affected, _ := res.RowsAffected()
		total += affected
		rows = rows[n:]
	}
	return total, nil
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
				"mssql: %s.%s is NULL; surrogate key not auto-generated", table, idColumn)
		}
		out = append(out, storage.KeyRow{ID: id.Int64, Key: key})
	}
	return out, rows.Err()
}

// ---- SQL builders (pure, unit-testable without a database) ----

func buildCreateSQL(t storage.TableSpec) (string, error) {
	if strings.TrimSpace(t.Name) == "" {
		return "", fmt.Errorf("mssql: table name is empty")
	}

	var parts []string
	if t.PrimaryKey != nil {
		parts = append(parts, sqlIdent(t.PrimaryKey.Name)+" BIGINT IDENTITY(1,1) PRIMARY KEY")
	}
	for _, c := range t.Columns {
		ct, err := columnType(c.Type)
		if err != nil {
			return "", fmt.Errorf("mssql: table %s column %s: %w", t.Name, c.Name, err)
		}
		col := sqlIdent(c.Name) + " " + ct
		if c.NotNull {
			col += " NOT NULL"
		}
		parts = append(parts, col)
	}
	for i, u := range t.Unique {
		cols := make([]string, len(u))
		for j, c := range u {
			cols[j] = sqlIdent(c)
		}
		name := fmt.Sprintf("uq_%s_%d", t.Name, i+1)
		parts = append(parts, "CONSTRAINT "+sqlIdent(name)+" UNIQUE ("+strings.Join(cols, ", ")+")")
	}

	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL\nCREATE TABLE %s (\n  %s\n);",
		t.Name, sqlIdent(t.Name), strings.Join(parts, ",\n  ")), nil
}

func columnType(token string) (string, error) {
	switch token {
	case "bigint":
		return "BIGINT", nil
	case "int":
		return "INT", nil
	case "float":
		return "FLOAT", nil
	case "text":
		return "NVARCHAR(255)", nil
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
			return "", nil, fmt.Errorf("mssql: row %d has %d values for %d columns", i, len(row), len(columns))
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := range columns {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "@p%d", p)
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
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}
