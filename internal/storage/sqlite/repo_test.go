package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"flightdw/internal/storage"
)

func testSpec() storage.TableSpec {
	return storage.TableSpec{
		Name:       "dim_airline",
		PrimaryKey: &storage.PrimaryKeySpec{Name: "airline_id"},
		Columns: []storage.ColumnSpec{
			{Name: "airline_code", Type: "text", NotNull: true},
			{Name: "airline_name", Type: "text"},
		},
		Unique: [][]string{{"airline_code"}},
	}
}

func openTestRepo(t *testing.T) storage.Repository {
	t.Helper()
	repo, err := New(context.Background(), storage.Config{
		Kind: "sqlite",
		DSN:  filepath.Join(t.TempDir(), "warehouse.db"),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(repo.Close)
	return repo
}

func TestEnsureTablesIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	tables := []storage.TableSpec{testSpec()}
	if err := repo.EnsureTables(ctx, tables); err != nil {
		t.Fatalf("EnsureTables: %v", err)
	}
	if err := repo.EnsureTables(ctx, tables); err != nil {
		t.Fatalf("second EnsureTables: %v", err)
	}
}

func TestInsertAndSelectKeyRows(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	if err := repo.EnsureTables(ctx, []storage.TableSpec{testSpec()}); err != nil {
		t.Fatalf("EnsureTables: %v", err)
	}

	tx, err := repo.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback(ctx)

	cols := []string{"airline_code", "airline_name"}
	n, err := tx.InsertRows(ctx, "dim_airline", cols, [][]any{
		{"IB", "Iberia"},
		{"AV", nil},
	})
	if err != nil {
		t.Fatalf("InsertRows: %v", err)
	}
	if n != 2 {
		t.Fatalf("inserted %d rows, want 2", n)
	}

	// Rows written in this transaction must be visible to the readback.
	keys, err := tx.SelectKeyRows(ctx, "dim_airline", "airline_id", []string{"airline_code"})
	if err != nil {
		t.Fatalf("SelectKeyRows: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("got %d key rows, want 2", len(keys))
	}
	byCode := map[string]int64{}
	for _, k := range keys {
		if k.ID <= 0 {
			t.Errorf("surrogate id %d not auto-assigned", k.ID)
		}
		byCode[storage.NormalizeKey(k.Key[0])] = k.ID
	}
	if _, ok := byCode["IB"]; !ok {
		t.Errorf("missing key IB in %v", byCode)
	}
	if _, ok := byCode["AV"]; !ok {
		t.Errorf("missing key AV in %v", byCode)
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

func TestRollbackLeavesPriorState(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	if err := repo.EnsureTables(ctx, []storage.TableSpec{testSpec()}); err != nil {
		t.Fatalf("EnsureTables: %v", err)
	}
	cols := []string{"airline_code", "airline_name"}

	tx, err := repo.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, err := tx.InsertRows(ctx, "dim_airline", cols, [][]any{{"IB", "Iberia"}}); err != nil {
		t.Fatalf("seed insert: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("seed commit: %v", err)
	}

	// Delete-then-insert, then abandon the transaction.
	tx, err = repo.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := tx.DeleteAll(ctx, "dim_airline"); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	if _, err := tx.InsertRows(ctx, "dim_airline", cols, [][]any{{"UX", "Air Europa"}}); err != nil {
		t.Fatalf("InsertRows: %v", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	tx, err = repo.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback(ctx)
	keys, err := tx.SelectKeyRows(ctx, "dim_airline", "airline_id", []string{"airline_code"})
	if err != nil {
		t.Fatalf("SelectKeyRows: %v", err)
	}
	if len(keys) != 1 || storage.NormalizeKey(keys[0].Key[0]) != "IB" {
		t.Fatalf("rollback did not restore prior state: %v", keys)
	}
}

func TestRollbackAfterCommitIsNoop(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	if err := repo.EnsureTables(ctx, []storage.TableSpec{testSpec()}); err != nil {
		t.Fatalf("EnsureTables: %v", err)
	}

	tx, err := repo.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("Rollback after Commit: %v", err)
	}
}

func TestBuildCreateSQL(t *testing.T) {
	ddl, err := buildCreateSQL(testSpec())
	if err != nil {
		t.Fatalf("buildCreateSQL: %v", err)
	}
	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS",
		`"airline_id" INTEGER PRIMARY KEY AUTOINCREMENT`,
		`"airline_code" TEXT NOT NULL`,
		`UNIQUE ("airline_code")`,
	} {
		if !strings.Contains(ddl, want) {
			t.Errorf("DDL missing %q:\n%s", want, ddl)
		}
	}

	bad := testSpec()
	bad.Columns[0].Type = "uuid"
	if _, err := buildCreateSQL(bad); err == nil {
		t.Errorf("expected error for unknown column type")
	}
}

func TestBuildInsertSQLShapeMismatch(t *testing.T) {
	if _, _, err := buildInsertSQL("t", []string{"a", "b"}, [][]any{{1}}); err == nil {
		t.Fatalf("expected error for row/column mismatch")
	}
}
