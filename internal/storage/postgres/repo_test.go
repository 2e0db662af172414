package postgres

import (
	"strings"
	"testing"

	"flightdw/internal/storage"
)

func TestBuildCreateSQL(t *testing.T) {
	ddl, err := buildCreateSQL(storage.TableSpec{
		Name:       "fact_flight",
		PrimaryKey: &storage.PrimaryKeySpec{Name: "fact_id"},
		Columns: []storage.ColumnSpec{
			{Name: "date_key", Type: "bigint", NotNull: true},
			{Name: "price_usd", Type: "float", NotNull: true},
			{Name: "seat", Type: "text"},
			{Name: "flight_date", Type: "date"},
		},
	})
	if err != nil {
		t.Fatalf("buildCreateSQL: %v", err)
	}
	for _, want := range []string{
		`CREATE TABLE IF NOT EXISTS "fact_flight"`,
		`"fact_id" BIGSERIAL PRIMARY KEY`,
		`"date_key" BIGINT NOT NULL`,
		`"price_usd" DOUBLE PRECISION NOT NULL`,
		`"flight_date" DATE`,
	} {
		if !strings.Contains(ddl, want) {
			t.Errorf("DDL missing %q:\n%s", want, ddl)
		}
	}

	if _, err := buildCreateSQL(storage.TableSpec{
		Name:    "t",
		Columns: []storage.ColumnSpec{{Name: "x", Type: "jsonb"}},
	}); err == nil {
		t.Errorf("expected error for unknown column type")
	}
}

func TestBuildInsertSQLPlaceholders(t *testing.T) {
	q, args, err := buildInsertSQL("dim_airport", []string{"airport_code"}, [][]any{
		{"MAD"}, {"BOG"}, {"LIM"},
	})
	if err != nil {
		t.Fatalf("buildInsertSQL: %v", err)
	}
	want := `INSERT INTO "dim_airport" ("airport_code") VALUES ($1), ($2), ($3)`
	if q != want {
		t.Errorf("query = %q, want %q", q, want)
	}
	if len(args) != 3 {
		t.Errorf("args = %v", args)
	}

	if _, _, err := buildInsertSQL("t", []string{"a", "b"}, [][]any{{1}}); err == nil {
		t.Fatalf("expected error for row/column mismatch")
	}
}

func TestBuildSelectKeySQL(t *testing.T) {
	q := buildSelectKeySQL("dim_flight_type", "flight_type_id", []string{
		"flight_number", "cabin_class",
	})
	want := `SELECT "flight_type_id", "flight_number", "cabin_class" FROM "dim_flight_type"`
	if q != want {
		t.Errorf("query = %q, want %q", q, want)
	}
}
