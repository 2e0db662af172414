package warehouse

import (
	"context"
	"fmt"
	"log"
	"time"

	"flightdw/internal/schema"
	"flightdw/internal/storage"
)

// Logger is the minimal logging interface used by the warehouse engine.
// *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

// Engine performs the atomic warehouse reload.
//
// Every run replaces the warehouse in full: inside one transaction each
// dimension is deleted and re-appended in a fixed order, surrogate keys are
// read back, facts are assembled and loaded, and only then does the
// transaction commit. A failure anywhere rolls everything back, so the store
// is always entirely old or entirely new.
type Engine struct {
	Repo   storage.Repository
	Logger Logger

	// BatchSize caps rows per INSERT statement. Defaults to 1000.
	BatchSize int
}

// Summary is the per-run outcome reported to the caller.
type Summary struct {
	RowsRead     int
	DateRejected int
	CleanRecords int

	DateRows       int
	AirlineRows    int
	AirportRows    int
	PassengerRows  int
	FlightTypeRows int

	FactRows    int
	FactDropped int
}

// Run reloads the warehouse from the cleaned record set.
func (e *Engine) Run(ctx context.Context, recs []schema.CleanRecord) (Summary, error) {
	sum := Summary{CleanRecords: len(recs)}
	if e.Repo == nil {
		return sum, fmt.Errorf("warehouse: Repo is required")
	}
	logf := e.logger()

	ddlStart := time.Now()
	if err := e.Repo.EnsureTables(ctx, schema.Tables()); err != nil {
		return sum, fmt.Errorf("ensure tables: %w", err)
	}
	logf("stage=ddl ok duration=%s", durMS(ddlStart))

	dims := BuildDimensions(recs)
	sum.DateRows = len(dims.Dates)
	sum.AirlineRows = len(dims.Airlines)
	sum.AirportRows = len(dims.Airports)
	sum.PassengerRows = len(dims.Passengers)
	sum.FlightTypeRows = len(dims.FlightTypes)
	if dims.AirlinesDropped > 0 {
		logf("stage=build_dims table=%s dropped_null_keys=%d", schema.TableAirline, dims.AirlinesDropped)
	}
	if dims.PassengersDropped > 0 {
		logf("stage=build_dims table=%s dropped_null_keys=%d", schema.TablePassenger, dims.PassengersDropped)
	}

	loadStart := time.Now()
	tx, err := e.Repo.Begin(ctx)
	if err != nil {
		return sum, fmt.Errorf("begin reload tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Dimensions load in a fixed order so runs are comparable and surrogate
	// assignment is reproducible for identical input.
	dimLoads := []struct {
		table   string
		columns []string
		rows    [][]any
	}{
		{schema.TableDate, schema.DateColumns, dateRows(dims.Dates)},
		{schema.TableAirline, schema.AirlineColumns, airlineRows(dims.Airlines)},
		{schema.TableAirport, schema.AirportColumns, airportRows(dims.Airports)},
		{schema.TablePassenger, schema.PassengerColumns, passengerRows(dims.Passengers)},
		{schema.TableFlightType, schema.FlightTypeColumns, flightTypeRows(dims.FlightTypes)},
	}
	for _, dl := range dimLoads {
		n, err := e.reloadTable(ctx, tx, dl.table, dl.columns, dl.rows)
		if err != nil {
			return sum, err
		}
		logf("stage=load_dim table=%s rows=%d", dl.table, n)
	}

	keys, err := e.readKeys(ctx, tx)
	if err != nil {
		return sum, err
	}

	resolved := ResolveKeys(recs, keys)
	facts, dropped := AssembleFacts(resolved)
	sum.FactDropped = dropped
	if dropped > 0 {
		logf("stage=assemble_facts dropped_unresolved=%d", dropped)
	}

	n, err := e.reloadTable(ctx, tx, schema.TableFact, schema.FactColumns, factRows(facts))
	if err != nil {
		return sum, err
	}
	sum.FactRows = int(n)
	logf("stage=load_fact table=%s rows=%d", schema.TableFact, n)

	if err := tx.Commit(ctx); err != nil {
		return sum, fmt.Errorf("commit reload: %w", err)
	}
	logf("stage=load ok duration=%s", durMS(loadStart))

	return sum, nil
}

// reloadTable deletes everything in table and appends rows in batches.
func (e *Engine) reloadTable(ctx context.Context, tx storage.Tx, table string, columns []string, rows [][]any) (int64, error) {
	if err := tx.DeleteAll(ctx, table); err != nil {
		return 0, fmt.Errorf("clear %s: %w", table, err)
	}

	batch := e.BatchSize
	if batch <= 0 {
		batch = 1000
	}

	var total int64
	for start := 0; start < len(rows); start += batch {
		end := start + batch
		if end > len(rows) {
			end = len(rows)
		}
		n, err := tx.InsertRows(ctx, table, columns, rows[start:end])
		if err != nil {
			return total, fmt.Errorf("insert into %s: %w", table, err)
		}
		total += n
	}
	return total, nil
}

// readKeys re-reads the surrogate key maps for every dimension that needs
// resolution. The date dimension is skipped: its key is already on the
// record.
func (e *Engine) readKeys(ctx context.Context, tx storage.Tx) (DimensionKeys, error) {
	var keys DimensionKeys

	reads := []struct {
		table    string
		idColumn string
		keyCols  []string
		dst      *map[string]int64
	}{
		{schema.TableAirline, schema.ColAirlineID, []string{"airline_code"}, &keys.Airlines},
		{schema.TableAirport, schema.ColAirportID, []string{"airport_code"}, &keys.Airports},
		{schema.TablePassenger, schema.ColPassengerID, []string{"passenger_uuid"}, &keys.Passengers},
		{schema.TableFlightType, schema.ColFlightTypeID, schema.FlightTypeKeyColumns, &keys.FlightTypes},
	}
	for _, rd := range reads {
		rows, err := tx.SelectKeyRows(ctx, rd.table, rd.idColumn, rd.keyCols)
		if err != nil {
			return keys, fmt.Errorf("read keys from %s: %w", rd.table, err)
		}
		*rd.dst = keyMap(rows)
	}
	return keys, nil
}

func (e *Engine) logger() func(format string, v ...any) {
	if e.Logger == nil {
		l := log.New(discardWriter{}, "", 0)
		return l.Printf
	}
	return e.Logger.Printf
}

func durMS(start time.Time) time.Duration { return time.Since(start).Truncate(time.Millisecond) }

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
