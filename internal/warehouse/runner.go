package warehouse

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"flightdw/internal/config"
	"flightdw/internal/metrics"
	"flightdw/internal/parser/csv"
	"flightdw/internal/schema"
	"flightdw/internal/storage"
	"flightdw/internal/transformer"
)

// Runner wires file -> parser -> cleaner -> engine for one pipeline run.
type Runner struct {
	Logger Logger

	// NewRepository is a storage-agnostic factory seam; defaults to
	// storage.New in NewDefaultRunner.
	NewRepository func(ctx context.Context, cfg storage.Config) (storage.Repository, error)
}

func NewDefaultRunner(logger Logger) *Runner {
	return &Runner{
		Logger:        logger,
		NewRepository: storage.New,
	}
}

// Run executes one full extract-transform-load pass.
//
// Fatal conditions (unreadable input, unreachable store, load failure)
// return an error and leave the store untouched; field- and record-level
// defects are logged and counted in the Summary.
func (r *Runner) Run(ctx context.Context, cfg config.Pipeline) (Summary, error) {
	logf := (&Engine{Logger: r.Logger}).logger()
	start := time.Now()

	recs, stats, err := r.extractAndClean(ctx, cfg)
	if err != nil {
		return Summary{}, err
	}
	logf("stage=clean rows_read=%d rejected_no_date=%d records=%d",
		stats.RowsRead, stats.DateRejected, len(recs))

	repo, err := r.NewRepository(ctx, storage.Config{
		Kind: cfg.Storage.Kind,
		DSN:  os.ExpandEnv(cfg.Storage.DB.DSN),
	})
	if err != nil {
		return Summary{}, fmt.Errorf("connect storage: %w", err)
	}
	defer repo.Close()

	engine := &Engine{
		Repo:      repo,
		Logger:    r.Logger,
		BatchSize: cfg.Runtime.BatchSize,
	}
	sum, err := engine.Run(ctx, recs)
	sum.RowsRead = stats.RowsRead
	sum.DateRejected = stats.DateRejected
	if err != nil {
		return sum, err
	}

	reportMetrics(sum, time.Since(start))
	logf("stage=summary rows_read=%d rejected_no_date=%d dim_date=%d dim_airline=%d dim_airport=%d dim_passenger=%d dim_flight_type=%d fact_dropped=%d fact_loaded=%d",
		sum.RowsRead, sum.DateRejected, sum.DateRows, sum.AirlineRows,
		sum.AirportRows, sum.PassengerRows, sum.FlightTypeRows,
		sum.FactDropped, sum.FactRows)

	return sum, nil
}

// extractAndClean streams the source file through the parser and cleaning
// stage, collecting the surviving typed records.
func (r *Runner) extractAndClean(ctx context.Context, cfg config.Pipeline) ([]schema.CleanRecord, transformer.CleanStats, error) {
	var stats transformer.CleanStats

	f, err := os.Open(cfg.Source.File.Path)
	if err != nil {
		return nil, stats, fmt.Errorf("open source: %w", err)
	}
	// StreamRows closes f.

	buf := cfg.Runtime.ChannelBuffer
	if buf <= 0 {
		buf = 256
	}
	rowCh := make(chan *transformer.Row, buf)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The first parse error is fatal: it cancels the stream and fails the
	// run. Row-level data defects are not parse errors; they surface later
	// as cleaning rejections.
	var parseOnce sync.Once
	var parseErr error
	onParseErr := func(line int, err error) {
		parseOnce.Do(func() {
			parseErr = fmt.Errorf("parse error at line %d: %w", line, err)
			cancel()
		})
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(rowCh)
		_ = csv.StreamRows(ctx, f, schema.InputColumns, cfg.Parser.Options, rowCh, onParseErr)
	}()

	cleaner, err := transformer.NewCleaner(schema.InputColumns, r.logf())
	if err != nil {
		cancel()
		wg.Wait()
		return nil, stats, err
	}

	var recs []schema.CleanRecord
	for row := range rowCh {
		rec, ok := cleaner.Clean(row)
		row.Free()
		if ok {
			recs = append(recs, rec)
		}
	}
	wg.Wait()

	stats = cleaner.Stats()
	if parseErr != nil {
		return nil, stats, parseErr
	}
	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}
	return recs, stats, nil
}

func (r *Runner) logf() func(format string, v ...any) {
	return (&Engine{Logger: r.Logger}).logger()
}

func reportMetrics(sum Summary, elapsed time.Duration) {
	metrics.IncCounter("flightdw.rows_read", float64(sum.RowsRead), nil)
	metrics.IncCounter("flightdw.rows_rejected", float64(sum.DateRejected), []string{"stage:clean"})
	metrics.IncCounter("flightdw.rows_rejected", float64(sum.FactDropped), []string{"stage:fact"})
	metrics.IncCounter("flightdw.dim_rows", float64(sum.DateRows), []string{"table:" + schema.TableDate})
	metrics.IncCounter("flightdw.dim_rows", float64(sum.AirlineRows), []string{"table:" + schema.TableAirline})
	metrics.IncCounter("flightdw.dim_rows", float64(sum.AirportRows), []string{"table:" + schema.TableAirport})
	metrics.IncCounter("flightdw.dim_rows", float64(sum.PassengerRows), []string{"table:" + schema.TablePassenger})
	metrics.IncCounter("flightdw.dim_rows", float64(sum.FlightTypeRows), []string{"table:" + schema.TableFlightType})
	metrics.IncCounter("flightdw.fact_rows_loaded", float64(sum.FactRows), nil)
	metrics.IncCounter("flightdw.run_duration_ms", float64(elapsed.Milliseconds()), nil)
}
