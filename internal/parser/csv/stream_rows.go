// Package csv streams the raw flight export into pooled rows aligned to the
// canonical input column order.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"flightdw/internal/config"
	"flightdw/internal/transformer"
)

// defaultNullTokens are the literals the source system writes for missing
// values, in addition to the empty string.
var defaultNullTokens = []string{"NA", "NULL", "null"}

// StreamRows reads CSV from src into pooled *transformer.Row values aligned
// to columns, sending them on out. It returns when the input is exhausted or
// ctx is canceled; out is never closed here (the caller owns the channel).
//
// Options:
//   - has_header (bool, default true)
//   - comma (string, default ",")
//   - trim_space (bool, default true)
//   - lazy_quotes (bool, default false)
//   - header_map (map: source header -> canonical column)
//   - null_tokens ([]string, default ["NA","NULL","null"])
//
// Cancellation: on ctx cancellation in-flight rows are Drop()ed, not Free()d,
// so the pool never hands a row back while a draining stage still reads it.
func StreamRows(
	ctx context.Context,
	src io.ReadCloser,
	columns []string,
	opt config.Options,
	out chan<- *transformer.Row,
	onErr func(line int, err error),
) error {
	defer src.Close()

	hasHeader := opt.Bool("has_header", true)
	trim := opt.Bool("trim_space", true)
	hm := opt.StringMap("header_map")

	nullTokens := opt.StringSlice("null_tokens")
	if nullTokens == nil {
		nullTokens = defaultNullTokens
	}
	isNull := make(map[string]bool, len(nullTokens))
	for _, tok := range nullTokens {
		isNull[tok] = true
	}

	cr := csv.NewReader(src)
	cr.Comma = opt.Rune("comma", ',')
	cr.ReuseRecord = true
	cr.LazyQuotes = opt.Bool("lazy_quotes", false)
	cr.FieldsPerRecord = -1

	// colIx[target column] = source field index, -1 when absent.
	colIx := make([]int, len(columns))
	for i := range colIx {
		colIx[i] = -1
	}

	var line int
	readRec := func() ([]string, error) {
		line++
		return cr.Read()
	}

	if hasHeader {
		hdr, err := readRec()
		if err != nil {
			if onErr != nil {
				onErr(line, fmt.Errorf("read header: %w", err))
			}
			return err
		}
		srcToIdx := make(map[string]int, len(hdr))
		for i, h := range hdr {
			if transformer.HasEdgeSpace(h) {
				h = strings.TrimSpace(h)
			}
			if i == 0 {
				h = strings.TrimPrefix(h, "\uFEFF")
			}
			if mapped, ok := hm[h]; ok {
				h = mapped
			} else {
				h = strings.ReplaceAll(strings.ToLower(h), " ", "_")
			}
			srcToIdx[h] = i
		}
		for t, target := range columns {
			if si, ok := srcToIdx[target]; ok {
				colIx[t] = si
			}
		}
	} else {
		for i := range columns {
			colIx[i] = i
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec, err := readRec()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if onErr != nil {
				onErr(line, fmt.Errorf("csv read: %w", err))
			}
			continue
		}

		row := transformer.GetRow(len(columns))
		row.Line = line

		for t := range columns {
			si := colIx[t]
			if si < 0 || si >= len(rec) {
				row.V[t] = nil
				continue
			}
			v := rec[si]
			if trim && transformer.HasEdgeSpace(v) {
				v = strings.TrimSpace(v)
			}
			if v == "" || isNull[v] {
				row.V[t] = nil
			} else {
				row.V[t] = v
			}
		}

		select {
		case out <- row:
		case <-ctx.Done():
			row.Drop()
			return ctx.Err()
		}
	}
}
