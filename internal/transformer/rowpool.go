// Package transformer turns raw parsed rows into typed flight records.
// This file defines a pooled Row container shared between the parser and the
// cleaning stage to keep per-row allocations off the hot path.
package transformer

import "sync"

// Row is a pooled positional row. Fields are aligned to the canonical input
// column order (schema.InputColumns); nil means the source value was missing.
//
// Ownership contract:
//   - Exactly one goroutine owns a Row at a time.
//   - Rows move parser -> cleaner over a channel (ownership transfer).
//   - The final consumer calls Free() when fully done with r.V.
//   - On cancellation paths use Drop() instead: a row returned to the pool
//     while a draining stage still reads it would be reused concurrently.
type Row struct {
	V    []any
	Line int // 1-based record number in the source file, if known
}

var rowPool sync.Pool

// GetRow returns a pooled Row with length colCount and all fields nil.
func GetRow(colCount int) *Row {
	if v := rowPool.Get(); v != nil {
		r := v.(*Row)
		if cap(r.V) < colCount {
			r.V = make([]any, colCount)
		}
		r.V = r.V[:colCount]
		for i := range r.V {
			r.V[i] = nil
		}
		r.Line = 0
		return r
	}
	return &Row{V: make([]any, colCount)}
}

// Free returns the Row to the pool. Only call when no other goroutine can
// still observe r or r.V.
func (r *Row) Free() {
	rowPool.Put(r)
}

// Drop discards the Row without re-pooling. Use on cancellation paths.
func (r *Row) Drop() {
	r.V = nil
	r.Line = 0
}

// HasEdgeSpace reports whether s starts or ends with ASCII whitespace.
// Cheap pre-check so hot paths can skip strings.TrimSpace for the common
// already-clean case.
func HasEdgeSpace(s string) bool {
	if s == "" {
		return false
	}
	return isSpaceByte(s[0]) || isSpaceByte(s[len(s)-1])
}

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
