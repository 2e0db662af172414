package transformer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Canonical defaults for categorical fields.
const (
	Unknown            = "UNKNOWN"
	DefaultNationality = "XX"
	DefaultCurrency    = "USD"
)

// genderMap collapses the source system's gender spellings onto M/F/X.
var genderMap = map[string]string{
	"M": "M", "MASCULINO": "M",
	"F": "F", "FEMENINO": "F",
	"X": "X", "NOBINARIO": "X",
}

// Gender maps a raw gender value to M, F, X or UNKNOWN.
func Gender(v any) string {
	s, ok := stringValue(v)
	if !ok {
		return Unknown
	}
	if g, ok := genderMap[strings.ToUpper(s)]; ok {
		return g
	}
	return Unknown
}

// Price converts a raw price string to a float.
//
// Decimal commas are rewritten to points before parsing. Missing values and
// parse failures both degrade to 0.0; the source system never rejects a row
// for a bad price, so neither do we.
func Price(v any) float64 {
	s, ok := stringValue(v)
	if !ok {
		return 0.0
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0.0
	}
	return f
}

// timestampLayouts is the fixed, ordered list of accepted date formats.
//
// Order is load-bearing: layouts carrying a time component come first, and an
// ambiguous date-only literal always resolves to the first layout that
// accepts it (day/month before month/day). Do not sort or "improve" this
// list; reordering silently changes which calendar date ambiguous inputs
// land on.
var timestampLayouts = []string{
	"02/01/2006 15:04",
	"01-02-2006 03:04 PM",
	"01/02/2006 15:04",
	"02/01/2006",
	"01-02-2006",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp parses a raw timestamp against the fixed layout list.
//
// Returns:
//   - (nil, nil) when the value is missing or blank
//   - (&t, nil) on the first successful parse
//   - (nil, err) when no layout matches; the error carries the literal so
//     callers can log the rejection
func Timestamp(v any) (*time.Time, error) {
	s, ok := stringValue(v)
	if !ok {
		return nil, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q", s)
}

// DateKey encodes a timestamp's calendar date as YYYYMMDD.
func DateKey(t time.Time) int64 {
	return int64(t.Year())*10000 + int64(t.Month())*100 + int64(t.Day())
}

// Category trims and uppercases a categorical value, substituting def when
// the value is missing or blank.
func Category(v any, def string) string {
	s, ok := stringValue(v)
	if !ok {
		return def
	}
	return strings.ToUpper(s)
}

// DisplayName title-cases a free-text name ("iberia airlines" -> "Iberia
// Airlines"). Missing values yield "".
func DisplayName(v any) string {
	s, ok := stringValue(v)
	if !ok {
		return ""
	}
	return cases.Title(language.English).String(strings.ToLower(s))
}

// stringValue extracts a trimmed string from a raw scalar. ok is false for
// nil, non-strings and blank strings.
func stringValue(v any) (string, bool) {
	var s string
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		s = fmt.Sprint(v)
	}
	if HasEdgeSpace(s) {
		s = strings.TrimSpace(s)
	}
	if s == "" {
		return "", false
	}
	return s, true
}
