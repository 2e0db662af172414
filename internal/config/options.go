package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Options is a loosely typed option bag decoded from pipeline JSON.
//
// Accessors never fail: a missing or mistyped option yields the caller's
// default. This keeps option handling at call sites to a single line and
// pushes all strictness into ValidatePipeline.
type Options map[string]any

// Any returns the raw value for key, or nil.
func (o Options) Any(key string) any {
	if o == nil {
		return nil
	}
	return o[key]
}

// Bool reads a boolean option. Accepts JSON booleans and the strings
// "true"/"false" (case-insensitive).
func (o Options) Bool(key string, def bool) bool {
	v := o.Any(key)
	switch t := v.(type) {
	case bool:
		return t
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
			return b
		}
	}
	return def
}

// Int reads an integer option. JSON numbers decode as float64, so both
// float64 and numeric strings are accepted.
func (o Options) Int(key string, def int) int {
	v := o.Any(key)
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
	}
	return def
}

// String reads a string option.
func (o Options) String(key string, def string) string {
	if s, ok := o.Any(key).(string); ok {
		return s
	}
	return def
}

// Rune reads a single-character option (e.g. a CSV delimiter).
func (o Options) Rune(key string, def rune) rune {
	s, ok := o.Any(key).(string)
	if !ok || s == "" {
		return def
	}
	return []rune(s)[0]
}

// StringMap reads a map[string]string option (e.g. header_map).
// Non-string values are stringified with fmt.Sprint.
func (o Options) StringMap(key string) map[string]string {
	raw, ok := o.Any(key).(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}

// StringSlice reads a []string option (e.g. null_tokens).
func (o Options) StringSlice(key string) []string {
	raw, ok := o.Any(key).([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
