// Package config defines the pipeline configuration decoded from JSON and
// its validation. The config names the source file, parser options, the
// destination warehouse backend, and runtime knobs; everything about the
// warehouse schema itself is fixed in code (internal/schema).
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

type Pipeline struct {
	Job     string  `json:"job"`
	Source  Source  `json:"source"`
	Parser  Parser  `json:"parser"`
	Storage Storage `json:"storage"`
	Runtime Runtime `json:"runtime"`
}

type Source struct {
	Kind string      `json:"kind"` // "file"
	File *FileSource `json:"file,omitempty"`
}

type FileSource struct {
	Path string `json:"path"`
}

type Parser struct {
	Kind    string  `json:"kind"` // "csv"
	Options Options `json:"options"`
}

type Storage struct {
	// Backend kind: "mssql" | "sqlite" | "postgres".
	Kind string `json:"kind"`
	DB   DB     `json:"db"`
}

type DB struct {
	// DSN may reference environment variables (${FLIGHTDW_DSN}); callers
	// expand it with os.ExpandEnv before opening connections.
	DSN string `json:"dsn"`
}

// Runtime controls execution behavior.
type Runtime struct {
	// BatchSize is the number of rows per INSERT statement. Defaults to 1000.
	BatchSize int `json:"batch_size"`

	// ChannelBuffer sizes the parser -> cleaner channel. Defaults to 256.
	ChannelBuffer int `json:"channel_buffer"`
}

// Load reads and decodes a pipeline config file.
func Load(path string) (Pipeline, error) {
	var p Pipeline

	f, err := os.Open(path)
	if err != nil {
		return p, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	if err := Decode(f, &p); err != nil {
		return p, fmt.Errorf("decode config %s: %w", path, err)
	}
	return p, nil
}

// Decode decodes a pipeline config from r. Unknown fields are rejected so a
// typo in a config key fails loudly instead of silently using defaults.
func Decode(r io.Reader, p *Pipeline) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	return dec.Decode(p)
}
