package config

import (
	"strings"
	"testing"
)

func TestDecodeRejectsUnknownFields(t *testing.T) {
	var p Pipeline
	err := Decode(strings.NewReader(`{"job":"x","sorce":{}}`), &p)
	if err == nil {
		t.Fatalf("expected decode error for unknown field")
	}
}

func TestValidatePipeline(t *testing.T) {
	good := Pipeline{
		Job:     "flights",
		Source:  Source{Kind: "file", File: &FileSource{Path: "data.csv"}},
		Parser:  Parser{Kind: "csv"},
		Storage: Storage{Kind: "sqlite", DB: DB{DSN: "warehouse.db"}},
	}
	if issues := ValidatePipeline(good); HasError(issues) {
		t.Fatalf("valid config reported errors: %v", issues)
	}

	cases := []struct {
		name   string
		mutate func(*Pipeline)
		path   string
	}{
		{"missing source path", func(p *Pipeline) { p.Source.File = nil }, "source.file.path"},
		{"wrong source kind", func(p *Pipeline) { p.Source.Kind = "s3" }, "source.kind"},
		{"wrong parser kind", func(p *Pipeline) { p.Parser.Kind = "json" }, "parser.kind"},
		{"missing storage kind", func(p *Pipeline) { p.Storage.Kind = "" }, "storage.kind"},
		{"missing dsn", func(p *Pipeline) { p.Storage.DB.DSN = "" }, "storage.db.dsn"},
		{"negative batch", func(p *Pipeline) { p.Runtime.BatchSize = -1 }, "runtime.batch_size"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := good
			tc.mutate(&p)
			issues := ValidatePipeline(p)
			if !HasError(issues) {
				t.Fatalf("expected an error issue")
			}
			found := false
			for _, iss := range issues {
				if iss.Severity == SeverityError && iss.Path == tc.path {
					found = true
				}
			}
			if !found {
				t.Fatalf("no error at path %q, got %v", tc.path, issues)
			}
		})
	}
}

func TestValidatePipelineWarnsOnUnknownBackend(t *testing.T) {
	p := Pipeline{
		Job:     "flights",
		Source:  Source{Kind: "file", File: &FileSource{Path: "data.csv"}},
		Parser:  Parser{Kind: "csv"},
		Storage: Storage{Kind: "duckdb", DB: DB{DSN: "x"}},
	}
	issues := ValidatePipeline(p)
	if HasError(issues) {
		t.Fatalf("unknown backend should be a warning, got errors: %v", issues)
	}
	if len(issues) == 0 {
		t.Fatalf("expected a warning for unknown backend")
	}
}

func TestOptionsAccessors(t *testing.T) {
	o := Options{
		"has_header":  true,
		"comma":       ";",
		"batch":       float64(42),
		"header_map":  map[string]any{"Airline Code": "airline_code"},
		"null_tokens": []any{"NA", "NULL"},
	}

	if !o.Bool("has_header", false) {
		t.Errorf("Bool(has_header) = false")
	}
	if o.Bool("missing", true) != true {
		t.Errorf("Bool default not honored")
	}
	if got := o.Rune("comma", ','); got != ';' {
		t.Errorf("Rune(comma) = %q", got)
	}
	if got := o.Int("batch", 0); got != 42 {
		t.Errorf("Int(batch) = %d", got)
	}
	if got := o.StringMap("header_map")["Airline Code"]; got != "airline_code" {
		t.Errorf("StringMap(header_map) = %q", got)
	}
	if got := o.StringSlice("null_tokens"); len(got) != 2 || got[0] != "NA" {
		t.Errorf("StringSlice(null_tokens) = %v", got)
	}
}
