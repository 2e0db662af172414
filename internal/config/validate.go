package config

import "fmt"

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single validation finding with a JSON-path-like location.
type Issue struct {
	Severity Severity
	Path     string
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Path, i.Message)
}

// ValidatePipeline checks a decoded pipeline config.
//
// Errors make the config unusable; warnings flag suspicious but runnable
// settings. Callers decide whether warnings are fatal.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	errf := func(path, format string, a ...any) {
		issues = append(issues, Issue{SeverityError, path, fmt.Sprintf(format, a...)})
	}
	warnf := func(path, format string, a ...any) {
		issues = append(issues, Issue{SeverityWarning, path, fmt.Sprintf(format, a...)})
	}

	if p.Job == "" {
		warnf("job", "empty job name; metrics and logs will use a generic job tag")
	}

	if p.Source.Kind != "file" {
		errf("source.kind", "must be %q (got %q)", "file", p.Source.Kind)
	}
	if p.Source.File == nil || p.Source.File.Path == "" {
		errf("source.file.path", "required")
	}

	if p.Parser.Kind != "csv" {
		errf("parser.kind", "must be %q (got %q)", "csv", p.Parser.Kind)
	}

	switch p.Storage.Kind {
	case "":
		errf("storage.kind", "required (mssql, sqlite or postgres)")
	case "mssql", "sqlite", "postgres":
	default:
		// Unknown kinds may still be registered by a custom build, so this
		// is a warning rather than an error.
		warnf("storage.kind", "unrecognized backend kind %q", p.Storage.Kind)
	}
	if p.Storage.DB.DSN == "" {
		errf("storage.db.dsn", "required")
	}

	if p.Runtime.BatchSize < 0 {
		errf("runtime.batch_size", "must be >= 0 (got %d)", p.Runtime.BatchSize)
	}
	if p.Runtime.BatchSize > 10000 {
		warnf("runtime.batch_size", "batch of %d may exceed driver parameter limits", p.Runtime.BatchSize)
	}
	if p.Runtime.ChannelBuffer < 0 {
		errf("runtime.channel_buffer", "must be >= 0 (got %d)", p.Runtime.ChannelBuffer)
	}

	return issues
}

// HasError reports whether any issue is an error.
func HasError(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}
