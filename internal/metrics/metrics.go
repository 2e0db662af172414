// Package metrics decouples the pipeline from any specific metrics vendor.
// The core only ever calls the package-level helpers; a backend (e.g.
// internal/metrics/datadog) is installed once at startup. The default
// backend discards everything, so metrics are always safe to emit.
package metrics

import "sync"

// Backend receives metric observations and ships them somewhere.
type Backend interface {
	// IncCounter adds value to the named counter. Tags are "key:value"
	// strings; nil is fine.
	IncCounter(name string, value float64, tags []string)

	// Flush submits anything buffered. Called at least once at shutdown.
	Flush() error
}

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs the process-wide metrics backend.
func SetBackend(b Backend) {
	if b == nil {
		b = nopBackend{}
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

// IncCounter adds value to the named counter on the installed backend.
func IncCounter(name string, value float64, tags []string) {
	mu.RLock()
	b := backend
	mu.RUnlock()
	b.IncCounter(name, value, tags)
}

// Flush flushes the installed backend.
func Flush() error {
	mu.RLock()
	b := backend
	mu.RUnlock()
	return b.Flush()
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, []string) {}
func (nopBackend) Flush() error                         { return nil }
