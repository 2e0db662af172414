// Package datadog implements a Datadog backend for internal/metrics.
//
// Counters are buffered in memory and submitted on a ticker (default once
// per minute) plus one final time on Close. A short-lived batch job
// therefore still gets exactly one submission at shutdown, while a long run
// produces an actual time series.
package datadog

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	dd "github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
)

// Options configures the backend.
type Options struct {
	// JobName becomes the tag "job:<name>" on every metric. Defaults to
	// "flightdw".
	JobName string

	// Tags are extra tags attached to every metric ("env:prod", ...).
	Tags []string

	// FlushEvery controls the periodic submission interval. Defaults to 60s.
	FlushEvery time.Duration

	// Unexported test seams. Production code never sets these; tests use
	// them to avoid real HTTP and nondeterministic clocks.
	now       func() time.Time
	submitter metricsSubmitter
}

// metricsSubmitter is the minimal slice of the Datadog SDK the backend
// needs; *datadogV2.MetricsApi satisfies it, and tests install a fake.
type metricsSubmitter interface {
	SubmitMetrics(ctx context.Context, body datadogV2.MetricPayload, params ...datadogV2.SubmitMetricsOptionalParameters) (datadogV2.IntakePayloadAccepted, *http.Response, error)
}

type counter struct {
	name  string
	tags  []string
	value float64
}

// Backend implements metrics.Backend for Datadog.
type Backend struct {
	api  metricsSubmitter
	ctx  context.Context
	tags []string
	now  func() time.Time

	mu       sync.Mutex
	counters map[string]*counter

	stop chan struct{}
	done chan struct{}
}

// NewBackend constructs the backend and starts its periodic flush loop.
// Credentials come from the standard DD_API_KEY / DD_SITE environment; an
// absent API key is an immediate error rather than silent metric loss.
func NewBackend(ctx context.Context, opts Options) (*Backend, error) {
	if opts.submitter == nil {
		if os.Getenv("DD_API_KEY") == "" {
			return nil, fmt.Errorf("datadog: DD_API_KEY is not set")
		}
		cfg := dd.NewConfiguration()
		opts.submitter = datadogV2.NewMetricsApi(dd.NewAPIClient(cfg))
		ctx = dd.NewDefaultContext(ctx)
	}
	if opts.now == nil {
		opts.now = time.Now
	}

	job := opts.JobName
	if job == "" {
		job = "flightdw"
	}
	tags := append([]string{"job:" + job}, opts.Tags...)
	sort.Strings(tags)

	flushEvery := opts.FlushEvery
	if flushEvery <= 0 {
		flushEvery = 60 * time.Second
	}

	b := &Backend{
		api:      opts.submitter,
		ctx:      ctx,
		tags:     tags,
		now:      opts.now,
		counters: map[string]*counter{},
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go b.flushLoop(flushEvery)
	return b, nil
}

// IncCounter buffers a counter increment.
func (b *Backend) IncCounter(name string, value float64, tags []string) {
	all := append(append([]string{}, b.tags...), tags...)
	sort.Strings(all)
	key := name + "|" + strings.Join(all, ",")

	b.mu.Lock()
	defer b.mu.Unlock()
	c := b.counters[key]
	if c == nil {
		c = &counter{name: name, tags: all}
		b.counters[key] = c
	}
	c.value += value
}

// Flush submits buffered counters. Buffers are snapshotted and reset under
// the lock, then submitted outside it so metric producers never block on
// network I/O.
func (b *Backend) Flush() error {
	b.mu.Lock()
	snapshot := b.counters
	b.counters = map[string]*counter{}
	b.mu.Unlock()

	if len(snapshot) == 0 {
		return nil
	}

	ts := b.now().Unix()
	series := make([]datadogV2.MetricSeries, 0, len(snapshot))
	for _, c := range snapshot {
		series = append(series, datadogV2.MetricSeries{
			Metric: c.name,
			Type:   datadogV2.METRICINTAKETYPE_COUNT.Ptr(),
			Tags:   c.tags,
			Points: []datadogV2.MetricPoint{{
				Timestamp: dd.PtrInt64(ts),
				Value:     dd.PtrFloat64(c.value),
			}},
		})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Metric < series[j].Metric })

	_, _, err := b.api.SubmitMetrics(b.ctx, datadogV2.MetricPayload{Series: series})
	if err != nil {
		return fmt.Errorf("datadog: submit metrics: %w", err)
	}
	return nil
}

// Close stops the flush loop and performs a final Flush. This is the clean
// shutdown path; call it from a defer in main.
func (b *Backend) Close() error {
	close(b.stop)
	<-b.done
	return b.Flush()
}

func (b *Backend) flushLoop(every time.Duration) {
	defer close(b.done)

	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			_ = b.Flush()
		case <-b.stop:
			return
		}
	}
}

// ParseTagsCSV parses a comma-separated tag list from the environment
// ("env:prod, team:data") into a tag slice, dropping empties.
func ParseTagsCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
