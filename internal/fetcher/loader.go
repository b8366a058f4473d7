// Package fetcher loads the reference dataset from the remote definitions endpoint,
// falling back to the embedded tables on any failure.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ajitpratap0/modaudit/internal/dataset"
	"github.com/ajitpratap0/modaudit/internal/metrics"
	"github.com/ajitpratap0/modaudit/internal/models"
	"github.com/ajitpratap0/modaudit/pkg/defparse"
)

const (
	// DefaultURL is the published definitions document.
	DefaultURL = "https://www.poopoovr.co.uk/data"

	// DefaultTimeout bounds a single fetch, including reading the body.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxBodyBytes caps the size of the definitions document.
	DefaultMaxBodyBytes = 4 << 20
)

var (
	// ErrBadStatus is returned when the endpoint answers with a non-2xx status.
	ErrBadStatus = errors.New("unexpected status")

	// ErrBodyTooLarge is returned when the document exceeds the configured limit.
	ErrBodyTooLarge = errors.New("response body too large")
)

// Outcome is the result of one load attempt. Err is nil for a remote load and
// holds the cause when the fallback tables were used.
type Outcome struct {
	Disallowed map[string]string
	Permitted  map[string]string
	Source     models.DatasetSource
	Err        error
}

// Options configures a Loader. Zero values select the defaults.
type Options struct {
	URL          string
	Timeout      time.Duration
	MaxBodyBytes int64
	Client       *http.Client
}

// Loader fetches the definitions document in the background. Outcomes are
// delivered on Completed and take effect only when passed to Apply, so the
// store is mutated on the caller's scheduler.
type Loader struct {
	url       string
	timeout   time.Duration
	maxBody   int64
	client    *http.Client
	store     *dataset.Store
	metrics   *metrics.Metrics
	logger    *slog.Logger
	completed chan Outcome
	wg        sync.WaitGroup
}

// NewLoader creates a loader that populates st.
func NewLoader(st *dataset.Store, opts Options, m *metrics.Metrics, logger *slog.Logger) *Loader {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Client == nil {
		opts.Client = &http.Client{}
	}
	return &Loader{
		url:     opts.URL,
		timeout: opts.Timeout,
		maxBody: opts.MaxBodyBytes,
		client:  opts.Client,
		store:   st,
		metrics: m,
		logger:  logger,
		// One slot: a new fetch cannot start until the previous outcome was applied.
		completed: make(chan Outcome, 1),
	}
}

// FetchData starts a background load. It returns false without doing anything
// when a load is already in flight.
func (l *Loader) FetchData(ctx context.Context) bool {
	if !l.store.BeginLoad() {
		l.logger.Debug("definitions fetch already in flight")
		return false
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.completed <- l.fetch(ctx)
	}()
	return true
}

// Completed delivers the outcome of each FetchData call.
func (l *Loader) Completed() <-chan Outcome {
	return l.completed
}

// Apply publishes an outcome to the store and raises the load-completed notification.
func (l *Loader) Apply(o Outcome) {
	l.store.CompleteLoad(o.Disallowed, o.Permitted, o.Source)
	counts := l.store.Counts()
	l.metrics.ObserveLoad(counts)
	l.logger.Info("reference dataset loaded",
		"source", counts.Source, "cheats", counts.Disallowed, "mods", counts.Permitted)
}

// Load runs one fetch and applies it before returning. It is meant for callers
// without a scheduler loop and must not be mixed with one that drains Completed.
func (l *Loader) Load(ctx context.Context) Outcome {
	if !l.FetchData(ctx) {
		l.logger.Debug("waiting for in-flight definitions fetch")
	}
	o := <-l.completed
	l.Apply(o)
	return o
}

// Wait blocks until every background fetch goroutine has exited.
func (l *Loader) Wait() {
	l.wg.Wait()
}

func (l *Loader) fetch(ctx context.Context) Outcome {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	l.logger.Debug("fetching definitions", "url", l.url)

	body, err := l.get(ctx)
	if err != nil {
		l.logger.Warn("failed to fetch definitions, using fallback", "url", l.url, "error", err)
		return fallbackOutcome(err)
	}

	defs, err := defparse.ParseBody(body)
	if err != nil {
		l.logger.Error("failed to parse definitions, using fallback", "error", err)
		return fallbackOutcome(fmt.Errorf("parsing definitions: %w", err))
	}

	return Outcome{
		Disallowed: defs.Disallowed,
		Permitted:  defs.Permitted,
		Source:     models.SourceRemote,
	}
}

func (l *Loader) get(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling definitions endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBody+1))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if int64(len(data)) > l.maxBody {
		return "", fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, l.maxBody)
	}
	return string(data), nil
}

func fallbackOutcome(cause error) Outcome {
	disallowed, permitted := dataset.Fallback()
	return Outcome{
		Disallowed: disallowed,
		Permitted:  permitted,
		Source:     models.SourceFallback,
		Err:        cause,
	}
}
