// Package audit runs periodic classification of every participant in the active
// session, caches the results and raises a one-shot notification per participant
// per session when disallowed entries are found.
package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/ajitpratap0/modaudit/internal/classifier"
	"github.com/ajitpratap0/modaudit/internal/fetcher"
	"github.com/ajitpratap0/modaudit/internal/metrics"
	"github.com/ajitpratap0/modaudit/internal/models"
	"github.com/ajitpratap0/modaudit/internal/session"
)

const (
	// DefaultCheckInterval is how often the roster is re-classified.
	DefaultCheckInterval = 5 * time.Second

	// NotInSessionSummary is returned by Summary outside a session.
	NotInSessionSummary = "Not in room"
)

// ErrNotFound is returned by cache queries when no result is held.
var ErrNotFound = errors.New("participant not found")

// Options configures an Engine.
type Options struct {
	CheckInterval time.Duration
	// ManualOnly disables the periodic tick in Run; explicit calls still work.
	ManualOnly bool
	// Loader is optional. When set, Run triggers a fetch on start and applies
	// its outcome on the scheduler goroutine.
	Loader *fetcher.Loader
	Now    func() time.Time
}

// sessionState is the last observed session; the zero value means "no session".
type sessionState struct {
	name   string
	active bool
}

// Engine owns the classification cache and the session dedup tracker.
type Engine struct {
	provider   session.Provider
	classifier classifier.Classifier
	loader     *fetcher.Loader
	metrics    *metrics.Metrics
	logger     *slog.Logger
	interval   time.Duration
	now        func() time.Time
	autoCheck  atomic.Bool

	// results is safe for concurrent readers; writes happen only under tickMu.
	results *cache.Cache

	tickMu  sync.Mutex
	flagged map[string]struct{}
	current sessionState

	runMu  sync.Mutex
	runCtx context.Context

	subsMu    sync.Mutex
	nextSubID int
	subs      map[int]func(models.DetectionEvent)
}

// NewEngine creates an engine reading participants from provider.
func NewEngine(provider session.Provider, cls classifier.Classifier, opts Options, m *metrics.Metrics, logger *slog.Logger) *Engine {
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = DefaultCheckInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	e := &Engine{
		provider:   provider,
		classifier: cls,
		loader:     opts.Loader,
		metrics:    m,
		logger:     logger,
		interval:   opts.CheckInterval,
		now:        opts.Now,
		results:    cache.New(cache.NoExpiration, 0),
		flagged:    make(map[string]struct{}),
		runCtx:     context.Background(),
		subs:       make(map[int]func(models.DetectionEvent)),
	}
	e.autoCheck.Store(!opts.ManualOnly)
	return e
}

// SetAutoCheck enables or disables the periodic tick.
func (e *Engine) SetAutoCheck(enabled bool) { e.autoCheck.Store(enabled) }

// AutoCheck reports whether the periodic tick is enabled.
func (e *Engine) AutoCheck() bool { return e.autoCheck.Load() }

// Run is the engine's scheduler. It classifies on every interval and applies
// dataset load outcomes, all on the calling goroutine, until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	e.runMu.Lock()
	e.runCtx = ctx
	e.runMu.Unlock()

	var completed <-chan fetcher.Outcome
	if e.loader != nil {
		completed = e.loader.Completed()
		e.loader.FetchData(ctx)
	}

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.logger.Info("audit engine started", "interval", e.interval, "auto_check", e.AutoCheck())
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("audit engine stopped")
			return nil
		case o := <-completed:
			e.loader.Apply(o)
		case <-ticker.C:
			if e.AutoCheck() {
				e.Tick()
			}
		}
	}
}

// Refresh triggers a background dataset fetch. It returns false when no loader
// is configured or a fetch is already in flight.
func (e *Engine) Refresh() bool {
	if e.loader == nil {
		return false
	}
	e.runMu.Lock()
	ctx := e.runCtx
	e.runMu.Unlock()
	return e.loader.FetchData(ctx)
}

// Tick observes session changes and, while in a session, classifies every participant.
func (e *Engine) Tick() {
	e.ClassifyAllParticipants()
}

// ClassifyAllParticipants classifies the whole roster and refreshes the cache.
// A session change observed here resets the dedup tracker exactly as a tick
// does. Outside a session it clears the cache instead.
func (e *Engine) ClassifyAllParticipants() {
	e.tickMu.Lock()
	e.syncSessionLocked()
	events := e.classifyAllLocked()
	e.tickMu.Unlock()

	e.dispatch(events)
}

// ClassifyParticipant classifies one participant without touching the cache.
// A participant that has left yields an empty result named "Unknown"; one still
// listed but without a network identity yields an empty result under its nickname.
func (e *Engine) ClassifyParticipant(handle string) *models.ClassificationResult {
	p, ok := e.provider.Lookup(handle)
	if !ok {
		name, _ := e.provider.NickName(handle)
		return models.NewClassificationResult(handle, name)
	}
	return e.classify(p)
}

func (e *Engine) classify(p session.Participant) *models.ClassificationResult {
	r := e.classifier.Classify(p.Handle, p.NickName, p.Metadata)
	r.UserID = p.UserID
	r.ActorNumber = p.ActorNumber
	return r
}

// syncSessionLocked clears the dedup tracker whenever the observed session differs
// from the remembered one, including transitions into or out of "no session".
func (e *Engine) syncSessionLocked() {
	name, active := e.provider.CurrentSession()
	observed := sessionState{name: name, active: active}
	if !active {
		observed = sessionState{}
	}
	if observed == e.current {
		return
	}

	e.logger.Info("session changed", "from", e.current.name, "to", observed.name, "in_session", observed.active)
	clear(e.flagged)
	e.current = observed
}

func (e *Engine) classifyAllLocked() []models.DetectionEvent {
	if !e.provider.InSession() {
		if e.results.ItemCount() > 0 {
			e.logger.Debug("not in a session, clearing classification cache")
			e.results.Flush()
		}
		e.metrics.SetCached(0)
		return nil
	}

	var (
		events     []models.DetectionEvent
		classified int
	)
	for _, handle := range e.provider.Participants() {
		p, ok := e.provider.Lookup(handle)
		if !ok {
			continue
		}

		r := e.classify(p)
		e.results.Set(handle, r, cache.NoExpiration)
		classified++

		if !r.HasDisallowed() {
			continue
		}
		if _, seen := e.flagged[p.UserID]; seen {
			continue
		}
		e.flagged[p.UserID] = struct{}{}
		events = append(events, models.DetectionEvent{
			ID:         uuid.New().String(),
			Session:    e.current.name,
			UserID:     p.UserID,
			DetectedAt: e.now().UTC(),
			Result:     r.Clone(),
		})
		e.logger.Warn("disallowed entries detected",
			"name", r.DisplayName,
			"user_id", p.UserID,
			"entries", strings.Join(r.Disallowed, ", "),
		)
	}

	e.metrics.IncTick()
	e.metrics.AddClassified(classified)
	e.metrics.SetCached(e.results.ItemCount())
	e.logger.Debug("classification pass complete", "classified", classified, "detections", len(events))
	return events
}

// ParticipantLeft drops the participant's cached result. The dedup tracker is
// kept, so rejoining the same session does not notify again.
func (e *Engine) ParticipantLeft(handle string) {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()
	e.results.Delete(handle)
	e.metrics.SetCached(e.results.ItemCount())
}

// ClearCache drops every cached result and forgets which participants were reported.
func (e *Engine) ClearCache() {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()
	e.results.Flush()
	clear(e.flagged)
	e.metrics.SetCached(0)
}

// Result returns the last known result for a participant handle.
func (e *Engine) Result(handle string) (*models.ClassificationResult, error) {
	v, ok := e.results.Get(handle)
	if !ok {
		return nil, fmt.Errorf("handle %q: %w", handle, ErrNotFound)
	}
	return v.(*models.ClassificationResult).Clone(), nil
}

// ResultByActor returns the first cached result whose actor number matches.
// Results are scanned in handle order.
func (e *Engine) ResultByActor(actor int) (*models.ClassificationResult, error) {
	for _, r := range e.snapshot() {
		if r.ActorNumber == actor {
			return r, nil
		}
	}
	return nil, fmt.Errorf("actor %d: %w", actor, ErrNotFound)
}

// Results returns every cached result, ordered by handle.
func (e *Engine) Results() []*models.ClassificationResult {
	return e.snapshot()
}

// Flagged returns the cached results with at least one disallowed entry.
func (e *Engine) Flagged() []*models.ClassificationResult {
	var out []*models.ClassificationResult
	for _, r := range e.snapshot() {
		if r.HasDisallowed() {
			out = append(out, r)
		}
	}
	return out
}

// RoomSummary counts the cached results for the active session.
func (e *Engine) RoomSummary() models.RoomSummary {
	name, active := e.provider.CurrentSession()
	if !active {
		return models.RoomSummary{}
	}
	s := models.RoomSummary{InSession: true, Session: name}
	for _, r := range e.snapshot() {
		s.Total++
		if r.HasAny() {
			s.WithEntries++
		}
		if r.HasDisallowed() {
			s.Disallowed++
		}
	}
	return s
}

// Summary renders RoomSummary as a single line.
func (e *Engine) Summary() string {
	s := e.RoomSummary()
	if !s.InSession {
		return NotInSessionSummary
	}
	return fmt.Sprintf("Players: %d | With Mods: %d | Illegal: %d", s.Total, s.WithEntries, s.Disallowed)
}

func (e *Engine) snapshot() []*models.ClassificationResult {
	items := e.results.Items()
	handles := make([]string, 0, len(items))
	for h := range items {
		handles = append(handles, h)
	}
	sort.Strings(handles)

	out := make([]*models.ClassificationResult, 0, len(handles))
	for _, h := range handles {
		out = append(out, items[h].Object.(*models.ClassificationResult).Clone())
	}
	return out
}
