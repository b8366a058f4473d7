package audit

import (
	"context"
	"sync"

	"github.com/ajitpratap0/modaudit/internal/models"
)

// Subscribe registers fn for disallowed-entries notifications. Callbacks run on
// the goroutine that performed the classification pass, after the engine's
// locks are released. The returned function removes the subscription.
func (e *Engine) Subscribe(fn func(models.DetectionEvent)) (unsubscribe func()) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	id := e.nextSubID
	e.nextSubID++
	e.subs[id] = fn
	return func() {
		e.subsMu.Lock()
		defer e.subsMu.Unlock()
		delete(e.subs, id)
	}
}

// Events returns a channel receiving every notification until ctx is done, at
// which point the channel is closed. A full buffer blocks the classification
// pass rather than dropping events.
func (e *Engine) Events(ctx context.Context, buffer int) <-chan models.DetectionEvent {
	ch := make(chan models.DetectionEvent, buffer)

	var (
		mu     sync.Mutex
		closed bool
	)
	unsubscribe := e.Subscribe(func(ev models.DetectionEvent) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- ev:
		case <-ctx.Done():
		}
	})

	go func() {
		<-ctx.Done()
		unsubscribe()
		mu.Lock()
		closed = true
		close(ch)
		mu.Unlock()
	}()

	return ch
}

func (e *Engine) dispatch(events []models.DetectionEvent) {
	if len(events) == 0 {
		return
	}

	e.subsMu.Lock()
	fns := make([]func(models.DetectionEvent), 0, len(e.subs))
	for id := 0; id < e.nextSubID; id++ {
		if fn, ok := e.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	e.subsMu.Unlock()

	for _, ev := range events {
		e.metrics.IncDetection()
		for _, fn := range fns {
			fn(ev)
		}
	}
}
