// Package poll drives the fixed-interval synchronization loop against the
// simulation server. It is the single point of contact with the network
// boundary: each tick it re-reads the snapshot, detects step changes, and on a
// change fetches the event window and results before handing a coherent triple
// to the render side.
package poll

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arcane-sim/arcaneviz/internal/api"
)

// Fetcher is the read surface the engine polls. *api.Client satisfies it.
type Fetcher interface {
	State(ctx context.Context) (*api.Snapshot, error)
	RecentEvents(ctx context.Context, n int) ([]api.EventRecord, error)
	Results(ctx context.Context) (*api.ResultsSnapshot, error)
}

// Update is one coherent (state, events, results) triple produced by a
// changed-step tick. Results may be nil with ResultsErr set when the server
// reported "not yet available" — the panel renders a placeholder for that.
type Update struct {
	Snapshot   *api.Snapshot
	Events     []api.EventRecord
	Results    *api.ResultsSnapshot
	ResultsErr error
}

// Engine polls on its own goroutine and parks the newest undelivered update in
// a one-slot mailbox. Deliver must be called from the render loop's update
// turn; observers therefore only ever run between frames, and the poll
// goroutine never touches render state. The read chain runs synchronously
// inside the poll goroutine, so two chains can never be in flight at once.
type Engine struct {
	fetcher  Fetcher
	interval time.Duration
	window   int
	log      *zap.Logger

	stateObs  []func(*api.Snapshot)
	eventObs  []func([]api.EventRecord)
	resultObs []func(*api.ResultsSnapshot, error)

	// lastStep is touched only by the poll goroutine (or by direct tick
	// calls in tests). -1 means no snapshot observed yet.
	lastStep int

	mu      sync.Mutex
	pending *Update
	cancel  context.CancelFunc
	done    chan struct{}
	stopped bool
}

// NewEngine builds an engine. window is the event count requested per changed
// step. Observers must be registered before Start.
func NewEngine(f Fetcher, interval time.Duration, window int, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		fetcher:  f,
		interval: interval,
		window:   window,
		log:      log,
		lastStep: -1,
	}
}

// OnState registers a snapshot observer. Dispatch order is registration order;
// all state observers run before any event observer.
func (e *Engine) OnState(fn func(*api.Snapshot)) { e.stateObs = append(e.stateObs, fn) }

// OnEvents registers an event-window observer.
func (e *Engine) OnEvents(fn func([]api.EventRecord)) { e.eventObs = append(e.eventObs, fn) }

// OnResults registers a results observer. err is api.ErrNotAvailable when the
// server has nothing to report yet.
func (e *Engine) OnResults(fn func(*api.ResultsSnapshot, error)) {
	e.resultObs = append(e.resultObs, fn)
}

// Start launches the poll goroutine. Calling Start on a running or stopped
// engine is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil || e.stopped {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})
	go e.run(ctx)
	e.log.Info("poll engine started", zap.Duration("interval", e.interval), zap.Int("window", e.window))
}

// Stop halts polling. Idempotent and safe to call on an engine that was never
// started. Any read chain still in flight finishes on its own, but its update
// is dropped: after Stop no observer will run again.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	e.pending = nil
	cancel := e.cancel
	done := e.done
	e.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	e.log.Info("poll engine stopped")
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)
	// Immediate first poll so the view fills without waiting a full interval.
	e.tick(ctx)
	t := time.NewTicker(e.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			e.tick(ctx)
		}
	}
}

// tick runs one read chain: state, change check, then events and results.
// Any failure before the chain completes leaves lastStep untouched, so the
// next tick retries the whole chain. The fixed interval is the only retry
// mechanism; there is no backoff.
func (e *Engine) tick(ctx context.Context) {
	snap, err := e.fetcher.State(ctx)
	if err != nil {
		e.log.Debug("state read skipped", zap.Error(err))
		return
	}
	if snap.Step == e.lastStep {
		return
	}

	events, err := e.fetcher.RecentEvents(ctx, e.window)
	if err != nil {
		e.log.Debug("event read skipped", zap.Error(err))
		return
	}

	results, rerr := e.fetcher.Results(ctx)
	if rerr != nil && !errors.Is(rerr, api.ErrNotAvailable) {
		// Transport or payload failure: retry the whole chain next tick.
		// ErrNotAvailable is different — it is a real server answer and is
		// carried through so the results panel can show its placeholder.
		e.log.Debug("results read skipped", zap.Error(rerr))
		return
	}

	e.lastStep = snap.Step
	e.publish(&Update{Snapshot: snap, Events: events, Results: results, ResultsErr: rerr})
}

func (e *Engine) publish(u *Update) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	// A newer update replaces an undelivered older one; observers only ever
	// see the latest coherent triple.
	e.pending = u
}

// Deliver hands the newest pending update to the observers, in fixed order:
// state, then events, then results. Call it once per frame from the render
// loop. It returns true when an update was dispatched.
func (e *Engine) Deliver() bool {
	e.mu.Lock()
	u := e.pending
	e.pending = nil
	stopped := e.stopped
	e.mu.Unlock()
	if u == nil || stopped {
		return false
	}
	for _, fn := range e.stateObs {
		fn(u.Snapshot)
	}
	for _, fn := range e.eventObs {
		fn(u.Events)
	}
	for _, fn := range e.resultObs {
		fn(u.Results, u.ResultsErr)
	}
	return true
}
