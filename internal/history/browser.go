// Package history drives the archived-run browser: a list/detail navigation
// over runs stored server-side. The run list is fetched once per session and
// cached; a selected run's results are fetched per view and never cached.
package history

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arcane-sim/arcaneviz/internal/api"
)

// Fetcher is the slice of the API surface the browser needs.
type Fetcher interface {
	Runs(ctx context.Context) ([]api.RunSummary, error)
	RunResults(ctx context.Context, runID string) (*api.ResultsSnapshot, error)
}

// Mode is the browser's current view state.
type Mode uint8

const (
	ModeClosed Mode = iota
	ModeListLoading
	ModeList
	ModeListError
	ModeDetailLoading
	ModeDetail
	ModeDetailError
)

const fetchTimeout = 10 * time.Second

// Browser is the history view state machine. All state transitions happen on
// the render loop's update turn: fetches run on their own goroutines and post
// an apply closure to a mailbox that Pump drains each frame, so no method here
// ever blocks and no fetch result lands mid-frame.
type Browser struct {
	fetcher Fetcher
	log     *zap.Logger

	mode        Mode
	runs        []api.RunSummary
	listFetched bool
	cursor      int
	selected    string
	detail      *api.ResultsSnapshot
	detailErr   error

	mu    sync.Mutex
	inbox []func()

	// spawn runs a fetch; replaced in tests to make fetches synchronous.
	spawn func(func())
}

// New builds a closed browser.
func New(f Fetcher, log *zap.Logger) *Browser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Browser{
		fetcher: f,
		log:     log,
		spawn:   func(fn func()) { go fn() },
	}
}

// Mode returns the current view state.
func (b *Browser) Mode() Mode { return b.mode }

// Runs returns the cached run list (valid in ModeList and later).
func (b *Browser) Runs() []api.RunSummary { return b.runs }

// Cursor returns the highlighted list index.
func (b *Browser) Cursor() int { return b.cursor }

// Detail returns the fetched results and fetch error for the selected run.
func (b *Browser) Detail() (*api.ResultsSnapshot, error) { return b.detail, b.detailErr }

// SelectedRun returns the run id the detail view is showing.
func (b *Browser) SelectedRun() string { return b.selected }

// Activate opens the browser. The first activation of the session fetches the
// run list; every later one reuses the cache without a network read.
func (b *Browser) Activate() {
	if b.mode != ModeClosed {
		return
	}
	if b.listFetched {
		b.mode = ModeList
		return
	}
	b.mode = ModeListLoading
	b.spawn(func() {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		runs, err := b.fetcher.Runs(ctx)
		b.post(func() {
			if b.mode != ModeListLoading {
				return
			}
			if err != nil {
				b.log.Debug("run list fetch failed", zap.Error(err))
				b.mode = ModeListError
				return
			}
			b.runs = runs
			b.listFetched = true
			b.cursor = 0
			b.mode = ModeList
		})
	})
}

// Close hides the browser. The cached list survives for the session.
func (b *Browser) Close() {
	b.mode = ModeClosed
	b.detail = nil
	b.detailErr = nil
	b.selected = ""
}

// Toggle opens or closes the browser.
func (b *Browser) Toggle() {
	if b.mode == ModeClosed {
		b.Activate()
	} else {
		b.Close()
	}
}

// MoveCursor shifts the list highlight, clamped to the list bounds.
func (b *Browser) MoveCursor(delta int) {
	if b.mode != ModeList || len(b.runs) == 0 {
		return
	}
	b.cursor += delta
	if b.cursor < 0 {
		b.cursor = 0
	}
	if b.cursor >= len(b.runs) {
		b.cursor = len(b.runs) - 1
	}
}

// Select fetches the highlighted run's results and switches to the detail
// view. Results are fetched fresh on every selection.
func (b *Browser) Select() {
	if b.mode != ModeList || len(b.runs) == 0 {
		return
	}
	runID := b.runs[b.cursor].RunID
	b.selected = runID
	b.mode = ModeDetailLoading
	b.spawn(func() {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		res, err := b.fetcher.RunResults(ctx, runID)
		b.post(func() {
			if b.mode != ModeDetailLoading || b.selected != runID {
				return
			}
			if err != nil && !errors.Is(err, api.ErrNotFound) {
				b.log.Debug("run detail fetch failed", zap.String("run", runID), zap.Error(err))
				b.mode = ModeDetailError
				b.detailErr = err
				return
			}
			b.detail = res
			b.detailErr = err
			b.mode = ModeDetail
		})
	})
}

// Back returns from the detail view to the cached list without refetching.
func (b *Browser) Back() {
	switch b.mode {
	case ModeDetail, ModeDetailError, ModeDetailLoading:
		b.detail = nil
		b.detailErr = nil
		b.selected = ""
		b.mode = ModeList
	case ModeListError:
		// Allow a retry path: an errored list closes back out.
		b.listFetched = false
		b.mode = ModeClosed
	case ModeList:
		b.mode = ModeClosed
	}
}

func (b *Browser) post(fn func()) {
	b.mu.Lock()
	b.inbox = append(b.inbox, fn)
	b.mu.Unlock()
}

// Pump applies completed fetch results. Call once per frame from the render
// loop's update turn.
func (b *Browser) Pump() {
	b.mu.Lock()
	pending := b.inbox
	b.inbox = nil
	b.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}
