package history

import (
	"context"
	"errors"
	"testing"

	"github.com/arcane-sim/arcaneviz/internal/api"
)

type fakeFetcher struct {
	listReads   int
	detailReads int
	listErr     error
	detailErr   error
}

func (f *fakeFetcher) Runs(context.Context) ([]api.RunSummary, error) {
	f.listReads++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []api.RunSummary{
		{RunID: "R1", Date: "2026-08-30 12:00", Steps: 40, Reveals: 2, SizeKB: 58.3},
		{RunID: "R2", Date: "2026-08-29 09:00", Steps: 25, Reveals: 0, SizeKB: 31.0},
	}, nil
}

func (f *fakeFetcher) RunResults(_ context.Context, runID string) (*api.ResultsSnapshot, error) {
	f.detailReads++
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	return &api.ResultsSnapshot{RunID: runID, TotalSteps: 40}, nil
}

// newSyncBrowser makes fetches run inline so a Pump right after an action
// applies the result deterministically.
func newSyncBrowser(f *fakeFetcher) *Browser {
	b := New(f, nil)
	b.spawn = func(fn func()) { fn() }
	return b
}

func TestActivate_FetchesListOnce(t *testing.T) {
	f := &fakeFetcher{}
	b := newSyncBrowser(f)

	b.Activate()
	b.Pump()
	if b.Mode() != ModeList {
		t.Fatalf("mode = %d", b.Mode())
	}
	b.Close()
	b.Activate() // second activation must reuse the cache
	b.Pump()

	if f.listReads != 1 {
		t.Fatalf("list reads = %d, want 1", f.listReads)
	}
	if b.Mode() != ModeList || len(b.Runs()) != 2 {
		t.Fatalf("mode=%d runs=%d", b.Mode(), len(b.Runs()))
	}
}

func TestSelectBackReselect_OneExtraDetailRead(t *testing.T) {
	f := &fakeFetcher{}
	b := newSyncBrowser(f)
	b.Activate()
	b.Pump()

	b.Select() // R1
	b.Pump()
	if b.Mode() != ModeDetail {
		t.Fatalf("mode = %d", b.Mode())
	}
	b.Back()
	if b.Mode() != ModeList {
		t.Fatalf("back should return to cached list, mode = %d", b.Mode())
	}
	b.Select() // R1 again: detail is never cached
	b.Pump()

	if f.detailReads != 2 {
		t.Fatalf("detail reads = %d, want 2", f.detailReads)
	}
	if f.listReads != 1 {
		t.Fatalf("list reads = %d, want 1 (no list refetch)", f.listReads)
	}
}

func TestSelect_NotFoundRendersPlaceholderState(t *testing.T) {
	f := &fakeFetcher{detailErr: api.ErrNotFound}
	b := newSyncBrowser(f)
	b.Activate()
	b.Pump()
	b.Select()
	b.Pump()

	if b.Mode() != ModeDetail {
		t.Fatalf("mode = %d, want ModeDetail carrying the not-found error", b.Mode())
	}
	res, err := b.Detail()
	if res != nil || !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("detail = %v, err = %v", res, err)
	}
}

func TestSelect_TransportErrorIsDetailError(t *testing.T) {
	f := &fakeFetcher{detailErr: api.ErrUnavailable}
	b := newSyncBrowser(f)
	b.Activate()
	b.Pump()
	b.Select()
	b.Pump()

	if b.Mode() != ModeDetailError {
		t.Fatalf("mode = %d", b.Mode())
	}
	b.Back()
	if b.Mode() != ModeList {
		t.Fatalf("back from error should reach the cached list, mode = %d", b.Mode())
	}
}

func TestActivate_ListErrorAllowsRetry(t *testing.T) {
	f := &fakeFetcher{listErr: api.ErrUnavailable}
	b := newSyncBrowser(f)
	b.Activate()
	b.Pump()
	if b.Mode() != ModeListError {
		t.Fatalf("mode = %d", b.Mode())
	}
	b.Back() // closes and clears the failed-fetch latch
	f.listErr = nil
	b.Activate()
	b.Pump()
	if b.Mode() != ModeList {
		t.Fatalf("retry after error failed, mode = %d", b.Mode())
	}
	if f.listReads != 2 {
		t.Fatalf("list reads = %d, want 2", f.listReads)
	}
}

func TestMoveCursor_Clamped(t *testing.T) {
	f := &fakeFetcher{}
	b := newSyncBrowser(f)
	b.Activate()
	b.Pump()

	b.MoveCursor(-5)
	if b.Cursor() != 0 {
		t.Fatalf("cursor = %d", b.Cursor())
	}
	b.MoveCursor(10)
	if b.Cursor() != 1 {
		t.Fatalf("cursor = %d", b.Cursor())
	}
}

func TestLateResultAfterClose_DoesNotReopen(t *testing.T) {
	f := &fakeFetcher{}
	b := New(f, nil)
	var queued []func()
	b.spawn = func(fn func()) { queued = append(queued, fn) }

	b.Activate() // fetch queued, not yet run
	b.Close()
	for _, fn := range queued {
		fn()
	}
	b.Pump()

	if b.Mode() != ModeClosed {
		t.Fatalf("late list result must not reopen the browser, mode = %d", b.Mode())
	}
}
