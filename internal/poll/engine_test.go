package poll

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/arcane-sim/arcaneviz/internal/api"
)

// fakeFetcher counts reads and serves scripted snapshots. The mutex keeps the
// counters race-clean when the engine polls from its own goroutine.
type fakeFetcher struct {
	mu          sync.Mutex
	stateCalls  int
	eventCalls  int
	resultCalls int

	steps     []int // successive step values served by State
	stateErr  error
	eventErr  error
	resultErr error
}

func (f *fakeFetcher) State(context.Context) (*api.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stateCalls++
	if f.stateErr != nil {
		return nil, f.stateErr
	}
	step := f.steps[len(f.steps)-1]
	if f.stateCalls <= len(f.steps) {
		step = f.steps[f.stateCalls-1]
	}
	return &api.Snapshot{
		Step:   step,
		Agents: map[string]api.AgentState{"a1": {Name: "Maria", Pos: [2]int{2, 3}}},
	}, nil
}

func (f *fakeFetcher) RecentEvents(context.Context, int) ([]api.EventRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.eventCalls++
	if f.eventErr != nil {
		return nil, f.eventErr
	}
	return []api.EventRecord{{Step: 1, Type: api.EventMessageSent}}, nil
}

func (f *fakeFetcher) Results(context.Context) (*api.ResultsSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resultCalls++
	if f.resultErr != nil {
		return nil, f.resultErr
	}
	return &api.ResultsSnapshot{RunID: "r1", TotalSteps: 1}, nil
}

func (f *fakeFetcher) counts() (state, events, results int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stateCalls, f.eventCalls, f.resultCalls
}

func TestTick_UnchangedStepReadsNothingElse(t *testing.T) {
	f := &fakeFetcher{steps: []int{5, 5}}
	e := NewEngine(f, time.Minute, 30, nil)
	ctx := context.Background()

	e.tick(ctx)
	e.tick(ctx)

	if f.stateCalls != 2 {
		t.Fatalf("state calls = %d, want 2", f.stateCalls)
	}
	if f.eventCalls != 1 || f.resultCalls != 1 {
		t.Fatalf("event/result calls = %d/%d, want 1/1", f.eventCalls, f.resultCalls)
	}
}

func TestTick_ChangedStepReadsChain(t *testing.T) {
	f := &fakeFetcher{steps: []int{1, 2}}
	e := NewEngine(f, time.Minute, 30, nil)
	ctx := context.Background()

	e.tick(ctx)
	e.tick(ctx)

	if f.eventCalls != 2 || f.resultCalls != 2 {
		t.Fatalf("event/result calls = %d/%d, want 2/2", f.eventCalls, f.resultCalls)
	}
}

func TestTick_StateFailureAbortsSilently(t *testing.T) {
	f := &fakeFetcher{steps: []int{1}, stateErr: api.ErrUnavailable}
	e := NewEngine(f, time.Minute, 30, nil)

	e.tick(context.Background())

	if f.eventCalls != 0 || f.resultCalls != 0 {
		t.Fatal("failed state read must not trigger further reads")
	}
	if e.Deliver() {
		t.Fatal("nothing should be pending after a failed tick")
	}
}

func TestTick_EventFailureRetriesWholeChain(t *testing.T) {
	f := &fakeFetcher{steps: []int{3, 3}, eventErr: api.ErrUnavailable}
	e := NewEngine(f, time.Minute, 30, nil)
	ctx := context.Background()

	e.tick(ctx)
	// lastStep must not have advanced: the same step retries the full chain.
	f.eventErr = nil
	e.tick(ctx)

	if f.eventCalls != 2 {
		t.Fatalf("event calls = %d, want 2", f.eventCalls)
	}
	if !e.Deliver() {
		t.Fatal("second tick should have published an update")
	}
}

func TestTick_ResultsNotAvailableStillDispatches(t *testing.T) {
	f := &fakeFetcher{steps: []int{1}, resultErr: api.ErrNotAvailable}
	e := NewEngine(f, time.Minute, 30, nil)

	var gotRes *api.ResultsSnapshot
	var gotErr error
	e.OnResults(func(r *api.ResultsSnapshot, err error) { gotRes, gotErr = r, err })

	e.tick(context.Background())
	if !e.Deliver() {
		t.Fatal("update should be pending")
	}
	if gotRes != nil {
		t.Fatal("results should be nil")
	}
	if !errors.Is(gotErr, api.ErrNotAvailable) {
		t.Fatalf("err = %v, want ErrNotAvailable", gotErr)
	}
}

func TestDeliver_FixedObserverOrder(t *testing.T) {
	f := &fakeFetcher{steps: []int{1}}
	e := NewEngine(f, time.Minute, 30, nil)

	var order []string
	e.OnResults(func(*api.ResultsSnapshot, error) { order = append(order, "results") })
	e.OnEvents(func([]api.EventRecord) { order = append(order, "events") })
	e.OnState(func(*api.Snapshot) { order = append(order, "state") })

	e.tick(context.Background())
	e.Deliver()

	want := []string{"state", "events", "results"}
	if len(order) != 3 || order[0] != want[0] || order[1] != want[1] || order[2] != want[2] {
		t.Fatalf("dispatch order = %v, want %v", order, want)
	}
}

func TestDeliver_NewerUpdateReplacesOlder(t *testing.T) {
	f := &fakeFetcher{steps: []int{1, 2}}
	e := NewEngine(f, time.Minute, 30, nil)

	var seen []int
	e.OnState(func(s *api.Snapshot) { seen = append(seen, s.Step) })

	ctx := context.Background()
	e.tick(ctx)
	e.tick(ctx)
	e.Deliver()
	e.Deliver()

	if len(seen) != 1 || seen[0] != 2 {
		t.Fatalf("seen = %v, want [2]", seen)
	}
}

func TestStop_SuppressesLateUpdate(t *testing.T) {
	f := &fakeFetcher{steps: []int{1}}
	e := NewEngine(f, time.Minute, 30, nil)

	dispatched := false
	e.OnState(func(*api.Snapshot) { dispatched = true })

	e.tick(context.Background()) // update now pending
	e.Stop()
	if e.Deliver() || dispatched {
		t.Fatal("no observer may run after Stop")
	}
}

func TestStop_IdempotentAndSafeWhenNotRunning(t *testing.T) {
	e := NewEngine(&fakeFetcher{steps: []int{1}}, time.Minute, 30, nil)
	e.Stop()
	e.Stop()
}

func TestStartStop_Lifecycle(t *testing.T) {
	f := &fakeFetcher{steps: []int{1, 2, 3, 4, 5, 6, 7, 8}}
	e := NewEngine(f, 5*time.Millisecond, 30, nil)

	e.Start()
	e.Start() // second Start is a no-op

	deadline := time.After(time.Second)
	for {
		if n, _, _ := f.counts(); n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("poll goroutine never ticked")
		case <-time.After(time.Millisecond):
		}
	}
	e.Stop()
	calls, _, _ := f.counts()
	time.Sleep(20 * time.Millisecond)
	if n, _, _ := f.counts(); n != calls {
		t.Fatal("engine kept polling after Stop")
	}
}
