package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, nil), srv
}

func TestState_Decodes(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/state" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"step": 12, "sim_time": "Day 1, 09:30",
			"grid": {"width": 60, "height": 40},
			"agents": {
				"a1": {"name": "Maria Lopez", "type": "benign", "pos": [2, 3],
				       "sprite": "Maria_Lopez", "pronunciatio": "#",
				       "activity": "drinking coffee", "location": "cafe"}
			}
		}`))
	})
	defer srv.Close()

	snap, err := c.State(context.Background())
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if snap.Step != 12 {
		t.Fatalf("step = %d, want 12", snap.Step)
	}
	a, ok := snap.Agents["a1"]
	if !ok {
		t.Fatal("agent a1 missing")
	}
	if a.Pos != [2]int{2, 3} {
		t.Fatalf("pos = %v", a.Pos)
	}
	if a.Type != AgentBenign {
		t.Fatalf("type = %q", a.Type)
	}
}

func TestState_MissingRequiredFieldIsMalformed(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"sim_time": "Day 1"}`)) // no step, no agents
	})
	defer srv.Close()

	_, err := c.State(context.Background())
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestState_NotJSONIsMalformed(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	})
	defer srv.Close()

	_, err := c.State(context.Background())
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestState_ServerErrorIsUnavailable(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	defer srv.Close()

	_, err := c.State(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestState_ConnectionRefusedIsUnavailable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", nil)
	_, err := c.State(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestRecentEvents_PassesWindowSize(t *testing.T) {
	var gotN string
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotN = r.URL.Query().Get("n")
		w.Write([]byte(`{"events": [
			{"step": 3, "type": "message_sent", "timestamp": "09:00",
			 "agent": "dv1", "target": "a1", "content": "hello"},
			{"step": 3, "type": "trust_change", "timestamp": "09:00",
			 "agent": "a1", "target": "dv1", "content": "Trust 0.20 -> 0.25"}
		]}`))
	})
	defer srv.Close()

	evs, err := c.RecentEvents(context.Background(), 30)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if gotN != "30" {
		t.Fatalf("n = %q, want 30", gotN)
	}
	if len(evs) != 2 {
		t.Fatalf("len = %d, want 2", len(evs))
	}
	if evs[0].Type != EventMessageSent {
		t.Fatalf("type = %q", evs[0].Type)
	}
}

func TestResults_ErrorPayloadIsNotAvailable(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "no deviant agent yet"}`))
	})
	defer srv.Close()

	_, err := c.Results(context.Background())
	if !errors.Is(err, ErrNotAvailable) {
		t.Fatalf("err = %v, want ErrNotAvailable", err)
	}
}

func TestResults_Decodes(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"run_id": "run_20260830_120000",
			"deviant_id": "dv1", "deviant_name": "Victor Kane",
			"total_steps": 40, "sim_time": "Day 2, 14:00",
			"total_messages": 18, "total_reveals": 2, "total_tactics": 5,
			"attack_success": true,
			"targets": [{
				"target_id": "a1", "target_name": "Maria Lopez",
				"messages_sent": 9, "messages_received": 7,
				"trust_level": 0.82, "current_phase": 4,
				"phase_name": "extract_information",
				"channels_used": ["chat", "email"],
				"tactics_used": [{"tactic": "flattery", "phase": 2, "step": 11}],
				"info_extracted": [{"info_type": "password", "sensitivity": "high",
				                    "channel": "chat", "step": 33, "value": "hunter2"}]
			}]
		}`))
	})
	defer srv.Close()

	res, err := c.Results(context.Background())
	if err != nil {
		t.Fatalf("Results: %v", err)
	}
	if !res.AttackSuccess {
		t.Fatal("attack_success should be true")
	}
	if len(res.Targets) != 1 || res.Targets[0].TrustLevel != 0.82 {
		t.Fatalf("targets = %+v", res.Targets)
	}
}

func TestResults_TrustOutOfRangeIsMalformed(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"run_id": "r", "total_steps": 1, "attack_success": false,
			"targets": [{"target_id": "a1", "trust_level": 1.4, "current_phase": 2}]
		}`))
	})
	defer srv.Close()

	_, err := c.Results(context.Background())
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestRunResults_NotFound(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "not found"}`))
	})
	defer srv.Close()

	_, err := c.RunResults(context.Background(), "run_x")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRuns_Decodes(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/runs" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"runs": [
			{"run_id": "run_20260830_120000", "date": "2026-08-30 12:00",
			 "steps": 40, "reveals": 2, "size_kb": 58.3}
		]}`))
	})
	defer srv.Close()

	runs, err := c.Runs(context.Background())
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Steps != 40 {
		t.Fatalf("runs = %+v", runs)
	}
}
