package panel

import (
	"fmt"
	"strings"

	"github.com/arcane-sim/arcaneviz/internal/api"
)

// FeedTag is the visual category of an activity-feed entry. It maps
// one-to-one from the server's event type tag and drives the entry colour.
type FeedTag uint8

const (
	TagOther FeedTag = iota
	TagMessage
	TagReveal
	TagTactic
	TagTrust
	TagPhase
	TagMove
	TagPlan
	TagSystem
	feedTagCount // sentinel
)

// FeedEntry is one rendered line of the activity feed.
type FeedEntry struct {
	Tag  FeedTag
	Line string
}

// TagFor maps a server event type to its feed tag.
func TagFor(eventType string) FeedTag {
	switch eventType {
	case api.EventMessageSent, api.EventMessageReceived,
		api.EventConvStart, api.EventConvEnd:
		return TagMessage
	case api.EventInfoRevealed:
		return TagReveal
	case api.EventTacticUsed:
		return TagTactic
	case api.EventTrustChange:
		return TagTrust
	case api.EventPhaseChange:
		return TagPhase
	case api.EventAgentMove:
		return TagMove
	case api.EventAgentPlan, api.EventAgentPerceive, api.EventAgentReflect:
		return TagPlan
	case api.EventStepStart, api.EventStepEnd, api.EventSimStart, api.EventSimEnd:
		return TagSystem
	default:
		return TagOther
	}
}

// BuildFeed renders the event window most-recent-first. The server sends the
// window oldest-first, so the order is reversed here.
func BuildFeed(events []api.EventRecord) []FeedEntry {
	out := make([]FeedEntry, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		out = append(out, FeedEntry{Tag: TagFor(e.Type), Line: feedLine(e)})
	}
	return out
}

func feedLine(e api.EventRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", Sanitize(e.Timestamp))
	fmt.Fprintf(&b, " [%s]", strings.ToUpper(Sanitize(e.Type)))
	if e.Agent != "" {
		b.WriteByte(' ')
		b.WriteString(Sanitize(e.Agent))
	}
	if e.Target != "" {
		b.WriteString(" > ")
		b.WriteString(Sanitize(e.Target))
	}
	if e.Content != "" {
		b.WriteString(": ")
		b.WriteString(Sanitize(e.Content))
	}
	return b.String()
}

// StepLine is the step indicator text. It shows a waiting placeholder until
// the simulation has advanced past step zero.
func StepLine(s *api.Snapshot) string {
	if s == nil || s.Step <= 0 {
		return "waiting for simulation..."
	}
	if s.SimTime == "" {
		return fmt.Sprintf("Step %d", s.Step)
	}
	return fmt.Sprintf("Step %d | %s", s.Step, Sanitize(s.SimTime))
}

// Counters are message/reveal/tactic counts over the currently-held event
// window only. They are recomputed fresh from each window, never accumulated.
type Counters struct {
	Messages int
	Reveals  int
	Tactics  int
}

// CountWindow tallies the bounded window.
func CountWindow(events []api.EventRecord) Counters {
	var c Counters
	for _, e := range events {
		switch e.Type {
		case api.EventMessageSent:
			c.Messages++
		case api.EventInfoRevealed:
			c.Reveals++
		case api.EventTacticUsed:
			c.Tactics++
		}
	}
	return c
}
