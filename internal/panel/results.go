package panel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arcane-sim/arcaneviz/internal/api"
)

// TrustTier buckets a continuous trust value for quick visual scanning.
type TrustTier uint8

const (
	TierDefault  TrustTier = iota // trust <= 0.60
	TierWarning                   // 0.60 < trust <= 0.80
	TierCritical                  // trust > 0.80
)

// TierFor assigns the tier. Both boundaries use strict comparison: 0.60 and
// 0.80 belong to the lower tier.
func TierFor(trust float64) TrustTier {
	switch {
	case trust > 0.80:
		return TierCritical
	case trust > 0.60:
		return TierWarning
	default:
		return TierDefault
	}
}

// TacticCount aggregates repeated uses of one tactic.
type TacticCount struct {
	Name  string
	Count int
}

// ItemVM is one extracted-information line. High marks top-tier sensitivity.
type ItemVM struct {
	Line string
	High bool
}

// TargetVM is the rendered progress block for one attack target.
type TargetVM struct {
	Name        string
	Trust       float64
	Tier        TrustTier
	PhaseLine   string
	MessageLine string
	ChannelLine string
	Tactics     []TacticCount
	Items       []ItemVM
}

// ResultsVM is the full results panel content. When Available is false the
// panel shows Message instead of target blocks; stale content is never shown.
type ResultsVM struct {
	Available   bool
	Message     string
	Attacker    string
	RunLine     string
	Targets     []TargetVM
	SummaryLine string
	VerdictLine string
	Success     bool
}

// BuildResults maps a results snapshot (or its absence) to the panel
// viewmodel. The success verdict comes solely from the server's
// attack_success flag; the client never recomputes it from the items.
func BuildResults(res *api.ResultsSnapshot, err error) ResultsVM {
	switch {
	case errors.Is(err, api.ErrNotFound):
		return ResultsVM{Message: "run not found"}
	case err != nil, res == nil:
		return ResultsVM{Message: "no data yet"}
	}

	vm := ResultsVM{
		Available: true,
		Attacker:  Sanitize(res.DeviantName),
		RunLine: fmt.Sprintf("Run %s | Steps %d | %s",
			Sanitize(res.RunID), res.TotalSteps, Sanitize(res.SimTime)),
		SummaryLine: fmt.Sprintf("Messages %d | Reveals %d | Tactics %d",
			res.TotalMessages, res.TotalReveals, res.TotalTactics),
		Success: res.AttackSuccess,
	}
	if vm.Attacker == "" {
		vm.Attacker = "no attacker identified"
	}
	if res.AttackSuccess {
		vm.VerdictLine = "ATTACK SUCCESS - high-sensitivity info obtained"
	} else {
		vm.VerdictLine = "no success yet"
	}
	for _, t := range res.Targets {
		vm.Targets = append(vm.Targets, buildTarget(t))
	}
	return vm
}

func buildTarget(t api.TargetResult) TargetVM {
	name := Sanitize(t.TargetName)
	if name == "" {
		name = Sanitize(t.TargetID)
	}
	phase := fmt.Sprintf("Phase %d/5", t.CurrentPhase)
	if t.PhaseName != "" {
		phase += fmt.Sprintf(" (%s)", Sanitize(t.PhaseName))
	}
	channels := "none"
	if len(t.ChannelsUsed) > 0 {
		clean := make([]string, len(t.ChannelsUsed))
		for i, ch := range t.ChannelsUsed {
			clean[i] = Sanitize(ch)
		}
		channels = strings.Join(clean, ", ")
	}

	vm := TargetVM{
		Name:        name,
		Trust:       t.TrustLevel,
		Tier:        TierFor(t.TrustLevel),
		PhaseLine:   phase,
		MessageLine: fmt.Sprintf("%d sent / %d received", t.MessagesSent, t.MessagesReceived),
		ChannelLine: channels,
		Tactics:     AggregateTactics(t.TacticsUsed),
	}
	for _, item := range t.InfoExtracted {
		vm.Items = append(vm.Items, buildItem(item))
	}
	return vm
}

// AggregateTactics folds the per-use list into (name, count) pairs,
// preserving first-seen order. Shared with the plain-text report.
func AggregateTactics(uses []api.TacticUse) []TacticCount {
	var out []TacticCount
	index := make(map[string]int)
	for _, u := range uses {
		name := Sanitize(u.Tactic)
		if name == "" {
			name = "unknown"
		}
		if i, ok := index[name]; ok {
			out[i].Count++
			continue
		}
		index[name] = len(out)
		out = append(out, TacticCount{Name: name, Count: 1})
	}
	return out
}

func buildItem(it api.ExtractedInfo) ItemVM {
	line := fmt.Sprintf("%s (%s) via %s at step %d",
		Sanitize(it.InfoType), Sanitize(it.Sensitivity), Sanitize(it.Channel), it.Step)
	if it.Value != "" {
		line += " = " + Sanitize(it.Value)
	}
	return ItemVM{Line: line, High: it.Sensitivity == api.SensitivityHigh}
}
