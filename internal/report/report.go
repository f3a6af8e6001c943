// Package report renders an attack-progress report as plain text, for the
// headless `viz report` command and the in-app clipboard copy.
package report

import (
	"fmt"
	"strings"

	"github.com/arcane-sim/arcaneviz/internal/api"
	"github.com/arcane-sim/arcaneviz/internal/panel"
)

// Format renders the full terminal report for one results snapshot.
func Format(res *api.ResultsSnapshot) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  +===============================================+\n")
	b.WriteString("  |          ARCANE -- Attack Results             |\n")
	b.WriteString("  +===============================================+\n\n")

	if res == nil || res.DeviantID == "" {
		b.WriteString("  No attacker found in this run.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "  Attacker: %s (%s)\n", res.DeviantName, res.DeviantID)
	fmt.Fprintf(&b, "  Run: %s\n", res.RunID)
	fmt.Fprintf(&b, "  Steps: %d | Sim Time: %s\n\n", res.TotalSteps, res.SimTime)

	for _, t := range res.Targets {
		writeTarget(&b, t)
	}

	fmt.Fprintf(&b, "  -- Summary %s\n", strings.Repeat("-", 34))
	fmt.Fprintf(&b, "  Total Messages: %d | Info Reveals: %d | Tactics: %d\n",
		res.TotalMessages, res.TotalReveals, res.TotalTactics)

	if res.AttackSuccess {
		b.WriteString("  Attack Success: YES -- high-sensitivity info obtained\n")
	} else {
		b.WriteString("  Attack Success: NO -- no high-sensitivity info extracted yet\n")
	}
	b.WriteString("\n")
	return b.String()
}

func writeTarget(b *strings.Builder, t api.TargetResult) {
	header := fmt.Sprintf(" Target: %s (%s) ", t.TargetName, t.TargetID)
	fmt.Fprintf(b, "  --%s%s\n", header, strings.Repeat("-", max(0, 44-len(header))))
	fmt.Fprintf(b, "  Phase:    %d / 5 (%s)\n", t.CurrentPhase, t.PhaseName)
	fmt.Fprintf(b, "  Trust:    %.2f\n", t.TrustLevel)
	fmt.Fprintf(b, "  Messages: %d sent, %d received\n", t.MessagesSent, t.MessagesReceived)
	channels := "none"
	if len(t.ChannelsUsed) > 0 {
		channels = strings.Join(t.ChannelsUsed, ", ")
	}
	fmt.Fprintf(b, "  Channels: %s\n", channels)

	if counts := panel.AggregateTactics(t.TacticsUsed); len(counts) > 0 {
		parts := make([]string, len(counts))
		for i, tc := range counts {
			parts[i] = fmt.Sprintf("%s (x%d)", tc.Name, tc.Count)
		}
		fmt.Fprintf(b, "  Tactics:  %s\n", strings.Join(parts, ", "))
	} else {
		b.WriteString("  Tactics:  [none yet]\n")
	}

	if len(t.InfoExtracted) > 0 {
		b.WriteString("  Extracted:\n")
		for _, item := range t.InfoExtracted {
			marker := "!"
			if item.Sensitivity == api.SensitivityHigh {
				marker = "!!!"
			}
			fmt.Fprintf(b, "    %s %s (%s) -- via %s at step %d\n",
				marker, item.InfoType, item.Sensitivity, item.Channel, item.Step)
			if item.Value != "" {
				fmt.Fprintf(b, "        Value: %s\n", item.Value)
			}
		}
	} else {
		b.WriteString("  Extracted: [NONE]\n")
	}
	b.WriteString("\n")
}

// RunList renders the archived run table for `viz runs`.
func RunList(runs []api.RunSummary) string {
	if len(runs) == 0 {
		return "no archived runs\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-24s %-18s %8s %8s %10s\n", "RUN", "DATE", "STEPS", "REVEALS", "SIZE")
	for _, r := range runs {
		fmt.Fprintf(&b, "%-24s %-18s %8d %8d %9.1fK\n", r.RunID, r.Date, r.Steps, r.Reveals, r.SizeKB)
	}
	return b.String()
}
