package panel

import (
	"sort"

	"github.com/arcane-sim/arcaneviz/internal/api"
)

// RosterCard is one agent's card in the roster panel.
type RosterCard struct {
	ID       string
	Name     string
	Category string
	Glyph    string
	Location string
	Activity string
}

// BuildRoster maps the snapshot's agents to cards, sorted by display name
// (then id, for agents sharing a name) so the panel order is stable across
// polls. Absent fields get explicit fallbacks.
func BuildRoster(s *api.Snapshot) []RosterCard {
	if s == nil {
		return nil
	}
	cards := make([]RosterCard, 0, len(s.Agents))
	for id, a := range s.Agents {
		name := Sanitize(a.Name)
		if name == "" {
			name = id
		}
		loc := Sanitize(a.Location)
		if loc == "" {
			loc = "unknown"
		}
		act := Sanitize(a.Activity)
		if act == "" {
			act = "idle"
		}
		cat := a.Type
		if cat != api.AgentDeviant {
			cat = api.AgentBenign
		}
		cards = append(cards, RosterCard{
			ID:       id,
			Name:     name,
			Category: cat,
			Glyph:    Sanitize(a.Glyph),
			Location: loc,
			Activity: act,
		})
	}
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].Name != cards[j].Name {
			return cards[i].Name < cards[j].Name
		}
		return cards[i].ID < cards[j].ID
	})
	return cards
}
