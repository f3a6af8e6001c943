package viz

import (
	"math"

	"github.com/arcane-sim/arcaneviz/internal/api"
)

const (
	// tileSize is the world pixel size of one grid cell.
	tileSize = 32
	// blendK is the per-frame exponential smoothing factor toward the target.
	blendK = 0.18
	// snapEps is the residual distance below which motion snaps and stops.
	// Each frame shrinks the residual by (1-blendK), so any finite start
	// distance reaches the snap in a bounded number of frames.
	snapEps = 0.5
)

// Facing is the sprite row an agent shows. Idle keeps the last facing.
type Facing uint8

const (
	FaceDown Facing = iota
	FaceLeft
	FaceRight
	FaceUp
)

// AnimState is the five-state per-agent animation machine: Idle plus one
// walk state per direction.
type AnimState uint8

const (
	AnimIdle AnimState = iota
	AnimWalkDown
	AnimWalkLeft
	AnimWalkRight
	AnimWalkUp
)

// Mover tracks one agent's continuous visual position converging on the
// grid-derived target anchor.
type Mover struct {
	ID      string
	VisualX float64
	VisualY float64
	TargetX float64
	TargetY float64
	State   AnimState
	Facing  Facing
}

// Moving reports whether the mover is in any walk state.
func (m *Mover) Moving() bool { return m.State != AnimIdle }

// Interp owns all movers. Apply runs on poll updates, Advance once per frame;
// both are called from the render loop's update turn so no locking is needed.
type Interp struct {
	movers map[string]*Mover
}

// NewInterp builds an empty controller.
func NewInterp() *Interp {
	return &Interp{movers: make(map[string]*Mover)}
}

// anchor converts a grid position to the world-space tile center.
func anchor(pos [2]int) (float64, float64) {
	return (float64(pos[0]) + 0.5) * tileSize, (float64(pos[1]) + 0.5) * tileSize
}

// Apply retargets every mover from the snapshot. An id seen for the first
// time spawns at its anchor with no animation from an undefined prior state;
// an id absent from the snapshot is despawned. Returns the ids added and
// removed so the renderer can create or drop their visuals.
func (ip *Interp) Apply(snap *api.Snapshot) (added, removed []string) {
	if snap == nil {
		return nil, nil
	}
	for id, a := range snap.Agents {
		tx, ty := anchor(a.Pos)
		if m, ok := ip.movers[id]; ok {
			m.TargetX = tx
			m.TargetY = ty
			continue
		}
		ip.movers[id] = &Mover{
			ID: id, VisualX: tx, VisualY: ty, TargetX: tx, TargetY: ty,
			State: AnimIdle, Facing: FaceDown,
		}
		added = append(added, id)
	}
	for id := range ip.movers {
		if _, ok := snap.Agents[id]; !ok {
			delete(ip.movers, id)
			removed = append(removed, id)
		}
	}
	return added, removed
}

// Advance moves every visual position one frame toward its target and derives
// the animation state from the instantaneous displacement.
func (ip *Interp) Advance() {
	for _, m := range ip.movers {
		dx := m.TargetX - m.VisualX
		dy := m.TargetY - m.VisualY
		if math.Hypot(dx, dy) < snapEps {
			m.VisualX = m.TargetX
			m.VisualY = m.TargetY
			m.State = AnimIdle
			continue
		}
		m.VisualX += dx * blendK
		m.VisualY += dy * blendK
		m.State = WalkStateFor(dx, dy)
		m.Facing = facingFor(m.State, m.Facing)
	}
}

// WalkStateFor infers the walk direction from a displacement. The axis with
// the larger magnitude wins and its sign picks the direction; ties go to the
// vertical axis. A near-zero displacement is Idle.
func WalkStateFor(dx, dy float64) AnimState {
	if math.Abs(dx) < 1e-9 && math.Abs(dy) < 1e-9 {
		return AnimIdle
	}
	if math.Abs(dx) > math.Abs(dy) {
		if dx > 0 {
			return AnimWalkRight
		}
		return AnimWalkLeft
	}
	if dy > 0 {
		return AnimWalkDown
	}
	return AnimWalkUp
}

func facingFor(s AnimState, prev Facing) Facing {
	switch s {
	case AnimWalkDown:
		return FaceDown
	case AnimWalkUp:
		return FaceUp
	case AnimWalkLeft:
		return FaceLeft
	case AnimWalkRight:
		return FaceRight
	default:
		return prev
	}
}

// Mover returns the mover for an id, or nil.
func (ip *Interp) Mover(id string) *Mover { return ip.movers[id] }

// Count returns the live mover count.
func (ip *Interp) Count() int { return len(ip.movers) }

// Each calls fn for every mover, in no particular order.
func (ip *Interp) Each(fn func(*Mover)) {
	for _, m := range ip.movers {
		fn(m)
	}
}
