package sim

import (
	"sort"

	"github.com/san-kum/aquarium/internal/physics"
	"github.com/san-kum/aquarium/internal/todo"
)

type BodyState struct {
	ID       string
	Label    string
	Radius   float64
	Density  float64
	Mass     float64
	Position todo.Position
	Meta     physics.Metadata
}

// Snapshot is a read-only view of the engine, used by the viewer, the CLI and
// tests. Bodies are sorted by id.
type Snapshot struct {
	Live      bool
	Size      Size
	Tick      uint64
	Walls     []Wall
	Bodies    []BodyState
	BodyCount int // every body in the solver, walls included
}

func (e *Engine) Inspect() Snapshot {
	snap := Snapshot{Tick: e.tick}
	w := e.world
	if w == nil {
		return snap
	}

	snap.Live = true
	snap.Size = w.size
	snap.Walls = append([]Wall(nil), w.wallDefs...)
	snap.BodyCount = w.b2.GetBodyCount()

	for id, body := range w.bodies {
		d := w.data[body]
		snap.Bodies = append(snap.Bodies, BodyState{
			ID:       id,
			Label:    d.label,
			Radius:   d.radius,
			Density:  bodyDensity(body),
			Mass:     body.GetMass(),
			Position: w.positionOf(body),
			Meta:     d.meta,
		})
	}
	sort.Slice(snap.Bodies, func(i, j int) bool { return snap.Bodies[i].ID < snap.Bodies[j].ID })
	return snap
}

// Body returns the state of one bubble.
func (s Snapshot) Body(id string) (BodyState, bool) {
	for _, b := range s.Bodies {
		if b.ID == id {
			return b, true
		}
	}
	return BodyState{}, false
}
