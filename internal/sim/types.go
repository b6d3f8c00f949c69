package sim

import (
	"github.com/san-kum/aquarium/internal/physics"
	"github.com/san-kum/aquarium/internal/todo"
)

type Size = physics.Size

// Frame is one tick's export: positions of every bubble keyed by item id.
type Frame struct {
	Tick      uint64                   `json:"tick"`
	Size      Size                     `json:"size"`
	Positions map[string]todo.Position `json:"positions"`
}

type FrameFunc func(Frame)

type Observer interface {
	OnFrame(f Frame)
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type ReconcileStats struct {
	Created int
	Updated int
	Removed int
}

func (s ReconcileStats) Changed() bool {
	return s.Created > 0 || s.Updated > 0 || s.Removed > 0
}
