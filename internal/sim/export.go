package sim

import (
	"github.com/ByteArena/box2d"
	"github.com/san-kum/aquarium/internal/todo"
)

// export collects the pose of every tracked dynamic bubble. Walls and any
// body the engine did not create are skipped.
func (e *Engine) export(w *World) Frame {
	positions := make(map[string]todo.Position, len(w.bodies))
	for body, id := range w.ids {
		if body.GetType() == box2d.B2BodyType.B2_staticBody {
			continue
		}
		positions[id] = w.positionOf(body)
	}
	return Frame{Tick: e.tick, Size: w.size, Positions: positions}
}
