package physics

import "github.com/san-kum/aquarium/internal/todo"

// Buoyancy magnitudes are in the engine's legacy force unit: pixels per
// millisecond squared, scaled by mass where mass is density times area in px².
const (
	BuoyancyLow     = 0.0005
	BuoyancyMedium  = 0.001
	BuoyancyHigh    = 0.002
	BuoyancySinking = -0.005
)

// Buoyancy returns the signed vertical lift for an item. Positive values push
// against gravity. Completed items always sink.
func Buoyancy(priority todo.Priority, completed bool) float64 {
	if completed {
		return BuoyancySinking
	}
	switch priority {
	case todo.Low:
		return BuoyancyLow
	case todo.Medium:
		return BuoyancyMedium
	case todo.High:
		return BuoyancyHigh
	}
	return 0
}

// Metadata is the per-body data the force policy reads each tick.
type Metadata struct {
	Priority  todo.Priority
	Completed bool
}

func MetadataOf(it todo.Item) Metadata {
	return Metadata{Priority: it.Priority, Completed: it.Completed}
}

func (m Metadata) Buoyancy() float64 { return Buoyancy(m.Priority, m.Completed) }
