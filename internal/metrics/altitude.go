package metrics

import "github.com/san-kum/aquarium/internal/sim"

// Altitude is the mean height of the bubbles in the last frame, normalized so
// the floor is 0 and the ceiling is 1.
type Altitude struct {
	name  string
	value float64
}

func NewAltitude() *Altitude {
	return &Altitude{name: "altitude"}
}

func (a *Altitude) Name() string { return a.name }

func (a *Altitude) Observe(f sim.Frame) {
	if f.Size.Height <= 0 || len(f.Positions) == 0 {
		a.value = 0
		return
	}
	var total float64
	for _, p := range f.Positions {
		total += 1 - p.Y/f.Size.Height
	}
	a.value = total / float64(len(f.Positions))
}

func (a *Altitude) Value() float64 { return a.value }

func (a *Altitude) Reset() { a.value = 0 }

// Default returns the metrics used by headless runs and bench.
func Default() []sim.Metric {
	return []sim.Metric{NewMotion(0), NewSettled(0.05), NewAltitude()}
}
