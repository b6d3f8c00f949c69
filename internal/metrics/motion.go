package metrics

import (
	"math"

	"github.com/san-kum/aquarium/internal/sim"
	"github.com/san-kum/aquarium/internal/todo"
)

// Motion is the mean displacement in px of the bubbles between consecutive
// frames. It drops toward zero as the layout settles.
type Motion struct {
	name    string
	last    map[string]todo.Position
	value   float64
	history []float64
	window  int
}

func NewMotion(window int) *Motion {
	if window <= 0 {
		window = 120
	}
	return &Motion{name: "motion", window: window}
}

func (m *Motion) Name() string { return m.name }

func (m *Motion) Observe(f sim.Frame) {
	var total float64
	n := 0
	for id, p := range f.Positions {
		if prev, ok := m.last[id]; ok {
			total += math.Hypot(p.X-prev.X, p.Y-prev.Y)
			n++
		}
	}
	m.last = f.Positions

	m.value = 0
	if n > 0 {
		m.value = total / float64(n)
	}
	m.history = append(m.history, m.value)
	if len(m.history) > m.window {
		m.history = m.history[len(m.history)-m.window:]
	}
}

func (m *Motion) Value() float64 { return m.value }

// History returns the most recent values, oldest first.
func (m *Motion) History() []float64 {
	return append([]float64(nil), m.history...)
}

func (m *Motion) Reset() {
	m.last = nil
	m.value = 0
	m.history = nil
}

// Settled is the fraction of observed frames whose mean motion stayed under
// threshold.
type Settled struct {
	name      string
	threshold float64
	motion    *Motion
	calm      int
	samples   int
}

func NewSettled(threshold float64) *Settled {
	return &Settled{
		name:      "settled",
		threshold: threshold,
		motion:    NewMotion(1),
	}
}

func (s *Settled) Name() string { return s.name }

func (s *Settled) Observe(f sim.Frame) {
	s.motion.Observe(f)
	s.samples++
	if s.motion.Value() < s.threshold {
		s.calm++
	}
}

func (s *Settled) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.calm) / float64(s.samples)
}

func (s *Settled) Reset() {
	s.motion.Reset()
	s.calm = 0
	s.samples = 0
}
