package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/aquarium/internal/sim"
	"github.com/san-kum/aquarium/internal/todo"
)

func frame(h float64, pos map[string]todo.Position) sim.Frame {
	return sim.Frame{Size: sim.Size{Width: 100, Height: h}, Positions: pos}
}

func TestMotion(t *testing.T) {
	m := NewMotion(2)

	m.Observe(frame(100, map[string]todo.Position{"a": {X: 0, Y: 0}, "b": {X: 10, Y: 10}}))
	if m.Value() != 0 {
		t.Errorf("first frame has nothing to compare, got %f", m.Value())
	}

	m.Observe(frame(100, map[string]todo.Position{"a": {X: 3, Y: 4}, "b": {X: 10, Y: 11}}))
	if math.Abs(m.Value()-3) > 1e-9 {
		t.Errorf("expected mean displacement 3, got %f", m.Value())
	}

	m.Observe(frame(100, map[string]todo.Position{"a": {X: 3, Y: 4}, "c": {X: 50, Y: 50}}))
	if m.Value() != 0 {
		t.Errorf("new ids should not count as motion, got %f", m.Value())
	}

	if h := m.History(); len(h) != 2 || h[0] != 3 || h[1] != 0 {
		t.Errorf("history should keep the last 2 values, got %v", h)
	}

	m.Reset()
	if m.Value() != 0 || len(m.History()) != 0 {
		t.Error("reset should clear state")
	}
}

func TestSettled(t *testing.T) {
	s := NewSettled(0.5)
	s.Observe(frame(100, map[string]todo.Position{"a": {X: 0}}))
	s.Observe(frame(100, map[string]todo.Position{"a": {X: 5}}))
	s.Observe(frame(100, map[string]todo.Position{"a": {X: 5.1}}))
	s.Observe(frame(100, map[string]todo.Position{"a": {X: 5.1}}))

	if math.Abs(s.Value()-0.75) > 1e-9 {
		t.Errorf("expected 3 of 4 calm frames, got %f", s.Value())
	}
}

func TestAltitude(t *testing.T) {
	a := NewAltitude()

	a.Observe(frame(200, map[string]todo.Position{"top": {Y: 0}, "bottom": {Y: 200}, "mid": {Y: 100}}))
	if math.Abs(a.Value()-0.5) > 1e-9 {
		t.Errorf("expected 0.5, got %f", a.Value())
	}

	a.Observe(frame(200, nil))
	if a.Value() != 0 {
		t.Errorf("empty frame should read 0, got %f", a.Value())
	}
}

func TestDefaultNames(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Default() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
	if len(seen) != 3 {
		t.Errorf("expected 3 metrics, got %d", len(seen))
	}
}
