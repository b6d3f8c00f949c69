package physics

import (
	"math"
	"testing"

	"github.com/san-kum/aquarium/internal/todo"
)

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

func TestBuoyancy(t *testing.T) {
	tests := []struct {
		name      string
		priority  todo.Priority
		completed bool
		want      float64
	}{
		{"low", todo.Low, false, 0.0005},
		{"medium", todo.Medium, false, 0.001},
		{"high", todo.High, false, 0.002},
		{"unknown", todo.Priority("urgent"), false, 0},
		{"low completed", todo.Low, true, -0.005},
		{"high completed", todo.High, true, -0.005},
		{"unknown completed", todo.Priority(""), true, -0.005},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Buoyancy(tt.priority, tt.completed); got != tt.want {
				t.Errorf("Buoyancy(%q, %v) = %v, want %v", tt.priority, tt.completed, got, tt.want)
			}
		})
	}
}

func TestRadius(t *testing.T) {
	tests := []struct {
		content  string
		priority todo.Priority
		want     float64
	}{
		{"buy milk", todo.High, 105},
		{"", todo.Low, 45},
		{"abcd", todo.Low, 51},
		{"abcd", todo.Medium, 73},
		{"abcd", todo.Priority("?"), 73},
		{"牛乳を買う", todo.High, 97.5},
		{"🐟", todo.Low, 48},
		{"🐟🐟ab", todo.Medium, 77},
	}

	for _, tt := range tests {
		if got := Radius(tt.content, tt.priority); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Radius(%q, %q) = %v, want %v", tt.content, tt.priority, got, tt.want)
		}
	}
}

func TestNewBubble_Placed(t *testing.T) {
	it := todo.Item{
		ID: "7", Content: "walk", Priority: todo.Low, Completed: true,
		Position: &todo.Position{X: 12, Y: 34, Angle: 1.5},
	}
	def := NewBubble(it, Size{Width: 800, Height: 600}, fixedRand(0.9), DefaultParams())

	if def.X != 12 || def.Y != 34 || def.Angle != 1.5 {
		t.Errorf("placed item should spawn exactly at its position, got (%v, %v, %v)", def.X, def.Y, def.Angle)
	}
	if def.Label != "bubble-7" {
		t.Errorf("unexpected label %q", def.Label)
	}
	if def.Density != DefaultCompletedDensity {
		t.Errorf("expected completed density, got %v", def.Density)
	}
	if def.Meta != (Metadata{Priority: todo.Low, Completed: true}) {
		t.Errorf("unexpected metadata %+v", def.Meta)
	}
}

func TestNewBubble_Unplaced(t *testing.T) {
	view := Size{Width: 1200, Height: 800}
	it := todo.Item{ID: "1", Content: "x", Priority: todo.Medium}

	center := NewBubble(it, view, fixedRand(0.5), DefaultParams())
	if center.X != 600 || center.Y != 400 {
		t.Errorf("zero jitter should spawn at center, got (%v, %v)", center.X, center.Y)
	}

	right := NewBubble(it, view, fixedRand(1), DefaultParams())
	if right.X != 900 || right.Y != 420 {
		t.Errorf("max jitter should offset by (300, 20), got (%v, %v)", right.X-600, right.Y-400)
	}

	left := NewBubble(it, view, fixedRand(0), DefaultParams())
	if left.X != 300 || left.Y != 380 {
		t.Errorf("min jitter should offset by (-300, -20), got (%v, %v)", left.X-600, left.Y-400)
	}
}

func TestNewBubble_ClampsIntoNarrowViewport(t *testing.T) {
	view := Size{Width: 400, Height: 300}
	it := todo.Item{ID: "1", Content: "x", Priority: todo.Low}
	def := NewBubble(it, view, fixedRand(1), DefaultParams())

	if def.X+def.Radius > view.Width {
		t.Errorf("bubble spawned past the right wall: x=%v r=%v", def.X, def.Radius)
	}
}

func TestClamp(t *testing.T) {
	view := Size{Width: 100, Height: 50}
	x, y := Clamp(-10, 80, 10, view)
	if x != 10 || y != 40 {
		t.Errorf("Clamp = (%v, %v), want (10, 40)", x, y)
	}
	// 100px fits a 60px circle, 50px does not.
	x, y = Clamp(5, 5, 30, view)
	if x != 30 || y != 25 {
		t.Errorf("Clamp = (%v, %v), want (30, 25)", x, y)
	}
}
