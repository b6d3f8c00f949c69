package export

import (
	"strings"
	"testing"

	"github.com/san-kum/aquarium/internal/sim"
	"github.com/san-kum/aquarium/internal/todo"
)

func TestLayoutToSVG(t *testing.T) {
	items := []todo.Item{
		{ID: "1", Content: "buy milk", Priority: todo.High, Position: &todo.Position{X: 100, Y: 200}},
		{ID: "2", Content: "<script>", Priority: todo.Low, Completed: true, Position: &todo.Position{X: 50, Y: 50}},
		{ID: "3", Content: "unplaced", Priority: todo.Medium},
	}

	svg := LayoutToSVG(items, sim.Size{Width: 800, Height: 600})

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("not a complete SVG document")
	}
	if strings.Count(svg, "<circle") != 2 {
		t.Errorf("expected 2 circles, got %d", strings.Count(svg, "<circle"))
	}
	if !strings.Contains(svg, `r="105.0"`) {
		t.Error("high priority bubble should have radius 105")
	}
	if !strings.Contains(svg, `id="bubble-1"`) {
		t.Error("missing bubble label")
	}
	if strings.Contains(svg, "<script>") {
		t.Error("content must be escaped")
	}
	if !strings.Contains(svg, completedFill) {
		t.Error("completed item should use the completed fill")
	}
}

func TestTrajectoryToSVG(t *testing.T) {
	if TrajectoryToSVG(nil, "#fff") != "" {
		t.Error("no frames should give an empty document")
	}

	frames := []sim.Frame{
		{Size: sim.Size{Width: 400, Height: 300}, Positions: map[string]todo.Position{"a": {X: 1, Y: 2}, "b": {X: 5, Y: 5}}},
		{Size: sim.Size{Width: 400, Height: 300}, Positions: map[string]todo.Position{"a": {X: 3, Y: 4}}},
	}
	svg := TrajectoryToSVG(frames, "#00ff00")

	if strings.Count(svg, "<path") != 1 {
		t.Errorf("expected one path, got %d", strings.Count(svg, "<path"))
	}
	if !strings.Contains(svg, "M1.0,2.0 L3.0,4.0") {
		t.Errorf("unexpected path data:\n%s", svg)
	}
	if !strings.Contains(svg, `width="400"`) {
		t.Error("document should use the recorded viewport size")
	}
}
