package viz

import (
	"strings"
	"testing"
)

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	if c.Grid[0][0] != 0x2801 {
		t.Errorf("expected dot 1, got %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != 0x2880 {
		t.Errorf("expected dot 8, got %U", c.Grid[0][1])
	}
	if !c.IsSet(0, 0) || c.IsSet(1, 0) {
		t.Error("IsSet disagrees with Set")
	}

	c.Unset(0, 0)
	if c.Grid[0][0] != 0x2800 {
		t.Errorf("expected blank, got %U", c.Grid[0][0])
	}

	c.Set(-1, 0)
	c.Set(100, 100)
}

func TestCanvasCircle(t *testing.T) {
	c := NewCanvas(20, 10)
	c.DrawCircle(20, 20, 8, false)

	for _, p := range [][2]int{{28, 20}, {12, 20}, {20, 28}, {20, 12}} {
		if !c.IsSet(p[0], p[1]) {
			t.Errorf("expected dot at %v", p)
		}
	}
	if c.IsSet(20, 20) {
		t.Error("circle outline should not fill its center")
	}

	dashed := NewCanvas(20, 10)
	dashed.DrawCircle(20, 20, 8, true)
	if countDots(dashed) >= countDots(c) {
		t.Errorf("dashed circle should use fewer dots: %d vs %d", countDots(dashed), countDots(c))
	}
}

func TestCanvasText(t *testing.T) {
	c := NewCanvas(6, 2)
	c.Text(1, 1, "milk and more")
	c.Set(2, 4)

	lines := strings.Split(c.String(), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if got := string([]rune(lines[1])[1:]); got != "milk " {
		t.Errorf("text should be clipped, got %q", got)
	}
	if []rune(lines[1])[1] != 'm' {
		t.Error("pixels must not overwrite text")
	}
}

func countDots(c *Canvas) int {
	n := 0
	for y := 0; y < c.Height*4; y++ {
		for x := 0; x < c.Width*2; x++ {
			if c.IsSet(x, y) {
				n++
			}
		}
	}
	return n
}
