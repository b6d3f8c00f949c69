package physics

import (
	"math"
	"unicode/utf16"

	"github.com/san-kum/aquarium/internal/todo"
)

const (
	DefaultRestitution       = 0.8
	DefaultAirFriction       = 0.02
	DefaultFriction          = 0.1
	DefaultJitterX           = 300.0
	DefaultJitterY           = 20.0
	DefaultIncompleteDensity = 0.001
	DefaultCompletedDensity  = 0.05
)

// LabelPrefix marks bubble bodies. Walls carry no label.
const LabelPrefix = "bubble-"

func Label(id string) string { return LabelPrefix + id }

// Style holds the radius constants of one priority.
type Style struct {
	BaseRadius   float64
	GrowthFactor float64
}

var Styles = map[todo.Priority]Style{
	todo.Low:    {BaseRadius: 45, GrowthFactor: 1.5},
	todo.Medium: {BaseRadius: 65, GrowthFactor: 2.0},
	todo.High:   {BaseRadius: 85, GrowthFactor: 2.5},
}

// StyleOf falls back to medium for unrecognized priorities.
func StyleOf(p todo.Priority) Style {
	if s, ok := Styles[p]; ok {
		return s
	}
	return Styles[todo.Medium]
}

// Radius grows linearly with the length of content in UTF-16 code units, so
// a character outside the BMP counts twice.
func Radius(content string, p todo.Priority) float64 {
	s := StyleOf(p)
	return s.BaseRadius + float64(len(utf16.Encode([]rune(content))))*s.GrowthFactor
}

// Size is a viewport measurement in pixels.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

func (s Size) Valid() bool { return s.Width > 0 && s.Height > 0 }

// Params are the fixed material and placement constants of new bubbles.
type Params struct {
	Restitution       float64
	AirFriction       float64
	Friction          float64
	JitterX           float64
	JitterY           float64
	IncompleteDensity float64
	CompletedDensity  float64
}

func DefaultParams() Params {
	return Params{
		Restitution:       DefaultRestitution,
		AirFriction:       DefaultAirFriction,
		Friction:          DefaultFriction,
		JitterX:           DefaultJitterX,
		JitterY:           DefaultJitterY,
		IncompleteDensity: DefaultIncompleteDensity,
		CompletedDensity:  DefaultCompletedDensity,
	}
}

// Density is low while incomplete so lift wins, high once completed.
func (p Params) Density(completed bool) float64 {
	if completed {
		return p.CompletedDensity
	}
	return p.IncompleteDensity
}

// Rand is the subset of *rand.Rand used for spawn jitter.
type Rand interface {
	Float64() float64
}

// BubbleDef describes a bubble body before it is inserted into a world.
type BubbleDef struct {
	ID          string
	Label       string
	X, Y        float64
	Angle       float64
	Radius      float64
	Density     float64
	Restitution float64
	AirFriction float64
	Friction    float64
	Meta        Metadata
}

// NewBubble builds the body descriptor for an item. Unplaced items spawn near
// the viewport center with jitter; placed items spawn exactly where they were.
func NewBubble(it todo.Item, view Size, rng Rand, p Params) BubbleDef {
	r := Radius(it.Content, it.Priority)
	def := BubbleDef{
		ID:          it.ID,
		Label:       Label(it.ID),
		Radius:      r,
		Density:     p.Density(it.Completed),
		Restitution: p.Restitution,
		AirFriction: p.AirFriction,
		Friction:    p.Friction,
		Meta:        MetadataOf(it),
	}

	if it.Position != nil {
		def.X, def.Y, def.Angle = it.Position.X, it.Position.Y, it.Position.Angle
		return def
	}

	x := view.Width/2 + jitter(rng, p.JitterX)
	y := view.Height/2 + jitter(rng, p.JitterY)
	def.X, def.Y = Clamp(x, y, r, view)
	return def
}

// Clamp keeps a circle of radius r inside the viewport. Axes too small to fit
// the circle resolve to their center.
func Clamp(x, y, r float64, view Size) (float64, float64) {
	return clampAxis(x, r, view.Width), clampAxis(y, r, view.Height)
}

func clampAxis(v, r, extent float64) float64 {
	if extent <= 2*r {
		return extent / 2
	}
	return math.Max(r, math.Min(extent-r, v))
}

func jitter(rng Rand, span float64) float64 {
	if rng == nil || span == 0 {
		return 0
	}
	return (rng.Float64()*2 - 1) * span
}
