package sim

import (
	"fmt"
	"math"

	"github.com/ByteArena/box2d"
	"github.com/san-kum/aquarium/internal/config"
	"github.com/san-kum/aquarium/internal/physics"
	"github.com/san-kum/aquarium/internal/todo"
)

// Wall is a static boundary body, in viewport pixels.
type Wall struct {
	Name          string
	X, Y          float64
	Width, Height float64
}

type bubbleData struct {
	label  string
	radius float64
	meta   physics.Metadata
}

// World wraps one box2d world sized to a viewport. Positions cross the
// boundary in pixels and are stored in meters inside box2d.
type World struct {
	b2   *box2d.B2World
	size Size
	cfg  config.PhysicsConfig

	ppm        float64
	forceScale float64
	damping    float64

	walls    []*box2d.B2Body
	wallDefs []Wall

	bodies map[string]*box2d.B2Body
	ids    map[*box2d.B2Body]string
	data   map[*box2d.B2Body]*bubbleData

	disposed bool
}

func newWorld(cfg config.PhysicsConfig, size Size) *World {
	gravity := box2d.MakeB2Vec2(0, cfg.Gravity/cfg.PixelsPerMeter)
	b2 := box2d.MakeB2World(gravity)

	w := &World{
		b2:         &b2,
		size:       size,
		cfg:        cfg,
		ppm:        cfg.PixelsPerMeter,
		forceScale: forceScale(cfg.PixelsPerMeter),
		damping:    linearDamping(cfg.AirFriction, cfg.Timestep),
		bodies:     make(map[string]*box2d.B2Body),
		ids:        make(map[*box2d.B2Body]string),
		data:       make(map[*box2d.B2Body]*bubbleData),
	}
	w.addWalls(cfg.WallThickness)
	return w
}

// forceScale converts px·ms⁻²·(density·px²) forces into newtons for a world
// measured in meters: F_N = F × 10⁶ / ppm³.
func forceScale(ppm float64) float64 {
	return 1e6 / (ppm * ppm * ppm)
}

// linearDamping turns a per-step velocity loss f into box2d's damping
// coefficient, which scales velocity by 1/(1+dt·c) each step.
func linearDamping(f, dt float64) float64 {
	if f <= 0 {
		return 0
	}
	return (1/(1-f) - 1) / dt
}

func (w *World) addWalls(t float64) {
	width, height := w.size.Width, w.size.Height
	w.wallDefs = []Wall{
		{Name: "floor", X: width / 2, Y: height + t/2, Width: width, Height: t},
		{Name: "ceiling", X: width / 2, Y: -t / 2, Width: width, Height: t},
		{Name: "left", X: -t / 2, Y: height / 2, Width: t, Height: height},
		{Name: "right", X: width + t/2, Y: height / 2, Width: t, Height: height},
	}

	for _, def := range w.wallDefs {
		bd := box2d.MakeB2BodyDef()
		bd.Type = box2d.B2BodyType.B2_staticBody
		bd.Position = box2d.MakeB2Vec2(def.X/w.ppm, def.Y/w.ppm)
		body := w.b2.CreateBody(&bd)
		if body == nil {
			panic(fmt.Sprintf("sim: box2d refused wall %s", def.Name))
		}

		shape := box2d.MakeB2PolygonShape()
		shape.SetAsBox(def.Width/2/w.ppm, def.Height/2/w.ppm)
		body.CreateFixture(&shape, 0)
		w.walls = append(w.walls, body)
	}
}

func (w *World) addBubble(def physics.BubbleDef) *box2d.B2Body {
	if _, ok := w.bodies[def.ID]; ok {
		panic(fmt.Sprintf("sim: duplicate bubble %s", def.ID))
	}

	bd := box2d.MakeB2BodyDef()
	bd.Type = box2d.B2BodyType.B2_dynamicBody
	bd.Position = box2d.MakeB2Vec2(def.X/w.ppm, def.Y/w.ppm)
	bd.Angle = def.Angle
	bd.LinearDamping = w.damping
	bd.AllowSleep = false
	bd.UserData = def.Label
	body := w.b2.CreateBody(&bd)
	if body == nil {
		panic(fmt.Sprintf("sim: box2d refused bubble %s", def.ID))
	}

	shape := box2d.MakeB2CircleShape()
	shape.M_radius = def.Radius / w.ppm

	fd := box2d.MakeB2FixtureDef()
	fd.Shape = &shape
	fd.Density = def.Density
	fd.Restitution = def.Restitution
	fd.Friction = def.Friction
	body.CreateFixtureFromDef(&fd)

	w.bodies[def.ID] = body
	w.ids[body] = def.ID
	w.data[body] = &bubbleData{label: def.Label, radius: def.Radius, meta: def.Meta}
	return body
}

func (w *World) removeBubble(id string) {
	body, ok := w.bodies[id]
	if !ok {
		return
	}
	w.b2.DestroyBody(body)
	delete(w.bodies, id)
	delete(w.ids, body)
	delete(w.data, body)
}

// update refreshes metadata and density in place. Position and velocity are
// untouched. It reports whether anything changed.
func (w *World) update(id string, meta physics.Metadata, density float64) bool {
	body, ok := w.bodies[id]
	if !ok {
		return false
	}
	changed := false
	d := w.data[body]
	if d.meta != meta {
		d.meta = meta
		changed = true
	}
	if !sameDensity(bodyDensity(body), density) {
		for f := body.GetFixtureList(); f != nil; f = f.GetNext() {
			f.SetDensity(density)
		}
		body.ResetMassData()
		changed = true
	}
	return changed
}

func (w *World) applyBuoyancy() {
	for body, d := range w.data {
		if body.GetType() == box2d.B2BodyType.B2_staticBody {
			continue
		}
		lift := d.meta.Buoyancy()
		if lift == 0 {
			continue
		}
		force := box2d.MakeB2Vec2(0, -lift*w.forceScale)
		body.ApplyForce(force, body.GetWorldCenter(), true)
	}
}

func (w *World) step() {
	w.b2.Step(w.cfg.Timestep, w.cfg.VelocityIterations, w.cfg.PositionIterations)
}

func (w *World) positionOf(body *box2d.B2Body) todo.Position {
	p := body.GetPosition()
	return todo.Position{X: p.X * w.ppm, Y: p.Y * w.ppm, Angle: body.GetAngle()}
}

// destroy releases every body. The world must not be used afterwards.
func (w *World) destroy() {
	for body := range w.ids {
		w.b2.DestroyBody(body)
	}
	for _, body := range w.walls {
		w.b2.DestroyBody(body)
	}
	w.bodies = map[string]*box2d.B2Body{}
	w.ids = map[*box2d.B2Body]string{}
	w.data = map[*box2d.B2Body]*bubbleData{}
	w.walls = nil
	w.wallDefs = nil
	w.b2 = nil
}

func bodyDensity(body *box2d.B2Body) float64 {
	f := body.GetFixtureList()
	if f == nil {
		return 0
	}
	return f.GetDensity()
}

func sameDensity(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}
