package sim

import (
	"io"
	"log"
	"math/rand"

	"github.com/san-kum/aquarium/internal/config"
	"github.com/san-kum/aquarium/internal/physics"
	"github.com/san-kum/aquarium/internal/todo"
)

// Engine owns at most one live World, sized to the last measured viewport,
// and the fixed-step loop that drives it. All methods must be called from a
// single goroutine.
type Engine struct {
	cfg     config.PhysicsConfig
	params  physics.Params
	sched   FrameScheduler
	onFrame FrameFunc
	rng     physics.Rand
	logger  *log.Logger

	world *World
	frame FrameID
	tick  uint64

	// items is the last list reconciled against a live world. A rebuild
	// repopulates from it.
	items []todo.Item

	rebuilding bool
	pending    *Size
	built      bool
	closed     bool
}

type Option func(*Engine)

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithRand(r physics.Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
		}
	}
}

func New(cfg config.PhysicsConfig, sched FrameScheduler, onFrame FrameFunc, opts ...Option) *Engine {
	e := &Engine{
		cfg:     cfg,
		params:  cfg.Params(),
		sched:   sched,
		onFrame: onFrame,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		logger:  log.New(io.Discard, "[sim] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Live reports whether a world is currently built and stepping.
func (e *Engine) Live() bool { return e.world != nil }

// Size returns the dimensions of the live world, or the zero Size.
func (e *Engine) Size() Size {
	if e.world == nil {
		return Size{}
	}
	return e.world.size
}

func (e *Engine) Tick() uint64 { return e.tick }

// Resize reacts to a viewport measurement. A positive size different from the
// live world's rebuilds the world; a zero-area size tears it down and waits.
// Calls made while a rebuild is running are deferred and the latest one wins.
func (e *Engine) Resize(size Size) {
	if e.closed {
		return
	}
	if e.rebuilding {
		s := size
		e.pending = &s
		return
	}

	e.rebuilding = true
	defer func() { e.rebuilding = false }()

	next := &size
	for next != nil {
		e.pending = nil
		e.resize(*next)
		next = e.pending
	}
}

func (e *Engine) resize(size Size) {
	if !size.Valid() {
		if e.world != nil {
			e.logger.Printf("viewport %gx%g has no area, world released", size.Width, size.Height)
		}
		e.dispose()
		return
	}
	if e.world != nil && e.world.size == size {
		return
	}
	e.rebuild(size)
}

func (e *Engine) rebuild(size Size) {
	carried := e.carryPositions(size)
	e.dispose()

	e.world = newWorld(e.cfg, size)
	e.built = true
	e.logger.Printf("world built %gx%g", size.Width, size.Height)

	if len(e.items) > 0 {
		stats := e.reconcile(e.items, carried)
		e.logger.Printf("world repopulated: %d bubbles", stats.Created)
	}
	e.schedule(e.world)
}

// carryPositions snapshots the live bubbles, clamped into a viewport of the
// given size, so a rebuild keeps the layout instead of respawning at center.
func (e *Engine) carryPositions(size Size) map[string]todo.Position {
	if e.world == nil {
		return nil
	}
	out := make(map[string]todo.Position, len(e.world.bodies))
	for id, body := range e.world.bodies {
		p := e.world.positionOf(body)
		r := e.world.data[body].radius
		p.X, p.Y = physics.Clamp(p.X, p.Y, r, size)
		out[id] = p
	}
	return out
}

func (e *Engine) schedule(w *World) {
	e.frame = e.sched.RequestFrame(func() { e.tickWorld(w) })
}

func (e *Engine) tickWorld(w *World) {
	if w.disposed || w != e.world {
		return
	}
	e.frame = 0

	w.applyBuoyancy()
	w.step()
	e.tick++
	frame := e.export(w)
	if e.onFrame != nil {
		e.onFrame(frame)
	}

	// The callback may have resized or closed the engine.
	if w.disposed || w != e.world {
		return
	}
	e.schedule(w)
}

// dispose marks the world dead before tearing it down so a tick already
// queued by the host observes the cancellation. Safe without a live world.
func (e *Engine) dispose() {
	w := e.world
	if w == nil {
		return
	}
	w.disposed = true
	if e.frame != 0 {
		e.sched.CancelFrame(e.frame)
		e.frame = 0
	}
	w.destroy()
	e.world = nil
}

// Close releases the world and stops the loop. Further calls do nothing.
func (e *Engine) Close() {
	e.closed = true
	e.dispose()
	e.items = nil
}
