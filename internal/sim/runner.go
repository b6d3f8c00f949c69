package sim

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/san-kum/aquarium/internal/config"
	"github.com/san-kum/aquarium/internal/todo"
)

// Command edits the item list. It must return a new slice rather than
// mutate its argument.
type Command func([]todo.Item) ([]todo.Item, error)

// Runner hosts an Engine without a display: it owns the item list, pumps
// frames from a ticker and merges exported positions back into the list.
type Runner struct {
	engine *Engine
	sched  *ManualScheduler
	items  []todo.Item

	observers []Observer
	metrics   []Metric
	onChange  func([]todo.Item)

	fps      int
	logger   *log.Logger
	resizes  chan Size
	commands chan Command
}

type RunnerOption func(*Runner)

func WithFPS(fps int) RunnerOption {
	return func(r *Runner) {
		if fps > 0 {
			r.fps = fps
		}
	}
}

func WithRunnerLogger(l *log.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// OnItemsChanged registers a hook called after a command changes the list.
func OnItemsChanged(fn func([]todo.Item)) RunnerOption {
	return func(r *Runner) { r.onChange = fn }
}

func NewRunner(cfg config.PhysicsConfig, items []todo.Item, opts ...RunnerOption) *Runner {
	r := &Runner{
		sched:    NewManualScheduler(),
		items:    items,
		fps:      60,
		logger:   log.New(io.Discard, "[runner] ", log.LstdFlags),
		resizes:  make(chan Size, 8),
		commands: make(chan Command, 16),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.engine = New(cfg, r.sched, r.handleFrame, WithLogger(r.logger))
	return r
}

func (r *Runner) Engine() *Engine { return r.engine }

func (r *Runner) Items() []todo.Item {
	return append([]todo.Item(nil), r.items...)
}

func (r *Runner) AddObserver(o Observer) {
	r.observers = append(r.observers, o)
}

func (r *Runner) AddMetric(m Metric) {
	r.metrics = append(r.metrics, m)
}

func (r *Runner) Metrics() map[string]float64 {
	out := make(map[string]float64, len(r.metrics))
	for _, m := range r.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// Resizes accepts viewport measurements while Run is active.
func (r *Runner) Resizes() chan<- Size { return r.resizes }

// Commands accepts list edits while Run is active. Failed commands are logged.
func (r *Runner) Commands() chan<- Command { return r.commands }

// Resize applies a measurement immediately and reconciles the current list
// against the new world.
func (r *Runner) Resize(size Size) {
	r.engine.Resize(size)
	r.engine.Reconcile(r.items)
}

// Apply runs a command against the list and reconciles the result.
func (r *Runner) Apply(cmd Command) error {
	next, err := cmd(r.items)
	if err != nil {
		return err
	}
	r.items = next
	r.engine.Reconcile(r.items)
	if r.onChange != nil {
		r.onChange(r.Items())
	}
	return nil
}

// Step pumps n frames and returns how many ticks ran.
func (r *Runner) Step(n int) int {
	ran := 0
	for i := 0; i < n; i++ {
		ran += r.sched.Pump()
	}
	return ran
}

func (r *Runner) handleFrame(f Frame) {
	r.items = todo.ApplyPositions(r.items, f.Positions)
	r.engine.Reconcile(r.items)

	for _, m := range r.metrics {
		m.Observe(f)
	}
	for _, o := range r.observers {
		o.OnFrame(f)
	}
}

// Run drives the engine until ctx is done. Resizes are coalesced so only the
// latest measurement queued between frames is applied.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(r.fps))
	defer ticker.Stop()
	defer r.engine.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case size := <-r.resizes:
		drain:
			for {
				select {
				case size = <-r.resizes:
				default:
					break drain
				}
			}
			r.Resize(size)

		case cmd := <-r.commands:
			if err := r.Apply(cmd); err != nil {
				r.logger.Printf("command failed: %v", err)
			}

		case <-ticker.C:
			r.sched.Pump()
		}
	}
}
