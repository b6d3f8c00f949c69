package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"time"

	"github.com/san-kum/aquarium/internal/config"
	"github.com/san-kum/aquarium/internal/sim"
	"github.com/san-kum/aquarium/internal/todo"
	"gopkg.in/yaml.v3"
)

var ErrUnknownAction = errors.New("automation: unknown action")

// Scenario scripts edits and resizes against a headless run.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Width       float64        `yaml:"width"`
	Height      float64        `yaml:"height"`
	Frames      int            `yaml:"frames"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep runs before frame At. Toggle and delete address an item by
// ID, or by Match against its content when ids are not known in advance.
type ScenarioStep struct {
	At       int     `yaml:"at"`
	Action   string  `yaml:"action"`
	Content  string  `yaml:"content"`
	Priority string  `yaml:"priority"`
	ID       string  `yaml:"id"`
	Match    string  `yaml:"match"`
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if scenario.Width <= 0 || scenario.Height <= 0 {
		scenario.Width, scenario.Height = 1200, 800
	}

	return &scenario, nil
}

// RunScenario resizes r to the scenario viewport, then steps it frame by
// frame, applying each step when its frame comes up.
func RunScenario(ctx context.Context, scenario *Scenario, r *sim.Runner, logger *log.Logger) error {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	steps := append([]ScenarioStep(nil), scenario.Steps...)
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].At < steps[j].At })

	frames := scenario.Frames
	if n := len(steps); n > 0 && steps[n-1].At > frames {
		frames = steps[n-1].At
	}

	r.Resize(sim.Size{Width: scenario.Width, Height: scenario.Height})

	next := 0
	for frame := 0; frame <= frames; frame++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for next < len(steps) && steps[next].At <= frame {
			step := steps[next]
			logger.Printf("frame %d: %s", frame, step.Action)
			if err := applyStep(r, step); err != nil {
				return fmt.Errorf("step %d (%s): %w", next+1, step.Action, err)
			}
			next++
		}
		if frame < frames {
			r.Step(1)
		}
	}
	return nil
}

func applyStep(r *sim.Runner, step ScenarioStep) error {
	switch step.Action {
	case "add":
		p := todo.Medium
		if step.Priority != "" {
			var err error
			if p, err = todo.ParsePriority(step.Priority); err != nil {
				return err
			}
		}
		return r.Apply(func(list []todo.Item) ([]todo.Item, error) {
			next, _, err := todo.Add(list, step.Content, p, time.Now())
			return next, err
		})
	case "toggle":
		return r.Apply(func(list []todo.Item) ([]todo.Item, error) {
			id, err := resolve(list, step)
			if err != nil {
				return nil, err
			}
			return todo.Toggle(list, id, time.Now())
		})
	case "delete":
		return r.Apply(func(list []todo.Item) ([]todo.Item, error) {
			id, err := resolve(list, step)
			if err != nil {
				return nil, err
			}
			return todo.Delete(list, id)
		})
	case "clear":
		return r.Apply(func(list []todo.Item) ([]todo.Item, error) {
			return todo.Clear(list), nil
		})
	case "resize":
		r.Resize(sim.Size{Width: step.Width, Height: step.Height})
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownAction, step.Action)
}

func resolve(list []todo.Item, step ScenarioStep) (string, error) {
	if step.ID != "" {
		return step.ID, nil
	}
	for _, it := range list {
		if it.Content == step.Match {
			return it.ID, nil
		}
	}
	return "", fmt.Errorf("%w: no item matches %q", todo.ErrUnknownItem, step.Match)
}

// ParameterSweep runs the same layout across a range of one physics
// parameter.
type ParameterSweep struct {
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Frames    int
	Size      sim.Size
}

type SweepResult struct {
	ParamValue float64
	Metrics    map[string]float64
}

// SetParam assigns a named physics parameter.
func SetParam(p *config.PhysicsConfig, name string, v float64) error {
	switch name {
	case "gravity":
		p.Gravity = v
	case "air_friction":
		p.AirFriction = v
	case "restitution":
		p.Restitution = v
	case "friction":
		p.Friction = v
	case "density_incomplete":
		p.Density.Incomplete = v
	case "density_completed":
		p.Density.Completed = v
	default:
		return fmt.Errorf("unknown parameter %q", name)
	}
	return nil
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, base config.PhysicsConfig, items []todo.Item, metrics func() []sim.Metric) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}
	results := make([]SweepResult, 0, sweep.NumSteps)

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := base
		if err := SetParam(&cfg, sweep.ParamName, paramVal); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s=%.4f: %w", sweep.ParamName, paramVal, err)
		}

		r := sim.NewRunner(cfg, append([]todo.Item(nil), items...))
		if metrics != nil {
			for _, m := range metrics() {
				r.AddMetric(m)
			}
		}
		r.Resize(sweep.Size)
		for f := 0; f < sweep.Frames; f++ {
			if err := ctx.Err(); err != nil {
				r.Engine().Close()
				return nil, err
			}
			r.Step(1)
		}
		r.Engine().Close()

		results = append(results, SweepResult{ParamValue: paramVal, Metrics: r.Metrics()})
	}

	return results, nil
}
