package sim_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/aquarium/internal/config"
	"github.com/san-kum/aquarium/internal/sim"
	"github.com/san-kum/aquarium/internal/todo"
)

type countingObserver struct {
	mu     sync.Mutex
	frames []sim.Frame
}

func (o *countingObserver) OnFrame(f sim.Frame) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.frames = append(o.frames, f)
}

func (o *countingObserver) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.frames)
}

func addItem(content string, p todo.Priority) sim.Command {
	return func(list []todo.Item) ([]todo.Item, error) {
		next, _, err := todo.Add(list, content, p, time.Now())
		return next, err
	}
}

var _ = Describe("Runner", func() {
	var (
		runner   *sim.Runner
		observer *countingObserver
		changes  int
	)

	BeforeEach(func() {
		observer = &countingObserver{}
		changes = 0
		runner = sim.NewRunner(config.DefaultPhysics(), nil,
			sim.OnItemsChanged(func([]todo.Item) { changes++ }))
		runner.AddObserver(observer)
		runner.Resize(sim.Size{Width: 1200, Height: 800})
	})

	AfterEach(func() {
		runner.Engine().Close()
	})

	It("creates one bubble per added item", func() {
		Expect(runner.Apply(addItem("buy milk", todo.High))).To(Succeed())
		Expect(runner.Apply(addItem("walk dog", todo.Low))).To(Succeed())

		snap := runner.Engine().Inspect()
		Expect(snap.Bodies).To(HaveLen(2))
		Expect(snap.Walls).To(HaveLen(4))
		Expect(changes).To(Equal(2))
	})

	It("leaves the list alone when a command fails", func() {
		Expect(runner.Apply(addItem("   ", todo.Low))).To(MatchError(todo.ErrEmptyContent))
		Expect(runner.Items()).To(BeEmpty())
		Expect(changes).To(BeZero())
	})

	It("merges exported positions into the list", func() {
		Expect(runner.Apply(addItem("buy milk", todo.High))).To(Succeed())
		Expect(runner.Step(5)).To(Equal(5))

		Expect(observer.frames).To(HaveLen(5))
		items := runner.Items()
		Expect(items).To(HaveLen(1))
		Expect(items[0].Position).NotTo(BeNil())
		Expect(observer.frames[4].Positions).To(HaveKeyWithValue(items[0].ID, *items[0].Position))
	})

	It("keeps every bubble across a resize", func() {
		Expect(runner.Apply(addItem("a", todo.Low))).To(Succeed())
		Expect(runner.Apply(addItem("b", todo.Medium))).To(Succeed())
		runner.Step(10)

		runner.Resize(sim.Size{Width: 600, Height: 400})

		snap := runner.Engine().Inspect()
		Expect(snap.Size).To(Equal(sim.Size{Width: 600, Height: 400}))
		Expect(snap.Bodies).To(HaveLen(2))
		Expect(snap.BodyCount).To(Equal(6))
		for _, b := range snap.Bodies {
			Expect(b.Position.X).To(BeNumerically(">=", b.Radius-1))
			Expect(b.Position.X).To(BeNumerically("<=", 600-b.Radius+1))
		}
	})

	It("completes a toggled item without recreating it", func() {
		Expect(runner.Apply(addItem("buy milk", todo.High))).To(Succeed())
		id := runner.Items()[0].ID

		Expect(runner.Apply(func(list []todo.Item) ([]todo.Item, error) {
			return todo.Toggle(list, id, time.Now())
		})).To(Succeed())

		b, ok := runner.Engine().Inspect().Body(id)
		Expect(ok).To(BeTrue())
		Expect(b.Label).To(Equal("bubble-" + id))
		Expect(b.Density).To(Equal(config.DefaultPhysics().Density.Completed))
	})

	It("stops when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- runner.Run(ctx) }()

		runner.Commands() <- addItem("buy milk", todo.High)
		runner.Resizes() <- sim.Size{Width: 800, Height: 600}

		Eventually(observer.count).WithTimeout(2 * time.Second).Should(BeNumerically(">", 0))
		cancel()

		var err error
		Eventually(done).WithTimeout(2 * time.Second).Should(Receive(&err))
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(runner.Engine().Live()).To(BeFalse())
	})
})

var _ = Describe("Ensemble", func() {
	It("returns one result per seed", func() {
		items, _, err := todo.Add(nil, "buy milk", todo.High, time.Now())
		Expect(err).NotTo(HaveOccurred())

		ens := sim.NewEnsemble(config.DefaultPhysics(), items, sim.Size{Width: 800, Height: 600}, 1, 7, nil)
		results, err := ens.Run(context.Background(), 30)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(1))
		Expect(results[0].Seed).To(Equal(int64(7)))
		Expect(results[0].Items).To(HaveLen(1))
		Expect(results[0].Items[0].Position).NotTo(BeNil())
	})

	It("reports cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		ens := sim.NewEnsemble(config.DefaultPhysics(), nil, sim.Size{Width: 800, Height: 600}, 1, 1, nil)
		_, err := ens.Run(ctx, 10)
		Expect(err).To(MatchError(context.Canceled))
	})
})
