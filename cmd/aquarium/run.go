package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/aquarium/internal/automation"
	"github.com/san-kum/aquarium/internal/export"
	"github.com/san-kum/aquarium/internal/metrics"
	"github.com/san-kum/aquarium/internal/record"
	"github.com/san-kum/aquarium/internal/sim"
	"github.com/san-kum/aquarium/internal/storage"
	"github.com/san-kum/aquarium/internal/todo"
	"github.com/san-kum/aquarium/internal/transport/ws"
	"github.com/spf13/cobra"
)

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if seed != 0 {
		cfg.Physics.Seed = seed
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	items, err := st.LoadItems()
	if err != nil {
		return err
	}

	r := sim.NewRunner(cfg.Physics, items, sim.WithRunnerLogger(logger("[runner] ")))
	for _, m := range metrics.Default() {
		r.AddMetric(m)
	}

	var rec *record.Writer
	if recordPath != "" {
		if !strings.HasSuffix(recordPath, record.Ext) {
			recordPath += record.Ext
		}
		if rec, err = record.Create(recordPath); err != nil {
			return err
		}
		r.AddObserver(rec)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("running layout...")
	start := time.Now()
	size := sim.Size{Width: width, Height: height}
	ran := frames
	if scenario != "" {
		sc, err := automation.LoadScenario(scenario)
		if err != nil {
			return err
		}
		size = sim.Size{Width: sc.Width, Height: sc.Height}
		ran = sc.Frames
		if err := automation.RunScenario(ctx, sc, r, logger("[scenario] ")); err != nil {
			return err
		}
	} else {
		r.Resize(size)
		for i := 0; i < frames; i++ {
			if ctx.Err() != nil {
				ran = i
				break
			}
			r.Step(1)
		}
	}
	r.Engine().Close()
	elapsed := time.Since(start)

	if rec != nil {
		if err := rec.Close(); err != nil {
			return fmt.Errorf("recording: %w", err)
		}
	}

	final := r.Items()
	if err := st.SaveItems(final); err != nil {
		return err
	}

	runID, err := st.SaveRun(storage.RunMetadata{
		Seed:      cfg.Physics.Seed,
		Preset:    preset,
		Width:     size.Width,
		Height:    size.Height,
		Frames:    ran,
		Items:     len(final),
		Recording: recordPath,
		Metrics:   r.Metrics(),
	})
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d\n", ran)
	printMetrics(r.Metrics())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nID\tX\tY\tANGLE\tCONTENT")
	for _, it := range final {
		if it.Position == nil {
			continue
		}
		fmt.Fprintf(w, "%s\t%.1f\t%.1f\t%.2f\t%s\n", it.ID, it.Position.X, it.Position.Y, it.Position.Angle, it.Content)
	}
	return w.Flush()
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	runs, err := st.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tPRESET\tSIZE\tFRAMES\tITEMS\tSETTLED")
	for _, run := range runs {
		p := run.Preset
		if p == "" {
			p = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0fx%.0f\t%d\t%d\t%.2f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			p,
			run.Width, run.Height,
			run.Frames,
			run.Items,
			run.Metrics["settled"],
		)
	}
	return w.Flush()
}

func replayRecording(cmd *cobra.Command, args []string) error {
	var frames []sim.Frame
	motion := metrics.NewMotion(1 << 20)
	ids := map[string]struct{}{}
	err := record.Read(args[0], func(f sim.Frame) error {
		frames = append(frames, f)
		motion.Observe(f)
		for id := range f.Positions {
			ids[id] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return errors.New("recording holds no frames")
	}

	first, last := frames[0], frames[len(frames)-1]
	fmt.Printf("frames: %d (ticks %d..%d)\n", len(frames), first.Tick, last.Tick)
	fmt.Printf("viewport: %.0fx%.0f\n", last.Size.Width, last.Size.Height)
	fmt.Printf("bubbles: %d\n\n", len(ids))

	if hist := motion.History(); len(hist) > 1 {
		fmt.Println(asciigraph.Plot(hist, asciigraph.Height(10), asciigraph.Width(60), asciigraph.Caption("motion px/frame")))
	}

	if svgPath != "" {
		svg := export.TrajectoryToSVG(frames, "#4fc3f7")
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", svgPath)
	}
	return nil
}

func bench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	items, err := st.LoadItems()
	if err != nil {
		return err
	}

	fmt.Printf("running %d seeds x %d frames...\n", numRuns, frames)
	start := time.Now()
	ens := sim.NewEnsemble(cfg.Physics, items, sim.Size{Width: width, Height: height}, numRuns, cfg.Physics.Seed, metrics.Default)
	results, err := ens.Run(cmd.Context(), frames)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tMOTION\tSETTLED\tALTITUDE")
	for _, res := range results {
		fmt.Fprintf(w, "%d\t%.4f\t%.4f\t%.4f\n", res.Seed, res.Metrics["motion"], res.Metrics["settled"], res.Metrics["altitude"])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	total := float64(numRuns * frames)
	fmt.Printf("\ncompleted in %v (%.0f frames/sec)\n", elapsed, total/elapsed.Seconds())
	return nil
}

func sweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	items, err := st.LoadItems()
	if err != nil {
		return err
	}

	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		ParamName: paramName,
		ParamMin:  paramMin,
		ParamMax:  paramMax,
		NumSteps:  numSteps,
		Frames:    frames,
		Size:      sim.Size{Width: width, Height: height},
	}, cfg.Physics, items, metrics.Default)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tMOTION\tSETTLED\tALTITUDE\n", strings.ToUpper(paramName))
	settled := make([]float64, 0, len(results))
	for _, res := range results {
		fmt.Fprintf(w, "%.4f\t%.4f\t%.4f\t%.4f\n", res.ParamValue, res.Metrics["motion"], res.Metrics["settled"], res.Metrics["altitude"])
		settled = append(settled, res.Metrics["settled"])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(settled) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(settled, asciigraph.Height(8), asciigraph.Caption("settled vs "+paramName)))
	}
	return nil
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	items, err := st.LoadItems()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	var hub *ws.Hub
	r := sim.NewRunner(cfg.Physics, items,
		sim.WithFPS(cfg.Viewer.FPS),
		sim.WithRunnerLogger(logger("[runner] ")),
		sim.OnItemsChanged(func(list []todo.Item) {
			if err := st.SaveItems(list); err != nil {
				fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
			}
			hub.BroadcastItems(list)
		}),
	)
	hub = ws.NewHub(r.Commands(), r.Resizes(), logger("[ws] "), ws.AllowOrigins(allowOrigins...))
	r.AddObserver(hub)
	r.Resizes() <- sim.Size{Width: width, Height: height}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- r.Run(ctx)
	}()

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	fmt.Printf("serving ws://%s/ws\n", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		stop()
		<-errCh
		return err
	}

	<-errCh
	return st.SaveItems(r.Items())
}
