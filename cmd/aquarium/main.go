package main

import (
	"fmt"
	"log"
	"os"

	"github.com/san-kum/aquarium/internal/config"
	"github.com/san-kum/aquarium/internal/storage"
	"github.com/san-kum/aquarium/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool

	// item edits
	priority string

	// headless runs
	frames     int
	width      float64
	height     float64
	seed       int64
	recordPath string
	scenario   string

	// bench and sweep
	numRuns   int
	paramName string
	paramMin  float64
	paramMax  float64
	numSteps  int

	addr         string
	allowOrigins []string
	svgPath      string
)

// main registers the commands and runs the viewer when none is given.
func main() {
	rootCmd := &cobra.Command{
		Use:   "aquarium",
		Short: "todo list where every item is a floating bubble",
		RunE:  runViewer,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "physics preset")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")

	addCmd := &cobra.Command{
		Use:   "add [content]",
		Short: "add an item",
		Args:  cobra.ExactArgs(1),
		RunE:  addItem,
	}
	addCmd.Flags().StringVarP(&priority, "priority", "p", "medium", "low, medium or high")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list items",
		RunE:  listItems,
	}

	toggleCmd := &cobra.Command{
		Use:   "toggle [id]",
		Short: "mark an item done or not done",
		Args:  cobra.ExactArgs(1),
		RunE:  toggleItem,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "delete an item",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteItem,
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "delete every item",
		RunE:  clearItems,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate the stored list without a display",
		RunE:  runHeadless,
	}
	runCmd.Flags().IntVar(&frames, "frames", 600, "frames to simulate")
	runCmd.Flags().Float64Var(&width, "width", 1200, "viewport width in px")
	runCmd.Flags().Float64Var(&height, "height", 800, "viewport height in px")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 keeps the config seed)")
	runCmd.Flags().StringVar(&recordPath, "record", "", "write frames to this file")
	runCmd.Flags().StringVar(&scenario, "scenario", "", "scenario file (yaml)")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	replayCmd := &cobra.Command{
		Use:   "replay [recording]",
		Short: "summarize a recording",
		Args:  cobra.ExactArgs(1),
		RunE:  replayRecording,
	}
	replayCmd.Flags().StringVar(&svgPath, "svg", "", "write trajectories as svg")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream frames over websocket",
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringSliceVar(&allowOrigins, "allow-origin", nil, "extra browser origin hosts allowed to connect (host:port)")
	serveCmd.Flags().Float64Var(&width, "width", 1200, "initial viewport width in px")
	serveCmd.Flags().Float64Var(&height, "height", 800, "initial viewport height in px")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [file]",
		Short: "draw the stored layout as svg",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().Float64Var(&width, "width", 1200, "viewport width in px")
	exportSVGCmd.Flags().Float64Var(&height, "height", 800, "viewport height in px")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list physics presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "run the stored list under several seeds",
		RunE:  bench,
	}
	benchCmd.Flags().IntVar(&numRuns, "runs", 4, "number of seeds")
	benchCmd.Flags().IntVar(&frames, "frames", 600, "frames per run")
	benchCmd.Flags().Float64Var(&width, "width", 1200, "viewport width in px")
	benchCmd.Flags().Float64Var(&height, "height", 800, "viewport height in px")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one physics parameter",
		RunE:  sweep,
	}
	sweepCmd.Flags().StringVar(&paramName, "param", "gravity", "parameter name")
	sweepCmd.Flags().Float64Var(&paramMin, "min", 10, "first value")
	sweepCmd.Flags().Float64Var(&paramMax, "max", 100, "last value")
	sweepCmd.Flags().IntVar(&numSteps, "steps", 5, "number of values")
	sweepCmd.Flags().IntVar(&frames, "frames", 600, "frames per value")
	sweepCmd.Flags().Float64Var(&width, "width", 1200, "viewport width in px")
	sweepCmd.Flags().Float64Var(&height, "height", 800, "viewport height in px")

	rootCmd.AddCommand(addCmd, listCmd, toggleCmd, deleteCmd, clearCmd, runCmd, runsCmd, replayCmd, serveCmd, exportSVGCmd, presetsCmd, benchCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads --config if given, then layers --preset on top.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	if preset != "" && !cfg.Apply(preset) {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}
	return cfg, nil
}

func logger(prefix string) *log.Logger {
	if !verbose {
		return nil
	}
	return log.New(os.Stderr, prefix, log.LstdFlags)
}

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir, log.New(os.Stderr, "[storage] ", 0))
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func runViewer(cmd *cobra.Command, args []string) error {
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
	_, err = viz.Run(cfg, items, st)
	return err
}
