package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/spirograph/internal/automation"
	"github.com/san-kum/spirograph/internal/config"
	"github.com/san-kum/spirograph/internal/experiment"
	"github.com/san-kum/spirograph/internal/logging"
	"github.com/san-kum/spirograph/internal/viz"
)

var (
	dataDir     string
	configFile  string
	presetName  string
	seed        int64
	frames      int
	minutes     float64
	fps         int
	width       int
	height      int
	format      string
	prefix      string
	rounding    string
	previewMode string
	theme       string
	logLevel    string
	logFile     string
	count       int
	parallel    int
	jsonOut     bool
	svgOut      string
	svgScale    float64
	svgStroke   float64
	pattern     int
	noSidecar   bool

	closeLog = func() {}
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "spiro",
		Short:         "rotating-arm spirograph video renderer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := logging.Setup(logLevel, logFile)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			closeLog = c
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeLog()
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultConfig().Output.Dir, "directory for videos and run sidecars")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error, none)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write JSON logs to this file")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "render one animation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAnimation,
	}
	addRenderFlags(runCmd)
	runCmd.Flags().StringVar(&previewMode, "preview", "", "live preview: none, tui or cv")
	runCmd.Flags().StringVar(&theme, "theme", viz.ThemeNeon.Name, "tui preview theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	batchCmd := &cobra.Command{
		Use:   "batch [preset]",
		Short: "render several independent animations",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBatch,
	}
	addRenderFlags(batchCmd)
	batchCmd.Flags().IntVar(&count, "count", 4, "number of animations")
	batchCmd.Flags().IntVar(&parallel, "parallel", 2, "animations rendered at once")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				fmt.Fprintf(w, "%s\t%s\n", name, config.Presets[name].Description)
			}
			return w.Flush()
		},
	}

	formatsCmd := &cobra.Command{
		Use:   "formats",
		Short: "list output formats",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range experiment.NewRegistry().ListSinks() {
				fmt.Println(name)
			}
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list rendered runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().BoolVar(&jsonOut, "json", false, "print metadata and trace as JSON")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the tracing point over time",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&pattern, "pattern", -1, "only plot this sub-pattern")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "period and shape analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the traced curve as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&svgOut, "output", "o", "", "output file (default: next to the video)")
	exportSVGCmd.Flags().Float64Var(&svgScale, "scale", 1, "coordinate scale")
	exportSVGCmd.Flags().Float64Var(&svgStroke, "stroke", 2, "stroke width")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "render every step of a YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	rootCmd.AddCommand(runCmd, batchCmd, scenarioCmd, presetsCmd, formatsCmd, listCmd, showCmd, plotCmd, analyzeCmd, exportSVGCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("spiro failed")
		fmt.Fprintln(os.Stderr, "error:", err)
		closeLog()
		os.Exit(1)
	}
}

func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML config file, applied over the preset")
	cmd.Flags().StringVar(&presetName, "preset", "", "preset name (same as the argument)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	cmd.Flags().IntVar(&frames, "frames", 0, "frame cap, overrides --minutes")
	cmd.Flags().Float64Var(&minutes, "minutes", config.DefaultMinutes, "video length in minutes")
	cmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "frames per second")
	cmd.Flags().IntVar(&width, "width", config.DefaultWidth, "frame width")
	cmd.Flags().IntVar(&height, "height", config.DefaultHeight, "frame height")
	cmd.Flags().StringVar(&format, "format", "mp4", "output format (see formats)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "output file name prefix")
	cmd.Flags().StringVar(&rounding, "rounding", "", "pixel rounding: truncate, nearest or final")
	cmd.Flags().BoolVar(&noSidecar, "no-sidecar", false, "do not write run metadata next to the video")
}

func runOptions(extra ...experiment.Option) []experiment.Option {
	if noSidecar {
		extra = append(extra, experiment.WithoutSidecar())
	}
	return extra
}

// resolveConfig layers preset, config file and explicitly set flags, in that
// order.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	name := presetName
	if len(args) > 0 {
		name = args[0]
	}

	cfg := config.DefaultConfig()
	if name != "" {
		cfg = config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %s)", name, strings.Join(config.ListPresets(), ", "))
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("minutes") {
		cfg.Minutes = minutes
		cfg.FrameCap = 0
	}
	if flags.Changed("frames") {
		cfg.FrameCap = frames
	}
	if flags.Changed("fps") {
		cfg.FPS = fps
	}
	if flags.Changed("width") {
		cfg.Width = width
	}
	if flags.Changed("height") {
		cfg.Height = height
	}
	if flags.Changed("format") {
		cfg.Output.Format = format
	}
	if flags.Changed("prefix") {
		cfg.Output.Prefix = prefix
	}
	if flags.Changed("rounding") {
		cfg.Rounding = rounding
	}
	if flags.Changed("data") {
		cfg.Output.Dir = dataDir
	}
	if flags.Changed("preview") {
		cfg.Preview.Display = previewMode
	}

	return cfg, cfg.Validate()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runAnimation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	reg := experiment.NewRegistry()

	var outcome *experiment.Outcome
	switch cfg.Preview.Display {
	case "", "none":
		exp, err := experiment.New(cfg, reg, runOptions()...)
		if err != nil {
			return err
		}
		outcome, err = exp.Run(ctx)
		if err != nil {
			return err
		}

	case "tui":
		if logFile == "" {
			zerolog.SetGlobalLevel(zerolog.ErrorLevel)
		}
		preview := viz.NewPreview(viz.PreviewOptions{
			Title:     "spiro " + cfg.Preset,
			MaxFrames: cfg.MaxFrames(),
			Theme:     theme,
		})
		exp, err := experiment.New(cfg, reg, runOptions(experiment.WithDisplay(preview), experiment.WithObserver(preview))...)
		if err != nil {
			return err
		}
		err = preview.Run(ctx, func(ctx context.Context) error {
			var runErr error
			outcome, runErr = exp.Run(ctx)
			return runErr
		})
		if err != nil {
			return err
		}

	case "cv":
		display, closeDisplay, err := newWindowDisplay("spiro", cfg.Width, cfg.Height)
		if err != nil {
			return err
		}
		defer closeDisplay()
		exp, err := experiment.New(cfg, reg, runOptions(experiment.WithDisplay(display))...)
		if err != nil {
			return err
		}
		outcome, err = exp.Run(ctx)
		if err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown preview mode: %s (none, tui, cv)", cfg.Preview.Display)
	}

	printOutcome(outcome)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", count)
	}

	ctx, stop := signalContext()
	defer stop()

	outcomes, err := experiment.RunBatch(ctx, experiment.Variants(cfg, count), experiment.NewRegistry(), parallel, runOptions()...)
	return printOutcomes(outcomes, err)
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	dir := ""
	if cmd.Flags().Changed("data") {
		dir = dataDir
	}
	outcomes, err := automation.RunScenario(ctx, sc, experiment.NewRegistry(), dir)
	return printOutcomes(outcomes, err)
}

func printOutcomes(outcomes []*experiment.Outcome, err error) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VIDEO\tSEED\tFRAMES\tRESETS\tREASON")
	for _, o := range outcomes {
		if o == nil {
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n", o.Meta.Video, o.Meta.Seed, o.Meta.Frames, o.Meta.Resets, o.Meta.Reason)
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

func printOutcome(o *experiment.Outcome) {
	if o == nil {
		return
	}
	fmt.Printf("video: %s\n", o.Meta.Video)
	if o.Meta.ID != "" {
		fmt.Printf("run: %s\n", o.Meta.ID)
	}
	fmt.Printf("frames: %d/%d  resets: %d  stopped: %s\n", o.Meta.Frames, o.Meta.MaxFrames, o.Meta.Resets, o.Meta.Reason)
	fmt.Printf("seed: %d  elapsed: %s\n", o.Meta.Seed, o.Meta.Elapsed.Round(time.Millisecond))
}
