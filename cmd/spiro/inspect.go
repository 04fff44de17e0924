package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/spirograph/internal/analysis"
	"github.com/san-kum/spirograph/internal/export"
	"github.com/san-kum/spirograph/internal/storage"
)

const periodTolerance = 1e-3

func loadRun(ref string) (*storage.RunMetadata, []storage.TracePoint, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(ref)
	if err != nil {
		return nil, nil, err
	}
	trace, err := st.LoadTrace(meta)
	if err != nil {
		return nil, nil, err
	}
	return meta, trace, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tFRAMES\tRESETS\tREASON\tVIDEO")

	for _, run := range runs {
		preset := run.Preset
		if preset == "" {
			preset = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			shortID(run.ID),
			preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.Resets,
			run.Reason,
			run.Video,
		)
	}

	return w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func showRun(cmd *cobra.Command, args []string) error {
	if jsonOut {
		meta, trace, err := loadRun(args[0])
		if err != nil {
			return err
		}
		return storage.ExportJSON(os.Stdout, meta, trace)
	}

	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run:        %s\n", meta.ID)
	fmt.Printf("video:      %s\n", meta.Video)
	if meta.Preset != "" {
		fmt.Printf("preset:     %s\n", meta.Preset)
	}
	fmt.Printf("seed:       %d\n", meta.Seed)
	fmt.Printf("resolution: %dx%d @ %d fps\n", meta.Width, meta.Height, meta.FPS)
	fmt.Printf("origin:     %s  rounding: %s\n", meta.Origin, meta.Rounding)
	fmt.Printf("frames:     %d/%d  resets: %d  stopped: %s\n", meta.Frames, meta.MaxFrames, meta.Resets, meta.Reason)
	fmt.Printf("rendered:   %s in %s\n", meta.Timestamp.Format("2006-01-02 15:04:05"), meta.Elapsed)

	names := make([]string, 0, len(meta.Metrics))
	for name := range meta.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) > 0 {
		fmt.Println("\nmetrics:")
		for _, name := range names {
			fmt.Printf("  %-16s %.3f\n", name, meta.Metrics[name])
		}
	}

	fmt.Printf("\npatterns: %d\n", len(meta.Patterns))
	for i, chain := range meta.Patterns {
		fmt.Printf("  #%d reach %.1f\n", i, chain.Reach())
		for j, arm := range chain {
			fmt.Printf("     arm %d  radius %8.2f  speed %+.5f  angle %.3f\n", j, arm.Radius, arm.Speed, arm.Angle)
		}
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, trace, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if pattern >= 0 {
		trace = storage.Pattern(trace, pattern)
	}
	if len(trace) < 2 {
		return fmt.Errorf("no data")
	}

	caption := fmt.Sprintf("%s: x (red) and y (blue) per frame", shortID(meta.ID))
	if pattern >= 0 {
		caption = fmt.Sprintf("%s pattern %d: x (red) and y (blue)", shortID(meta.ID), pattern)
	}
	graph := asciigraph.PlotMany([][]float64{storage.Xs(trace), storage.Ys(trace)},
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue),
		asciigraph.Caption(caption),
	)
	fmt.Println(graph)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, trace, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(trace) < 4 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("video: %s\n\n", meta.Video)

	xs := storage.Xs(trace)
	ps := analysis.PowerSpectrum(xs)
	plotData := ps[1:]
	if len(plotData) > 4 {
		plotData = plotData[:len(plotData)/4]
	}
	if len(plotData) > 1 {
		fmt.Println(asciigraph.Plot(plotData,
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum (x)"),
		))
		fmt.Println()
	}

	if period, power := analysis.DominantPeriod(xs); period > 0 {
		fmt.Printf("dominant period: %.1f frames (%.2f s), power %.1f\n", period, period/float64(meta.FPS), power)
	} else {
		fmt.Println("dominant period: none")
	}

	for i, chain := range meta.Patterns {
		n := analysis.ChainPeriod(chain, meta.MaxFrames, periodTolerance)
		if n == 0 {
			fmt.Printf("pattern %d: does not repeat within %d frames\n", i, meta.MaxFrames)
			continue
		}
		fmt.Printf("pattern %d: repeats after %d frames (%.2f s)\n", i, n, float64(n)/float64(meta.FPS))
	}

	var drawn []storage.TracePoint
	for _, p := range trace {
		if p.Drawn {
			drawn = append(drawn, p)
		}
	}
	fmt.Println()
	fmt.Print(analysis.PatternToASCII(storage.Xs(drawn), storage.Ys(drawn), 60, 24))
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, trace, err := loadRun(args[0])
	if err != nil {
		return err
	}

	opts := export.DefaultSVGOptions()
	opts.Scale = svgScale
	opts.StrokeWidth = svgStroke

	path := svgOut
	if path == "" {
		path = meta.Base() + ".svg"
	}
	if err := os.WriteFile(path, []byte(export.TraceToSVG(meta, trace, opts)), 0644); err != nil {
		return err
	}
	fmt.Printf("exported %s\n", path)
	return nil
}
