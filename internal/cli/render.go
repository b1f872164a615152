package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/synmed/synviz/pkg/errors"
	"github.com/synmed/synviz/pkg/pipeline"
	"github.com/synmed/synviz/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string   // output directory
	formats   []string // output formats: "svg", "html", "png", "pdf", "json"
	charts    []string // chart names; empty renders all
	counters  []string // counter names; empty renders all
	animated  bool     // browser-driven reveal (SVG/HTML)
	hidden    bool     // paint the state before the reveal
	frame     time.Duration
	threshold float64
	scale     float64
	locale    string
	title     string
	page      bool // also write page.html
	report    bool // also write report.pdf
	refresh   bool
}

// renderCommand creates the render command.
//
// Default settings:
//   - format: svg
//   - output: current directory
//   - state: settled (every slice and legend entry fully revealed)
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{output: "."}

	cmd := &cobra.Command{
		Use:   "render [dataset]",
		Short: "Render charts and counters to files",
		Long: `Render every chart and counter of a dataset, one file per item and format.

Without a dataset the built-in landing page data is used. By default each
item is painted in its settled state; --animated writes SVG/HTML that reveal
themselves in the browser once scrolled into view, --frame paints the state a
given time after the reveal.`,
		Example: `  synviz render
  synviz render landing.toml -f svg,png --frame 600ms
  synviz render landing.toml --animated --page -o site/`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), datasetArg(args), opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", opts.output, "output directory")
	f.StringSliceVarP(&opts.formats, "format", "f", nil, "output format(s): svg (default), html, png, pdf, json")
	f.StringSliceVar(&opts.charts, "chart", nil, "render only these charts")
	f.StringSliceVar(&opts.counters, "counter", nil, "render only these counters")
	f.BoolVar(&opts.animated, "animated", false, "reveal in the browser when scrolled into view")
	f.BoolVar(&opts.hidden, "hidden", false, "paint the state before the reveal")
	f.DurationVar(&opts.frame, "frame", 0, "paint the state this long after the reveal (0 = settled)")
	f.Float64Var(&opts.threshold, "threshold", 0, "visible fraction that starts an animated reveal (0 = default)")
	f.Float64Var(&opts.scale, "scale", 0, "SVG size multiplier / PNG pixel density")
	f.StringVar(&opts.locale, "locale", "", "number locale: en, ml, hi, bn (default: dataset locale)")
	f.StringVar(&opts.title, "title", "", "page and report title")
	f.BoolVar(&opts.page, "page", false, "also write page.html with every selected item")
	f.BoolVar(&opts.report, "report", false, "also write report.pdf with every selected item")
	f.BoolVar(&opts.refresh, "refresh", false, "ignore cached artifacts")
	cmd.MarkFlagsMutuallyExclusive("animated", "hidden")
	cmd.MarkFlagsMutuallyExclusive("animated", "frame")
	_ = cmd.RegisterFlagCompletionFunc("chart", completeNames(true))
	_ = cmd.RegisterFlagCompletionFunc("counter", completeNames(false))

	return cmd
}

// runRender executes the pipeline and writes every artifact to opts.output.
func (c *CLI) runRender(ctx context.Context, source string, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	formats, err := render.ParseFormats(opts.formats)
	if err != nil {
		return err
	}
	if err := errors.ValidateOutputPath(opts.output); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()
	prog := newProgress(logger)
	result, err := runner.Execute(ctx, pipeline.Options{
		Source:    source,
		Locale:    opts.locale,
		Refresh:   opts.refresh,
		Charts:    opts.charts,
		Counters:  opts.counters,
		Formats:   formats,
		Animated:  opts.animated,
		Hidden:    opts.hidden,
		Frame:     opts.frame,
		Threshold: opts.threshold,
		Scale:     opts.scale,
		Title:     opts.title,
		Page:      opts.page,
		Report:    opts.report,
		Logger:    logger,
	})
	spinner.Stop()
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		printWarning("%s", w)
	}

	paths, err := writeArtifacts(opts.output, result.Artifacts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %s", plural(len(paths), "file")))

	printSuccess("Rendered %s", sourceName(source))
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.Charts, result.Stats.Counters, len(paths),
		result.CacheInfo.ArtifactMisses == 0 && result.CacheInfo.ArtifactHits > 0)
	if !opts.animated {
		printNextStep("Preview the animation", commandLine("synviz serve", source))
	}
	return nil
}

// writeArtifacts writes each artifact under dir and returns the paths.
func writeArtifacts(dir string, artifacts []pipeline.Artifact) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
	}
	paths := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		p := filepath.Join(dir, a.Filename())
		if err := os.WriteFile(p, a.Data, 0o644); err != nil {
			return paths, errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", p)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func commandLine(cmd, source string) string {
	if source == "" {
		return cmd
	}
	return cmd + " " + source
}

func sourceName(source string) string {
	if source == "" {
		return "built-in dataset"
	}
	return source
}
