package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/synmed/synviz/internal/server"
	"github.com/synmed/synviz/pkg/pipeline"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr      string
	locale    string
	title     string
	threshold float64
}

// serveCommand creates the serve command, a local preview server for the
// data section and its artifacts.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: "127.0.0.1:8080"}

	cmd := &cobra.Command{
		Use:   "serve [dataset]",
		Short: "Preview the data section in a browser",
		Long: `Serve the data section of a dataset over HTTP.

The page at / reveals each chart and counter as it is scrolled into view.
Individual items are served at /charts/{name}.{ext} and
/counters/{name}.{ext}; add ?mode=frame&t=600ms to see a single frame.
The dataset is re-read on every request.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), datasetArg(args), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.locale, "locale", "", "number locale: en, ml, hi, bn (default: dataset locale)")
	cmd.Flags().StringVar(&opts.title, "title", "", "page title")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "visible fraction that starts a reveal (0 = default)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, source string, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	base := pipeline.Options{
		Source:    source,
		Locale:    opts.locale,
		Title:     opts.title,
		Threshold: opts.threshold,
		Logger:    logger,
	}
	// Fail fast on a bad dataset instead of on the first request.
	check := base
	if err := check.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if _, err := runner.Load(ctx, check); err != nil {
		return err
	}

	printSuccess("Serving %s", sourceName(source))
	printDetail("%s", styleURL.Render("http://"+opts.addr+"/"))
	return server.New(runner, base, logger).ListenAndServe(ctx, opts.addr)
}
