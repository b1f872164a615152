package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/synmed/synviz/pkg/counter"
	"github.com/synmed/synviz/pkg/errors"
	"github.com/synmed/synviz/pkg/pipeline"
	"github.com/synmed/synviz/pkg/schedule"
)

// framesOpts holds the command-line flags for the frames command.
type framesOpts struct {
	counter  string
	locale   string
	json     bool
	realtime bool
}

// timedFrame is a counter frame with the time it is shown.
type timedFrame struct {
	AtMS int64 `json:"at_ms"`
	counter.Frame
}

// framesCommand creates the frames command, which prints a counter's
// count-up one tick per line.
func (c *CLI) framesCommand() *cobra.Command {
	var opts framesOpts

	cmd := &cobra.Command{
		Use:   "frames [dataset]",
		Short: "Print a counter's count-up sequence",
		Example: `  synviz frames --counter contribution
  synviz frames landing.toml --counter members --locale hi --json
  synviz frames --realtime`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFrames(cmd.Context(), cmd.OutOrStdout(), datasetArg(args), opts)
		},
	}

	cmd.Flags().StringVar(&opts.counter, "counter", "", "counter name (default: the first counter)")
	cmd.Flags().StringVar(&opts.locale, "locale", "", "number locale: en, ml, hi, bn (default: dataset locale)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print frames as a JSON array")
	cmd.Flags().BoolVar(&opts.realtime, "realtime", false, "play the count-up against the wall clock, one line per tick")
	cmd.MarkFlagsMutuallyExclusive("json", "realtime")
	_ = cmd.RegisterFlagCompletionFunc("counter", completeNames(false))

	return cmd
}

func (c *CLI) runFrames(ctx context.Context, w io.Writer, source string, opts framesOpts) error {
	runner := pipeline.NewRunner(nil, nil, loggerFromContext(ctx))
	popts := pipeline.Options{Source: source, Locale: opts.locale}
	if opts.counter != "" {
		popts.Counters = []string{opts.counter}
	}
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	ds, err := runner.Load(ctx, popts)
	if err != nil {
		return err
	}
	if len(ds.Counters) == 0 {
		return errors.New(errors.ErrCodeCounterNotFound, "%s has no counters", sourceName(source))
	}
	dc := &ds.Counters[0]
	if opts.counter != "" {
		if dc, err = ds.Counter(opts.counter); err != nil {
			return err
		}
	}

	if opts.realtime {
		loop := schedule.NewLoop()
		return playCountUp(ctx, w, loop, dc.New(loop, ds.Formatter()))
	}

	clock := schedule.NewVirtual()
	frames := countUp(clock, dc.New(clock, ds.Formatter()))

	if opts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(frames)
	}
	for _, f := range frames {
		printFrame(w, f)
	}
	return nil
}

func printFrame(w io.Writer, f timedFrame) {
	fmt.Fprintf(w, "%3d  %6dms  %s\n", f.Step, f.AtMS, f.Text)
}

// playCountUp runs a on loop, printing each frame as its tick fires. It
// returns once the final frame is printed, or with ctx's error if ctx ends
// first.
func playCountUp(ctx context.Context, w io.Writer, loop *schedule.Loop, a *counter.Animator) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := false
	printFrame(w, timedFrame{Frame: a.Frame()})
	a.OnTick(func(f counter.Frame) {
		printFrame(w, timedFrame{AtMS: loop.Now().Milliseconds(), Frame: f})
		if f.Done {
			done = true
			cancel()
		}
	})
	loop.Post(a.Start)

	err := loop.Run(ctx)
	a.Close()
	if done {
		return nil
	}
	return err
}

// countUp runs a to completion on clock and records the initial frame and
// every tick.
func countUp(clock *schedule.Virtual, a *counter.Animator) []timedFrame {
	frames := []timedFrame{{Frame: a.Frame()}}
	a.OnTick(func(f counter.Frame) {
		frames = append(frames, timedFrame{AtMS: clock.Now().Milliseconds(), Frame: f})
	})
	a.Start()
	clock.Advance(a.End())
	a.Close()
	return frames
}
