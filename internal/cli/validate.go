package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/synmed/synviz/pkg/errors"
	"github.com/synmed/synviz/pkg/geometry"
	"github.com/synmed/synviz/pkg/pipeline"
	"github.com/synmed/synviz/pkg/piechart"
)

// validateCommand creates the validate command. Data problems are reported
// as warnings; only --strict turns them into a failure.
func (c *CLI) validateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate [dataset]",
		Short: "Check a dataset for problems",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), datasetArg(args), strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail when there are warnings")

	return cmd
}

func runValidate(ctx context.Context, source string, strict bool) error {
	runner := pipeline.NewRunner(nil, nil, loggerFromContext(ctx))
	ds, err := runner.Load(ctx, pipeline.Options{Source: source})
	if err != nil {
		return err
	}

	printInfo("%s", sourceName(source))
	printKeyValue("locale", ds.Locale)
	for _, c := range ds.Counters {
		printKeyValue("counter", fmt.Sprintf("%s %s %d", c.Name, iconArrow, c.Target))
	}
	for _, c := range ds.Charts {
		total := geometry.Total(c.GeometrySegments())
		printKeyValue("chart", fmt.Sprintf("%s %s %d segments, %s", c.Name, iconArrow, len(c.Segments), piechart.FormatPercent(total)))
	}

	warnings := ds.Validate()
	for _, w := range warnings {
		printWarning("%s", w)
	}
	if len(warnings) == 0 {
		printSuccess("No problems found")
		return nil
	}
	if strict {
		return errors.New(errors.ErrCodeInvalidDataset, "%s", plural(len(warnings), "warning"))
	}
	printDetail("%s", plural(len(warnings), "warning"))
	return nil
}
