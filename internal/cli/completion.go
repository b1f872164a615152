package cli

import (
	"github.com/spf13/cobra"

	"github.com/synmed/synviz/pkg/dataset"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for synviz.

  $ source <(synviz completion bash)
  $ synviz completion zsh > "${fpath[1]}/_synviz"
  $ synviz completion fish > ~/.config/fish/completions/synviz.fish
  PS> synviz completion powershell | Out-String | Invoke-Expression

Chart and counter names complete from the dataset named on the command line.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// completeNames completes chart (or counter) names from the dataset given
// as the first positional argument, or from the built-in dataset.
func completeNames(charts bool) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		ds := dataset.Default()
		if len(args) > 0 {
			loaded, err := dataset.Load(args[0])
			if err != nil {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			ds = loaded
		}
		var names []string
		if charts {
			for _, c := range ds.Charts {
				names = append(names, c.Name+"\t"+c.Title)
			}
		} else {
			for _, c := range ds.Counters {
				names = append(names, c.Name+"\t"+c.Label)
			}
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}
