package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// newSetupCommand emits a shell-completion script and exits (spec §6:
// "setup SHELL: emit shell-completion script and exit"), delegating to
// Cobra's built-in generators rather than hand-rolling per-shell completion
// logic.
func newSetupCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "setup SHELL",
		Short:     "Print a shell completion script",
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(c *cobra.Command, args []string) error {
			root := c.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletion(os.Stdout)
			case "zsh":
				return root.GenZshCompletion(os.Stdout)
			case "fish":
				return root.GenFishCompletion(os.Stdout, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unsupported shell %q", args[0])
			}
		},
	}
}
