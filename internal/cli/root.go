package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// NewQuoteCommand assembles the quote CLI.
func NewQuoteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote [command] [flags]",
		Short: "quote prices parking stays from a facility configuration file.",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
			os.Exit(1)
		},
	}
	cmd.AddCommand(NewCmdCompute())
	cmd.AddCommand(NewCmdFacilities())
	cmd.AddCommand(NewCmdValidate())
	cmd.AddCommand(NewCmdImport())
	return cmd
}
