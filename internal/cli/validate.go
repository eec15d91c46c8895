package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func NewCmdValidate() *cobra.Command {
	o := DefaultGlobalOptions()
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a facility configuration file without starting the server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(args); err != nil {
				return err
			}
			return runValidate(cmd.Context(), &o, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func runValidate(ctx context.Context, o *GlobalOptions, out io.Writer) error {
	reg, err := o.Registry(ctx)
	if err != nil {
		return err
	}
	if reg.Len() == 0 {
		_, err = fmt.Fprintf(out, "%s: valid, but defines no facilities\n", o.ConfigFile)
		return err
	}
	_, err = fmt.Fprintf(out, "%s: %d facilities OK\n", o.ConfigFile, reg.Len())
	return err
}
