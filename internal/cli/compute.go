package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/noah-isme/parking-fee/internal/format"
	"github.com/noah-isme/parking-fee/internal/quote"
)

type ComputeOptions struct {
	GlobalOptions

	Facility string
	Entry    string
	Exit     string
	Output   string

	now func() time.Time
}

func DefaultComputeOptions() *ComputeOptions {
	return &ComputeOptions{
		GlobalOptions: DefaultGlobalOptions(),
		Output:        textFormat,
		now:           time.Now,
	}
}

func NewCmdCompute() *cobra.Command {
	return newCmdCompute(DefaultComputeOptions())
}

func newCmdCompute(o *ComputeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compute --facility NAME --entry TIMESTAMP [--exit TIMESTAMP]",
		Short: "Compute the fee of a stay.",
		Example: `  quote compute -c patios_config.json -f "Pátio Central" -e 2025-03-10T08:00 -x 2025-03-10T10:15
  quote compute -f Centro -e 2025-03-10T08:00 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *ComputeOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Facility, "facility", "f", o.Facility, "Facility name, as in the configuration file")
	fs.StringVarP(&o.Entry, "entry", "e", o.Entry, "Entry timestamp")
	fs.StringVarP(&o.Exit, "exit", "x", o.Exit, "Exit timestamp (default: now)")
	fs.StringVarP(&o.Output, "output", "o", o.Output, fmt.Sprintf("Output format. One of: (%s).", strings.Join([]string{textFormat, jsonFormat}, ", ")))
}

func (o *ComputeOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if o.Facility == "" || o.Entry == "" {
		return fmt.Errorf("--facility and --entry are required")
	}
	if o.Output != textFormat && o.Output != jsonFormat {
		return fmt.Errorf("output format must be one of %s or %s", textFormat, jsonFormat)
	}
	return nil
}

func (o *ComputeOptions) Run(ctx context.Context, out io.Writer) error {
	svc, err := o.Service(ctx, o.now)
	if err != nil {
		return err
	}
	q, err := svc.Quote(ctx, quote.Request{Facility: o.Facility, Entry: o.Entry, Exit: o.Exit})
	if err != nil {
		return fmt.Errorf("%s (%w)", quote.Message(err), err)
	}

	if o.Output == jsonFormat {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"facility":           q.Facility,
			"entry":              q.Entry.Format(o.Layout),
			"exit":               q.Exit.Format(o.Layout),
			"fee":                q.Fee.StringFixed(2),
			"duration_minutes":   q.DurationMinutes,
			"duration_formatted": format.Duration(q.DurationMinutes),
			"breakdown":          q.Breakdown,
		})
	}
	_, err = fmt.Fprintf(out, "Pátio: %s\nEntrada: %s\nSaída: %s\nTempo: %s\nValor: R$ %s\n",
		q.Facility,
		q.Entry.Format(o.Layout),
		q.Exit.Format(o.Layout),
		format.Duration(q.DurationMinutes),
		format.Money(q.Fee))
	return err
}
