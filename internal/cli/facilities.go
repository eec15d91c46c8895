package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/noah-isme/parking-fee/internal/format"
	"github.com/noah-isme/parking-fee/internal/tariff"
)

type FacilitiesOptions struct {
	GlobalOptions

	Wide bool
}

func DefaultFacilitiesOptions() *FacilitiesOptions {
	return &FacilitiesOptions{GlobalOptions: DefaultGlobalOptions()}
}

func NewCmdFacilities() *cobra.Command {
	o := DefaultFacilitiesOptions()
	cmd := &cobra.Command{
		Use:   "facilities",
		Short: "List the facilities of a configuration file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

func (o *FacilitiesOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	fs.BoolVarP(&o.Wide, "wide", "w", o.Wide, "Show a summary of each facility's rules")
}

func (o *FacilitiesOptions) Run(ctx context.Context, out io.Writer) error {
	reg, err := o.Registry(ctx)
	if err != nil {
		return err
	}
	if !o.Wide {
		for _, name := range reg.Names() {
			if _, err := fmt.Fprintln(out, name); err != nil {
				return err
			}
		}
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTIERS\tINCREMENTAL\tDAILY")
	for _, name := range reg.Names() {
		rules, err := reg.Lookup(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", name, len(rules.Tiers), describeIncremental(rules), describeDaily(rules))
	}
	return tw.Flush()
}

func describeIncremental(rules tariff.Rules) string {
	inc := rules.Incremental
	if inc == nil {
		return "-"
	}
	return fmt.Sprintf("R$ %s / %gmin after %gmin", format.Money(inc.PricePerInterval), inc.IntervalMinutes, inc.AppliesAfterMinutes)
}

func describeDaily(rules tariff.Rules) string {
	daily := rules.Daily
	if daily == nil || daily.Rate == nil {
		return "-"
	}
	if daily.Override() {
		return fmt.Sprintf("override R$ %s after %gmin", format.Money(*daily.Rate), *daily.ActivationMinutes)
	}
	return fmt.Sprintf("cap R$ %s per %gmin", format.Money(*daily.Rate), daily.CappingIntervalMinutes)
}
