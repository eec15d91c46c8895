package cli

import (
	"context"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/noah-isme/parking-fee/internal/facility"
	"github.com/noah-isme/parking-fee/internal/quote"
	"github.com/noah-isme/parking-fee/internal/tariff"
)

const (
	textFormat = "text"
	jsonFormat = "json"
)

type GlobalOptions struct {
	ConfigFile string
	Timezone   string
	Layout     string
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{
		ConfigFile: "patios_config.json",
		Timezone:   "America/Sao_Paulo",
		Layout:     tariff.DefaultLayout,
	}
}

func (o *GlobalOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.ConfigFile, "config", "c", o.ConfigFile, "Path to the facility configuration file")
	fs.StringVar(&o.Timezone, "timezone", o.Timezone, "IANA time zone used to read timestamps")
	fs.StringVar(&o.Layout, "layout", o.Layout, "Go time layout of the timestamps")
}

func (o *GlobalOptions) Complete(cmd *cobra.Command, args []string) error {
	return nil
}

func (o *GlobalOptions) Validate(args []string) error {
	if o.ConfigFile == "" {
		return fmt.Errorf("--config is required")
	}
	if _, err := time.LoadLocation(o.Timezone); err != nil {
		return fmt.Errorf("invalid --timezone %q: %w", o.Timezone, err)
	}
	return nil
}

// Registry loads the configuration file into a fresh registry.
func (o *GlobalOptions) Registry(ctx context.Context) (*facility.Registry, error) {
	reg := facility.NewRegistry(facility.FileSource{Path: o.ConfigFile})
	if _, err := reg.Reload(ctx); err != nil {
		return nil, err
	}
	return reg, nil
}

// Service builds a quote service over the configuration file.
func (o *GlobalOptions) Service(ctx context.Context, now func() time.Time) (*quote.Service, error) {
	reg, err := o.Registry(ctx)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return nil, err
	}
	return quote.NewService(quote.ServiceConfig{
		Facilities: reg,
		Location:   loc,
		Layout:     o.Layout,
		Now:        now,
		Logger:     zerolog.Nop(),
	})
}
