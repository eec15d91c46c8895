package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/noah-isme/parking-fee/internal/facility"
)

type ImportOptions struct {
	GlobalOptions

	DatabaseURL string
	SkipMigrate bool
}

func DefaultImportOptions() *ImportOptions {
	return &ImportOptions{
		GlobalOptions: DefaultGlobalOptions(),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
	}
}

func NewCmdImport() *cobra.Command {
	o := DefaultImportOptions()
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy the facilities of a configuration file into Postgres.",
		Long:  "Validates the configuration file, applies the schema migrations and upserts every facility into the facilities table.",
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

func (o *ImportOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	fs.StringVar(&o.DatabaseURL, "database-url", o.DatabaseURL, "Postgres connection URL (default $DATABASE_URL)")
	fs.BoolVar(&o.SkipMigrate, "skip-migrate", o.SkipMigrate, "Do not apply schema migrations before importing")
}

func (o *ImportOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if o.DatabaseURL == "" {
		return fmt.Errorf("--database-url or DATABASE_URL is required")
	}
	return nil
}

func (o *ImportOptions) Run(ctx context.Context, out io.Writer) error {
	reg, err := o.Registry(ctx)
	if err != nil {
		return err
	}
	if !o.SkipMigrate {
		if err := facility.Migrate(o.DatabaseURL); err != nil {
			return err
		}
	}
	pool, err := pgxpool.New(ctx, o.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	dst := facility.PostgresSource{DB: pool}
	for _, name := range reg.Names() {
		rules, err := reg.Lookup(name)
		if err != nil {
			return err
		}
		if err := dst.Upsert(ctx, name, rules); err != nil {
			return err
		}
		fmt.Fprintf(out, "imported %s\n", name)
	}
	return nil
}
