package facility

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/noah-isme/parking-fee/internal/tariff"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB is the subset of pgxpool.Pool used by PostgresSource.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresSource reads facilities from the facilities table, one JSONB
// document per row in the same shape as the file format.
type PostgresSource struct {
	DB DB
}

type facilityRow struct {
	Name  string `db:"name"`
	Rules []byte `db:"rules"`
}

// Load implements Source.
func (s PostgresSource) Load(ctx context.Context) (map[string]tariff.Rules, error) {
	if s.DB == nil {
		return nil, errors.New("postgres source: db not configured")
	}
	rows, err := s.DB.Query(ctx, `SELECT name, rules FROM facilities ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query facilities: %w", err)
	}
	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[facilityRow])
	if err != nil {
		return nil, fmt.Errorf("scan facilities: %w", err)
	}
	out := make(map[string]tariff.Rules, len(records))
	for _, rec := range records {
		rules, err := ParseDocument(rec.Name, rec.Rules)
		if err != nil {
			return nil, err
		}
		out[rec.Name] = rules
	}
	return out, nil
}

// Describe implements Source.
func (PostgresSource) Describe() string {
	return "postgres:facilities"
}

// Upsert stores rules under name, replacing any previous document.
func (s PostgresSource) Upsert(ctx context.Context, name string, rules tariff.Rules) error {
	if s.DB == nil {
		return errors.New("postgres source: db not configured")
	}
	payload, err := json.Marshal(DocumentFromRules(rules))
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	_, err = s.DB.Exec(ctx, `
		INSERT INTO facilities (name, rules, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET rules = EXCLUDED.rules, updated_at = now()`,
		name, payload)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", name, err)
	}
	return nil
}

// Migrate applies the embedded schema migrations to databaseURL.
func Migrate(databaseURL string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(databaseURL))
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer func() { _, _ = m.Close() }()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// migrateURL rewrites a postgres URL to the scheme registered by the pgx/v5 migrate driver.
func migrateURL(databaseURL string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(databaseURL, prefix) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, prefix)
		}
	}
	return databaseURL
}
