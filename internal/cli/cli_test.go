package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const testConfig = `{
  "Centro": {
    "regras_minutos": [{"limite": 60, "valor": 10}, {"limite": 120, "valor": 18}],
    "incremental_pricing": {"applies_after_minutes": 120, "interval_minutes": 60, "price_per_interval": 5},
    "diaria": {"valor": 40, "ativa_apos_minutos": null}
  },
  "Aeroporto": {
    "regras_minutos": [{"limite": 60, "valor": 15}],
    "diaria": {"valor": 100, "ativa_apos_minutos": 1440}
  }
}`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "patios.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestComputeText(t *testing.T) {
	path := writeConfig(t, testConfig)
	out, err := execute(t, NewCmdCompute(), "-c", path, "--timezone", "UTC", "-f", "Centro", "-e", "2025-03-10T08:00", "-x", "2025-03-10T12:40")
	require.NoError(t, err)
	require.Contains(t, out, "Pátio: Centro")
	require.Contains(t, out, "Tempo: 4 hora(s) e 40 minuto(s)")
	require.Contains(t, out, "Valor: R$ 33,00")
}

func TestComputeJSONDefaultsExitToNow(t *testing.T) {
	path := writeConfig(t, testConfig)
	o := DefaultComputeOptions()
	o.now = func() time.Time { return time.Date(2025, 3, 11, 9, 0, 59, 0, time.UTC) }

	out, err := execute(t, newCmdCompute(o), "-c", path, "--timezone", "UTC", "-f", "Aeroporto", "-e", "2025-03-10T08:00", "-o", "json")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, "2025-03-11T09:00", got["exit"])
	require.Equal(t, "200.00", got["fee"])
	require.Equal(t, 1500.0, got["duration_minutes"])
	require.Equal(t, "1 dia(s), 1 hora(s) e 0 minuto(s)", got["duration_formatted"])
}

func TestComputeErrors(t *testing.T) {
	path := writeConfig(t, testConfig)

	_, err := execute(t, NewCmdCompute(), "-c", path, "-f", "Norte", "-e", "2025-03-10T08:00")
	require.ErrorContains(t, err, "Pátio selecionado inválido")

	_, err = execute(t, NewCmdCompute(), "-c", path, "-f", "Centro")
	require.ErrorContains(t, err, "--facility and --entry are required")

	_, err = execute(t, NewCmdCompute(), "-c", path, "-f", "Centro", "-e", "2025-03-10T08:00", "-o", "yaml")
	require.ErrorContains(t, err, "output format")

	_, err = execute(t, NewCmdCompute(), "-c", path, "--timezone", "Nowhere/City", "-f", "Centro", "-e", "2025-03-10T08:00")
	require.ErrorContains(t, err, "invalid --timezone")
}

func TestFacilities(t *testing.T) {
	path := writeConfig(t, testConfig)

	out, err := execute(t, NewCmdFacilities(), "-c", path)
	require.NoError(t, err)
	require.Equal(t, "Aeroporto\nCentro\n", out)

	out, err = execute(t, NewCmdFacilities(), "-c", path, "--wide")
	require.NoError(t, err)
	require.Contains(t, out, "NAME")
	require.Contains(t, out, "override R$ 100,00 after 1440min")
	require.Contains(t, out, "cap R$ 40,00 per 1440min")
	require.Contains(t, out, "R$ 5,00 / 60min after 120min")
}

func TestValidate(t *testing.T) {
	out, err := execute(t, NewCmdValidate(), "-c", writeConfig(t, testConfig))
	require.NoError(t, err)
	require.Contains(t, out, "2 facilities OK")

	out, err = execute(t, NewCmdValidate(), "-c", writeConfig(t, `{}`))
	require.NoError(t, err)
	require.Contains(t, out, "defines no facilities")

	_, err = execute(t, NewCmdValidate(), "-c", writeConfig(t, `{"P": {"regras_minutos": [{"limite": 60, "valor": -1}]}}`))
	require.ErrorContains(t, err, "invalid configuration")
}

func TestImportRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := execute(t, NewCmdImport(), "-c", writeConfig(t, testConfig))
	require.ErrorContains(t, err, "DATABASE_URL is required")
}
