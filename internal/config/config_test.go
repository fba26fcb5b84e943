package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/project-data-cleaner/internal/normalize"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMainConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "input_dir: ./in\n")

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "./in", cfg.InputDir)
	assert.Equal(t, "./output", cfg.OutputDir)
	assert.Equal(t, "./configs", cfg.ConfigsDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "{stem}_clean.csv", cfg.OutputNameFormat)
	assert.Equal(t, 4, cfg.MaxConcurrency)
	assert.True(t, cfg.ShouldContinueOnError())
	assert.False(t, cfg.Audit.Enabled())
}

func TestLoadMainConfigEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "log_level: info\nmax_concurrency: 2\ncontinue_on_error: true\n")

	t.Setenv("CLEANER_LOG_LEVEL", "debug")
	t.Setenv("CLEANER_CONTINUE_ON_ERROR", "false")
	t.Setenv("CLEANER_AUDIT_DRIVER", "sqlite3")
	t.Setenv("CLEANER_AUDIT_DSN", "file:audit.db")

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2, cfg.MaxConcurrency)
	assert.False(t, cfg.ShouldContinueOnError())
	assert.True(t, cfg.Audit.Enabled())
	assert.Equal(t, "file:audit.db", cfg.Audit.DSN)
	assert.Equal(t, "cleaning_audit", cfg.Audit.Table)
}

func TestLoadMainConfigDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "output_dir: ./out\n")
	writeFile(t, dir, ".env", "CLEANER_OUTPUT_DIR=./from-dotenv\n")
	t.Cleanup(func() { os.Unsetenv("CLEANER_OUTPUT_DIR") })

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "./from-dotenv", cfg.OutputDir)
}

func TestLoadMainConfigInvalid(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadMainConfig(writeFile(t, dir, "bad_level.yaml", "log_level: loud\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")

	_, err = LoadMainConfig(writeFile(t, dir, "bad_audit.yaml", "audit:\n  driver: oracle\n  dsn: x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "driver")

	_, err = LoadMainConfig(writeFile(t, dir, "no_dsn.yaml", "audit:\n  driver: postgres\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dsn")

	_, err = LoadMainConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

const projetosYAML = `dataset_name: Projetos
file_matching_patterns:
  - "Projetos*.csv"
csv_settings:
  delimiter: ","
fields:
  - column: prioridade
    type: category
    table: priority
  - column: status
    type: category
    table: status
  - column: inicio
    type: date
  - column: conclusao
    type: percentage
  - column: custo_previsto
    type: currency
`

func TestLoadDatasetConfigs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "projetos.yaml", projetosYAML)
	writeFile(t, dir, "horas.yml", `dataset_name: Horas
dataset_code: hours
file_matching_patterns: ["Horas*.csv"]
csv_settings:
  delimiter: ";"
  encoding: ISO-8859-1
fields:
  - column: horas
    type: duration
  - column: remoto
    type: boolean
`)

	datasets, err := LoadDatasetConfigs(dir)
	require.NoError(t, err)
	require.Len(t, datasets, 2)

	projetos := datasets["projetos"]
	require.NotNil(t, projetos)
	assert.Equal(t, 1, projetos.CSVSettings.HeaderRows)
	assert.Equal(t, 2, projetos.CSVSettings.DataStartRow)
	assert.Equal(t, "UTF-8", projetos.CSVSettings.Encoding)

	spec, ok := projetos.Schema().Field("conclusao")
	require.True(t, ok)
	assert.Equal(t, normalize.KindPercentage, spec.Kind)

	hours := datasets["hours"]
	require.NotNil(t, hours)
	assert.Equal(t, ";", hours.CSVSettings.Delimiter)

	assert.Same(t, projetos, FindDataset("/data/in/Projetos_raw.csv", datasets))
	assert.Same(t, hours, FindDataset("Horas_raw.csv", datasets))
	assert.Nil(t, FindDataset("Custos_raw.csv", datasets))
}

func TestLoadDatasetConfigsEmptyDir(t *testing.T) {
	_, err := LoadDatasetConfigs(t.TempDir())
	assert.ErrorIs(t, err, ErrNoDatasets)
}

func TestLoadDatasetConfigInvalid(t *testing.T) {
	dir := t.TempDir()

	tests := map[string]string{
		"unknown type": `dataset_name: X
file_matching_patterns: ["x*.csv"]
fields:
  - column: a
    type: money
`,
		"unknown table": `dataset_name: X
file_matching_patterns: ["x*.csv"]
fields:
  - column: a
    type: category
    table: colour
`,
		"missing table": `dataset_name: X
file_matching_patterns: ["x*.csv"]
fields:
  - column: a
    type: category
`,
		"no patterns": `dataset_name: X
fields:
  - column: a
    type: date
`,
		"bad encoding": `dataset_name: X
file_matching_patterns: ["x*.csv"]
csv_settings:
  encoding: EBCDIC
fields:
  - column: a
    type: date
`,
		"duplicate column": `dataset_name: X
file_matching_patterns: ["x*.csv"]
fields:
  - column: a
    type: date
  - column: a
    type: currency
`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadDatasetConfig(writeFile(t, dir, "x.yaml", content))
			assert.Error(t, err)
		})
	}
}
