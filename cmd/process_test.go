package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ginjaninja78/project-data-cleaner/internal/config"
	"github.com/ginjaninja78/project-data-cleaner/internal/converter"
)

const horasYAML = `
dataset_name: Horas
file_matching_patterns:
  - "*Horas*.csv"
fields:
  - column: data
    type: date
  - column: horas
    type: duration
  - column: remoto
    type: boolean
`

func loadTestDatasets(t *testing.T) map[string]*config.DatasetConfig {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "horas.yaml"), []byte(horasYAML), 0o644))
	datasets, err := config.LoadDatasetConfigs(dir)
	require.NoError(t, err)
	return datasets
}

func TestSelectJobs(t *testing.T) {
	datasets := loadTestDatasets(t)
	files := []string{"in/Horas_raw.csv", "in/Custos_raw.csv"}

	jobs, err := selectJobs(files, datasets, "", false)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "horas", jobs[0].dataset.DatasetCode)
	assert.Nil(t, jobs[1].dataset)

	jobs, err = selectJobs(files, datasets, "horas", false)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "in/Horas_raw.csv", jobs[0].path)

	jobs, err = selectJobs([]string{"in/export.csv"}, datasets, "horas", true)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "horas", jobs[0].dataset.DatasetCode)

	_, err = selectJobs(files, datasets, "missing", false)
	assert.Error(t, err)
}

func TestProcessJobs(t *testing.T) {
	datasets := loadTestDatasets(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "Horas_raw.csv")
	require.NoError(t, os.WriteFile(good, []byte("data,horas,remoto\n20/02/26,\"3,6\",Sim\n"), 0o644))
	unmatched := filepath.Join(dir, "Outro.csv")
	require.NoError(t, os.WriteFile(unmatched, []byte("a\n1\n"), 0o644))

	jobs, err := selectJobs([]string{good, unmatched}, datasets, "", false)
	require.NoError(t, err)

	a := &app{
		cfg: &config.MainConfig{
			OutputDir:        filepath.Join(dir, "output"),
			OutputNameFormat: "{stem}_clean.csv",
			MaxConcurrency:   2,
		},
		datasets: datasets,
		logger:   zap.NewNop(),
	}

	results, err := processJobs(context.Background(), a, jobs, converter.Options{RunID: "run-1"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].Success)
	out, err := os.ReadFile(results[0].OutputFile)
	require.NoError(t, err)
	assert.Equal(t, "data,horas,remoto\n2026-02-20,3.6,s\n", string(out))

	assert.False(t, results[1].Success)
	assert.Error(t, results[1].Error)

	stop := false
	a.cfg.ContinueOnError = &stop
	_, err = processJobs(context.Background(), a, jobs, converter.Options{DryRun: true})
	assert.Error(t, err)
}

func TestPrintDatasets(t *testing.T) {
	datasets := loadTestDatasets(t)
	var buf bytes.Buffer

	printDatasets(&buf, &config.MainConfig{InputDir: "./input"}, datasets)
	out := buf.String()
	assert.Contains(t, out, "Dataset horas (Horas)")
	assert.Contains(t, out, "*Horas*.csv")
	assert.Contains(t, out, "duration")
	assert.Contains(t, out, "boolean")
}
