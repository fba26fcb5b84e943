package converter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ginjaninja78/project-data-cleaner/internal/audit"
	"github.com/ginjaninja78/project-data-cleaner/internal/config"
	"github.com/ginjaninja78/project-data-cleaner/internal/ledger"
	"github.com/ginjaninja78/project-data-cleaner/internal/normalize"
	"github.com/ginjaninja78/project-data-cleaner/internal/types"
)

const projetosYAML = `
dataset_name: Projetos
file_matching_patterns:
  - "Projetos*.csv"
fields:
  - column: prioridade
    type: category
    table: priority
  - column: status
    type: category
    table: status
  - column: inicio
    type: date
  - column: custo_previsto
    type: currency
  - column: progresso
    type: percentage
`

const projetosCSV = "prioridade,status,inicio,custo_previsto,progresso,obs\n" +
	"Média,On Hold,20/02/26,\"R$ 16.591,06\",68,nan\n" +
	"BAIXA,Crítico,2025-13-05,\"1O0,00\",\"R$ 0,95\",ok\n" +
	"urgent,desconhecido,ontem,nan,150%\n"

const projetosClean = "prioridade,status,inicio,custo_previsto,progresso,obs\n" +
	"media,pausado,2026-02-20,16591.06,68%,\n" +
	"baixa,critico,2025-05-13,100.00,95%,ok\n" +
	"urgente,desconhecido,,,100%,\n"

type fixture struct {
	input   string
	dataset *config.DatasetConfig
	main    *config.MainConfig
}

func setup(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()

	configPath := filepath.Join(dir, "projetos.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(projetosYAML), 0o644))
	dataset, err := config.LoadDatasetConfig(configPath)
	require.NoError(t, err)

	input := filepath.Join(dir, "input", "Projetos_raw.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(input), 0o755))
	require.NoError(t, os.WriteFile(input, []byte(projetosCSV), 0o644))

	return fixture{
		input:   input,
		dataset: dataset,
		main: &config.MainConfig{
			OutputDir:        filepath.Join(dir, "output"),
			OutputNameFormat: "{stem}_clean.csv",
		},
	}
}

func TestRun(t *testing.T) {
	f := setup(t)
	core, logs := observer.New(zapcore.DebugLevel)

	result := New(f.input, f.dataset, f.main, zap.New(core), Options{RunID: "run-1"}).Run(context.Background())
	require.NoError(t, result.Error)
	require.True(t, result.Success)

	assert.Equal(t, filepath.Join(f.main.OutputDir, "Projetos_clean.csv"), result.OutputFile)
	out, err := os.ReadFile(result.OutputFile)
	require.NoError(t, err)
	assert.Equal(t, projetosClean, string(out))

	assert.Equal(t, 3, result.Stats.RowsProcessed)
	assert.Equal(t, 1, result.Stats.ShortRows)
	assert.Equal(t, 3, result.Stats.Corrected)
	assert.Equal(t, 3, result.Stats.Failed)
	assert.Equal(t, 1, result.Stats.NullResidue)
	assert.Equal(t, 0, result.Stats.ValidationErrors)

	assert.Equal(t, 3, logs.FilterMessage("Value corrected").Len())
	assert.Equal(t, 2, logs.FilterMessage("Value could not be resolved").Len())
	assert.Equal(t, 1, logs.FilterMessage("Cleared null token left in output").Len())
	assert.Equal(t, 0, logs.FilterLevelExact(zapcore.ErrorLevel).Len())

	for _, entry := range logs.FilterMessage("Value corrected").All() {
		ctx := entry.ContextMap()
		assert.Equal(t, "Projetos_raw.csv", ctx["file"])
		assert.Contains(t, ctx, "reason")
	}

	status, ok := result.Report.Field("status")
	require.True(t, ok)
	assert.Equal(t, 3, status.Total)
	assert.Equal(t, 1, status.Count(normalize.OutcomeFailed))
	assert.InDelta(t, 2.0/3.0, status.SuccessRate(), 1e-9)

	obs, ok := result.Report.Field("obs")
	require.True(t, ok)
	assert.Equal(t, 1, obs.Total)
}

func TestRunDryRun(t *testing.T) {
	f := setup(t)

	result := New(f.input, f.dataset, f.main, zap.NewNop(), Options{DryRun: true}).Run(context.Background())
	require.True(t, result.Success)
	assert.Empty(t, result.OutputFile)

	_, err := os.Stat(filepath.Join(f.main.OutputDir, "Projetos_clean.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunWritesAuditRows(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	sink, err := audit.Open(ctx, config.AuditConfig{Driver: "sqlite3", DSN: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	defer sink.Close()

	runID := uuid.NewString()
	result := New(f.input, f.dataset, f.main, zap.NewNop(), Options{RunID: runID, Sink: sink}).Run(ctx)
	require.True(t, result.Success)
	assert.Equal(t, 6, result.Stats.AuditRows)

	n, err := sink.Count(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestRunMissingFile(t *testing.T) {
	f := setup(t)
	require.NoError(t, os.Remove(f.input))

	result := New(f.input, f.dataset, f.main, zap.NewNop(), Options{}).Run(context.Background())
	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Error, os.ErrNotExist)
}

func TestRunCancelled(t *testing.T) {
	f := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := New(f.input, f.dataset, f.main, zap.NewNop(), Options{}).Run(ctx)
	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Error, context.Canceled)
}

func TestResolveRecord(t *testing.T) {
	schema, err := normalize.NewSchema("horas", []normalize.FieldSpec{
		{Name: "horas", Kind: normalize.KindDuration},
		{Name: "remoto", Kind: normalize.KindBoolean},
	})
	require.NoError(t, err)

	l := ledger.New()
	rec := types.Record{RowNumber: 7, Values: map[string]normalize.RawValue{
		"horas":  normalize.Raw("3:30"),
		"remoto": normalize.Raw("Sim"),
		"obs":    normalize.Raw(" livre "),
	}}

	clean := ResolveRecord(l, rec, schema, nil)
	assert.Equal(t, 7, clean.RowNumber)
	assert.Equal(t, "3.5", clean.Fields["horas"])
	assert.Equal(t, "s", clean.Fields["remoto"])
	assert.Equal(t, " livre ", clean.Fields["obs"])

	// columns without a FieldSpec are not recorded
	assert.Equal(t, 2, l.Len())
	_, ok := l.Lookup(7, "obs")
	assert.False(t, ok)

	// absent cells resolve like empty input
	clean = ResolveRecord(l, types.Record{RowNumber: 8}, schema, []string{"horas", "remoto"})
	assert.Equal(t, "", clean.Fields["horas"])
	o, ok := l.Lookup(8, "remoto")
	require.True(t, ok)
	assert.Equal(t, normalize.OutcomeEmpty, o.Kind)
}
