package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSchema(t *testing.T) {
	schema, err := NewSchema("projetos", []FieldSpec{
		{Name: "prioridade", Kind: KindCategory, Table: "priority"},
		{Name: "conclusao", Kind: KindPercentage, Cap: 100},
		{Name: "custo_previsto", Kind: KindCurrency},
	})
	require.NoError(t, err)

	spec, ok := schema.Field("conclusao")
	require.True(t, ok)
	assert.Equal(t, KindPercentage, spec.Kind)

	_, ok = schema.Field("missing")
	assert.False(t, ok)
	assert.Len(t, schema.Fields(), 3)
}

func TestNewSchemaReportsAllErrors(t *testing.T) {
	_, err := NewSchema("broken", []FieldSpec{
		{Name: "a", Kind: "money"},
		{Name: "b", Kind: KindCategory, Table: "colour"},
		{Name: "c", Kind: KindDate},
		{Name: "c", Kind: KindDate},
		{Name: "d", Kind: KindPercentage, Cap: -1},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownKind)
	assert.ErrorIs(t, err, ErrUnknownTable)
	assert.Contains(t, err.Error(), `"c" is declared more than once`)
	assert.Contains(t, err.Error(), "cap must not be negative")
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("datetime")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestResolveDispatch(t *testing.T) {
	tests := []struct {
		spec FieldSpec
		in   string
		want string
	}{
		{FieldSpec{Kind: KindDate}, "20/02/26", "2026-02-20"},
		{FieldSpec{Kind: KindCurrency}, "R$ 16.591,06", "16591.06"},
		{FieldSpec{Kind: KindPercentage, Cap: 50}, "75%", "50%"},
		{FieldSpec{Kind: KindDuration}, "3:30", "3.5"},
		{FieldSpec{Kind: KindCategory, Table: "priority"}, "Média", "media"},
		{FieldSpec{Kind: KindBoolean}, "sim", "s"},
		{FieldSpec{Kind: KindText, Lowercase: true}, "Obra A", "obra a"},
	}
	for _, tt := range tests {
		value, _ := Resolve(tt.spec, Raw(tt.in))
		assert.Equal(t, tt.want, value.String(), "%s %q", tt.spec.Kind, tt.in)
	}

	value, out := Resolve(FieldSpec{Kind: KindCategory, Table: "colour"}, Raw("red"))
	assert.True(t, value.IsEmpty())
	assert.Equal(t, OutcomeFailed, out.Kind)
}
