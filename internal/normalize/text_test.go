package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := [][2]string{
		{"  Média ", "media"},
		{"EM  Espera", "em espera"},
		{"Ação\tCrítica", "acao critica"},
		{"CONCLUSÃO", "conclusao"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt[1], NormalizeText(tt[0]), tt[0])
	}
}

func TestIsNullToken(t *testing.T) {
	for _, in := range []string{"", "  ", "nan", "NaN", "NULL", " None ", "n/a", "N/A"} {
		assert.True(t, IsNullToken(in), in)
		assert.Equal(t, "", CanonicalNull(in), in)
	}
	for _, in := range []string{"0", "na", "nada", "-"} {
		assert.False(t, IsNullToken(in), in)
		assert.Equal(t, in, CanonicalNull(in), in)
	}
}

func TestRawValueKind(t *testing.T) {
	assert.Equal(t, RawAbsent, Absent().Kind())
	assert.Equal(t, RawEmpty, Raw("   ").Kind())
	assert.Equal(t, RawNullToken, Raw("Null").Kind())
	assert.Equal(t, RawText, Raw("x").Kind())
	assert.True(t, Absent().IsNull())
	assert.False(t, Raw("0").IsNull())
}

func TestResolveText(t *testing.T) {
	value, out := ResolveText(Raw("  Centro   Norte "), true)
	assert.Equal(t, "centro norte", value.String())
	assert.Equal(t, OutcomeStandardized, out.Kind)

	value, out = ResolveText(Raw("Centro Norte"), false)
	assert.Equal(t, "Centro Norte", value.String())
	assert.Equal(t, OutcomeUnchanged, out.Kind)
	assert.Empty(t, out.Reason)
}

// Every resolver maps every null representation to Empty.
func TestNullUniversality(t *testing.T) {
	nulls := []RawValue{Absent(), Raw(""), Raw("   "), Raw("nan"), Raw("NaN"), Raw("NULL"), Raw("None"), Raw("n/a")}

	specs := []FieldSpec{
		{Name: "t", Kind: KindText},
		{Name: "d", Kind: KindDate},
		{Name: "c", Kind: KindCurrency},
		{Name: "p", Kind: KindPercentage},
		{Name: "h", Kind: KindDuration},
		{Name: "s", Kind: KindCategory, Table: "status"},
		{Name: "b", Kind: KindBoolean},
	}

	for _, spec := range specs {
		for _, raw := range nulls {
			value, out := Resolve(spec, raw)
			assert.True(t, value.IsEmpty(), "%s %q", spec.Kind, raw.Text)
			assert.Equal(t, "", value.String())
			assert.Equal(t, OutcomeEmpty, out.Kind, "%s %q", spec.Kind, raw.Text)
			assert.True(t, out.Kind.IsSuccess())
		}
	}
}
