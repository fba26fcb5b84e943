package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCurrency(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		kind OutcomeKind
	}{
		{"brazilian with symbol", "R$ 16.591,06", "16591.06", OutcomeStandardized},
		{"brazilian without symbol", "24.811,04", "24811.04", OutcomeStandardized},
		{"us thousands", "25,000.00", "25000.00", OutcomeStandardized},
		{"us simple with symbol", "R$ 5000.00", "5000.00", OutcomeStandardized},
		{"negative brazilian", "R$ -5.000,00", "-5000.00", OutcomeStandardized},
		{"accounting negative", "(1.234,56)", "-1234.56", OutcomeStandardized},
		{"typo letter O", "R$ 25.000,0O", "25000.00", OutcomeCorrected},
		{"typo letter l", "1l.500,00", "11500.00", OutcomeCorrected},
		{"annotation", "R$ 1.500,00 (estim,)", "1500.00", OutcomeStandardized},
		{"non breaking space", "R$\u00a016.591,06", "16591.06", OutcomeStandardized},
		{"brazilian simple", "68,91", "68.91", OutcomeStandardized},
		{"single dot thousands", "1.234", "1234.00", OutcomeStandardized},
		{"repeated thousands", "1.234.567", "1234567.00", OutcomeStandardized},
		{"single dot long group", "1.2345", "12345.00", OutcomeStandardized},
		{"single comma long group", "12,3456", "123456.00", OutcomeStandardized},
		{"zero integer part is decimal", "0.956", "0.96", OutcomeStandardized},
		{"rounds half away from zero", "10,125.455", "10125.46", OutcomeStandardized},
		{"already canonical", "16591.06", "16591.06", OutcomeUnchanged},
		{"surrounding whitespace", "  16591.06 ", "16591.06", OutcomeUnchanged},
		{"letters only", "abc", "", OutcomeFailed},
		{"symbol only", "R$", "", OutcomeFailed},
		{"bad grouping", "12.34.5", "", OutcomeFailed},
		{"two decimal commas", "1.234,5,6", "", OutcomeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, out := ResolveCurrency(Raw(tt.in))
			assert.Equal(t, tt.want, value.String())
			assert.Equal(t, tt.kind, out.Kind, "reason: %s", out.Reason)
			assert.Equal(t, tt.in, out.Original)
			if tt.kind == OutcomeFailed {
				assert.True(t, value.IsEmpty())
				assert.NotEmpty(t, out.Reason)
			}
		})
	}
}

func TestResolveCurrencyFloat(t *testing.T) {
	value, _ := ResolveCurrency(Raw("R$ 16.591,06"))
	f, ok := value.Float()
	require.True(t, ok)
	assert.InDelta(t, 16591.06, f, 1e-9)

	value, _ = ResolveCurrency(Raw("-0,00"))
	assert.Equal(t, "0.00", value.String())
}

func TestResolveCurrencyIdempotent(t *testing.T) {
	inputs := []string{"R$ 16.591,06", "25,000.00", "R$ -5.000,00", "R$ 25.000,0O", "1.234", "(10,50)", "1.2345", "0,956"}
	for _, in := range inputs {
		first, _ := ResolveCurrency(Raw(in))
		second, out := ResolveCurrency(Raw(first.String()))
		assert.Equal(t, first.String(), second.String(), in)
		assert.Equal(t, OutcomeUnchanged, out.Kind, in)
	}
}

func TestParseLocaleNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"16.591,06", "16591.06"},
		{"25,000.00", "25000"},
		{"68,91", "68.91"},
		{"1.5", "1.5"},
		{",5", "0.5"},
		{"100,", "100"},
		{"-1.234", "-1234"},
		{"1.2345", "12345"},
		{"0,956", "0.956"},
		{",9567", "0.9567"},
		{"00.125", "0.125"},
		{"+3", "3"},
	}
	for _, tt := range tests {
		d, err := parseLocaleNumber(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, d.String(), tt.in)
	}

	for _, bad := range []string{"", "-", "..", "1a", "1.23.4"} {
		_, err := parseLocaleNumber(bad)
		assert.ErrorIs(t, err, errNotNumeric, bad)
	}
}

func TestParseFraction(t *testing.T) {
	d, ok := parseFraction("0,955")
	require.True(t, ok)
	assert.Equal(t, "0.955", d.String())

	d, ok = parseFraction("1.5")
	require.True(t, ok)
	assert.Equal(t, "1.5", d.String())

	for _, bad := range []string{"95", "1.234,5", "0,9,5", "a,5"} {
		_, ok := parseFraction(bad)
		assert.False(t, ok, bad)
	}
}

func TestFixTypos(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		changed bool
	}{
		{"25.000,0O", "25.000,00", true},
		{"I23", "123", true},
		{"1O0", "100", true},
		{"l00", "100", true},
		{"500", "500", false},
		{"lol", "lol", false},
		{"12abc", "12abc", false},
	}
	for _, tt := range tests {
		got, changed := fixTypos(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.changed, changed, tt.in)
	}
}
