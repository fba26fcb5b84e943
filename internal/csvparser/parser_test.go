package csvparser

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/ginjaninja78/project-data-cleaner/internal/config"
	"github.com/ginjaninja78/project-data-cleaner/internal/normalize"
)

func defaultSettings() config.CSVSettings {
	return config.CSVSettings{Delimiter: ",", HeaderRows: 1, DataStartRow: 2, Encoding: "UTF-8"}
}

func TestParseReaderRawValues(t *testing.T) {
	input := "\ufeffprioridade,status,custo\n" +
		"Média, Em Espera ,\"R$ 16.591,06\"\n" +
		"\n" +
		"alta,nan\n"

	data, err := ParseReader(strings.NewReader(input), defaultSettings())
	require.NoError(t, err)

	assert.Equal(t, []string{"prioridade", "status", "custo"}, data.Headers)
	require.Equal(t, 2, data.RowCount())
	assert.Equal(t, 1, data.ShortRows)

	first := data.Records[0]
	assert.Equal(t, 1, first.RowNumber)
	assert.Equal(t, 2, first.LineNumber)
	assert.Equal(t, normalize.Raw(" Em Espera "), first.Value("status"))
	assert.Equal(t, normalize.Raw("R$ 16.591,06"), first.Value("custo"))

	second := data.Records[1]
	assert.Equal(t, 2, second.RowNumber)
	assert.Equal(t, 4, second.LineNumber)
	assert.Equal(t, normalize.RawNullToken, second.Value("status").Kind())
	assert.Equal(t, normalize.RawAbsent, second.Value("custo").Kind())
	assert.Equal(t, normalize.RawAbsent, second.Value("unknown").Kind())
}

func TestParseReaderLatin1(t *testing.T) {
	encoded, err := charmap.ISO8859_1.NewEncoder().String("status;prioridade\nCrítico;Média\n")
	require.NoError(t, err)

	settings := defaultSettings()
	settings.Delimiter = ";"
	settings.Encoding = "ISO-8859-1"

	data, err := ParseReader(bytes.NewReader([]byte(encoded)), settings)
	require.NoError(t, err)
	require.Equal(t, 1, data.RowCount())
	assert.Equal(t, "Crítico", data.Records[0].Value("status").Text)
	assert.Equal(t, "Média", data.Records[0].Value("prioridade").Text)
}

func TestParseReaderMultiLineHeaders(t *testing.T) {
	input := "Custo,,\nprevisto,status,\n1,2,3\n"
	settings := defaultSettings()
	settings.HeaderRows = 2
	settings.DataStartRow = 3

	data, err := ParseReader(strings.NewReader(input), settings)
	require.NoError(t, err)
	assert.Equal(t, []string{"Custo previsto", "status", "Column_3"}, data.Headers)
	require.Equal(t, 1, data.RowCount())
	assert.Equal(t, "3", data.Records[0].Value("Column_3").Text)
}

func TestParseErrors(t *testing.T) {
	_, err := ParseReader(strings.NewReader(""), defaultSettings())
	assert.Error(t, err)

	settings := defaultSettings()
	settings.Encoding = "EBCDIC"
	_, err = ParseReader(strings.NewReader("a\n1\n"), settings)
	assert.Error(t, err)

	_, err = Parse(filepath.Join(t.TempDir(), "missing.csv"), defaultSettings())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Horas_raw.csv")
	require.NoError(t, os.WriteFile(path, []byte("data,horas\n20/02/26,3:30\n"), 0o644))

	data, err := Parse(path, defaultSettings())
	require.NoError(t, err)
	assert.Equal(t, path, data.SourceFile)
	assert.Equal(t, "3:30", data.Records[0].Value("horas").Text)
}

func TestDelimiter(t *testing.T) {
	assert.Equal(t, '\t', Delimiter("\\t"))
	assert.Equal(t, '\t', Delimiter("\t"))
	assert.Equal(t, ';', Delimiter("semicolon"))
	assert.Equal(t, '|', Delimiter("pipe"))
	assert.Equal(t, ',', Delimiter(""))
}
