// =============================================================================
// Project Data Cleaner - CSV Parser Module
// =============================================================================
//
// This module reads the raw project-management exports. It handles:
//   - Different delimiters (comma, semicolon, pipe, tab)
//   - Multi-line headers
//   - Custom data start rows
//   - UTF-8, ISO-8859-1 and Windows-1252 input
//   - A UTF-8 byte order mark before the first header
//
// RAW VALUES:
//   Cells are kept exactly as read, including surrounding whitespace, so the
//   ledger can report the original text. A row shorter than the header yields
//   normalize.Absent() for the missing columns; this is distinct from an
//   empty cell.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/project-data-cleaner/internal/config"
	"github.com/ginjaninja78/project-data-cleaner/internal/normalize"
	"github.com/ginjaninja78/project-data-cleaner/internal/types"
)

const utf8BOM = "\ufeff"

// =============================================================================
// CSV DATA STRUCTURE
// =============================================================================

// CSVData represents the parsed CSV file.
type CSVData struct {
	// Headers contains the column headers in file order.
	// For multi-line headers, these are the merged headers.
	Headers []string

	// Records contains the data rows.
	Records []types.Record

	// SourceFile is the path to the source CSV file.
	SourceFile string

	// ShortRows counts data rows with fewer cells than headers.
	ShortRows int
}

// RowCount returns the number of data rows.
func (d *CSVData) RowCount() int {
	return len(d.Records)
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns the parsed data.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: The CSV parsing settings from the dataset configuration.
//
// RETURNS:
//   - A pointer to the CSVData struct containing the parsed data.
//   - An error if the file cannot be opened, decoded or parsed.
func Parse(filePath string, settings config.CSVSettings) (*CSVData, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	data, err := ParseReader(file, settings)
	if err != nil {
		return nil, err
	}
	data.SourceFile = filePath
	return data, nil
}

// ParseReader parses CSV content from r.
func ParseReader(r io.Reader, settings config.CSVSettings) (*CSVData, error) {
	decoded, err := decodeReader(bufio.NewReader(r), settings.Encoding)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(decoded)
	configureReader(csvReader, settings)

	allRows, lines, err := readAll(csvReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(allRows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}
	if len(allRows[0]) > 0 {
		allRows[0][0] = strings.TrimPrefix(allRows[0][0], utf8BOM)
	}

	headers, err := extractHeaders(allRows, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to extract headers: %w", err)
	}

	records, short := extractRecords(allRows, lines, headers, settings)

	return &CSVData{
		Headers:   headers,
		Records:   records,
		ShortRows: short,
	}, nil
}

// decodeReader wraps r so that it yields UTF-8.
func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToUpper(encoding) {
	case "", "UTF-8", "UTF8":
		return r, nil
	case "ISO-8859-1", "LATIN1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "WINDOWS-1252", "CP1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

// readAll reads every row and the file line each row starts on. The csv
// reader skips blank lines, so row index and line number differ.
func readAll(reader *csv.Reader) ([][]string, []int, error) {
	var rows [][]string
	var lines []int
	for {
		row, err := reader.Read()
		if err == io.EOF {
			return rows, lines, nil
		}
		if err != nil {
			return nil, nil, err
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, row)
		lines = append(lines, line)
	}
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	reader.Comma = Delimiter(settings.Delimiter)

	// Exports are ragged: short rows are expected and handled as Absent.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
}

// Delimiter converts a configured delimiter to a rune.
func Delimiter(s string) rune {
	switch s {
	case "\\t", "tab", "TAB":
		return '\t'
	case "pipe", "PIPE":
		return '|'
	case "semicolon":
		return ';'
	case "":
		return ','
	default:
		return []rune(s)[0]
	}
}

// extractHeaders extracts and merges headers from the CSV.
//
// MULTI-LINE HEADER HANDLING:
//   Non-empty values of each column across the header rows are joined with
//   a space.
//
//   Row 1: "Custo", ""
//   Row 2: "previsto", "status"
//   Result: "Custo previsto", "status"
func extractHeaders(allRows [][]string, settings config.CSVSettings) ([]string, error) {
	headerRows := settings.HeaderRows
	if headerRows <= 0 {
		headerRows = 1
	}
	if len(allRows) < headerRows {
		return nil, fmt.Errorf("file has fewer rows than header_rows setting")
	}

	if headerRows == 1 {
		return cleanHeaders(allRows[0]), nil
	}

	maxCols := 0
	for i := 0; i < headerRows; i++ {
		if len(allRows[i]) > maxCols {
			maxCols = len(allRows[i])
		}
	}

	headers := make([]string, maxCols)
	for col := 0; col < maxCols; col++ {
		var parts []string
		for row := 0; row < headerRows; row++ {
			if col < len(allRows[row]) {
				if value := strings.TrimSpace(allRows[row][col]); value != "" {
					parts = append(parts, value)
				}
			}
		}
		headers[col] = strings.Join(parts, " ")
	}

	return cleanHeaders(headers), nil
}

// cleanHeaders trims headers and names empty ones after their position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}
	return cleaned
}

// extractRecords converts data rows to records. Blank lines are skipped.
func extractRecords(allRows [][]string, lines []int, headers []string, settings config.CSVSettings) ([]types.Record, int) {
	startIndex := settings.DataStartRow - 1
	if startIndex < settings.HeaderRows {
		startIndex = settings.HeaderRows
	}
	if startIndex < 1 {
		startIndex = 1
	}
	if startIndex >= len(allRows) {
		return []types.Record{}, 0
	}

	records := make([]types.Record, 0, len(allRows)-startIndex)
	short := 0

	for rowIndex := startIndex; rowIndex < len(allRows); rowIndex++ {
		row := allRows[rowIndex]
		if isRowEmpty(row) {
			continue
		}
		if len(row) < len(headers) {
			short++
		}

		values := make(map[string]normalize.RawValue, len(headers))
		for colIndex, header := range headers {
			if colIndex < len(row) {
				values[header] = normalize.Raw(row[colIndex])
			} else {
				values[header] = normalize.Absent()
			}
		}

		records = append(records, types.Record{
			RowNumber:  len(records) + 1,
			LineNumber: lines[rowIndex],
			Values:     values,
		})
	}

	return records, short
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
