// Package sheet reads word lists from spreadsheets (.xlsx, .csv) and writes
// entries back out in the same column layout.
package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the sheet name used for exports.
const DefaultSheet = "Sheet1"

// Columns maps fields to spreadsheet column letters. Empty letters skip the field.
type Columns struct {
	Target     string `json:"target"`
	Native     string `json:"native"`
	Categories string `json:"categories"`
	Sentence   string `json:"sentence"`
	Notes      string `json:"notes"`
}

// ReadOptions configures import.
type ReadOptions struct {
	Columns Columns

	// SheetName selects the xlsx sheet; empty means the first sheet
	SheetName string

	// StartRow is the first data row (1-based); rows above it are headers
	StartRow int

	// CategorySeparator splits the categories cell
	CategorySeparator string

	// SectionRows treats a row with only the target column filled as a section
	// heading whose text becomes a category of the rows below it.
	SectionRows bool
}

// DefaultReadOptions returns the default layout: A=target, B=native,
// C=categories, D=sample sentence, E=notes, one header row.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		Columns: Columns{
			Target:     "A",
			Native:     "B",
			Categories: "C",
			Sentence:   "D",
			Notes:      "E",
		},
		StartRow:          2,
		CategorySeparator: ";",
	}
}

// Row is one word pair read from a sheet.
type Row struct {
	Line           int      `json:"line"`
	TargetWord     string   `json:"target_word"`
	NativeWord     string   `json:"native_word"`
	Categories     []string `json:"categories"`
	SampleSentence *string  `json:"sample_sentence,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
}

// RowError reports a row that could not be read.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Format returns the sheet format implied by path's extension ("xlsx" or "csv").
func Format(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return "xlsx", nil
	case ".csv":
		return "csv", nil
	default:
		return "", fmt.Errorf("unsupported sheet format %q (want .xlsx or .csv)", filepath.Ext(path))
	}
}

// Read parses rows from r in the given format ("xlsx" or "csv").
func Read(r io.Reader, format string, opts ReadOptions) ([]Row, []RowError, error) {
	cols, err := resolveColumns(opts.Columns)
	if err != nil {
		return nil, nil, err
	}
	if opts.StartRow < 1 {
		opts.StartRow = 1
	}

	var raw [][]string
	switch format {
	case "xlsx":
		raw, err = readXLSX(r, opts.SheetName)
	case "csv":
		raw, err = readCSV(r)
	default:
		err = fmt.Errorf("unsupported sheet format %q", format)
	}
	if err != nil {
		return nil, nil, err
	}

	return parseRows(raw, cols, opts)
}

func readXLSX(r io.Reader, sheetName string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheetName = sheets[0]
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}
	return rows, nil
}

// columnIndexes holds 0-based indexes; -1 means the field is not mapped.
type columnIndexes struct {
	target, native, categories, sentence, notes int
}

func resolveColumns(c Columns) (columnIndexes, error) {
	var out columnIndexes
	var err error
	if out.target, err = columnIndex(c.Target, true); err != nil {
		return out, err
	}
	if out.native, err = columnIndex(c.Native, true); err != nil {
		return out, err
	}
	if out.categories, err = columnIndex(c.Categories, false); err != nil {
		return out, err
	}
	if out.sentence, err = columnIndex(c.Sentence, false); err != nil {
		return out, err
	}
	if out.notes, err = columnIndex(c.Notes, false); err != nil {
		return out, err
	}
	return out, nil
}

func columnIndex(letters string, required bool) (int, error) {
	letters = strings.TrimSpace(letters)
	if letters == "" {
		if required {
			return -1, fmt.Errorf("target and native columns are required")
		}
		return -1, nil
	}
	n, err := excelize.ColumnNameToNumber(strings.ToUpper(letters))
	if err != nil {
		return -1, fmt.Errorf("invalid column %q: %w", letters, err)
	}
	return n - 1, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parseRows(raw [][]string, cols columnIndexes, opts ReadOptions) ([]Row, []RowError, error) {
	var rows []Row
	var rowErrors []RowError
	section := ""

	for i, r := range raw {
		line := i + 1
		if line < opts.StartRow {
			continue
		}

		target := cell(r, cols.target)
		native := cell(r, cols.native)
		categories := cell(r, cols.categories)
		sentence := cell(r, cols.sentence)
		notes := cell(r, cols.notes)

		if target == "" && native == "" && categories == "" && sentence == "" && notes == "" {
			continue
		}
		if opts.SectionRows && target != "" && native == "" && categories == "" && sentence == "" && notes == "" {
			section = target
			continue
		}
		if target == "" || native == "" {
			rowErrors = append(rowErrors, RowError{Line: line, Message: "target and native words are required"})
			continue
		}

		row := Row{
			Line:           line,
			TargetWord:     target,
			NativeWord:     native,
			Categories:     splitCategories(categories, opts.CategorySeparator),
			SampleSentence: optional(sentence),
			Notes:          optional(notes),
		}
		if section != "" {
			row.Categories = append([]string{section}, row.Categories...)
		}
		rows = append(rows, row)
	}

	return rows, rowErrors, nil
}

func splitCategories(s, sep string) []string {
	if s == "" {
		return []string{}
	}
	if sep == "" {
		sep = ";"
	}
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
