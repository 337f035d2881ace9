package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hpungsan/lingo/internal/vocab"
)

// Header is the first row of every export, matching DefaultReadOptions' columns
// so an exported file can be imported again unchanged.
var Header = []string{"target_word", "native_word", "categories", "sample_sentence", "notes", "date_added", "success_rate"}

func record(e *vocab.Entry) []string {
	return []string{
		e.TargetWord,
		e.NativeWord,
		strings.Join(e.Categories, "; "),
		deref(e.SampleSentence),
		deref(e.Notes),
		time.Unix(e.DateAdded, 0).UTC().Format("2006-01-02"),
		fmt.Sprintf("%.0f%%", e.SuccessRate()*100),
	}
}

// Write encodes entries in the given format ("xlsx" or "csv").
func Write(w io.Writer, format string, entries []vocab.Entry) error {
	switch format {
	case "xlsx":
		return writeXLSX(w, entries)
	case "csv":
		return writeCSV(w, entries)
	default:
		return fmt.Errorf("unsupported sheet format %q", format)
	}
}

func writeXLSX(w io.Writer, entries []vocab.Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(DefaultSheet, "A1", &header); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(Header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(DefaultSheet, "A1", lastHeader, bold); err != nil {
		return err
	}

	for i := range entries {
		cellName, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := record(&entries[i])
		row := make([]interface{}, len(values))
		for j, v := range values {
			row[j] = v
		}
		if err := f.SetSheetRow(DefaultSheet, cellName, &row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(DefaultSheet, "A", "B", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(DefaultSheet, "C", "E", 36); err != nil {
		return err
	}

	return f.Write(w)
}

func writeCSV(w io.Writer, entries []vocab.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for i := range entries {
		if err := cw.Write(record(&entries[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
