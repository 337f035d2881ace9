package ops

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hpungsan/lingo/internal/config"
	"github.com/hpungsan/lingo/internal/db"
	"github.com/hpungsan/lingo/internal/errors"
	"github.com/hpungsan/lingo/internal/vocab"
)

// ImportMode controls collision behavior during import.
type ImportMode string

const (
	ImportModeError   ImportMode = "error"   // fail on collision (atomic)
	ImportModeReplace ImportMode = "replace" // overwrite on collision
	ImportModeSkip    ImportMode = "skip"    // keep the stored entry on collision
)

// maxImportLine bounds one JSONL record; entries with long histories exceed bufio's default.
const maxImportLine = 8 << 20

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string     // required
	Mode ImportMode // default: error
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Replaced int           `json:"replaced"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
}

// ImportError represents an error that occurred during import.
type ImportError struct {
	Line    int    `json:"line"`
	ID      string `json:"id,omitempty"`
	Word    string `json:"word,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// importRecord is a parsed record with its source line.
type importRecord struct {
	line  int
	entry *vocab.Entry
}

func parseImportMode(mode ImportMode) (ImportMode, error) {
	if mode == "" {
		return ImportModeError, nil
	}
	switch mode {
	case ImportModeError, ImportModeReplace, ImportModeSkip:
		return mode, nil
	default:
		return "", errors.NewInvalidRequest("mode must be one of: error, replace, skip")
	}
}

// Import loads entries from a JSONL export file.
func Import(ctx context.Context, database *sql.DB, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	mode, err := parseImportMode(input.Mode)
	if err != nil {
		return nil, err
	}
	if err := ValidatePath(input.Path, PathCheckRead, cfg, JSONLExtensions); err != nil {
		return nil, err
	}

	file, err := openForRead(input.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, parseErrors := parseExportFile(file)

	// mode:error imports nothing from a damaged file
	if mode == ImportModeError && len(parseErrors) > 0 {
		return &ImportOutput{Errors: parseErrors}, nil
	}

	out := &ImportOutput{Errors: parseErrors, Skipped: len(parseErrors)}
	if out.Errors == nil {
		out.Errors = []ImportError{}
	}

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewCancelled("import")
		}

		importErr, err := importOne(ctx, tx, mode, rec, out)
		if err != nil {
			return nil, err
		}
		if importErr == nil {
			continue
		}
		if mode == ImportModeError {
			// Abort on first collision; the deferred rollback discards earlier inserts
			return &ImportOutput{Errors: []ImportError{*importErr}}, nil
		}
		out.Errors = append(out.Errors, *importErr)
		out.Skipped++
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// importOne applies one record. It returns an ImportError for per-record
// problems and an error for failures that abort the whole import.
func importOne(ctx context.Context, tx *sql.Tx, mode ImportMode, rec importRecord, out *ImportOutput) (*ImportError, error) {
	e := rec.entry
	collision := func(code, msg string) *ImportError {
		return &ImportError{Line: rec.line, ID: e.ID, Word: e.TargetWord, Code: code, Message: msg}
	}

	byID, err := db.GetEntryByID(ctx, tx, e.ID)
	if err != nil && !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}
	byPair, err := db.FindByPair(ctx, tx, e.TargetWord, e.NativeWord)
	if err != nil && !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	if byID == nil && byPair == nil {
		if err := db.InsertEntry(ctx, tx, e); err != nil {
			if err == db.ErrUniqueConstraint {
				return collision("INSERT_FAILED", "duplicate word pair in import file"), nil
			}
			return nil, err
		}
		out.Imported++
		return nil, nil
	}

	switch mode {
	case ImportModeError:
		if byID != nil {
			return collision("ID_COLLISION", fmt.Sprintf("entry with id %q already exists", e.ID)), nil
		}
		return collision("PAIR_COLLISION",
			fmt.Sprintf("entry %q / %q already exists as %s", e.TargetWord, e.NativeWord, byPair.ID)), nil

	case ImportModeSkip:
		out.Skipped++
		return nil, nil

	default: // replace
		if byID != nil && byPair != nil && byID.ID != byPair.ID {
			return collision("AMBIGUOUS_COLLISION",
				fmt.Sprintf("id %q matches one entry but the word pair matches %s", e.ID, byPair.ID)), nil
		}
		if byID == nil {
			e.ID = byPair.ID
		}
		if err := db.ReplaceEntry(ctx, tx, e); err != nil {
			return nil, err
		}
		out.Replaced++
		return nil, nil
	}
}

// parseExportFile parses a JSONL export file into entries.
func parseExportFile(r io.Reader) ([]importRecord, []ImportError) {
	var records []importRecord
	var parseErrors []ImportError

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxImportLine)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var record vocab.ExportRecord
		if err := json.Unmarshal(line, &record); err != nil {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				Code:    "PARSE_ERROR",
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}

		if record.LingoExport {
			continue
		}

		if msg := validateRecord(&record); msg != "" {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				ID:      record.ID,
				Code:    "INVALID_RECORD",
				Message: msg,
			})
			continue
		}

		records = append(records, importRecord{line: lineNum, entry: record.ToEntry()})
	}

	if err := scanner.Err(); err != nil {
		parseErrors = append(parseErrors, ImportError{
			Line:    lineNum + 1,
			Code:    "READ_ERROR",
			Message: fmt.Sprintf("failed to read file: %v", err),
		})
	}

	return records, parseErrors
}

// validateRecord reports what is wrong with r, or "". History kinds are canonicalized in place.
func validateRecord(r *vocab.ExportRecord) string {
	switch {
	case strings.TrimSpace(r.ID) == "":
		return "missing id field"
	case strings.TrimSpace(r.TargetWord) == "":
		return "missing target_word field"
	case strings.TrimSpace(r.NativeWord) == "":
		return "missing native_word field"
	}
	for i, a := range r.LearningHistory {
		kind, err := vocab.ParseExerciseKind(string(a.ExerciseKind))
		if err != nil {
			return err.Error()
		}
		r.LearningHistory[i].ExerciseKind = kind
	}
	return ""
}
