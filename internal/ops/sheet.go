package ops

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/hpungsan/lingo/internal/config"
	"github.com/hpungsan/lingo/internal/db"
	"github.com/hpungsan/lingo/internal/errors"
	"github.com/hpungsan/lingo/internal/sheet"
	"github.com/hpungsan/lingo/internal/vocab"
)

// ImportSheetInput contains parameters for the ImportSheet operation.
type ImportSheetInput struct {
	Path string // required, .xlsx or .csv

	// Columns overrides the default A-E layout
	Columns           *sheet.Columns
	SheetName         string
	StartRow          int // default: 2 (one header row)
	CategorySeparator string
	SectionRows       bool

	// Categories are added to every imported row
	Categories []string

	Mode ImportMode // default: skip
}

// ImportSheet adds word pairs from a spreadsheet. Existing pairs are skipped,
// updated in place (mode replace, history kept), or abort the import (mode error).
func ImportSheet(ctx context.Context, database *sql.DB, cfg *config.Config, input ImportSheetInput) (*ImportOutput, error) {
	if input.Mode == "" {
		input.Mode = ImportModeSkip
	}
	mode, err := parseImportMode(input.Mode)
	if err != nil {
		return nil, err
	}
	if err := ValidatePath(input.Path, PathCheckRead, cfg, SheetExtensions); err != nil {
		return nil, err
	}
	format, err := sheet.Format(input.Path)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	extra, err := validateCategories(input.Categories)
	if err != nil {
		return nil, err
	}

	opts := sheet.DefaultReadOptions()
	if input.Columns != nil {
		opts.Columns = *input.Columns
	}
	opts.SheetName = input.SheetName
	if input.StartRow > 0 {
		opts.StartRow = input.StartRow
	}
	if input.CategorySeparator != "" {
		opts.CategorySeparator = input.CategorySeparator
	}
	opts.SectionRows = input.SectionRows

	file, err := openForRead(input.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rows, rowErrs, err := sheet.Read(file, format, opts)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}

	out := &ImportOutput{Errors: []ImportError{}}
	for _, re := range rowErrs {
		out.Errors = append(out.Errors, ImportError{Line: re.Line, Code: "INVALID_ROW", Message: re.Message})
		out.Skipped++
	}
	if mode == ImportModeError && len(out.Errors) > 0 {
		return &ImportOutput{Errors: out.Errors}, nil
	}

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	source := "sheet"
	now := time.Now().Unix()

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewCancelled("import")
		}

		categories, err := validateCategories(append(append([]string{}, row.Categories...), extra...))
		if err != nil {
			out.Errors = append(out.Errors, ImportError{Line: row.Line, Word: row.TargetWord, Code: "INVALID_ROW", Message: err.Error()})
			out.Skipped++
			continue
		}

		e := &vocab.Entry{
			TargetWord:     row.TargetWord,
			NativeWord:     row.NativeWord,
			Categories:     categories,
			SampleSentence: row.SampleSentence,
			Notes:          row.Notes,
			Source:         &source,
			DateAdded:      now,
			UpdatedAt:      now,
		}

		existing, err := db.FindByPair(ctx, tx, e.TargetWord, e.NativeWord)
		if err != nil && !errors.Is(err, errors.ErrNotFound) {
			return nil, err
		}

		if existing != nil {
			switch mode {
			case ImportModeError:
				return &ImportOutput{Errors: []ImportError{{
					Line:    row.Line,
					ID:      existing.ID,
					Word:    row.TargetWord,
					Code:    "PAIR_COLLISION",
					Message: fmt.Sprintf("entry %q / %q already exists", e.TargetWord, e.NativeWord),
				}}}, nil
			case ImportModeSkip:
				out.Skipped++
			default:
				e.ID = existing.ID
				e.IsFavorite = existing.IsFavorite
				if err := db.UpdateEntry(ctx, tx, e); err != nil {
					return nil, err
				}
				out.Replaced++
			}
			continue
		}

		if e.ID, err = generateULID(); err != nil {
			return nil, errors.NewInternal(err)
		}
		if err := db.InsertEntry(ctx, tx, e); err != nil {
			return nil, err
		}
		out.Imported++
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// ExportSheetInput contains parameters for the ExportSheet operation.
type ExportSheetInput struct {
	Path          string // optional, default: ~/.lingo/exports/<category|all>-<timestamp>.xlsx
	Category      *string
	FavoritesOnly bool
}

// ExportSheet writes entries to an .xlsx or .csv file in the import layout.
func ExportSheet(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportSheetInput) (*ExportOutput, error) {
	now := time.Now()
	category := cleanOptionalString(input.Category)

	exportPath := input.Path
	if exportPath == "" {
		var err error
		if exportPath, err = defaultExportPath(category, "xlsx", now); err != nil {
			return nil, err
		}
	}
	if err := ValidatePath(exportPath, PathCheckWrite, cfg, SheetExtensions); err != nil {
		return nil, err
	}
	format, err := sheet.Format(exportPath)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}

	entries, err := exportEntries(ctx, database, category, input.FavoritesOnly)
	if err != nil {
		return nil, err
	}

	err = writeFileAtomic(exportPath, func(w io.Writer) error {
		if err := sheet.Write(w, format, entries); err != nil {
			return errors.NewInternal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ExportOutput{
		Path:       exportPath,
		Count:      len(entries),
		ExportedAt: now.Unix(),
	}, nil
}
