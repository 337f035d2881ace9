package ops

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/hpungsan/lingo/internal/config"
	"github.com/hpungsan/lingo/internal/db"
	"github.com/hpungsan/lingo/internal/errors"
	"github.com/hpungsan/lingo/internal/vocab"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path          string  // optional, default: ~/.lingo/exports/<category|all>-<timestamp>.jsonl
	Category      *string // optional filter
	FavoritesOnly bool
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// ExportHeader represents the header line in a JSONL export file.
type ExportHeader struct {
	LingoExport   bool   `json:"_lingo_export"`
	SchemaVersion string `json:"schema_version"`
	ExportedAt    int64  `json:"exported_at"`
}

// Export writes entries with their full history to a JSONL file.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	now := time.Now()
	exportedAt := now.Unix()
	category := cleanOptionalString(input.Category)

	exportPath := input.Path
	if exportPath == "" {
		var err error
		if exportPath, err = defaultExportPath(category, "jsonl", now); err != nil {
			return nil, err
		}
	}

	// Default paths are validated too: the category is user input
	if err := ValidatePath(exportPath, PathCheckWrite, cfg, JSONLExtensions); err != nil {
		return nil, err
	}

	entries, err := exportEntries(ctx, database, category, input.FavoritesOnly)
	if err != nil {
		return nil, err
	}

	err = writeFileAtomic(exportPath, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		header := ExportHeader{
			LingoExport:   true,
			SchemaVersion: vocab.ExportSchemaVersion,
			ExportedAt:    exportedAt,
		}
		if err := enc.Encode(header); err != nil {
			return errors.NewInternal(err)
		}
		for i := range entries {
			if err := ctx.Err(); err != nil {
				return errors.NewCancelled("export")
			}
			if err := enc.Encode(vocab.EntryToExportRecord(&entries[i])); err != nil {
				return errors.NewInternal(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ExportOutput{
		Path:       exportPath,
		Count:      len(entries),
		ExportedAt: exportedAt,
	}, nil
}

// exportEntries loads entries oldest first, optionally filtered.
func exportEntries(ctx context.Context, database *sql.DB, category *string, favoritesOnly bool) ([]vocab.Entry, error) {
	entries, err := db.ListEntries(ctx, database)
	if err != nil {
		return nil, err
	}
	if category == nil && !favoritesOnly {
		return entries, nil
	}
	filters := vocab.Filters{Category: category, FavoritesOnly: favoritesOnly}
	return vocab.Query(entries, filters, vocab.SortDateAdded, vocab.Asc), nil
}

// defaultExportPath generates the default export path.
// Format: ~/.lingo/exports/<category>-<timestamp>.<ext> or all-<timestamp>.<ext>
func defaultExportPath(category *string, ext string, now time.Time) (string, error) {
	dir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}

	name := "all"
	if category != nil {
		name = SanitizeForFilename(vocab.Normalize(*category))
	}
	filename := fmt.Sprintf("%s-%s.%s", name, now.Format("2006-01-02T150405"), ext)
	return filepath.Join(dir, filename), nil
}
