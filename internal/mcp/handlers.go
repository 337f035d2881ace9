package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/lingo/internal/config"
	"github.com/hpungsan/lingo/internal/errors"
	"github.com/hpungsan/lingo/internal/exercise"
	"github.com/hpungsan/lingo/internal/llm"
	"github.com/hpungsan/lingo/internal/ops"
	"github.com/hpungsan/lingo/internal/sheet"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
	llm llm.Client
}

// NewHandlers creates a new Handlers instance. client may be nil.
func NewHandlers(db *sql.DB, cfg *config.Config, client llm.Client) *Handlers {
	return &Handlers{db: db, cfg: cfg, llm: client}
}

// Request types for each tool

// AddRequest represents the arguments for vocab_add.
type AddRequest struct {
	TargetWord     string   `json:"target_word"`
	NativeWord     string   `json:"native_word"`
	Categories     []string `json:"categories,omitempty"`
	SampleSentence *string  `json:"sample_sentence,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
	Source         *string  `json:"source,omitempty"`
	IsFavorite     bool     `json:"is_favorite,omitempty"`
	Mode           string   `json:"mode,omitempty"`
}

// IDRequest represents the arguments of tools addressing one record by id.
type IDRequest struct {
	ID string `json:"id"`
}

// UpdateRequest represents the arguments for vocab_update.
type UpdateRequest struct {
	ID             string    `json:"id"`
	TargetWord     *string   `json:"target_word,omitempty"`
	NativeWord     *string   `json:"native_word,omitempty"`
	Categories     *[]string `json:"categories,omitempty"`
	SampleSentence *string   `json:"sample_sentence,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
	IsFavorite     *bool     `json:"is_favorite,omitempty"`
}

// FavoriteRequest represents the arguments for vocab_favorite.
type FavoriteRequest struct {
	ID       string `json:"id"`
	Favorite *bool  `json:"favorite,omitempty"`
}

// RecordRequest represents the arguments for vocab_record.
type RecordRequest struct {
	ID               string `json:"id"`
	ExerciseKind     string `json:"exercise_kind"`
	Success          bool   `json:"success,omitempty"`
	TimeSpentSeconds int    `json:"time_spent_seconds,omitempty"`
	Date             int64  `json:"date,omitempty"`
}

// ListRequest represents the arguments for vocab_list.
type ListRequest struct {
	Category       *string `json:"category,omitempty"`
	FavoritesOnly  bool    `json:"favorites_only,omitempty"`
	HasHistoryOnly bool    `json:"has_history_only,omitempty"`
	Search         *string `json:"search,omitempty"`
	Sort           string  `json:"sort,omitempty"`
	Order          string  `json:"order,omitempty"`
	Limit          int     `json:"limit,omitempty"`
	Offset         int     `json:"offset,omitempty"`
}

// CategoriesRequest represents the arguments for vocab_categories.
type CategoriesRequest struct {
	Name *string `json:"name,omitempty"`
}

// ExportRequest represents the arguments for vocab_export and vocab_export_sheet.
type ExportRequest struct {
	Path          string  `json:"path,omitempty"`
	Category      *string `json:"category,omitempty"`
	FavoritesOnly bool    `json:"favorites_only,omitempty"`
}

// ImportRequest represents the arguments for vocab_import.
type ImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// ImportSheetRequest represents the arguments for vocab_import_sheet.
type ImportSheetRequest struct {
	Path              string         `json:"path"`
	Columns           *sheet.Columns `json:"columns,omitempty"`
	SheetName         string         `json:"sheet_name,omitempty"`
	StartRow          int            `json:"start_row,omitempty"`
	CategorySeparator string         `json:"category_separator,omitempty"`
	SectionRows       bool           `json:"section_rows,omitempty"`
	Categories        []string       `json:"categories,omitempty"`
	Mode              string         `json:"mode,omitempty"`
}

// GenerateRequest represents the arguments for exercise_generate.
type GenerateRequest struct {
	Kind          string   `json:"kind"`
	EntryIDs      []string `json:"entry_ids,omitempty"`
	Category      *string  `json:"category,omitempty"`
	FavoritesOnly bool     `json:"favorites_only,omitempty"`
	Search        *string  `json:"search,omitempty"`
	Sort          string   `json:"sort,omitempty"`
	Order         string   `json:"order,omitempty"`
	Size          int      `json:"size,omitempty"`
	Count         int      `json:"count,omitempty"`
	Difficulty    string   `json:"difficulty,omitempty"`
}

// SubmitRequest represents the arguments for exercise_submit.
type SubmitRequest struct {
	ExerciseID       string            `json:"exercise_id"`
	Answers          []exercise.Answer `json:"answers,omitempty"`
	TimeSpentSeconds int               `json:"time_spent_seconds,omitempty"`
	DryRun           bool              `json:"dry_run,omitempty"`
	Retry            bool              `json:"retry,omitempty"`
}

// RetryRequest represents the arguments for exercise_retry.
type RetryRequest struct {
	ExerciseID string            `json:"exercise_id"`
	Answers    []exercise.Answer `json:"answers,omitempty"`
}

// ExerciseListRequest represents the arguments for exercise_list.
type ExerciseListRequest struct {
	Limit int `json:"limit,omitempty"`
}

// call decodes the request into T and runs fn, converting failures into error results.
func call[T any, R any](req mcp.CallToolRequest, fn func(T) (R, error)) (*mcp.CallToolResult, error) {
	input, err := decode[T](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := fn(input)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Handler implementations

// HandleAdd handles the vocab_add tool call.
func (h *Handlers) HandleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return call(req, func(in AddRequest) (*ops.AddOutput, error) {
		return ops.Add(ctx, h.db, ops.AddInput{
			TargetWord:     in.TargetWord,
			NativeWord:     in.NativeWord,
			Categories:     in.Categories,
			SampleSentence: in.SampleSentence,
			Notes:          in.Notes,
			Source:         in.Source,
			IsFavorite:     in.IsFavorite,
			Mode:           ops.AddMode(in.Mode),
		})
	})
}

// HandleFetch handles the vocab_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return call(req, func(in IDRequest) (*ops.FetchOutput, error) {
		return ops.Fetch(ctx, h.db, ops.FetchInput{ID: in.ID})
	})
}

// HandleUpdate handles the vocab_update tool call.
func (h *Handlers) HandleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return call(req, func(in UpdateRequest) (*ops.UpdateOutput, error) {
		return ops.Update(ctx, h.db, ops.UpdateInput{
			ID:             in.ID,
			TargetWord:     in.TargetWord,
			NativeWord:     in.NativeWord,
			Categories:     in.Categories,
			SampleSentence: in.SampleSentence,
			Notes:          in.Notes,
			IsFavorite:     in.IsFavorite,
		})
	})
}

// HandleDelete handles the vocab_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return call(req, func(in IDRequest) (*ops.DeleteOutput, error) {
		return ops.Delete(ctx, h.db, ops.DeleteInput{ID: in.ID})
	})
}

// HandleFavorite handles the vocab_favorite tool call.
func (h *Handlers) HandleFavorite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return call(req, func(in FavoriteRequest) (*ops.FavoriteOutput, error) {
		return ops.Favorite(ctx, h.db, ops.FavoriteInput{ID: in.ID, Favorite: in.Favorite})
	})
}

// HandleRecord handles the vocab_record tool call.
func (h *Handlers) HandleRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return call(req, func(in RecordRequest) (*ops.RecordOutput, error) {
		return ops.Record(ctx, h.db, ops.RecordInput{
			ID:               in.ID,
			ExerciseKind:     in.ExerciseKind,
			Success:          in.Success,
			TimeSpentSeconds: in.TimeSpentSeconds,
			Date:             in.Date,
		})
	})
}

// HandleList handles the vocab_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return call(req, func(in ListRequest) (*ops.ListOutput, error) {
		return ops.List(ctx, h.db, h.cfg, ops.ListInput{
			Category:       in.Category,
			FavoritesOnly:  in.FavoritesOnly,
			HasHistoryOnly: in.HasHistoryOnly,
			Search:         in.Search,
			Sort:           in.Sort,
			Order:          in.Order,
			Limit:          in.Limit,
			Offset:         in.Offset,
		})
	})
}

// HandleCategories handles the vocab_categories tool call.
func (h *Handlers) HandleCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return call(req, func(in CategoriesRequest) (*ops.CategoriesOutput, error) {
		return ops.Categories(ctx, h.db, ops.CategoriesInput{Name: in.Name})
	})
}

// HandleStats handles the vocab_stats tool call.
func (h *Handlers) HandleStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return call(req, func(struct{}) (*ops.StatsOutput, error) {
		return ops.Stats(ctx, h.db)
	})
}

// HandleExport handles the vocab_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return call(req, func(in ExportRequest) (*ops.ExportOutput, error) {
		return ops.Export(ctx, h.db, h.cfg, ops.ExportInput{
			Path:          in.Path,
			Category:      in.Category,
			FavoritesOnly: in.FavoritesOnly,
		})
	})
}

// HandleImport handles the vocab_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return call(req, func(in ImportRequest) (*ops.ImportOutput, error) {
		return ops.Import(ctx, h.db, h.cfg, ops.ImportInput{Path: in.Path, Mode: ops.ImportMode(in.Mode)})
	})
}

// HandleImportSheet handles the vocab_import_sheet tool call.
func (h *Handlers) HandleImportSheet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return call(req, func(in ImportSheetRequest) (*ops.ImportOutput, error) {
		return ops.ImportSheet(ctx, h.db, h.cfg, ops.ImportSheetInput{
			Path:              in.Path,
			Columns:           in.Columns,
			SheetName:         in.SheetName,
			StartRow:          in.StartRow,
			CategorySeparator: in.CategorySeparator,
			SectionRows:       in.SectionRows,
			Categories:        in.Categories,
			Mode:              ops.ImportMode(in.Mode),
		})
	})
}

// HandleExportSheet handles the vocab_export_sheet tool call.
func (h *Handlers) HandleExportSheet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return call(req, func(in ExportRequest) (*ops.ExportOutput, error) {
		return ops.ExportSheet(ctx, h.db, h.cfg, ops.ExportSheetInput{
			Path:          in.Path,
			Category:      in.Category,
			FavoritesOnly: in.FavoritesOnly,
		})
	})
}

// HandleGenerate handles the exercise_generate tool call.
func (h *Handlers) HandleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return call(req, func(in GenerateRequest) (*ops.GenerateOutput, error) {
		return ops.Generate(ctx, h.db, h.cfg, h.llm, ops.GenerateInput{
			Kind:          in.Kind,
			EntryIDs:      in.EntryIDs,
			Category:      in.Category,
			FavoritesOnly: in.FavoritesOnly,
			Search:        in.Search,
			Sort:          in.Sort,
			Order:         in.Order,
			Size:          in.Size,
			Count:         in.Count,
			Difficulty:    in.Difficulty,
		})
	})
}

// HandleSubmit handles the exercise_submit tool call.
func (h *Handlers) HandleSubmit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return call(req, func(in SubmitRequest) (*ops.SubmitOutput, error) {
		return ops.Submit(ctx, h.db, h.cfg, ops.SubmitInput{
			ExerciseID:       in.ExerciseID,
			Answers:          in.Answers,
			TimeSpentSeconds: in.TimeSpentSeconds,
			DryRun:           in.DryRun,
			Retry:            in.Retry,
		})
	})
}

// HandleRetry handles the exercise_retry tool call.
func (h *Handlers) HandleRetry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return call(req, func(in RetryRequest) (*ops.RetryOutput, error) {
		return ops.RetryMistakes(ctx, h.db, h.cfg, ops.RetryInput{ExerciseID: in.ExerciseID, Answers: in.Answers})
	})
}

// HandleExerciseFetch handles the exercise_fetch tool call.
func (h *Handlers) HandleExerciseFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return call(req, func(in IDRequest) (*exercise.Exercise, error) {
		return ops.GetExercise(ctx, h.db, ops.GetExerciseInput{ID: in.ID})
	})
}

// HandleExerciseList handles the exercise_list tool call.
func (h *Handlers) HandleExerciseList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return call(req, func(in ExerciseListRequest) (*ops.ListExercisesOutput, error) {
		return ops.ListExercises(ctx, h.db, ops.ListExercisesInput{Limit: in.Limit})
	})
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed to prevent leaking file paths or SQL errors.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var lingoErr *errors.LingoError
	if stderrors.As(err, &lingoErr) {
		errorObj := map[string]any{
			"code":    lingoErr.Code,
			"message": lingoErr.Message,
			"status":  lingoErr.Status,
		}
		if lingoErr.Code != errors.ErrInternal && lingoErr.Details != nil {
			errorObj["details"] = lingoErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
