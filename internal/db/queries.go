package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/hpungsan/lingo/internal/errors"
	"github.com/hpungsan/lingo/internal/exercise"
	"github.com/hpungsan/lingo/internal/vocab"
)

// ErrUniqueConstraint is returned when an insert or update violates a UNIQUE constraint.
var ErrUniqueConstraint = &errors.LingoError{
	Code:    "UNIQUE_CONSTRAINT",
	Status:  409,
	Message: "unique constraint violation",
}

const entryColumns = `
	id, target_word, native_word, categories_json, sample_sentence,
	notes, source, is_favorite, date_added, updated_at`

// InsertEntry stores a new entry together with any learning history it carries.
// Run it inside a transaction when the history must land atomically.
func InsertEntry(ctx context.Context, q Querier, e *vocab.Entry) error {
	categories, err := categoriesJSON(e.Categories)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		INSERT INTO entries (
			id, target_word, target_norm, native_word, native_norm,
			categories_json, sample_sentence, notes, source,
			is_favorite, date_added, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = q.ExecContext(ctx, query,
		e.ID, e.TargetWord, vocab.Normalize(e.TargetWord), e.NativeWord, vocab.Normalize(e.NativeWord),
		categories, toNullString(e.SampleSentence), toNullString(e.Notes), toNullString(e.Source),
		e.IsFavorite, e.DateAdded, e.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}

	for _, a := range e.LearningHistory {
		if err := insertAttempt(ctx, q, e.ID, a); err != nil {
			return err
		}
	}
	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetEntryByID retrieves an entry and its history by ULID.
func GetEntryByID(ctx context.Context, q Querier, id string) (*vocab.Entry, error) {
	row := q.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("entry", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if e.LearningHistory, err = listAttempts(ctx, q, e.ID); err != nil {
		return nil, err
	}
	return e, nil
}

// FindByPair retrieves the entry whose normalized word pair equals the given words.
func FindByPair(ctx context.Context, q Querier, targetWord, nativeWord string) (*vocab.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE target_norm = ? AND native_norm = ?`
	row := q.QueryRowContext(ctx, query, vocab.Normalize(targetWord), vocab.Normalize(nativeWord))
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("entry", targetWord+" / "+nativeWord)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if e.LearningHistory, err = listAttempts(ctx, q, e.ID); err != nil {
		return nil, err
	}
	return e, nil
}

// UpdateEntry updates the editable fields of an existing entry and sets updated_at to now.
// Does NOT change: id, date_added, learning history
func UpdateEntry(ctx context.Context, q Querier, e *vocab.Entry) error {
	categories, err := categoriesJSON(e.Categories)
	if err != nil {
		return errors.NewInternal(err)
	}
	now := time.Now().Unix()

	query := `
		UPDATE entries
		SET target_word = ?, target_norm = ?, native_word = ?, native_norm = ?,
			categories_json = ?, sample_sentence = ?, notes = ?, source = ?,
			is_favorite = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := q.ExecContext(ctx, query,
		e.TargetWord, vocab.Normalize(e.TargetWord), e.NativeWord, vocab.Normalize(e.NativeWord),
		categories, toNullString(e.SampleSentence), toNullString(e.Notes), toNullString(e.Source),
		e.IsFavorite, now, e.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	if err := expectOneRow(result, e.ID); err != nil {
		return err
	}

	e.UpdatedAt = now
	return nil
}

// ReplaceEntry overwrites the stored fields of an entry, keeping its id.
// History is append-only: attempts in e that are not already stored are
// appended, stored attempts are kept. Run it inside a transaction.
func ReplaceEntry(ctx context.Context, q Querier, e *vocab.Entry) error {
	categories, err := categoriesJSON(e.Categories)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		UPDATE entries
		SET target_word = ?, target_norm = ?, native_word = ?, native_norm = ?,
			categories_json = ?, sample_sentence = ?, notes = ?, source = ?,
			is_favorite = ?, date_added = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := q.ExecContext(ctx, query,
		e.TargetWord, vocab.Normalize(e.TargetWord), e.NativeWord, vocab.Normalize(e.NativeWord),
		categories, toNullString(e.SampleSentence), toNullString(e.Notes), toNullString(e.Source),
		e.IsFavorite, e.DateAdded, e.UpdatedAt, e.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	if err := expectOneRow(result, e.ID); err != nil {
		return err
	}

	stored, err := listAttempts(ctx, q, e.ID)
	if err != nil {
		return err
	}
	seen := make(map[vocab.Attempt]int, len(stored))
	for _, a := range stored {
		seen[a]++
	}
	for _, a := range e.LearningHistory {
		if seen[a] > 0 {
			seen[a]--
			continue
		}
		if err := insertAttempt(ctx, q, e.ID, a); err != nil {
			return err
		}
	}
	return nil
}

// SetFavorite sets the favorite flag and returns the new updated_at.
func SetFavorite(ctx context.Context, q Querier, id string, favorite bool) (int64, error) {
	now := time.Now().Unix()
	result, err := q.ExecContext(ctx,
		`UPDATE entries SET is_favorite = ?, updated_at = ? WHERE id = ?`,
		favorite, now, id,
	)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	if err := expectOneRow(result, id); err != nil {
		return 0, err
	}
	return now, nil
}

// DeleteEntry removes an entry; its attempts go with it (ON DELETE CASCADE).
func DeleteEntry(ctx context.Context, q Querier, id string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	return expectOneRow(result, id)
}

// ListEntries returns every entry with its history, oldest first.
// Filtering and ordering for display happen in vocab.Query.
func ListEntries(ctx context.Context, q Querier) ([]vocab.Entry, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+entryColumns+` FROM entries ORDER BY date_added ASC, id ASC`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	entries := make([]vocab.Entry, 0)
	index := make(map[string]int)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		index[e.ID] = len(entries)
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	rows.Close()

	attemptRows, err := q.QueryContext(ctx, `
		SELECT entry_id, exercise_kind, success, date, time_spent_seconds
		FROM attempts ORDER BY id ASC
	`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer attemptRows.Close()

	for attemptRows.Next() {
		var entryID string
		var a vocab.Attempt
		if err := attemptRows.Scan(&entryID, &a.ExerciseKind, &a.Success, &a.Date, &a.TimeSpentSeconds); err != nil {
			return nil, errors.NewInternal(err)
		}
		if i, ok := index[entryID]; ok {
			entries[i].LearningHistory = append(entries[i].LearningHistory, a)
		}
	}
	if err := attemptRows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return entries, nil
}

// CountEntries returns the number of stored entries.
func CountEntries(ctx context.Context, q Querier) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// AppendAttempt adds one attempt to the end of an entry's history.
// History rows are never updated or reordered.
func AppendAttempt(ctx context.Context, q Querier, entryID string, a vocab.Attempt) error {
	var exists int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM entries WHERE id = ?`, entryID).Scan(&exists)
	if err == sql.ErrNoRows {
		return errors.NewNotFound("entry", entryID)
	}
	if err != nil {
		return errors.NewInternal(err)
	}
	return insertAttempt(ctx, q, entryID, a)
}

func insertAttempt(ctx context.Context, q Querier, entryID string, a vocab.Attempt) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO attempts (entry_id, exercise_kind, success, date, time_spent_seconds)
		VALUES (?, ?, ?, ?, ?)
	`, entryID, string(a.ExerciseKind), a.Success, a.Date, a.TimeSpentSeconds)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

func listAttempts(ctx context.Context, q Querier, entryID string) ([]vocab.Attempt, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT exercise_kind, success, date, time_spent_seconds
		FROM attempts WHERE entry_id = ? ORDER BY id ASC
	`, entryID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	history := make([]vocab.Attempt, 0)
	for rows.Next() {
		var a vocab.Attempt
		if err := rows.Scan(&a.ExerciseKind, &a.Success, &a.Date, &a.TimeSpentSeconds); err != nil {
			return nil, errors.NewInternal(err)
		}
		history = append(history, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return history, nil
}

// InsertExercise persists a generated exercise as JSON.
func InsertExercise(ctx context.Context, q Querier, ex *exercise.Exercise) error {
	payload, err := json.Marshal(ex)
	if err != nil {
		return errors.NewInternal(err)
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO exercises (id, kind, parent_id, payload_json, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, ex.ID, string(ex.Kind), toNullString(ex.ParentID), string(payload), ex.CreatedAt)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	return nil
}

// GetExercise loads a persisted exercise by id.
func GetExercise(ctx context.Context, q Querier, id string) (*exercise.Exercise, error) {
	var payload string
	err := q.QueryRowContext(ctx, `SELECT payload_json FROM exercises WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("exercise", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	var ex exercise.Exercise
	if err := json.Unmarshal([]byte(payload), &ex); err != nil {
		return nil, errors.NewInternal(err)
	}
	return &ex, nil
}

// ListExercises returns the most recent exercises, newest first.
func ListExercises(ctx context.Context, q Querier, limit int) ([]exercise.Exercise, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT payload_json FROM exercises
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	out := make([]exercise.Exercise, 0)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, errors.NewInternal(err)
		}
		var ex exercise.Exercise
		if err := json.Unmarshal([]byte(payload), &ex); err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanEntry scans a single row into an Entry (without history).
func scanEntry(row scanner) (*vocab.Entry, error) {
	var (
		e          vocab.Entry
		categories sql.NullString
		sentence   sql.NullString
		notes      sql.NullString
		source     sql.NullString
	)

	err := row.Scan(
		&e.ID, &e.TargetWord, &e.NativeWord, &categories, &sentence,
		&notes, &source, &e.IsFavorite, &e.DateAdded, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.SampleSentence = fromNullString(sentence)
	e.Notes = fromNullString(notes)
	e.Source = fromNullString(source)

	e.Categories = []string{}
	if categories.Valid && categories.String != "" {
		if err := json.Unmarshal([]byte(categories.String), &e.Categories); err != nil {
			return nil, err
		}
	}

	return &e, nil
}

func expectOneRow(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound("entry", id)
	}
	return nil
}

func categoriesJSON(categories []string) (sql.NullString, error) {
	if len(categories) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(categories)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
