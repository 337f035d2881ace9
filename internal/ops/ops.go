package ops

import (
	"context"
	"crypto/rand"
	stderrors "errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/lingo/internal/config"
	"github.com/hpungsan/lingo/internal/errors"
	"github.com/hpungsan/lingo/internal/exercise"
	"github.com/hpungsan/lingo/internal/llm"
	"github.com/hpungsan/lingo/internal/vocab"
)

// Pagination limits
const (
	DefaultListLimit      = 20
	MaxListLimit          = 100
	DefaultExercisesLimit = 20
	MaxExercisesLimit     = 100
	MaxCategoryLength     = 64
	MaxCategories         = 20
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// paginate clamps limit/offset and returns the requested window of items.
func paginate[T any](items []T, limit, offset int) ([]T, Pagination) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset = max(offset, 0)

	total := len(items)
	start := min(offset, total)
	end := min(start+limit, total)

	return items[start:end], Pagination{
		Limit:   limit,
		Offset:  offset,
		HasMore: end < total,
		Total:   total,
	}
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// cleanOptionalString trims s and maps blank strings to nil.
func cleanOptionalString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// validateWords trims and checks a word pair.
func validateWords(target, native string) (string, string, error) {
	target = strings.TrimSpace(target)
	native = strings.TrimSpace(native)
	if target == "" {
		return "", "", errors.NewInvalidRequest("target_word is required")
	}
	if native == "" {
		return "", "", errors.NewInvalidRequest("native_word is required")
	}
	return target, native, nil
}

// validateCategories cleans categories and enforces limits.
func validateCategories(categories []string) ([]string, error) {
	cleaned := vocab.CleanCategories(categories)
	if len(cleaned) > MaxCategories {
		return nil, errors.NewInvalidRequest("too many categories (max 20)")
	}
	for _, c := range cleaned {
		if len([]rune(c)) > MaxCategoryLength {
			return nil, errors.NewInvalidRequest("category too long (max 64 characters): " + c)
		}
	}
	return cleaned, nil
}

// pipeline builds the query pipeline from configuration.
func pipeline(cfg *config.Config) vocab.Pipeline {
	if cfg == nil {
		return vocab.Pipeline{}
	}
	return vocab.NewPipeline(cfg.SearchThreshold, cfg.Locale)
}

// resolveSort parses sort key and order, falling back to the given defaults.
func resolveSort(sortKey, order, defaultKey, defaultOrder string) (vocab.SortKey, vocab.SortOrder, error) {
	if strings.TrimSpace(sortKey) == "" {
		sortKey = defaultKey
	}
	if strings.TrimSpace(order) == "" {
		order = defaultOrder
	}
	key, err := vocab.ParseSortKey(sortKey)
	if err != nil {
		return "", "", errors.NewInvalidRequest(err.Error())
	}
	o, err := vocab.ParseSortOrder(order)
	if err != nil {
		return "", "", errors.NewInvalidRequest(err.Error())
	}
	return key, o, nil
}

// mapLLMError converts llm and exercise errors to LingoErrors.
func mapLLMError(op string, limit int, err error) error {
	var lErr *errors.LingoError
	if stderrors.As(err, &lErr) {
		return lErr
	}

	var httpErr *llm.HTTPError
	switch {
	case stderrors.Is(err, context.Canceled):
		return errors.NewCancelled(op)
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewLLMUnavailable("request timed out")
	case stderrors.Is(err, llm.ErrRequestLimit):
		return errors.NewRateLimited(limit)
	case stderrors.Is(err, llm.ErrMissingAPIKey):
		return errors.NewLLMUnavailable(llm.APIKeyEnv + " is not set")
	case stderrors.Is(err, llm.ErrBadResponse), stderrors.Is(err, exercise.ErrInvalidExercise):
		return errors.NewLLMBadResponse(err.Error())
	case stderrors.As(err, &httpErr):
		return errors.NewLLMUnavailable(httpErr.Error())
	default:
		return errors.NewLLMUnavailable(err.Error())
	}
}
