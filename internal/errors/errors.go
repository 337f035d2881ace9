package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Lingo error code.
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"      // 400
	ErrNotFound           ErrorCode = "NOT_FOUND"            // 404
	ErrFileNotFound       ErrorCode = "FILE_NOT_FOUND"       // 404
	ErrEntryAlreadyExists ErrorCode = "ENTRY_ALREADY_EXISTS" // 409
	ErrConflict           ErrorCode = "CONFLICT"             // 409
	ErrRateLimited        ErrorCode = "RATE_LIMITED"         // 429
	ErrCancelled          ErrorCode = "CANCELLED"            // 499
	ErrInternal           ErrorCode = "INTERNAL"             // 500
	ErrLLMBadResponse     ErrorCode = "LLM_BAD_RESPONSE"     // 502
	ErrLLMUnavailable     ErrorCode = "LLM_UNAVAILABLE"      // 503
)

// LingoError represents a structured error with code, status, and details.
type LingoError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *LingoError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *LingoError {
	return &LingoError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when an entry or exercise cannot be found.
func NewNotFound(kind, identifier string) *LingoError {
	return &LingoError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"kind": kind, "identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *LingoError {
	return &LingoError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewEntryAlreadyExists creates a 409 error for duplicate word pairs.
func NewEntryAlreadyExists(targetWord, nativeWord, existingID string) *LingoError {
	return &LingoError{
		Code:    ErrEntryAlreadyExists,
		Status:  409,
		Message: fmt.Sprintf("entry %q / %q already exists", targetWord, nativeWord),
		Details: map[string]any{"target_word": targetWord, "native_word": nativeWord, "existing_id": existingID},
	}
}

// NewConflict creates a 409 error for general conflicts.
func NewConflict(msg string) *LingoError {
	return &LingoError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewRateLimited creates a 429 error when the LLM request budget is exhausted.
func NewRateLimited(limit int) *LingoError {
	return &LingoError{
		Code:    ErrRateLimited,
		Status:  429,
		Message: fmt.Sprintf("llm request limit reached (%d per process)", limit),
		Details: map[string]any{"limit": limit},
	}
}

// NewCancelled creates a 499 error when the caller cancelled a long-running operation.
func NewCancelled(op string) *LingoError {
	return &LingoError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *LingoError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &LingoError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// NewLLMBadResponse creates a 502 error when the model returned unusable content.
func NewLLMBadResponse(reason string) *LingoError {
	return &LingoError{
		Code:    ErrLLMBadResponse,
		Status:  502,
		Message: fmt.Sprintf("language model returned an unusable response: %s", reason),
	}
}

// NewLLMUnavailable creates a 503 error when the language model cannot be reached or is not configured.
func NewLLMUnavailable(reason string) *LingoError {
	return &LingoError{
		Code:    ErrLLMUnavailable,
		Status:  503,
		Message: fmt.Sprintf("language model unavailable: %s", reason),
	}
}

// Is checks if an error is (or wraps) a LingoError with the given code.
func Is(err error, code ErrorCode) bool {
	var lErr *LingoError
	if stderrors.As(err, &lErr) {
		return lErr.Code == code
	}
	return false
}
