package ollama

import "errors"

// Category groups backend failures so the orchestrator can pick a matching
// canned reply. Raw errors never reach the chat surface.
type Category int

const (
	CategoryUnavailable Category = iota
	CategoryTimeout
	CategoryModelNotFound
	CategoryBadRequest
	CategoryMalformed
	CategoryOther
)

func (c Category) String() string {
	switch c {
	case CategoryUnavailable:
		return "unavailable"
	case CategoryTimeout:
		return "timeout"
	case CategoryModelNotFound:
		return "model_not_found"
	case CategoryBadRequest:
		return "bad_request"
	case CategoryMalformed:
		return "malformed"
	default:
		return "other"
	}
}

// Error wraps a backend failure with its category.
type Error struct {
	Category Category
	Err      error
}

func (e *Error) Error() string {
	return "backend " + e.Category.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Categorize extracts the failure category, defaulting to CategoryOther.
func Categorize(err error) Category {
	var be *Error
	if errors.As(err, &be) {
		return be.Category
	}
	return CategoryOther
}

// retryable reports whether another attempt could possibly succeed.
// Client-side mistakes and missing models will not fix themselves.
func retryable(c Category) bool {
	switch c {
	case CategoryBadRequest, CategoryModelNotFound:
		return false
	default:
		return true
	}
}
