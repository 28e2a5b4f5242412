package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Tag discovery errors
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrTagsNotFound    = errors.New("tags not found")
	ErrInvalidTags     = errors.New("invalid tags")
)

func NewInvalidArgumentError(field, reason string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidArgument,
		Details:    fmt.Sprintf("Invalid %s: %s", field, reason),
		Field:      field,
	}
}

// NewTagsNotFoundError names every requested slug that has no tag record.
func NewTagsNotFoundError(missing []string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        fmt.Errorf("%w: %w", ErrTagsNotFound, ErrNotFound),
		Details:    fmt.Sprintf("Unknown tags: %s", strings.Join(missing, ", ")),
		Field:      "tags",
		Missing:    missing,
	}
}

// NewTagValidationError carries every violated tag rule.
func NewTagValidationError(violations []string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        fmt.Errorf("%w: %w", ErrInvalidTags, ErrInvalidArgument),
		Details:    fmt.Sprintf("%d tag rule(s) violated", len(violations)),
		Field:      "tags",
		Violations: violations,
	}
}

func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

func IsTagsNotFound(err error) bool {
	return errors.Is(err, ErrTagsNotFound)
}
