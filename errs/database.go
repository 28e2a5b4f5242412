package errs

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrDatabaseQuery      = errors.New("database query failed")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrDatabaseTimeout    = errors.New("database timeout")
)

func NewNotFound(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        fmt.Errorf("%s %w", entity, ErrNotFound),
	}
}

// NewDatabaseError creates a new database error with details about the operation.
// Errors that already carry an API status pass through unchanged.
func NewDatabaseError(operation, entity string, cause error) *ApiErr {
	var apiErr *ApiErr
	if errors.As(cause, &apiErr) {
		return apiErr
	}

	details := fmt.Sprintf("Failed to %s %s", operation, entity)

	if cause != nil {
		var netErr net.Error
		errStr := cause.Error()
		switch {
		case errors.Is(cause, context.DeadlineExceeded):
			return &ApiErr{
				StatusCode: http.StatusServiceUnavailable,
				err:        fmt.Errorf("%w: %w", ErrStorageUnavailable, ErrDatabaseTimeout),
				Details:    details,
				Cause:      cause,
			}
		case errors.Is(cause, driver.ErrBadConn), errors.As(cause, &netErr),
			strings.Contains(errStr, "connection refused"),
			strings.Contains(errStr, "failed to connect"),
			strings.Contains(errStr, "database is closed"),
			strings.Contains(errStr, "sql: database is closed"):
			return &ApiErr{
				StatusCode: http.StatusServiceUnavailable,
				err:        ErrStorageUnavailable,
				Details:    "Unable to reach the database",
				Cause:      cause,
			}
		case strings.Contains(errStr, "record not found"):
			return &ApiErr{
				StatusCode: http.StatusNotFound,
				err:        fmt.Errorf("%s %w", entity, ErrNotFound),
				Details:    details,
				Cause:      cause,
			}
		case strings.Contains(errStr, "duplicate key"), strings.Contains(errStr, "UNIQUE constraint failed"):
			return &ApiErr{
				StatusCode: http.StatusConflict,
				err:        fmt.Errorf("%s %w", entity, ErrAlreadyExists),
				Details:    details,
				Cause:      cause,
			}
		}
	}

	// Generic database error
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrDatabaseQuery,
		Details:    details,
		Cause:      cause,
	}
}

func IsStorageUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}
