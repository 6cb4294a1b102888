package binder

import (
	"errors"
	"fmt"

	"github.com/talentdesk/ats/core"
)

// Common binding errors. Every error returned by a binder also wraps a
// core.HTTPError, so it renders as a 4xx response.
var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrMissingContentType   = errors.New("missing content type")
	ErrFailedToParseJSON    = errors.New("failed to parse JSON request body")
	ErrFailedToParseQuery   = errors.New("failed to parse query parameters")
	ErrFailedToParsePath    = errors.New("failed to parse path parameters")
)

func badRequest(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", core.ErrBadRequest, kind, fmt.Sprintf(format, args...))
}

func unsupported(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", core.ErrUnsupportedMediaType, kind, fmt.Sprintf(format, args...))
}
