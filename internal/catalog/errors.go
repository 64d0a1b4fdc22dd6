package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUpstreamUnavailable covers network failures, timeouts and 5xx
// responses that survived the retry budget. Surfaced to clients as a
// 503; never cached.
var ErrUpstreamUnavailable = errors.New("catalog: upstream unavailable")

// RejectedError is a 4xx from upstream. Retrying a rejected request
// cannot succeed, so it fails immediately; never cached.
type RejectedError struct {
	Status int
	Body   string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("catalog: upstream rejected request (status %d)", e.Status)
}

// FieldError describes one field that failed schema validation.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError means an upstream payload did not match the expected
// schema: an upstream contract violation. It lists every offending
// field, not just the first. Logged in full server-side; clients only
// ever see a generic "upstream data unavailable".
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return "catalog: upstream payload failed validation: " + strings.Join(parts, "; ")
}

// BadRequestError means the caller's own parameters were invalid. No
// upstream call is made.
type BadRequestError struct {
	Msg string
}

func (e *BadRequestError) Error() string {
	return "catalog: invalid request: " + e.Msg
}
