package records

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrAccessDenied   = errors.New("an active trial or subscription is required")
	ErrInvalidRecord  = errors.New("invalid record")
	ErrRecordNotFound = errors.New("record not found")
	ErrUnknownTable   = errors.New("unknown table")
)

// ValidationError lists the failing fields of a payload.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", k, e.Fields[k]))
	}
	return ErrInvalidRecord.Error() + ": " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRecord }
