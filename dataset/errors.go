package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSchema   = errors.New("annotation schema violation")
	ErrParse    = errors.New("annotation value not parseable")
	ErrNotFound = errors.New("image not found")
	ErrDecode   = errors.New("image not decodable")
)

// SchemaError reports a structural problem in an annotation source: a
// missing column or key, a wrong shape, or mismatched box/label counts.
type SchemaError struct {
	File string
	// Entry locates the offending row or entry, e.g. "row 3" or
	// "entry 2 (image0.jpg)". Empty for file-level problems.
	Entry  string
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return "schema error: " + locate(e.File, e.Entry, e.Field) + e.Reason
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// ParseError reports a value that could not be converted to the type its
// field requires.
type ParseError struct {
	File  string
	Entry string
	Field string
	Value string
	cause error
}

func (e *ParseError) Error() string {
	msg := "parse error: " + locate(e.File, e.Entry, e.Field)
	if e.Value != "" {
		msg += fmt.Sprintf("cannot parse %q", e.Value)
	} else {
		msg += "malformed data"
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.cause }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// NotFoundError is returned when a record's image is absent from storage.
type NotFoundError struct {
	Path  string
	cause error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("image %s: not found", e.Path)
}

func (e *NotFoundError) Unwrap() error { return e.cause }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// DecodeError is returned when an image exists but cannot be decoded.
type DecodeError struct {
	Path   string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("image %s: cannot decode: %s", e.Path, e.Reason)
}

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

func locate(file, entry, field string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{file, entry} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if field != "" {
		parts = append(parts, "field "+field)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ", ") + ": "
}
