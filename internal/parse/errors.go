package parse

import (
	"errors"
	"fmt"
)

var (
	// ErrUnrecognizedType is returned when the type field is missing or
	// names no known entry kind.
	ErrUnrecognizedType = errors.New("unrecognized entry type")
	ErrNotObject        = errors.New("not a JSON object")
)

// SyntaxError wraps a JSON decode failure of a whole line.
type SyntaxError struct {
	Err error
}

func (e *SyntaxError) Error() string { return "json decode: " + e.Err.Error() }
func (e *SyntaxError) Unwrap() error { return e.Err }

// ValidationError reports a missing or mistyped required field.
type ValidationError struct {
	Path string
	Msg  string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Msg
	}
	return e.Path + ": " + e.Msg
}

func required(path string) error {
	return &ValidationError{Path: path, Msg: "field required"}
}

func mistyped(path, want string) error {
	return &ValidationError{Path: path, Msg: fmt.Sprintf("expected %s", want)}
}
