package domain

import (
	"errors"
	"fmt"
)

// Input error kinds. Match them with errors.Is.
var (
	ErrFileNotFound = errors.New("file not found")
	ErrParse        = errors.New("parse error")
)

// InputError is the fatal load failure: the file is missing, is not
// delimited text, or lacks a required column. Per-cell coercion failures are
// never reported this way.
type InputError struct {
	Path string
	Kind error // ErrFileNotFound or ErrParse
	Err  error
}

func (e *InputError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("load %s: %v", e.Path, e.Kind)
	}
	return fmt.Sprintf("load %s: %v: %v", e.Path, e.Kind, e.Err)
}

func (e *InputError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewFileNotFoundError reports a path that does not exist.
func NewFileNotFoundError(path string, err error) error {
	return &InputError{Path: path, Kind: ErrFileNotFound, Err: err}
}

// NewParseError reports malformed input at path.
func NewParseError(path string, format string, args ...any) error {
	return &InputError{Path: path, Kind: ErrParse, Err: fmt.Errorf(format, args...)}
}
