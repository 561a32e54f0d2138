// Package apperror holds the errors generation can fail with. Callers
// match them with errors.Is and errors.As.
package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDeclaration: a signature was requested from a node that is
	// not a function declaration.
	ErrInvalidDeclaration = errors.New("invalid declaration")
	// ErrEmptyTranslationUnit: the parser produced no declarations, usually
	// because the header failed to preprocess or was empty.
	ErrEmptyTranslationUnit = errors.New("empty translation unit")
)

// ConfigParseError reports a configuration file that is not a valid YAML mapping.
type ConfigParseError struct {
	Path string
	Err  error
}

func (e *ConfigParseError) Error() string {
	return fmt.Sprintf("parse config %s: %v", e.Path, e.Err)
}

func (e *ConfigParseError) Unwrap() error { return e.Err }

// InvalidModuleNameError reports a module name that cannot name C files.
type InvalidModuleNameError struct {
	Name string
}

func (e *InvalidModuleNameError) Error() string {
	if e.Name == "" {
		return "invalid module name: name is empty"
	}
	return fmt.Sprintf("invalid module name %q: must not contain whitespace", e.Name)
}

// PathConflictError reports a destination the caller chose not to touch:
// either the file exists and overwriting was declined, or its directory is
// missing and creating it was declined.
type PathConflictError struct {
	Path   string
	Reason string
}

func (e *PathConflictError) Error() string {
	return fmt.Sprintf("path conflict: %s: %s", e.Path, e.Reason)
}

// FilesystemError wraps an I/O failure unrelated to the conflicts above.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

// Filesystem wraps err for op on path, leaving nil alone.
func Filesystem(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &FilesystemError{Op: op, Path: path, Err: err}
}
