package output

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/akedrou/textdiff"

	"github.com/ssfrr/embody/internal/apperror"
)

// Confirmer answers yes/no questions. def is the answer assumed when the
// user just hits enter.
type Confirmer interface {
	Confirm(prompt string, def bool) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string, def bool) (bool, error)

func (f ConfirmFunc) Confirm(prompt string, def bool) (bool, error) { return f(prompt, def) }

// Always answers every question with yes.
var Always = ConfirmFunc(func(string, bool) (bool, error) { return true, nil })

// Status describes what Write did with a destination.
type Status int

const (
	StatusWritten Status = iota
	StatusUnchanged
)

func (s Status) String() string {
	if s == StatusUnchanged {
		return "unchanged"
	}
	return "written"
}

// Writer writes generated files one at a time, consulting its Confirmer
// before creating a missing directory or replacing different content.
type Writer struct {
	confirm  Confirmer
	force    bool
	showDiff bool
	logger   *slog.Logger
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithForce skips every question and overwrites.
func WithForce(force bool) WriterOption {
	return func(w *Writer) { w.force = force }
}

// WithDiff includes a unified diff in overwrite questions.
func WithDiff(show bool) WriterOption {
	return func(w *Writer) { w.showDiff = show }
}

func NewWriter(confirm Confirmer, logger *slog.Logger, opts ...WriterOption) *Writer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	w := &Writer{confirm: confirm, logger: logger}
	for _, o := range opts {
		o(w)
	}
	return w
}

func (w *Writer) ask(prompt string, def bool) (bool, error) {
	if w.force {
		return true, nil
	}
	if w.confirm == nil {
		return def, nil
	}
	ok, err := w.confirm.Confirm(prompt, def)
	if err != nil {
		return false, fmt.Errorf("confirm: %w", err)
	}
	return ok, nil
}

// Write puts content at path. Existing files with identical content are
// left alone and reported as StatusUnchanged.
func (w *Writer) Write(path string, content []byte) (Status, error) {
	if err := w.ensureDir(filepath.Dir(path)); err != nil {
		return 0, err
	}

	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		if bytes.Equal(existing, content) {
			w.logger.Info("File unchanged", "file", path)
			return StatusUnchanged, nil
		}
		prompt := fmt.Sprintf("%s already exists. Overwrite?", path)
		if w.showDiff {
			diff := textdiff.Unified(path+" (current)", path+" (generated)", string(existing), string(content))
			prompt = diff + "\n" + prompt
		}
		ok, err := w.ask(prompt, false)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, &apperror.PathConflictError{Path: path, Reason: "file exists and overwrite was declined"}
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return 0, &apperror.FilesystemError{Op: "read", Path: path, Err: err}
	}

	if err := writeFile(path, content); err != nil {
		return 0, err
	}
	w.logger.Info("Generated file", "file", path)
	return StatusWritten, nil
}

func (w *Writer) ensureDir(dir string) error {
	st, err := os.Stat(dir)
	switch {
	case err == nil:
		if !st.IsDir() {
			return &apperror.FilesystemError{Op: "stat", Path: dir, Err: errors.New("not a directory")}
		}
		return nil
	case !errors.Is(err, fs.ErrNotExist):
		return &apperror.FilesystemError{Op: "stat", Path: dir, Err: err}
	}

	ok, err := w.ask(fmt.Sprintf("Directory %s does not exist. Create it?", dir), true)
	if err != nil {
		return err
	}
	if !ok {
		return &apperror.PathConflictError{Path: dir, Reason: "directory does not exist and creation was declined"}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &apperror.FilesystemError{Op: "mkdir", Path: dir, Err: err}
	}
	w.logger.Debug("Created directory", "dir", dir)
	return nil
}

func writeFile(path string, content []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return &apperror.FilesystemError{Op: "open", Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &apperror.FilesystemError{Op: "close", Path: path, Err: cerr}
		}
	}()
	if _, err := f.Write(content); err != nil {
		return &apperror.FilesystemError{Op: "write", Path: path, Err: err}
	}
	return nil
}
