package engine

import (
	"errors"
	"fmt"
)

// ErrAlreadyRunning is returned when a run is started on a busy context
var ErrAlreadyRunning = errors.New("compare already running")

// MisuseError reports a call that violates the engine's contract
type MisuseError struct {
	Op  string
	Err error
}

func (e *MisuseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *MisuseError) Unwrap() error {
	return e.Err
}

// FilesystemError records a side that could not be read.
// It is stored as the reason of the affected item and never aborts a run.
type FilesystemError struct {
	Side string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	path := e.Path
	if path == "" {
		path = "."
	}
	return fmt.Sprintf("%s: cannot read %s: %v", e.Side, path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}
