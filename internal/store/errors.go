package store

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds returned by the storage engine. Match them with errors.Is.
var (
	ErrExcludedPath     = errors.New("file is excluded from snapshots")
	ErrMalformedRecord  = errors.New("malformed snapshot record")
	ErrRelocationFailed = errors.New("relocating snapshot directory failed")
	ErrWriteFailed      = errors.New("writing snapshot record failed")
	ErrDeleteFailed     = errors.New("deleting snapshot record failed")
	ErrOutsideWorkspace = errors.New("file is outside the workspace")
)

// Error pairs an error kind with the path and the underlying cause.
type Error struct {
	Kind error
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the error kind.
func (e *Error) Is(target error) bool { return target == e.Kind }
