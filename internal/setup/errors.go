package setup

import (
	"errors"
	"fmt"

	"github.com/alfredjeanlab/platformsetup/internal/version"
)

// ErrPlatformNotInitialized is returned when synchronization is attempted
// before the platform tables exist.
var ErrPlatformNotInitialized = errors.New("platform is not created, run platform setup init before pushing or pulling configuration")

// StorageError reports a database fault. The enclosing transaction, if any,
// has been rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// FilesystemError reports an unreadable source folder or an unwritable
// destination.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

// storageError wraps err as a StorageError unless it already carries one of
// the engine error kinds.
func storageError(op string, err error) error {
	var se *StorageError
	var fe *FilesystemError
	switch {
	case errors.As(err, &se), errors.As(err, &fe),
		errors.Is(err, version.ErrMismatch),
		errors.Is(err, ErrPlatformNotInitialized):
		return err
	}
	return &StorageError{Op: op, Err: err}
}
