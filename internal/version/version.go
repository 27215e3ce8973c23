// Package version holds the platform version this build of the setup tool
// understands and the compatibility check run before every synchronization.
package version

import (
	"errors"
	"fmt"
	"strings"
)

// Version is the platform version expected by this tool, injected via
// -ldflags "-X github.com/alfredjeanlab/platformsetup/internal/version.Version=...".
var Version = "7.3.0"

// ErrMismatch is matched by every *MismatchError.
var ErrMismatch = errors.New("platform version mismatch")

// MismatchError reports a persisted platform version that this tool does not
// support.
type MismatchError struct {
	Persisted string
	Expected  string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("platform version [%s] is not supported by current platform setup version [%s]", e.Persisted, e.Expected)
}

func (e *MismatchError) Is(target error) bool {
	return target == ErrMismatch
}

// CheckCompatible returns a *MismatchError when persisted and expected differ.
func CheckCompatible(persisted, expected string) error {
	if strings.TrimSpace(persisted) != strings.TrimSpace(expected) {
		return &MismatchError{Persisted: persisted, Expected: expected}
	}
	return nil
}
