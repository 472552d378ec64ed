//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package host

import (
	"errors"
	"os"
)

// Terminal is a terminal switched to raw mode.
type Terminal struct{}

// EnterRawMode is not supported on this platform, use headless mode instead.
func EnterRawMode(*os.File) (*Terminal, error) {
	return nil, errors.New("raw terminal mode is not supported on this platform")
}

// Restore does nothing.
func (t *Terminal) Restore() error {
	return nil
}
