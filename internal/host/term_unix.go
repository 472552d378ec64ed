//go:build linux || darwin || freebsd || netbsd || openbsd

package host

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Terminal is a terminal switched to raw mode.
type Terminal struct {
	fd      int
	restore unix.Termios
}

// EnterRawMode switches the terminal to raw mode: no echo, no line buffering
// and reads that return immediately when no input is pending.
func EnterRawMode(f *os.File) (*Terminal, error) {
	fd := int(f.Fd())
	termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, fmt.Errorf("getting terminal state: %w", err)
	}

	t := &Terminal{
		fd:      fd,
		restore: *termios,
	}

	state := *termios
	state.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.INLCR | unix.ICRNL | unix.IXON
	state.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.IEXTEN
	state.Cflag &^= unix.CSIZE | unix.PARENB
	state.Cflag |= unix.CS8
	state.Cc[unix.VMIN] = 0
	state.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &state); err != nil {
		return nil, fmt.Errorf("setting raw terminal mode: %w", err)
	}
	return t, nil
}

// Restore switches the terminal back to the state it had before raw mode.
func (t *Terminal) Restore() error {
	if err := unix.IoctlSetTermios(t.fd, ioctlSetTermios, &t.restore); err != nil {
		return fmt.Errorf("restoring terminal state: %w", err)
	}
	return nil
}
