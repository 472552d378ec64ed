package host

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/retroenv/retrochip8/internal/vm"
)

// DefaultKeyHold is how long a key stays pressed after the terminal reported
// it. Terminals send repeated characters while a key is held but no release
// events.
const DefaultKeyHold = 150 * time.Millisecond

const keyEscape = 0x1B

// keyLayout maps the left hand block of a QWERTY keyboard to the hexadecimal
// keypad:
//
//	1 2 3 4      1 2 3 C
//	q w e r  ->  4 5 6 D
//	a s d f      7 8 9 E
//	z x c v      A 0 B F
var keyLayout = map[byte]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// TerminalKeypad reads key presses from a terminal in raw non-blocking mode.
// Escape requests to quit.
type TerminalKeypad struct {
	r        io.Reader
	hold     time.Duration
	now      func() time.Time
	lastSeen [vm.KeyCount]time.Time
	buf      []byte
}

// NewTerminalKeypad returns a keypad that reads from the given terminal input.
func NewTerminalKeypad(r io.Reader) *TerminalKeypad {
	return &TerminalKeypad{
		r:    r,
		hold: DefaultKeyHold,
		now:  time.Now,
		buf:  make([]byte, 64),
	}
}

// Poll reads all pending input and returns the keys that are currently held.
func (k *TerminalKeypad) Poll() ([vm.KeyCount]bool, error) {
	var keys [vm.KeyCount]bool
	now := k.now()

	n, err := k.r.Read(k.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return keys, fmt.Errorf("reading keypad input: %w", err)
	}

	for _, b := range k.buf[:n] {
		if b == keyEscape {
			return keys, ErrQuit
		}
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		if key, ok := keyLayout[b]; ok {
			k.lastSeen[key] = now
		}
	}

	for key, seen := range k.lastSeen {
		keys[key] = !seen.IsZero() && now.Sub(seen) < k.hold
	}
	return keys, nil
}
