package host

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrochip8/internal/vm"
)

const (
	ansiClearScreen = "\x1b[2J"
	ansiCursorHome  = "\x1b[H"
)

// TerminalDisplay renders the framebuffer to a terminal using half block
// characters, two pixel rows per text line. Unchanged frames are skipped.
type TerminalDisplay struct {
	w        io.Writer
	lastHash uint64
	drawn    bool
}

// NewTerminalDisplay returns a display that writes to the given terminal.
func NewTerminalDisplay(w io.Writer) *TerminalDisplay {
	return &TerminalDisplay{w: w}
}

// Draw renders the framebuffer if it changed since the last call.
func (d *TerminalDisplay) Draw(fb *vm.Framebuffer) error {
	hash := fb.Hash()
	if d.drawn && hash == d.lastHash {
		return nil
	}

	var sb strings.Builder
	if !d.drawn {
		sb.WriteString(ansiClearScreen)
	}
	sb.WriteString(ansiCursorHome)
	for y := 0; y < vm.Height; y += 2 {
		for x := range vm.Width {
			sb.WriteString(halfBlock(fb.Pixel(x, y), fb.Pixel(x, y+1)))
		}
		// raw terminal mode does not translate newlines
		sb.WriteString("\r\n")
	}

	if _, err := io.WriteString(d.w, sb.String()); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	d.lastHash = hash
	d.drawn = true
	return nil
}

func halfBlock(top, bottom bool) string {
	switch {
	case top && bottom:
		return "█"
	case top:
		return "▀"
	case bottom:
		return "▄"
	default:
		return " "
	}
}
