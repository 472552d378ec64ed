package vm

import (
	"strings"

	"github.com/cespare/xxhash"
)

// Display dimensions in pixels.
const (
	Width  = 64
	Height = 32
)

// Framebuffer is the monochrome 64x32 display. Sprites are XORed into it.
type Framebuffer struct {
	pixels [Width * Height]bool
}

// Pixel returns whether the pixel at the given coordinates is on.
// Coordinates wrap around the display edges.
func (f *Framebuffer) Pixel(x, y int) bool {
	return f.pixels[index(x, y)]
}

// Hash returns a content hash of the framebuffer that hosts can use to
// detect changed frames.
func (f *Framebuffer) Hash() uint64 {
	var buf [Width * Height / 8]byte
	for i, on := range f.pixels {
		if on {
			buf[i/8] |= 0x80 >> (i % 8)
		}
	}
	return xxhash.Sum64(buf[:])
}

// String renders the framebuffer as text, one line per row,
// '#' for pixels that are on and '.' for pixels that are off.
func (f *Framebuffer) String() string {
	var sb strings.Builder
	sb.Grow((Width + 1) * Height)
	for y := range Height {
		for x := range Width {
			if f.pixels[y*Width+x] {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (f *Framebuffer) clear() {
	f.pixels = [Width * Height]bool{}
}

// toggle flips the pixel and returns true if it was switched from on to off.
func (f *Framebuffer) toggle(x, y int) bool {
	i := index(x, y)
	erased := f.pixels[i]
	f.pixels[i] = !erased
	return erased
}

func index(x, y int) int {
	x %= Width
	if x < 0 {
		x += Width
	}
	y %= Height
	if y < 0 {
		y += Height
	}
	return y*Width + x
}
