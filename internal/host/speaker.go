package host

import "io"

// BellSpeaker rings the terminal bell when a tone starts.
type BellSpeaker struct {
	w io.Writer
}

// NewBellSpeaker returns a speaker that writes the bell character to w.
func NewBellSpeaker(w io.Writer) *BellSpeaker {
	return &BellSpeaker{w: w}
}

// SetTone rings the bell when the tone is switched on.
func (s *BellSpeaker) SetTone(on bool) {
	if on {
		_, _ = io.WriteString(s.w, "\a")
	}
}

// NopSpeaker discards all tone changes.
type NopSpeaker struct{}

// SetTone does nothing.
func (NopSpeaker) SetTone(bool) {}
