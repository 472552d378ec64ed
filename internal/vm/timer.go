package vm

// TickTimers advances the delay and sound timers by one tick. Timers stop
// at zero. The host calls it at 60 Hz independent of the instruction rate.
// The result reports whether the sound timer just reached zero, which is
// the cue for the host to stop playing the tone.
func (m *Machine) TickTimers() (soundStopped bool) {
	if m.delayTimer > 0 {
		m.delayTimer--
	}
	if m.soundTimer > 0 {
		m.soundTimer--
		return m.soundTimer == 0
	}
	return false
}
