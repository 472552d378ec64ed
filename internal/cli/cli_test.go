package cli

import (
	"errors"
	"os"
	"testing"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/vm"
	"github.com/retroenv/retrogolib/assert"
)

func parseArgs(t *testing.T, args ...string) (options.Program, options.Emulator, error) {
	t.Helper()

	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = append([]string{"prog"}, args...)

	return ParseFlags()
}

//nolint:funlen // test functions can be long
func TestParseFlags_EmulatorOptions(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want options.Emulator
	}{
		{
			name: "default flags",
			args: []string{"test.ch8"},
			want: options.Emulator{ClockHz: 700, TimerHz: 60},
		},
		{
			name: "rates",
			args: []string{"-hz", "1000", "-timer-hz", "50", "test.ch8"},
			want: options.Emulator{ClockHz: 1000, TimerHz: 50},
		},
		{
			name: "headless uses default cycle limit",
			args: []string{"-headless", "test.ch8"},
			want: options.Emulator{ClockHz: 700, TimerHz: 60, Cycles: options.DefaultHeadlessCycles, Headless: true},
		},
		{
			name: "headless with cycles",
			args: []string{"-headless", "-cycles", "50", "test.ch8"},
			want: options.Emulator{ClockHz: 700, TimerHz: 60, Cycles: 50, Headless: true},
		},
		{
			name: "quirk seed and error handling",
			args: []string{"-shift-vy", "-seed", "7", "-reset-on-error", "test.ch8"},
			want: options.Emulator{ClockHz: 700, TimerHz: 60, Seed: 7, ShiftQuirk: vm.ShiftFromVY, ResetOnError: true},
		},
		{
			name: "trace",
			args: []string{"-trace", "test.ch8"},
			want: options.Emulator{ClockHz: 700, TimerHz: 60, Trace: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, got, err := parseArgs(t, tt.args...)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "test.ch8", opts.Input)
		})
	}
}

func TestParseFlags_ProgramOptions(t *testing.T) {
	opts, _, err := parseArgs(t, "-trace", "game.ch8")
	assert.NoError(t, err)
	assert.True(t, opts.Debug)

	opts, emulatorOptions, err := parseArgs(t, "-batch", "*.ch8")
	assert.NoError(t, err)
	assert.Equal(t, "*.ch8", opts.Batch)
	assert.Equal(t, "", opts.Input)
	assert.True(t, emulatorOptions.Headless)

	opts, _, err = parseArgs(t, "-i", "input.ch8")
	assert.NoError(t, err)
	assert.Equal(t, "input.ch8", opts.Input)

	opts, _, err = parseArgs(t, "game.ch8", "")
	assert.NoError(t, err)
	assert.Equal(t, "game.ch8", opts.Input)
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		usage bool
	}{
		{"no file", nil, true},
		{"unknown flag", []string{"-unknown", "test.ch8"}, true},
		{"flag after file", []string{"test.ch8", "-q"}, true},
		{"invalid clock", []string{"-hz", "0", "test.ch8"}, false},
		{"invalid timer rate", []string{"-timer-hz", "-1", "test.ch8"}, false},
		{"debug and quiet", []string{"-debug", "-q", "test.ch8"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parseArgs(t, tt.args...)
			assert.Error(t, err)

			var usageErr *UsageError
			assert.Equal(t, tt.usage, errors.As(err, &usageErr))
		})
	}
}
