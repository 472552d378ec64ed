package fileprocessor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/vm"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// drawGlyphROM draws the glyph of digit 0 at the top left corner and halts.
var drawGlyphROM = []byte{
	0xA0, 0x00, // LD I, $000
	0xD0, 0x05, // DRW V0, V0, 5
	0x12, 0x04, // JP $204
}

func headlessOptions() options.Emulator {
	opts := options.NewEmulator()
	opts.Headless = true
	opts.Cycles = options.DefaultHeadlessCycles
	opts.Seed = 1
	return opts
}

func TestRunHeadless(t *testing.T) {
	logger := log.NewTestLogger(t)
	m := vm.New()
	assert.NoError(t, m.LoadProgram(drawGlyphROM))

	var buf bytes.Buffer
	assert.NoError(t, RunHeadless(logger, m, drawGlyphROM, headlessOptions(), &buf))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, vm.Height)
	assert.True(t, strings.HasPrefix(lines[0], "####."))
	assert.True(t, strings.HasPrefix(lines[1], "#..#."))
	assert.True(t, strings.HasPrefix(lines[4], "####."))
	assert.True(t, strings.HasPrefix(lines[5], "....."))
}

func TestRunHeadlessError(t *testing.T) {
	rom := []byte{0xFF, 0xFF}
	logger := log.NewTestLogger(t)
	m := vm.New()
	assert.NoError(t, m.LoadProgram(rom))

	var buf bytes.Buffer
	err := RunHeadless(logger, m, rom, headlessOptions(), &buf)
	assert.True(t, errors.Is(err, vm.ErrUnknownOpcode))
	assert.Empty(t, buf.String())
}

func TestProcessFileHeadless(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "glyph.ch8")
	assert.NoError(t, os.WriteFile(input, drawGlyphROM, 0600))

	opts := options.Program{}
	opts.Input = input
	opts.Output = GenerateOutputFilename(input)

	err := ProcessFile(context.Background(), log.NewTestLogger(t), opts, headlessOptions())
	assert.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "glyph.txt"))
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "####."))
}

func TestProcessFileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		opts := options.Program{}
		opts.Input = filepath.Join(t.TempDir(), "missing.ch8")

		err := ProcessFile(context.Background(), log.NewTestLogger(t), opts, headlessOptions())
		assert.ErrorContains(t, err, "loading ROM")
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		opts := options.Program{}
		opts.Input = "game.ch8"

		err := ProcessFile(ctx, log.NewTestLogger(t), opts, headlessOptions())
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestGetFilesToProcess(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.ch8", "b.ch8", "c.txt"} {
		assert.NoError(t, os.WriteFile(filepath.Join(dir, name), drawGlyphROM, 0600))
	}

	opts := &options.Program{}
	opts.Batch = filepath.Join(dir, "*.ch8")
	files, err := GetFilesToProcess(opts)
	assert.NoError(t, err)
	assert.Len(t, files, 2)

	opts.Batch = filepath.Join(dir, "*.c8")
	files, err = GetFilesToProcess(opts)
	assert.NoError(t, err)
	assert.Len(t, files, 0)

	opts = &options.Program{}
	opts.Input = "single.ch8"
	files, err = GetFilesToProcess(opts)
	assert.NoError(t, err)
	assert.Equal(t, []string{"single.ch8"}, files)
}

func TestGenerateOutputFilename(t *testing.T) {
	assert.Equal(t, "roms/pong.txt", GenerateOutputFilename("roms/pong.ch8"))
	assert.Equal(t, "game.txt", GenerateOutputFilename("game"))
}

func TestOutputFilename(t *testing.T) {
	tests := []struct {
		name   string
		batch  string
		output string
		want   string
	}{
		{"single file to stdout", "", "", ""},
		{"single file to output", "", "frame.txt", "frame.txt"},
		{"batch", "roms/*.ch8", "", "roms/pong.txt"},
		{"batch ignores output", "roms/*.ch8", "frame.txt", "roms/pong.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := options.Program{}
			opts.Batch = tt.batch
			opts.Output = tt.output
			assert.Equal(t, tt.want, OutputFilename(opts, "roms/pong.ch8"))
		})
	}
}
