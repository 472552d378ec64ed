package vm

import (
	"errors"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDrawFontGlyph(t *testing.T) {
	m := newTestMachine(t,
		0x6002, // LD V0, $02
		0x6103, // LD V1, $03
		0x6208, // LD V2, $08
		0xF229, // LD F, V2
		0xD015, // DRW V0, V1, 5
	)
	steps(t, m, 5)

	// glyph 8: F0 90 F0 90 F0
	want := []string{"####", "#..#", "####", "#..#", "####"}
	for row, line := range want {
		for column, c := range line {
			assert.Equal(t, c == '#', m.Framebuffer().Pixel(2+column, 3+row))
		}
	}
	assert.False(t, m.Framebuffer().Pixel(6, 3))
	assert.Equal(t, uint8(0), m.State().V[FlagRegister])
}

func TestDrawTwiceRestoresFramebuffer(t *testing.T) {
	m := newTestMachine(t,
		0x600A, // LD V0, $0A
		0x6105, // LD V1, $05
		0xA000, // LD I, $000
		0xD015, // DRW V0, V1, 5
		0xD015, // DRW V0, V1, 5
	)
	steps(t, m, 3)
	empty := m.Framebuffer().Hash()

	steps(t, m, 1)
	assert.True(t, empty != m.Framebuffer().Hash())
	assert.Equal(t, uint8(0), m.State().V[FlagRegister])

	steps(t, m, 1)
	assert.Equal(t, empty, m.Framebuffer().Hash())
	assert.Equal(t, uint8(1), m.State().V[FlagRegister])
}

func TestDrawCollisionIsSpriteWide(t *testing.T) {
	// the first row collides, the last row does not, the flag must stay set
	m := newTestMachine(t,
		0xA300, // LD I, $300
		0xD011, // DRW V0, V1, 1
		0xA301, // LD I, $301
		0xD012, // DRW V0, V1, 2
	)
	m.memory[0x300] = 0x80
	m.memory[0x301] = 0x80
	m.memory[0x302] = 0x40
	steps(t, m, 4)

	assert.Equal(t, uint8(1), m.State().V[FlagRegister])
	assert.False(t, m.Framebuffer().Pixel(0, 0))
	assert.True(t, m.Framebuffer().Pixel(1, 1))
}

func TestDrawNoCollisionWhenTurningPixelsOn(t *testing.T) {
	m := newTestMachine(t,
		0x6FAA, // LD VF, $AA
		0xA300, // LD I, $300
		0xD011, // DRW V0, V1, 1
	)
	m.memory[0x300] = 0xFF
	steps(t, m, 3)
	assert.Equal(t, uint8(0), m.State().V[FlagRegister])
}

func TestDrawWraps(t *testing.T) {
	m := newTestMachine(t,
		0x603E, // LD V0, 62
		0x611F, // LD V1, 31
		0xA300, // LD I, $300
		0xD012, // DRW V0, V1, 2
	)
	m.memory[0x300] = 0xF0
	m.memory[0x301] = 0x80
	steps(t, m, 4)

	fb := m.Framebuffer()
	for _, p := range [][2]int{{62, 31}, {63, 31}, {0, 31}, {1, 31}, {62, 0}} {
		assert.True(t, fb.Pixel(p[0], p[1]))
	}
	assert.False(t, fb.Pixel(2, 31))
	assert.False(t, fb.Pixel(63, 0))
}

func TestDrawLargeCoordinatesWrap(t *testing.T) {
	m := newTestMachine(t,
		0x60C8, // LD V0, 200
		0x6164, // LD V1, 100
		0xA300, // LD I, $300
		0xD011, // DRW V0, V1, 1
	)
	m.memory[0x300] = 0x80
	steps(t, m, 4)
	assert.True(t, m.Framebuffer().Pixel(200%Width, 100%Height))
}

func TestDrawBounds(t *testing.T) {
	m := newTestMachine(t,
		0xAFFE, // LD I, $FFE
		0xD013, // DRW V0, V1, 3
	)
	steps(t, m, 1)
	before := m.Framebuffer().Hash()

	err := m.Step()
	assert.True(t, errors.Is(err, ErrMemoryBounds))
	assert.Equal(t, before, m.Framebuffer().Hash())

	m = newTestMachine(t,
		0xAFFE, // LD I, $FFE
		0xD012, // DRW V0, V1, 2
	)
	steps(t, m, 2)
}

func TestClearScreen(t *testing.T) {
	m := newTestMachine(t,
		0xA000, // LD I, $000
		0xD005, // DRW V0, V0, 5
		0x00E0, // CLS
	)
	steps(t, m, 2)
	assert.True(t, m.Framebuffer().Pixel(0, 0))

	steps(t, m, 1)
	assert.Equal(t, New().Framebuffer().Hash(), m.Framebuffer().Hash())
}

func TestFramebufferString(t *testing.T) {
	m := newTestMachine(t,
		0xA000, // LD I, $000
		0xD001, // DRW V0, V0, 1
	)
	steps(t, m, 2)

	lines := strings.Split(strings.TrimSuffix(m.Framebuffer().String(), "\n"), "\n")
	assert.Len(t, lines, Height)
	assert.Equal(t, "####"+strings.Repeat(".", Width-4), lines[0])
	assert.Equal(t, strings.Repeat(".", Width), lines[1])
}

func TestDrawZeroRows(t *testing.T) {
	m := newTestMachine(t,
		0x6F01, // LD VF, $01
		0xAFFF, // LD I, $FFF
		0xD010, // DRW V0, V1, 0
	)
	steps(t, m, 3)

	assert.Equal(t, uint8(0), m.State().V[FlagRegister])
	assert.Equal(t, strings.Repeat(strings.Repeat(".", Width)+"\n", Height), m.Framebuffer().String())
}
