package mapping

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/gpio2uinput/internal/action"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParse(t *testing.T) {
	src := `
# arrows
15 HAT_UP
18:HAT_DOWN
  4   hat_left
14 HAT_RIGHT

21 BTN_SOUTH
17 KEY_ENTER
D2 KEY_A
I2C:D5 BTN_START
`
	tbl, err := Parse(strings.NewReader(src), discardLogger())
	require.NoError(t, err)

	assert.Equal(t, action.Hat{Dir: action.Up}, tbl.Edge[15])
	assert.Equal(t, action.Hat{Dir: action.Down}, tbl.Edge[18])
	assert.Equal(t, action.Hat{Dir: action.Left}, tbl.Edge[4])
	assert.Equal(t, action.Hat{Dir: action.Right}, tbl.Edge[14])
	assert.Equal(t, action.Input{Device: action.Gamepad, Code: int(evdev.BTN_SOUTH), Source: "BTN_SOUTH"}, tbl.Edge[21])
	assert.Equal(t, action.Input{Device: action.Keyboard, Code: int(evdev.KEY_ENTER), Source: "KEY_ENTER"}, tbl.Edge[17])
	assert.Equal(t, action.Input{Device: action.Keyboard, Code: int(evdev.KEY_A), Source: "KEY_A"}, tbl.Bus[2])
	assert.Equal(t, action.Input{Device: action.Gamepad, Code: int(evdev.BTN_START), Source: "BTN_START"}, tbl.Bus[5])
	assert.Equal(t, 8, tbl.Len())
}

func TestParse_SkipsBadLines(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	src := "9 FOO_BAR\nlonely\nGPIO7 KEY_A\nD14 KEY_B\n10 KEY_C\n"
	tbl, err := Parse(strings.NewReader(src), logger)
	require.NoError(t, err)

	_, ok := tbl.Lookup(action.Line(9))
	assert.False(t, ok, "unknown token must leave the line unmapped")
	assert.Len(t, tbl.Edge, 1)
	assert.Empty(t, tbl.Bus)

	out := logs.String()
	assert.Contains(t, out, "unknown map token")
	assert.Contains(t, out, "FOO_BAR")
	assert.Contains(t, out, "bad map line")
	assert.Contains(t, out, "unknown map target")
}

func TestParse_LaterLineWins(t *testing.T) {
	tbl, err := Parse(strings.NewReader("5 KEY_A\n5 KEY_B\n"), discardLogger())
	require.NoError(t, err)
	assert.Equal(t, int(evdev.KEY_B), tbl.Edge[5].(action.Input).Code)
}

func TestLoadFile_TOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.toml")
	doc := `
[gpio]
15 = "HAT_UP"
21 = "a"
D3 = "KEY_B"

[bus]
D2 = "KEY_A"
7 = "BTN_EAST"
20 = "KEY_C"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	tbl, err := LoadFile(path, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, action.Hat{Dir: action.Up}, tbl.Edge[15])
	assert.Equal(t, int(evdev.BTN_SOUTH), tbl.Edge[21].(action.Input).Code)
	assert.Equal(t, int(evdev.KEY_A), tbl.Bus[2].(action.Input).Code)
	assert.Equal(t, int(evdev.BTN_EAST), tbl.Bus[7].(action.Input).Code)
	// D3 in [gpio] and pin 20 in [bus] are rejected.
	assert.Len(t, tbl.Edge, 2)
	assert.Len(t, tbl.Bus, 2)
}

func TestLoadFile_Text(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gpio.map")
	require.NoError(t, os.WriteFile(path, []byte("22 KEY_A\n"), 0o644))

	tbl, err := LoadFile(path, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, int(evdev.KEY_A), tbl.Edge[22].(action.Input).Code)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.map"), discardLogger())
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	tbl := Default()
	assert.Equal(t, []int{4, 14, 15, 18, 21}, tbl.EdgeOffsets())
	assert.Empty(t, tbl.Bus)

	caps := tbl.Capabilities()
	assert.True(t, caps.Gamepad)
	assert.True(t, caps.Hat)
	assert.False(t, caps.Keyboard)
	assert.Equal(t, []int{int(evdev.BTN_SOUTH)}, caps.Buttons)
}

func TestCapabilities_KeyboardOnly(t *testing.T) {
	tbl, err := Parse(strings.NewReader("5 KEY_B\n6 KEY_A\nD2 KEY_A\n"), discardLogger())
	require.NoError(t, err)

	caps := tbl.Capabilities()
	assert.False(t, caps.Gamepad)
	assert.False(t, caps.Hat)
	assert.True(t, caps.Keyboard)
	assert.Equal(t, []int{int(evdev.KEY_A), int(evdev.KEY_B)}, caps.Keys)
}

func TestParseAutoMode(t *testing.T) {
	for in, want := range map[string]AutoMode{"buttons": AutoButtons, "KEYS": AutoKeys, " none ": AutoNone} {
		got, err := ParseAutoMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseAutoMode("mouse")
	assert.Error(t, err)
}

func TestSequences(t *testing.T) {
	assert.Equal(t, int(evdev.BTN_SOUTH), ButtonSequence(0))
	assert.Equal(t, int(evdev.BTN_MODE), ButtonSequence(12))
	assert.Equal(t, int(evdev.BTN_0), ButtonSequence(13))
	assert.Equal(t, int(evdev.BTN_0)+9, ButtonSequence(22))
	assert.Equal(t, int(evdev.BTN_0), ButtonSequence(23))

	assert.Equal(t, int(evdev.KEY_A), KeySequence(0))
	assert.Equal(t, int(evdev.KEY_Z), KeySequence(25))
	assert.Equal(t, int(evdev.KEY_0), KeySequence(26))
	assert.Equal(t, int(evdev.KEY_1), KeySequence(27))
	assert.Equal(t, int(evdev.KEY_9), KeySequence(35))
	assert.Equal(t, int(evdev.KEY_F1), KeySequence(36))
	assert.Equal(t, int(evdev.KEY_F12), KeySequence(47))
	assert.Equal(t, int(evdev.KEY_M), KeySequence(48))
}

func TestAllocator_SkipsExplicitCodes(t *testing.T) {
	tbl := NewTable()
	south, _ := action.Resolve("BTN_SOUTH")
	tbl.Set(action.Line(5), south)
	east, _ := action.Resolve("B")
	tbl.Set(action.Pin(3), east) // bus bindings are avoided too

	alloc := NewAllocator(AutoButtons, tbl)
	filled := alloc.Fill(tbl, []int{5, 6, 7, 8})
	assert.Equal(t, []int{6, 7, 8}, filled)

	want := []int{int(evdev.BTN_NORTH), int(evdev.BTN_WEST), int(evdev.BTN_TL)}
	for i, off := range filled {
		in := tbl.Edge[off].(action.Input)
		assert.Equal(t, action.Gamepad, in.Device)
		assert.Equal(t, want[i], in.Code, "offset %d", off)
		assert.Equal(t, AutoButtonToken, in.Source)
	}
}

func TestAllocator_Keys(t *testing.T) {
	tbl := NewTable()
	a, _ := action.Resolve("A")
	tbl.Set(action.Line(2), a) // A is a gamepad alias, so KEY_A stays free

	alloc := NewAllocator(AutoKeys, tbl)
	alloc.Fill(tbl, []int{3, 4})
	assert.Equal(t, action.Input{Device: action.Keyboard, Code: int(evdev.KEY_A), Source: AutoKeyToken}, tbl.Edge[3])
	assert.Equal(t, int(evdev.KEY_B), tbl.Edge[4].(action.Input).Code)
}

func TestAllocator_CollisionFreeUntilExhausted(t *testing.T) {
	offsets := make([]int, 30)
	for i := range offsets {
		offsets[i] = 100 + i
	}
	tbl := NewTable()
	alloc := NewAllocator(AutoButtons, tbl)
	filled := alloc.Fill(tbl, offsets)
	require.Len(t, filled, 30, "every line gets an action even once codes run out")

	// 13 named buttons plus BTN_0..BTN_9.
	seen := map[int]bool{}
	for _, off := range filled[:23] {
		code := tbl.Edge[off].(action.Input).Code
		assert.False(t, seen[code], "offset %d: duplicate code %d before exhaustion", off, code)
		seen[code] = true
	}
}

func TestAllocator_None(t *testing.T) {
	tbl := Default()
	alloc := NewAllocator(AutoNone, tbl)
	assert.Empty(t, alloc.Fill(tbl, []int{5, 6, 7}))
	assert.Equal(t, 5, tbl.Len())
}
