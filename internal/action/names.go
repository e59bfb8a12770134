package action

import "github.com/holoplot/go-evdev"

// Named is an entry of an ordered name table. Lookups walk the table in
// order and the first match wins, so aliases sharing a code render as the
// earlier name.
type Named struct {
	Name string
	Code int
}

// Buttons lists the gamepad buttons accepted by name.
var Buttons = []Named{
	{"BTN_SOUTH", int(evdev.BTN_SOUTH)},
	{"BTN_EAST", int(evdev.BTN_EAST)},
	{"BTN_NORTH", int(evdev.BTN_NORTH)},
	{"BTN_WEST", int(evdev.BTN_WEST)},
	{"BTN_TL", int(evdev.BTN_TL)},
	{"BTN_TR", int(evdev.BTN_TR)},
	{"BTN_TL2", int(evdev.BTN_TL2)},
	{"BTN_TR2", int(evdev.BTN_TR2)},
	{"BTN_SELECT", int(evdev.BTN_SELECT)},
	{"BTN_START", int(evdev.BTN_START)},
	{"BTN_MODE", int(evdev.BTN_MODE)},
	{"BTN_THUMBL", int(evdev.BTN_THUMBL)},
	{"BTN_THUMBR", int(evdev.BTN_THUMBR)},
	{"BTN_DPAD_UP", int(evdev.BTN_DPAD_UP)},
	{"BTN_DPAD_DOWN", int(evdev.BTN_DPAD_DOWN)},
	{"BTN_DPAD_LEFT", int(evdev.BTN_DPAD_LEFT)},
	{"BTN_DPAD_RIGHT", int(evdev.BTN_DPAD_RIGHT)},
	{"BTN_GAMEPAD", int(evdev.BTN_GAMEPAD)},
}

// Keys lists the keyboard keys accepted by name, in addition to the
// letter, digit, function and keypad patterns.
var Keys = []Named{
	{"KEY_ENTER", int(evdev.KEY_ENTER)},
	{"KEY_ESC", int(evdev.KEY_ESC)},
	{"KEY_TAB", int(evdev.KEY_TAB)},
	{"KEY_SPACE", int(evdev.KEY_SPACE)},
	{"KEY_BACKSPACE", int(evdev.KEY_BACKSPACE)},
	{"KEY_LEFTCTRL", int(evdev.KEY_LEFTCTRL)},
	{"KEY_RIGHTCTRL", int(evdev.KEY_RIGHTCTRL)},
	{"KEY_LEFTSHIFT", int(evdev.KEY_LEFTSHIFT)},
	{"KEY_RIGHTSHIFT", int(evdev.KEY_RIGHTSHIFT)},
	{"KEY_LEFTALT", int(evdev.KEY_LEFTALT)},
	{"KEY_RIGHTALT", int(evdev.KEY_RIGHTALT)},
	{"KEY_LEFTMETA", int(evdev.KEY_LEFTMETA)},
	{"KEY_RIGHTMETA", int(evdev.KEY_RIGHTMETA)},
	{"KEY_CAPSLOCK", int(evdev.KEY_CAPSLOCK)},

	{"KEY_UP", int(evdev.KEY_UP)},
	{"KEY_DOWN", int(evdev.KEY_DOWN)},
	{"KEY_LEFT", int(evdev.KEY_LEFT)},
	{"KEY_RIGHT", int(evdev.KEY_RIGHT)},
	{"KEY_HOME", int(evdev.KEY_HOME)},
	{"KEY_END", int(evdev.KEY_END)},
	{"KEY_PAGEUP", int(evdev.KEY_PAGEUP)},
	{"KEY_PAGEDOWN", int(evdev.KEY_PAGEDOWN)},
	{"KEY_INSERT", int(evdev.KEY_INSERT)},
	{"KEY_DELETE", int(evdev.KEY_DELETE)},

	{"KEY_MINUS", int(evdev.KEY_MINUS)},
	{"KEY_EQUAL", int(evdev.KEY_EQUAL)},
	{"KEY_LEFTBRACE", int(evdev.KEY_LEFTBRACE)},
	{"KEY_RIGHTBRACE", int(evdev.KEY_RIGHTBRACE)},
	{"KEY_BACKSLASH", int(evdev.KEY_BACKSLASH)},
	{"KEY_SEMICOLON", int(evdev.KEY_SEMICOLON)},
	{"KEY_APOSTROPHE", int(evdev.KEY_APOSTROPHE)},
	{"KEY_GRAVE", int(evdev.KEY_GRAVE)},
	{"KEY_COMMA", int(evdev.KEY_COMMA)},
	{"KEY_DOT", int(evdev.KEY_DOT)},
	{"KEY_SLASH", int(evdev.KEY_SLASH)},

	{"KEY_SYSRQ", int(evdev.KEY_SYSRQ)},
	{"KEY_PAUSE", int(evdev.KEY_PAUSE)},
	{"KEY_SCROLLLOCK", int(evdev.KEY_SCROLLLOCK)},
	{"KEY_NUMLOCK", int(evdev.KEY_NUMLOCK)},
	{"KEY_PRINT", int(evdev.KEY_PRINT)},

	{"KEY_VOLUMEUP", int(evdev.KEY_VOLUMEUP)},
	{"KEY_VOLUMEDOWN", int(evdev.KEY_VOLUMEDOWN)},
	{"KEY_MUTE", int(evdev.KEY_MUTE)},
	{"KEY_PLAYPAUSE", int(evdev.KEY_PLAYPAUSE)},
	{"KEY_NEXTSONG", int(evdev.KEY_NEXTSONG)},
	{"KEY_PREVIOUSSONG", int(evdev.KEY_PREVIOUSSONG)},
	{"KEY_STOPCD", int(evdev.KEY_STOPCD)},
}

// ButtonAliases are the bare words routed to the gamepad.
var ButtonAliases = []Named{
	{"A", int(evdev.BTN_SOUTH)},
	{"B", int(evdev.BTN_EAST)},
	{"X", int(evdev.BTN_WEST)},
	{"Y", int(evdev.BTN_NORTH)},
	{"START", int(evdev.BTN_START)},
	{"SELECT", int(evdev.BTN_SELECT)},
}

// KeyAliases are bare words resolved to keyboard keys.
var KeyAliases = []Named{
	{"ENTER", int(evdev.KEY_ENTER)},
	{"ESC", int(evdev.KEY_ESC)},
	{"SPACE", int(evdev.KEY_SPACE)},
	{"TAB", int(evdev.KEY_TAB)},
	{"BACKSPACE", int(evdev.KEY_BACKSPACE)},
	{"UP", int(evdev.KEY_UP)},
	{"DOWN", int(evdev.KEY_DOWN)},
	{"LEFT", int(evdev.KEY_LEFT)},
	{"RIGHT", int(evdev.KEY_RIGHT)},
}

// Keycodes are laid out by keyboard position, so letters, keypad digits
// and the upper function keys are not contiguous ranges.
var (
	letterKeys = [26]int{
		int(evdev.KEY_A), int(evdev.KEY_B), int(evdev.KEY_C), int(evdev.KEY_D), int(evdev.KEY_E),
		int(evdev.KEY_F), int(evdev.KEY_G), int(evdev.KEY_H), int(evdev.KEY_I), int(evdev.KEY_J),
		int(evdev.KEY_K), int(evdev.KEY_L), int(evdev.KEY_M), int(evdev.KEY_N), int(evdev.KEY_O),
		int(evdev.KEY_P), int(evdev.KEY_Q), int(evdev.KEY_R), int(evdev.KEY_S), int(evdev.KEY_T),
		int(evdev.KEY_U), int(evdev.KEY_V), int(evdev.KEY_W), int(evdev.KEY_X), int(evdev.KEY_Y),
		int(evdev.KEY_Z),
	}

	// digitKeys is indexed by digit value. KEY_1..KEY_9 form a run that
	// ends at KEY_0.
	digitKeys = [10]int{
		int(evdev.KEY_0), int(evdev.KEY_1), int(evdev.KEY_2), int(evdev.KEY_3), int(evdev.KEY_4),
		int(evdev.KEY_5), int(evdev.KEY_6), int(evdev.KEY_7), int(evdev.KEY_8), int(evdev.KEY_9),
	}

	functionKeys = [24]int{
		int(evdev.KEY_F1), int(evdev.KEY_F2), int(evdev.KEY_F3), int(evdev.KEY_F4),
		int(evdev.KEY_F5), int(evdev.KEY_F6), int(evdev.KEY_F7), int(evdev.KEY_F8),
		int(evdev.KEY_F9), int(evdev.KEY_F10), int(evdev.KEY_F11), int(evdev.KEY_F12),
		int(evdev.KEY_F13), int(evdev.KEY_F14), int(evdev.KEY_F15), int(evdev.KEY_F16),
		int(evdev.KEY_F17), int(evdev.KEY_F18), int(evdev.KEY_F19), int(evdev.KEY_F20),
		int(evdev.KEY_F21), int(evdev.KEY_F22), int(evdev.KEY_F23), int(evdev.KEY_F24),
	}

	keypadKeys = [10]int{
		int(evdev.KEY_KP0), int(evdev.KEY_KP1), int(evdev.KEY_KP2), int(evdev.KEY_KP3), int(evdev.KEY_KP4),
		int(evdev.KEY_KP5), int(evdev.KEY_KP6), int(evdev.KEY_KP7), int(evdev.KEY_KP8), int(evdev.KEY_KP9),
	}
)

// MaxCode is the largest EV_KEY code accepted as a raw numeric token.
const MaxCode = int(evdev.KEY_MAX)

// LetterKey returns the keycode of the i'th letter (0 = A).
func LetterKey(i int) int { return letterKeys[i] }

// DigitKey returns the keycode of digit d.
func DigitKey(d int) int { return digitKeys[d] }

// FunctionKey returns the keycode of F<n> for n in 1..24.
func FunctionKey(n int) int { return functionKeys[n-1] }

func lookupName(table []Named, name string) (int, bool) {
	for _, e := range table {
		if e.Name == name {
			return e.Code, true
		}
	}
	return 0, false
}

func lookupCode(table []Named, code int) (string, bool) {
	for _, e := range table {
		if e.Code == code {
			return e.Name, true
		}
	}
	return "", false
}

func indexOf(codes []int, code int) int {
	for i, c := range codes {
		if c == code {
			return i
		}
	}
	return -1
}
