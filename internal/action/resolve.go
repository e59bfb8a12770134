package action

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/holoplot/go-evdev"
)

// ErrUnknownToken is returned when a token does not name any action.
var ErrUnknownToken = errors.New("unknown action token")

// Resolve converts a mapping token into an Action. The token is trimmed and
// upper-cased first. Resolution order, first match wins:
//
//  1. HAT_UP, HAT_DOWN, HAT_LEFT, HAT_RIGHT
//  2. BTN_* names and the face-button aliases A, B, X, Y, START, SELECT
//     resolve to gamepad buttons. BTN_<d> is the numbered button BTN_0+d
//     and BTN_<nn> (two or more digits) is a raw button code.
//  3. Everything else is a keyboard key: single letters and digits, the
//     named key table and its aliases, KEY_<letter>, KEY_<digit>,
//     KEY_F1..KEY_F24, KEY_KP0..KEY_KP9, or a multi-digit raw keycode.
func Resolve(token string) (Action, error) {
	t := strings.ToUpper(strings.TrimSpace(token))
	if t == "" {
		return nil, fmt.Errorf("%w: empty token", ErrUnknownToken)
	}

	for i, name := range directionTokens {
		if t == name {
			return Hat{Dir: Direction(i)}, nil
		}
	}

	if _, alias := lookupName(ButtonAliases, t); alias || strings.HasPrefix(t, "BTN_") {
		code, ok := buttonCode(t)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownToken, token)
		}
		return Input{Device: Gamepad, Code: code, Source: t}, nil
	}

	code, ok := keyCode(t)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownToken, token)
	}
	return Input{Device: Keyboard, Code: code, Source: t}, nil
}

func buttonCode(t string) (int, bool) {
	if code, ok := lookupName(ButtonAliases, t); ok {
		return code, true
	}
	if code, ok := lookupName(Buttons, t); ok {
		return code, true
	}
	tail := strings.TrimPrefix(t, "BTN_")
	if !isDigits(tail) {
		return 0, false
	}
	if len(tail) == 1 {
		return int(evdev.BTN_0) + int(tail[0]-'0'), true
	}
	return rawCode(tail)
}

func keyCode(t string) (int, bool) {
	if isDigits(t) {
		if len(t) == 1 {
			return digitKeys[t[0]-'0'], true
		}
		return rawCode(t)
	}
	if code, ok := lookupName(KeyAliases, t); ok {
		return code, true
	}
	if len(t) == 1 && t[0] >= 'A' && t[0] <= 'Z' {
		return letterKeys[t[0]-'A'], true
	}
	if code, ok := lookupName(Keys, t); ok {
		return code, true
	}

	tail, ok := strings.CutPrefix(t, "KEY_")
	if !ok {
		return 0, false
	}
	switch {
	case len(tail) == 1 && tail[0] >= 'A' && tail[0] <= 'Z':
		return letterKeys[tail[0]-'A'], true
	case len(tail) == 1 && tail[0] >= '0' && tail[0] <= '9':
		return digitKeys[tail[0]-'0'], true
	case len(tail) >= 2 && tail[0] == 'F' && isDigits(tail[1:]):
		n, err := strconv.Atoi(tail[1:])
		if err != nil || n < 1 || n > len(functionKeys) {
			return 0, false
		}
		return functionKeys[n-1], true
	case len(tail) == 3 && strings.HasPrefix(tail, "KP") && isDigits(tail[2:]):
		return keypadKeys[tail[2]-'0'], true
	}
	return 0, false
}

func rawCode(digits string) (int, bool) {
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > MaxCode {
		return 0, false
	}
	return n, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Render returns the canonical token for a. Resolving the rendered token
// yields an action with the same device and code.
func Render(a Action) string {
	switch v := a.(type) {
	case Hat:
		return v.Dir.String()
	case Input:
		if v.Device == Gamepad {
			return renderButton(v.Code)
		}
		return renderKey(v.Code)
	default:
		return ""
	}
}

func renderButton(code int) string {
	if name, ok := lookupCode(Buttons, code); ok {
		return name
	}
	if d := code - int(evdev.BTN_0); d >= 0 && d <= 9 {
		return fmt.Sprintf("BTN_%d", d)
	}
	return fmt.Sprintf("BTN_%02d", code)
}

func renderKey(code int) string {
	if i := indexOf(letterKeys[:], code); i >= 0 {
		return "KEY_" + string(rune('A'+i))
	}
	if i := indexOf(digitKeys[:], code); i >= 0 {
		return "KEY_" + strconv.Itoa(i)
	}
	if name, ok := lookupCode(Keys, code); ok {
		return name
	}
	if i := indexOf(functionKeys[:], code); i >= 0 {
		return "KEY_F" + strconv.Itoa(i+1)
	}
	if i := indexOf(keypadKeys[:], code); i >= 0 {
		return "KEY_KP" + strconv.Itoa(i)
	}
	return fmt.Sprintf("%02d", code)
}

// CodeName returns the kernel name for an EV_KEY code, for log output.
func CodeName(code int) string {
	return evdev.CodeName(evdev.EV_KEY, evdev.EvCode(code))
}
