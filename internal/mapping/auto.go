package mapping

import (
	"fmt"
	"strings"

	"github.com/holoplot/go-evdev"

	"github.com/sweeney/gpio2uinput/internal/action"
)

// AutoMode selects what unmapped lines are bound to.
type AutoMode int

const (
	AutoButtons AutoMode = iota
	AutoKeys
	AutoNone
)

// ParseAutoMode parses "buttons", "keys" or "none" (any case).
func ParseAutoMode(s string) (AutoMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buttons":
		return AutoButtons, nil
	case "keys":
		return AutoKeys, nil
	case "none":
		return AutoNone, nil
	default:
		return AutoNone, fmt.Errorf("bad auto mode %q (use buttons|keys|none)", s)
	}
}

func (m AutoMode) String() string {
	switch m {
	case AutoButtons:
		return "buttons"
	case AutoKeys:
		return "keys"
	default:
		return "none"
	}
}

// Source tokens recorded on auto-assigned inputs.
const (
	AutoButtonToken = "AUTO_BTN"
	AutoKeyToken    = "AUTO_KEY"
)

// MaxDraws bounds the allocator's sequence index. Past it the next
// candidate is taken even if its code is already in use.
const MaxDraws = 2000

var buttonOrder = []int{
	int(evdev.BTN_SOUTH), int(evdev.BTN_EAST), int(evdev.BTN_NORTH), int(evdev.BTN_WEST),
	int(evdev.BTN_TL), int(evdev.BTN_TR), int(evdev.BTN_TL2), int(evdev.BTN_TR2),
	int(evdev.BTN_SELECT), int(evdev.BTN_START), int(evdev.BTN_THUMBL), int(evdev.BTN_THUMBR),
	int(evdev.BTN_MODE),
}

// ButtonSequence returns the idx'th gamepad button in auto-assignment
// order: the face, shoulder and menu buttons, then BTN_0..BTN_9 cycling.
func ButtonSequence(idx int) int {
	if idx < len(buttonOrder) {
		return buttonOrder[idx]
	}
	return int(evdev.BTN_0) + (idx-len(buttonOrder))%10
}

// KeySequence returns the idx'th key in auto-assignment order: A..Z,
// then 0..9, then F1..F12, then letters again.
func KeySequence(idx int) int {
	if idx < 26 {
		return action.LetterKey(idx)
	}
	idx -= 26
	if idx < 10 {
		return action.DigitKey(idx)
	}
	idx -= 10
	if idx < 12 {
		return action.FunctionKey(idx + 1)
	}
	return action.LetterKey(idx % 26)
}

// Allocator hands out default actions for unmapped lines. The sequence
// index is shared by every line it fills and never resets.
type Allocator struct {
	mode        AutoMode
	next        int
	usedButtons map[int]bool
	usedKeys    map[int]bool
}

// NewAllocator returns an allocator that avoids every code already bound
// in t, across both sources.
func NewAllocator(mode AutoMode, t *Table) *Allocator {
	a := &Allocator{
		mode:        mode,
		usedButtons: map[int]bool{},
		usedKeys:    map[int]bool{},
	}
	t.Each(func(_ action.Channel, act action.Action) {
		a.markUsed(act)
	})
	return a
}

func (a *Allocator) markUsed(act action.Action) {
	in, ok := act.(action.Input)
	if !ok {
		return
	}
	if in.Device == action.Gamepad {
		a.usedButtons[in.Code] = true
	} else {
		a.usedKeys[in.Code] = true
	}
}

// Next draws the next action. It returns false in AutoNone mode.
func (a *Allocator) Next() (action.Action, bool) {
	var (
		seq    func(int) int
		used   map[int]bool
		device action.Device
		token  string
	)
	switch a.mode {
	case AutoButtons:
		seq, used, device, token = ButtonSequence, a.usedButtons, action.Gamepad, AutoButtonToken
	case AutoKeys:
		seq, used, device, token = KeySequence, a.usedKeys, action.Keyboard, AutoKeyToken
	default:
		return nil, false
	}

	var code int
	for {
		code = seq(a.next)
		a.next++
		if !used[code] {
			break
		}
		if a.next > MaxDraws {
			break
		}
	}
	used[code] = true
	return action.Input{Device: device, Code: code, Source: token}, true
}

// Fill binds every offset in offsets that has no edge binding in t and
// returns the offsets it assigned, in order.
func (a *Allocator) Fill(t *Table, offsets []int) []int {
	var filled []int
	for _, off := range offsets {
		if _, ok := t.Edge[off]; ok {
			continue
		}
		act, ok := a.Next()
		if !ok {
			continue
		}
		t.Set(action.Line(off), act)
		filled = append(filled, off)
	}
	return filled
}
