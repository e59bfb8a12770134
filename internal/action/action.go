// Package action resolves mapping tokens into the logical actions that are
// dispatched to the virtual gamepad and keyboard.
//
// An Action is either a Hat direction or a discrete Input (a button on the
// gamepad or a key on the keyboard). Tokens are case-insensitive; see
// Resolve for the resolution order.
package action

import "fmt"

// Device identifies the virtual device an Input is delivered to.
type Device int

const (
	Gamepad Device = iota
	Keyboard
)

func (d Device) String() string {
	switch d {
	case Gamepad:
		return "gamepad"
	case Keyboard:
		return "keyboard"
	default:
		return fmt.Sprintf("device(%d)", int(d))
	}
}

// Direction is one of the four hat directions.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

var directionTokens = [...]string{
	Up:    "HAT_UP",
	Down:  "HAT_DOWN",
	Left:  "HAT_LEFT",
	Right: "HAT_RIGHT",
}

func (d Direction) String() string {
	if d < Up || d > Right {
		return fmt.Sprintf("direction(%d)", int(d))
	}
	return directionTokens[d]
}

// Action is the result of resolving a mapping token. The only
// implementations are Hat and Input.
type Action interface {
	// Token returns the token the action was resolved from, for diagnostics.
	Token() string
	isAction()
}

// Hat presses or releases one direction of the gamepad hat.
type Hat struct {
	Dir Direction
}

// Token returns the hat keyword.
func (h Hat) Token() string { return h.Dir.String() }

func (Hat) isAction() {}

// Input is a discrete button or key with an EV_KEY code.
type Input struct {
	Device Device
	Code   int
	// Source is the token this input was resolved from. It is carried for
	// logging only and never consulted when dispatching.
	Source string
}

// Token returns the source token.
func (in Input) Token() string { return in.Source }

func (Input) isAction() {}
