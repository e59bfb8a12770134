package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sweeney/gpio2uinput/internal/action"
)

// ListOptionsCmd prints the mapping vocabulary.
type ListOptionsCmd struct {
	out io.Writer
}

func (c *ListOptionsCmd) Run() error {
	w := c.out
	if w == nil {
		w = os.Stdout
	}
	return writeOptions(w)
}

func names(table []action.Named) []string {
	out := make([]string, len(table))
	for i, n := range table {
		out[i] = n.Name
	}
	return out
}

func writeOptions(w io.Writer) error {
	var b strings.Builder

	b.WriteString("Mapping targets (left side of a map entry):\n")
	b.WriteString("  <offset>         GPIO line offset, e.g. 17\n")
	b.WriteString("  D2 .. D13        expander digital pins (with --i2c.dev)\n")
	b.WriteString("  I2C:D2 .. D13    same as bare D#\n\n")

	b.WriteString("HAT (gamepad hat switch):\n")
	b.WriteString("  HAT_UP, HAT_DOWN, HAT_LEFT, HAT_RIGHT\n\n")

	b.WriteString("BTN_* (gamepad buttons by name):\n")
	for _, n := range names(action.Buttons) {
		fmt.Fprintf(&b, "  %s\n", n)
	}

	b.WriteString("\nKEY_* (keyboard keys by name):\n")
	for _, n := range names(action.Keys) {
		fmt.Fprintf(&b, "  %s\n", n)
	}

	b.WriteString("\nKEY_* patterns:\n")
	b.WriteString("  KEY_A .. KEY_Z\n")
	b.WriteString("  KEY_0 .. KEY_9\n")
	b.WriteString("  KEY_F1 .. KEY_F24\n")
	b.WriteString("  KEY_KP0 .. KEY_KP9\n\n")

	b.WriteString("Aliases (gamepad):\n")
	fmt.Fprintf(&b, "  %s\n\n", strings.Join(names(action.ButtonAliases), ", "))

	b.WriteString("Aliases (keyboard):\n")
	fmt.Fprintf(&b, "  letters other than the gamepad aliases, 0..9, %s\n\n", strings.Join(names(action.KeyAliases), ", "))

	b.WriteString("Numeric raw code, two or more digits (keyboard):\n")
	b.WriteString("  e.g. 28   sends EV_KEY code 28 on the keyboard device\n")

	_, err := io.WriteString(w, b.String())
	return err
}
