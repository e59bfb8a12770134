// Package mapping holds the channel to action table built from a mapping
// file (or the built-in default) and the allocator that fills the gaps.
package mapping

import (
	"sort"

	"github.com/sweeney/gpio2uinput/internal/action"
)

// Table maps channels to actions, partitioned by source. Edge is keyed by
// GPIO line offset and Bus by expander pin number.
type Table struct {
	Edge map[int]action.Action
	Bus  map[int]action.Action
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		Edge: make(map[int]action.Action),
		Bus:  make(map[int]action.Action),
	}
}

// Default returns the mapping used when no mapping file is configured:
// a four-way hat plus a single south button.
func Default() *Table {
	t := NewTable()
	t.Set(action.Line(15), action.Hat{Dir: action.Up})
	t.Set(action.Line(18), action.Hat{Dir: action.Down})
	t.Set(action.Line(4), action.Hat{Dir: action.Left})
	t.Set(action.Line(14), action.Hat{Dir: action.Right})
	south, _ := action.Resolve("BTN_SOUTH")
	t.Set(action.Line(21), south)
	return t
}

// Set binds ch to a, replacing any earlier binding.
func (t *Table) Set(ch action.Channel, a action.Action) {
	if ch.Source == action.Bus {
		t.Bus[ch.ID] = a
		return
	}
	t.Edge[ch.ID] = a
}

// Lookup returns the action bound to ch.
func (t *Table) Lookup(ch action.Channel) (action.Action, bool) {
	var a action.Action
	var ok bool
	if ch.Source == action.Bus {
		a, ok = t.Bus[ch.ID]
	} else {
		a, ok = t.Edge[ch.ID]
	}
	return a, ok
}

// Len returns the number of bindings across both sources.
func (t *Table) Len() int {
	return len(t.Edge) + len(t.Bus)
}

// EdgeOffsets returns the mapped line offsets in ascending order.
func (t *Table) EdgeOffsets() []int {
	return sortedKeys(t.Edge)
}

// BusPins returns the mapped expander pins in ascending order.
func (t *Table) BusPins() []int {
	return sortedKeys(t.Bus)
}

// Each calls fn for every binding, edge lines first, each source in
// ascending channel order.
func (t *Table) Each(fn func(action.Channel, action.Action)) {
	for _, off := range t.EdgeOffsets() {
		fn(action.Line(off), t.Edge[off])
	}
	for _, pin := range t.BusPins() {
		fn(action.Pin(pin), t.Bus[pin])
	}
}

func sortedKeys(m map[int]action.Action) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Capabilities summarises what the virtual devices must advertise for a
// table.
type Capabilities struct {
	Gamepad  bool
	Hat      bool
	Buttons  []int
	Keyboard bool
	Keys     []int
}

// Capabilities collects the devices, hat and codes referenced by every
// binding in the table.
func (t *Table) Capabilities() Capabilities {
	var c Capabilities
	buttons := map[int]bool{}
	keys := map[int]bool{}

	t.Each(func(_ action.Channel, a action.Action) {
		switch v := a.(type) {
		case action.Hat:
			c.Gamepad = true
			c.Hat = true
		case action.Input:
			if v.Device == action.Gamepad {
				c.Gamepad = true
				buttons[v.Code] = true
			} else {
				c.Keyboard = true
				keys[v.Code] = true
			}
		}
	})

	c.Buttons = sortedSet(buttons)
	c.Keys = sortedSet(keys)
	return c
}

func sortedSet(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
