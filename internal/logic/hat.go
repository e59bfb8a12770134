package logic

// HatDir indexes the four hat directions.
type HatDir int

const (
	HatUp HatDir = iota
	HatDown
	HatLeft
	HatRight
)

// Hat folds four direction buttons into a two-axis position.
type Hat struct {
	pressed [4]bool
	x, y    int
}

// Set records whether dir is held. It does not change the position until
// Recompute is called.
func (h *Hat) Set(dir HatDir, pressed bool) {
	if dir < HatUp || dir > HatRight {
		return
	}
	h.pressed[dir] = pressed
}

// Recompute derives the position from the held directions. Opposing
// directions cancel. changed is true when (x, y) differs from the last
// computed position.
func (h *Hat) Recompute() (x, y int, changed bool) {
	x = clampUnit(b2i(h.pressed[HatRight]) - b2i(h.pressed[HatLeft]))
	y = clampUnit(b2i(h.pressed[HatDown]) - b2i(h.pressed[HatUp]))
	changed = x != h.x || y != h.y
	h.x, h.y = x, y
	return x, y, changed
}

// Position returns the last computed position.
func (h *Hat) Position() (x, y int) {
	return h.x, h.y
}

// Pressed reports whether dir is held.
func (h *Hat) Pressed(dir HatDir) bool {
	if dir < HatUp || dir > HatRight {
		return false
	}
	return h.pressed[dir]
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

func clampUnit(v int) int {
	return min(max(v, -1), 1)
}
