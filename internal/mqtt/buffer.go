package mqtt

import "slices"

// message is one rendered publish.
type message struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool

	lifecycle bool   // system topic notice
	axis      string // axis label for axis records, empty otherwise
}

// backlog holds messages while the broker is unreachable and replays them
// in order on reconnect.
//
// Axis records coalesce: a newer value for an axis replaces the pending one
// and moves to the back, so a replay ends on the latest stick position
// rather than every intermediate sample. When full, the oldest record is
// evicted first; lifecycle notices go only when nothing else is left, and a
// record arriving at a backlog of lifecycle notices is itself dropped.
//
// Not safe for concurrent use.
type backlog struct {
	msgs    []message
	limit   int
	evicted int
}

func newBacklog(limit int) *backlog {
	return &backlog{limit: limit}
}

// add queues m. It reports true on the first eviction since the last drain.
func (b *backlog) add(m message) (firstEviction bool) {
	if m.axis != "" {
		if i := slices.IndexFunc(b.msgs, func(p message) bool { return p.axis == m.axis }); i >= 0 {
			b.msgs = slices.Delete(b.msgs, i, i+1)
		}
	}
	if len(b.msgs) < b.limit {
		b.msgs = append(b.msgs, m)
		return false
	}

	victim := slices.IndexFunc(b.msgs, func(p message) bool { return !p.lifecycle })
	switch {
	case victim >= 0:
		b.msgs = slices.Delete(b.msgs, victim, victim+1)
	case m.lifecycle:
		b.msgs = b.msgs[1:]
	default:
		return b.evict()
	}
	b.msgs = append(b.msgs, m)
	return b.evict()
}

func (b *backlog) evict() bool {
	b.evicted++
	return b.evicted == 1
}

// drain empties the backlog, returning the pending messages oldest first
// and how many were evicted since the previous drain.
func (b *backlog) drain() ([]message, int) {
	msgs, evicted := b.msgs, b.evicted
	b.msgs = nil
	b.evicted = 0
	return msgs, evicted
}

func (b *backlog) len() int {
	return len(b.msgs)
}
