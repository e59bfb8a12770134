//go:build linux

package main

import "golang.org/x/sys/unix"

// fifoMaxPriority is sched_get_priority_max(SCHED_FIFO) on Linux.
const fifoMaxPriority = 99

// setRealtime moves the process to SCHED_FIFO at maximum priority.
func setRealtime() error {
	attr := unix.SchedAttr{
		Size:     unix.SizeofSchedAttr,
		Policy:   unix.SCHED_FIFO,
		Priority: fifoMaxPriority,
	}
	return unix.SchedSetAttr(0, &attr, 0)
}
