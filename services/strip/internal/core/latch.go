package core

import "sync/atomic"

const latchPending = uint64(1) << 32

// Latch holds at most one pending code. Offer is safe from interrupt
// context: it never blocks or allocates. While a code is pending, further
// offers are dropped and counted, like an IR receiver that has not been
// resumed yet.
type Latch struct {
	slot    atomic.Uint64
	dropped atomic.Uint32
}

// Offer reports false when the slot was already full.
func (l *Latch) Offer(code uint32) bool {
	if l.slot.CompareAndSwap(0, latchPending|uint64(code)) {
		return true
	}
	l.dropped.Add(1)
	return false
}

// Poll takes the pending code, if any.
func (l *Latch) Poll() (uint32, bool) {
	v := l.slot.Swap(0)
	if v&latchPending == 0 {
		return 0, false
	}
	return uint32(v), true
}

func (l *Latch) Dropped() uint32 { return l.dropped.Load() }
