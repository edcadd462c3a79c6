package timex

import (
	"time"

	"golang.org/x/exp/constraints"
)

// NowMs is the wall clock in Unix milliseconds, as carried in bus payloads.
func NowMs() int64 { return time.Now().UnixMilli() }

// Ms converts a millisecond count from config or a board plan.
func Ms[T constraints.Integer](n T) time.Duration { return time.Duration(n) * time.Millisecond }

// PeriodFromHz is the PWM period in nanoseconds; 0 Hz is treated as 1 Hz.
func PeriodFromHz(freqHz uint32) uint64 {
	if freqHz == 0 {
		freqHz = 1
	}
	return uint64(1_000_000_000 / uint64(freqHz))
}
