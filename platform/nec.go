package platform

import (
	"math/bits"

	"ledstrip-go/services/strip"
)

// NECCode converts a frame as clocked off the wire (first bit in bit 0)
// into the conventional MSB-first form, e.g. 0xEF1010EF.
func NECCode(wire uint32) uint32 { return bits.Reverse32(wire) }

// remoteFeed filters repeat frames and offers the rest to the latch.
// It runs in interrupt context.
type remoteFeed struct {
	latch *strip.Latch
}

func (f remoteFeed) frame(wire uint32, repeat bool) {
	if repeat {
		return
	}
	f.latch.Offer(NECCode(wire))
}
