// Package platform wires the board's pins to the strip: the output
// channels, the IR receiver, the mode button and the console link.
package platform

import (
	"context"

	"ledstrip-go/platform/boards"
	"ledstrip-go/platform/edge"
	"ledstrip-go/services/strip"
	"ledstrip-go/x/timex"
)

// Inputs are where the board delivers what it receives.
type Inputs struct {
	Latch *strip.Latch // remote codes
	Press func()       // mode button pressed
}

// Board is the result of Setup.
type Board struct {
	Plan   boards.Plan
	Output strip.Output

	ir     func(in Inputs)
	button edge.Pin
}

// Start arms the IR receiver and the button. Button events are handled on
// their own goroutine until ctx is cancelled.
func (b *Board) Start(ctx context.Context, in Inputs) error {
	if b.ir != nil && in.Latch != nil {
		b.ir(in)
	}
	if b.button == nil || in.Press == nil {
		return nil
	}

	w := edge.New(4, 4)
	stop, err := w.Register("button", b.button, edge.Rising, timex.Ms(b.Plan.DebounceMs), b.Plan.ButtonActiveLow)
	if err != nil {
		return err
	}
	w.Start(ctx)
	go func() {
		defer stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.Events():
				println("[platform] button")
				in.Press()
			}
		}
	}()
	return nil
}
