package core

// Source yields at most one pending remote code per call and never blocks.
type Source interface {
	Poll() (code uint32, ok bool)
}

// Output applies a triple to the physical channels. Fire-and-forget:
// the loop neither retries nor waits for confirmation.
type Output interface {
	Write(r, g, b uint8)
}

// Diagnostics receives human-readable status lines. It must not block.
type Diagnostics interface {
	Diag(msg string)
}

// DiagFunc adapts a function to Diagnostics.
type DiagFunc func(msg string)

func (f DiagFunc) Diag(msg string) { f(msg) }

// OutputFunc adapts a function to Output.
type OutputFunc func(r, g, b uint8)

func (f OutputFunc) Write(r, g, b uint8) { f(r, g, b) }
