//go:build !rp2040

package platform

import (
	"bytes"
	"context"
	"io"
	"os"
	"sync"

	"github.com/lucasb-eyer/go-colorful"

	"ledstrip-go/platform/boards"
	"ledstrip-go/services/console"
)

// Setup on a host has no pins: output is logged and the console runs on
// stdin/stdout through the "stdio" transport.
func Setup() (*Board, error) {
	console.RegisterTransport("stdio", func(console.TransportConfig) (console.Transport, error) {
		return console.DialFunc(func(context.Context) (io.ReadWriteCloser, error) {
			return newStdioLink(stdinChunks(), os.Stdout), nil
		}), nil
	})
	plan := boards.Plan{Name: "host", ButtonPin: -1}
	return &Board{Plan: plan, Output: &logOutput{}}, nil
}

// logOutput prints only when the colour changes.
type logOutput struct {
	last [3]uint8
	seen bool
}

func (o *logOutput) Write(r, g, b uint8) {
	cur := [3]uint8{r, g, b}
	if o.seen && cur == o.last {
		return
	}
	o.last, o.seen = cur, true
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	println("[out]", c.Hex())
}

// stdinChunks is the one reader of os.Stdin. Every console session reads
// through it, so a finished session cannot keep consuming input.
var stdinChunks = sync.OnceValue(func() <-chan []byte { return pump(os.Stdin) })

func pump(r io.Reader) <-chan []byte {
	ch := make(chan []byte)
	go func() {
		defer close(ch)
		buf := make([]byte, 256)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				ch <- bytes.Clone(buf[:n])
			}
			if err != nil {
				return
			}
		}
	}()
	return ch
}

// stdioLink is one session's view of the shared stdin. Close unblocks a
// pending Read with io.EOF.
type stdioLink struct {
	in   <-chan []byte
	out  io.Writer
	rest []byte

	done chan struct{}
	once sync.Once
}

func newStdioLink(in <-chan []byte, out io.Writer) *stdioLink {
	return &stdioLink{in: in, out: out, done: make(chan struct{})}
}

func (l *stdioLink) Read(p []byte) (int, error) {
	if len(l.rest) == 0 {
		select {
		case <-l.done:
			return 0, io.EOF
		case b, ok := <-l.in:
			if !ok {
				return 0, io.EOF
			}
			l.rest = b
		}
	}
	n := copy(p, l.rest)
	l.rest = l.rest[n:]
	return n, nil
}

func (l *stdioLink) Write(p []byte) (int, error) { return l.out.Write(p) }

func (l *stdioLink) Close() error {
	l.once.Do(func() { close(l.done) })
	return nil
}
