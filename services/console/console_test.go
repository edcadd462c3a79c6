package console

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	"ledstrip-go/bus"
	"ledstrip-go/services/strip"
	"ledstrip-go/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// peer is the far end of a piped link.
type peer struct {
	conn  net.Conn
	lines chan string
}

func newPeer(rc net.Conn) *peer {
	p := &peer{conn: rc, lines: make(chan string, 256)}
	go func() {
		sc := bufio.NewScanner(rc)
		for sc.Scan() {
			select {
			case p.lines <- strings.TrimRight(sc.Text(), "\r"):
			default:
			}
		}
	}()
	return p
}

func (p *peer) send(t *testing.T, line string) {
	t.Helper()
	_ = p.conn.SetWriteDeadline(time.Now().Add(time.Second))
	if _, err := io.WriteString(p.conn, line+"\n"); err != nil {
		t.Fatalf("write %q: %v", line, err)
	}
}

// expect reads lines until one satisfies pred.
func (p *peer) expect(t *testing.T, what string, pred func(string) bool) string {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case l := <-p.lines:
			if pred(l) {
				return l
			}
		case <-deadline:
			t.Fatalf("timeout waiting for %s", what)
		}
	}
}

// expectAll waits until every wanted line was seen, in any order.
func (p *peer) expectAll(t *testing.T, want ...string) {
	t.Helper()
	left := map[string]bool{}
	for _, w := range want {
		left[w] = true
	}
	deadline := time.After(2 * time.Second)
	for len(left) > 0 {
		select {
		case l := <-p.lines:
			delete(left, l)
		case <-deadline:
			t.Fatalf("timeout; still waiting for %v", left)
		}
	}
}

func eq(want string) func(string) bool { return func(l string) bool { return l == want } }

func nextState(t *testing.T, sub *bus.Subscription, timeout time.Duration) types.LinkState {
	t.Helper()
	select {
	case m := <-sub.Channel():
		st, ok := m.Payload.(types.LinkState)
		if !ok {
			t.Fatalf("state payload %T", m.Payload)
		}
		return st
	case <-time.After(timeout):
		t.Fatal("timeout waiting for console state")
	}
	return types.LinkState{}
}

func assertLevelStatus(t *testing.T, st types.LinkState, level types.Link, status string) {
	t.Helper()
	if st.Level != level || st.Status != status {
		t.Fatalf("state = %s/%s, want %s/%s (%s)", st.Level, st.Status, level, status, st.Error)
	}
}

// setup starts a strip service and the console with a piped UART dialler.
func setup(t *testing.T) (*bus.Connection, *bus.Subscription, chan *peer) {
	t.Helper()
	b := bus.NewBus(16)
	conn := b.NewConnection("console_test")

	prevDial := UARTDial
	t.Cleanup(func() { UARTDial = prevDial })
	peers := make(chan *peer, 4)
	UARTDial = func(ctx context.Context, u UARTConfig) (io.ReadWriteCloser, error) {
		if u.Baud != 115200 {
			t.Errorf("baud = %d", u.Baud)
		}
		lc, rc := net.Pipe()
		peers <- newPeer(rc)
		return lc, nil
	}

	stateSub := conn.Subscribe(TopicState())
	t.Cleanup(func() { conn.Unsubscribe(stateSub) })

	// Registered last so it runs first.
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	if err := strip.New(nil, nil).Start(ctx, b.NewConnection("strip")); err != nil {
		t.Fatal(err)
	}
	Start(ctx, b.NewConnection("console"))
	return conn, stateSub, peers
}

func publishUARTConfig(conn *bus.Connection) {
	cfg := `{"transport":{"type":"uart","uart":{"baud":115200,"rx_pin":1,"tx_pin":0}}}`
	conn.Publish(conn.NewMessage(bus.T("config", "console"), cfg, true))
}

func TestConsole_LinkUpAndCommands(t *testing.T) {
	conn, stateSub, peers := setup(t)

	assertLevelStatus(t, nextState(t, stateSub, 500*time.Millisecond), types.LinkIdle, "awaiting_config")
	publishUARTConfig(conn)
	assertLevelStatus(t, nextState(t, stateSub, time.Second), types.LinkUp, "link_established")

	p := <-peers
	p.expect(t, "banner", func(l string) bool { return strings.HasPrefix(l, "ledstrip console") })

	// Each command is applied on a later tick than its reply, so the diag
	// line confirms the slot is free again.
	p.send(t, "next")
	p.expectAll(t, "ok", "diag: mode fade")

	p.send(t, `mode "static"`)
	p.expectAll(t, "ok", "diag: mode static")

	p.send(t, "code 0xEF1000FF")
	p.expectAll(t, "ok", "diag: power off")

	p.send(t, "state")
	st := p.expect(t, "state line", func(l string) bool { return strings.HasPrefix(l, "mode=") })
	if !strings.Contains(st, "mode=static power=off") {
		t.Fatalf("state line = %q", st)
	}
}

func TestConsole_Errors(t *testing.T) {
	conn, stateSub, peers := setup(t)
	_ = nextState(t, stateSub, 500*time.Millisecond)
	publishUARTConfig(conn)
	_ = nextState(t, stateSub, time.Second)
	p := <-peers

	cases := []struct{ in, want string }{
		{"warp", "error: unknown_command"},
		{"mode disco", "error: unknown mode disco"},
		{"code xyz", "error: bad hex xyz"},
		{"code", "error: usage: code <hex>"},
		{"next now", "error: next takes no arguments"},
	}
	for _, tc := range cases {
		p.send(t, tc.in)
		p.expect(t, tc.want, eq(tc.want))
	}

	p.send(t, `mode "static`)
	p.expect(t, "shlex error", func(l string) bool { return strings.HasPrefix(l, "error: ") })

	p.send(t, "help")
	p.expect(t, "help", func(l string) bool {
		return strings.HasPrefix(l, "commands: power next prev reset")
	})
}

func TestConsole_LinkLossRetries(t *testing.T) {
	conn, stateSub, peers := setup(t)
	_ = nextState(t, stateSub, 500*time.Millisecond)
	publishUARTConfig(conn)
	assertLevelStatus(t, nextState(t, stateSub, time.Second), types.LinkUp, "link_established")

	p := <-peers
	_ = p.conn.Close()

	assertLevelStatus(t, nextState(t, stateSub, time.Second), types.LinkDegraded, "link_lost_retrying")
	assertLevelStatus(t, nextState(t, stateSub, time.Second), types.LinkUp, "link_established")
	<-peers
}

func TestConsole_UnknownTransportYieldsErrorState(t *testing.T) {
	conn, stateSub, _ := setup(t)
	_ = nextState(t, stateSub, 500*time.Millisecond)

	conn.Publish(conn.NewMessage(bus.T("config", "console"), `{"transport":{"type":"bogus"}}`, false))
	assertLevelStatus(t, nextState(t, stateSub, time.Second), types.LinkError, "transport_init_failed")
}

func TestConsole_RegisteredTransport(t *testing.T) {
	conn, stateSub, _ := setup(t)
	_ = nextState(t, stateSub, 500*time.Millisecond)

	peers := make(chan *peer, 1)
	RegisterTransport("pipe", func(TransportConfig) (Transport, error) {
		return DialFunc(func(context.Context) (io.ReadWriteCloser, error) {
			lc, rc := net.Pipe()
			peers <- newPeer(rc)
			return lc, nil
		}), nil
	})
	t.Cleanup(func() { unregisterTransport("pipe") })

	conn.Publish(conn.NewMessage(bus.T("config", "console"), map[string]any{
		"transport": map[string]any{"type": "pipe"},
	}, false))
	assertLevelStatus(t, nextState(t, stateSub, time.Second), types.LinkUp, "link_established")

	p := <-peers
	p.send(t, "reset")
	p.expect(t, "ok", eq("ok"))
}

func TestDecodeConfig(t *testing.T) {
	if _, err := decodeConfig(`{"transport":{}}`); err == nil {
		t.Fatal("missing type accepted")
	}
	if _, err := decodeConfig(7); err == nil {
		t.Fatal("int accepted")
	}
	cfg, err := decodeConfig([]byte(`{"transport":{"type":"uart","uart":{"baud":9600}}}`))
	if err != nil || cfg.Transport.UART == nil || cfg.Transport.UART.Baud != 9600 {
		t.Fatalf("cfg = %+v, %v", cfg, err)
	}
}

func TestBackoff(t *testing.T) {
	var bo backoff
	want := []time.Duration{250, 500, 1000, 2000, 4000, 5000, 5000}
	for i, w := range want {
		if got := bo.next(); got != w*time.Millisecond {
			t.Fatalf("step %d = %v, want %v", i, got, w*time.Millisecond)
		}
	}
	bo.reset()
	if got := bo.next(); got != retryMin {
		t.Fatalf("after reset = %v", got)
	}
}

type nopCloseRW struct {
	io.Reader
	io.Writer
}

func (nopCloseRW) Close() error { return nil }

// A transport whose Close cannot interrupt a pending read must not let a
// finished session run the next line.
func TestSession_EndedSessionIgnoresLateLine(t *testing.T) {
	b := bus.NewBus(16)
	watch := b.NewConnection("watch")
	ctrl := watch.Subscribe(bus.T("strip", "control", "+"))
	defer watch.Unsubscribe(ctrl)

	pr, pw := io.Pipe()
	defer pw.Close()
	s := &Service{conn: b.NewConnection("console")}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.handleLink(ctx, nopCloseRW{Reader: pr, Writer: io.Discard}) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("handleLink = %v, want nil on cancel", err)
		}
	case <-time.After(time.Second):
		t.Fatal("handleLink did not return")
	}

	if _, err := pw.Write([]byte("power\n")); err != nil {
		t.Fatal(err)
	}
	select {
	case m := <-ctrl.Channel():
		t.Fatalf("stale session sent %v %#v", m.Topic, m.Payload)
	case <-time.After(50 * time.Millisecond):
	}
}
