package strip

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"

	"ledstrip-go/bus"
	"ledstrip-go/errcode"
	"ledstrip-go/services/strip/internal/core"
	"ledstrip-go/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type rgb struct{ r, g, b uint8 }

func startService(t *testing.T) (*bus.Connection, chan rgb) {
	t.Helper()
	writes := make(chan rgb, 256)
	out := OutputFunc(func(r, g, b uint8) {
		select {
		case writes <- rgb{r, g, b}:
		default:
		}
	})

	b := bus.NewBus(16)
	svc := New(out, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := svc.Start(ctx, b.NewConnection("strip")); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return b.NewConnection("test"), writes
}

func request(t *testing.T, conn *bus.Connection, verb string, payload any) any {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	rep, err := conn.RequestWait(ctx, conn.NewMessage(TopicControl(verb), payload, false))
	if err != nil {
		t.Fatalf("%s: %v", verb, err)
	}
	return rep.Payload
}

func waitState(t *testing.T, sub *bus.Subscription, pred func(types.StripState) bool) types.StripState {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case m := <-sub.Channel():
			st, ok := m.Payload.(types.StripState)
			if !ok {
				t.Fatalf("state payload %T", m.Payload)
			}
			if pred(st) {
				return st
			}
		case <-deadline:
			t.Fatal("timeout waiting for state")
		}
	}
}

func TestService_FirstTickIsRainbowRed(t *testing.T) {
	conn, writes := startService(t)

	select {
	case w := <-writes:
		if w != (rgb{255, 0, 0}) {
			t.Fatalf("first write = %+v, want red", w)
		}
	case <-time.After(time.Second):
		t.Fatal("no output written")
	}

	sub := conn.Subscribe(TopicState())
	defer conn.Unsubscribe(sub)
	st := waitState(t, sub, func(types.StripState) bool { return true })
	if st.Mode != "rainbow" || !st.Power || st.BrightnessPct != 100 {
		t.Fatalf("state = %+v", st)
	}
	if st.ScalarPct != [3]uint8{100, 100, 100} {
		t.Fatalf("scalars = %v", st.ScalarPct)
	}
}

func TestService_CommandByNameChangesMode(t *testing.T) {
	conn, _ := startService(t)
	sub := conn.Subscribe(TopicState())
	defer conn.Unsubscribe(sub)

	rep := request(t, conn, VerbCommand, types.StripCommand{Name: "static"})
	if r, ok := rep.(types.OKReply); !ok || !r.OK {
		t.Fatalf("reply = %#v", rep)
	}
	st := waitState(t, sub, func(s types.StripState) bool { return s.Mode == "static" })
	if st.RGB != [3]uint8{255, 255, 255} {
		t.Fatalf("static rgb = %v", st.RGB)
	}
	if st.Commands != 1 {
		t.Fatalf("commands = %d", st.Commands)
	}
}

func TestService_DiagPublished(t *testing.T) {
	conn, _ := startService(t)
	diag := conn.Subscribe(TopicDiag())
	defer conn.Unsubscribe(diag)

	request(t, conn, VerbCommand, "power")
	select {
	case m := <-diag.Channel():
		if m.Payload != "power off" {
			t.Fatalf("diag = %v", m.Payload)
		}
		if m.Retained {
			t.Fatal("diag should not be retained")
		}
	case <-time.After(time.Second):
		t.Fatal("no diag")
	}
}

func TestService_RawCodeUnknownStillAccepted(t *testing.T) {
	conn, _ := startService(t)
	diag := conn.Subscribe(TopicDiag())
	defer conn.Unsubscribe(diag)

	rep := request(t, conn, VerbCommand, types.StripCommand{Code: 0x12345678})
	if _, ok := rep.(types.OKReply); !ok {
		t.Fatalf("reply = %#v", rep)
	}
	select {
	case m := <-diag.Channel():
		if m.Payload != "unrecognized 12345678" {
			t.Fatalf("diag = %v", m.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("no diag")
	}
}

func TestService_ControlErrors(t *testing.T) {
	conn, _ := startService(t)

	cases := []struct {
		verb    string
		payload any
		want    errcode.Code
	}{
		{VerbCommand, types.StripCommand{Name: "warp"}, errcode.UnknownCommand},
		{VerbCommand, types.StripCommand{}, errcode.InvalidPayload},
		{VerbCommand, 3.5, errcode.InvalidPayload},
		{"blink", nil, errcode.Unsupported},
	}
	for _, tc := range cases {
		rep := request(t, conn, tc.verb, tc.payload)
		er, ok := rep.(types.ErrorReply)
		if !ok || er.OK || er.Error != string(tc.want) {
			t.Fatalf("%s %v: reply = %#v, want %s", tc.verb, tc.payload, rep, tc.want)
		}
	}
}

func TestService_Read(t *testing.T) {
	conn, _ := startService(t)
	rep := request(t, conn, VerbRead, nil)
	st, ok := rep.(types.StripState)
	if !ok {
		t.Fatalf("reply = %#v", rep)
	}
	if st.Mode != "rainbow" || st.TS == 0 {
		t.Fatalf("state = %+v", st)
	}
}

func TestConfig_RebindsCodesAndPacing(t *testing.T) {
	s := New(nil, nil)
	cfg, err := decodeConfig(map[string]any{
		"fade_ms": float64(25),
		"codes": map[string]any{
			"power": "0x11223344",
			"warp":  "0x01",
			"next":  "zz",
		},
	})
	if err != nil {
		t.Fatalf("decodeConfig: %v", err)
	}
	s.applyConfig(cfg)

	if got := s.loop.Engine().Pacing(core.ModeFade); got != 25*time.Millisecond {
		t.Fatalf("fade pacing = %v", got)
	}
	if got := s.loop.Engine().Pacing(core.ModeStatic); got != core.DefaultStaticPace {
		t.Fatalf("static pacing changed to %v", got)
	}
	if code, err := s.resolve("power"); err != nil || code != 0x11223344 {
		t.Fatalf("power -> %x, %v", code, err)
	}
	if code, err := s.resolve("next"); err != nil || code != 0xEF1010EF {
		t.Fatalf("next -> %x, %v", code, err)
	}
}

func TestDecodeConfig_Forms(t *testing.T) {
	if _, err := decodeConfig(`{"static_ms":50}`); err != nil {
		t.Fatalf("string: %v", err)
	}
	if cfg, err := decodeConfig([]byte(`{"rainbow_ms":70}`)); err != nil || cfg.RainbowMs != 70 {
		t.Fatalf("bytes: %+v %v", cfg, err)
	}
	if _, err := decodeConfig(`{`); errcode.Of(err) != errcode.InvalidPayload {
		t.Fatalf("bad json: %v", err)
	}
	if _, err := decodeConfig(42); errcode.Of(err) != errcode.InvalidPayload {
		t.Fatalf("int: %v", err)
	}
}

func TestDefaultCode(t *testing.T) {
	if c, ok := DefaultCode("next"); !ok || c != 0xEF1010EF {
		t.Fatalf("next = %x %v", c, ok)
	}
	if _, ok := DefaultCode("nope"); ok {
		t.Fatal("unknown name resolved")
	}
	if len(Commands()) != 15 {
		t.Fatalf("commands = %v", Commands())
	}
}

func TestService_LogsEveryReceivedCode(t *testing.T) {
	lines := make(chan string, 8)
	svc := New(nil, nil)
	svc.print = func(l string) { lines <- l }

	b := bus.NewBus(16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := svc.Start(ctx, b.NewConnection("strip")); err != nil {
		t.Fatal(err)
	}
	conn := b.NewConnection("test")

	cases := []struct {
		cmd  types.StripCommand
		want string
	}{
		{types.StripCommand{Name: "power"}, "[strip] rx EF1000FF"},
		{types.StripCommand{Code: 0x12345678}, "[strip] rx 12345678"},
	}
	for _, c := range cases {
		request(t, conn, VerbCommand, c.cmd)
		select {
		case got := <-lines:
			if got != c.want {
				t.Fatalf("log = %q, want %q", got, c.want)
			}
		case <-time.After(time.Second):
			t.Fatalf("no log line for %+v", c.cmd)
		}
	}
}
