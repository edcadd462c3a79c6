package strip

import (
	"context"
	"time"

	"ledstrip-go/bus"
	"ledstrip-go/errcode"
	"ledstrip-go/services/strip/internal/core"
	"ledstrip-go/types"
	"ledstrip-go/x/conv"
	"ledstrip-go/x/timex"
)

// Re-exported so board code can feed and drive the loop.
type (
	Output     = core.Output
	OutputFunc = core.OutputFunc
	Source     = core.Source
	Latch      = core.Latch
)

// Service owns the strip state and runs the control loop on its own
// goroutine. Every other producer reaches the loop through the Latch.
type Service struct {
	conn  *bus.Connection
	latch *Latch
	loop  *core.Loop

	last      types.StripState // last published, Ticks and TS zeroed
	published bool

	print func(string) // serial log; println when nil
}

// New builds a service writing to out. A nil latch gets a private one.
func New(out Output, latch *Latch) *Service {
	if latch == nil {
		latch = &Latch{}
	}
	s := &Service{latch: latch}
	ctl := core.NewController(core.DefaultCodes(), core.DiagFunc(s.diag))
	src := rxSource{src: latch, log: s.logLine}
	s.loop = core.NewLoop(core.NewState(core.ModeRainbow), ctl, core.NewEngine(), src, out)
	return s
}

func (s *Service) Latch() *Latch { return s.latch }

func (s *Service) logLine(l string) {
	if s.print != nil {
		s.print(l)
		return
	}
	println(l)
}

// rxSource logs every code the loop takes, whichever producer sent it.
type rxSource struct {
	src Source
	log func(string)
}

func (r rxSource) Poll() (uint32, bool) {
	code, ok := r.src.Poll()
	if ok {
		r.log("[strip] rx " + conv.Hex32(code))
	}
	return code, ok
}

// Start subscribes before returning so no early request is lost, then runs
// the loop until ctx is cancelled.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	if conn == nil {
		return errcode.InvalidParams
	}
	s.conn = conn
	cfgSub := conn.Subscribe(topicConfig())
	ctrlSub := conn.Subscribe(ctrlWildcard())
	go s.run(ctx, cfgSub, ctrlSub)
	return nil
}

func (s *Service) run(ctx context.Context, cfgSub, ctrlSub *bus.Subscription) {
	defer s.conn.Unsubscribe(cfgSub)
	defer s.conn.Unsubscribe(ctrlSub)

	println("[strip] started in", s.loop.State().Mode().String(), "mode")

	tick := time.NewTimer(0)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("[strip] stopping")
			return

		case msg, ok := <-cfgSub.Channel():
			if !ok {
				return
			}
			cfg, err := decodeConfig(msg.Payload)
			if err != nil {
				println("[strip] config rejected:", err.Error())
				continue
			}
			s.applyConfig(cfg)
			resetTimer(tick, s.loop.Engine().Pacing(s.loop.State().Mode()))

		case msg, ok := <-ctrlSub.Channel():
			if !ok {
				return
			}
			s.handleControl(msg)

		case <-tick.C:
			next := s.loop.Tick()
			s.publishState()
			tick.Reset(next)
		}
	}
}

// handleControl never blocks: commands are only queued for the next tick.
func (s *Service) handleControl(msg *bus.Message) {
	verb, _ := msg.Topic.At(2).(string)
	switch verb {
	case VerbCommand:
		code, err := s.resolve(msg.Payload)
		if err != nil {
			s.replyErr(msg, errcode.Of(err))
			return
		}
		if !s.latch.Offer(code) {
			s.replyErr(msg, errcode.Busy)
			return
		}
		s.replyOK(msg)
	case VerbRead:
		if msg.CanReply() {
			s.conn.Reply(msg, s.snapshot(), false)
		}
	default:
		s.replyErr(msg, errcode.Unsupported)
	}
}

// resolve turns a control payload into a remote code. Names go through the
// live code table so rebinding from config applies to them too. Raw codes
// are passed on as-is, unknown ones included.
func (s *Service) resolve(p any) (uint32, error) {
	var c types.StripCommand
	switch v := p.(type) {
	case types.StripCommand:
		c = v
	case *types.StripCommand:
		if v == nil {
			return 0, errcode.InvalidPayload
		}
		c = *v
	case string:
		c.Name = v
	case uint32:
		c.Code = v
	default:
		return 0, errcode.InvalidPayload
	}

	if c.Name == "" {
		if c.Code == 0 {
			return 0, errcode.InvalidPayload
		}
		return c.Code, nil
	}
	cmd, ok := core.ParseCommand(c.Name)
	if !ok {
		return 0, errcode.UnknownCommand
	}
	code, ok := s.loop.Controller().Codes().Code(cmd)
	if !ok {
		return 0, errcode.UnknownCommand
	}
	return code, nil
}

func (s *Service) snapshot() types.StripState {
	st := s.loop.State()
	out := s.loop.Last()
	stats := s.loop.Stats()
	return types.StripState{
		Mode:          st.Mode().String(),
		Power:         st.Power(),
		BrightnessPct: pct(st.Brightness()),
		ScalarPct:     [3]uint8{pct(st.Scalar(core.Red)), pct(st.Scalar(core.Green)), pct(st.Scalar(core.Blue))},
		RGB:           [3]uint8{out.R, out.G, out.B},
		Ticks:         stats.Ticks,
		Commands:      stats.Commands,
		Dropped:       s.latch.Dropped(),
		TS:            timex.NowMs(),
	}
}

// publishState publishes retained strip/state when anything but the tick
// counter and timestamp moved.
func (s *Service) publishState() {
	st := s.snapshot()
	cmp := st
	cmp.Ticks, cmp.TS = 0, 0
	if s.published && cmp == s.last {
		return
	}
	s.last, s.published = cmp, true
	s.conn.Publish(s.conn.NewMessage(TopicState(), st, true))
}

func (s *Service) diag(msg string) {
	println("[strip]", msg)
	s.conn.Publish(s.conn.NewMessage(TopicDiag(), msg, false))
}

func pct(f float32) uint8 { return uint8(f*100 + 0.5) }

// DefaultCode is the built-in remote code for a command name.
func DefaultCode(name string) (uint32, bool) {
	cmd, ok := core.ParseCommand(name)
	if !ok {
		return 0, false
	}
	return core.DefaultCodes().Code(cmd)
}

// Commands lists the command names accepted on strip/control/command.
func Commands() []string { return core.Names() }

// Modes lists the animation mode names in cycle order.
func Modes() []string {
	return []string{core.ModeRainbow.String(), core.ModeFade.String(), core.ModeStatic.String()}
}
