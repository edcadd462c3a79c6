// Package console runs a line-oriented command prompt for the strip over a
// serial link. The link is (re)opened from config/console and supervised
// with backoff; its health is published retained on console/state.
package console

import (
	"context"
	"encoding/json"
	"time"

	"ledstrip-go/bus"
	"ledstrip-go/errcode"
	"ledstrip-go/types"
	"ledstrip-go/x/timex"
)

var (
	topicConfig = bus.T("config", "console")
	topicState  = bus.T("console", "state")
)

// TopicState carries the retained types.LinkState of the console link.
func TopicState() bus.Topic { return topicState }

const (
	retryMin = 250 * time.Millisecond
	retryMax = 5 * time.Second
)

// Config is what config/console decodes into.
type Config struct {
	Transport TransportConfig `json:"transport"`
}

type Service struct {
	conn *bus.Connection
	link *supervised
}

// supervised is one running link goroutine.
type supervised struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (l *supervised) stop() {
	if l == nil {
		return
	}
	l.cancel()
	<-l.done
}

// Start subscribes to config/console and supervises the link until ctx ends.
func Start(ctx context.Context, conn *bus.Connection) *Service {
	s := &Service{conn: conn}
	go s.run(ctx, conn.Subscribe(topicConfig))
	return s
}

// run is the only goroutine that touches s.link.
func (s *Service) run(ctx context.Context, cfgSub *bus.Subscription) {
	defer s.conn.Unsubscribe(cfgSub)
	defer func() { s.link.stop() }()

	s.publishState(types.LinkIdle, "awaiting_config", nil)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-cfgSub.Channel():
			if !ok {
				s.publishState(types.LinkError, "config_subscription_closed", nil)
				return
			}
			cfg, err := decodeConfig(msg.Payload)
			if err != nil {
				s.publishState(types.LinkError, "config_decode_failed", err)
				continue
			}
			s.link.stop()
			s.link = s.spawn(ctx, cfg)
		}
	}
}

func (s *Service) spawn(parent context.Context, cfg Config) *supervised {
	ctx, cancel := context.WithCancel(parent)
	l := &supervised{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(l.done)
		s.superviseLink(ctx, cfg)
	}()
	return l
}

// superviseLink keeps one console session alive. A session ending with a nil
// error means ctx was cancelled; anything else is retried after a backoff.
func (s *Service) superviseLink(ctx context.Context, cfg Config) {
	tr, err := newTransport(cfg.Transport)
	if err != nil {
		s.publishState(types.LinkError, "transport_init_failed", err)
		return
	}

	var bo backoff
	for ctx.Err() == nil {
		rwc, err := tr.Open(ctx)
		status := "dial_failed_retrying"
		if err == nil {
			bo.reset()
			s.publishState(types.LinkUp, "link_established", nil)
			err = s.handleLink(ctx, rwc)
			_ = rwc.Close()
			if err == nil {
				return
			}
			status = "link_lost_retrying"
		}
		s.publishState(types.LinkDegraded, status, err)
		if !sleep(ctx, bo.next()) {
			return
		}
	}
}

func (s *Service) publishState(level types.Link, status string, err error) {
	st := types.LinkState{Level: level, Status: status, TS: timex.NowMs()}
	if err != nil {
		st.Error = err.Error()
		println("[console]", status+":", st.Error)
	}
	s.conn.Publish(s.conn.NewMessage(topicState, st, true))
}

// decodeConfig takes the payload the config service publishes (a decoded
// JSON object) as well as raw JSON text.
func decodeConfig(p any) (Config, error) {
	var cfg Config
	var raw []byte
	switch v := p.(type) {
	case Config:
		cfg = v
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return cfg, errcode.Wrap(errcode.InvalidPayload, "console config", err)
		}
		raw = b
	default:
		return cfg, errcode.InvalidPayload
	}
	if raw != nil {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return cfg, errcode.Wrap(errcode.InvalidPayload, "console config", err)
		}
	}
	if cfg.Transport.Type == "" {
		return cfg, &errcode.E{C: errcode.InvalidParams, Op: "console config", Msg: "missing transport type"}
	}
	return cfg, nil
}

// backoff doubles from retryMin up to retryMax. The zero value is ready.
type backoff struct{ cur time.Duration }

func (b *backoff) next() time.Duration {
	if b.cur == 0 {
		b.cur = retryMin
	}
	d := b.cur
	b.cur = min(2*b.cur, retryMax)
	return d
}

func (b *backoff) reset() { b.cur = 0 }

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
