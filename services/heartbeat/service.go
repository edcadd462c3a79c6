package heartbeat

import (
	"context"
	"time"

	"ledstrip-go/bus"
	"ledstrip-go/services/strip"
	"ledstrip-go/types"
	"ledstrip-go/x/conv"
)

var topicConfigHeartbeat = bus.T("config", "heartbeat")

const defaultInterval = 5 * time.Second

// Service prints one status line per interval with the latest strip state.
type Service struct {
	// Print defaults to println.
	Print func(line string)
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection, cfgSub, stateSub *bus.Subscription) {
	defer conn.Unsubscribe(cfgSub)
	defer conn.Unsubscribe(stateSub)

	tick := time.NewTicker(defaultInterval)
	defer tick.Stop()

	var last types.StripState
	seen := false

	for {
		select {
		case <-ctx.Done():
			s.print("[heartbeat] stopping")
			return
		case <-tick.C:
			if !seen {
				s.print("[heartbeat] waiting for strip")
				continue
			}
			s.print(Line(last))
		case msg, ok := <-stateSub.Channel():
			if !ok {
				return
			}
			if st, ok := msg.Payload.(types.StripState); ok {
				last, seen = st, true
			}
		case msg, ok := <-cfgSub.Channel():
			if !ok {
				return
			}
			if m, ok := msg.Payload.(map[string]any); ok {
				if iv, ok := m["interval"].(float64); ok && iv > 0 {
					tick.Reset(time.Duration(iv * float64(time.Second)))
					s.print("[heartbeat] interval " + conv.Dec(int64(iv*1000)) + "ms")
				}
			}
		}
	}
}

// Line renders a state as one heartbeat line.
func Line(st types.StripState) string { return "[heartbeat] " + st.String() }

func (s *Service) print(line string) {
	if s.Print != nil {
		s.Print(line)
		return
	}
	println(line)
}

// Start the heartbeat service. Subscriptions are taken before returning.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	stateSub := conn.Subscribe(strip.TopicState())
	go s.serviceLoop(ctx, conn, cfgSub, stateSub)
	return nil
}
