// Command stripsim runs the strip controller in a terminal: keys stand in
// for the remote and a swatch stands in for the strip.
package main

import (
	"context"
	"os"

	"github.com/gdamore/tcell/v2"

	"ledstrip-go/bus"
	"ledstrip-go/services/strip"
	"ledstrip-go/types"
)

type rgb struct{ r, g, b uint8 }

type sim struct {
	screen tcell.Screen
	conn   *bus.Connection

	color rgb
	state types.StripState
	diag  string
}

func main() {
	screen, err := tcell.NewScreen()
	if err != nil {
		println("stripsim:", err.Error())
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		println("stripsim:", err.Error())
		os.Exit(1)
	}
	defer screen.Fini()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bus.NewBus(16)
	s := &sim{screen: screen, conn: b.NewConnection("sim")}

	// The output runs on the strip goroutine; hand colours to the UI loop.
	out := strip.OutputFunc(func(r, g, bl uint8) {
		_ = screen.PostEvent(tcell.NewEventInterrupt(rgb{r, g, bl}))
	})
	if err := strip.New(out, nil).Start(ctx, b.NewConnection("strip")); err != nil {
		return
	}

	stateSub := s.conn.Subscribe(strip.TopicState())
	diagSub := s.conn.Subscribe(strip.TopicDiag())
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case m := <-stateSub.Channel():
				_ = screen.PostEvent(tcell.NewEventInterrupt(m.Payload))
			case m := <-diagSub.Channel():
				_ = screen.PostEvent(tcell.NewEventInterrupt(m.Payload))
			}
		}
	}()

	s.loop()
}

func (s *sim) loop() {
	for {
		switch ev := s.screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventResize:
			s.screen.Sync()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
				return
			}
			if name, ok := keymap[ev.Rune()]; ok {
				s.conn.Publish(s.conn.NewMessage(strip.TopicControl(strip.VerbCommand), types.StripCommand{Name: name}, false))
			}
		case *tcell.EventInterrupt:
			switch v := ev.Data().(type) {
			case rgb:
				s.color = v
			case types.StripState:
				s.state = v
			case string:
				s.diag = v
			}
		}
		s.draw()
	}
}

func (s *sim) draw() {
	s.screen.Clear()
	sw := tcell.StyleDefault.Background(tcell.NewRGBColor(int32(s.color.r), int32(s.color.g), int32(s.color.b)))
	for y := 1; y <= 6; y++ {
		for x := 2; x < 42; x++ {
			s.screen.SetContent(x, y, ' ', nil, sw)
		}
	}
	text := tcell.StyleDefault
	s.print(2, 8, text, describe(s.color.r, s.color.g, s.color.b))
	s.print(2, 9, text, s.state.String())
	s.print(2, 10, text.Foreground(tcell.ColorYellow), s.diag)
	s.print(2, 12, text.Dim(true), help)
	s.screen.Show()
}

func (s *sim) print(x, y int, st tcell.Style, str string) {
	for _, r := range str {
		s.screen.SetContent(x, y, r, nil, st)
		x++
	}
}
