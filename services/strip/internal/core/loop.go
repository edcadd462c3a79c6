package core

import "time"

// Stats counts loop activity since construction.
type Stats struct {
	Ticks    uint32
	Commands uint32
	Resets   uint32
}

// Loop is one control-loop iteration at a time: poll, interpret, animate,
// write. It never sleeps; Tick returns how long the host should wait.
type Loop struct {
	st  *State
	ctl *Controller
	eng *Engine
	src Source
	out Output

	last  RGB
	stats Stats
}

// NewLoop resets st once so the first tick starts from the baseline.
func NewLoop(st *State, ctl *Controller, eng *Engine, src Source, out Output) *Loop {
	ctl.Reset(st)
	return &Loop{st: st, ctl: ctl, eng: eng, src: src, out: out}
}

func (l *Loop) State() *State           { return l.st }
func (l *Loop) Controller() *Controller { return l.ctl }
func (l *Loop) Engine() *Engine         { return l.eng }
func (l *Loop) Last() RGB               { return l.last }
func (l *Loop) Stats() Stats            { return l.stats }

// Tick runs one iteration and returns the pacing hint for the active mode.
func (l *Loop) Tick() time.Duration {
	if l.src != nil {
		if code, ok := l.src.Poll(); ok {
			l.stats.Commands++
			if l.ctl.Handle(l.st, code) {
				l.ctl.Reset(l.st)
				l.stats.Resets++
			}
		}
	}

	l.eng.Play(l.st)

	l.last = l.st.Derive()
	if l.out != nil {
		l.out.Write(l.last.R, l.last.G, l.last.B)
	}
	l.stats.Ticks++
	return l.eng.Pacing(l.st.mode)
}
