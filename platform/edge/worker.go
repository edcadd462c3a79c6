// Package edge turns pin interrupts into debounced edge events off the
// interrupt path.
package edge

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type Edge uint8

const (
	None Edge = iota
	Rising
	Falling
	Both
)

// Pin is the minimum an interrupt-capable input must offer.
type Pin interface {
	Get() bool
	SetIRQ(e Edge, handler func()) error
	ClearIRQ() error
}

// Event is delivered from the worker to its consumer.
type Event struct {
	ID    string
	Level bool // after inversion
	Edge  Edge
	TS    time.Time
}

type Worker struct {
	// Written by ISR; must not block.
	isrQ chan isrEvent
	outQ chan Event

	mu     sync.RWMutex
	inputs map[string]*watch

	drops atomic.Uint32 // ISR drop counter
}

type isrEvent struct {
	id    string
	level bool
}

type watch struct {
	edge      Edge
	debounce  time.Duration
	invert    bool
	lastLevel bool
	lastEvent time.Time
	cancelIRQ func()
}

func New(isrBuf, outBuf int) *Worker {
	if isrBuf <= 0 {
		isrBuf = 16
	}
	if outBuf <= 0 {
		outBuf = 16
	}
	return &Worker{
		isrQ:   make(chan isrEvent, isrBuf),
		outQ:   make(chan Event, outBuf),
		inputs: map[string]*watch{},
	}
}

// Start runs the worker until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-w.isrQ:
				w.handleISR(ev)
			}
		}
	}()
}

func (w *Worker) Events() <-chan Event { return w.outQ }

// Register watches pin for edges and returns a function that stops it.
func (w *Worker) Register(id string, pin Pin, e Edge, debounce time.Duration, invert bool) (func(), error) {
	if e == None {
		return func() {}, nil
	}

	// Initial logical snapshot so the first edge compares like-for-like.
	init := pin.Get() != invert
	wh := &watch{
		edge:      e,
		debounce:  debounce,
		invert:    invert,
		lastLevel: init,
	}

	handler := func() {
		select {
		case w.isrQ <- isrEvent{id: id, level: pin.Get()}:
		default:
			w.drops.Add(1)
		}
	}
	if err := pin.SetIRQ(physicalEdge(e, invert), handler); err != nil {
		return nil, err
	}
	wh.cancelIRQ = func() { _ = pin.ClearIRQ() }

	w.mu.Lock()
	w.inputs[id] = wh
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		if cur, ok := w.inputs[id]; ok {
			cur.cancelIRQ()
			delete(w.inputs, id)
		}
		w.mu.Unlock()
	}, nil
}

// physicalEdge is the pin edge that produces logical edge e. On an inverted
// (active-low) input a logical rise is a physical fall.
func physicalEdge(e Edge, invert bool) Edge {
	if !invert {
		return e
	}
	switch e {
	case Rising:
		return Falling
	case Falling:
		return Rising
	}
	return e
}

func (w *Worker) handleISR(ev isrEvent) {
	w.mu.RLock()
	wh := w.inputs[ev.id]
	w.mu.RUnlock()
	if wh == nil {
		return
	}
	level := ev.level != wh.invert
	now := time.Now()

	if !wh.lastEvent.IsZero() && now.Sub(wh.lastEvent) < wh.debounce {
		return
	}

	var e Edge
	switch {
	case !wh.lastLevel && level:
		e = Rising
	case wh.lastLevel && !level:
		e = Falling
	}
	if wh.edge != Both && e != wh.edge {
		e = None
	}

	if e != None {
		select {
		case w.outQ <- Event{ID: ev.id, Level: level, Edge: e, TS: now}:
		default:
		}
	}

	wh.lastLevel = level
	wh.lastEvent = now
}

func (w *Worker) ISRDrops() uint32 { return w.drops.Load() }
