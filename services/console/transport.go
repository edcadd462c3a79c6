package console

import (
	"context"
	"io"
	"sync"

	"ledstrip-go/errcode"
)

// Transport opens the byte stream a console session runs over.
type Transport interface {
	Open(ctx context.Context) (io.ReadWriteCloser, error)
	String() string
}

// TransportFactory builds a Transport from its config block.
type TransportFactory func(TransportConfig) (Transport, error)

type TransportConfig struct {
	Type string      `json:"type"` // "uart" or a name passed to RegisterTransport
	UART *UARTConfig `json:"uart,omitempty"`
}

// UARTConfig uses board GPIO numbers.
type UARTConfig struct {
	Baud  int `json:"baud"`
	RxPin int `json:"rx_pin"`
	TxPin int `json:"tx_pin"`
}

// UARTDial is set by the platform layer on boards with a UART console.
var UARTDial func(ctx context.Context, u UARTConfig) (io.ReadWriteCloser, error)

var transports = struct {
	sync.RWMutex
	m map[string]TransportFactory
}{m: map[string]TransportFactory{"uart": newUARTTransport}}

// RegisterTransport adds or replaces a named transport, eg. "stdio" on host.
func RegisterTransport(name string, f TransportFactory) {
	transports.Lock()
	transports.m[name] = f
	transports.Unlock()
}

func unregisterTransport(name string) {
	transports.Lock()
	delete(transports.m, name)
	transports.Unlock()
}

func newTransport(cfg TransportConfig) (Transport, error) {
	transports.RLock()
	f, ok := transports.m[cfg.Type]
	transports.RUnlock()
	if !ok {
		return nil, &errcode.E{C: errcode.Unsupported, Op: "console", Msg: "unknown transport type " + cfg.Type}
	}
	return f(cfg)
}

type uartTransport struct{ cfg UARTConfig }

func newUARTTransport(cfg TransportConfig) (Transport, error) {
	if cfg.UART == nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "console", Msg: "uart transport requires uart config"}
	}
	return uartTransport{cfg: *cfg.UART}, nil
}

func (u uartTransport) Open(ctx context.Context) (io.ReadWriteCloser, error) {
	if UARTDial == nil {
		return nil, &errcode.E{C: errcode.Unsupported, Op: "console", Msg: "no uart on this board"}
	}
	return UARTDial(ctx, u.cfg)
}

func (uartTransport) String() string { return "uart" }

// DialFunc adapts a plain function to Transport.
type DialFunc func(ctx context.Context) (io.ReadWriteCloser, error)

func (f DialFunc) Open(ctx context.Context) (io.ReadWriteCloser, error) { return f(ctx) }
func (DialFunc) String() string                                         { return "func" }
