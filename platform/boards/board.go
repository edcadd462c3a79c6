// Package boards holds compile-time wiring plans. Pins are plain GPIO
// numbers; mapping to machine.Pin happens in the platform layer.
package boards

import "cmp"

// Output kinds.
const (
	OutputPWM    = "pwm"
	OutputWS2812 = "ws2812"
)

// Plan is the wiring of one board build.
type Plan struct {
	Name   string
	Device string // embedded config key; defaults to Name

	// Lets USB CDC enumerate before the first print.
	BootDelayMs int

	IRPin int

	// Push button that steps to the next mode; -1 when absent.
	ButtonPin       int
	ButtonActiveLow bool
	DebounceMs      int

	Output string

	// OutputPWM: R, G, B pins and carrier frequency.
	PWMPins   [3]int
	PWMFreqHz uint32
	ActiveLow bool // common-anode strips sink current

	// OutputWS2812: data pin and pixel count.
	DataPin int
	NumLEDs int

	// Console UART.
	UART      string // "uart0" | "uart1"
	UARTTxPin int
	UARTRxPin int
	UARTBaud  uint32
}

// DeviceID is the key used to pick the embedded config.
func (p Plan) DeviceID() string { return cmp.Or(p.Device, p.Name) }

// PicoPWM drives a 12 V analogue strip through three MOSFETs.
var PicoPWM = Plan{
	Name:            "pico",
	BootDelayMs:     2000,
	IRPin:           15,
	ButtonPin:       14,
	ButtonActiveLow: true,
	DebounceMs:      30,
	Output:          OutputPWM,
	PWMPins:         [3]int{16, 17, 18},
	PWMFreqHz:       1000,
	UART:            "uart0",
	UARTTxPin:       0,
	UARTRxPin:       1,
	UARTBaud:        115200,
}

// PicoNeo drives an addressable strip with every pixel the same colour.
var PicoNeo = Plan{
	Name:            "pico_neo",
	Device:          "pico",
	BootDelayMs:     2000,
	IRPin:           15,
	ButtonPin:       14,
	ButtonActiveLow: true,
	DebounceMs:      30,
	Output:          OutputWS2812,
	DataPin:         22,
	NumLEDs:         30,
	UART:            "uart0",
	UARTTxPin:       0,
	UARTRxPin:       1,
	UARTBaud:        115200,
}
