package types

import "ledstrip-go/x/conv"

// ------------------------
// Strip state (retained on strip/state)
// ------------------------

// StripState is a snapshot of the controller. Percentages are 0..100 so the
// payload stays integer-only on the wire.
type StripState struct {
	Mode          string   `json:"mode"` // "rainbow" | "fade" | "static"
	Power         bool     `json:"power"`
	BrightnessPct uint8    `json:"brightness_pct"`
	ScalarPct     [3]uint8 `json:"scalar_pct"` // R, G, B
	RGB           [3]uint8 `json:"rgb"`        // last written output
	Ticks         uint32   `json:"ticks"`
	Commands      uint32   `json:"commands"`
	Dropped       uint32   `json:"dropped"` // codes lost while one was pending
	TS            int64    `json:"ts_ms"`
}

// String renders the state as one console line.
func (st StripState) String() string {
	p := "off"
	if st.Power {
		p = "on"
	}
	return "mode=" + st.Mode +
		" power=" + p +
		" bright=" + conv.Dec(int64(st.BrightnessPct)) + "%" +
		" scale=" + triple(st.ScalarPct) +
		" rgb=" + triple(st.RGB) +
		" ticks=" + conv.Dec(int64(st.Ticks)) +
		" cmds=" + conv.Dec(int64(st.Commands)) +
		" dropped=" + conv.Dec(int64(st.Dropped))
}

func triple(v [3]uint8) string {
	return conv.Dec(int64(v[0])) + "," + conv.Dec(int64(v[1])) + "," + conv.Dec(int64(v[2]))
}

// ------------------------
// Controls (strip/control/<verb>)
// ------------------------

// StripCommand injects one remote command. Name wins over Code when set;
// names are the console verbs ("next", "bright+", ...).
type StripCommand struct {
	Code uint32 `json:"code,omitempty"`
	Name string `json:"name,omitempty"`
}

// ------------------------
// Configuration (config/strip)
// ------------------------

type StripConfig struct {
	StaticMs  uint32            `json:"static_ms,omitempty"`
	FadeMs    uint32            `json:"fade_ms,omitempty"`
	RainbowMs uint32            `json:"rainbow_ms,omitempty"`
	Codes     map[string]string `json:"codes,omitempty"` // command name -> hex code
}
