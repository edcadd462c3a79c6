package core

// Mode is the active animation. Order matters: next/previous wrap over it.
type Mode uint8

const (
	ModeRainbow Mode = iota
	ModeFade
	ModeStatic

	numModes
)

var modeNames = [numModes]string{"rainbow", "fade", "static"}

func (m Mode) String() string {
	if m < numModes {
		return modeNames[m]
	}
	return "unknown"
}

func (m Mode) Valid() bool { return m < numModes }

// Next returns the following mode, wrapping from the last back to the first.
func (m Mode) Next() Mode { return (m + 1) % numModes }

// Prev returns the preceding mode, wrapping from the first to the last.
func (m Mode) Prev() Mode { return (m + numModes - 1) % numModes }

// ParseMode accepts the names returned by String.
func ParseMode(s string) (Mode, bool) {
	for i, n := range modeNames {
		if n == s {
			return Mode(i), true
		}
	}
	return 0, false
}
