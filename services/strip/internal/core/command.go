package core

// Command is a decoded remote action.
type Command uint8

const (
	CmdUnknown Command = iota
	CmdPower
	CmdNextMode
	CmdPrevMode
	CmdReset
	CmdBrightnessUp
	CmdBrightnessDown
	CmdRedUp
	CmdRedDown
	CmdGreenUp
	CmdGreenDown
	CmdBlueUp
	CmdBlueDown
	CmdSelectRainbow
	CmdSelectFade
	CmdSelectStatic

	numCommands
)

var commandNames = [numCommands]string{
	"unknown",
	"power", "next", "prev", "reset",
	"bright+", "bright-",
	"red+", "red-", "green+", "green-", "blue+", "blue-",
	"rainbow", "fade", "static",
}

func (c Command) String() string {
	if c < numCommands {
		return commandNames[c]
	}
	return commandNames[CmdUnknown]
}

// ParseCommand maps a command name back to its Command.
func ParseCommand(s string) (Command, bool) {
	for i := CmdPower; i < numCommands; i++ {
		if commandNames[i] == s {
			return i, true
		}
	}
	return CmdUnknown, false
}

// Names lists the command names in declaration order.
func Names() []string {
	return append([]string(nil), commandNames[CmdPower:]...)
}

// necCode builds a 32-bit NEC frame for the strip remote's address bytes.
func necCode(cmd uint8) uint32 {
	return 0xEF10_0000 | uint32(cmd)<<8 | uint32(^cmd)
}

var defaultCodes = [numCommands]uint32{
	CmdPower:          necCode(0x00),
	CmdNextMode:       necCode(0x10), // EF1010EF
	CmdPrevMode:       necCode(0x88), // EF108877
	CmdReset:          necCode(0x48), // EF1048B7
	CmdBrightnessUp:   necCode(0x20),
	CmdBrightnessDown: necCode(0xA0),
	CmdRedUp:          necCode(0x60),
	CmdRedDown:        necCode(0xE0),
	CmdGreenUp:        necCode(0x30),
	CmdGreenDown:      necCode(0xB0),
	CmdBlueUp:         necCode(0x50),
	CmdBlueDown:       necCode(0xD0),
	CmdSelectRainbow:  necCode(0x08),
	CmdSelectFade:     necCode(0x28),
	CmdSelectStatic:   necCode(0x18),
}

// CodeTable maps remote codes to commands, one code per command.
type CodeTable struct {
	byCmd  [numCommands]uint32
	byCode map[uint32]Command
}

// DefaultCodes returns a fresh copy of the built-in remote table.
func DefaultCodes() *CodeTable {
	t := &CodeTable{byCmd: defaultCodes, byCode: make(map[uint32]Command, numCommands)}
	for c := CmdPower; c < numCommands; c++ {
		t.byCode[t.byCmd[c]] = c
	}
	return t
}

// Lookup never fails: unmapped codes are CmdUnknown.
func (t *CodeTable) Lookup(code uint32) Command {
	if c, ok := t.byCode[code]; ok {
		return c
	}
	return CmdUnknown
}

// Code returns the code bound to cmd. A command whose code was taken over
// by another binding has none.
func (t *CodeTable) Code(cmd Command) (uint32, bool) {
	if cmd == CmdUnknown || cmd >= numCommands {
		return 0, false
	}
	c := t.byCmd[cmd]
	return c, t.byCode[c] == cmd
}

// Bind rebinds cmd to code. A command previously holding code loses it.
func (t *CodeTable) Bind(cmd Command, code uint32) bool {
	if cmd == CmdUnknown || cmd >= numCommands {
		return false
	}
	if prev, ok := t.byCode[code]; ok && prev != cmd {
		t.byCmd[prev] = 0
	}
	if old := t.byCmd[cmd]; t.byCode[old] == cmd {
		delete(t.byCode, old)
	}
	t.byCmd[cmd] = code
	t.byCode[code] = cmd
	return true
}
