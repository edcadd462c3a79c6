package types

// ------------------------
// Generic replies
// ------------------------

type OKReply struct {
	OK bool `json:"ok"`
}

type ErrorReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// ------------------------
// Link state (retained), shared by services that own a transport
// ------------------------

type Link string

const (
	LinkIdle     Link = "idle"
	LinkUp       Link = "up"
	LinkDegraded Link = "degraded"
	LinkError    Link = "error"
)

type LinkState struct {
	Level  Link   `json:"level"`
	Status string `json:"status"`          // short machine string
	Error  string `json:"error,omitempty"` // human detail
	TS     int64  `json:"ts_ms"`
}
