package broker

// ConnState tracks broker connectivity for one role (producer or consumer).
// Each role owns its own instance; only the initial-connect path and the
// retry loop transition it, and those are mutually exclusive.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateProbing
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateProbing:
		return "probing"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}
