package broker

import (
	"net"
	"time"
)

// DefaultProbeTimeout bounds a single reachability probe.
const DefaultProbeTimeout = 3 * time.Second

// Probe attempts a bare TCP connection to addr within timeout. It reports
// reachability as a bool and never errors; a successful dial is closed
// immediately. Both the producer and the consumers run this before every
// connect attempt so backoff cadence stays under our control instead of the
// client library's.
func Probe(addr string, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
