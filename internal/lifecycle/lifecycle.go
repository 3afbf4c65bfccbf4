package lifecycle

import (
	"sync/atomic"
	"time"
)

var (
	shuttingDown atomic.Bool
	startedAt    atomic.Int64
)

func init() {
	MarkStarted(time.Now())
}

// SetShuttingDown sets the drain flag. Call when SIGTERM/SIGINT is received.
// /health answers 503 shutting-down while true.
func SetShuttingDown(v bool) {
	shuttingDown.Store(v)
}

// IsShuttingDown reports whether the process is draining.
func IsShuttingDown() bool {
	return shuttingDown.Load()
}

// MarkStarted records the process start time reported by /health.
func MarkStarted(t time.Time) {
	startedAt.Store(t.UnixNano())
}

// Uptime returns the time elapsed since MarkStarted.
func Uptime() time.Duration {
	return time.Since(time.Unix(0, startedAt.Load()))
}
