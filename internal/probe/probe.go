package probe

import (
	"context"
	"time"
)

// Timeout bounds a single probe from request start to response headers.
const Timeout = 5000 * time.Millisecond

// CheckResult is the unified result of a single probe.
//
// Fields:
//   - StatusCode: HTTP status code when a response arrived; 0 for transport errors.
//   - LatencyMS: whole milliseconds until response headers; nil when no response arrived.
//   - Message: status line or error text, for logs only.
type CheckResult struct {
	Name       string `json:"name"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"`
	LatencyMS  *int64 `json:"latency_ms,omitempty"`
}

// Responded reports whether the probe got an HTTP response back.
func (r CheckResult) Responded() bool { return r.StatusCode != 0 }

// Checker performs a single check for a given target URL.
type Checker interface {
	Check(ctx context.Context, target string) CheckResult
}
