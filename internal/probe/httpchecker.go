package probe

import (
	"context"
	"net/http"
	"time"
)

// HTTPChecker checks an endpoint with a single GET bounded by Timeout.
type HTTPChecker struct {
	Client  *http.Client
	Timeout time.Duration
}

// NewHTTPChecker returns a checker with the fixed 5000 ms request timeout.
func NewHTTPChecker() *HTTPChecker {
	return &HTTPChecker{
		Client:  &http.Client{},
		Timeout: Timeout,
	}
}

// Check issues one GET against target. Any response counts as settled with a
// latency; only 2xx is a success. The body is never read.
func (h *HTTPChecker) Check(ctx context.Context, target string) CheckResult {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return CheckResult{Name: "HTTP", Success: false, Message: err.Error()}
	}

	start := time.Now()
	resp, err := h.Client.Do(req)
	if err != nil {
		return CheckResult{Name: "HTTP", Success: false, Message: err.Error()}
	}
	latency := time.Since(start).Round(time.Millisecond).Milliseconds()
	_ = resp.Body.Close()

	return CheckResult{
		Name:       "HTTP",
		Success:    resp.StatusCode >= 200 && resp.StatusCode < 300,
		Message:    resp.Status,
		StatusCode: resp.StatusCode,
		LatencyMS:  &latency,
	}
}
