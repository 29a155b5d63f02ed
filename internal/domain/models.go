package domain

import "strings"

// Status is the visible health state of a monitored service.
type Status string

const (
	StatusLoading Status = "loading"
	StatusOK      Status = "ok"
	StatusKO      Status = "ko"
)

// ServiceTarget is one monitored backend: a label and its health-check URL.
type ServiceTarget struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
}

// ServiceHealth is the displayed state of a single target.
//
// ResponseTimeMS is nil while loading and when the probe never got an HTTP
// response back (network error, timeout).
type ServiceHealth struct {
	Name           string `json:"name"`
	Endpoint       string `json:"endpoint"`
	Status         Status `json:"status"`
	ResponseTimeMS *int64 `json:"responseTimeMs,omitempty"`
}

// Loading returns the placeholder entry shown while a probe is in flight.
func (t ServiceTarget) Loading() ServiceHealth {
	return ServiceHealth{Name: t.Name, Endpoint: t.Endpoint, Status: StatusLoading}
}

// healthPaths lists the monitored services in display order.
var healthPaths = []struct {
	name, path string
}{
	{"Auth Service", "/auth/health"},
	{"Chatbot Service", "/chatbot/health"},
	{"Chatbot Evaluate", "/chatbot-evaluate/health"},
	{"Chatbot Index", "/chatbot-index/health"},
}

// DefaultTargets derives the fixed target list from the backend base URL.
func DefaultTargets(backendURL string) []ServiceTarget {
	base := strings.TrimRight(backendURL, "/")
	out := make([]ServiceTarget, 0, len(healthPaths))
	for _, hp := range healthPaths {
		out = append(out, ServiceTarget{Name: hp.name, Endpoint: base + hp.path})
	}
	return out
}
