package probe

import (
	"context"
	"net/url"
	"time"
)

// DiagnosingChecker annotates transport-level failures of Inner with a DNS
// classification of the target host. The outcome itself is never changed.
//
// Inner and the DNS lookup share one deadline derived from the caller's
// context, so a diagnosed check settles no later than an undiagnosed one.
type DiagnosingChecker struct {
	Inner    Checker
	Resolver Resolver
	Timeout  time.Duration
}

// NewDiagnosingChecker wraps inner using the OS resolver and the package Timeout.
func NewDiagnosingChecker(inner Checker) *DiagnosingChecker {
	return &DiagnosingChecker{Inner: inner, Timeout: Timeout}
}

func (d *DiagnosingChecker) Check(ctx context.Context, target string) CheckResult {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out := d.Inner.Check(ctx, target)
	if out.Success || out.Responded() {
		return out
	}
	// No time left to diagnose; report the failure as is.
	if ctx.Err() != nil {
		return out
	}

	var r Resolver = d.Resolver
	if r == nil {
		r = defaultResolver
	}
	dns := checkDNS(ctx, r, extractHost(target), defaultDNSBudget)
	if ctx.Err() != nil {
		// The lookup was cut short; its class says nothing about the host.
		return out
	}
	if out.Message == "" {
		out.Message = "dns=" + string(dns.Class)
	} else {
		out.Message += " dns=" + string(dns.Class)
	}
	return out
}

func extractHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}
