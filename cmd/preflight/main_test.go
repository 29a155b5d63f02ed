package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_ReportsEveryInvalidField(t *testing.T) {
	t.Setenv("BACKEND_URL", "ftp://api.example.com")
	t.Setenv("LOG_LEVEL", "verbose")

	var out, errOut bytes.Buffer
	code := run(&out, &errOut)

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "✖ BACKEND_URL:")
	assert.Contains(t, errOut.String(), "✖ LOG_LEVEL:")
	assert.NotContains(t, out.String(), "preflight passed")
}

func TestRun_AcceptsWhatTheServerAccepts(t *testing.T) {
	t.Setenv("BACKEND_URL", "https://api.example.com/")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	var out, errOut bytes.Buffer
	code := run(&out, &errOut)

	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "https://api.example.com/auth/health")
	assert.Contains(t, out.String(), "ALLOWED_ORIGINS=https://a.example,https://b.example")
	assert.NotContains(t, errOut.String(), "spaces")
	assert.Contains(t, out.String(), "preflight passed")
}

func TestRun_WarnsOnOpenCORSAndNoRateLimit(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://localhost:8000")
	t.Setenv("CHECK_RPM", "0")

	var out, errOut bytes.Buffer
	assert.Equal(t, 0, run(&out, &errOut))
	assert.Contains(t, errOut.String(), "⚠ ALLOWED_ORIGINS empty")
	assert.Contains(t, errOut.String(), "⚠ CHECK_RPM=0")
}
