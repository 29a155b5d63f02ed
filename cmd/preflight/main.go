// cmd/preflight/main.go
package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/hamed0406/healthdash/internal/config"
	"github.com/hamed0406/healthdash/internal/domain"
)

func main() {
	os.Exit(run(os.Stdout, os.Stderr))
}

// run validates the environment through config.FromEnv and prints the
// resulting targets plus advisory warnings. It returns the exit code.
func run(stdout, stderr io.Writer) int {
	warn := func(msg string) { fmt.Fprintln(stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Fprintln(stdout, "✔", msg) }

	cfg, err := config.FromEnv()
	if err != nil {
		problems := config.Problems(err)
		if len(problems) == 0 {
			fmt.Fprintln(stderr, "✖", err)
			return 1
		}
		names := make([]string, 0, len(problems))
		for name := range problems {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(stderr, "✖ %s: %s\n", name, problems[name])
		}
		return 1
	}

	ok("BACKEND_URL=" + cfg.BackendURL)
	for _, t := range domain.DefaultTargets(cfg.BackendURL) {
		ok(t.Name + " -> " + t.Endpoint)
	}
	ok("API_ADDR=" + cfg.Addr)

	if len(cfg.AllowedOrigins) == 0 {
		warn("ALLOWED_ORIGINS empty; any origin may call the API.")
	} else {
		ok("ALLOWED_ORIGINS=" + strings.Join(cfg.AllowedOrigins, ","))
	}
	if cfg.CheckRPM == 0 {
		warn("CHECK_RPM=0; check triggers are not rate limited.")
	}
	if cfg.TrustProxy {
		warn("TRUST_PROXY=true; client addresses come from X-Forwarded-For.")
	}

	ok("preflight passed")
	return 0
}
