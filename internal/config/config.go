package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

type Config struct {
	Addr           string   // API bind address, e.g., "127.0.0.1:8080" (Windows) or ":8080" (Docker)
	BackendURL     string   // base URL the health endpoints hang off
	LogDir         string   // logs directory
	LogLevel       string   // debug | info | warn | error
	AllowedOrigins []string // CORS origins; empty means any
	CheckRPM       int      // check triggers per minute per client; 0 disables limiting
	CheckBurst     int
	DNSDiagnostics bool // annotate network failures with a DNS classification
	TrustProxy     bool // take the client address from X-Forwarded-For / X-Real-IP
}

// EnvNames maps Config fields to the environment variables they come from.
var EnvNames = map[string]string{
	"Addr":           "API_ADDR",
	"BackendURL":     "BACKEND_URL",
	"LogDir":         "LOG_DIR",
	"LogLevel":       "LOG_LEVEL",
	"AllowedOrigins": "ALLOWED_ORIGINS",
	"CheckRPM":       "CHECK_RPM",
	"CheckBurst":     "CHECK_BURST",
	"DNSDiagnostics": "DNS_DIAGNOSTICS",
	"TrustProxy":     "TRUST_PROXY",
}

// Problems flattens a validation error from FromEnv or Validate into
// env var name -> message. It returns nil when err carries no field errors.
func Problems(err error) map[string]string {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for field, ferr := range verrs {
		name, ok := EnvNames[field]
		if !ok {
			name = field
		}
		out[name] = ferr.Error()
	}
	return out
}

// FromEnv reads the configuration from the environment and validates it.
func FromEnv() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("api_addr", "127.0.0.1:8080")
	v.SetDefault("log_dir", "logs")
	v.SetDefault("log_level", LogLevelInfo)
	v.SetDefault("allowed_origins", "")
	v.SetDefault("check_rpm", 60)
	v.SetDefault("check_burst", 10)
	v.SetDefault("dns_diagnostics", false)
	v.SetDefault("trust_proxy", false)

	cfg := Config{
		Addr:           strings.TrimSpace(v.GetString("api_addr")),
		BackendURL:     strings.TrimSpace(v.GetString("backend_url")),
		LogDir:         v.GetString("log_dir"),
		LogLevel:       strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		AllowedOrigins: splitList(v.GetString("allowed_origins")),
		CheckRPM:       v.GetInt("check_rpm"),
		CheckBurst:     v.GetInt("check_burst"),
		DNSDiagnostics: v.GetBool("dns_diagnostics"),
		TrustProxy:     v.GetBool("trust_proxy"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BackendURL, validation.Required, validation.By(validateBaseURL)),
		validation.Field(&c.Addr, validation.Required, validation.By(validateHostPort)),
		validation.Field(&c.LogDir, validation.Required),
		validation.Field(&c.LogLevel,
			validation.Required,
			validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
		),
		validation.Field(&c.CheckRPM, validation.Min(0)),
		validation.Field(&c.CheckBurst, validation.When(c.CheckRPM > 0, validation.Required, validation.Min(1))),
	)
}

func validateBaseURL(value interface{}) error {
	raw, _ := value.(string)
	u, err := url.Parse(raw)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}
	if u.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}
	return nil
}

func validateHostPort(value interface{}) error {
	addr, _ := value.(string)
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}
	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}
	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
