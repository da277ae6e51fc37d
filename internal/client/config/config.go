package config

import "time"

// Config holds runtime settings for the MithaiMart storefront CLI.
//
// Fields:
//   - ServerEndpointAddr: base URL of the auth server, e.g. "http://127.0.0.1:8080".
//   - RequestTimeout: per-request HTTP client timeout.
//   - SubmitTimeout: upper bound for a single credential form submission.
//   - SessionDSN: SQLite database file that persists the session between runs.
type Config struct {
	ServerEndpointAddr string
	RequestTimeout     time.Duration
	SubmitTimeout      time.Duration
	SessionDSN         string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.RequestTimeout = 10 * time.Second
	c.SubmitTimeout = 15 * time.Second
	c.SessionDSN = "session.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
