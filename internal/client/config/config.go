package config

import "time"

// Config holds runtime settings for the taskboard terminal client.
//
// Fields:
//   - ServerURL: base URL of the taskboard HTTP API.
//   - DBFile: path of the local SQLite file holding the session.
//   - RequestTimeout: per-request HTTP timeout.
//   - RetryAttempts: extra attempts for transient failures; 0 disables retries.
//   - LogLevel: client log level.
type Config struct {
	ServerURL      string
	DBFile         string
	RequestTimeout time.Duration
	RetryAttempts  uint64
	LogLevel       string
}

// ConfigEnvVar names the environment variable consulted for the JSON config
// path when neither -c nor -config is given.
const ConfigEnvVar = "TASKBOARD_CLIENT_CONFIG"

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DBFile = "taskboard.db"
	c.RequestTimeout = 10 * time.Second
	c.RetryAttempts = 3
	c.LogLevel = "warn"
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
