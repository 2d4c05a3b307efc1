package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/taskboard/internal/flagx"
	"github.com/dmitrijs2005/taskboard/internal/timex"
)

// JsonConfig is the on-disk shape of the client config file.
type JsonConfig struct {
	ServerURL      *string         `json:"server_url"`
	DBFile         *string         `json:"db_file"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	RetryAttempts  *uint64         `json:"retry_attempts"`
	LogLevel       *string         `json:"log_level"`
}

func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath(ConfigEnvVar)
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.ServerURL != nil {
		config.ServerURL = *c.ServerURL
	}
	if c.DBFile != nil {
		config.DBFile = *c.DBFile
	}
	if c.RequestTimeout != nil {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
	if c.RetryAttempts != nil {
		config.RetryAttempts = *c.RetryAttempts
	}
	if c.LogLevel != nil {
		config.LogLevel = *c.LogLevel
	}
}
