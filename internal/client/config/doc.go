// Package config loads runtime configuration for the taskboard client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via -c or -config, or via
//     $TASKBOARD_CLIENT_CONFIG when no flag is given.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the taskboard server
//	-f string   local session database file
//	-t int      request timeout (seconds)
//	-n int      retry attempts for transient failures
//	-l string   log level
//
// # JSON schema
//
// The JSON loader uses timex.Duration for timeouts, so values can be either
// strings like "10s" or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "db_file": "taskboard.db",
//	  "request_timeout": "10s",
//	  "retry_attempts": 3
//	}
package config
