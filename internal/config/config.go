// Package config provides configuration types and defaults for abacus.
package config

import "time"

// Config holds all configuration for abacus.
type Config struct {
	Paths       PathsConfig       `yaml:"paths" mapstructure:"paths"`
	Graph       GraphConfig       `yaml:"graph" mapstructure:"graph"`
	Watcher     WatcherConfig     `yaml:"watcher" mapstructure:"watcher"`
	MCP         MCPConfig         `yaml:"mcp" mapstructure:"mcp"`
	LogRotation LogRotationConfig `yaml:"log_rotation" mapstructure:"log_rotation"`
}

// PathsConfig holds file locations. Root is the directory containing the
// issues/ tree.
type PathsConfig struct {
	Root string `yaml:"root" mapstructure:"root"`
	Log  string `yaml:"log" mapstructure:"log"`
}

// GraphConfig holds settings for dependency graph rendering.
type GraphConfig struct {
	Density             string        `yaml:"density" mapstructure:"density"`                             // Node density: "compact", "standard", or "detailed"
	RefreshOnChange     bool          `yaml:"refresh_on_change" mapstructure:"refresh_on_change"`         // Reload the dashboard when issue files change
	AutoRefreshInterval time.Duration `yaml:"auto_refresh_interval" mapstructure:"auto_refresh_interval"` // Interval for timed refresh (0 = disabled, min 1s)
}

// WatcherConfig holds issue directory watcher settings.
type WatcherConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"` // Quiet period before a change is reported
}

// MCPConfig holds settings for the MCP stdio server.
type MCPConfig struct {
	MaxRequestBytes int64 `yaml:"max_request_bytes" mapstructure:"max_request_bytes"`
}

// LogRotationConfig holds settings for log file rotation.
// Used for the debug log (lumberjack-based automatic rotation).
type LogRotationConfig struct {
	MaxSizeMB  int  `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool `yaml:"compress" mapstructure:"compress"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Root: ".",
			Log:  ".abacus/abacus.log",
		},
		Graph: GraphConfig{
			Density:             "standard",
			RefreshOnChange:     true,
			AutoRefreshInterval: 0,
		},
		Watcher: WatcherConfig{
			Enabled:  true,
			Debounce: 250 * time.Millisecond,
		},
		MCP: MCPConfig{
			MaxRequestBytes: 1 << 20,
		},
		LogRotation: LogRotationConfig{
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}
