package commands

import (
	"log/slog"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/backchain/backchain/internal/config"
	"github.com/backchain/backchain/internal/logging"
)

// Global CLI flags
var (
	// ConfigPath overrides the config file location.
	ConfigPath string

	// MockMode runs every command against in-memory mock contracts.
	MockMode bool
)

// loadConfig reads the configuration, falling back to the defaults
// when no file exists at the resolved path.
func loadConfig() (*config.Config, error) {
	path := ConfigPath
	if path == "" {
		path = config.DefaultConfigPath()
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if ConfigPath != "" {
			// An explicitly named file must exist.
			return nil, err
		}
		return config.DefaultConfig(), nil
	}

	return config.Load(path)
}

// configFilePath returns the config file location when a file actually
// exists there, empty otherwise.
func configFilePath() string {
	path := ConfigPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// applyLogConfig routes logs per the config. CLI output stays on
// stdout; logs go to stderr so they never corrupt piped output.
func applyLogConfig(cfg *config.Config) {
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		logging.SetLevel(slog.LevelDebug)
	case "warn":
		logging.SetLevel(slog.LevelWarn)
	case "error":
		logging.SetLevel(slog.LevelError)
	default:
		logging.SetLevel(slog.LevelInfo)
	}

	if strings.EqualFold(cfg.Log.Format, "text") {
		logging.SetTextOutput(os.Stderr)
	} else {
		logging.SetOutput(os.Stderr)
	}
}

// Version information (set at build time)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// GetVersion returns the version string
func GetVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return "dev"
}

// GetCommit returns the git commit
func GetCommit() string {
	if Commit != "unknown" {
		return Commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				if len(setting.Value) > 8 {
					return setting.Value[:8]
				}
				return setting.Value
			}
		}
	}
	return "unknown"
}

// GetGoVersion returns the Go version
func GetGoVersion() string {
	return runtime.Version()
}
