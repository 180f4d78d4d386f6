package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	BaseDir string `toml:"base_dir"`
	LogDir  string `toml:"log_dir"`
	APIBind string `toml:"api_bind"`
}

// Resolver contains configuration for the external search/fetch backend.
type Resolver struct {
	Binary        string `toml:"binary"`
	SearchLimit   int    `toml:"search_limit"`
	SearchTimeout int    `toml:"search_timeout"`
	FetchTimeout  int    `toml:"fetch_timeout"`
}

// Audio contains the fixed target output format for delivered artifacts.
type Audio struct {
	Codec   string `toml:"codec"`
	Bitrate string `toml:"bitrate"`
}

// Fetch contains concurrency and pacing limits for backend fetches.
type Fetch struct {
	MaxConcurrent    int `toml:"max_concurrent"`
	BackendPerMinute int `toml:"backend_per_minute"`
}

// Sessions contains lifetime settings for search sessions.
type Sessions struct {
	IdleTimeoutSeconds int `toml:"idle_timeout"`
}

// Delivery contains limits applied when streaming artifacts to clients.
type Delivery struct {
	MaxAttachmentMiB int `toml:"max_attachment_mib"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Fetches        bool   `toml:"fetches"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Workspaces contains housekeeping settings for the workspace base directory.
type Workspaces struct {
	StaleAfterSeconds int `toml:"stale_after"`
}

// Config encapsulates all configuration values for Warble.
//
// Configuration sections by subsystem:
//   - Paths: workspace base, log directory, API bind address
//   - Resolver: yt-dlp binary and timeouts
//   - Audio: fixed target codec and bitrate for delivered artifacts
//   - Fetch: concurrent fetch cap and backend pacing
//   - Sessions: idle eviction for search sessions
//   - Delivery: attachment size limit
//   - Workspaces: stale workspace reclamation
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Resolver      Resolver      `toml:"resolver"`
	Audio         Audio         `toml:"audio"`
	Fetch         Fetch         `toml:"fetch"`
	Sessions      Sessions      `toml:"sessions"`
	Delivery      Delivery      `toml:"delivery"`
	Workspaces    Workspaces    `toml:"workspaces"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/warble/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("warble.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.BaseDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ProbeStorage verifies the workspace base directory is writable. The daemon
// refuses to serve requests when this fails.
func (c *Config) ProbeStorage() error {
	if err := os.MkdirAll(c.Paths.BaseDir, 0o755); err != nil {
		return fmt.Errorf("storage unavailable: create base directory %q: %w", c.Paths.BaseDir, err)
	}
	probe, err := os.CreateTemp(c.Paths.BaseDir, ".probe-*")
	if err != nil {
		return fmt.Errorf("storage unavailable: base directory %q not writable: %w", c.Paths.BaseDir, err)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return nil
}

// ResolverBinary returns the yt-dlp executable name.
func (c *Config) ResolverBinary() string {
	if strings.TrimSpace(c.Resolver.Binary) != "" {
		return c.Resolver.Binary
	}
	return "yt-dlp"
}

// FFmpegBinary returns the ffmpeg executable name used for audio extraction.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
