package config

import (
	"errors"
	"fmt"
	"strings"

	"warble/internal/media"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateLimits(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.BaseDir == "" {
		return errors.New("paths.base_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateAudio() error {
	if _, err := media.CodecExtension(c.Audio.Codec); err != nil {
		return fmt.Errorf("audio.codec: unsupported codec %q (supported: %s)",
			c.Audio.Codec, strings.Join(media.SupportedCodecs(), ", "))
	}
	return nil
}

func (c *Config) validateLimits() error {
	if err := ensurePositiveMap(map[string]int{
		"resolver.search_limit":   c.Resolver.SearchLimit,
		"resolver.search_timeout": c.Resolver.SearchTimeout,
		"resolver.fetch_timeout":  c.Resolver.FetchTimeout,
		"fetch.max_concurrent":    c.Fetch.MaxConcurrent,
		"fetch.backend_per_minute": c.Fetch.BackendPerMinute,
		"sessions.idle_timeout":    c.Sessions.IdleTimeoutSeconds,
		"delivery.max_attachment_mib": c.Delivery.MaxAttachmentMiB,
		"workspaces.stale_after":      c.Workspaces.StaleAfterSeconds,
	}); err != nil {
		return err
	}
	// The workspace janitor sweeps on directory age alone. A stale cutoff
	// at or below the fetch timeout would let it delete an in-flight
	// download's workspace.
	if c.Workspaces.StaleAfterSeconds <= c.Resolver.FetchTimeout {
		return fmt.Errorf("workspaces.stale_after (%d) must exceed resolver.fetch_timeout (%d)",
			c.Workspaces.StaleAfterSeconds, c.Resolver.FetchTimeout)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
