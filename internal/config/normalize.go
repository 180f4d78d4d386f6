package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeResolver()
	c.normalizeAudio()
	c.normalizeLimits()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.BaseDir) == "" {
		c.Paths.BaseDir = defaultBaseDir
	}
	if c.Paths.BaseDir, err = expandPath(c.Paths.BaseDir); err != nil {
		return fmt.Errorf("paths.base_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeResolver() {
	c.Resolver.Binary = strings.TrimSpace(c.Resolver.Binary)
	if c.Resolver.Binary == "" {
		c.Resolver.Binary = defaultResolverBinary
	}
	if c.Resolver.SearchLimit <= 0 {
		c.Resolver.SearchLimit = defaultSearchLimit
	}
	if c.Resolver.SearchTimeout <= 0 {
		c.Resolver.SearchTimeout = defaultSearchTimeout
	}
	if c.Resolver.FetchTimeout <= 0 {
		c.Resolver.FetchTimeout = defaultFetchTimeout
	}
}

func (c *Config) normalizeAudio() {
	c.Audio.Codec = strings.ToLower(strings.TrimSpace(c.Audio.Codec))
	if c.Audio.Codec == "" {
		c.Audio.Codec = defaultAudioCodec
	}
	c.Audio.Bitrate = strings.TrimSpace(c.Audio.Bitrate)
	if c.Audio.Bitrate == "" {
		c.Audio.Bitrate = defaultAudioBitrate
	}
}

func (c *Config) normalizeLimits() {
	if c.Fetch.MaxConcurrent <= 0 {
		c.Fetch.MaxConcurrent = defaultMaxConcurrent
	}
	if c.Fetch.BackendPerMinute <= 0 {
		c.Fetch.BackendPerMinute = defaultBackendPerMinute
	}
	if c.Sessions.IdleTimeoutSeconds <= 0 {
		c.Sessions.IdleTimeoutSeconds = defaultSessionIdleTimeout
	}
	if c.Delivery.MaxAttachmentMiB <= 0 {
		c.Delivery.MaxAttachmentMiB = defaultMaxAttachmentMiB
	}
	if c.Workspaces.StaleAfterSeconds <= 0 {
		c.Workspaces.StaleAfterSeconds = defaultWorkspaceStaleAfter
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
