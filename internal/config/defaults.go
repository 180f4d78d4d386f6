package config

const (
	defaultBaseDir             = "~/.local/share/warble/workspaces"
	defaultLogDir              = "~/.local/share/warble/logs"
	defaultAPIBind             = "127.0.0.1:8080"
	defaultResolverBinary      = "yt-dlp"
	defaultSearchLimit         = 10
	defaultSearchTimeout       = 30
	defaultFetchTimeout        = 600
	defaultAudioCodec          = "mp3"
	defaultAudioBitrate        = "192k"
	defaultMaxConcurrent       = 4
	defaultBackendPerMinute    = 30
	defaultSessionIdleTimeout  = 900
	defaultMaxAttachmentMiB    = 50
	defaultWorkspaceStaleAfter = 3600
	defaultNotifyTimeout       = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			BaseDir: defaultBaseDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Resolver: Resolver{
			Binary:        defaultResolverBinary,
			SearchLimit:   defaultSearchLimit,
			SearchTimeout: defaultSearchTimeout,
			FetchTimeout:  defaultFetchTimeout,
		},
		Audio: Audio{
			Codec:   defaultAudioCodec,
			Bitrate: defaultAudioBitrate,
		},
		Fetch: Fetch{
			MaxConcurrent:    defaultMaxConcurrent,
			BackendPerMinute: defaultBackendPerMinute,
		},
		Sessions: Sessions{
			IdleTimeoutSeconds: defaultSessionIdleTimeout,
		},
		Delivery: Delivery{
			MaxAttachmentMiB: defaultMaxAttachmentMiB,
		},
		Workspaces: Workspaces{
			StaleAfterSeconds: defaultWorkspaceStaleAfter,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Fetches:        true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
