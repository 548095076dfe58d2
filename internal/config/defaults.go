package config

const (
	defaultStagingDir             = "~/.local/share/vouch/staging"
	defaultLogDir                 = "~/.local/share/vouch/logs"
	defaultAPIBind                = "127.0.0.1:7488"
	defaultGeminiBaseURL          = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiUploadURL        = "https://generativelanguage.googleapis.com/upload/v1beta/files"
	defaultGeminiTimeoutSeconds   = 120
	defaultGeminiUploadTimeout    = 600
	defaultModelMode              = ModelModeStatic
	defaultModel                  = DefaultModel
	defaultPollIntervalSeconds    = 2
	defaultPollTimeoutSeconds     = 60
	defaultBackoffBaseSeconds     = 2
	defaultBackoffMaxSeconds      = 5
	defaultCleanupTimeoutSeconds  = 10
	defaultMaxUploadMB            = 200
	defaultStaleAfterHours        = 24
	defaultServerReadTimeout      = 300
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultRequireAcknowledgement = true
	defaultNotifyTimeoutSeconds   = 10
)

// Model resolution modes.
const (
	ModelModeStatic   = "static"
	ModelModeDiscover = "discover"

	// DefaultModel is used when no candidate can be resolved.
	DefaultModel = "gemini-flash-latest"
)

func defaultCandidates() []string {
	return []string{"gemini-flash-latest", "gemini-2.5-flash", "gemini-2.0-flash", "gemini-2.5-flash-lite"}
}

func defaultPriority() []string {
	return []string{"gemini-2.5-pro", "gemini-flash-latest", "gemini-2.5-flash", "gemini-2.0-flash", "gemini-2.5-flash-lite", "gemini-1.5-flash"}
}

func defaultExtensions() []string {
	return []string{".mp4", ".mov", ".avi", ".mkv", ".webm", ".mpeg", ".mpg", ".3gp", ".wmv", ".flv"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Gemini: Gemini{
			BaseURL:              defaultGeminiBaseURL,
			UploadURL:            defaultGeminiUploadURL,
			TimeoutSeconds:       defaultGeminiTimeoutSeconds,
			UploadTimeoutSeconds: defaultGeminiUploadTimeout,
		},
		Models: Models{
			Mode:       defaultModelMode,
			Candidates: defaultCandidates(),
			Priority:   defaultPriority(),
			Default:    defaultModel,
		},
		Audit: Audit{
			PollIntervalSeconds:  defaultPollIntervalSeconds,
			PollTimeoutSeconds:   defaultPollTimeoutSeconds,
			BackoffBaseSeconds:   defaultBackoffBaseSeconds,
			BackoffMaxSeconds:    defaultBackoffMaxSeconds,
			CleanupTimeoutSecond: defaultCleanupTimeoutSeconds,
		},
		Staging: Staging{
			MaxUploadMB:       defaultMaxUploadMB,
			StaleAfterHours:   defaultStaleAfterHours,
			AllowedExtensions: defaultExtensions(),
		},
		Server: Server{
			RequireAcknowledgement: defaultRequireAcknowledgement,
			ReadTimeoutSeconds:     defaultServerReadTimeout,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNotifyTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
