package config

import "strings"

// Application constants
const (
	// Application metadata
	AppName        = "gemsh"
	AppDescription = "Turn a plain-language question into a shell command or an Elasticsearch snippet using Gemini"

	// Credential dotfile, relative to the home directory
	DefaultEnvFileName = ".gemsh.env"

	// API endpoint
	GeminiAPIEndpoint = "https://generativelanguage.googleapis.com/v1beta"

	// Generation defaults
	DefaultModel       = "gemini-2.5-flash"
	DefaultTemperature = "0.2"
	DefaultTopP        = "0.95"
	DefaultTopK        = "40"
	ResponseMimeType   = "text/plain"

	// Log levels
	LogLevelDebug = "debug"
	LogLevelWarn  = "warn"

	// Environment variables
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvEndpoint     = "GEMSH_ENDPOINT"
	EnvUseCURL      = "GEMSH_USE_CURL"
	EnvDebug        = "GEMSH_DEBUG"
	EnvEnvFile      = "GEMSH_ENV_FILE"
)

// Mode selects the fixed system instruction sent ahead of the user's text.
type Mode string

const (
	ModeShell         Mode = "shell"
	ModeElasticsearch Mode = "elasticsearch"
)

// SupportedModels is the static set of model identifiers gemsh accepts.
var SupportedModels = []string{
	"gemini-2.5-flash",
	"gemini-2.5-pro",
	"gemini-2.5-flash-lite",
	"gemini-2.0-flash",
	"gemini-2.0-flash-lite",
}

// GetSupportedModels returns a copy of the supported model list
func GetSupportedModels() []string {
	out := make([]string, len(SupportedModels))
	copy(out, SupportedModels)
	return out
}

// GetSupportedModes returns all output modes
func GetSupportedModes() []Mode {
	return []Mode{ModeShell, ModeElasticsearch}
}

// IsValidModel checks if a model identifier is in the static list
func IsValidModel(model string) bool {
	for _, m := range SupportedModels {
		if m == model {
			return true
		}
	}
	return false
}

// ParseMode resolves a mode name, accepting "es" as a short alias.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case string(ModeShell), "sh":
		return ModeShell, true
	case string(ModeElasticsearch), "es":
		return ModeElasticsearch, true
	}
	return "", false
}

// IsTruthy reports whether an environment value turns a switch on.
func IsTruthy(v string, extra ...string) bool {
	v = strings.TrimSpace(strings.ToLower(v))
	switch v {
	case "1", "true", "yes", "on":
		return true
	}
	for _, e := range extra {
		if v == e {
			return true
		}
	}
	return false
}
