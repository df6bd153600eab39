package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	aerrors "github.com/TonnyWong1052/gemsh/internal/errors"
)

// Settings holds the generation parameters for one invocation. It is built
// once from defaults, environment and flags, then treated as read-only.
type Settings struct {
	Model       string
	Temperature string
	TopP        string
	TopK        string
	Mode        Mode
	Endpoint    string
	UseCURL     bool
	Debug       bool
}

// DefaultSettings returns the settings used when no flag overrides them.
func DefaultSettings() Settings {
	return Settings{
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
		TopK:        DefaultTopK,
		Mode:        ModeShell,
		Endpoint:    GeminiAPIEndpoint,
	}
}

// ApplyEnv overlays environment switches onto s.
func (s *Settings) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvEndpoint)); v != "" {
		s.Endpoint = strings.TrimSuffix(v, "/")
	}
	if IsTruthy(getenv(EnvUseCURL), "curl") {
		s.UseCURL = true
	}
	if IsTruthy(getenv(EnvDebug), "debug") {
		s.Debug = true
	}
}

// LogLevel returns the logrus level name matching the debug switch.
func (s Settings) LogLevel() string {
	if s.Debug {
		return LogLevelDebug
	}
	return LogLevelWarn
}

// GetEnvFilePath returns the credential dotfile path, honouring GEMSH_ENV_FILE.
func GetEnvFilePath(getenv func(string) string) (string, error) {
	if p := strings.TrimSpace(getenv(EnvEnvFile)); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultEnvFileName), nil
}

// ReadEnvFile parses KEY=value pairs from path without touching the process
// environment. A missing file yields no values.
func ReadEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, aerrors.NewSetupError(aerrors.ErrDotfileLoad, "could not read credential file").
			WithCause(err).
			WithContext("path", path)
	}
	return values, nil
}

// WithFallback returns a lookup that consults getenv first and falls back to
// values for anything the environment leaves empty.
func WithFallback(getenv func(string) string, values map[string]string) func(string) string {
	return func(key string) string {
		if v := getenv(key); strings.TrimSpace(v) != "" {
			return v
		}
		return values[key]
	}
}

// ResolveAPIKey returns the Gemini API key from the environment.
func ResolveAPIKey(getenv func(string) string) (string, error) {
	key := strings.TrimSpace(getenv(EnvGeminiAPIKey))
	if key == "" {
		return "", aerrors.NewSetupError(aerrors.ErrCredentialMissing, EnvGeminiAPIKey+" is not set").
			WithDetails("export it or add it to ~/" + DefaultEnvFileName)
	}
	return key, nil
}

// LoadCredential reads the dotfile, then resolves the API key. The dotfile
// only fills in variables the environment does not already carry.
func LoadCredential(getenv func(string) string) (string, error) {
	path, err := GetEnvFilePath(getenv)
	if err != nil {
		return "", aerrors.NewSetupError(aerrors.ErrDotfileLoad, "could not locate home directory").WithCause(err)
	}
	values, err := ReadEnvFile(path)
	if err != nil {
		return "", err
	}
	return ResolveAPIKey(WithFallback(getenv, values))
}

// MaskKey hides all but the edges of a credential for log output.
func MaskKey(key string) string {
	key = strings.TrimSpace(key)
	if len(key) <= 10 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
