// Package security keeps credentials out of anything printed or logged.
package security

import (
	"regexp"
	"strings"

	"github.com/TonnyWong1052/gemsh/internal/config"
)

// minLiteralSecret is the shortest secret replaced verbatim. Shorter values
// would match ordinary words, so they are only caught by the patterns.
const minLiteralSecret = 8

// RedactPattern rewrites one kind of sensitive text.
type RedactPattern struct {
	Name    string
	Pattern *regexp.Regexp
	// Replace maps the submatches of one hit to its replacement.
	Replace func(groups []string) string
}

func maskGroup(prefix, value int) func([]string) string {
	return func(g []string) string { return g[prefix] + config.MaskKey(g[value]) }
}

// DefaultPatterns cover the ways a Gemini key travels: the key query
// parameter, the x-goog-api-key header, and the bare AIza... form.
var DefaultPatterns = []RedactPattern{
	{
		Name:    "query_key",
		Pattern: regexp.MustCompile(`([?&]key=)([^&\s"']+)`),
		Replace: maskGroup(1, 2),
	},
	{
		Name:    "api_key_header",
		Pattern: regexp.MustCompile(`(?i)(x-goog-api-key\s*:\s*)(\S+)`),
		Replace: maskGroup(1, 2),
	},
	{
		Name:    "google_api_key",
		Pattern: regexp.MustCompile(`\bAIza[0-9A-Za-z_-]{35}\b`),
		Replace: func(g []string) string { return config.MaskKey(g[0]) },
	},
}

// Redactor masks known secrets and secret-shaped text.
type Redactor struct {
	secrets  []string
	patterns []RedactPattern
}

// NewRedactor creates a redactor for the given secrets plus DefaultPatterns.
func NewRedactor(secrets ...string) *Redactor {
	r := &Redactor{patterns: DefaultPatterns}
	for _, s := range secrets {
		if s = strings.TrimSpace(s); len(s) >= minLiteralSecret {
			r.secrets = append(r.secrets, s)
		}
	}
	return r
}

// Redact returns text with every secret masked.
func (r *Redactor) Redact(text string) string {
	for _, s := range r.secrets {
		text = strings.ReplaceAll(text, s, config.MaskKey(s))
	}
	for _, p := range r.patterns {
		text = p.Pattern.ReplaceAllStringFunc(text, func(hit string) string {
			return p.Replace(p.Pattern.FindStringSubmatch(hit))
		})
	}
	return text
}

// RedactError wraps err so its message is redacted while errors.Is and
// errors.As still see the original.
func (r *Redactor) RedactError(err error) error {
	if err == nil {
		return nil
	}
	return &redactedError{msg: r.Redact(err.Error()), cause: err}
}

type redactedError struct {
	msg   string
	cause error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.cause }
