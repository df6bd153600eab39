package prompt

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"text/template"

	"github.com/TonnyWong1052/gemsh/internal/config"
)

// Both instructions ask the model to write structural line breaks as the two
// characters `\n`. The stream decoder drops raw newlines from fragments and the
// relay turns the escaped form back into real ones.
const shellInstruction = `You are a command line assistant running on {{.OS}}{{if .Shell}} in a {{.Shell}} shell{{end}}. Reply with a single ready-to-run shell command that does what the user asks. Output ONLY the command: no prose, no markdown, no code fences, no placeholder paths. If several commands are needed, chain them with && or write one per line. Write every line break as the two characters \n instead of an actual newline.
User request: {{.Prompt}}`

const elasticsearchInstruction = `You are an Elasticsearch assistant. Reply with a request the user can paste into the Kibana Dev Tools console: the HTTP method and path on the first line, then the JSON body pretty-printed with two-space indentation. Output ONLY the request: no prose, no markdown, no code fences. Write every line break as the two characters \n instead of an actual newline.
User request: {{.Prompt}}`

// Manager handles the fixed system instructions for each output mode.
type Manager struct {
	templates map[config.Mode]*template.Template
	os        string
	shell     string
}

// NewDefaultManager creates a prompt manager with the built-in instructions
// for the shell named by $SHELL.
func NewDefaultManager() *Manager {
	return NewManager(os.Getenv("SHELL"))
}

// NewManager creates a prompt manager for the shell at shellPath. An empty or
// unrecognised path leaves the shell out of the instruction.
func NewManager(shellPath string) *Manager {
	return &Manager{
		templates: map[config.Mode]*template.Template{
			config.ModeShell:         template.Must(template.New("shell").Parse(shellInstruction)),
			config.ModeElasticsearch: template.Must(template.New("elasticsearch").Parse(elasticsearchInstruction)),
		},
		os:    runtime.GOOS,
		shell: detectShell(shellPath),
	}
}

// Prompt is the fixed instruction joined with the user's text.
type Prompt struct {
	Mode config.Mode
	User string
	Text string
}

// Compose renders the instruction for mode around the user's text.
func (m *Manager) Compose(mode config.Mode, user string) (Prompt, error) {
	t, ok := m.templates[mode]
	if !ok {
		return Prompt{}, fmt.Errorf("no instruction for mode '%s'", mode)
	}
	data := struct {
		OS     string
		Shell  string
		Prompt string
	}{OS: describeOS(m.os), Shell: m.shell, Prompt: user}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return Prompt{}, fmt.Errorf("failed to execute template: %w", err)
	}
	return Prompt{Mode: mode, User: user, Text: buf.String()}, nil
}

func describeOS(goos string) string {
	switch goos {
	case "darwin":
		return "macOS"
	case "windows":
		return "Windows (PowerShell)"
	case "linux":
		return "Linux"
	default:
		return goos
	}
}

// detectShell names the login shell from $SHELL, or "" when unknown.
func detectShell(path string) string {
	name := strings.TrimSuffix(filepath.Base(strings.TrimSpace(path)), ".exe")
	switch name {
	case "bash", "zsh", "fish", "sh", "dash", "ksh", "nu", "pwsh":
		return name
	default:
		return ""
	}
}
