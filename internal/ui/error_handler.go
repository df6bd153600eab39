package ui

import (
	"errors"
	"fmt"
	"io"

	"github.com/pterm/pterm"

	"github.com/TonnyWong1052/gemsh/internal/config"
	aerrors "github.com/TonnyWong1052/gemsh/internal/errors"
)

// ErrorHandler renders failures on stderr.
type ErrorHandler struct {
	out       io.Writer
	debugMode bool
	help      func() string
}

// NewErrorHandler creates an error handler. help, when set, supplies the
// usage text printed after usage errors.
func NewErrorHandler(out io.Writer, debugMode bool, help func() string) *ErrorHandler {
	return &ErrorHandler{out: out, debugMode: debugMode, help: help}
}

var suggestions = map[aerrors.ErrorCode][]string{
	aerrors.ErrCredentialMissing: {
		"export " + config.EnvGeminiAPIKey + "=<your key>",
		"or add " + config.EnvGeminiAPIKey + "=<your key> to ~/" + config.DefaultEnvFileName,
	},
	aerrors.ErrToolMissing: {
		"install the missing tool, or unset " + config.EnvUseCURL + " to use the built-in HTTP client",
	},
	aerrors.ErrUnknownModel: {
		"run with --list-models to see the supported models",
	},
	aerrors.ErrStatus: {
		"check that the API key is valid and the model is available to it",
	},
	aerrors.ErrEmptyResponse: {
		"rephrase the question or try another model with --model",
	},
}

// HandleError prints err. Usage errors are followed by the help text.
func (eh *ErrorHandler) HandleError(err error) {
	if err == nil {
		return
	}

	re, ok := aerrors.GetRelayError(err)
	if !ok {
		re = aerrors.WrapError(err, aerrors.ErrRequest, err.Error())
	}
	if re.Code == aerrors.ErrUserCancel {
		fmt.Fprintln(eh.out, pterm.Yellow("Cancelled."))
		return
	}

	fmt.Fprintln(eh.out, pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprintf("%s %s", icon(re.Category), title(re.Category)))
	msg := re.Message
	if re.Details != "" {
		msg += ": " + re.Details
	}
	fmt.Fprintln(eh.out, pterm.NewStyle(pterm.FgLightRed).Sprint(msg))

	if tips := suggestions[re.Code]; len(tips) > 0 {
		for _, tip := range tips {
			fmt.Fprintln(eh.out, pterm.NewStyle(pterm.FgYellow).Sprint("  - "+tip))
		}
	}

	if eh.debugMode {
		debugStyle := pterm.NewStyle(pterm.FgGray)
		fmt.Fprintln(eh.out, debugStyle.Sprintf("code=%s at %s", re.Code, re.Stack))
		if cause := errors.Unwrap(re); cause != nil {
			fmt.Fprintln(eh.out, debugStyle.Sprint("cause: "+cause.Error()))
		}
	}

	if re.Category == aerrors.CategoryUsage && eh.help != nil {
		fmt.Fprintln(eh.out)
		fmt.Fprint(eh.out, eh.help())
	}
}

func title(c aerrors.Category) string {
	switch c {
	case aerrors.CategorySetup:
		return "Setup error"
	case aerrors.CategoryUsage:
		return "Usage error"
	default:
		return "Generation failed"
	}
}

func icon(c aerrors.Category) string {
	switch c {
	case aerrors.CategorySetup:
		return "⚙"
	case aerrors.CategoryUsage:
		return "✗"
	default:
		return "!"
	}
}
