package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/TonnyWong1052/gemsh/internal/cli"
	"github.com/TonnyWong1052/gemsh/internal/config"
	aerrors "github.com/TonnyWong1052/gemsh/internal/errors"
	"github.com/TonnyWong1052/gemsh/internal/llm"
	"github.com/TonnyWong1052/gemsh/internal/llm/gemini"
	"github.com/TonnyWong1052/gemsh/internal/logging"
	"github.com/TonnyWong1052/gemsh/internal/preflight"
	"github.com/TonnyWong1052/gemsh/internal/prompt"
	"github.com/TonnyWong1052/gemsh/internal/relay"
	"github.com/TonnyWong1052/gemsh/internal/ui"
)

// _version is injected by ldflags: -X 'main._version=vX.Y.Z'
var _version string

func versionString() string {
	if strings.TrimSpace(_version) == "" {
		return "v0.1.0"
	}
	return _version
}

// app carries everything a run touches outside the process, so tests can
// swap it out.
type app struct {
	stdin        io.Reader
	stdout       io.Writer
	stderr       io.Writer
	getenv       func(string) string
	checker      *preflight.Checker
	newTransport func(useCURL bool) llm.Transport
	loader       relay.Loader

	debug bool
}

func newApp() *app {
	return &app{
		stdin:        os.Stdin,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		getenv:       os.Getenv,
		checker:      preflight.NewChecker(),
		newTransport: defaultTransport,
		loader:       ui.NewTerminalPresenter(),
	}
}

func defaultTransport(useCURL bool) llm.Transport {
	if useCURL {
		return llm.NewCURLClient()
	}
	return llm.NewHTTPClient(nil)
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   config.AppName + " [flags] [--] <question...>",
		Short: config.AppDescription,
		Long: `gemsh sends a natural-language question to Gemini and prints the answer
as a ready-to-run shell command, or with --es as a request for the Kibana
Dev Tools console.

Every word that is not a recognised flag is part of the question. Use --
to pass the rest of the line verbatim.

The API key is read from ` + config.EnvGeminiAPIKey + `, or from ~/` + config.DefaultEnvFileName + `.`,
		Example: `  gemsh find files larger than 100MB
  gemsh --temperature 0.7 -- compress logs --older-than 7 days
  gemsh --es documents from the last hour with status 500
  gemsh --select-model rename all jpg files to lowercase`,
		// The question may contain anything that looks like a flag.
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, args)
		},
	}

	// Registered for the help text only; cli.Parse reads the arguments.
	flags := cmd.Flags()
	flags.Bool("list-models", false, "print the supported models and exit")
	flags.Bool("select-model", false, "choose the model interactively (fzf when installed)")
	flags.String("model", config.DefaultModel, "model to use")
	flags.String("mode", string(config.ModeShell), "answer format: shell or elasticsearch")
	flags.Bool("es", false, "shorthand for --mode elasticsearch")
	flags.String("temperature", config.DefaultTemperature, "sampling temperature, a non-negative decimal")
	flags.String("top-p", config.DefaultTopP, "nucleus sampling, a decimal from 0 to 1")
	flags.String("top-k", config.DefaultTopK, "top-k sampling, a non-negative integer")
	flags.Bool("debug", false, "log request details to stderr")
	flags.Bool("version", false, "print the version and exit")
	flags.Bool("help", false, "print this help and exit")

	cmd.SetIn(a.stdin)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	return cmd
}

func (a *app) run(cmd *cobra.Command, args []string) error {
	base := config.DefaultSettings()
	base.ApplyEnv(a.getenv)
	inv, parseErr := cli.Parse(args, base)

	if parseErr == nil {
		switch {
		case inv.Help:
			return cmd.Help()
		case inv.Version:
			fmt.Fprintf(a.stdout, "%s %s\n", config.AppName, versionString())
			return nil
		case inv.ListModels:
			ui.PrintModels(a.stdout)
			return nil
		}
	}

	s := inv.Settings
	a.debug = s.Debug
	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.LogLevel(s.LogLevel())
	logCfg.Output = a.stderr
	if err := logging.Init(logCfg); err != nil {
		return err
	}
	logging.NewRequestID()
	log := logging.WithComponent("cli")

	apiKey, err := config.LoadCredential(a.getenv)
	if err != nil {
		return err
	}
	transport := a.newTransport(s.UseCURL)
	if err := a.checker.Require(transport.Requires()...); err != nil {
		return err
	}

	if parseErr != nil {
		return parseErr
	}
	if err := inv.RequirePrompt(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if inv.SelectModel {
		selector := ui.NewSelector(a.checker, a.stdin, a.stderr)
		model, err := selector.Select(ctx, config.GetSupportedModels(), s.Model)
		if err != nil {
			return err
		}
		s.Model = model
	}
	if err := s.Validate(); err != nil {
		return aerrors.NewUsageError(aerrors.ErrInvalidFlag, "invalid settings").
			WithCause(err).
			WithDetails(err.Error())
	}

	log.WithFields(map[string]interface{}{
		"model":       s.Model,
		"mode":        s.Mode,
		"temperature": s.Temperature,
		"top_p":       s.TopP,
		"top_k":       s.TopK,
		"transport":   transport.Name(),
	}).Debug("sending question")

	client := gemini.NewClient(s.Endpoint, apiKey, transport)
	r := relay.New(client, a.stdout,
		relay.WithLoader(a.loader),
		relay.WithPromptManager(prompt.NewManager(a.getenv("SHELL"))))
	_, err = r.Ask(ctx, s, inv.Prompt)
	return err
}

// helpText renders the full help for usage errors.
func helpText(cmd *cobra.Command, out io.Writer) func() string {
	return func() string {
		var b bytes.Buffer
		cmd.SetOut(&b)
		_ = cmd.Help()
		cmd.SetOut(out)
		return b.String()
	}
}

// execute runs one invocation and returns the process exit status.
func execute(a *app, args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		ui.NewErrorHandler(a.stderr, a.debug, helpText(cmd, a.stdout)).HandleError(err)
	}
	return aerrors.ExitCode(err)
}

func main() {
	os.Exit(execute(newApp(), os.Args[1:]))
}
