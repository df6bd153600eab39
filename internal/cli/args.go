// Package cli turns the raw command line into an Invocation.
//
// gemsh treats every token it does not recognise as part of the prompt, so
// "gemsh list files --sorted by size" sends "list files --sorted by size".
// pflag would reject or drop "--sorted", which is why the root command
// disables cobra's flag parsing and hands its arguments here.
package cli

import (
	"fmt"
	"strings"

	"github.com/TonnyWong1052/gemsh/internal/config"
	aerrors "github.com/TonnyWong1052/gemsh/internal/errors"
)

// Flag names
const (
	FlagHelp        = "--help"
	FlagListModels  = "--list-models"
	FlagSelectModel = "--select-model"
	FlagModel       = "--model"
	FlagMode        = "--mode"
	FlagES          = "--es"
	FlagTemperature = "--temperature"
	FlagTopP        = "--top-p"
	FlagTopK        = "--top-k"
	FlagDebug       = "--debug"
	FlagVersion     = "--version"
	EndOfOptions    = "--"
)

// Invocation is the parsed form of one command line.
type Invocation struct {
	Help        bool
	Version     bool
	ListModels  bool
	SelectModel bool
	Settings    config.Settings
	Prompt      string
}

type valueSetter func(s *config.Settings, v string) error

var valueFlags = map[string]valueSetter{
	FlagTemperature: func(s *config.Settings, v string) error {
		if err := config.ValidateTemperature(v); err != nil {
			return err
		}
		s.Temperature = v
		return nil
	},
	FlagTopP: func(s *config.Settings, v string) error {
		if err := config.ValidateTopP(v); err != nil {
			return err
		}
		s.TopP = v
		return nil
	},
	FlagTopK: func(s *config.Settings, v string) error {
		if err := config.ValidateTopK(v); err != nil {
			return err
		}
		s.TopK = v
		return nil
	},
	FlagModel: func(s *config.Settings, v string) error {
		if err := config.ValidateModel(v); err != nil {
			return aerrors.NewUsageError(aerrors.ErrUnknownModel, err.Error()).
				WithCause(err).
				WithContext("flag", FlagModel)
		}
		s.Model = v
		return nil
	},
	FlagMode: func(s *config.Settings, v string) error {
		m, ok := config.ParseMode(v)
		if !ok {
			names := make([]string, 0, 2)
			for _, m := range config.GetSupportedModes() {
				names = append(names, string(m))
			}
			return aerrors.NewUsageError(aerrors.ErrUnknownMode,
				fmt.Sprintf("invalid value '%s' for %s: must be one of %s", v, FlagMode, strings.Join(names, ", "))).
				WithContext("flag", FlagMode)
		}
		s.Mode = m
		return nil
	},
}

// Parse walks args left to right. --help, --version and --list-models end parsing at
// once; the first malformed value is returned as a usage error.
func Parse(args []string, base config.Settings) (Invocation, error) {
	inv := Invocation{Settings: base}
	var words []string

	for i := 0; i < len(args); i++ {
		tok := args[i]

		if tok == EndOfOptions {
			words = append(words, args[i+1:]...)
			break
		}

		name, inline, hasInline := splitInline(tok)
		if set, ok := valueFlags[name]; ok {
			value := inline
			if !hasInline {
				if i+1 >= len(args) {
					return inv, aerrors.NewUsageError(aerrors.ErrMissingValue,
						fmt.Sprintf("%s requires a value", name)).WithContext("flag", name)
				}
				i++
				value = args[i]
			}
			if err := set(&inv.Settings, value); err != nil {
				if aerrors.IsRelayError(err) {
					return inv, err
				}
				return inv, aerrors.NewUsageError(aerrors.ErrInvalidFlag, err.Error()).
					WithCause(err).
					WithContext("flag", name)
			}
			continue
		}

		switch tok {
		case FlagHelp:
			inv.Help = true
			return inv, nil
		case FlagListModels:
			inv.ListModels = true
			return inv, nil
		case FlagVersion:
			inv.Version = true
			return inv, nil
		case FlagSelectModel:
			inv.SelectModel = true
		case FlagES:
			inv.Settings.Mode = config.ModeElasticsearch
		case FlagDebug:
			inv.Settings.Debug = true
		default:
			words = append(words, tok)
		}
	}

	inv.Prompt = strings.TrimSpace(strings.Join(words, " "))
	return inv, nil
}

// RequirePrompt reports a usage error when no prompt text was given.
func (inv Invocation) RequirePrompt() error {
	if inv.Prompt == "" {
		return aerrors.NewUsageError(aerrors.ErrEmptyPrompt, "no prompt given")
	}
	return nil
}

// splitInline splits "--flag=value" into its parts.
func splitInline(tok string) (string, string, bool) {
	if !strings.HasPrefix(tok, "--") {
		return tok, "", false
	}
	if idx := strings.IndexByte(tok, '='); idx > 2 {
		return tok[:idx], tok[idx+1:], true
	}
	return tok, "", false
}
