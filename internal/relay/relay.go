// Package relay turns one question into one printed answer.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/TonnyWong1052/gemsh/internal/config"
	aerrors "github.com/TonnyWong1052/gemsh/internal/errors"
	"github.com/TonnyWong1052/gemsh/internal/llm"
	"github.com/TonnyWong1052/gemsh/internal/logging"
	"github.com/TonnyWong1052/gemsh/internal/prompt"
)

// Loader shows progress while the answer streams.
type Loader interface {
	Start(message string)
	Stop(success bool)
}

type noopLoader struct{}

func (noopLoader) Start(string) {}
func (noopLoader) Stop(bool)    {}

// Relay composes the prompt, streams the answer and writes it out.
type Relay struct {
	streamer llm.Streamer
	prompts  *prompt.Manager
	out      io.Writer
	loader   Loader
	log      *logging.Logger
}

// Option configures a Relay.
type Option func(*Relay)

// WithLoader sets the progress indicator shown while streaming.
func WithLoader(l Loader) Option {
	return func(r *Relay) {
		if l != nil {
			r.loader = l
		}
	}
}

// WithPromptManager replaces the built-in instruction templates.
func WithPromptManager(m *prompt.Manager) Option {
	return func(r *Relay) {
		if m != nil {
			r.prompts = m
		}
	}
}

// New creates a Relay writing answers to out.
func New(streamer llm.Streamer, out io.Writer, opts ...Option) *Relay {
	r := &Relay{
		streamer: streamer,
		prompts:  prompt.NewDefaultManager(),
		out:      out,
		loader:   noopLoader{},
		log:      logging.WithComponent("relay"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Ask sends question with the given settings and prints the answer followed
// by a blank line. Nothing is written to out unless the whole stream succeeds.
func (r *Relay) Ask(ctx context.Context, s config.Settings, question string) (string, error) {
	p, err := r.prompts.Compose(s.Mode, question)
	if err != nil {
		return "", aerrors.NewUsageError(aerrors.ErrUnknownMode, err.Error()).WithCause(err)
	}

	req := llm.Request{
		Model:       s.Model,
		Prompt:      p.Text,
		Temperature: s.Temperature,
		TopP:        s.TopP,
		TopK:        s.TopK,
	}

	r.loader.Start(loadingMessage(s.Mode))
	text, err := r.collect(ctx, req)
	r.loader.Stop(err == nil)
	if err != nil {
		r.log.WithError(err).Debug("generation failed")
		return "", err
	}

	if _, err := io.WriteString(r.out, text+"\n\n"); err != nil {
		return "", fmt.Errorf("failed to write answer: %w", err)
	}
	return text, nil
}

// collect drains the stream into an Assembler.
func (r *Relay) collect(ctx context.Context, req llm.Request) (string, error) {
	stream, err := r.streamer.Stream(ctx, req)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var (
		asm    Assembler
		events int
		finish string
	)
	for {
		ev, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		events++
		for _, t := range ev.Texts {
			asm.Add(t)
		}
		if ev.FinishReason != "" {
			finish = ev.FinishReason
		}
	}

	r.log.WithFields(map[string]interface{}{
		"events":        events,
		"bytes":         asm.Len(),
		"finish_reason": finish,
	}).Debug("stream complete")

	if strings.TrimSpace(asm.Raw()) == "" {
		e := aerrors.NewGenerationError(aerrors.ErrEmptyResponse, "the model returned an empty answer").
			WithContext("events", events)
		if finish != "" {
			e.WithDetails("finish reason: " + finish)
		}
		return "", e
	}
	return asm.Text(), nil
}

func loadingMessage(mode config.Mode) string {
	if mode == config.ModeElasticsearch {
		return "Generating Elasticsearch request"
	}
	return "Generating command"
}
