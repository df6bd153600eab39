// Package gemini talks to the Generative Language streamGenerateContent API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/TonnyWong1052/gemsh/internal/config"
	aerrors "github.com/TonnyWong1052/gemsh/internal/errors"
	"github.com/TonnyWong1052/gemsh/internal/llm"
	"github.com/TonnyWong1052/gemsh/internal/logging"
	"github.com/TonnyWong1052/gemsh/internal/security"
)

var _ llm.Streamer = (*Client)(nil)

// Client implements llm.Streamer for Gemini.
type Client struct {
	endpoint  string
	apiKey    string
	transport llm.Transport
	redactor  *security.Redactor
	log       *logging.Logger
}

// NewClient creates a Gemini client. endpoint is the versioned base URL,
// e.g. https://generativelanguage.googleapis.com/v1beta.
func NewClient(endpoint, apiKey string, transport llm.Transport) *Client {
	if endpoint == "" {
		endpoint = config.GeminiAPIEndpoint
	}
	return &Client{
		endpoint:  strings.TrimSuffix(endpoint, "/"),
		apiKey:    apiKey,
		transport: transport,
		redactor:  security.NewRedactor(apiKey),
		log:       logging.WithComponent("gemini"),
	}
}

// StreamURL returns the SSE endpoint for model, credential included.
func (c *Client) StreamURL(model string) string {
	return fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse&key=%s",
		c.endpoint, url.PathEscape(model), url.QueryEscape(c.apiKey))
}

// Stream implements llm.Streamer.
func (c *Client) Stream(ctx context.Context, req llm.Request) (llm.EventStream, error) {
	body, err := BuildPayload(req)
	if err != nil {
		return nil, aerrors.NewGenerationError(aerrors.ErrPayload, "failed to build request payload").
			WithCause(err).
			WithDetails(err.Error())
	}

	c.log.WithFields(map[string]interface{}{
		"model":     req.Model,
		"transport": c.transport.Name(),
		"url":       c.redactedURL(req.Model),
		"bytes":     len(body),
	}).Debug("opening stream")

	rc, err := c.transport.Post(ctx, c.StreamURL(req.Model), body)
	if err != nil {
		return nil, c.classify(err, aerrors.ErrRequest)
	}
	return &classifiedStream{inner: newEventStream(rc), client: c}, nil
}

// classifiedStream maps decoder errors onto relay error codes.
type classifiedStream struct {
	inner  *eventStream
	client *Client
}

func (s *classifiedStream) Next(ctx context.Context) (llm.Event, error) {
	ev, err := s.inner.Next(ctx)
	if err != nil && !errors.Is(err, io.EOF) {
		return ev, s.client.classify(err, aerrors.ErrStream)
	}
	return ev, err
}

func (s *classifiedStream) Close() error { return s.inner.Close() }

func (c *Client) redactedURL(model string) string {
	return c.redactor.Redact(c.StreamURL(model))
}

// classify turns transport and decoder failures into relay errors. fallback
// is the code for failures that are neither cancellations nor API rejections.
// net/http errors quote the request URL, so every message is redacted.
func (c *Client) classify(err error, fallback aerrors.ErrorCode) error {
	if aerrors.IsRelayError(err) {
		return err
	}
	safe := c.redactor.RedactError(err)
	if errors.Is(err, context.Canceled) {
		return aerrors.NewGenerationError(aerrors.ErrUserCancel, "cancelled").WithCause(safe)
	}
	var se *llm.StatusError
	if errors.As(annotateStatus(err), &se) {
		e := aerrors.NewGenerationError(aerrors.ErrStatus, "Gemini API rejected the request").
			WithCause(safe).
			WithContext("status", se.StatusCode)
		if se.Message != "" {
			e.WithDetails(c.redactor.Redact(se.Message))
		}
		return e
	}
	msg := "Gemini API request failed"
	if fallback == aerrors.ErrStream {
		msg = "reading the response stream failed"
	}
	return aerrors.WrapError(safe, fallback, msg).WithDetails(safe.Error())
}
