package llm

import (
	"context"
	"fmt"
	"io"
)

// Request carries one generation call. Sampling values are the validated
// flag text and are written into the body as JSON number literals.
type Request struct {
	Model       string
	Prompt      string
	Temperature string
	TopP        string
	TopK        string
}

// Event is one decoded server-sent event.
type Event struct {
	Texts        []string // candidates[].content.parts[].text, empty ones removed
	FinishReason string
}

// EventStream is a finite, one-shot sequence of events. Next returns io.EOF
// once the connection has closed.
type EventStream interface {
	Next(ctx context.Context) (Event, error)
	Close() error
}

// Streamer opens a streamed generation call.
type Streamer interface {
	Stream(ctx context.Context, req Request) (EventStream, error)
}

// Transport posts a JSON body and hands back the raw response stream.
type Transport interface {
	// Post sends body to url. A non-2xx answer is returned as *StatusError.
	Post(ctx context.Context, url string, body []byte) (io.ReadCloser, error)
	// Requires lists the executables the transport needs on $PATH.
	Requires() []string
	Name() string
}

// StatusError reports a non-success HTTP answer.
type StatusError struct {
	StatusCode int // 0 when the transport cannot tell
	Body       []byte
	Message    string // filled by the provider from Body when it can parse it
}

func (e *StatusError) Error() string {
	var s string
	if e.StatusCode == 0 {
		s = "request rejected by server"
	} else {
		s = fmt.Sprintf("server returned HTTP %d", e.StatusCode)
	}
	if e.Message != "" {
		s += ": " + e.Message
	}
	return s
}
