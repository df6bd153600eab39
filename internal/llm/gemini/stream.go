package gemini

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/TonnyWong1052/gemsh/internal/llm"
	"github.com/TonnyWong1052/gemsh/internal/logging"
)

const dataPrefix = "data:"

// MaxEventSize bounds a single "data:" line. A longer line ends the stream
// with bufio.ErrTooLong, reported as a stream failure.
const MaxEventSize = 4 << 20

// eventStream decodes a text/event-stream body one "data:" line at a time.
type eventStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
	log     *logging.Logger
}

func newEventStream(body io.ReadCloser) *eventStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxEventSize)
	return &eventStream{
		body:    body,
		scanner: scanner,
		log:     logging.WithComponent("gemini"),
	}
}

// Next returns the next event, or io.EOF once the server closes the stream.
func (s *eventStream) Next(ctx context.Context) (llm.Event, error) {
	if s.done {
		return llm.Event{}, io.EOF
	}
	for {
		if err := ctx.Err(); err != nil {
			return llm.Event{}, err
		}
		if !s.scanner.Scan() {
			s.done = true
			if err := s.scanner.Err(); err != nil {
				return llm.Event{}, annotateStatus(err)
			}
			return llm.Event{}, io.EOF
		}
		line := strings.TrimSpace(s.scanner.Text())
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
		if data == "" || data == "[DONE]" {
			continue
		}
		if !gjson.Valid(data) {
			s.log.WithField("event", truncate(data, 120)).Debug("skipping malformed event")
			continue
		}
		if msg := gjson.Get(data, "error.message"); msg.Exists() {
			s.done = true
			return llm.Event{}, &llm.StatusError{
				StatusCode: int(gjson.Get(data, "error.code").Int()),
				Body:       []byte(data),
				Message:    msg.String(),
			}
		}
		return decodeEvent(data), nil
	}
}

// Close releases the underlying connection.
func (s *eventStream) Close() error {
	s.done = true
	return s.body.Close()
}

// decodeEvent collects every non-empty candidates[].content.parts[].text.
func decodeEvent(data string) llm.Event {
	var ev llm.Event
	gjson.Get(data, "candidates").ForEach(func(_, cand gjson.Result) bool {
		cand.Get("content.parts").ForEach(func(_, part gjson.Result) bool {
			if t := part.Get("text").String(); t != "" {
				ev.Texts = append(ev.Texts, t)
			}
			return true
		})
		if fr := cand.Get("finishReason").String(); fr != "" {
			ev.FinishReason = fr
		}
		return true
	})
	return ev
}

// annotateStatus fills StatusError.Message from a Gemini error body.
func annotateStatus(err error) error {
	var se *llm.StatusError
	if !errors.As(err, &se) || se.Message != "" {
		return err
	}
	body := se.Body
	// Error answers to a streaming call may arrive as a JSON array.
	if r := gjson.ParseBytes(body); r.IsArray() {
		body = []byte(r.Get("0").Raw)
	}
	if msg := gjson.GetBytes(body, "error.message").String(); msg != "" {
		se.Message = msg
		if se.StatusCode == 0 {
			se.StatusCode = int(gjson.GetBytes(body, "error.code").Int())
		}
	} else if s := strings.TrimSpace(string(se.Body)); s != "" {
		se.Message = truncate(s, 200)
	}
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
