package gemini

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TonnyWong1052/gemsh/internal/llm"
)

func streamOf(s string) *eventStream {
	return newEventStream(io.NopCloser(strings.NewReader(s)))
}

func drain(t *testing.T, s llm.EventStream) ([]llm.Event, error) {
	t.Helper()
	var out []llm.Event
	for {
		ev, err := s.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, ev)
	}
}

func TestEventStreamDecodesDataLines(t *testing.T) {
	body := strings.Join([]string{
		`data: {"candidates":[{"content":{"parts":[{"text":"ls "}],"role":"model"}}]}`,
		``,
		`: keep-alive comment`,
		`event: message`,
		`data: {"candidates":[{"content":{"parts":[{"text":"-la"},{"text":""}]},"finishReason":"STOP"}]}`,
		``,
	}, "\n")

	events, err := drain(t, streamOf(body))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, []string{"ls "}, events[0].Texts)
	assert.Equal(t, []string{"-la"}, events[1].Texts)
	assert.Equal(t, "STOP", events[1].FinishReason)
}

func TestEventStreamSkipsMalformedAndEmptyEvents(t *testing.T) {
	body := "data: {not json\n\ndata: [DONE]\n\ndata: {\"usageMetadata\":{}}\n\n"
	events, err := drain(t, streamOf(body))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Empty(t, events[0].Texts)
}

func TestEventStreamIsNotRestartable(t *testing.T) {
	s := streamOf("data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"a\"}]}}]}\n")
	_, err := drain(t, s)
	require.NoError(t, err)

	_, err = s.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestEventStreamErrorEvent(t *testing.T) {
	s := streamOf(`data: {"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}` + "\n")
	_, err := s.Next(context.Background())

	var se *llm.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 429, se.StatusCode)
	assert.Equal(t, "Resource has been exhausted", se.Message)
}

func TestEventStreamHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := streamOf("data: {}\n").Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnnotateStatus(t *testing.T) {
	se := &llm.StatusError{Body: []byte(`[{"error":{"code":400,"message":"API key not valid"}}]`)}
	annotateStatus(se)
	assert.Equal(t, "API key not valid", se.Message)
	assert.Equal(t, 400, se.StatusCode)

	raw := &llm.StatusError{StatusCode: 502, Body: []byte("Bad Gateway")}
	annotateStatus(raw)
	assert.Equal(t, "Bad Gateway", raw.Message)
}

func TestEventStreamLineLimit(t *testing.T) {
	text := strings.Repeat("a", 2<<20)
	ev, err := drain(t, streamOf(`data: {"candidates":[{"content":{"parts":[{"text":"`+text+`"}]}}]}`+"\n\n"))
	require.NoError(t, err)
	require.Len(t, ev, 1)
	assert.Len(t, ev[0].Texts[0], len(text))

	_, err = drain(t, streamOf("data: "+strings.Repeat("b", MaxEventSize+1)+"\n"))
	assert.True(t, errors.Is(err, bufio.ErrTooLong))
}
