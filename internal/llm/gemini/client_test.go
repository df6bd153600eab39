package gemini

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	aerrors "github.com/TonnyWong1052/gemsh/internal/errors"
	"github.com/TonnyWong1052/gemsh/internal/llm"
)

func testRequest() llm.Request {
	return llm.Request{
		Model:       "gemini-2.5-flash",
		Prompt:      "list files",
		Temperature: "0.2",
		TopP:        "0.95",
		TopK:        "40",
	}
}

func TestStreamURL(t *testing.T) {
	c := NewClient("https://example.test/v1beta/", "k ey", llm.NewHTTPClient(nil))
	assert.Equal(t,
		"https://example.test/v1beta/models/gemini-2.5-pro:streamGenerateContent?alt=sse&key=k+ey",
		c.StreamURL("gemini-2.5-pro"))
}

func TestStreamAgainstServer(t *testing.T) {
	var gotPath, gotQuery, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"line1\\\\nli\"}]}}]}\n\n")
		w.(http.Flusher).Flush()
		fmt.Fprint(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"ne2\"}]},\"finishReason\":\"STOP\"}]}\n\n")
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/v1beta", "secret", llm.NewHTTPClient(srv.Client()))
	stream, err := c.Stream(context.Background(), testRequest())
	require.NoError(t, err)
	defer stream.Close()

	events, err := drain(t, stream)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, []string{`line1\nli`}, events[0].Texts)
	assert.Equal(t, []string{"ne2"}, events[1].Texts)

	assert.Equal(t, "/v1beta/models/gemini-2.5-flash:streamGenerateContent", gotPath)
	assert.Equal(t, "alt=sse&key=secret", gotQuery)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "list files", gjson.GetBytes(gotBody, "contents.0.parts.0.text").String())
	assert.Equal(t, "40", gjson.GetBytes(gotBody, "generationConfig.topK").Raw)
}

func TestStreamStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad", llm.NewHTTPClient(srv.Client()))
	_, err := c.Stream(context.Background(), testRequest())
	require.Error(t, err)

	re, ok := aerrors.GetRelayError(err)
	require.True(t, ok)
	assert.Equal(t, aerrors.ErrStatus, re.Code)
	assert.Equal(t, aerrors.CategoryGeneration, re.Category)
	assert.Equal(t, "API key not valid. Please pass a valid API key.", re.Details)
	assert.Equal(t, http.StatusBadRequest, re.Context["status"])
}

func TestStreamErrorEventMidStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"ls\"}]}}]}\n\n")
		fmt.Fprint(w, "data: {\"error\":{\"code\":503,\"message\":\"The model is overloaded.\"}}\n\n")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", llm.NewHTTPClient(srv.Client()))
	stream, err := c.Stream(context.Background(), testRequest())
	require.NoError(t, err)
	defer stream.Close()

	ev, err := stream.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ls"}, ev.Texts)

	_, err = stream.Next(context.Background())
	assert.True(t, aerrors.HasCode(err, aerrors.ErrStatus))
}

func TestStreamMalformedPayload(t *testing.T) {
	c := NewClient("", "k", llm.NewHTTPClient(nil))
	req := testRequest()
	req.TopK = "seven"

	_, err := c.Stream(context.Background(), req)
	assert.True(t, aerrors.HasCode(err, aerrors.ErrPayload))
}

func TestStreamConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	const key = "AIzaSyExampleKey1234567"
	c := NewClient(url, key, llm.NewHTTPClient(nil))
	_, err := c.Stream(context.Background(), testRequest())
	assert.True(t, aerrors.HasCode(err, aerrors.ErrRequest))
	assert.NotContains(t, err.Error(), key)

	re, _ := aerrors.GetRelayError(err)
	assert.NotContains(t, re.Cause.Error(), key)
}

func TestStreamCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient("http://127.0.0.1:1", "k", llm.NewHTTPClient(nil))
	_, err := c.Stream(ctx, testRequest())
	assert.True(t, aerrors.HasCode(err, aerrors.ErrUserCancel))
}

func TestRedactedURLHidesKey(t *testing.T) {
	c := NewClient("", "AIzaSyExampleKey1234", llm.NewHTTPClient(nil))
	u := c.redactedURL("gemini-2.5-flash")
	assert.NotContains(t, u, "AIzaSyExampleKey1234")
	assert.Contains(t, u, "alt=sse&key=")
}
