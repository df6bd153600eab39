package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/TonnyWong1052/gemsh/internal/llm"
)

func TestBuildPayload(t *testing.T) {
	body, err := BuildPayload(llm.Request{
		Model:       "gemini-2.5-flash",
		Prompt:      "say \"hi\"\nthen leave",
		Temperature: "0.70",
		TopP:        "1.0",
		TopK:        "40",
	})
	require.NoError(t, err)

	doc := gjson.ParseBytes(body)
	assert.Equal(t, "user", doc.Get("contents.0.role").String())
	assert.Equal(t, "say \"hi\"\nthen leave", doc.Get("contents.0.parts.0.text").String())
	assert.True(t, doc.Get("contents").IsArray())
	assert.True(t, doc.Get("contents.0.parts").IsArray())

	gc := doc.Get("generationConfig")
	assert.Equal(t, "0.70", gc.Get("temperature").Raw, "values are copied verbatim")
	assert.Equal(t, "1.0", gc.Get("topP").Raw)
	assert.Equal(t, "40", gc.Get("topK").Raw)
	assert.Equal(t, gjson.Number, gc.Get("topK").Type)
	assert.Equal(t, "text/plain", gc.Get("responseMimeType").String())
}

func TestBuildPayloadNormalizesLeadingZeros(t *testing.T) {
	body, err := BuildPayload(llm.Request{Prompt: "x", Temperature: "00.5", TopP: "0.50", TopK: "007"})
	require.NoError(t, err)

	gc := gjson.GetBytes(body, "generationConfig")
	assert.Equal(t, "0.5", gc.Get("temperature").Raw)
	assert.Equal(t, "0.50", gc.Get("topP").Raw, "valid literals stay verbatim")
	assert.Equal(t, "7", gc.Get("topK").Raw)

	body, err = BuildPayload(llm.Request{Prompt: "x", Temperature: "01", TopP: "1", TopK: "000"})
	require.NoError(t, err)
	assert.Equal(t, "1", gjson.GetBytes(body, "generationConfig.temperature").Raw)
	assert.Equal(t, "0", gjson.GetBytes(body, "generationConfig.topK").Raw)
}

func TestBuildPayloadRejectsNonNumbers(t *testing.T) {
	for _, bad := range []string{"", "1.", "abc", "1e", ".5"} {
		_, err := BuildPayload(llm.Request{Prompt: "x", Temperature: "1", TopP: "1", TopK: bad})
		assert.Error(t, err, bad)
	}
}
