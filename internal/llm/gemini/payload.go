package gemini

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/TonnyWong1052/gemsh/internal/config"
	"github.com/TonnyWong1052/gemsh/internal/llm"
)

var decimalPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// BuildPayload renders the streamGenerateContent body:
//
//	{"contents":[{"role":"user","parts":[{"text":...}]}],
//	 "generationConfig":{"temperature":T,"topP":P,"topK":K,"responseMimeType":"text/plain"}}
//
// Sampling values are inserted as raw number literals so the text the user
// typed reaches the API unchanged. Decimal text JSON cannot carry as is, such
// as "007" or "00.5", loses its leading zeros first.
func BuildPayload(req llm.Request) ([]byte, error) {
	b := payloadBuilder{body: []byte(`{}`)}
	b.set("contents.0.role", "user")
	b.set("contents.0.parts.0.text", req.Prompt)
	b.setNumber("generationConfig.temperature", req.Temperature)
	b.setNumber("generationConfig.topP", req.TopP)
	b.setNumber("generationConfig.topK", req.TopK)
	b.set("generationConfig.responseMimeType", config.ResponseMimeType)
	if b.err != nil {
		return nil, b.err
	}
	if !gjson.ValidBytes(b.body) {
		return nil, fmt.Errorf("payload is not valid JSON")
	}
	return b.body, nil
}

type payloadBuilder struct {
	body []byte
	err  error
}

func (b *payloadBuilder) set(path string, v interface{}) {
	if b.err != nil {
		return
	}
	b.body, b.err = sjson.SetBytes(b.body, path, v)
}

func (b *payloadBuilder) setNumber(path, raw string) {
	if b.err != nil {
		return
	}
	num, ok := jsonNumber(raw)
	if !ok {
		b.err = fmt.Errorf("%s: '%s' is not a JSON number", path, raw)
		return
	}
	b.body, b.err = sjson.SetRawBytes(b.body, path, []byte(num))
}

// jsonNumber returns raw when it is already a JSON number, otherwise the
// plain decimal with its redundant leading zeros removed.
func jsonNumber(raw string) (string, bool) {
	if gjson.Valid(raw) && gjson.Parse(raw).Type == gjson.Number {
		return raw, true
	}
	if !decimalPattern.MatchString(raw) {
		return "", false
	}
	intPart, frac, _ := strings.Cut(raw, ".")
	intPart = strings.TrimLeft(intPart, "0")
	if intPart == "" {
		intPart = "0"
	}
	if frac != "" {
		return intPart + "." + frac, true
	}
	return intPart, true
}
