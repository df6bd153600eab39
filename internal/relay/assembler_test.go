package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembler(t *testing.T) {
	tests := []struct {
		name      string
		fragments []string
		want      string
	}{
		{"single escaped break", []string{`line1\nline2`}, "line1\nline2"},
		{"escape split across fragments", []string{`line1\`, `nline2`}, "line1\nline2"},
		{"raw newlines dropped", []string{"ls\n", " -la\r\n"}, "ls -la"},
		{"concatenated in order", []string{"git ", "status"}, "git status"},
		{"json body", []string{`GET /_search\n{\n  "size": 1\n}`}, "GET /_search\n{\n  \"size\": 1\n}"},
		{"nothing", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Assembler
			for _, f := range tt.fragments {
				a.Add(f)
			}
			assert.Equal(t, tt.want, a.Text())
		})
	}
}

func TestAssemblerRawKeepsEscapes(t *testing.T) {
	var a Assembler
	a.Add(`a\nb`)
	assert.Equal(t, `a\nb`, a.Raw())
	assert.Equal(t, 4, a.Len())
}

func TestUnescapeIsIdempotentOnOutput(t *testing.T) {
	once := Unescape(`one\ntwo\nthree`)
	assert.Equal(t, "one\ntwo\nthree", once)
	assert.Equal(t, once, Unescape(once))
}
