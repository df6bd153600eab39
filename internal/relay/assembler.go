package relay

import "strings"

// escapedNewline is the two-character sequence the model writes for a line break.
const escapedNewline = `\n`

// Assembler accumulates streamed text fragments.
//
// Raw newlines inside fragments are dropped because the stream can split a
// line at arbitrary points. Structural breaks arrive as the escaped form and
// are restored by Text once every fragment is in, so an escape split across
// two fragments still resolves.
type Assembler struct {
	buf strings.Builder
}

// Add appends fragment without its \n and \r characters.
func (a *Assembler) Add(fragment string) {
	for _, r := range fragment {
		if r == '\n' || r == '\r' {
			continue
		}
		a.buf.WriteRune(r)
	}
}

// Len reports how many bytes have been collected.
func (a *Assembler) Len() int { return a.buf.Len() }

// Raw returns the collected text with escapes still in place.
func (a *Assembler) Raw() string { return a.buf.String() }

// Text returns the collected text with escaped newlines turned into real ones.
func (a *Assembler) Text() string { return Unescape(a.buf.String()) }

// Unescape replaces every literal \n sequence in s with a line break.
func Unescape(s string) string {
	return strings.ReplaceAll(s, escapedNewline, "\n")
}
