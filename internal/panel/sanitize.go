// Package panel maps synchronized payloads to renderable viewmodels. Every
// function here is pure: no network, no rendering backend, no hidden state.
// All free text coming off the wire passes through Sanitize exactly once, at
// viewmodel construction; renderers treat viewmodel text as literal.
package panel

import "strings"

// maxTextRunes bounds any single payload-sourced text field once rendered.
const maxTextRunes = 160

// Panel lines delimit their metadata tokens with square brackets
// ("[09:30] [TACTIC] ..."), so brackets are the structural runes payload text
// must never contribute. Sanitize maps them to parentheses, collapses line
// breaks and tabs to spaces, drops remaining control runes, and truncates.
// The output contains none of the characters Sanitize rewrites, so applying
// it twice is the same as applying it once.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	n := 0
	for _, r := range s {
		if n >= maxTextRunes {
			break
		}
		switch {
		case r == '[':
			r = '('
		case r == ']':
			r = ')'
		case r == '\n' || r == '\r' || r == '\t':
			r = ' '
		case r < 0x20 || r == 0x7f:
			continue
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}
