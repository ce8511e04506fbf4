package service

import "strings"

// escapeSeqs maps literal backslash escapes as they appear in model output
// to the characters they stand for. Applied before the doubled-backslash
// collapse so that `\\` never eats the backslash of a specific escape.
var escapeSeqs = [][2]string{
	{`\n`, "\n"},
	{`\t`, "\t"},
	{`\"`, `"`},
	{`\*`, "*"},
	{`\#`, "#"},
	{`\[`, "["},
	{`\]`, "]"},
	{`\(`, "("},
	{`\)`, ")"},
}

// Normalize cleans up an answer string that arrived through one or more
// layers of JSON encoding: trims whitespace, strips a single pair of
// wrapping double quotes, and unescapes literal backslash sequences.
// Doubled backslashes collapse last. Already-clean text passes through
// unchanged.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	s := strings.TrimSpace(raw)

	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	for _, seq := range escapeSeqs {
		s = strings.ReplaceAll(s, seq[0], seq[1])
	}
	s = strings.ReplaceAll(s, `\\`, `\`)

	return s
}
