package expand

import (
	"os/user"
	"strings"

	"github.com/opensh/sh/internal/lexer"
)

// expandTildes applies step 1 to a word's top-level (unquoted) parts. It is
// a no-op when quotedOuter is true: tilde expansion never happens inside
// double quotes, and this function is reused to recurse into a
// double-quoted part's own Parts, where it must do nothing.
func expandTildes(parts []lexer.Part, quotedOuter bool, c *Context) []lexer.Part {
	if quotedOuter || len(parts) == 0 {
		return parts
	}
	out := make([]lexer.Part, len(parts))
	copy(out, parts)
	for i := range out {
		if out[i].Kind != lexer.PartLiteral {
			continue
		}
		out[i].Text = expandTildesInText(out[i].Text, i == 0, c)
	}
	return out
}

// expandTildesInText rewrites "~" prefixes at the start of the word, and
// (in assignment-value context only) immediately after an unquoted ':' or
// '=', into the corresponding home directory.
func expandTildesInText(text string, atWordStart bool, c *Context) string {
	var sb strings.Builder
	i := 0
	for i < len(text) {
		triggers := (i == 0 && atWordStart) ||
			(c.AssignmentValue && i > 0 && (text[i-1] == ':' || text[i-1] == '='))
		if text[i] == '~' && triggers {
			rest := text[i+1:]
			name := rest
			if slash := strings.IndexByte(rest, '/'); slash >= 0 {
				name = rest[:slash]
			}
			if home, ok := tildeHome(name, c); ok {
				sb.WriteString(home)
				i += 1 + len(name)
				continue
			}
		}
		sb.WriteByte(text[i])
		i++
	}
	return sb.String()
}

func tildeHome(name string, c *Context) (string, bool) {
	if name == "" {
		if v, ok := c.Vars.Get("HOME"); ok {
			return v.Value, true
		}
		return "", false
	}
	u, err := user.Lookup(name)
	if err != nil {
		return "", false
	}
	return u.HomeDir, true
}
