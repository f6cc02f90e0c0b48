package expand

import "strings"

// splitPiece is one IFS-delimited sub-field, still carrying its per-byte
// quoted mask so pathname expansion (step 6) knows which bytes are
// eligible glob metacharacters.
type splitPiece struct {
	text string
	mask []bool
}

// flatten concatenates a field's runs into one string plus a parallel
// per-byte quoted mask.
func flatten(fb *fieldBuilder) (string, []bool) {
	var sb strings.Builder
	var mask []bool
	for _, r := range fb.runs {
		sb.WriteString(r.text)
		for range r.text {
			mask = append(mask, r.quoted)
		}
	}
	return sb.String(), mask
}

// splitIFS implements POSIX field splitting: splits occur only at unquoted
// IFS bytes. A run of unquoted IFS whitespace collapses to a single
// delimiter and produces no empty field at either end of the text; each
// unquoted non-whitespace IFS byte is its own delimiter and produces an
// empty field when it starts the text or follows another delimiter; a
// delimiter at the very end of the text produces no trailing empty field.
func splitIFS(text string, mask []bool, ifs string) []splitPiece {
	if ifs == "" {
		return []splitPiece{{text: text, mask: mask}}
	}
	isWS := func(b byte) bool { return b == ' ' || b == '\t' || b == '\n' }
	inIFS := func(b byte) bool { return strings.IndexByte(ifs, b) >= 0 }

	var pieces []splitPiece
	var curText strings.Builder
	var curMask []bool
	flush := func() {
		pieces = append(pieces, splitPiece{text: curText.String(), mask: append([]bool(nil), curMask...)})
		curText.Reset()
		curMask = nil
	}

	n := len(text)
	i := 0
	for i < n && !mask[i] && isWS(text[i]) && inIFS(text[i]) {
		i++
	}
	for i < n {
		c := text[i]
		if !mask[i] && inIFS(c) {
			if isWS(c) {
				flush()
				for i < n && !mask[i] && isWS(text[i]) && inIFS(text[i]) {
					i++
				}
				continue
			}
			flush()
			i++
			continue
		}
		curText.WriteByte(c)
		curMask = append(curMask, mask[i])
		i++
	}
	if curText.Len() > 0 {
		flush()
	}
	return pieces
}

// finishField runs steps 5 and 6 over fb. topLevel is false for fields that
// are already known final (e.g. produced by a quoted "$@" expansion, or
// any field when the context is an assignment value): those skip straight
// to quote removal with no further splitting or globbing.
func (c *Context) finishField(fb *fieldBuilder, topLevel bool) []string {
	if c.AssignmentValue || !topLevel {
		var sb strings.Builder
		for _, r := range fb.runs {
			sb.WriteString(r.text)
		}
		return []string{sb.String()}
	}
	text, mask := flatten(fb)
	if text == "" {
		if fb.forceKeep {
			return []string{""}
		}
		return nil
	}
	pieces := splitIFS(text, mask, c.IFS())
	var out []string
	for _, p := range pieces {
		out = append(out, c.expandPathnames(p)...)
	}
	return out
}
