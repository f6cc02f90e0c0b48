// Package glob implements a POSIX fnmatch-equivalent pattern matcher: the
// single entry point shell globbing and the parameter-removal operators
// (${name#pat}, ${name%pat}, ...) both need.
package glob

import "strings"

// Flags controls match's treatment of '/' and a leading '.'.
type Flags int

const (
	// Pathname means '*' and '?' (and bracket expressions) never match '/'.
	Pathname Flags = 1 << iota
	// Period means '*', '?', and brackets never match a leading '.' — either
	// at the start of the whole pattern, or (with Pathname also set) right
	// after a '/'.
	Period
	// NoEscape treats '\' as an ordinary character instead of an escape.
	NoEscape
	// CaseFold matches letters without regard to case.
	CaseFold
)

// Match reports whether text matches pattern under the given flags.
func Match(pattern, text string, flags Flags) bool {
	return matchFrom(pattern, text, flags, true)
}

// matchFrom runs the backtracking scan. atSegStart tracks whether the next
// matched byte would be the first byte of the whole subject, or (under
// Pathname) the first byte after a '/' — the position where Period applies.
func matchFrom(pattern, text string, flags Flags, atSegStart bool) bool {
	var pi, ti int
	// Backtrack point: the most recently seen unanchored '*' in the pattern,
	// and the text position we were at when we saw it. On a later mismatch we
	// retry by having that '*' consume one more text byte, explicit-loop
	// style rather than recursion or goto. starOrigin is starTi's original
	// value, fixed for the life of this star occurrence, so the Period guard
	// below can tell a first-byte consumption from a later one.
	starPi, starTi, starOrigin := -1, -1, -1
	starSegStart := atSegStart

	segStart := atSegStart

	for ti < len(text) {
		if pi < len(pattern) {
			pc := pattern[pi]
			switch pc {
			case '*':
				starPi = pi
				starTi = ti
				starOrigin = ti
				starSegStart = segStart
				pi++
				continue
			case '?':
				if canMatchAny(text[ti], flags, segStart) {
					pi++
					ti++
					segStart = false
					continue
				}
			case '[':
				if end, ok := findBracketEnd(pattern, pi); ok {
					if matchBracket(pattern[pi:end+1], text[ti], flags, segStart) {
						pi = end + 1
						ti++
						segStart = false
						continue
					}
				} else {
					// Unterminated bracket: '[' matches itself literally.
					if matchLiteral(pc, text[ti], flags) {
						pi++
						ti++
						segStart = false
						continue
					}
				}
			case '\\':
				if flags&NoEscape == 0 && pi+1 < len(pattern) {
					if matchLiteral(pattern[pi+1], text[ti], flags) {
						pi += 2
						ti++
						segStart = false
						continue
					}
				} else if matchLiteral(pc, text[ti], flags) {
					pi++
					ti++
					segStart = false
					continue
				}
			default:
				if matchLiteral(pc, text[ti], flags) {
					pi++
					ti++
					segStart = flags&Pathname != 0 && pc == '/'
					continue
				}
			}
		}
		// Mismatch (or pattern exhausted): fall back to the last '*', if any.
		if starPi >= 0 {
			// A '*' anchored at a segment start may never swallow that
			// segment's leading '.': the first byte it would consume is
			// text[starOrigin], and once it has consumed that byte no
			// further retry can undo it.
			if starSegStart && flags&Period != 0 && starTi == starOrigin && text[starTi] == '.' {
				return false
			}
			// Under Pathname a '*' never consumes a '/'.
			if flags&Pathname != 0 && text[starTi] == '/' {
				return false
			}
			starTi++
			pi = starPi + 1
			ti = starTi
			segStart = false
			continue
		}
		return false
	}

	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern)
}

func canMatchAny(c byte, flags Flags, segStart bool) bool {
	if flags&Pathname != 0 && c == '/' {
		return false
	}
	if flags&Period != 0 && segStart && c == '.' {
		return false
	}
	return true
}

func matchLiteral(pc, tc byte, flags Flags) bool {
	if flags&CaseFold != 0 {
		return foldByte(pc) == foldByte(tc)
	}
	return pc == tc
}

func foldByte(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c - 'A' + 'a'
	}
	return c
}

// findBracketEnd locates the matching ']' for a bracket expression starting
// at pattern[start] == '['. A ']' immediately after '[' or '[!'/'[^' is
// treated as a literal member of the class, per POSIX.
func findBracketEnd(pattern string, start int) (int, bool) {
	i := start + 1
	if i < len(pattern) && (pattern[i] == '!' || pattern[i] == '^') {
		i++
	}
	if i < len(pattern) && pattern[i] == ']' {
		i++
	}
	for i < len(pattern) {
		if pattern[i] == ']' {
			return i, true
		}
		i++
	}
	return 0, false
}

// matchBracket evaluates a full bracket expression "[...]" against one
// text byte.
func matchBracket(expr string, c byte, flags Flags, segStart bool) bool {
	if flags&Pathname != 0 && c == '/' {
		return false
	}
	if flags&Period != 0 && segStart && c == '.' {
		return false
	}
	body := expr[1 : len(expr)-1]
	negate := false
	if len(body) > 0 && (body[0] == '!' || body[0] == '^') {
		negate = true
		body = body[1:]
	}
	matched := false
	i := 0
	for i < len(body) {
		if i+2 < len(body) && body[i+1] == '-' {
			lo, hi := body[i], body[i+2]
			if lo > hi {
				lo, hi = hi, lo
			}
			if inRange(c, lo, hi, flags) {
				matched = true
			}
			i += 3
			continue
		}
		if matchLiteral(body[i], c, flags) {
			matched = true
		}
		i++
	}
	if negate {
		return !matched
	}
	return matched
}

func inRange(c, lo, hi byte, flags Flags) bool {
	if flags&CaseFold != 0 {
		fc := foldByte(c)
		return fc >= foldByte(lo) && fc <= foldByte(hi)
	}
	return c >= lo && c <= hi
}

// HasMeta reports whether s contains any unescaped glob metacharacter, the
// check the word expander uses to decide whether a field is even a
// candidate for pathname expansion.
func HasMeta(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[':
			return true
		case '\\':
			i++
		}
	}
	return false
}

// SplitPathSegments breaks a glob pattern into '/'-delimited segments, used
// by pathname expansion to walk the filesystem one directory level at a
// time while matching each segment with Pathname set.
func SplitPathSegments(pattern string) []string {
	return strings.Split(pattern, "/")
}
