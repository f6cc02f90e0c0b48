package expand

import (
	"os"
	"sort"
	"strings"

	"github.com/opensh/sh/internal/glob"
)

// expandPathnames applies step 6 to one already-split field: if it
// contains an unquoted glob metacharacter, match it against the
// filesystem and return the sorted list of matching pathnames; otherwise
// (or on no match) return the field unchanged, per POSIX's "no match
// leaves the pattern literal" rule.
func (c *Context) expandPathnames(p splitPiece) []string {
	pattern := buildGlobPattern(p.text, p.mask)
	if !glob.HasMeta(pattern) {
		return []string{p.text}
	}
	matches := expandGlobPattern(pattern)
	if len(matches) == 0 {
		return []string{p.text}
	}
	sort.Strings(matches)
	return matches
}

// buildGlobPattern re-escapes any glob metacharacter that originated from
// quoted source text, so the filesystem walk below treats it as a literal
// byte instead of a wildcard.
func buildGlobPattern(text string, mask []bool) string {
	var sb strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if i < len(mask) && mask[i] && isGlobMeta(c) {
			sb.WriteByte('\\')
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

func isGlobMeta(c byte) bool {
	return c == '*' || c == '?' || c == '[' || c == '\\'
}

// expandGlobPattern walks the filesystem one '/'-delimited segment at a
// time, matching each segment against the directory listing with
// glob.Pathname|glob.Period set, and fans candidates out across segments.
func expandGlobPattern(pattern string) []string {
	segs := glob.SplitPathSegments(pattern)
	absolute := strings.HasPrefix(pattern, "/")
	current := []string{""}
	if absolute {
		current = []string{"/"}
		segs = segs[1:]
	}
	for i, seg := range segs {
		if seg == "" {
			continue // collapses "//" and a trailing "/" in the pattern
		}
		isLast := i == len(segs)-1
		var next []string
		for _, dir := range current {
			names, err := readDirNames(dirOrDot(dir))
			if err != nil {
				continue
			}
			for _, name := range names {
				if !glob.Match(seg, name, glob.Pathname|glob.Period) {
					continue
				}
				next = append(next, joinPath(dir, name))
			}
		}
		current = next
		if !isLast && len(current) == 0 {
			return nil
		}
	}
	if absolute && len(segs) == 0 {
		return nil
	}
	return current
}

func dirOrDot(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}

func joinPath(dir, name string) string {
	switch dir {
	case "":
		return name
	case "/":
		return "/" + name
	default:
		return dir + "/" + name
	}
}

func readDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}
