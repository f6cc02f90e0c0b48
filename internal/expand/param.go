package expand

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/opensh/sh/internal/arith"
	"github.com/opensh/sh/internal/glob"
	"github.com/opensh/sh/internal/lexer"
)

// expandParamPart evaluates one PartParam / PartBraced part. isAt is true
// only for a quoted "$@", whose result must be spliced in as atFields
// (separate fields) rather than a single value.
func (c *Context) expandParamPart(part lexer.Part, quotedOuter bool) (value string, atFields []string, isAt bool, err error) {
	body := part.Text

	if part.Kind == lexer.PartParam {
		if body == "@" || body == "*" {
			v, fields, at, err := c.expandAtStar(body, quotedOuter)
			return v, fields, at, err
		}
		v, _ := c.lookupVar(body)
		return v, nil, false, nil
	}

	// PartBraced: "${...}".
	if strings.HasPrefix(body, "#") && len(body) > 1 {
		name := body[1:]
		if name == "@" {
			return strconv.Itoa(c.Params.Len()), nil, false, nil
		}
		v, _ := c.lookupVar(name)
		return strconv.Itoa(len(v)), nil, false, nil
	}

	name, rest := splitParamName(body)
	if (name == "@" || name == "*") && rest == "" {
		return c.expandAtStar(name, quotedOuter)
	}

	op, arg := splitOperator(rest)
	switch op {
	case "":
		v, _ := c.lookupVar(name)
		return v, nil, false, nil

	case ":-", "-":
		v, ok := c.lookupVar(name)
		if !ok || (op == ":-" && v == "") {
			def, err := c.expandOperand(arg)
			return def, nil, false, err
		}
		return v, nil, false, nil

	case ":=", "=":
		v, ok := c.lookupVar(name)
		if !ok || (op == ":=" && v == "") {
			def, err := c.expandOperand(arg)
			if err != nil {
				return "", nil, false, err
			}
			if err := c.Vars.Set(name, def); err != nil {
				return "", nil, false, err
			}
			return def, nil, false, nil
		}
		return v, nil, false, nil

	case ":?", "?":
		v, ok := c.lookupVar(name)
		if !ok || (op == ":?" && v == "") {
			msg, _ := c.expandOperand(arg)
			return "", nil, false, &UnsetParameterError{Name: name, Message: msg}
		}
		return v, nil, false, nil

	case ":+", "+":
		v, ok := c.lookupVar(name)
		if !ok || (op == ":+" && v == "") {
			return "", nil, false, nil
		}
		alt, err := c.expandOperand(arg)
		return alt, nil, false, err

	case "#", "##", "%", "%%":
		v, _ := c.lookupVar(name)
		pat, err := c.expandOperand(arg)
		if err != nil {
			return "", nil, false, err
		}
		return trimByPattern(v, pat, op), nil, false, nil

	case ":":
		v, _ := c.lookupVar(name)
		s, err := c.substring(v, arg)
		return s, nil, false, err
	}

	v, _ := c.lookupVar(name)
	return v, nil, false, nil
}

// splitParamName splits a "${...}" body into its leading parameter name
// (a shell identifier, a positional-parameter digit run, or a single
// special character) and whatever operator text follows.
func splitParamName(body string) (name, rest string) {
	if body == "" {
		return "", ""
	}
	switch body[0] {
	case '@', '*', '#', '?', '$', '!', '-':
		return body[:1], body[1:]
	}
	i := 0
	if body[0] >= '0' && body[0] <= '9' {
		for i < len(body) && body[i] >= '0' && body[i] <= '9' {
			i++
		}
		return body[:i], body[i:]
	}
	for i < len(body) {
		r := rune(body[i])
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				break
			}
		} else if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		i++
	}
	return body[:i], body[i:]
}

// splitOperator classifies the text following a parameter name, preferring
// the longer two-character form (":-" over "-", "##" over "#", ...) since a
// greedy-but-wrong short match would silently change the operator.
func splitOperator(rest string) (op, arg string) {
	switch {
	case rest == "":
		return "", ""
	case strings.HasPrefix(rest, ":-"):
		return ":-", rest[2:]
	case strings.HasPrefix(rest, ":="):
		return ":=", rest[2:]
	case strings.HasPrefix(rest, ":?"):
		return ":?", rest[2:]
	case strings.HasPrefix(rest, ":+"):
		return ":+", rest[2:]
	case strings.HasPrefix(rest, "##"):
		return "##", rest[2:]
	case strings.HasPrefix(rest, "%%"):
		return "%%", rest[2:]
	case strings.HasPrefix(rest, "-"):
		return "-", rest[1:]
	case strings.HasPrefix(rest, "="):
		return "=", rest[1:]
	case strings.HasPrefix(rest, "?"):
		return "?", rest[1:]
	case strings.HasPrefix(rest, "+"):
		return "+", rest[1:]
	case strings.HasPrefix(rest, "#"):
		return "#", rest[1:]
	case strings.HasPrefix(rest, "%"):
		return "%", rest[1:]
	case strings.HasPrefix(rest, ":"):
		return ":", rest[1:]
	}
	return "", rest
}

// expandOperand expands the operand text of a "${name OP word}" construct
// (or a removal pattern) through the same steps as an ordinary word, minus
// field splitting and pathname expansion: it always collapses to one
// string, since it is either a default value or a pattern, never a list of
// command arguments.
func (c *Context) expandOperand(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	parts, err := lexer.ScanConstructText(raw)
	if err != nil {
		return "", err
	}
	fields, err := c.expandToFields(parts, false)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, fb := range fields {
		for _, r := range fb.runs {
			sb.WriteString(r.text)
		}
	}
	return sb.String(), nil
}

func (c *Context) expandAtStar(name string, quotedOuter bool) (string, []string, bool, error) {
	all := c.Params.All()
	if name == "@" && quotedOuter {
		return "", append([]string(nil), all...), true, nil
	}
	return strings.Join(all, c.ifsFirstByte()), nil, false, nil
}

func (c *Context) ifsFirstByte() string {
	ifs := c.IFS()
	if ifs == "" {
		return ""
	}
	return ifs[:1]
}

// trimByPattern implements the four removal operators. "#"/"%" remove the
// shortest matching prefix/suffix (tried shortest candidate first); "##"/
// "%%" remove the longest (tried longest candidate first).
func trimByPattern(v, pat, op string) string {
	if pat == "" {
		return v
	}
	switch op {
	case "#":
		for i := 0; i <= len(v); i++ {
			if glob.Match(pat, v[:i], 0) {
				return v[i:]
			}
		}
	case "##":
		for i := len(v); i >= 0; i-- {
			if glob.Match(pat, v[:i], 0) {
				return v[i:]
			}
		}
	case "%":
		for i := len(v); i >= 0; i-- {
			if glob.Match(pat, v[i:], 0) {
				return v[:i]
			}
		}
	case "%%":
		for i := 0; i <= len(v); i++ {
			if glob.Match(pat, v[i:], 0) {
				return v[:i]
			}
		}
	}
	return v
}

// substring implements "${name:offset:length}". offset and length are
// arithmetic expressions, as real shells extend it; a negative offset
// counts from the end of the value.
func (c *Context) substring(v, arg string) (string, error) {
	offText, lenText, hasLen := cutOnce(arg, ':')
	offVal, err := arith.Eval(offText, c.Vars)
	if err != nil {
		return "", err
	}
	off := int(offVal)
	if off < 0 {
		off += len(v)
		if off < 0 {
			off = 0
		}
	}
	if off > len(v) {
		off = len(v)
	}
	end := len(v)
	if hasLen {
		lenVal, err := arith.Eval(lenText, c.Vars)
		if err != nil {
			return "", err
		}
		l := int(lenVal)
		if l < 0 {
			l = 0
		}
		end = off + l
		if end > len(v) {
			end = len(v)
		}
	}
	if end < off {
		end = off
	}
	return v[off:end], nil
}

func cutOnce(s string, sep byte) (before, after string, found bool) {
	idx := strings.IndexByte(s, sep)
	if idx < 0 {
		return s, "", false
	}
	return s[:idx], s[idx+1:], true
}
