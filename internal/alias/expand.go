package alias

import (
	"strings"

	"github.com/opensh/sh/internal/lexer"
)

// reservedCommandStarters are words that, when they appear where a command
// name is expected, still leave the *next* word in command position (e.g.
// "if", "then", "!", "do" are themselves ordinary words as far as alias
// lookup is concerned, but they don't consume the command-position slot).
var reservedCommandStarters = map[string]bool{
	"if": true, "then": true, "else": true, "elif": true, "while": true,
	"until": true, "do": true, "!": true,
}

// Expand walks toks and replaces every command-position word that names a
// defined, non-recursing alias with its replacement text, re-lexed in
// place. Non-alias tokens pass through unchanged.
func Expand(toks []lexer.Token, store *Store) ([]lexer.Token, error) {
	e := &expander{store: store}
	return e.run(toks)
}

type expander struct {
	store  *Store
	active []string // recursion guard: alias names currently being substituted
}

func (e *expander) isActive(name string) bool {
	for _, n := range e.active {
		if n == name {
			return true
		}
	}
	return false
}

func (e *expander) run(toks []lexer.Token) ([]lexer.Token, error) {
	var out []lexer.Token
	expectCmd := true
	i := 0
	for i < len(toks) {
		tok := toks[i]
		if expectCmd && tok.Type == lexer.WORD {
			expanded, consumedCmdSlot, err := e.tryExpand(tok)
			if err != nil {
				return nil, err
			}
			if expanded != nil {
				out = append(out, expanded...)
				expectCmd = consumedCmdSlot
				i++
				continue
			}
		}
		out = append(out, tok)
		switch tok.Type {
		case lexer.NEWLINE, lexer.SEMI, lexer.AND_IF, lexer.OR_IF, lexer.PIPE,
			lexer.AMP, lexer.LPAREN, lexer.DSEMI, lexer.DSEMI_AMP:
			expectCmd = true
		case lexer.WORD:
			expectCmd = reservedCommandStarters[tok.Lit]
		default:
			expectCmd = false
		}
		i++
	}
	return out, nil
}

// tryExpand attempts to expand tok as an alias. It returns nil expansion if
// tok does not name an alias (or the alias is guarded against recursion).
// consumedCmdSlot reports whether the token immediately following the
// expansion is still in command position (true when the replacement text
// ends in a blank, per POSIX's trailing-blank rule).
func (e *expander) tryExpand(tok lexer.Token) (expansion []lexer.Token, consumedCmdSlot bool, err error) {
	if len(tok.Parts) != 1 || tok.Parts[0].Kind != lexer.PartLiteral {
		return nil, false, nil // quoted or composite words are never alias names
	}
	name := tok.Lit
	text, ok := e.store.Get(name)
	if !ok || e.isActive(name) {
		return nil, false, nil
	}

	e.active = append(e.active, name)
	defer func() { e.active = e.active[:len(e.active)-1] }()

	sub := lexer.New(text)
	var subToks []lexer.Token
	for {
		t, lexErr := sub.Next()
		if lexErr != nil {
			return nil, false, lexErr
		}
		if t.Type == lexer.EOF {
			break
		}
		subToks = append(subToks, t)
	}

	endsInBlank := text == "" || strings.HasSuffix(text, " ") || strings.HasSuffix(text, "\t")

	expanded, err := e.run(subToks)
	if err != nil {
		return nil, false, err
	}
	return expanded, endsInBlank, nil
}
