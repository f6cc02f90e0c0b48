package lexer

// Tokenize lexes all of src into a flat token slice (ending just before the
// terminal EOF token, which is not included), wiring up here-document
// bodies along the way: whenever a '<<' or '<<-' token is immediately
// followed by its delimiter word, the delimiter is queued with QueueHeredoc
// and the resulting *HeredocRequest is attached to the operator token's
// Heredoc field, to be filled in once the lexer reaches the end of the
// current line.
func Tokenize(src string) ([]Token, error) {
	l := New(src)
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if tok.Type == EOF {
			break
		}
		if tok.Type == DLESS || tok.Type == DLESSDASH {
			delim, err := l.Next()
			if err != nil {
				return nil, err
			}
			quoted := delim.Type != WORD || wordIsQuoted(delim)
			text := delim.Lit
			if quoted && len(delim.Parts) > 0 {
				// The body ends at the delimiter's quote-removed text.
				text = ""
				for _, p := range delim.Parts {
					if p.Kind == PartDoubleQuoted {
						for _, ip := range p.Parts {
							text += ip.Text
						}
					} else {
						text += p.Text
					}
				}
			}
			req := l.QueueHeredoc(text, quoted, tok.Type == DLESSDASH)
			tok.Heredoc = req
			toks = append(toks, tok, delim)
			continue
		}
		toks = append(toks, tok)
	}
	return toks, nil
}

func wordIsQuoted(tok Token) bool {
	for _, p := range tok.Parts {
		if p.Quoted || p.Kind == PartSingleQuoted || p.Kind == PartDoubleQuoted {
			return true
		}
	}
	return false
}
