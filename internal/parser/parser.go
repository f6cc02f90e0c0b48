// Package parser implements the recursive-descent grammar parser: token
// list in, *ast.Program (or a parse error with line/column) out.
package parser

import (
	"fmt"

	"github.com/opensh/sh/internal/ast"
	"github.com/opensh/sh/internal/lexer"
)

// ParseError is a grammar-level failure. UnexpectedEOF is set when the
// mismatch was against end of input rather than a concrete wrong token, so
// an interactive front end can tell "needs more input" apart from "this is
// simply wrong".
type ParseError struct {
	Pos           lexer.Position
	Message       string
	UnexpectedEOF bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

var terminatorWords = map[string]bool{
	"then": true, "do": true, "done": true, "elif": true,
	"else": true, "fi": true, "esac": true, "}": true, "in": true,
}

// Parser consumes a token slice positionally. Tokens never need
// reprocessing, so the cursor only ever moves forward; look-ahead is
// unbounded since it is just reading further into the already-lexed slice.
type Parser struct {
	toks []lexer.Token
	pos  int
}

// New creates a Parser over an already lexed (and alias-expanded) token
// slice, as produced by lexer.Tokenize + alias.Expand.
func New(toks []lexer.Token) *Parser {
	return &Parser{toks: toks}
}

// Parse parses toks into a *ast.Program.
func Parse(toks []lexer.Token) (*ast.Program, error) {
	return New(toks).ParseProgram()
}

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.toks) {
		pos := lexer.Position{}
		if len(p.toks) > 0 {
			pos = p.toks[len(p.toks)-1].Pos
		}
		return lexer.Token{Type: lexer.EOF, Pos: pos}
	}
	return p.toks[p.pos]
}

func (p *Parser) peek(n int) lexer.Token {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.toks[idx]
}

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) errorf(format string, args ...interface{}) *ParseError {
	cur := p.cur()
	return &ParseError{Pos: cur.Pos, Message: fmt.Sprintf(format, args...), UnexpectedEOF: cur.Type == lexer.EOF}
}

func isWordLit(tok lexer.Token, lit string) bool {
	return tok.Type == lexer.WORD && tok.Lit == lit
}

func isRedirStart(typ lexer.TokenType) bool {
	switch typ {
	case lexer.LESS, lexer.GREAT, lexer.DGREAT, lexer.LESSAND, lexer.GREATAND,
		lexer.LESSGREAT, lexer.CLOBBER, lexer.DLESS, lexer.DLESSDASH, lexer.IO_NUMBER:
		return true
	}
	return false
}

func (p *Parser) skipNewlines() {
	for p.cur().Type == lexer.NEWLINE {
		p.advance()
	}
}

func (p *Parser) atListEnd() bool {
	tok := p.cur()
	switch tok.Type {
	case lexer.EOF, lexer.NEWLINE, lexer.RPAREN, lexer.DSEMI, lexer.DSEMI_AMP:
		return true
	case lexer.WORD:
		return terminatorWords[tok.Lit]
	}
	return false
}

// ParseProgram parses a whole token stream into the program root.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	p.skipNewlines()
	for p.cur().Type != lexer.EOF {
		cc, err := p.parseCompleteCommand()
		if err != nil {
			return nil, err
		}
		prog.Commands = append(prog.Commands, cc)
		p.skipNewlines()
	}
	return prog, nil
}

func (p *Parser) parseCompleteCommand() (*ast.CompleteCommand, error) {
	pos := p.cur().Pos
	list, err := p.parseList()
	if err != nil {
		return nil, err
	}
	cc := &ast.CompleteCommand{List: list}
	cc.Position = pos
	return cc, nil
}

func (p *Parser) parseList() (*ast.List, error) {
	pos := p.cur().Pos
	list := &ast.List{}
	for {
		ao, err := p.parseAndOr()
		if err != nil {
			return nil, err
		}
		list.AndOrs = append(list.AndOrs, ao)

		bg := false
		switch p.cur().Type {
		case lexer.AMP:
			bg = true
			p.advance()
		case lexer.SEMI:
			p.advance()
		default:
			list.Background = append(list.Background, bg)
			list.Position = pos
			return list, nil
		}
		list.Background = append(list.Background, bg)
		if p.atListEnd() {
			list.Position = pos
			return list, nil
		}
	}
}

func (p *Parser) parseAndOr() (*ast.AndOr, error) {
	pos := p.cur().Pos
	pl, err := p.parsePipeline()
	if err != nil {
		return nil, err
	}
	ao := &ast.AndOr{Pipelines: []*ast.Pipeline{pl}}
	ao.Position = pos
	for {
		var op ast.AndOrOp
		switch p.cur().Type {
		case lexer.AND_IF:
			op = ast.AndOrAnd
		case lexer.OR_IF:
			op = ast.AndOrOr
		default:
			return ao, nil
		}
		p.advance()
		p.skipNewlines()
		pl2, err := p.parsePipeline()
		if err != nil {
			return nil, err
		}
		ao.Pipelines = append(ao.Pipelines, pl2)
		ao.Ops = append(ao.Ops, op)
	}
}

func (p *Parser) parsePipeline() (*ast.Pipeline, error) {
	pos := p.cur().Pos
	negate := false
	if isWordLit(p.cur(), "!") {
		negate = true
		p.advance()
	}
	cmd, err := p.parseCommand()
	if err != nil {
		return nil, err
	}
	pl := &ast.Pipeline{Negate: negate, Commands: []ast.Command{cmd}}
	pl.Position = pos
	for p.cur().Type == lexer.PIPE {
		p.advance()
		p.skipNewlines()
		cmd2, err := p.parseCommand()
		if err != nil {
			return nil, err
		}
		pl.Commands = append(pl.Commands, cmd2)
	}
	return pl, nil
}

func (p *Parser) parseCommand() (ast.Command, error) {
	if p.looksLikeFunctionDef() {
		return p.parseFunctionDef()
	}
	tok := p.cur()
	switch {
	case tok.Type == lexer.LPAREN:
		return p.parseSubshell()
	case isWordLit(tok, "{"):
		return p.parseBraceGroup()
	case isWordLit(tok, "if"):
		return p.parseIf()
	case isWordLit(tok, "while"):
		return p.parseWhile(false)
	case isWordLit(tok, "until"):
		return p.parseWhile(true)
	case isWordLit(tok, "for"):
		return p.parseFor()
	case isWordLit(tok, "case"):
		return p.parseCase()
	}
	return p.parseSimpleCommand()
}

func (p *Parser) looksLikeFunctionDef() bool {
	return p.cur().Type == lexer.WORD && p.peek(1).Type == lexer.LPAREN && p.peek(2).Type == lexer.RPAREN
}

func (p *Parser) parseFunctionDef() (ast.Command, error) {
	pos := p.cur().Pos
	name := p.advance().Lit
	p.advance() // '('
	p.advance() // ')'
	p.skipNewlines()
	body, err := p.parseCompoundCommand()
	if err != nil {
		return nil, err
	}
	fd := &ast.FunctionDef{Name: name, Body: body}
	fd.Position = pos
	return fd, nil
}

func (p *Parser) parseCompoundCommand() (ast.Command, error) {
	tok := p.cur()
	switch {
	case tok.Type == lexer.LPAREN:
		return p.parseSubshell()
	case isWordLit(tok, "{"):
		return p.parseBraceGroup()
	case isWordLit(tok, "if"):
		return p.parseIf()
	case isWordLit(tok, "while"):
		return p.parseWhile(false)
	case isWordLit(tok, "until"):
		return p.parseWhile(true)
	case isWordLit(tok, "for"):
		return p.parseFor()
	case isWordLit(tok, "case"):
		return p.parseCase()
	}
	return nil, p.errorf("expected compound command, found %s", tok.Type)
}

func (p *Parser) parseRedirList() ([]*ast.IoRedirect, error) {
	var redirs []*ast.IoRedirect
	for isRedirStart(p.cur().Type) {
		r, err := p.parseRedir()
		if err != nil {
			return nil, err
		}
		redirs = append(redirs, r)
	}
	return redirs, nil
}

func (p *Parser) parseRedir() (*ast.IoRedirect, error) {
	pos := p.cur().Pos
	fd := -1
	hasFd := false
	if p.cur().Type == lexer.IO_NUMBER {
		hasFd = true
		fd = atoiSimple(p.cur().Lit)
		p.advance()
	}
	opTok := p.advance()
	var op ast.RedirOp
	switch opTok.Type {
	case lexer.LESS:
		op = ast.RedirLess
	case lexer.GREAT:
		op = ast.RedirGreat
	case lexer.DGREAT:
		op = ast.RedirDGreat
	case lexer.LESSAND:
		op = ast.RedirLessAnd
	case lexer.GREATAND:
		op = ast.RedirGreatAnd
	case lexer.LESSGREAT:
		op = ast.RedirLessGreat
	case lexer.CLOBBER:
		op = ast.RedirClobber
	case lexer.DLESS:
		op = ast.RedirHeredoc
	case lexer.DLESSDASH:
		op = ast.RedirHeredocTab
	default:
		return nil, p.errorf("expected redirection operator, found %s", opTok.Type)
	}

	redir := &ast.IoRedirect{Fd: fd, HasFd: hasFd, Op: op}
	redir.Position = pos

	if op == ast.RedirHeredoc || op == ast.RedirHeredocTab {
		redir.Heredoc = opTok.Heredoc
		// the delimiter word token was already consumed by lexer.Tokenize's
		// pairing; it still occupies a slot in the token stream here.
		if p.cur().Type == lexer.WORD {
			p.advance()
		}
		return redir, nil
	}

	if p.cur().Type != lexer.WORD {
		return nil, p.errorf("expected word after redirection operator, found %s", p.cur().Type)
	}
	w := &ast.Word{Tok: p.cur()}
	w.Position = p.cur().Pos
	redir.Target = w
	p.advance()
	return redir, nil
}

func atoiSimple(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}

func (p *Parser) parseSubshell() (ast.Command, error) {
	pos := p.cur().Pos
	p.advance() // '('
	p.skipNewlines()
	body, err := p.parseList()
	if err != nil {
		return nil, err
	}
	if p.cur().Type != lexer.RPAREN {
		return nil, p.errorf("expected ')', found %s", p.cur().Type)
	}
	p.advance()
	redirs, err := p.parseRedirList()
	if err != nil {
		return nil, err
	}
	sub := &ast.Subshell{Body: body, Redirs: redirs}
	sub.Position = pos
	return sub, nil
}

func (p *Parser) parseBraceGroup() (ast.Command, error) {
	pos := p.cur().Pos
	p.advance() // '{'
	p.skipNewlines()
	body, err := p.parseList()
	if err != nil {
		return nil, err
	}
	if !isWordLit(p.cur(), "}") {
		return nil, p.errorf("expected '}', found %s", p.cur().Type)
	}
	p.advance()
	redirs, err := p.parseRedirList()
	if err != nil {
		return nil, err
	}
	bg := &ast.BraceGroup{Body: body, Redirs: redirs}
	bg.Position = pos
	return bg, nil
}

func (p *Parser) expectWord(lit string) error {
	if !isWordLit(p.cur(), lit) {
		return p.errorf("expected %q, found %s", lit, p.cur().Type)
	}
	p.advance()
	return nil
}

func (p *Parser) parseIf() (ast.Command, error) {
	pos := p.cur().Pos
	p.advance() // 'if'
	ifc := &ast.IfClause{}
	ifc.Position = pos
	for {
		cond, err := p.parseList()
		if err != nil {
			return nil, err
		}
		if err := p.expectWord("then"); err != nil {
			return nil, err
		}
		body, err := p.parseList()
		if err != nil {
			return nil, err
		}
		ifc.Conds = append(ifc.Conds, cond)
		ifc.Bodies = append(ifc.Bodies, body)
		if isWordLit(p.cur(), "elif") {
			p.advance()
			continue
		}
		break
	}
	if isWordLit(p.cur(), "else") {
		p.advance()
		elseBody, err := p.parseList()
		if err != nil {
			return nil, err
		}
		ifc.Else = elseBody
	}
	if err := p.expectWord("fi"); err != nil {
		return nil, err
	}
	redirs, err := p.parseRedirList()
	if err != nil {
		return nil, err
	}
	ifc.Redirs = redirs
	return ifc, nil
}

func (p *Parser) parseWhile(until bool) (ast.Command, error) {
	pos := p.cur().Pos
	p.advance() // 'while'/'until'
	cond, err := p.parseList()
	if err != nil {
		return nil, err
	}
	if err := p.expectWord("do"); err != nil {
		return nil, err
	}
	body, err := p.parseList()
	if err != nil {
		return nil, err
	}
	if err := p.expectWord("done"); err != nil {
		return nil, err
	}
	redirs, err := p.parseRedirList()
	if err != nil {
		return nil, err
	}
	wl := &ast.WhileLoop{Cond: cond, Body: body, Until: until, Redirs: redirs}
	wl.Position = pos
	return wl, nil
}

func (p *Parser) parseFor() (ast.Command, error) {
	pos := p.cur().Pos
	p.advance() // 'for'
	if p.cur().Type != lexer.WORD {
		return nil, p.errorf("expected name after 'for', found %s", p.cur().Type)
	}
	name := p.advance().Lit
	fl := &ast.ForLoop{Name: name}
	fl.Position = pos

	p.skipSeparators()
	if isWordLit(p.cur(), "in") {
		p.advance()
		fl.HasIn = true
		for p.cur().Type == lexer.WORD {
			w := &ast.Word{Tok: p.cur()}
			w.Position = p.cur().Pos
			fl.Words = append(fl.Words, w)
			p.advance()
		}
		p.skipSeparators()
	}
	if err := p.expectWord("do"); err != nil {
		return nil, err
	}
	body, err := p.parseList()
	if err != nil {
		return nil, err
	}
	if err := p.expectWord("done"); err != nil {
		return nil, err
	}
	redirs, err := p.parseRedirList()
	if err != nil {
		return nil, err
	}
	fl.Body = body
	fl.Redirs = redirs
	return fl, nil
}

// skipSeparators consumes any run of NEWLINE/SEMI tokens between clauses,
// as the "for name [;|newline] [in ...]" and "[in ...] [;|newline] do"
// productions allow.
func (p *Parser) skipSeparators() {
	for p.cur().Type == lexer.NEWLINE || p.cur().Type == lexer.SEMI {
		p.advance()
	}
}

func (p *Parser) parseCase() (ast.Command, error) {
	pos := p.cur().Pos
	p.advance() // 'case'
	if p.cur().Type != lexer.WORD {
		return nil, p.errorf("expected word after 'case', found %s", p.cur().Type)
	}
	w := &ast.Word{Tok: p.cur()}
	w.Position = p.cur().Pos
	p.advance()
	p.skipNewlines()
	if err := p.expectWord("in"); err != nil {
		return nil, err
	}
	p.skipNewlines()

	cc := &ast.CaseClause{Word: w}
	cc.Position = pos

	for !isWordLit(p.cur(), "esac") {
		if p.cur().Type == lexer.LPAREN {
			p.advance()
		}
		item := &ast.CaseItem{}
		for {
			pw := &ast.Word{Tok: p.cur()}
			pw.Position = p.cur().Pos
			item.Patterns = append(item.Patterns, pw)
			p.advance()
			if p.cur().Type == lexer.PIPE {
				p.advance()
				continue
			}
			break
		}
		if p.cur().Type != lexer.RPAREN {
			return nil, p.errorf("expected ')', found %s", p.cur().Type)
		}
		p.advance()
		p.skipNewlines()
		if !isWordLit(p.cur(), "esac") && p.cur().Type != lexer.DSEMI && p.cur().Type != lexer.DSEMI_AMP {
			body, err := p.parseList()
			if err != nil {
				return nil, err
			}
			item.Body = body
		}
		if p.cur().Type == lexer.DSEMI_AMP {
			item.FallThrough = true
			p.advance()
		} else if p.cur().Type == lexer.DSEMI {
			p.advance()
		}
		p.skipNewlines()
		cc.Items = append(cc.Items, item)
	}
	p.advance() // 'esac'
	redirs, err := p.parseRedirList()
	if err != nil {
		return nil, err
	}
	cc.Redirs = redirs
	return cc, nil
}

func (p *Parser) parseSimpleCommand() (ast.Command, error) {
	pos := p.cur().Pos
	sc := &ast.SimpleCommand{}
	sc.Position = pos

	for sc.Name == nil {
		tok := p.cur()
		switch {
		case tok.Type == lexer.ASSIGNMENT_WORD:
			eq := indexByte(tok.Lit, '=')
			w := &ast.Word{Tok: stripAssignPrefix(tok, eq+1)}
			w.Position = tok.Pos
			sc.Assigns = append(sc.Assigns, ast.AssignWord{Name: tok.Lit[:eq], Value: w})
			p.advance()
		case isRedirStart(tok.Type):
			r, err := p.parseRedir()
			if err != nil {
				return nil, err
			}
			sc.Redirs = append(sc.Redirs, r)
		case tok.Type == lexer.WORD:
			if terminatorWords[tok.Lit] {
				return sc, nil
			}
			w := &ast.Word{Tok: tok}
			w.Position = tok.Pos
			sc.Name = w
			p.advance()
		default:
			return sc, nil
		}
	}

	for {
		tok := p.cur()
		switch {
		case isRedirStart(tok.Type):
			r, err := p.parseRedir()
			if err != nil {
				return nil, err
			}
			sc.Redirs = append(sc.Redirs, r)
		case tok.Type == lexer.WORD || tok.Type == lexer.ASSIGNMENT_WORD:
			if tok.Type == lexer.WORD && terminatorWords[tok.Lit] {
				return sc, nil
			}
			w := &ast.Word{Tok: tok}
			w.Position = tok.Pos
			sc.Args = append(sc.Args, w)
			p.advance()
		default:
			return sc, nil
		}
	}
}

func indexByte(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

// stripAssignPrefix returns a copy of tok representing only the
// value portion (after "NAME=") of an ASSIGNMENT_WORD token, by trimming
// the leading literal text of its first part. Later parts (expansions)
// are untouched: only the first part can contain the "NAME=" text, since
// the lexer only marks ASSIGNMENT_WORD when that prefix is a plain literal.
func stripAssignPrefix(tok lexer.Token, from int) lexer.Token {
	out := tok
	out.Type = lexer.WORD
	out.Lit = tok.Lit[from:]
	parts := make([]lexer.Part, len(tok.Parts))
	copy(parts, tok.Parts)
	if len(parts) > 0 && parts[0].Kind == lexer.PartLiteral {
		parts[0].Text = parts[0].Text[from:]
	}
	out.Parts = parts
	return out
}
