// Package arith implements the shell's $((...)) arithmetic evaluator: a
// full C-style expression language over signed 64-bit integers, parsed with
// a participle grammar and evaluated by walking the resulting tree against
// an explicit *vars.Store.
package arith

import (
	"sync"

	"github.com/alecthomas/participle/v2"
	plex "github.com/alecthomas/participle/v2/lexer"
)

var arithLexer = plex.MustSimple([]plex.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t]+`},
	{Name: "Hex", Pattern: `0[xX][0-9a-fA-F]+`},
	{Name: "Octal", Pattern: `0[0-7]+`},
	{Name: "Decimal", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Op", Pattern: `<<=|>>=|&&|\|\||<<|>>|<=|>=|==|!=|\+=|-=|\*=|/=|%=|&=|\^=|\|=|[-+*/%~!<>&^|?:,=()]`},
})

// CommaExpr is the lowest-precedence production: a comma-separated chain of
// assignment-level expressions, each discarding its predecessor's value.
type CommaExpr struct {
	Pos   plex.Position
	First *Assignment   `@@`
	Rest  []*Assignment `("," @@)*`
}

// Assignment is handled at the primary level, per spec: a NAME followed by
// an assignment operator recurses right-associatively into another
// Assignment; otherwise control falls through to the ternary tier.
type Assignment struct {
	Pos   plex.Position
	Name  *string     `(  @Ident`
	Op    *string     `   @("<<=" | ">>=" | "+=" | "-=" | "*=" | "/=" | "%=" | "&=" | "^=" | "|=" | "=")`
	Value *Assignment `   @@ )`
	Cond  *Ternary    `|  @@`
}

// Ternary is logical-or, optionally followed by "? then : else", right
// associative through Else.
type Ternary struct {
	Pos  plex.Position
	Cond *LogicalOr  `@@`
	Then *Assignment `("?" @@`
	Else *Ternary    `":" @@ )?`
}

type LogicalOr struct {
	Pos  plex.Position
	Left *LogicalAnd   `@@`
	Rest []*LogicalAndOp `@@*`
}
type LogicalAndOp struct {
	Right *LogicalAnd `"||" @@`
}

type LogicalAnd struct {
	Pos  plex.Position
	Left *BitOr      `@@`
	Rest []*BitOrOp2 `@@*`
}
type BitOrOp2 struct {
	Right *BitOr `"&&" @@`
}

type BitOr struct {
	Pos  plex.Position
	Left *BitXor   `@@`
	Rest []*BitOrOp `@@*`
}
type BitOrOp struct {
	Right *BitXor `"|" @@`
}

type BitXor struct {
	Pos  plex.Position
	Left *BitAnd    `@@`
	Rest []*BitXorOp `@@*`
}
type BitXorOp struct {
	Right *BitAnd `"^" @@`
}

type BitAnd struct {
	Pos  plex.Position
	Left *Equality  `@@`
	Rest []*BitAndOp `@@*`
}
type BitAndOp struct {
	Right *Equality `"&" @@`
}

type Equality struct {
	Pos  plex.Position
	Left *Ordering    `@@`
	Rest []*EqualityOp `@@*`
}
type EqualityOp struct {
	Op    string    `@("==" | "!=")`
	Right *Ordering `@@`
}

type Ordering struct {
	Pos  plex.Position
	Left *Shift       `@@`
	Rest []*OrderingOp `@@*`
}
type OrderingOp struct {
	Op    string `@("<=" | ">=" | "<" | ">")`
	Right *Shift `@@`
}

type Shift struct {
	Pos  plex.Position
	Left *Additive  `@@`
	Rest []*ShiftOp `@@*`
}
type ShiftOp struct {
	Op    string    `@("<<" | ">>")`
	Right *Additive `@@`
}

type Additive struct {
	Pos  plex.Position
	Left *Multiplicative `@@`
	Rest []*AdditiveOp   `@@*`
}
type AdditiveOp struct {
	Op    string          `@("+" | "-")`
	Right *Multiplicative `@@`
}

type Multiplicative struct {
	Pos  plex.Position
	Left *Unary              `@@`
	Rest []*MultiplicativeOp `@@*`
}
type MultiplicativeOp struct {
	Op    string `@("*" | "/" | "%")`
	Right *Unary `@@`
}

// Unary is a run of prefix operators applied to one Atom; "--x" and "!!x"
// compose by repeated application, innermost operator closest to Atom
// applied first.
type Unary struct {
	Pos  plex.Position
	Ops  []string `@("+" | "-" | "~" | "!")*`
	Atom *Atom    `@@`
}

// Atom is a literal, a bare identifier (a variable reference), or a
// parenthesized comma expression.
type Atom struct {
	Pos     plex.Position
	Hex     *string    `(  @Hex`
	Octal   *string    `|  @Octal`
	Decimal *string    `|  @Decimal`
	Ident   *string    `|  @Ident`
	Sub     *CommaExpr `|  "(" @@ ")" )`
}

var (
	parserOnce sync.Once
	parser     *participle.Parser[CommaExpr]
	parserErr  error
)

func getParser() (*participle.Parser[CommaExpr], error) {
	parserOnce.Do(func() {
		parser, parserErr = participle.Build[CommaExpr](
			participle.Lexer(arithLexer),
			participle.UseLookahead(2),
			participle.Elide("Whitespace"),
		)
	})
	return parser, parserErr
}

// Parse parses an arithmetic expression's already-expanded text (after word
// expansion steps 1-4 have run over it, per spec §4.5) into a CommaExpr tree.
func Parse(expr string) (*CommaExpr, error) {
	p, err := getParser()
	if err != nil {
		return nil, err
	}
	return p.ParseString("", expr)
}
