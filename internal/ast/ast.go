// Package ast defines the syntax tree the parser builds and the execution
// frame engine walks. Every node owns its children. Cloning (used when a
// function body is stored, since a function's stored AST must survive
// repeated calls) copies every list, pipeline, command and redirection node;
// *Word nodes and here-document requests are shared with the original, not
// duplicated.
package ast

import "github.com/opensh/sh/internal/lexer"

// Node is implemented by every AST node.
type Node interface {
	Pos() lexer.Position
	node()
}

type base struct {
	Position lexer.Position
}

func (b base) Pos() lexer.Position { return b.Position }
func (base) node()                 {}

// Program is the parse result of a whole script: a list of complete commands.
type Program struct {
	base
	Commands []*CompleteCommand
}

// CompleteCommand is one top-level list terminated by a newline or EOF,
// optionally backgrounded as a whole via a trailing '&'.
type CompleteCommand struct {
	base
	List *List
}

// List is a sequence of AndOr productions separated by ';' or '&'.
// Background records, per element, whether it was followed by '&' rather
// than ';' or nothing.
type List struct {
	base
	AndOrs     []*AndOr
	Background []bool
}

// AndOrOp is the operator joining two pipelines in an AndOr chain.
type AndOrOp int

const (
	AndOrNone AndOrOp = iota
	AndOrAnd          // &&
	AndOrOr           // ||
)

// AndOr is a left-associative chain of pipelines joined by && / ||.
// Pipelines[0] has no preceding operator; Ops[i] joins Pipelines[i] to
// Pipelines[i+1].
type AndOr struct {
	base
	Pipelines []*Pipeline
	Ops       []AndOrOp
}

// Pipeline is a sequence of commands connected by '|', optionally negated
// by a leading '!'.
type Pipeline struct {
	base
	Negate   bool
	Commands []Command
}

// Command is implemented by every node that can appear as a pipeline member.
type Command interface {
	Node
	command()
}

type cmdBase struct{ base }

func (cmdBase) command() {}

// AssignWord is one NAME=value prefix assignment on a simple command.
type AssignWord struct {
	Name  string
	Value *Word
}

// SimpleCommand is prefix assignments/redirections, an optional command
// name word, then suffix words/redirections, in source order.
type SimpleCommand struct {
	cmdBase
	Assigns  []AssignWord
	Name     *Word // nil for a bare-assignment command like "FOO=bar"
	Args     []*Word
	Redirs   []*IoRedirect
}

// Subshell is "( list )", executed in a forked COPY-policy frame.
type Subshell struct {
	cmdBase
	Body   *List
	Redirs []*IoRedirect
}

// BraceGroup is "{ list ; }", executed sharing the enclosing frame's stores.
type BraceGroup struct {
	cmdBase
	Body   *List
	Redirs []*IoRedirect
}

// IfClause is "if list then list [elif list then list]... [else list] fi".
// Conds[i] guards Bodies[i]; Else is nil if there is no else clause.
type IfClause struct {
	cmdBase
	Conds  []*List
	Bodies []*List
	Else   *List
	Redirs []*IoRedirect
}

// WhileLoop is "while list do list done" (Until reverses the test).
type WhileLoop struct {
	cmdBase
	Cond   *List
	Body   *List
	Until  bool
	Redirs []*IoRedirect
}

// ForLoop is "for name [in word...] do list done". HasIn distinguishes a
// bare "for name do ... done" (iterate over "$@") from "for name in; do"
// (iterate over an explicit, possibly empty, word list).
type ForLoop struct {
	cmdBase
	Name   string
	HasIn  bool
	Words  []*Word
	Body   *List
	Redirs []*IoRedirect
}

// CaseItem is one "pattern[|pattern...]) list" arm of a case statement.
type CaseItem struct {
	Patterns []*Word
	Body     *List
	// FallThrough records the arm terminator: ";;" ends the case, ";&"
	// falls through unconditionally into the next arm's body.
	FallThrough bool
}

// CaseClause is "case word in item... esac".
type CaseClause struct {
	cmdBase
	Word   *Word
	Items  []*CaseItem
	Redirs []*IoRedirect
}

// FunctionDef is "name() compound-command", optionally followed by
// redirections attached to the function (applied on every call).
type FunctionDef struct {
	cmdBase
	Name   string
	Body   Command
	Redirs []*IoRedirect
}

// RedirOp enumerates the redirection operators.
type RedirOp int

const (
	RedirLess       RedirOp = iota // <
	RedirGreat                     // >
	RedirDGreat                    // >>
	RedirLessAnd                   // <&
	RedirGreatAnd                  // >&
	RedirLessGreat                 // <>
	RedirClobber                   // >|
	RedirHeredoc                   // <<
	RedirHeredocTab                // <<-
)

// IoRedirect is one redirection: an optional explicit fd, an operator, and
// either a target word (file, or fd-duplication operand) or a here-document
// body captured by the lexer.
type IoRedirect struct {
	base
	Fd      int  // -1 if not given explicitly
	HasFd   bool
	Op      RedirOp
	Target  *Word // nil for here-documents
	Heredoc *lexer.HeredocRequest
}

// Word wraps a lexer token that has not yet been through expansion.
type Word struct {
	base
	Tok lexer.Token
}

// Clone copies a Program and every list, pipeline and command node under it.
// As with CloneCommand, *Word nodes and here-document requests are shared
// with the original rather than duplicated.
func (p *Program) Clone() *Program {
	if p == nil {
		return nil
	}
	out := &Program{base: p.base}
	for _, c := range p.Commands {
		out.Commands = append(out.Commands, cloneCompleteCommand(c))
	}
	return out
}

func cloneCompleteCommand(c *CompleteCommand) *CompleteCommand {
	if c == nil {
		return nil
	}
	return &CompleteCommand{base: c.base, List: cloneList(c.List)}
}

func cloneList(l *List) *List {
	if l == nil {
		return nil
	}
	out := &List{base: l.base, Background: append([]bool(nil), l.Background...)}
	for _, ao := range l.AndOrs {
		out.AndOrs = append(out.AndOrs, cloneAndOr(ao))
	}
	return out
}

func cloneAndOr(a *AndOr) *AndOr {
	if a == nil {
		return nil
	}
	out := &AndOr{base: a.base, Ops: append([]AndOrOp(nil), a.Ops...)}
	for _, p := range a.Pipelines {
		out.Pipelines = append(out.Pipelines, clonePipeline(p))
	}
	return out
}

func clonePipeline(p *Pipeline) *Pipeline {
	if p == nil {
		return nil
	}
	out := &Pipeline{base: p.base, Negate: p.Negate}
	for _, c := range p.Commands {
		out.Commands = append(out.Commands, CloneCommand(c))
	}
	return out
}

// CloneCommand copies any Command node together with its nested lists,
// commands and redirection nodes. The *Word values it refers to (command
// name, arguments, assignment values, for-loop words, case subject and
// patterns, redirection targets) and here-document requests are shared with
// the original, not duplicated.
func CloneCommand(c Command) Command {
	switch v := c.(type) {
	case *SimpleCommand:
		cp := *v
		cp.Assigns = append([]AssignWord(nil), v.Assigns...)
		cp.Args = append([]*Word(nil), v.Args...)
		cp.Redirs = cloneRedirs(v.Redirs)
		return &cp
	case *Subshell:
		cp := *v
		cp.Body = cloneList(v.Body)
		cp.Redirs = cloneRedirs(v.Redirs)
		return &cp
	case *BraceGroup:
		cp := *v
		cp.Body = cloneList(v.Body)
		cp.Redirs = cloneRedirs(v.Redirs)
		return &cp
	case *IfClause:
		cp := *v
		cp.Conds = cloneLists(v.Conds)
		cp.Bodies = cloneLists(v.Bodies)
		cp.Else = cloneList(v.Else)
		cp.Redirs = cloneRedirs(v.Redirs)
		return &cp
	case *WhileLoop:
		cp := *v
		cp.Cond = cloneList(v.Cond)
		cp.Body = cloneList(v.Body)
		cp.Redirs = cloneRedirs(v.Redirs)
		return &cp
	case *ForLoop:
		cp := *v
		cp.Words = append([]*Word(nil), v.Words...)
		cp.Body = cloneList(v.Body)
		cp.Redirs = cloneRedirs(v.Redirs)
		return &cp
	case *CaseClause:
		cp := *v
		cp.Items = make([]*CaseItem, len(v.Items))
		for i, it := range v.Items {
			item := &CaseItem{Patterns: append([]*Word(nil), it.Patterns...), Body: cloneList(it.Body), FallThrough: it.FallThrough}
			cp.Items[i] = item
		}
		cp.Redirs = cloneRedirs(v.Redirs)
		return &cp
	case *FunctionDef:
		cp := *v
		cp.Body = CloneCommand(v.Body)
		cp.Redirs = cloneRedirs(v.Redirs)
		return &cp
	}
	return c
}

func cloneLists(ls []*List) []*List {
	if ls == nil {
		return nil
	}
	out := make([]*List, len(ls))
	for i, l := range ls {
		out[i] = cloneList(l)
	}
	return out
}

func cloneRedirs(rs []*IoRedirect) []*IoRedirect {
	if rs == nil {
		return nil
	}
	out := make([]*IoRedirect, len(rs))
	for i, r := range rs {
		cp := *r
		out[i] = &cp
	}
	return out
}
