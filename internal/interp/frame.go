package interp

import (
	"os"

	"github.com/opensh/sh/internal/alias"
	"github.com/opensh/sh/internal/fdtable"
	"github.com/opensh/sh/internal/vars"
)

// FrameType names one row of the policy table in spec §4.6.
type FrameType int

const (
	TopLevel FrameType = iota
	SubshellFrame
	BraceGroupFrame
	FunctionFrame
	DotScriptFrame
	LoopFrame
	CaseFrame
	TrapHandlerFrame
	PipelineMemberFrame
	EvalFrame
)

func (t FrameType) String() string {
	switch t {
	case TopLevel:
		return "TopLevel"
	case SubshellFrame:
		return "Subshell"
	case BraceGroupFrame:
		return "BraceGroup"
	case FunctionFrame:
		return "Function"
	case DotScriptFrame:
		return "DotScript"
	case LoopFrame:
		return "Loop"
	case CaseFrame:
		return "Case"
	case TrapHandlerFrame:
		return "TrapHandler"
	case PipelineMemberFrame:
		return "PipelineMember"
	case EvalFrame:
		return "Eval"
	}
	return "Unknown"
}

// localSave records a variable's state before a "local" declaration
// shadowed it in the enclosing shared store, so the Function frame's pop
// can restore it exactly (see builtins.go's biLocal).
type localSave struct {
	name string
	had  bool
	prev vars.Var
}

// Frame is one entry of the execution stack spec §4.6 describes: a frame
// type, its policy-determined sub-stores, and frame-local state (loop
// depth, last exit status, the fds this frame itself redirected).
type Frame struct {
	Type   FrameType
	Parent *Frame
	Shell  *Shell

	Vars    *vars.Store
	Params  *vars.PosParams
	Funcs   *vars.FuncStore
	Aliases *alias.Store
	FDs     *fdtable.Table
	Traps   *TrapTable
	Options *Options

	Umask int
	Cwd   string

	// Stdin/Stdout/Stderr are this frame's effective fd 0/1/2, consulted by
	// built-ins (read, diagnostics output) and by word expansion's
	// command-substitution runner.
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File

	LastExit  int
	LastBgPid int
	LoopDepth int

	InTrapHandler bool
	InFunction    bool
	LocalSaves    []localSave

	// ownsVars/ownsParams/... record which sub-stores this frame allocated
	// (OWN or COPY) and must therefore release on pop, versus which it only
	// holds a SHAREd pointer to.
	ownsVars, ownsParams, ownsFuncs, ownsAliases, ownsFDs, ownsTraps, ownsOptions bool
}

// newChild allocates a frame of typ under parent, applying the fixed
// type-to-policy table from spec §4.6. Callers that accept arguments
// (Function, DotScript) still need to install Params themselves afterward;
// this only decides SHARE vs OWN vs COPY for the pointer.
func newChild(parent *Frame, typ FrameType) *Frame {
	f := &Frame{Type: typ, Parent: parent, Shell: parent.Shell}

	switch typ {
	case SubshellFrame, PipelineMemberFrame:
		// "forked child": COPY every sub-store, since Go has no fork() to
		// give the child its own address space for free.
		f.Vars = parent.Vars.Clone()
		f.Params = parent.Params.Clone()
		f.Funcs = parent.Funcs.Clone()
		f.Aliases = parent.Aliases.Clone()
		f.FDs = parent.FDs.Clone()
		f.Traps = parent.Traps.Clone()
		f.Options = parent.Options.Clone()
		f.Umask = parent.Umask
		f.Cwd = parent.Cwd
		f.ownsVars, f.ownsParams, f.ownsFuncs, f.ownsAliases = true, true, true, true
		f.ownsFDs, f.ownsTraps, f.ownsOptions = true, true, true

	case BraceGroupFrame, LoopFrame, CaseFrame, TrapHandlerFrame, EvalFrame:
		// Every sub-store shared; fds get a restore-on-pop list but the
		// table pointer itself is the parent's.
		f.Vars = parent.Vars
		f.Params = parent.Params
		f.Funcs = parent.Funcs
		f.Aliases = parent.Aliases
		f.FDs = parent.FDs
		f.Traps = parent.Traps
		f.Options = parent.Options
		f.Umask = parent.Umask
		f.Cwd = parent.Cwd

	case FunctionFrame:
		f.Vars = parent.Vars // +locals via LocalSaves, see builtins.go
		f.Params = parent.Params.Clone()
		f.Funcs = parent.Funcs
		f.Aliases = parent.Aliases
		f.FDs = parent.FDs
		f.Traps = parent.Traps
		f.Options = parent.Options
		f.Umask = parent.Umask
		f.Cwd = parent.Cwd
		f.ownsParams = true
		f.InFunction = true

	case DotScriptFrame:
		f.Vars = parent.Vars
		f.Params = parent.Params // caller COPYs and replaces if args given
		f.Funcs = parent.Funcs
		f.Aliases = parent.Aliases
		f.FDs = parent.FDs
		f.Traps = parent.Traps
		f.Options = parent.Options
		f.Umask = parent.Umask
		f.Cwd = parent.Cwd

	default:
		f.Vars = parent.Vars
		f.Params = parent.Params
		f.Funcs = parent.Funcs
		f.Aliases = parent.Aliases
		f.FDs = parent.FDs
		f.Traps = parent.Traps
		f.Options = parent.Options
		f.Umask = parent.Umask
		f.Cwd = parent.Cwd
	}

	f.Stdin, f.Stdout, f.Stderr = parent.Stdin, parent.Stdout, parent.Stderr
	f.LastBgPid = parent.LastBgPid
	f.InTrapHandler = parent.InTrapHandler
	if typ == LoopFrame {
		f.LoopDepth = parent.LoopDepth + 1
	} else {
		f.LoopDepth = parent.LoopDepth
	}
	if typ == TrapHandlerFrame {
		f.InTrapHandler = true
	}
	return f
}

// newTopLevel creates the root frame: every sub-store OWNed.
func newTopLevel(sh *Shell, arg0 string) *Frame {
	f := &Frame{
		Type:    TopLevel,
		Shell:   sh,
		Vars:    vars.NewStore(),
		Params:  vars.NewPosParams(arg0),
		Funcs:   vars.NewFuncStore(),
		Aliases: alias.NewStore(),
		FDs:     fdtable.New(),
		Traps:   NewTrapTable(),
		Options: &Options{},
		Umask:   022,
	}
	f.ownsVars, f.ownsParams, f.ownsFuncs, f.ownsAliases = true, true, true, true
	f.ownsFDs, f.ownsTraps, f.ownsOptions = true, true, true
	if cwd, err := os.Getwd(); err == nil {
		f.Cwd = cwd
	}
	f.Stdin, f.Stdout, f.Stderr = os.Stdin, os.Stdout, os.Stderr
	return f
}

// pop closes every fd of a frame that owns its fd table, or restores the fds
// tracked by a SHARE+restore frame; OWN/COPY stores are simply dropped with
// the frame. pop does not run the EXIT trap: callers that need it call
// runExitTrap themselves. It never touches a SHAREd store, per the ownership rule
// spec §4.6 calls "the single most common class of bug" when violated.
func (f *Frame) pop() {
	if f.ownsFDs {
		f.FDs.CloseAll()
	} else {
		f.FDs.Restore()
	}
	// OWN/COPY vars, params, funcs, aliases, traps, options simply go out of
	// scope with the frame: nothing else holds the pointer once f is
	// discarded, so there is no separate release step beyond not leaking it
	// further. The ownsX fields exist to document which stores this frame
	// would be responsible for, matching the policy table's intent, and are
	// consulted by FDs above where releasing means something concrete
	// (closing real file descriptors).
}

// runExitTrap runs the EXIT trap found in f.Traps, which is the parent's
// table unless this frame holds its own copy (Subshell, PipelineMember). It
// does nothing inside a trap handler or when no EXIT trap is set; otherwise
// it unsets the trap first, so it runs at most once, and runs the text in a
// new TrapHandler frame.
func (f *Frame) runExitTrap() {
	text, ok := f.Traps.Get("EXIT")
	if !ok || text == "" || f.InTrapHandler {
		return
	}
	f.Traps.Unset("EXIT")
	trap := newChild(f, TrapHandlerFrame)
	_, _ = runTrapText(trap, text)
}
