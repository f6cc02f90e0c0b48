package interp

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/opensh/sh/internal/procexec"
	"github.com/opensh/sh/internal/vars"
)

// builtinFunc is the signature every built-in implements: the frame it runs
// in and its already-expanded argument vector (argv[0] excluded), returning
// an exit status. A built-in that needs to affect control flow (break,
// continue, return, exit) does so by returning a *ctrlFlow error.
type builtinFunc func(f *Frame, args []string) (int, error)

// specialBuiltins is spec §6's special built-in set, plus "local" (spec
// §4.6's supplemented feature): resolved before functions and regular
// built-ins, and able to persist variable assignments into the calling
// frame.
var specialBuiltins = map[string]builtinFunc{
	":":        biColon,
	".":        biDot,
	"break":    biBreak,
	"continue": biContinue,
	"eval":     biEval,
	"exec":     biExec,
	"exit":     biExit,
	"export":   biExport,
	"readonly": biReadonly,
	"return":   biReturn,
	"set":      biSet,
	"shift":    biShift,
	"times":    biTimes,
	"trap":     biTrap,
	"unset":    biUnset,
	"local":    biLocal,
}

// regularBuiltins is spec §6's regular built-in set.
var regularBuiltins = map[string]builtinFunc{
	"cd":      biCd,
	"pwd":     biPwd,
	"read":    biRead,
	"command": biCommand,
	"jobs":    biJobs,
	"fg":      biFg,
	"bg":      biBg,
	"wait":    biWait,
	"kill":    biKill,
	"umask":   biUmask,
	"alias":   biAlias,
	"unalias": biUnalias,
	"type":    biType,
	"hash":    biHash,
}

func biColon(f *Frame, args []string) (int, error) { return 0, nil }

func biDot(f *Frame, args []string) (int, error) {
	if len(args) == 0 {
		fmt.Fprintln(f.Stderr, ".: filename argument required")
		return 2, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(f.Stderr, ".: %v\n", err)
		return 1, nil
	}
	child := newChild(f, DotScriptFrame)
	defer child.pop()
	if len(args) > 1 {
		child.Params = f.Params.Clone()
		child.Params.Set(args[1:])
	}
	status, err := runScriptText(child, string(data))
	if cf, ok := asCtrlFlow(err); ok && cf.kind == ctrlReturn {
		return cf.n, nil
	}
	return status, err
}

func runScriptText(f *Frame, src string) (int, error) {
	child := f
	prog, err := parseSource(child, src)
	if err != nil {
		return 1, err
	}
	return RunProgram(child, prog)
}

func biBreak(f *Frame, args []string) (int, error) {
	n := optInt(args, 1)
	return 0, &ctrlFlow{kind: ctrlBreak, n: n}
}

func biContinue(f *Frame, args []string) (int, error) {
	n := optInt(args, 1)
	return 0, &ctrlFlow{kind: ctrlContinue, n: n}
}

func biEval(f *Frame, args []string) (int, error) {
	src := strings.Join(args, " ")
	if src == "" {
		return 0, nil
	}
	child := newChild(f, EvalFrame)
	defer child.pop()
	prog, err := parseSource(child, src)
	if err != nil {
		fmt.Fprintf(f.Stderr, "eval: %v\n", err)
		return 1, nil
	}
	status, err := RunProgram(child, prog)
	if cf, ok := asCtrlFlow(err); ok {
		return status, cf // return/break/continue/exit pass through eval
	}
	return status, err
}

func biExec(f *Frame, args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	status, err := runExternal(f, args[0], args[1:])
	if err != nil {
		return status, err
	}
	return status, &ctrlFlow{kind: ctrlExit, n: status}
}

func biExit(f *Frame, args []string) (int, error) {
	n := f.LastExit
	if len(args) > 0 {
		n = atoiOr(args[0], 0)
	}
	return n, &ctrlFlow{kind: ctrlExit, n: n}
}

func biExport(f *Frame, args []string) (int, error) {
	if len(args) == 0 {
		for _, kv := range f.Vars.Exported() {
			fmt.Fprintf(f.Stdout, "export %s\n", kv)
		}
		return 0, nil
	}
	for _, a := range args {
		if a == "-p" {
			continue
		}
		name, value, hasValue := cutOnceByte(a, '=')
		if hasValue {
			if err := f.Vars.Set(name, value); err != nil {
				fmt.Fprintf(f.Stderr, "export: %v\n", err)
				return 1, nil
			}
		}
		f.Vars.SetExported(name, true)
	}
	return 0, nil
}

func biReadonly(f *Frame, args []string) (int, error) {
	if len(args) == 0 {
		for _, name := range f.Vars.Names() {
			v, _ := f.Vars.Get(name)
			if v.ReadOnly {
				fmt.Fprintf(f.Stdout, "readonly %s=%s\n", v.Name, v.Value)
			}
		}
		return 0, nil
	}
	for _, a := range args {
		name, value, hasValue := cutOnceByte(a, '=')
		if hasValue {
			if err := f.Vars.Set(name, value); err != nil {
				fmt.Fprintf(f.Stderr, "readonly: %v\n", err)
				return 1, nil
			}
		}
		f.Vars.SetReadOnly(name, true)
	}
	return 0, nil
}

func biReturn(f *Frame, args []string) (int, error) {
	n := f.LastExit
	if len(args) > 0 {
		n = atoiOr(args[0], 0)
	}
	return n, &ctrlFlow{kind: ctrlReturn, n: n}
}

func biSet(f *Frame, args []string) (int, error) {
	i := 0
	for i < len(args) {
		a := args[i]
		if a == "--" {
			i++
			break
		}
		if a == "-o" || a == "+o" {
			on := a == "-o"
			i++
			if i >= len(args) {
				for _, n := range f.Options.Names(false) {
					fmt.Fprintln(f.Stdout, n)
				}
				return 0, nil
			}
			f.Options.SetByLongName(args[i], on)
			i++
			continue
		}
		if len(a) >= 2 && (a[0] == '-' || a[0] == '+') {
			on := a[0] == '-'
			for j := 1; j < len(a); j++ {
				f.Options.SetByShortLetter(a[j], on)
			}
			i++
			continue
		}
		break
	}
	if i < len(args) {
		f.Params.Set(args[i:])
	}
	return 0, nil
}

func biShift(f *Frame, args []string) (int, error) {
	n := optInt(args, 1)
	if !f.Params.Shift(n) {
		fmt.Fprintln(f.Stderr, "shift: shift count out of range")
		return 1, nil
	}
	return 0, nil
}

func biTimes(f *Frame, args []string) (int, error) {
	fmt.Fprintln(f.Stdout, "0m0.000s 0m0.000s")
	fmt.Fprintln(f.Stdout, "0m0.000s 0m0.000s")
	return 0, nil
}

func biTrap(f *Frame, args []string) (int, error) {
	if len(args) == 0 {
		for _, name := range f.Traps.Names() {
			text, _ := f.Traps.Get(name)
			fmt.Fprintf(f.Stdout, "trap -- %q %s\n", text, name)
		}
		return 0, nil
	}
	if len(args) == 1 && args[0] == "-" {
		return 0, nil
	}
	action := args[0]
	for _, name := range args[1:] {
		if action == "-" {
			f.Traps.Unset(name)
			continue
		}
		f.Traps.Set(name, action)
	}
	return 0, nil
}

func biUnset(f *Frame, args []string) (int, error) {
	funcsOnly := false
	for _, a := range args {
		if a == "-f" {
			funcsOnly = true
			continue
		}
		if a == "-v" {
			funcsOnly = false
			continue
		}
		if funcsOnly {
			f.Funcs.Unset(a)
		} else {
			f.Vars.Unset(a)
		}
	}
	return 0, nil
}

func biLocal(f *Frame, args []string) (int, error) {
	ff := findFunctionFrame(f)
	if ff == nil {
		fmt.Fprintln(f.Stderr, "local: can only be used in a function")
		return 1, nil
	}
	for _, a := range args {
		name, value, hasValue := cutOnceByte(a, '=')
		if !vars.IsValidName(name) {
			fmt.Fprintf(f.Stderr, "local: %s: not a valid identifier\n", name)
			return 1, nil
		}
		prev, had := f.Vars.Get(name)
		ff.LocalSaves = append(ff.LocalSaves, localSave{name: name, had: had, prev: prev})
		v := ""
		if hasValue {
			v = value
		}
		if err := f.Vars.Set(name, v); err != nil {
			fmt.Fprintf(f.Stderr, "local: %v\n", err)
			return 1, nil
		}
	}
	return 0, nil
}

func findFunctionFrame(f *Frame) *Frame {
	for cur := f; cur != nil; cur = cur.Parent {
		if cur.Type == FunctionFrame {
			return cur
		}
	}
	return nil
}

func biCd(f *Frame, args []string) (int, error) {
	dir := ""
	if len(args) > 0 {
		dir = args[0]
	} else if v, ok := f.Vars.Get("HOME"); ok {
		dir = v.Value
	}
	if dir == "-" {
		if v, ok := f.Vars.Get("OLDPWD"); ok {
			dir = v.Value
			fmt.Fprintln(f.Stdout, dir)
		}
	}
	if err := os.Chdir(dir); err != nil {
		fmt.Fprintf(f.Stderr, "cd: %v\n", err)
		return 1, nil
	}
	old := f.Cwd
	if cwd, err := os.Getwd(); err == nil {
		f.Cwd = cwd
		f.Vars.Set("PWD", cwd)
	}
	f.Vars.Set("OLDPWD", old)
	return 0, nil
}

func biPwd(f *Frame, args []string) (int, error) {
	fmt.Fprintln(f.Stdout, f.Cwd)
	return 0, nil
}

func biRead(f *Frame, args []string) (int, error) {
	if len(args) == 0 {
		args = []string{"REPLY"}
	}
	reader := bufio.NewReader(f.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return 1, nil
	}
	line = strings.TrimRight(line, "\n")
	ifs := " \t\n"
	if v, ok := f.Vars.Get("IFS"); ok {
		ifs = v.Value
	}
	fields := strings.FieldsFunc(line, func(r rune) bool { return strings.ContainsRune(ifs, r) })
	for i, name := range args {
		val := ""
		if i < len(fields) {
			if i == len(args)-1 {
				val = strings.Join(fields[i:], " ")
			} else {
				val = fields[i]
			}
		}
		f.Vars.Set(name, val)
	}
	return 0, nil
}

func biCommand(f *Frame, args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	if args[0] == "-v" {
		if len(args) < 2 {
			return 1, nil
		}
		return biType(f, args[1:])
	}
	status, err := runExternal(f, args[0], args[1:])
	return status, err
}

func biJobs(f *Frame, args []string) (int, error) {
	for _, j := range f.Shell.Jobs.All() {
		fmt.Fprintf(f.Stdout, "[%d]  %s\n", j.ID, j.AggregateState())
	}
	return 0, nil
}

func biFg(f *Frame, args []string) (int, error) {
	j := f.Shell.Jobs.Current()
	if len(args) > 0 {
		id := atoiOr(strings.TrimPrefix(args[0], "%"), 0)
		j, _ = f.Shell.Jobs.Get(id)
	}
	if j == nil {
		fmt.Fprintln(f.Stderr, "fg: no current job")
		return 1, nil
	}
	for _, p := range j.Processes {
		<-p.Notify()
	}
	return 0, nil
}

func biBg(f *Frame, args []string) (int, error) { return 0, nil }

func biWait(f *Frame, args []string) (int, error) {
	status := 0
	if len(args) == 0 {
		for _, j := range f.Shell.Jobs.All() {
			for _, p := range j.Processes {
				<-p.Notify()
				_, status = p.Status()
			}
		}
		return status, nil
	}
	for _, a := range args {
		pid := atoiOr(a, 0)
		for _, j := range f.Shell.Jobs.All() {
			for _, p := range j.Processes {
				if p.Pid == pid {
					<-p.Notify()
					_, status = p.Status()
				}
			}
		}
	}
	return status, nil
}

var signalsByName = map[string]syscall.Signal{
	"HUP": syscall.SIGHUP, "INT": syscall.SIGINT, "QUIT": syscall.SIGQUIT,
	"KILL": syscall.SIGKILL, "TERM": syscall.SIGTERM, "USR1": syscall.SIGUSR1,
	"USR2": syscall.SIGUSR2, "CONT": syscall.SIGCONT, "STOP": syscall.SIGSTOP,
}

func biKill(f *Frame, args []string) (int, error) {
	sig := syscall.SIGTERM
	i := 0
	if len(args) > 0 && strings.HasPrefix(args[0], "-") {
		name := strings.ToUpper(strings.TrimPrefix(args[0], "-"))
		if s, ok := signalsByName[name]; ok {
			sig = s
		} else if n, err := strconv.Atoi(name); err == nil {
			sig = syscall.Signal(n)
		}
		i = 1
	}
	status := 0
	for ; i < len(args); i++ {
		pid := atoiOr(strings.TrimPrefix(args[i], "%"), 0)
		if err := syscall.Kill(pid, sig); err != nil {
			fmt.Fprintf(f.Stderr, "kill: %v\n", err)
			status = 1
		}
	}
	return status, nil
}

func biUmask(f *Frame, args []string) (int, error) {
	if len(args) == 0 {
		fmt.Fprintf(f.Stdout, "%04o\n", f.Umask)
		return 0, nil
	}
	n, err := strconv.ParseInt(args[0], 8, 32)
	if err != nil {
		fmt.Fprintf(f.Stderr, "umask: %v\n", err)
		return 1, nil
	}
	f.Umask = int(n)
	syscall.Umask(f.Umask)
	return 0, nil
}

func biAlias(f *Frame, args []string) (int, error) {
	if len(args) == 0 {
		for _, name := range f.Aliases.Names() {
			v, _ := f.Aliases.Get(name)
			fmt.Fprintf(f.Stdout, "alias %s='%s'\n", name, v)
		}
		return 0, nil
	}
	status := 0
	for _, a := range args {
		name, value, hasValue := cutOnceByte(a, '=')
		if hasValue {
			f.Aliases.Define(name, value)
			continue
		}
		v, ok := f.Aliases.Get(name)
		if !ok {
			fmt.Fprintf(f.Stderr, "alias: %s: not found\n", name)
			status = 1
			continue
		}
		fmt.Fprintf(f.Stdout, "alias %s='%s'\n", name, v)
	}
	return status, nil
}

func biUnalias(f *Frame, args []string) (int, error) {
	for _, a := range args {
		if a == "-a" {
			for _, name := range f.Aliases.Names() {
				f.Aliases.Unset(name)
			}
			continue
		}
		f.Aliases.Unset(a)
	}
	return 0, nil
}

func biType(f *Frame, args []string) (int, error) {
	status := 0
	for _, name := range args {
		switch {
		case isSpecialOrLocal(name):
			fmt.Fprintf(f.Stdout, "%s is a shell builtin\n", name)
		case isRegular(name):
			fmt.Fprintf(f.Stdout, "%s is a shell builtin\n", name)
		default:
			if _, ok := f.Funcs.Get(name); ok {
				fmt.Fprintf(f.Stdout, "%s is a function\n", name)
				continue
			}
			if path, err := procexec.LookPath(name); err == nil {
				fmt.Fprintf(f.Stdout, "%s is %s\n", name, path)
				continue
			}
			fmt.Fprintf(f.Stderr, "%s: not found\n", name)
			status = 1
		}
	}
	return status, nil
}

func isSpecialOrLocal(name string) bool { _, ok := specialBuiltins[name]; return ok }
func isRegular(name string) bool        { _, ok := regularBuiltins[name]; return ok }

func biHash(f *Frame, args []string) (int, error) { return 0, nil }

func optInt(args []string, def int) int {
	if len(args) == 0 {
		return def
	}
	return atoiOr(args[0], def)
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
