// Package cmd wires the cobra CLI surface onto an interp.Shell.
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/opensh/sh/internal/bytestr"
	"github.com/opensh/sh/internal/interp"
	"github.com/opensh/sh/internal/lexer"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	flagC       string
	flagS       bool
	longOptions []string

	// plusCleared holds every long option name cleared via a "+x"-shaped
	// argument, collected by stripPlusFlags before cobra ever sees os.Args:
	// pflag has no notion of "+" as a clearing prefix.
	plusCleared []string

	shortOptFlags = map[byte]*bool{}
)

var rootCmd = &cobra.Command{
	Use:                "sh [options] [-c string | file | -s] [args...]",
	Short:              "POSIX shell interpreter",
	Args:               cobra.ArbitraryArgs,
	DisableFlagsInUseLine: true,
	RunE:               runShell,
}

func init() {
	for letter := range map[byte]string{
		'a': "allexport", 'b': "notify", 'C': "noclobber", 'e': "errexit",
		'f': "noglob", 'h': "hashall", 'm': "monitor", 'n': "noexec",
		'u': "nounset", 'v': "verbose", 'x': "xtrace",
	} {
		b := false
		shortOptFlags[letter] = &b
	}
	rootCmd.Flags().BoolVarP(shortOptFlags['a'], "allexport", "a", false, "export all subsequently defined variables")
	rootCmd.Flags().BoolVarP(shortOptFlags['b'], "notify", "b", false, "report background job completion immediately")
	rootCmd.Flags().BoolVarP(shortOptFlags['C'], "noclobber", "C", false, "disallow > redirection from truncating existing files")
	rootCmd.Flags().BoolVarP(shortOptFlags['e'], "errexit", "e", false, "exit immediately on a non-zero simple command")
	rootCmd.Flags().BoolVarP(shortOptFlags['f'], "noglob", "f", false, "disable pathname expansion")
	rootCmd.Flags().BoolVarP(shortOptFlags['h'], "hashall", "h", false, "remember command locations (no-op)")
	rootCmd.Flags().BoolVarP(shortOptFlags['m'], "monitor", "m", false, "enable job control")
	rootCmd.Flags().BoolVarP(shortOptFlags['n'], "noexec", "n", false, "read commands without executing them")
	rootCmd.Flags().BoolVarP(shortOptFlags['u'], "nounset", "u", false, "treat unset parameters as an error")
	rootCmd.Flags().BoolVarP(shortOptFlags['v'], "verbose", "v", false, "print input lines as they are read")
	rootCmd.Flags().BoolVarP(shortOptFlags['x'], "xtrace", "x", false, "print commands and arguments as they are executed")
	rootCmd.Flags().StringArrayVarP(&longOptions, "option", "o", nil, "set a long-named option (e.g. pipefail)")
	rootCmd.Flags().StringVarP(&flagC, "command", "c", "", "execute STRING instead of reading a script")
	rootCmd.Flags().BoolVarP(&flagS, "stdin", "s", false, "read commands from standard input")
}

// Execute runs the CLI and returns the process exit status.
func Execute() int {
	os.Args = stripPlusFlags(os.Args)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	return exitStatus
}

var exitStatus int

// stripPlusFlags pulls every "+<letters>" argument out of args (pflag has no
// clearing-flag syntax), recording the long option names it clears in
// plusCleared, and returns the remaining arguments for cobra to parse.
func stripPlusFlags(args []string) []string {
	shortOptionNames := map[byte]string{
		'a': "allexport", 'b': "notify", 'C': "noclobber", 'e': "errexit",
		'f': "noglob", 'h': "hashall", 'm': "monitor", 'n': "noexec",
		'u': "nounset", 'v': "verbose", 'x': "xtrace",
	}
	out := make([]string, 0, len(args))
	for _, a := range args {
		if len(a) >= 2 && a[0] == '+' && a != "+" {
			for i := 1; i < len(a); i++ {
				if name, ok := shortOptionNames[a[i]]; ok {
					plusCleared = append(plusCleared, name)
				}
			}
			continue
		}
		out = append(out, a)
	}
	return out
}

func runShell(cmd *cobra.Command, args []string) error {
	arg0 := "sh"
	if len(os.Args) > 0 {
		arg0 = filepath.Base(os.Args[0])
	}
	sh := interp.NewShell(arg0)

	for letter, ptr := range shortOptFlags {
		if *ptr {
			sh.Top.Options.SetByShortLetter(letter, true)
		}
	}
	for _, name := range longOptions {
		sh.Top.Options.SetByLongName(strings.TrimSpace(name), true)
	}
	for _, name := range plusCleared {
		sh.Top.Options.SetByLongName(name, false)
	}

	switch {
	case flagC != "":
		if len(args) > 0 {
			sh.Top.Params.SetArg0(args[0])
			sh.Top.Params.Set(args[1:])
		}
		exitStatus = sh.RunString(flagC)

	case flagS || (len(args) == 0 && !term.IsTerminal(int(os.Stdin.Fd()))):
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		sh.Top.Params.Set(args)
		exitStatus = sh.RunString(string(data))

	case len(args) > 0:
		sh.Top.Params.SetArg0(args[0])
		sh.Top.Params.Set(args[1:])
		exitStatus = sh.RunFile(args[0])

	default:
		exitStatus = runInteractive(sh)
	}
	return nil
}

// runInteractive implements spec §6's interactive front end: read a line,
// feed the accumulated buffer to the lexer, and keep reading (with a PS2
// continuation prompt) for as long as the lexer reports ErrIncomplete.
func runInteractive(sh *interp.Shell) int {
	reader := bufio.NewReader(os.Stdin)
	var buf bytestr.Buffer
	status := 0
	for {
		if buf.Len() == 0 {
			fmt.Fprint(os.Stderr, "$ ")
		} else {
			fmt.Fprint(os.Stderr, "> ")
		}
		line, err := reader.ReadString('\n')
		if line == "" && err != nil {
			break
		}
		buf.Append(line)
		if err != nil {
			status = sh.RunString(buf.String())
			break
		}

		_, lexErr := lexer.Tokenize(buf.String())
		if errors.Is(lexErr, lexer.ErrIncomplete) {
			continue
		}
		status = sh.RunString(buf.String())
		buf.Reset()
	}
	return status
}
