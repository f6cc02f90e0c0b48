package interp

import (
	"os"
	"strconv"

	"github.com/opensh/sh/internal/ast"
	"github.com/opensh/sh/internal/fdtable"
	"github.com/opensh/sh/internal/shellerr"
)

// applyRedirs opens and tracks every redirection in redirs against f's fd
// table, in textual order, updating f.Stdin/Stdout/Stderr when the target
// fd is 0/1/2 (the only fds procexec can hand to an external process).
// Redirections targeting fd >= 3 are tracked for "read"/"exec N<file"-style
// built-in use but are not visible to spawned external processes, since
// Spec only carries three file handles — see DESIGN.md.
func applyRedirs(f *Frame, redirs []*ast.IoRedirect) error {
	for _, r := range redirs {
		if err := applyOneRedir(f, r); err != nil {
			return err
		}
	}
	return nil
}

func defaultFd(op ast.RedirOp) int {
	switch op {
	case ast.RedirLess, ast.RedirLessGreat, ast.RedirLessAnd, ast.RedirHeredoc, ast.RedirHeredocTab:
		return 0
	default:
		return 1
	}
}

func applyOneRedir(f *Frame, r *ast.IoRedirect) error {
	fd := defaultFd(r.Op)
	if r.HasFd {
		fd = r.Fd
	}

	switch r.Op {
	case ast.RedirHeredoc, ast.RedirHeredocTab:
		body := ""
		if r.Heredoc != nil {
			body = r.Heredoc.Body
		}
		pr, pw, err := os.Pipe()
		if err != nil {
			return shellerr.Wrap(shellerr.KindRedirection, err, "here-document")
		}
		go func() {
			pw.WriteString(body)
			pw.Close()
		}()
		f.FDs.Track(fd, pr, fdtable.OriginPipe)
		setStdFile(f, fd, pr)
		return nil
	}

	target, err := wordCtx(f).WordSingle(r.Target)
	if err != nil {
		return shellerr.Wrap(shellerr.KindExpansion, err, "redirection target")
	}

	switch r.Op {
	case ast.RedirLessAnd, ast.RedirGreatAnd:
		if target == "-" {
			if cur, ok := f.FDs.Get(fd); ok && cur.File != nil {
				cur.File.Close()
			}
			setStdFile(f, fd, nil)
			return nil
		}
		srcFd, convErr := strconv.Atoi(target)
		if convErr != nil {
			return shellerr.Newf(shellerr.KindRedirection, "%s: bad file descriptor", target)
		}
		srcFile := stdFile(f, srcFd)
		if srcFile == nil {
			if e, ok := f.FDs.Get(srcFd); ok {
				srcFile = e.File
			}
		}
		if srcFile == nil {
			return shellerr.Newf(shellerr.KindRedirection, "%d: bad file descriptor", srcFd)
		}
		f.FDs.Track(fd, srcFile, fdtable.OriginRedirect)
		setStdFile(f, fd, srcFile)
		return nil

	case ast.RedirLess:
		file, err := os.Open(target)
		if err != nil {
			return shellerr.Wrap(shellerr.KindRedirection, err, target)
		}
		f.FDs.Track(fd, file, fdtable.OriginRedirect)
		setStdFile(f, fd, file)
		return nil

	case ast.RedirGreat, ast.RedirClobber:
		flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		if f.Options.NoClobber && r.Op == ast.RedirGreat {
			if _, statErr := os.Stat(target); statErr == nil {
				return shellerr.Newf(shellerr.KindRedirection, "%s: cannot overwrite existing file", target)
			}
			flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
		}
		file, err := os.OpenFile(target, flags, 0644)
		if err != nil {
			return shellerr.Wrap(shellerr.KindRedirection, err, target)
		}
		f.FDs.Track(fd, file, fdtable.OriginRedirect)
		setStdFile(f, fd, file)
		return nil

	case ast.RedirDGreat:
		file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return shellerr.Wrap(shellerr.KindRedirection, err, target)
		}
		f.FDs.Track(fd, file, fdtable.OriginRedirect)
		setStdFile(f, fd, file)
		return nil

	case ast.RedirLessGreat:
		file, err := os.OpenFile(target, os.O_RDWR|os.O_CREATE, 0644)
		if err != nil {
			return shellerr.Wrap(shellerr.KindRedirection, err, target)
		}
		f.FDs.Track(fd, file, fdtable.OriginRedirect)
		setStdFile(f, fd, file)
		return nil
	}
	return shellerr.Newf(shellerr.KindRedirection, "unsupported redirection operator")
}

func setStdFile(f *Frame, fd int, file *os.File) {
	switch fd {
	case 0:
		f.Stdin = file
	case 1:
		f.Stdout = file
	case 2:
		f.Stderr = file
	}
}

func stdFile(f *Frame, fd int) *os.File {
	switch fd {
	case 0:
		return f.Stdin
	case 1:
		return f.Stdout
	case 2:
		return f.Stderr
	}
	return nil
}
