// Package fdtable tracks the file descriptors a frame has open, saved, or
// redirected, so frame pop can restore exactly what it overwrote.
package fdtable

import "os"

// Origin records where a tracked fd's current file came from.
type Origin int

const (
	OriginInherited Origin = iota // inherited unchanged from the parent frame
	OriginRedirect                // opened by a redirection (path, here-doc, dup)
	OriginPipe                    // one end of an anonymous pipe
)

// Entry is one tracked file descriptor.
type Entry struct {
	Fd      int
	File    *os.File
	CloseOnExec bool
	Origin  Origin
	// SavedFd, when >= 0, is the fd whose previous entry this one replaced,
	// and SavedFile is that entry's file; Restore puts SavedFile back as the
	// table entry for Fd.
	SavedFd   int
	SavedFile *os.File
}

// Table is a frame's view of open file descriptors. A BraceGroup/Function/
// DotScript frame's table SHAREs the parent's map but still needs its own
// "restore" list (spec's "SHARE+restore" policy); a Subshell/PipelineMember
// frame COPYs or forks entirely.
type Table struct {
	entries map[int]*Entry
	restore []*Entry
}

// New creates an empty file-descriptor table.
func New() *Table {
	return &Table{entries: make(map[int]*Entry)}
}

// Get returns the entry tracked for fd, if any.
func (t *Table) Get(fd int) (*Entry, bool) {
	e, ok := t.entries[fd]
	return e, ok
}

// Track records that fd now refers to file, remembering the previous
// occupant (if any) so Restore can put it back.
func (t *Table) Track(fd int, file *os.File, origin Origin) {
	prev, hadPrev := t.entries[fd]
	e := &Entry{Fd: fd, File: file, Origin: origin, SavedFd: -1}
	if hadPrev {
		e.SavedFd = fd
		e.SavedFile = prev.File
	}
	t.entries[fd] = e
	t.restore = append(t.restore, e)
}

// Clone deep-copies the table for a COPY-policy frame push. The restore
// list starts empty: a freshly copied table has nothing of its own to undo
// yet.
func (t *Table) Clone() *Table {
	out := New()
	for fd, e := range t.entries {
		cp := *e
		out.entries[fd] = &cp
	}
	return out
}

// Restore undoes every redirection tracked since the last Restore call, in
// reverse order: it closes each tracked entry's file and puts the saved
// previous file back as the table entry (or removes the entry if there was
// none). Entries tracked as OriginInherited were not opened by this frame
// and are left in place. Only the table changes; no OS-level dup2 is done.
// Frame pop calls it for frames that share their parent's table.
func (t *Table) Restore() []error {
	var errs []error
	for i := len(t.restore) - 1; i >= 0; i-- {
		e := t.restore[i]
		if e.Origin == OriginInherited {
			continue
		}
		if e.File != nil {
			if err := e.File.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		if e.SavedFile != nil {
			t.entries[e.Fd] = &Entry{Fd: e.Fd, File: e.SavedFile, Origin: OriginInherited, SavedFd: -1}
		} else {
			delete(t.entries, e.Fd)
		}
	}
	t.restore = nil
	return errs
}

// CloseAll closes every tracked fd and releases the table entirely, used
// when a Subshell/PipelineMember/BackgroundJob child frame's process exits.
func (t *Table) CloseAll() []error {
	var errs []error
	for _, e := range t.entries {
		if e.File != nil {
			if err := e.File.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	t.entries = make(map[int]*Entry)
	t.restore = nil
	return errs
}
