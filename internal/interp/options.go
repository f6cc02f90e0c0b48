package interp

// Options holds the shell's "set -o"/short-flag option state (spec §6's
// "-abCefhmnuvx" plus the long "-o name" forms spec §4.6 supplements with).
// Every frame holds a pointer to an Options value; the frame policy table
// decides whether a push shares it or clones it (newChild in frame.go):
// Subshell and PipelineMember frames get a copy, every other frame type
// shares the parent's pointer.
type Options struct {
	AllExport bool // -a / allexport
	Notify    bool // -b / notify
	NoClobber bool // -C / noclobber
	ErrExit   bool // -e / errexit
	NoGlob    bool // -f / noglob
	HashAll   bool // -h / hashall (no-op here: commands are never cached by path)
	Monitor   bool // -m / monitor
	NoExec    bool // -n / noexec
	NoUnset   bool // -u / nounset
	Verbose   bool // -v / verbose
	Xtrace    bool // -x / xtrace
	PipeFail  bool // -o pipefail (no short form)
}

// shortOptionNames maps each short letter spec §6 names to its "set -o"
// long name, used both by cmd/sh's flag parsing and by the "set"/"set -o"
// built-ins.
var shortOptionNames = map[byte]string{
	'a': "allexport",
	'b': "notify",
	'C': "noclobber",
	'e': "errexit",
	'f': "noglob",
	'h': "hashall",
	'm': "monitor",
	'n': "noexec",
	'u': "nounset",
	'v': "verbose",
	'x': "xtrace",
}

// Clone deep-copies o. newChild uses it for Subshell and PipelineMember
// frames; every other frame type shares its parent's *Options pointer.
func (o *Options) Clone() *Options {
	cp := *o
	return &cp
}

// SetByLongName sets the named long option (e.g. "errexit", "pipefail") to
// on, used by both "-o name" and "set -o name".
func (o *Options) SetByLongName(name string, on bool) bool {
	switch name {
	case "allexport":
		o.AllExport = on
	case "notify":
		o.Notify = on
	case "noclobber":
		o.NoClobber = on
	case "errexit":
		o.ErrExit = on
	case "noglob":
		o.NoGlob = on
	case "hashall":
		o.HashAll = on
	case "monitor":
		o.Monitor = on
	case "noexec":
		o.NoExec = on
	case "nounset":
		o.NoUnset = on
	case "verbose":
		o.Verbose = on
	case "xtrace":
		o.Xtrace = on
	case "pipefail":
		o.PipeFail = on
	default:
		return false
	}
	return true
}

// SetByShortLetter sets the option named by short letter c, reporting false
// for an unrecognized letter.
func (o *Options) SetByShortLetter(c byte, on bool) bool {
	name, ok := shortOptionNames[c]
	if !ok {
		return false
	}
	return o.SetByLongName(name, on)
}

// Names returns long option names in a fixed order (not sorted): only the
// options currently on when onOnly is true, every option name otherwise.
func (o *Options) Names(onOnly bool) []string {
	all := []struct {
		name string
		on   bool
	}{
		{"allexport", o.AllExport}, {"notify", o.Notify}, {"noclobber", o.NoClobber},
		{"errexit", o.ErrExit}, {"noglob", o.NoGlob}, {"hashall", o.HashAll},
		{"monitor", o.Monitor}, {"noexec", o.NoExec}, {"nounset", o.NoUnset},
		{"verbose", o.Verbose}, {"xtrace", o.Xtrace}, {"pipefail", o.PipeFail},
	}
	var out []string
	for _, e := range all {
		if !onOnly || e.on {
			out = append(out, e.name)
		}
	}
	return out
}

// Flags renders the "$-" special parameter: every short-lettered option
// currently on, in a fixed, deterministic order.
func (o *Options) Flags() string {
	order := "abCefhmnuvx"
	var sb []byte
	for i := 0; i < len(order); i++ {
		name := shortOptionNames[order[i]]
		for _, n := range o.Names(true) {
			if n == name {
				sb = append(sb, order[i])
				break
			}
		}
	}
	return string(sb)
}
