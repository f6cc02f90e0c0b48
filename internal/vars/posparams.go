package vars

// MaxPositional bounds the number of positional parameters a single frame
// may hold; set generously above anything a real script plausibly needs.
const MaxPositional = 4096

// PosParams holds $0 plus the ordered $1, $2, ... list.
type PosParams struct {
	arg0   string
	params []string
}

// NewPosParams creates a positional-parameter list with the given $0.
func NewPosParams(arg0 string) *PosParams {
	return &PosParams{arg0: arg0}
}

// Arg0 returns $0.
func (p *PosParams) Arg0() string { return p.arg0 }

// SetArg0 replaces $0 (used by "exec -a name" and similar).
func (p *PosParams) SetArg0(v string) { p.arg0 = v }

// Set replaces the whole $1... list, as "set --" and function calls do.
func (p *PosParams) Set(params []string) {
	if len(params) > MaxPositional {
		params = params[:MaxPositional]
	}
	p.params = append([]string(nil), params...)
}

// Len returns $#.
func (p *PosParams) Len() int { return len(p.params) }

// Get returns $n for n >= 1, or "" if unset.
func (p *PosParams) Get(n int) (string, bool) {
	if n < 1 || n > len(p.params) {
		return "", false
	}
	return p.params[n-1], true
}

// All returns the full $1... list.
func (p *PosParams) All() []string { return append([]string(nil), p.params...) }

// Shift removes n parameters from the front, as the "shift" built-in does.
// It reports false (and does nothing) if n exceeds the current count.
func (p *PosParams) Shift(n int) bool {
	if n < 0 || n > len(p.params) {
		return false
	}
	p.params = p.params[n:]
	return true
}

// Clone deep-copies the positional parameter list.
func (p *PosParams) Clone() *PosParams {
	return &PosParams{arg0: p.arg0, params: append([]string(nil), p.params...)}
}
