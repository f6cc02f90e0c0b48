package interp

// TrapTable maps a signal or pseudo-signal name ("EXIT", "DEBUG", "ERR", "0",
// "INT", ...) to the trap command text registered for it, per spec §4.6's
// supplemented DEBUG/ERR trap coverage. "0" is accepted as a synonym for
// "EXIT", matching real shells.
type TrapTable struct {
	byName map[string]string
}

// NewTrapTable creates an empty trap table.
func NewTrapTable() *TrapTable {
	return &TrapTable{byName: make(map[string]string)}
}

func canonicalTrapName(name string) string {
	if name == "0" {
		return "EXIT"
	}
	return name
}

// Get returns the command text registered for name, if any.
func (t *TrapTable) Get(name string) (string, bool) {
	v, ok := t.byName[canonicalTrapName(name)]
	return v, ok
}

// Set registers text as the trap for name. An empty text ("trap '' NAME")
// means "ignore this condition"; callers distinguish that from "unregistered"
// via Get's ok return combined with an empty string, so both are stored.
func (t *TrapTable) Set(name, text string) {
	t.byName[canonicalTrapName(name)] = text
}

// Unset removes the trap for name, restoring the default action.
func (t *TrapTable) Unset(name string) {
	delete(t.byName, canonicalTrapName(name))
}

// Names returns every signal/pseudo-signal name with a registered trap.
func (t *TrapTable) Names() []string {
	out := make([]string, 0, len(t.byName))
	for n := range t.byName {
		out = append(out, n)
	}
	return out
}

// Clone deep-copies the table, used by the Subshell frame's COPY policy.
func (t *TrapTable) Clone() *TrapTable {
	out := NewTrapTable()
	for k, v := range t.byName {
		out.byName[k] = v
	}
	return out
}
