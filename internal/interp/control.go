package interp

// ctrlKind classifies a pending control-flow signal (spec §4.6
// "pending_control_flow"). Rather than a mutable field on Frame that every
// caller must remember to check, it is modeled as a typed error value
// (ctrlFlow) returned alongside a normal exit status: exec functions that
// don't care simply propagate the error upward unchanged, and the frame
// that should catch it (a matching loop depth, a function, the top level)
// type-asserts for it, exactly as callers check for io.EOF.
type ctrlKind int

const (
	ctrlNone ctrlKind = iota
	ctrlBreak
	ctrlContinue
	ctrlReturn
	ctrlExit
)

// ctrlFlow is the typed error propagated by "break", "continue", "return"
// and "exit". N is the requested nesting count (break/continue N) or the
// requested exit status (return/exit N).
type ctrlFlow struct {
	kind ctrlKind
	n    int
}

func (c *ctrlFlow) Error() string {
	switch c.kind {
	case ctrlBreak:
		return "break"
	case ctrlContinue:
		return "continue"
	case ctrlReturn:
		return "return"
	case ctrlExit:
		return "exit"
	}
	return "control flow"
}

// asCtrlFlow extracts a *ctrlFlow from err, if that's what it is.
func asCtrlFlow(err error) (*ctrlFlow, bool) {
	cf, ok := err.(*ctrlFlow)
	return cf, ok
}
