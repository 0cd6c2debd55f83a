package arborist

import "fmt"

// ErrParseAfterRewrite is raised when ApplyChanges reparses its own
// printed output and tree-sitter rejects it — a pass produced a
// structurally invalid replacement. It carries the text that failed to
// reparse so a caller logging at Warn (per the ambient logging spec) can
// show exactly what was wrong.
type ErrParseAfterRewrite struct {
	Inner  error
	Source string
}

func (e *ErrParseAfterRewrite) Error() string {
	return fmt.Sprintf("parse after rewrite failed: %v", e.Inner)
}

func (e *ErrParseAfterRewrite) Unwrap() error {
	return e.Inner
}

// AssertionViolation reports an internal invariant break (e.g. a pass
// staged a Mark against a node id that no longer exists). No code path in
// this module constructs one at present; malformed user input produces
// ErrParseAfterRewrite or a jsparse.ErrParse instead.
type AssertionViolation struct {
	Reason string
}

func (e *AssertionViolation) Error() string {
	return "assertion violation: " + e.Reason
}
