package engine

import "fmt"

// ContentError marks a defect in authored content: a malformed expression,
// an unresolvable reference, or an action applied to state it cannot hold.
// Infrastructure failures (storage, I/O) are plain errors; content errors
// are the ones a content author must fix.
type ContentError struct {
	Where string
	Err   error
}

func (e *ContentError) Error() string {
	if e.Where == "" {
		return e.Err.Error()
	}
	return e.Where + ": " + e.Err.Error()
}

func (e *ContentError) Unwrap() error { return e.Err }

func contentErrf(where, format string, args ...any) error {
	return &ContentError{Where: where, Err: fmt.Errorf(format, args...)}
}
