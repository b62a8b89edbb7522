package spawk

import "fmt"

// PatternError reports a malformed search expression. It is returned
// at registration time by CompilePattern and by any Engine method
// that compiles an expression; a failed registration never installs
// a stage or handler.
type PatternError struct {
	Expr string // Offending expression
	Err  error  // Underlying compile error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("pattern %q: %v", e.Expr, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}
