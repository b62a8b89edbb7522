package spawk

import (
	"regexp"

	"github.com/coregx/coregex"
)

// Pattern is a compiled search expression. Matching is unanchored
// ("search" semantics: a match anywhere in the line counts) and
// leftmost-first. The empty expression matches every line.
//
// Match detection runs on the coregex engine; capture-group extraction
// falls back to the standard regexp package compiled from the same
// RE2 expression, so both engines agree on what matches.
type Pattern struct {
	expr string
	fast *coregex.Regexp // nil for the empty expression
	full *regexp.Regexp
}

// CompilePattern compiles expr. A malformed expression fails here, at
// registration time, with a *PatternError; it is never deferred to
// match time.
func CompilePattern(expr string) (*Pattern, error) {
	full, err := regexp.Compile(expr)
	if err != nil {
		return nil, &PatternError{Expr: expr, Err: err}
	}
	p := &Pattern{expr: expr, full: full}
	if expr != "" {
		fast, err := coregex.Compile(expr)
		if err != nil {
			return nil, &PatternError{Expr: expr, Err: err}
		}
		p.fast = fast
	}
	return p, nil
}

// MustPattern is like CompilePattern but panics on error. It simplifies
// initialization of global patterns.
func MustPattern(expr string) *Pattern {
	p, err := CompilePattern(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the original expression.
func (p *Pattern) String() string {
	return p.expr
}

// MatchString reports whether s contains a match.
func (p *Pattern) MatchString(s string) bool {
	if p.fast != nil {
		return p.fast.MatchString(s)
	}
	return p.full.MatchString(s)
}

// Search returns the first match in s, or nil if there is none.
func (p *Pattern) Search(s string) *Match {
	if p.fast != nil && !p.fast.MatchString(s) {
		return nil
	}
	index := p.full.FindStringSubmatchIndex(s)
	if index == nil {
		return nil
	}
	return &Match{input: s, index: index}
}

// Match is the result of a successful pattern search. It is set on the
// [Context] only for the duration of the handler invocation it triggered
// and cleared when that handler returns.
type Match struct {
	input string
	index []int
}

// Start returns the byte offset where the match begins.
func (m *Match) Start() int { return m.index[0] }

// End returns the byte offset just past the end of the match.
func (m *Match) End() int { return m.index[1] }

// Text returns the matched substring (capture group 0).
func (m *Match) Text() string { return m.input[m.index[0]:m.index[1]] }

// GroupCount returns the number of capture groups in the pattern,
// not counting group 0.
func (m *Match) GroupCount() int { return len(m.index)/2 - 1 }

// Group returns the text of capture group i, with group 0 being the
// whole match. It returns "" for groups that did not participate in
// the match or indexes out of range.
func (m *Match) Group(i int) string {
	if i < 0 || i >= len(m.index)/2 {
		return ""
	}
	lo, hi := m.index[2*i], m.index[2*i+1]
	if lo < 0 {
		return ""
	}
	return m.input[lo:hi]
}
