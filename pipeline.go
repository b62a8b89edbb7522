package spawk

import (
	"bufio"
	"io"
	"strings"
	"unicode"
)

// Source yields tagged lines one at a time. Exhaustion is signaled
// with io.EOF; any other error aborts iteration. Every pipeline stage
// wraps exactly one upstream Source and is itself a Source.
type Source interface {
	Next() (*Line, error)
}

// LineReader yields raw input lines including any trailing newline.
// At end of input it returns io.EOF; a final unterminated line may be
// returned together with io.EOF, as bufio.Reader.ReadString does.
type LineReader interface {
	ReadLine() (string, error)
}

type bufioLines struct {
	br *bufio.Reader
}

func (r *bufioLines) ReadLine() (string, error) {
	return r.br.ReadString('\n')
}

// lineSource is the innermost stage: it tags raw lines with 1-based,
// strictly increasing line numbers before any filtering happens.
type lineSource struct {
	r LineReader
	n int
}

func (s *lineSource) Next() (*Line, error) {
	text, err := s.r.ReadLine()
	if err != nil {
		if err == io.EOF && text != "" {
			// Final line without a trailing newline.
			s.n++
			return &Line{Text: text, Number: s.n}, nil
		}
		return nil, err
	}
	s.n++
	return &Line{Text: text, Number: s.n}, nil
}

// patternStage observes lines matching a pattern. It is transparent:
// every line is yielded downstream whether or not the handler fired.
type patternStage struct {
	src Source
	ctx *Context
	pat *Pattern
	fn  Handler
}

func (s *patternStage) Next() (*Line, error) {
	line, err := s.src.Next()
	if err != nil {
		return nil, err
	}
	if m := s.pat.Search(line.Text); m != nil {
		s.ctx.match = m
		_, herr := s.fn(s.ctx, line)
		s.ctx.match = nil
		if herr != nil {
			return nil, herr
		}
	}
	return line, nil
}

// rangeStage runs a two-pattern state machine. OUTSIDE, each line is
// tested against the start pattern; on a match the stage opens a range
// sub-context on the shared context and turns INSIDE. INSIDE, the
// handler fires for every line (the start line included); the line
// matching the end pattern fires with IsLastLine set and closes the
// range, destroying the sub-context. A line matching both patterns is
// a single-line range. Transparent like patternStage.
type rangeStage struct {
	src        Source
	ctx        *Context
	start, end *Pattern
	fn         Handler
	inRange    bool
}

func (s *rangeStage) Next() (*Line, error) {
	line, err := s.src.Next()
	if err != nil {
		return nil, err
	}
	if err := s.observe(line); err != nil {
		return nil, err
	}
	return line, nil
}

func (s *rangeStage) observe(line *Line) error {
	if !s.inRange {
		m := s.start.Search(line.Text)
		if m == nil {
			return nil
		}
		s.inRange = true
		s.ctx.rng = &RangeInfo{Match: m}
	}
	s.ctx.rng.LineNumber++
	m := s.end.Search(line.Text)
	if m != nil {
		s.ctx.rng.Match = m
		s.ctx.rng.IsLastLine = true
	}
	_, err := s.fn(s.ctx, line)
	if m != nil {
		s.inRange = false
		s.ctx.rng = nil
	}
	return err
}

// evalStage observes lines for which a predicate holds. Predicate
// errors propagate uncaught, aborting iteration. Transparent.
type evalStage struct {
	src  Source
	ctx  *Context
	pred Predicate
	fn   Handler
}

func (s *evalStage) Next() (*Line, error) {
	line, err := s.src.Next()
	if err != nil {
		return nil, err
	}
	ok, err := s.pred(s.ctx, line)
	if err != nil {
		return nil, err
	}
	if ok {
		if _, herr := s.fn(s.ctx, line); herr != nil {
			return nil, herr
		}
	}
	return line, nil
}

// grepStage yields only lines matched by at least one pattern.
// With zero patterns it consumes its input and yields nothing.
type grepStage struct {
	src  Source
	pats []*Pattern
}

func (s *grepStage) Next() (*Line, error) {
	for {
		line, err := s.src.Next()
		if err != nil {
			return nil, err
		}
		for _, p := range s.pats {
			if p.MatchString(line.Text) {
				return line, nil
			}
		}
	}
}

// splitStage attaches Fields to every line; it never filters.
type splitStage struct {
	src      Source
	sep      string
	maxSplit int
}

func (s *splitStage) Next() (*Line, error) {
	line, err := s.src.Next()
	if err != nil {
		return nil, err
	}
	line.Fields = splitFields(line.Text, s.sep, s.maxSplit)
	return line, nil
}

// splitFields splits s on sep at most maxSplit times (-1 = unlimited).
// An empty sep splits on runs of whitespace with leading and trailing
// whitespace ignored; an explicit sep splits on every occurrence and
// keeps empty fields.
func splitFields(s, sep string, maxSplit int) []string {
	if sep == "" {
		if maxSplit < 0 {
			return strings.Fields(s)
		}
		return whitespaceSplitN(s, maxSplit)
	}
	if maxSplit < 0 {
		return strings.Split(s, sep)
	}
	return strings.SplitN(s, sep, maxSplit+1)
}

func whitespaceSplitN(s string, maxSplit int) []string {
	var fields []string
	for maxSplit != 0 {
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
		if s == "" {
			return fields
		}
		cut := strings.IndexFunc(s, unicode.IsSpace)
		if cut < 0 {
			return append(fields, s)
		}
		fields = append(fields, s[:cut])
		s = s[cut:]
		maxSplit--
	}
	// The unsplit remainder keeps its trailing whitespace.
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if s != "" {
		fields = append(fields, s)
	}
	return fields
}
