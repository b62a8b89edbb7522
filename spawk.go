package spawk

import (
	"bufio"
	"io"
	"os"
)

// Version is the spawk version string.
const Version = "0.1.0"

// Engine processes line-oriented text by applying registered rules.
// Stages registered with Pattern, Range, Eval, Grep and Split form a
// lazy pull-based chain over the input; handlers registered with Begin
// and Every/Main run in the dispatch loop driven by Run.
//
// An Engine is not safe for concurrent use; processing is strictly
// single-threaded and single-pass.
type Engine struct {
	head  Source
	ctx   *Context
	begin []BeginHandler
	main  []Handler
	out   io.Writer
}

// New creates an engine reading lines from r.
func New(r io.Reader) *Engine {
	return NewLines(&bufioLines{br: bufio.NewReader(r)})
}

// NewLines creates an engine pulling raw lines from r. Use this with
// sources that produce lines directly, such as a follow.Follower.
func NewLines(r LineReader) *Engine {
	return &Engine{
		head: &lineSource{r: r},
		ctx:  newContext(),
		out:  os.Stdout,
	}
}

// Context returns the shared context. Variables may be seeded before
// Run and inspected after it returns.
func (e *Engine) Context() *Context {
	return e.ctx
}

// SetOutput sets the sink used by default handlers (nil handlers passed
// to registration methods). The default sink is os.Stdout.
func (e *Engine) SetOutput(w io.Writer) {
	e.out = w
}

// Next pulls the next line through the full stage chain. It returns
// io.EOF when the input is exhausted. This makes the engine directly
// iterable for pipeline-only consumption without a dispatch loop.
func (e *Engine) Next() (*Line, error) {
	return e.head.Next()
}

// Begin registers a handler invoked once, before any line is processed,
// when Run is called. Begin handlers run in registration order and are
// cleared after they run, so a second Run skips them.
func (e *Engine) Begin(h BeginHandler) {
	e.begin = append(e.begin, h)
}

// Every registers a handler invoked for every line in the dispatch
// loop. A nil handler writes the raw line to the engine output sink.
func (e *Engine) Every(h Handler) {
	e.main = append(e.main, e.orDefault(h))
}

// Main is an alias for Every.
func (e *Engine) Main(h Handler) {
	e.Every(h)
}

// Pattern pushes a transparent pattern-observer stage onto the chain:
// h fires for every line containing a match of expr, with the match
// exposed through Context.Match for the duration of the call. The
// empty expression matches every line. A nil handler writes the raw
// line to the engine output sink.
func (e *Engine) Pattern(expr string, h Handler) error {
	p, err := CompilePattern(expr)
	if err != nil {
		return err
	}
	e.head = &patternStage{src: e.head, ctx: e.ctx, pat: p, fn: e.orDefault(h)}
	return nil
}

// Range pushes a transparent range stage onto the chain: h fires for
// every line from a match of start through the first subsequent match
// of end, inclusive, with Context.Range populated. A nil handler writes
// the raw line to the engine output sink.
func (e *Engine) Range(start, end string, h Handler) error {
	sp, err := CompilePattern(start)
	if err != nil {
		return err
	}
	ep, err := CompilePattern(end)
	if err != nil {
		return err
	}
	e.head = &rangeStage{src: e.head, ctx: e.ctx, start: sp, end: ep, fn: e.orDefault(h)}
	return nil
}

// Eval pushes a transparent predicate stage onto the chain: h fires
// for every line for which pred returns true. A predicate error aborts
// the run. A nil handler writes the raw line to the engine output sink.
func (e *Engine) Eval(pred Predicate, h Handler) {
	e.head = &evalStage{src: e.head, ctx: e.ctx, pred: pred, fn: e.orDefault(h)}
}

// Grep pushes a filter stage onto the chain. A line passes if any of
// the expressions matches; with no expressions nothing passes.
func (e *Engine) Grep(exprs ...string) error {
	pats := make([]*Pattern, 0, len(exprs))
	for _, expr := range exprs {
		p, err := CompilePattern(expr)
		if err != nil {
			return err
		}
		pats = append(pats, p)
	}
	e.head = &grepStage{src: e.head, pats: pats}
	return nil
}

// Split pushes a field-splitting stage onto the chain, populating
// Line.Fields on every line. An empty sep splits on runs of whitespace;
// maxSplit limits the number of splits (-1 = unlimited). It returns the
// engine for chaining.
func (e *Engine) Split(sep string, maxSplit int) *Engine {
	e.head = &splitStage{src: e.head, sep: sep, maxSplit: maxSplit}
	return e
}

// Run executes the program to completion, consuming the entire input.
// Begin handlers run first, once, in registration order. Then each line
// pulled from the head of the chain is dispatched to the main handlers
// in registration order: a handler returning Continue stops dispatch
// for that line, and one returning Replace substitutes the line for
// the remaining handlers. Run returns nil on normal exhaustion; any
// handler, predicate or input error aborts the run and is returned.
func (e *Engine) Run() error {
	for _, h := range e.begin {
		if err := h(e.ctx); err != nil {
			return err
		}
	}
	e.begin = nil

dispatch:
	for {
		line, err := e.head.Next()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		for _, h := range e.main {
			act, herr := h(e.ctx, line)
			if herr != nil {
				return herr
			}
			switch act.op {
			case opContinue:
				continue dispatch
			case opReplace:
				if act.line != nil {
					line = act.line
				}
			}
		}
	}
}

// orDefault resolves a nil handler to the default "write the raw line
// to the engine output sink" action. The sink is read at invocation
// time so SetOutput takes effect regardless of registration order.
func (e *Engine) orDefault(h Handler) Handler {
	if h != nil {
		return h
	}
	return func(_ *Context, line *Line) (Action, error) {
		_, err := io.WriteString(e.out, line.Text)
		return Proceed, err
	}
}
