package spawk

import "io"

// Handler is a user-supplied callback invoked by a stage or by the
// dispatch loop with the shared context and the current line. The
// returned Action only affects the dispatch loop; stages ignore it.
// A non-nil error aborts the run.
type Handler func(*Context, *Line) (Action, error)

// BeginHandler runs once before any line is processed.
type BeginHandler func(*Context) error

// Predicate decides whether a handler fires for a line. A non-nil
// error propagates uncaught and aborts the run.
type Predicate func(*Context, *Line) (bool, error)

type actionOp uint8

const (
	opProceed actionOp = iota
	opContinue
	opReplace
)

// Action is a handler's instruction to the dispatch loop. The zero
// value is Proceed.
type Action struct {
	op   actionOp
	line *Line
}

// Proceed lets dispatch continue with the next handler unchanged.
var Proceed = Action{}

// Continue stops dispatching the remaining handlers for the current
// line only; subsequent lines dispatch all handlers normally.
var Continue = Action{op: opContinue}

// Replace substitutes line for the remaining handlers of the current
// dispatch iteration.
func Replace(line *Line) Action {
	return Action{op: opReplace, line: line}
}

// WriteTo returns a handler that writes the raw line text to w. It is
// the default action installed when a registration method receives a
// nil handler.
func WriteTo(w io.Writer) Handler {
	return func(_ *Context, line *Line) (Action, error) {
		_, err := io.WriteString(w, line.Text)
		return Proceed, err
	}
}

// When guards h with a pattern for dispatch mode: h runs only on lines
// containing a match, with the match exposed through Context.Match for
// the duration of the call.
func When(p *Pattern, h Handler) Handler {
	return func(ctx *Context, line *Line) (Action, error) {
		m := p.Search(line.Text)
		if m == nil {
			return Proceed, nil
		}
		ctx.match = m
		act, err := h(ctx, line)
		ctx.match = nil
		return act, err
	}
}

// Between guards h with a start/end range state machine for dispatch
// mode, with the same semantics as a range stage: h runs for every line
// from a start-pattern match through the first subsequent end-pattern
// match, inclusive, with Context.Range populated.
func Between(start, end *Pattern, h Handler) Handler {
	inRange := false
	return func(ctx *Context, line *Line) (Action, error) {
		if !inRange {
			m := start.Search(line.Text)
			if m == nil {
				return Proceed, nil
			}
			inRange = true
			ctx.rng = &RangeInfo{Match: m}
		}
		ctx.rng.LineNumber++
		m := end.Search(line.Text)
		if m != nil {
			ctx.rng.Match = m
			ctx.rng.IsLastLine = true
		}
		act, err := h(ctx, line)
		if m != nil {
			inRange = false
			ctx.rng = nil
		}
		return act, err
	}
}

// If guards h with a predicate for dispatch mode.
func If(pred Predicate, h Handler) Handler {
	return func(ctx *Context, line *Line) (Action, error) {
		ok, err := pred(ctx, line)
		if err != nil || !ok {
			return Proceed, err
		}
		return h(ctx, line)
	}
}
