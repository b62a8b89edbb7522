// Package spawk provides an embeddable engine for processing line-oriented
// text by specifying rules and code, in the spirit of awk.
//
// An [Engine] wraps a line source and applies a chain of lazy pipeline
// stages (pattern observers, start/end ranges, predicate filters, grep
// filters, field splitting) followed by an ordered list of main handlers.
// It can be consumed either as an iterator of lines, or by registering
// handlers and calling [Engine.Run].
//
// # Quick Start
//
// Count words across an input:
//
//	e := spawk.New(os.Stdin)
//	e.Begin(func(ctx *spawk.Context) error {
//	    ctx.Set("words", 0)
//	    return nil
//	})
//	e.Pattern("", func(ctx *spawk.Context, line *spawk.Line) (spawk.Action, error) {
//	    ctx.Add("words", len(strings.Fields(line.Text)))
//	    return spawk.Proceed, nil
//	})
//	err := e.Run()
//
// # Pipeline Stages
//
// Stages registered with [Engine.Pattern], [Engine.Range] and [Engine.Eval]
// are transparent: they observe lines and invoke their handler, but every
// line is still yielded downstream. [Engine.Grep] filters lines and
// [Engine.Split] attaches a Fields slice; neither invokes a handler.
// Stages fire in registration order (the first stage registered sits
// closest to the source and observes each line first).
//
// # Ranges
//
// A range runs from a line matching the start pattern through the first
// subsequent line matching the end pattern, inclusive. While inside a
// range the [Context] exposes a [RangeInfo] with a 1-based line counter
// and a last-line flag:
//
//	e.Range(`CREATE TABLE`, `\);`, func(ctx *spawk.Context, line *spawk.Line) (spawk.Action, error) {
//	    ctx.Set("stmt", ctx.Str("stmt")+line.Text)
//	    if ctx.Range().IsLastLine {
//	        fmt.Print(ctx.Str("stmt"))
//	        ctx.Set("stmt", "")
//	    }
//	    return spawk.Proceed, nil
//	})
//
// # Dispatch Mode
//
// Handlers registered with [Engine.Every] (or its alias [Engine.Main]) are
// stored centrally and invoked in registration order for every line pulled
// from the head of the pipeline. A handler returning [Continue] stops
// dispatch for the current line; returning [Replace] substitutes the line
// for the remaining handlers. The [When], [Between] and [If] combinators
// guard a handler with a pattern, a range state machine, or a predicate,
// for use in dispatch mode.
//
// # Concurrency
//
// An Engine is single-threaded and single-pass: one control thread pulls
// lines forward through the chain, so handlers may mutate the shared
// [Context] without locking. Engines are not safe for concurrent use.
package spawk
