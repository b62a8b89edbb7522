package spawk_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolkov/spawk"
)

const sampleData = `Lorem ipsum dolor sit amet, consectetur
adipiscing elit, sed do eiusmod tempor
incididunt ut labore et dolore magna
aliqua. Ut enim ad minim veniam,
quis nostrud exercitation ullamco
laboris nisi ut aliquip ex ea commodo
consequat. Duis aute irure dolor
in reprehenderit in voluptate velit
esse cillum dolore eu fugiat nulla
pariatur. Excepteur sint occaecat
cupidatat non proident, sunt in culpa
qui officia deserunt mollit anim id
est laborum.
`

// drain pulls the engine to exhaustion and concatenates the line text.
func drain(t *testing.T, e *spawk.Engine) string {
	t.Helper()
	var sb strings.Builder
	for {
		line, err := e.Next()
		if err == io.EOF {
			return sb.String()
		}
		require.NoError(t, err)
		sb.WriteString(line.Text)
	}
}

// collect accumulates line text on the context under "data".
func collect(ctx *spawk.Context, line *spawk.Line) (spawk.Action, error) {
	ctx.Set("data", ctx.Str("data")+line.Text)
	return spawk.Proceed, nil
}

func TestIdentity(t *testing.T) {
	e := spawk.New(strings.NewReader(sampleData))
	assert.Equal(t, sampleData, drain(t, e))
}

func TestIdentityThroughObservers(t *testing.T) {
	// Pattern, range and eval stages are transparent: iterating an
	// engine with only observer stages reproduces the input exactly.
	e := spawk.New(strings.NewReader(sampleData))
	noop := func(*spawk.Context, *spawk.Line) (spawk.Action, error) { return spawk.Proceed, nil }
	require.NoError(t, e.Pattern("dolor", noop))
	require.NoError(t, e.Range("aliqua", "consequat", noop))
	e.Eval(func(*spawk.Context, *spawk.Line) (bool, error) { return true, nil }, noop)
	assert.Equal(t, sampleData, drain(t, e))
}

func TestGrep(t *testing.T) {
	tests := []struct {
		name  string
		exprs []string
		want  string
	}{
		{
			name:  "single match",
			exprs: []string{"anim"},
			want:  "qui officia deserunt mollit anim id\n",
		},
		{
			name:  "multiple lines",
			exprs: []string{"lit"},
			want: "adipiscing elit, sed do eiusmod tempor\n" +
				"in reprehenderit in voluptate velit\n" +
				"qui officia deserunt mollit anim id\n",
		},
		{
			name:  "multiple expressions or",
			exprs: []string{"anim", "occaecat"},
			want: "pariatur. Excepteur sint occaecat\n" +
				"qui officia deserunt mollit anim id\n",
		},
		{
			name:  "repeated identical expressions",
			exprs: []string{"anim", "anim"},
			want:  "qui officia deserunt mollit anim id\n",
		},
		{
			name:  "zero expressions yields nothing",
			exprs: nil,
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := spawk.New(strings.NewReader(sampleData))
			require.NoError(t, e.Grep(tt.exprs...))
			assert.Equal(t, tt.want, drain(t, e))
		})
	}
}

func TestGrepPreservesLineNumbers(t *testing.T) {
	e := spawk.New(strings.NewReader(sampleData))
	require.NoError(t, e.Grep("anim"))
	line, err := e.Next()
	require.NoError(t, err)
	assert.Equal(t, 12, line.Number)
}

func TestFields(t *testing.T) {
	e := spawk.New(strings.NewReader(sampleData))
	require.NoError(t, e.Grep("anim"))
	e.Split("", -1)
	line, err := e.Next()
	require.NoError(t, err)
	require.Len(t, line.Fields, 6)
	assert.Equal(t, "anim", line.Fields[4])
	assert.Equal(t, "anim", line.Field(4))
	assert.Equal(t, "", line.Field(6))
}

func TestWordCount(t *testing.T) {
	e := spawk.New(strings.NewReader(sampleData))
	e.Begin(func(ctx *spawk.Context) error {
		ctx.Set("words", 0)
		return nil
	})
	require.NoError(t, e.Pattern("", func(ctx *spawk.Context, line *spawk.Line) (spawk.Action, error) {
		ctx.Add("words", len(strings.Fields(line.Text)))
		return spawk.Proceed, nil
	}))
	require.NoError(t, e.Run())
	assert.Equal(t, 69, e.Context().Int("words"))
}

func TestPattern(t *testing.T) {
	e := spawk.New(strings.NewReader(sampleData))
	e.Context().Set("data", "")
	require.NoError(t, e.Pattern(`(anim|occaecat)`, collect))
	require.NoError(t, e.Run())
	assert.Equal(t,
		"pariatur. Excepteur sint occaecat\n"+
			"qui officia deserunt mollit anim id\n",
		e.Context().Str("data"))
}

func TestPatternMatchScope(t *testing.T) {
	e := spawk.New(strings.NewReader(sampleData))
	require.NoError(t, e.Pattern(`deserunt\s+(\S+)`, func(ctx *spawk.Context, line *spawk.Line) (spawk.Action, error) {
		require.NotNil(t, ctx.Match())
		ctx.Set("word", ctx.Match().Group(1))
		return spawk.Proceed, nil
	}))
	// A later stage on a non-matching invocation must never observe a
	// stale match from a previous stage or line.
	require.NoError(t, e.Pattern("est laborum", func(ctx *spawk.Context, line *spawk.Line) (spawk.Action, error) {
		m := ctx.Match()
		require.NotNil(t, m)
		assert.Equal(t, "est laborum", m.Text())
		return spawk.Proceed, nil
	}))
	require.NoError(t, e.Run())
	assert.Equal(t, "mollit", e.Context().Str("word"))
	assert.Nil(t, e.Context().Match())
}

func TestMultiPattern(t *testing.T) {
	e := spawk.New(strings.NewReader(sampleData))
	e.Context().Set("data", "")
	require.NoError(t, e.Pattern("anim", collect))
	require.NoError(t, e.Pattern("occaecat", collect))
	require.NoError(t, e.Run())
	assert.Equal(t,
		"pariatur. Excepteur sint occaecat\n"+
			"qui officia deserunt mollit anim id\n",
		e.Context().Str("data"))
}

func TestMultiPatternRange(t *testing.T) {
	e := spawk.New(strings.NewReader(sampleData))
	e.Context().Set("data", "")
	require.NoError(t, e.Pattern("anim", collect))
	require.NoError(t, e.Range("aliqua", "consequat", collect))
	require.NoError(t, e.Pattern("occaecat", collect))
	require.NoError(t, e.Run())
	assert.Equal(t,
		"aliqua. Ut enim ad minim veniam,\n"+
			"quis nostrud exercitation ullamco\n"+
			"laboris nisi ut aliquip ex ea commodo\n"+
			"consequat. Duis aute irure dolor\n"+
			"pariatur. Excepteur sint occaecat\n"+
			"qui officia deserunt mollit anim id\n",
		e.Context().Str("data"))
}

func TestRange(t *testing.T) {
	e := spawk.New(strings.NewReader(sampleData))
	e.Context().Set("data", "")
	var lastLines int
	require.NoError(t, e.Range("aliqua", "consequat", func(ctx *spawk.Context, line *spawk.Line) (spawk.Action, error) {
		ctx.Set("data", ctx.Str("data")+line.Text)
		r := ctx.Range()
		require.NotNil(t, r)
		switch {
		case strings.HasPrefix(line.Text, "aliqua"):
			assert.Equal(t, 1, r.LineNumber)
			assert.False(t, r.IsLastLine)
		case strings.HasPrefix(line.Text, "quis"):
			assert.Equal(t, 2, r.LineNumber)
			assert.False(t, r.IsLastLine)
		case strings.HasPrefix(line.Text, "consequat"):
			assert.Equal(t, 4, r.LineNumber)
			assert.True(t, r.IsLastLine)
		}
		if r.IsLastLine {
			lastLines++
		}
		return spawk.Proceed, nil
	}))
	require.NoError(t, e.Run())
	assert.Equal(t,
		"aliqua. Ut enim ad minim veniam,\n"+
			"quis nostrud exercitation ullamco\n"+
			"laboris nisi ut aliquip ex ea commodo\n"+
			"consequat. Duis aute irure dolor\n",
		e.Context().Str("data"))
	assert.Equal(t, 1, lastLines, "exactly one last-line event per range")
	assert.False(t, e.Context().InRange(), "sub-context destroyed after range end")
}

func TestRangeSingleLine(t *testing.T) {
	// Start and end match the same line: one invocation with
	// LineNumber == 1 and IsLastLine == true.
	e := spawk.New(strings.NewReader(sampleData))
	e.Context().Set("data", "")
	require.NoError(t, e.Range("aliqua", "veniam", func(ctx *spawk.Context, line *spawk.Line) (spawk.Action, error) {
		ctx.Set("data", ctx.Str("data")+line.Text)
		assert.Equal(t, 1, ctx.Range().LineNumber)
		assert.True(t, ctx.Range().IsLastLine)
		return spawk.Proceed, nil
	}))
	require.NoError(t, e.Run())
	assert.Equal(t, "aliqua. Ut enim ad minim veniam,\n", e.Context().Str("data"))
}

func TestGrepThenPattern(t *testing.T) {
	e := spawk.New(strings.NewReader(sampleData))
	require.NoError(t, e.Grep("^a"))
	e.Context().Set("data", "")
	require.NoError(t, e.Pattern("q", collect))
	require.NoError(t, e.Run())
	assert.Equal(t, "aliqua. Ut enim ad minim veniam,\n", e.Context().Str("data"))
}

func TestEval(t *testing.T) {
	// Suppress consecutive duplicate lines, the classic uniq.
	input := "a\na\nb\nb\nb\na\n"
	e := spawk.New(strings.NewReader(input))
	e.Context().Set("last", "")
	e.Eval(
		func(ctx *spawk.Context, line *spawk.Line) (bool, error) {
			return ctx.Str("last") != line.Text, nil
		},
		func(ctx *spawk.Context, line *spawk.Line) (spawk.Action, error) {
			ctx.Set("data", ctx.Str("data")+line.Text)
			ctx.Set("last", line.Text)
			return spawk.Proceed, nil
		})
	require.NoError(t, e.Run())
	assert.Equal(t, "a\nb\na\n", e.Context().Str("data"))
}

func TestEvalErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	e := spawk.New(strings.NewReader(sampleData))
	e.Eval(
		func(ctx *spawk.Context, line *spawk.Line) (bool, error) {
			if line.Number == 3 {
				return false, boom
			}
			return false, nil
		},
		nil)
	err := e.Run()
	assert.ErrorIs(t, err, boom)
}

func TestBadPatternFailsAtRegistration(t *testing.T) {
	e := spawk.New(strings.NewReader(sampleData))

	err := e.Pattern("(unclosed", nil)
	var perr *spawk.PatternError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "(unclosed", perr.Expr)

	assert.Error(t, e.Grep("[bad"))
	assert.Error(t, e.Range("[bad", "end", nil))
	assert.Error(t, e.Range("start", "[bad", nil))

	// Failed registrations install nothing: the chain is untouched.
	assert.Equal(t, sampleData, drain(t, e))
}

func TestRunBeginOnce(t *testing.T) {
	e := spawk.New(strings.NewReader(sampleData))
	runs := 0
	e.Begin(func(ctx *spawk.Context) error {
		runs++
		return nil
	})
	require.NoError(t, e.Run())
	require.NoError(t, e.Run())
	assert.Equal(t, 1, runs, "second Run skips begin handlers")
}

func TestBeginOrderAndError(t *testing.T) {
	e := spawk.New(strings.NewReader(sampleData))
	var order []string
	e.Begin(func(ctx *spawk.Context) error {
		order = append(order, "first")
		return nil
	})
	boom := errors.New("init failed")
	e.Begin(func(ctx *spawk.Context) error {
		order = append(order, "second")
		return boom
	})
	assert.ErrorIs(t, e.Run(), boom)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestDispatchContinue(t *testing.T) {
	input := "skip one\nkeep two\nskip three\n"
	e := spawk.New(strings.NewReader(input))
	skip := spawk.MustPattern("skip")
	e.Every(spawk.When(skip, func(ctx *spawk.Context, line *spawk.Line) (spawk.Action, error) {
		return spawk.Continue, nil
	}))
	e.Every(collect)
	require.NoError(t, e.Run())
	// Continue short-circuits the current line only: the following
	// lines still reach the second handler.
	assert.Equal(t, "keep two\n", e.Context().Str("data"))
}

func TestDispatchReplace(t *testing.T) {
	e := spawk.New(strings.NewReader("hello\n"))
	e.Every(func(ctx *spawk.Context, line *spawk.Line) (spawk.Action, error) {
		return spawk.Replace(line.WithText(strings.ToUpper(line.Text))), nil
	})
	e.Every(collect)
	require.NoError(t, e.Run())
	assert.Equal(t, "HELLO\n", e.Context().Str("data"))
}

func TestDispatchOrder(t *testing.T) {
	e := spawk.New(strings.NewReader("x\n"))
	var order []int
	for i := 1; i <= 3; i++ {
		e.Every(func(ctx *spawk.Context, line *spawk.Line) (spawk.Action, error) {
			order = append(order, i)
			return spawk.Proceed, nil
		})
	}
	require.NoError(t, e.Run())
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestObservationOrder(t *testing.T) {
	// Chained stages observe each line in registration order: the
	// first stage registered wraps the source directly and fires first.
	e := spawk.New(strings.NewReader("only line\n"))
	var order []string
	mark := func(name string) spawk.Handler {
		return func(ctx *spawk.Context, line *spawk.Line) (spawk.Action, error) {
			order = append(order, name)
			return spawk.Proceed, nil
		}
	}
	require.NoError(t, e.Pattern("only", mark("first")))
	require.NoError(t, e.Range("only", "only", mark("second")))
	require.NoError(t, e.Pattern("line", mark("third")))
	require.NoError(t, e.Run())
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestWhenCombinator(t *testing.T) {
	e := spawk.New(strings.NewReader(sampleData))
	p := spawk.MustPattern(`hello|deserunt\s+(\S+)`)
	e.Every(spawk.When(p, func(ctx *spawk.Context, line *spawk.Line) (spawk.Action, error) {
		ctx.Set("got", ctx.Match().Group(1))
		return spawk.Proceed, nil
	}))
	e.Every(func(ctx *spawk.Context, line *spawk.Line) (spawk.Action, error) {
		assert.Nil(t, ctx.Match(), "match scope cleared after guarded handler")
		return spawk.Proceed, nil
	})
	require.NoError(t, e.Run())
	assert.Equal(t, "mollit", e.Context().Str("got"))
}

func TestBetweenCombinator(t *testing.T) {
	e := spawk.New(strings.NewReader(sampleData))
	e.Context().Set("data", "")
	start, end := spawk.MustPattern("aliqua"), spawk.MustPattern("consequat")
	var numbers []int
	e.Every(spawk.Between(start, end, func(ctx *spawk.Context, line *spawk.Line) (spawk.Action, error) {
		numbers = append(numbers, ctx.Range().LineNumber)
		return collect(ctx, line)
	}))
	require.NoError(t, e.Run())
	assert.Equal(t, []int{1, 2, 3, 4}, numbers)
	assert.Equal(t,
		"aliqua. Ut enim ad minim veniam,\n"+
			"quis nostrud exercitation ullamco\n"+
			"laboris nisi ut aliquip ex ea commodo\n"+
			"consequat. Duis aute irure dolor\n",
		e.Context().Str("data"))
}

func TestIfCombinator(t *testing.T) {
	e := spawk.New(strings.NewReader(sampleData))
	e.Context().Set("data", "")
	e.Every(spawk.If(
		func(ctx *spawk.Context, line *spawk.Line) (bool, error) {
			return line.Number == 12, nil
		},
		collect))
	require.NoError(t, e.Run())
	assert.Equal(t, "qui officia deserunt mollit anim id\n", e.Context().Str("data"))
}

func TestDefaultHandlerWritesToSink(t *testing.T) {
	var out strings.Builder
	e := spawk.New(strings.NewReader(sampleData))
	e.SetOutput(&out)
	require.NoError(t, e.Pattern("anim", nil))
	require.NoError(t, e.Run())
	assert.Equal(t, "qui officia deserunt mollit anim id\n", out.String())
}

func TestHandlerErrorAbortsRun(t *testing.T) {
	boom := errors.New("handler failed")
	e := spawk.New(strings.NewReader(sampleData))
	seen := 0
	require.NoError(t, e.Pattern("", func(ctx *spawk.Context, line *spawk.Line) (spawk.Action, error) {
		seen++
		if line.Number == 2 {
			return spawk.Proceed, boom
		}
		return spawk.Proceed, nil
	}))
	assert.ErrorIs(t, e.Run(), boom)
	assert.Equal(t, 2, seen)
}

func TestUnterminatedFinalLine(t *testing.T) {
	e := spawk.New(strings.NewReader("one\ntwo"))
	first, err := e.Next()
	require.NoError(t, err)
	assert.Equal(t, "one\n", first.Text)
	second, err := e.Next()
	require.NoError(t, err)
	assert.Equal(t, "two", second.Text)
	assert.Equal(t, 2, second.Number)
	_, err = e.Next()
	assert.Equal(t, io.EOF, err)
}
