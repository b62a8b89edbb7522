// Package apachelog parses Apache access-log lines into structured
// entries and adapts them to spawk handlers.
package apachelog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kolkov/spawk"
)

// Format selects the access-log layout to parse.
type Format int

const (
	// Common is the Common Log Format:
	// %h %l %u %t "%r" %>s %O
	Common Format = iota

	// Combined adds referer and user agent:
	// %h %l %u %t "%r" %>s %O "%{Referer}i" "%{User-Agent}i"
	Combined

	// VHostCombined prefixes the combined format with the canonical
	// virtual host and port:
	// %v:%p %h %l %u %t "%r" %>s %O "%{Referer}i" "%{User-Agent}i"
	VHostCombined
)

// timeLayout is Apache's %t timestamp format.
const timeLayout = "02/Jan/2006:15:04:05 -0700"

const (
	commonExpr   = `^(\S+) (\S+) (\S+) \[([^\]]+)\] "([^"]*)" (\d{3}|-) (\S+)`
	combinedExpr = commonExpr + ` "([^"]*)" "([^"]*)"`
	vhostExpr    = `^([^ :]+):(\d+) ` + `(\S+) (\S+) (\S+) \[([^\]]+)\] "([^"]*)" (\d{3}|-) (\S+) "([^"]*)" "([^"]*)"`
)

// Entry is one parsed access-log record.
type Entry struct {
	VirtualHost string // VHostCombined only
	Port        int    // VHostCombined only
	RemoteHost  string
	Ident       string // "-" when absent
	User        string // "-" when absent
	Time        time.Time
	Method      string
	Path        string
	Protocol    string
	Status      int
	Bytes       int64  // 0 when logged as "-"
	Referer     string // Combined formats only
	UserAgent   string // Combined formats only
}

// ParseError reports a line that does not conform to the parser format.
type ParseError struct {
	Line string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed log line %q: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("malformed log line %q", e.Line)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parser parses access-log lines of a fixed format.
type Parser struct {
	format Format
	pat    *spawk.Pattern
}

// NewParser returns a parser for the given format.
func NewParser(format Format) *Parser {
	var expr string
	switch format {
	case Combined:
		expr = combinedExpr
	case VHostCombined:
		expr = vhostExpr
	default:
		expr = commonExpr
	}
	return &Parser{format: format, pat: spawk.MustPattern(expr)}
}

// Parse parses one log line, with or without a trailing newline.
func (p *Parser) Parse(line string) (*Entry, error) {
	m := p.pat.Search(line)
	if m == nil {
		return nil, &ParseError{Line: strings.TrimRight(line, "\n")}
	}

	e := &Entry{}
	base := 0
	if p.format == VHostCombined {
		e.VirtualHost = m.Group(1)
		port, err := strconv.Atoi(m.Group(2))
		if err != nil {
			return nil, &ParseError{Line: strings.TrimRight(line, "\n"), Err: err}
		}
		e.Port = port
		base = 2
	}

	e.RemoteHost = m.Group(base + 1)
	e.Ident = m.Group(base + 2)
	e.User = m.Group(base + 3)

	ts, err := time.Parse(timeLayout, m.Group(base+4))
	if err != nil {
		return nil, &ParseError{Line: strings.TrimRight(line, "\n"), Err: err}
	}
	e.Time = ts

	// %r is "METHOD PATH PROTOCOL"; tolerate malformed request lines.
	req := strings.SplitN(m.Group(base+5), " ", 3)
	e.Method = req[0]
	if len(req) > 1 {
		e.Path = req[1]
	}
	if len(req) > 2 {
		e.Protocol = req[2]
	}

	if s := m.Group(base + 6); s != "-" {
		e.Status, _ = strconv.Atoi(s)
	}
	if b := m.Group(base + 7); b != "-" {
		n, err := strconv.ParseInt(b, 10, 64)
		if err != nil {
			return nil, &ParseError{Line: strings.TrimRight(line, "\n"), Err: err}
		}
		e.Bytes = n
	}

	if p.format != Common {
		e.Referer = m.Group(base + 8)
		e.UserAgent = m.Group(base + 9)
	}
	return e, nil
}

// Handler adapts fn into a spawk.Handler that parses each line and
// delegates with the structured entry. Parse failures abort the run.
func (p *Parser) Handler(fn func(*spawk.Context, *spawk.Line, *Entry) (spawk.Action, error)) spawk.Handler {
	return func(ctx *spawk.Context, line *spawk.Line) (spawk.Action, error) {
		entry, err := p.Parse(line.Text)
		if err != nil {
			return spawk.Proceed, err
		}
		return fn(ctx, line, entry)
	}
}
