package spawk

// Line is one input line tagged with its position in the source.
// Text always carries the raw line including any trailing newline;
// it is never stripped. Number is assigned by the innermost stage,
// before any filtering, so downstream stages see original source
// line numbers. Fields is nil until a split stage runs.
type Line struct {
	Text   string
	Number int
	Fields []string
}

func (l *Line) String() string {
	return l.Text
}

// WithText returns a copy of the line with replaced text, preserving
// the line number and fields. Useful with [Replace] in dispatch mode.
func (l *Line) WithText(text string) *Line {
	c := *l
	c.Text = text
	return &c
}

// Field returns the i-th field (0-based), or "" when out of range
// or when no split stage has populated Fields.
func (l *Line) Field(i int) string {
	if i < 0 || i >= len(l.Fields) {
		return ""
	}
	return l.Fields[i]
}
