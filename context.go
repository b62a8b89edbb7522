package spawk

// Context is the shared mutable state passed to every handler during
// one engine run. Named variables live for the whole run; the current
// match and active range are scoped fields that the engine sets before
// a handler is invoked and clears when the triggering scope ends, so a
// handler never observes stale state from a previous line.
type Context struct {
	vars  map[string]any
	match *Match
	rng   *RangeInfo
}

func newContext() *Context {
	return &Context{vars: make(map[string]any)}
}

// Set stores a named variable.
func (c *Context) Set(name string, value any) {
	c.vars[name] = value
}

// Get returns a named variable and whether it is set.
func (c *Context) Get(name string) (any, bool) {
	v, ok := c.vars[name]
	return v, ok
}

// Delete removes a named variable.
func (c *Context) Delete(name string) {
	delete(c.vars, name)
}

// Int returns the named variable as an int, or 0 when unset or not an int.
func (c *Context) Int(name string) int {
	v, _ := c.vars[name].(int)
	return v
}

// Str returns the named variable as a string, or "" when unset or not
// a string.
func (c *Context) Str(name string) string {
	v, _ := c.vars[name].(string)
	return v
}

// Add increments the named int variable by delta, treating an unset
// variable as 0.
func (c *Context) Add(name string, delta int) {
	c.vars[name] = c.Int(name) + delta
}

// Match returns the match that triggered the current handler, or nil
// outside a pattern-triggered invocation.
func (c *Context) Match() *Match {
	return c.match
}

// Range returns the active range sub-context, or nil while no range is
// open. The sub-context exists from the line matching the start pattern
// through the line matching the end pattern and is destroyed the instant
// the end pattern matches; dereferencing the result outside a range is a
// usage error by the handler author.
func (c *Context) Range() *RangeInfo {
	return c.rng
}

// InRange reports whether a range is currently open.
func (c *Context) InRange() bool {
	return c.rng != nil
}

// RangeInfo is the per-occurrence sub-context of an open range.
type RangeInfo struct {
	// LineNumber counts lines seen since the range start; the line
	// matching the start pattern is 1.
	LineNumber int

	// IsLastLine is true exactly on the line matching the end pattern.
	IsLastLine bool

	// Match holds the start-pattern match for every line of the range
	// except the last, where it is replaced by the end-pattern match.
	Match *Match
}
