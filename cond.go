package xasm

// maxCondDepth bounds `#if` nesting per spec §4.7.
const maxCondDepth = 10

// condStack is the conditional-assembly preprocessor's nesting stack: one
// boolean per open `#if` recording whether the block it introduced is
// currently "live" (its lines should reach the rest of the pipeline).
type condStack struct {
	frames []condFrame
}

type condFrame struct {
	taken    bool // this branch (the #if or the #else) was selected
	sawElse  bool // an #else has already been consumed for this #if
	enclosed bool // an enclosing frame was itself not taken
}

// Active reports whether source lines at the current nesting level should
// be assembled: every frame on the stack must have taken its branch and
// not be nested inside a skipped one.
func (c *condStack) Active() bool {
	for _, f := range c.frames {
		if !f.taken || f.enclosed {
			return false
		}
	}
	return true
}

func (c *condStack) Depth() int { return len(c.frames) }

// PushIf opens a new `#if`/`#ifdef` block, condition already evaluated.
func (c *condStack) PushIf(cond bool) error {
	if len(c.frames) >= maxCondDepth {
		return newErr(KindResource, "", 0, 0, "conditional nesting exceeds %d levels", maxCondDepth)
	}
	c.frames = append(c.frames, condFrame{
		taken:    cond,
		enclosed: !c.Active() && len(c.frames) > 0,
	})
	return nil
}

// Else flips the top frame to its alternate branch.
func (c *condStack) Else() error {
	if len(c.frames) == 0 {
		return newErr(KindSemantic, "", 0, 0, "#else without matching #if")
	}
	top := &c.frames[len(c.frames)-1]
	if top.sawElse {
		return newErr(KindSemantic, "", 0, 0, "multiple #else for one #if")
	}
	top.sawElse = true
	top.taken = !top.taken
	return nil
}

// EndIf closes the innermost block.
func (c *condStack) EndIf() error {
	if len(c.frames) == 0 {
		return newErr(KindSemantic, "", 0, 0, "#endif without matching #if")
	}
	c.frames = c.frames[:len(c.frames)-1]
	return nil
}

// Reset clears the stack for a new pass. Spec §4.8 re-evaluates every
// conditional fresh each pass since its condition may reference a symbol
// whose value has since changed.
func (c *condStack) Reset() { c.frames = nil }
