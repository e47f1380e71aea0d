package ir

// Context interns types by a structural key, keeping one canonical
// entry per shape. It hands out copies of those entries, not pointers
// to them.
//
// A Context is not safe for concurrent use; callers compiling multiple
// programs in parallel must use one Context per goroutine (§5).
type Context struct {
	byKey map[string]*Type
	all   []*Type
}

// NewContext creates an empty interning context.
func NewContext() *Context {
	return &Context{byKey: make(map[string]*Type, 64)}
}

// Intern returns a copy of the canonical Type for inner, creating and
// recording the canonical entry if this is the first time this
// structural shape has been seen.
func (c *Context) Intern(inner TypeInner) Type {
	k := inner.key()
	if t, ok := c.byKey[k]; ok {
		return *t
	}
	t := &Type{Inner: inner}
	c.byKey[k] = t
	c.all = append(c.all, t)
	return *t
}

// Void returns the interned void type.
func (c *Context) Void() Type { return c.Intern(VoidType{}) }

// Bool returns the interned boolean type.
func (c *Context) Bool() Type { return c.Intern(BooleanType{}) }

// Scalar returns the interned scalar type of the given kind.
func (c *Context) Scalar(kind ScalarKind) Type { return c.Intern(ScalarType{Kind: kind}) }

// Memref returns the interned memref type over the given element,
// shape, stride and address space. Shape and Stride are copied.
func (c *Context) Memref(elem Type, shape, stride []int64, space AddressSpace) Type {
	s := append([]int64(nil), shape...)
	st := append([]int64(nil), stride...)
	return c.Intern(MemrefType{Element: elem, Shape: s, Stride: st, Space: space})
}

// Group returns the interned group type over the given element.
func (c *Context) Group(elem Type, offset bool) Type {
	return c.Intern(GroupType{Element: elem, Offset: offset})
}

// CoopMatrix returns the interned cooperative-matrix type.
func (c *Context) CoopMatrix(component ScalarType, rows, cols int64, use CoopUse) Type {
	return c.Intern(CoopMatrixType{Component: component, Rows: rows, Cols: cols, Use: use})
}

// Types returns every type interned so far, in first-use order.
func (c *Context) Types() []Type {
	out := make([]Type, len(c.all))
	for i, t := range c.all {
		out[i] = *t
	}
	return out
}
