package passes

import "github.com/gogpu/tensorspv/ir"

// AliasClasses maps every memref-typed value reachable in a function to
// an integer equivalence class: two values with the same class may
// alias at runtime and must be treated conservatively by barrier
// insertion; values in different classes are known disjoint.
type AliasClasses struct {
	class map[*ir.Value]int
	next  int
}

// ClassOf returns v's alias class, allocating a fresh singleton class
// if v has not been seen (this only happens for values outside the
// function AliasAnalysis was run on).
func (a *AliasClasses) ClassOf(v *ir.Value) int {
	if c, ok := a.class[v]; ok {
		return c
	}
	c := a.next
	a.next++
	a.class[v] = c
	return c
}

// MayAlias reports whether x and y may refer to overlapping memory.
func (a *AliasClasses) MayAlias(x, y *ir.Value) bool {
	return a.ClassOf(x) == a.ClassOf(y)
}

// AliasAnalysis computes one equivalence class per memref value
// reachable in fn's body (§4.3 step 3). Function parameters in the
// Global or Local address space all share one class: any two such
// parameters of the same function MAY alias, since the runtime permits
// overlapping argument buffers. Private-space parameters each get a
// class of their own. Private-space allocas are always
// disjoint from every other allocation (each is a fresh stack object).
// A view-producing instruction (subview, expand, fuse) shares its
// base's class, since it designates memory within the same
// allocation.
func AliasAnalysis(fn *ir.Function) *AliasClasses {
	a := &AliasClasses{class: make(map[*ir.Value]int, 32)}

	var globalClass = -1
	for _, p := range fn.Params {
		mem, ok := p.Type.Inner.(ir.MemrefType)
		if !ok {
			continue
		}
		if mem.Space == ir.Global || mem.Space == ir.Local {
			if globalClass == -1 {
				globalClass = a.next
				a.next++
			}
			a.class[p] = globalClass
		} else {
			a.ClassOf(p)
		}
	}

	walkRegion(fn.Body, a)
	return a
}

func walkRegion(r *ir.Region, a *AliasClasses) {
	for _, inst := range r.Instrs {
		switch inst.Kind.(type) {
		case ir.Alloca:
			a.ClassOf(inst.Results[0])
		case ir.Subview, ir.Expand, ir.Fuse:
			base := inst.Operands[0]
			c := a.ClassOf(base)
			a.class[inst.Results[0]] = c
		}
		for _, sub := range inst.Regions {
			walkRegion(sub, a)
		}
	}
}
