// Package passes implements the fixed IR transformation pipeline that
// runs after verification: dead-code elimination, alias analysis,
// lifetime-stop insertion, stack-slot assignment, work-group-size
// selection, and barrier insertion. Each pass operates in place on an
// *ir.Program and is idempotent when reapplied to its own output.
package passes

import "github.com/gogpu/tensorspv/ir"

// DeadCodeElimination removes instructions with no side effects whose
// results are all unused, plus `if`s with a constant-false condition
// and `for`s whose constant bounds satisfy from >= to. It runs
// bottom-up within each region and recurses into surviving
// instructions' child regions, grounded on the original compiler's
// dead_code_elimination_pass::run_on_region (which walks a region
// back-to-front so an instruction that becomes dead only after a later
// one in the same region was erased is still caught in a single pass).
func DeadCodeElimination(p *ir.Program) {
	for _, fn := range p.Functions {
		runOnRegion(fn.Body)
	}
}

func runOnRegion(r *ir.Region) {
	for i := len(r.Instrs) - 1; i >= 0; i-- {
		inst := r.Instrs[i]
		if isDead(inst) {
			inst.Erase()
			continue
		}
		for _, sub := range inst.Regions {
			runOnRegion(sub)
		}
	}
}

// isDead reports whether inst has no side effects (no child regions,
// at least one result) and every result is unused, or is a degenerate
// `if`/`for` whose condition/bounds make it unconditionally skippable.
func isDead(inst *ir.Instruction) bool {
	switch k := inst.Kind.(type) {
	case ir.If:
		return ifConditionIsConstantFalse(inst)
	case ir.For:
		_ = k
		return forBoundsAreEmpty(inst)
	}

	hasSideEffects := len(inst.Regions) > 0 || len(inst.Results) == 0
	if hasSideEffects {
		return false
	}
	for _, res := range inst.Results {
		if res.HasUses() {
			return false
		}
	}
	return true
}

func ifConditionIsConstantFalse(inst *ir.Instruction) bool {
	cond := inst.Operands[0]
	c, ok := constantOf(cond)
	if !ok {
		return false
	}
	b, ok := c.(ir.BoolConst)
	return ok && !bool(b)
}

func forBoundsAreEmpty(inst *ir.Instruction) bool {
	from, fromOK := constantOf(inst.Operands[0])
	to, toOK := constantOf(inst.Operands[1])
	if !fromOK || !toOK {
		return false
	}
	fi, ok1 := from.(ir.IntConst)
	ti, ok2 := to.(ir.IntConst)
	return ok1 && ok2 && int64(fi) >= int64(ti)
}

func constantOf(v *ir.Value) (ir.ConstantValue, bool) {
	if v == nil || v.DefInstr == nil {
		return nil, false
	}
	c, ok := v.DefInstr.Kind.(ir.Constant)
	if !ok {
		return nil, false
	}
	return c.Value, true
}
