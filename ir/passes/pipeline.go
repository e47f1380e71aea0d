package passes

import "github.com/gogpu/tensorspv/ir"

// Run executes the fixed post-verification pass pipeline of §4.3 over
// p, in order: dead-code elimination over the whole program, then for
// each function lifetime-stop insertion, stack-slot assignment,
// work-group-size selection, alias analysis, barrier insertion. Verification itself
// is not part of Run — callers call ir.Verify(p) first and stop on
// error, since the remaining passes assume a well-formed program.
func Run(p *ir.Program, dev DeviceInfo, elemSize func(t ir.Type) int64) map[*ir.Function]*StackSlots {
	DeadCodeElimination(p)

	slots := make(map[*ir.Function]*StackSlots, len(p.Functions))
	for _, fn := range p.Functions {
		LifetimeStopInsertion(fn)
		slots[fn] = StackSlotAssignment(fn, elemSize)
		WorkGroupSizeSelection(fn, dev)
		classes := AliasAnalysis(fn)
		BarrierInsertion(fn, classes)
	}
	return slots
}
