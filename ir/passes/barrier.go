package passes

import "github.com/gogpu/tensorspv/ir"

// BarrierInsertion walks each region in program order tracking the set
// of memref alias classes written since the last barrier, and inserts
// an ir.Barrier before any read that may alias a pending write, with a
// fence set derived from the written memref's address space — Global
// for ir.Global, Local for ir.Local, no barrier at all for ir.Private
// since distinct private allocations are never shared across lanes
// (§4.3 step 7).
//
// Must run after AliasAnalysis. Idempotent: once a barrier has been
// inserted before a conflicting read, the pending-write set it resets
// no longer contains that class, so a second pass over the same IR
// inserts nothing further.
func BarrierInsertion(fn *ir.Function, classes *AliasClasses) {
	walkAndInsertBarriers(fn.Body, classes)
}

func walkAndInsertBarriers(r *ir.Region, classes *AliasClasses) {
	pendingWrites := map[int]ir.AddressSpace{}

	// Collect actions during a first forward scan, then apply them in
	// a second pass: mutating r.Instrs while iterating it would skip
	// or double-visit elements.
	type action struct {
		before *ir.Instruction
		fences ir.Fence
	}
	var actions []action

	for _, inst := range r.Instrs {
		if _, ok := inst.Kind.(ir.Barrier); ok {
			// A real barrier already orders every pending write; an
			// inserted instruction must not be reordered across it, so
			// clearing here keeps a second pass over already-fixed IR
			// from inserting a duplicate.
			pendingWrites = map[int]ir.AddressSpace{}
		} else if base, space, isWrite := writeTarget(inst); isWrite {
			if space != ir.Private {
				pendingWrites[classes.ClassOf(base)] = space
			}
		} else if base, isRead := readTarget(inst); isRead {
			space := ir.Private
			if mem, ok := base.Type.Inner.(ir.MemrefType); ok {
				space = mem.Space
			}
			if space != ir.Private {
				if pendingSpace, conflicts := pendingWrites[classes.ClassOf(base)]; conflicts {
					actions = append(actions, action{before: inst, fences: fenceFor(pendingSpace)})
					delete(pendingWrites, classes.ClassOf(base))
				}
			}
		}
		for _, sub := range inst.Regions {
			walkAndInsertBarriers(sub, classes)
		}
	}

	for _, a := range actions {
		barrier := ir.NewInstruction(ir.Barrier{Fences: a.fences}, nil)
		barrier.Loc = a.before.Loc
		insertBefore(r, a.before, barrier)
	}
}

func fenceFor(space ir.AddressSpace) ir.Fence {
	if space == ir.Local {
		return ir.FenceLocal
	}
	return ir.FenceGlobal
}

func writeTarget(inst *ir.Instruction) (*ir.Value, ir.AddressSpace, bool) {
	switch inst.Kind.(type) {
	case ir.Store, ir.CoopStore:
		base := inst.Operands[0]
		mem, ok := base.Type.Inner.(ir.MemrefType)
		if !ok {
			return nil, 0, false
		}
		return base, mem.Space, true
	}
	return nil, 0, false
}

func readTarget(inst *ir.Instruction) (*ir.Value, bool) {
	switch inst.Kind.(type) {
	case ir.Load, ir.CoopLoad:
		return inst.Operands[0], true
	}
	return nil, false
}

func insertBefore(r *ir.Region, before, inst *ir.Instruction) {
	for i, cur := range r.Instrs {
		if cur == before {
			r.Instrs = append(r.Instrs, nil)
			copy(r.Instrs[i+1:], r.Instrs[i:])
			r.Instrs[i] = inst
			inst.Parent = r
			return
		}
	}
}
