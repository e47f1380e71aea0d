package passes

import "github.com/gogpu/tensorspv/ir"

// LifetimeStopInsertion annotates the last use of each alloca-produced
// memref — counting uses of subview/expand/fuse views derived from it
// as uses of the base allocation — with an explicit ir.LifetimeStop
// instruction, so the stack-slot pass can reuse its storage once that
// point is reached (§4.3 step 4). Grounded on the original compiler's
// lifetime_inserter visitor, which walks a function bottom-up
// collecting the set of allocas still live at each instruction and
// inserts lifetime_stop at the point a value drops out of that set.
//
// Re-running this pass on its own output is a no-op: a region whose
// allocas are already followed by a lifetime_stop has no instruction
// left that is both "last use" and unmarked.
func LifetimeStopInsertion(fn *ir.Function) {
	allocas := collectAllocas(fn.Body)
	if len(allocas) == 0 {
		return
	}

	order := 0
	lastUse := make(map[*ir.Value]*ir.Instruction, len(allocas))
	lastUseOrder := make(map[*ir.Value]int, len(allocas))
	baseOf := make(map[*ir.Value]*ir.Value, len(allocas))
	for _, a := range allocas {
		baseOf[a] = a
	}

	var walk func(r *ir.Region)
	walk = func(r *ir.Region) {
		for _, inst := range r.Instrs {
			order++
			if _, isStop := inst.Kind.(ir.LifetimeStop); !isStop {
				for _, op := range inst.Operands {
					if base, ok := baseOf[op]; ok {
						lastUse[base] = inst
						lastUseOrder[base] = order
					}
				}
			}
			switch inst.Kind.(type) {
			case ir.Subview, ir.Expand, ir.Fuse:
				if base, ok := baseOf[inst.Operands[0]]; ok {
					baseOf[inst.Results[0]] = base
				}
			}
			for _, sub := range inst.Regions {
				walk(sub)
			}
		}
	}
	walk(fn.Body)

	for _, a := range allocas {
		use, ok := lastUse[a]
		if !ok {
			continue
		}
		if alreadyStopped(use, a) {
			continue
		}
		stop := ir.NewInstruction(ir.LifetimeStop{}, []*ir.Value{a})
		stop.Loc = use.Loc
		insertAfter(use, stop)
	}
}

func collectAllocas(r *ir.Region) []*ir.Value {
	var out []*ir.Value
	for _, inst := range r.Instrs {
		if _, ok := inst.Kind.(ir.Alloca); ok {
			out = append(out, inst.Results[0])
		}
		for _, sub := range inst.Regions {
			out = append(out, collectAllocas(sub)...)
		}
	}
	return out
}

// alreadyStopped reports whether use's region already contains a
// lifetime_stop for alloca among the lifetime_stop instructions
// immediately following use, making this pass idempotent on its own
// output.
func alreadyStopped(use *ir.Instruction, alloca *ir.Value) bool {
	r := use.Parent
	if r == nil {
		return false
	}
	for i, inst := range r.Instrs {
		if inst == use {
			for _, next := range r.Instrs[i+1:] {
				if _, ok := next.Kind.(ir.LifetimeStop); !ok {
					return false
				}
				if len(next.Operands) == 1 && next.Operands[0] == alloca {
					return true
				}
			}
			return false
		}
	}
	return false
}

func insertAfter(anchor, inst *ir.Instruction) {
	r := anchor.Parent
	if r == nil {
		return
	}
	for i, cur := range r.Instrs {
		if cur == anchor {
			r.Instrs = append(r.Instrs, nil)
			copy(r.Instrs[i+2:], r.Instrs[i+1:])
			r.Instrs[i+1] = inst
			inst.Parent = r
			return
		}
	}
}
