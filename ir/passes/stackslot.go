package passes

import "github.com/gogpu/tensorspv/ir"

// StackSlots maps each alloca-produced value to its assigned byte
// offset within the function's private scratch stack.
type StackSlots struct {
	Offset map[*ir.Value]int64
}

type liveInterval struct {
	value      *ir.Value
	size       int64
	start, end int
}

// StackSlotAssignment performs a linear scan over the lifetime
// intervals LifetimeStopInsertion recorded (an alloca's interval runs
// from its own program-order position to its paired lifetime_stop, or
// ends at its own position if no lifetime_stop was inserted because
// the value is never read) and assigns each alloca a byte offset,
// reusing the offset of any allocation whose interval has already
// ended (§4.3 step 5). The resulting high-water mark is written to
// fn.Metadata.StackSize.
//
// Must run after LifetimeStopInsertion. Re-running on output already
// carrying valid offsets reproduces the same offsets, since intervals
// are recomputed from lifetime_stop placement rather than from any
// prior assignment.
func StackSlotAssignment(fn *ir.Function, elemSize func(t ir.Type) int64) *StackSlots {
	order := 0
	intervals := map[*ir.Value]*liveInterval{}
	var ordered []*liveInterval

	var walk func(r *ir.Region)
	walk = func(r *ir.Region) {
		for _, inst := range r.Instrs {
			order++
			switch k := inst.Kind.(type) {
			case ir.Alloca:
				v := inst.Results[0]
				mem := v.Type.Inner.(ir.MemrefType)
				iv := &liveInterval{value: v, size: memrefByteSize(mem, elemSize), start: order, end: order}
				intervals[v] = iv
				ordered = append(ordered, iv)
			case ir.LifetimeStop:
				_ = k
				if iv, ok := intervals[inst.Operands[0]]; ok {
					iv.end = order
				}
			}
			for _, sub := range inst.Regions {
				walk(sub)
			}
		}
	}
	walk(fn.Body)

	slots := &StackSlots{Offset: make(map[*ir.Value]int64, len(ordered))}
	var free []struct {
		offset, size int64
		end          int
	}
	var highWater int64

	for _, iv := range ordered {
		// Release any free block whose owner's interval ended before
		// this allocation starts.
		var stillFree []struct {
			offset, size int64
			end          int
		}
		assigned := false
		for _, f := range free {
			if !assigned && f.end <= iv.start && f.size >= iv.size {
				slots.Offset[iv.value] = f.offset
				assigned = true
				continue
			}
			stillFree = append(stillFree, f)
		}
		free = stillFree
		if !assigned {
			slots.Offset[iv.value] = highWater
			highWater += iv.size
		}
		free = append(free, struct {
			offset, size int64
			end          int
		}{offset: slots.Offset[iv.value], size: iv.size, end: iv.end})
	}

	fn.Metadata.StackSize = highWater
	return slots
}

func memrefByteSize(m ir.MemrefType, elemSize func(t ir.Type) int64) int64 {
	sz := elemSize(m.Element)
	if m.HasDynamicShape() {
		return sz // dynamic-shape allocas are sized at launch; the static stack reserves one element's worth as a placeholder
	}
	total := int64(1)
	for _, s := range m.Shape {
		total *= s
	}
	return total * sz
}
