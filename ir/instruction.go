package ir

// Instruction is one IR operation: a Kind tag, its operand Values, its
// result Values, and any nested Regions (for, if, parallel). An
// Instruction is owned by exactly one Region (Parent); operand Values
// are borrowed references owned elsewhere (a Function parameter, an
// earlier Instruction's result, or a Region's iter-arg).
type Instruction struct {
	Kind     Kind
	Operands []*Value
	Results  []*Value
	Regions  []*Region
	Loc      Location

	Parent *Region
}

// NewInstruction allocates an instruction of the given kind with the
// given operands, wiring up the operands' use-lists. Results and
// Regions are populated by the caller (typically Builder) after
// construction, since their shape depends on Kind.
func NewInstruction(kind Kind, operands []*Value) *Instruction {
	inst := &Instruction{Kind: kind, Operands: operands}
	for i, op := range operands {
		op.addUse(&Use{User: inst, Index: i})
	}
	return inst
}

// AddResult appends a new result value of type t to inst, returning it.
func (inst *Instruction) AddResult(t Type, name string) *Value {
	v := NewValue(t, name)
	v.DefInstr = inst
	v.ResultIdx = len(inst.Results)
	inst.Results = append(inst.Results, v)
	return v
}

// AddRegion appends a new, empty child region to inst and returns it.
func (inst *Instruction) AddRegion() *Region {
	r := &Region{Parent: inst}
	inst.Regions = append(inst.Regions, r)
	return r
}

// SetOperand replaces the operand at index i, updating both values'
// use-lists. Used by ReplaceAllUsesWith to rewrite operands in place
// rather than rebuilding the instruction.
func (inst *Instruction) SetOperand(i int, v *Value) {
	old := inst.Operands[i]
	if old != nil {
		old.removeUse(inst, i)
	}
	inst.Operands[i] = v
	if v != nil {
		v.addUse(&Use{User: inst, Index: i})
	}
}

// ReplaceAllUsesWith rewrites every recorded use of old across the
// whole program-reachable graph to point at repl instead, leaving old
// with no uses (the standard precondition for then deleting old's
// defining instruction). Callers pass the defining instruction's
// result they are retiring.
func ReplaceAllUsesWith(old, repl *Value) {
	for _, u := range append([]*Use(nil), old.uses...) {
		u.User.SetOperand(u.Index, repl)
	}
}

// Erase detaches inst from its parent region and clears its operands'
// use-lists. It does not check that inst's results are unused; callers
// (DCE) must verify that first.
func (inst *Instruction) Erase() {
	if inst.Parent != nil {
		instrs := inst.Parent.Instrs
		for i, other := range instrs {
			if other == inst {
				inst.Parent.Instrs = append(instrs[:i], instrs[i+1:]...)
				break
			}
		}
		inst.Parent = nil
	}
	for i, op := range inst.Operands {
		if op != nil {
			op.removeUse(inst, i)
		}
	}
}
