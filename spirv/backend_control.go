package spirv

import "github.com/gogpu/tensorspv/ir"

// lowerIf emits structured selection (§4.6): OpSelectionMerge + a
// conditional branch to the then/else blocks, each ending in OpBranch
// to a shared merge block, with one OpPhi per yielded result collecting
// the values each arm's Yield produced.
func (b *Backend) lowerIf(inst *ir.Instruction, k ir.If) error {
	condID := b.result(inst.Operands[0])

	thenLabel, mergeLabel := NewID(), NewID()
	elseLabel := mergeLabel
	if k.HasElse {
		elseLabel = NewID()
	}

	b.mod.emit(sectionFunction, newInstBuilder().id(mergeLabel).word(0).build(OpSelectionMerge, nil))
	b.mod.emit(sectionFunction, newInstBuilder().id(condID).id(thenLabel).id(elseLabel).build(OpBranchConditional, nil))

	b.mod.emit(sectionFunction, newInstBuilder().build(OpLabel, thenLabel))
	b.yields = append(b.yields, nil)
	if err := b.lowerRegion(inst.Regions[0]); err != nil {
		return err
	}
	thenYield := b.popYield()
	thenExit := thenLabel
	b.mod.emit(sectionFunction, newInstBuilder().id(mergeLabel).build(OpBranch, nil))

	var elseYield []*ID
	elseExit := thenLabel
	if k.HasElse {
		b.mod.emit(sectionFunction, newInstBuilder().build(OpLabel, elseLabel))
		b.yields = append(b.yields, nil)
		if err := b.lowerRegion(inst.Regions[1]); err != nil {
			return err
		}
		elseYield = b.popYield()
		elseExit = elseLabel
		b.mod.emit(sectionFunction, newInstBuilder().id(mergeLabel).build(OpBranch, nil))
	}

	b.mod.emit(sectionFunction, newInstBuilder().build(OpLabel, mergeLabel))
	for i, res := range inst.Results {
		resTy := b.spirvType(res.Type)
		phiID := NewID()
		bld := newInstBuilder().id(resTy).id(thenYield[i]).id(thenExit)
		if k.HasElse {
			bld.id(elseYield[i]).id(elseExit)
		}
		b.mod.emit(sectionFunction, bld.build(OpPhi, phiID))
		b.values[res] = phiID
	}
	return nil
}

// lowerFor emits a structured counted loop (§4.6): a header block
// establishing OpLoopMerge and OpPhi nodes for the induction variable
// and iter-args, a body block, a continue (increment) block, and a
// merge block collecting the final iter-arg values.
func (b *Backend) lowerFor(inst *ir.Instruction, k ir.For) error {
	from, to := inst.Operands[0], inst.Operands[1]
	argStart := 2
	var stepOperand *ir.Value
	if k.HasStep {
		stepOperand = inst.Operands[2]
		argStart = 3
	}
	initArgs := inst.Operands[argStart:]
	body := inst.Regions[0]

	idxTy := b.spirvType(from.Type)
	preheader := b.currentBlockLabel()

	headerLabel, bodyLabel, continueLabel, mergeLabel := NewID(), NewID(), NewID(), NewID()
	b.mod.emit(sectionFunction, newInstBuilder().id(headerLabel).build(OpBranch, nil))
	b.mod.emit(sectionFunction, newInstBuilder().build(OpLabel, headerLabel))

	ivPhi := NewID()
	iterPhis := make([]*ID, len(initArgs))
	for i := range iterPhis {
		iterPhis[i] = NewID()
	}

	b.mod.emit(sectionFunction, newInstBuilder().id(mergeLabel).id(continueLabel).word(0).build(OpLoopMerge, nil))
	b.mod.emit(sectionFunction, newInstBuilder().id(bodyLabel).build(OpBranch, nil))

	b.mod.emit(sectionFunction, newInstBuilder().build(OpLabel, bodyLabel))
	b.values[body.Params[0]] = ivPhi
	for i, p := range body.Params[1:] {
		b.values[p] = iterPhis[i]
	}
	b.yields = append(b.yields, nil)
	if err := b.lowerRegion(body); err != nil {
		return err
	}
	bodyYield := b.popYield()
	bodyExit := b.currentBlockLabel()
	b.mod.emit(sectionFunction, newInstBuilder().id(continueLabel).build(OpBranch, nil))

	b.mod.emit(sectionFunction, newInstBuilder().build(OpLabel, continueLabel))
	var stepID *ID
	if k.HasStep {
		stepID = b.result(stepOperand)
	} else {
		stepID = b.uniq.IntConstant(idxTy, 32, 1)
	}
	nextIV := NewID()
	b.mod.emit(sectionFunction, newInstBuilder().id(idxTy).id(ivPhi).id(stepID).build(OpIAdd, nextIV))
	b.mod.emit(sectionFunction, newInstBuilder().id(headerLabel).build(OpBranch, nil))

	b.mod.emit(sectionFunction, newInstBuilder().build(OpLabel, mergeLabel))
	for i, res := range inst.Results {
		resTy := b.spirvType(res.Type)
		id := NewID()
		b.mod.emit(sectionFunction, newInstBuilder().id(resTy).id(bodyYield[i]).id(bodyExit).build(OpPhi, id))
		b.values[res] = id
	}

	// Back-patch the header's induction-variable and iter-arg phis now
	// that both incoming edges (preheader, continue) are known.
	headerPhiInst := newInstBuilder().id(idxTy).id(b.result(from)).id(preheader).id(nextIV).id(continueLabel)
	b.insertAt(sectionFunction, bodyLabelIndex(b, headerLabel), headerPhiInst.build(OpPhi, ivPhi))
	for i, init := range initArgs {
		iterTy := b.spirvType(init.Type)
		phi := newInstBuilder().id(iterTy).id(b.result(init)).id(preheader).id(bodyYield[i]).id(continueLabel)
		b.insertAt(sectionFunction, bodyLabelIndex(b, headerLabel), phi.build(OpPhi, iterPhis[i]))
	}

	// The loop condition (iv < to) is evaluated at the top of the body
	// and used to branch to the merge block; emitted last because it
	// references nextIV/continueLabel only indirectly via headerLabel.
	condTy := b.uniq.Bool()
	cond := NewID()
	b.insertAt(sectionFunction, bodyLabelIndex(b, bodyLabel), newInstBuilder().
		id(condTy).id(ivPhi).id(b.result(to)).build(OpSLessThan, cond))
	b.insertAt(sectionFunction, bodyLabelIndex(b, bodyLabel)+1, newInstBuilder().
		id(cond).id(bodyLabel).id(mergeLabel).build(OpBranchConditional, nil))

	return nil
}

// lowerParallel inlines the SPMD body directly into the enclosing
// block: every lane already executes it identically (§3 invariant 5),
// so no branch is needed, only the barrier surrounding it if the
// caller's barrier-insertion pass placed one.
func (b *Backend) lowerParallel(inst *ir.Instruction) error {
	return b.lowerRegion(inst.Regions[0])
}

func (b *Backend) lowerYield(inst *ir.Instruction) error {
	vals := make([]*ID, len(inst.Operands))
	for i, op := range inst.Operands {
		vals[i] = b.result(op)
	}
	b.yields[len(b.yields)-1] = inst.Operands
	b.yieldIDs = vals
	return nil
}

func (b *Backend) popYield() []*ID {
	ids := b.yieldIDs
	b.yields = b.yields[:len(b.yields)-1]
	b.yieldIDs = nil
	return ids
}

func (b *Backend) currentBlockLabel() *ID {
	insts := b.mod.sections[sectionFunction]
	for i := len(insts) - 1; i >= 0; i-- {
		if insts[i].Opcode == OpLabel {
			return insts[i].Result
		}
	}
	return nil
}

func bodyLabelIndex(b *Backend, label *ID) int {
	insts := b.mod.sections[sectionFunction]
	for i, inst := range insts {
		if inst.Opcode == OpLabel && inst.Result == label {
			return i + 1
		}
	}
	return len(insts)
}

func (b *Backend) insertAt(sec section, idx int, inst *Instruction) {
	s := b.mod.sections[sec]
	s = append(s, nil)
	copy(s[idx+1:], s[idx:])
	s[idx] = inst
	b.mod.sections[sec] = s
}

func (b *Backend) lowerBuiltinQuery(inst *ir.Instruction, name string, builtin BuiltIn, dim int) error {
	uvec3 := b.uniq.Vector(b.uniq.Scalar(ir.I32), 3)
	varID, _ := b.uniq.BuiltinVariable(name, builtin, uvec3)
	loaded := NewID()
	b.mod.emit(sectionFunction, newInstBuilder().id(uvec3).id(varID).build(OpLoad, loaded))
	resTy := b.spirvType(inst.Results[0].Type)
	id := NewID()
	b.mod.emit(sectionFunction, newInstBuilder().id(resTy).id(loaded).word(uint32(dim)).build(OpCompositeExtract, id))
	b.define(inst, id)
	return nil
}

func (b *Backend) lowerScalarBuiltin(inst *ir.Instruction, name string, builtin BuiltIn) error {
	resTy := b.spirvType(inst.Results[0].Type)
	varID, _ := b.uniq.BuiltinVariable(name, builtin, resTy)
	id := NewID()
	b.mod.emit(sectionFunction, newInstBuilder().id(resTy).id(varID).build(OpLoad, id))
	b.define(inst, id)
	return nil
}

func (b *Backend) lowerWorkGroupReduce(inst *ir.Instruction, k ir.WorkGroup) error {
	b.feat.usedGroups = true
	resTy := b.spirvType(inst.Results[0].Type)
	kind := scalarKindOf(inst.Operands[0].Type)
	op := groupReduceOp(k.Op, kind)
	id := NewID()
	b.mod.emit(sectionFunction, newInstBuilder().id(resTy).
		word(uint32(ScopeWorkgroup)).word(uint32(GroupOperationReduce)).
		id(b.result(inst.Operands[0])).build(op, id))
	b.define(inst, id)
	return nil
}

func groupReduceOp(op ir.ReduceOp, kind ir.ScalarKind) OpCode {
	switch {
	case kind.IsFloat() && op == ir.ReduceAdd:
		return OpGroupFAdd
	case kind.IsFloat() && op == ir.ReduceMin:
		return OpGroupFMin
	case kind.IsFloat():
		return OpGroupFMax
	case op == ir.ReduceAdd:
		return OpGroupIAdd
	case op == ir.ReduceMin:
		return OpGroupSMin
	default:
		return OpGroupSMax
	}
}

func (b *Backend) lowerBarrier(inst *ir.Instruction, k ir.Barrier) error {
	sem := uint32(MemorySemanticsAcquireRelease)
	if k.Fences&ir.FenceGlobal != 0 {
		sem |= uint32(MemorySemanticsCrossWorkgroupMemory)
	}
	if k.Fences&ir.FenceLocal != 0 {
		sem |= uint32(MemorySemanticsWorkgroupMemory)
	}
	b.mod.emit(sectionFunction, newInstBuilder().
		word(uint32(ScopeWorkgroup)).word(uint32(ScopeWorkgroup)).word(sem).
		build(OpControlBarrier, nil))
	return nil
}
