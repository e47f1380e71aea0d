package spirv

import "github.com/gogpu/tensorspv/ir"

// emitBin emits a two-operand instruction of resTy and returns its
// result id, a small helper shared by the cooperative-matrix per-lane
// lowering paths to avoid repeating the id/emit boilerplate for every
// index computation.
func (b *Backend) emitBin(resTy *ID, op OpCode, x, y *ID) *ID {
	id := NewID()
	b.mod.emit(sectionFunction, newInstBuilder().id(resTy).id(x).id(y).build(op, id))
	return id
}

// emitUndef returns an OpUndef of ty, used as the accumulator seed
// before a cooperative-matrix result vector is filled component by
// component via emitInsert.
func (b *Backend) emitUndef(ty *ID) *ID {
	id := NewID()
	b.mod.emit(sectionFunction, newInstBuilder().id(ty).build(OpUndef, id))
	return id
}

// emitInsert inserts value into composite at the given flat component
// index via OpCompositeInsert, returning the updated composite.
func (b *Backend) emitInsert(resTy *ID, value, composite *ID, index uint32) *ID {
	id := NewID()
	b.mod.emit(sectionFunction, newInstBuilder().id(resTy).id(value).id(composite).word(index).build(OpCompositeInsert, id))
	return id
}

// loadSubgroupLocalID loads this invocation's lane index within its
// subgroup, the SubgroupLocalInvocationId builtin already modeled for
// lowerScalarBuiltin.
func (b *Backend) loadSubgroupLocalID() *ID {
	i32 := b.uniq.Scalar(ir.I32)
	varID, _ := b.uniq.BuiltinVariable("SubgroupLocalInvocationId", BuiltInSubgroupLocalInvocationId, i32)
	id := NewID()
	b.mod.emit(sectionFunction, newInstBuilder().id(i32).id(varID).build(OpLoad, id))
	return id
}

// condValue emits a structured selection producing a value of ty: cond
// selects between thenFn and elseFn, each invoked to build its arm
// before the merge block closes with an OpPhi. Mirrors lowerIf's
// shape for the boolean-result case every cooperative-matrix masked
// load/store needs.
func (b *Backend) condValue(ty *ID, cond *ID, thenFn, elseFn func() *ID) *ID {
	thenLabel, elseLabel, mergeLabel := NewID(), NewID(), NewID()

	b.mod.emit(sectionFunction, newInstBuilder().id(mergeLabel).word(0).build(OpSelectionMerge, nil))
	b.mod.emit(sectionFunction, newInstBuilder().id(cond).id(thenLabel).id(elseLabel).build(OpBranchConditional, nil))

	b.mod.emit(sectionFunction, newInstBuilder().build(OpLabel, thenLabel))
	thenVal := thenFn()
	thenExit := b.currentBlockLabel()
	b.mod.emit(sectionFunction, newInstBuilder().id(mergeLabel).build(OpBranch, nil))

	b.mod.emit(sectionFunction, newInstBuilder().build(OpLabel, elseLabel))
	elseVal := elseFn()
	elseExit := b.currentBlockLabel()
	b.mod.emit(sectionFunction, newInstBuilder().id(mergeLabel).build(OpBranch, nil))

	b.mod.emit(sectionFunction, newInstBuilder().build(OpLabel, mergeLabel))
	phi := NewID()
	b.mod.emit(sectionFunction, newInstBuilder().id(ty).id(thenVal).id(thenExit).id(elseVal).id(elseExit).build(OpPhi, phi))
	return phi
}

// condExec emits a structured selection around a side-effecting thenFn
// with no else arm and no produced value, used by masked cooperative-
// matrix stores that must simply skip writing out-of-bounds components.
func (b *Backend) condExec(cond *ID, thenFn func()) {
	thenLabel, mergeLabel := NewID(), NewID()

	b.mod.emit(sectionFunction, newInstBuilder().id(mergeLabel).word(0).build(OpSelectionMerge, nil))
	b.mod.emit(sectionFunction, newInstBuilder().id(cond).id(thenLabel).id(mergeLabel).build(OpBranchConditional, nil))

	b.mod.emit(sectionFunction, newInstBuilder().build(OpLabel, thenLabel))
	thenFn()
	b.mod.emit(sectionFunction, newInstBuilder().id(mergeLabel).build(OpBranch, nil))

	b.mod.emit(sectionFunction, newInstBuilder().build(OpLabel, mergeLabel))
}

// coopLaneSplit decomposes the calling lane's subgroup-local index into
// its row-within-block and column-lane-group coordinates for a tile of
// the given layout, the two quantities every per-lane cooperative-
// matrix address computation is built from (§4.7 "layout law").
func (b *Backend) coopLaneSplit(layout CoopLayout) (rowInBlock, laneColGroup *ID) {
	idxTy := b.uniq.Scalar(ir.I32)
	lane := b.loadSubgroupLocalID()
	rowsConst := b.uniq.IntConstant(idxTy, 32, layout.Rows)
	rowInBlock = b.emitBin(idxTy, OpUMod, lane, rowsConst)
	laneColGroup = b.emitBin(idxTy, OpUDiv, lane, rowsConst)
	return rowInBlock, laneColGroup
}
