package spirv

import "github.com/gogpu/tensorspv/ir"

// lowerCoopMulAddArray implements coop_mul_add for the generic and
// subgroup-block-I/O policies, where neither operand's tile lives in a
// form DPAS can consume directly. Since A and B are themselves
// distributed across the subgroup by the same layout law as the
// result, computing one output component needs A and B elements most of
// which live on OTHER lanes; each is fetched via
// OpGroupNonUniformShuffle, the one group operation whose source lane
// is allowed to differ per invocation (§4.7 "array mul_add").
func (b *Backend) lowerCoopMulAddArray(inst *ir.Instruction, aT, bT, cT, rT ir.CoopMatrixType) error {
	b.feat.usedGroupNonUniformShuffle = true

	a, bOperand, c := inst.Operands[0], inst.Operands[1], inst.Operands[2]
	aLayout := b.coopLayoutOf(aT)
	bLayout := b.coopLayoutOf(bT)
	rLayout := b.coopLayoutOf(rT)
	sgs := b.currentSubgroupSizeOrDefault()

	accKind := rT.Component.Kind
	accTy := b.scalarType(accKind)
	aTy := b.scalarType(aT.Component.Kind)
	bTy := b.scalarType(bT.Component.Kind)
	aVecTy := b.spirvType(a.Type)
	bVecTy := b.spirvType(bOperand.Type)
	vecTy := b.spirvType(inst.Results[0].Type)
	idxTy := b.uniq.Scalar(ir.I32)

	aID, bID, cID := b.result(a), b.result(bOperand), b.result(c)
	rowInBlock, rLaneColGroup := b.coopLaneSplit(rLayout)

	aColsPerLane := aLayout.colsPerLane(sgs)
	aColInc := aLayout.colIncFactor(sgs)
	bColsPerLane := bLayout.colsPerLane(sgs)
	bColInc := bLayout.colIncFactor(sgs)
	bRows := bLayout.Rows
	rColsPerLane := rLayout.colsPerLane(sgs)
	rColInc := rLayout.colIncFactor(sgs)

	K := aT.Cols
	mulOp := arithOpFor(accKind, OpFMul, OpIMul)
	addOp := arithOpFor(accKind, OpFAdd, OpIAdd)

	result := b.emitUndef(vecTy)
	for m := int64(0); m < rLayout.Length; m++ {
		blockNo := m / rColsPerLane
		colInLane := m % rColsPerLane

		acc := b.extractComponent(cID, accTy, uint32(m))
		col := b.emitBin(idxTy, OpIAdd, rLaneColGroup, b.uniq.IntConstant(idxTy, 32, colInLane*rColInc))

		for k := int64(0); k < K; k++ {
			// A[row, k]: row is this lane's own row (shared with the
			// result for this blockNo); the lane holding column k is
			// (k % aColInc) lanes over within the same row-block, so
			// only the owner's subgroup id is runtime, the local flat
			// index is a compile-time constant.
			ownerLaneA := b.emitBin(idxTy, OpIAdd, rowInBlock, b.uniq.IntConstant(idxTy, 32, (k%aColInc)*aLayout.Rows))
			shuffledA := b.shuffle(aVecTy, aID, ownerLaneA)
			localIndexA := blockNo*aColsPerLane + k/aColInc
			aVal := b.extractComponent(shuffledA, aTy, uint32(localIndexA))

			// B[k, col]: col is this lane's own (runtime) output
			// column, so both the owner lane and the local index within
			// the owner's array are runtime values.
			laneColGroupB := b.emitBin(idxTy, OpUMod, col, b.uniq.IntConstant(idxTy, 32, bColInc))
			colInLaneB := b.emitBin(idxTy, OpUDiv, col, b.uniq.IntConstant(idxTy, 32, bColInc))
			ownerLaneB := b.emitBin(idxTy, OpIAdd,
				b.emitBin(idxTy, OpIMul, laneColGroupB, b.uniq.IntConstant(idxTy, 32, bRows)),
				b.uniq.IntConstant(idxTy, 32, k%bRows))
			localIndexB := b.emitBin(idxTy, OpIAdd,
				b.uniq.IntConstant(idxTy, 32, (k/bRows)*bColsPerLane),
				colInLaneB)
			shuffledB := b.shuffle(bVecTy, bID, ownerLaneB)
			bVal := NewID()
			b.mod.emit(sectionFunction, newInstBuilder().id(bTy).id(shuffledB).id(localIndexB).build(OpVectorExtractDynamic, bVal))

			aUp := b.castScalar(aT.Component.Kind, accKind, aVal, accTy)
			bUp := b.castScalar(bT.Component.Kind, accKind, bVal, accTy)
			prod := b.emitBin(accTy, mulOp, aUp, bUp)
			acc = b.emitBin(accTy, addOp, acc, prod)
		}
		result = b.emitInsert(vecTy, acc, result, uint32(m))
	}
	b.define(inst, result)
	return nil
}

// shuffle returns value as seen from the invocation identified by
// lane, via OpGroupNonUniformShuffle at subgroup scope.
func (b *Backend) shuffle(ty *ID, value, lane *ID) *ID {
	id := NewID()
	b.mod.emit(sectionFunction, newInstBuilder().
		id(ty).word(uint32(ScopeSubgroup)).id(value).id(lane).
		build(OpGroupNonUniformShuffle, id))
	return id
}
