package spirv

import "github.com/gogpu/tensorspv/ir"

// lowerCoopLoadGeneric is the portable cooperative-matrix load policy,
// the fallback every SPIR-V 1.3+ consumer accepts without any target
// extension: each lane walks its own share of the tile component by
// component via a plain OpAccessChain/OpLoad, masked against the
// memref's real extents whenever the layout pads rows or columns beyond
// the declared shape (§4.7 "generic policy").
func (b *Backend) lowerCoopLoadGeneric(inst *ir.Instruction, t ir.CoopMatrixType, base *ir.Value, memref ir.MemrefType, indices []*ir.Value, k ir.CoopLoad) error {
	layout := b.coopLayoutOf(t)
	sgs := b.currentSubgroupSizeOrDefault()
	vecTy := b.spirvType(inst.Results[0].Type)
	compTy := b.scalarType(t.Component.Kind)
	idxTy := b.uniq.Scalar(ir.I32)
	boolTy := b.uniq.Bool()

	shape0, shape1, stride0, stride1 := b.coopMemrefGeometry(base, memref, k.Transpose)
	pos0V, pos1V := coopPositions(indices, k.Transpose)
	pos0, pos1 := b.result(pos0V), b.result(pos1V)

	baseID := b.result(base)
	elemTy := b.spirvType(memref.Element)
	ptrTy := b.uniq.Pointer(storageClassFor(memref.Space), elemTy)

	rowInBlock, laneColGroup := b.coopLaneSplit(layout)
	colsPerLane := layout.colsPerLane(sgs)
	colIncFactor := layout.colIncFactor(sgs)
	needsMask := k.Checked || layout.Cols != layout.Shape1

	zero := b.zeroOfKind(compTy, t.Component.Kind)
	result := b.emitUndef(vecTy)

	for m := int64(0); m < layout.Length; m++ {
		blockNo := m / colsPerLane
		colInLane := m % colsPerLane

		row := b.emitBin(idxTy, OpIAdd, rowInBlock, b.uniq.IntConstant(idxTy, 32, blockNo*layout.Rows))
		col := b.emitBin(idxTy, OpIAdd, laneColGroup, b.uniq.IntConstant(idxTy, 32, colInLane*colIncFactor))
		idx0 := b.emitBin(idxTy, OpIAdd, pos0, row)
		idx1 := b.emitBin(idxTy, OpIAdd, pos1, col)

		load := func() *ID {
			off0 := b.emitBin(idxTy, OpIMul, idx0, stride0)
			off1 := b.emitBin(idxTy, OpIMul, idx1, stride1)
			off := b.emitBin(idxTy, OpIAdd, off0, off1)
			ptr := NewID()
			b.mod.emit(sectionFunction, newInstBuilder().id(ptrTy).id(baseID).id(off).build(OpAccessChain, ptr))
			val := NewID()
			b.mod.emit(sectionFunction, newInstBuilder().id(compTy).id(ptr).build(OpLoad, val))
			return val
		}

		var val *ID
		if needsMask {
			rowOK := b.emitBin(boolTy, OpULessThan, idx0, shape0)
			colOK := b.emitBin(boolTy, OpULessThan, idx1, shape1)
			cond := b.emitBin(boolTy, OpLogicalAnd, rowOK, colOK)
			val = b.condValue(compTy, cond, load, func() *ID { return zero })
		} else {
			val = load()
		}
		result = b.emitInsert(vecTy, val, result, uint32(m))
	}
	b.define(inst, result)
	return nil
}

// lowerCoopStoreGeneric mirrors lowerCoopLoadGeneric for stores: each
// lane writes its share of the tile component by component, skipping
// any component whose computed position falls outside the memref's
// real extents.
func (b *Backend) lowerCoopStoreGeneric(inst *ir.Instruction, t ir.CoopMatrixType, base, value *ir.Value, memref ir.MemrefType, indices []*ir.Value) error {
	layout := b.coopLayoutOf(t)
	sgs := b.currentSubgroupSizeOrDefault()
	compTy := b.scalarType(t.Component.Kind)
	idxTy := b.uniq.Scalar(ir.I32)
	boolTy := b.uniq.Bool()

	shape0, shape1, stride0, stride1 := b.coopMemrefGeometry(base, memref, false)
	pos0V, pos1V := coopPositions(indices, false)
	pos0, pos1 := b.result(pos0V), b.result(pos1V)

	baseID := b.result(base)
	elemTy := b.spirvType(memref.Element)
	ptrTy := b.uniq.Pointer(storageClassFor(memref.Space), elemTy)
	valID := b.result(value)

	rowInBlock, laneColGroup := b.coopLaneSplit(layout)
	colsPerLane := layout.colsPerLane(sgs)
	colIncFactor := layout.colIncFactor(sgs)
	needsMask := layout.Cols != layout.Shape1

	for m := int64(0); m < layout.Length; m++ {
		blockNo := m / colsPerLane
		colInLane := m % colsPerLane

		row := b.emitBin(idxTy, OpIAdd, rowInBlock, b.uniq.IntConstant(idxTy, 32, blockNo*layout.Rows))
		col := b.emitBin(idxTy, OpIAdd, laneColGroup, b.uniq.IntConstant(idxTy, 32, colInLane*colIncFactor))
		idx0 := b.emitBin(idxTy, OpIAdd, pos0, row)
		idx1 := b.emitBin(idxTy, OpIAdd, pos1, col)

		component := b.extractComponent(valID, compTy, uint32(m))

		store := func() {
			off0 := b.emitBin(idxTy, OpIMul, idx0, stride0)
			off1 := b.emitBin(idxTy, OpIMul, idx1, stride1)
			off := b.emitBin(idxTy, OpIAdd, off0, off1)
			ptr := NewID()
			b.mod.emit(sectionFunction, newInstBuilder().id(ptrTy).id(baseID).id(off).build(OpAccessChain, ptr))
			b.mod.emit(sectionFunction, newInstBuilder().id(ptr).id(component).build(OpStore, nil))
		}

		if needsMask {
			rowOK := b.emitBin(boolTy, OpULessThan, idx0, shape0)
			colOK := b.emitBin(boolTy, OpULessThan, idx1, shape1)
			cond := b.emitBin(boolTy, OpLogicalAnd, rowOK, colOK)
			b.condExec(cond, store)
		} else {
			store()
		}
	}
	return nil
}

// zeroOfKind returns the zero constant of kind represented as ty, the
// fill value for masked-out cooperative-matrix load components.
func (b *Backend) zeroOfKind(ty *ID, kind ir.ScalarKind) *ID {
	if kind.IsFloat() {
		return b.uniq.FloatConstant(ty, kind.ComponentWidth()*8, 0)
	}
	return b.uniq.IntConstant(ty, kind.ComponentWidth()*8, 0)
}
