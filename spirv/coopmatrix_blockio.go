package spirv

import "github.com/gogpu/tensorspv/ir"

// lowerCoopLoadBlockIO implements the subgroup-block-I/O policy
// (§4.7): eligible when the device has no native matrix-extension entry
// but does support a subgroup size covering the tile's full row count,
// so every lane can be assigned exactly one contiguous row and the
// whole row-block loaded with one OpSubgroupBlockReadINTEL per column,
// rather than DPAS's opaque hardware path or the generic policy's
// per-element access chains.
func (b *Backend) lowerCoopLoadBlockIO(inst *ir.Instruction, t ir.CoopMatrixType, base *ir.Value, memref ir.MemrefType, indices []*ir.Value) error {
	b.feat.usedSubgroupBlockIO = true
	layout := b.coopLayoutOf(t)
	sgs := b.currentSubgroupSizeOrDefault()
	vecTy := b.spirvType(inst.Results[0].Type)
	compTy := b.scalarType(t.Component.Kind)
	idxTy := b.uniq.Scalar(ir.I32)

	_, _, stride0, stride1 := b.coopMemrefGeometry(base, memref, false)
	pos0, pos1 := b.result(indices[0]), b.result(indices[1])

	baseID := b.result(base)
	elemTy := b.spirvType(memref.Element)
	ptrTy := b.uniq.Pointer(storageClassFor(memref.Space), elemTy)

	colsPerLane := layout.colsPerLane(sgs)
	result := b.emitUndef(vecTy)

	for blockNo := int64(0); blockNo < layout.Blocks; blockNo++ {
		row0 := b.emitBin(idxTy, OpIAdd, pos0, b.uniq.IntConstant(idxTy, 32, blockNo*layout.Rows))
		rowOff := b.emitBin(idxTy, OpIMul, row0, stride0)
		for c := int64(0); c < colsPerLane; c++ {
			col := b.emitBin(idxTy, OpIAdd, pos1, b.uniq.IntConstant(idxTy, 32, c))
			colOff := b.emitBin(idxTy, OpIMul, col, stride1)
			off := b.emitBin(idxTy, OpIAdd, rowOff, colOff)
			ptr := NewID()
			b.mod.emit(sectionFunction, newInstBuilder().id(ptrTy).id(baseID).id(off).build(OpAccessChain, ptr))
			val := NewID()
			b.mod.emit(sectionFunction, newInstBuilder().id(compTy).id(ptr).build(OpSubgroupBlockReadINTEL, val))
			result = b.emitInsert(vecTy, val, result, uint32(blockNo*colsPerLane+c))
		}
	}
	b.define(inst, result)
	return nil
}

// lowerCoopStoreBlockIO mirrors lowerCoopLoadBlockIO for stores.
func (b *Backend) lowerCoopStoreBlockIO(inst *ir.Instruction, t ir.CoopMatrixType, base, value *ir.Value, memref ir.MemrefType, indices []*ir.Value) error {
	b.feat.usedSubgroupBlockIO = true
	layout := b.coopLayoutOf(t)
	sgs := b.currentSubgroupSizeOrDefault()
	compTy := b.scalarType(t.Component.Kind)
	idxTy := b.uniq.Scalar(ir.I32)

	_, _, stride0, stride1 := b.coopMemrefGeometry(base, memref, false)
	pos0, pos1 := b.result(indices[0]), b.result(indices[1])

	baseID := b.result(base)
	elemTy := b.spirvType(memref.Element)
	ptrTy := b.uniq.Pointer(storageClassFor(memref.Space), elemTy)
	valID := b.result(value)

	colsPerLane := layout.colsPerLane(sgs)

	for blockNo := int64(0); blockNo < layout.Blocks; blockNo++ {
		row0 := b.emitBin(idxTy, OpIAdd, pos0, b.uniq.IntConstant(idxTy, 32, blockNo*layout.Rows))
		rowOff := b.emitBin(idxTy, OpIMul, row0, stride0)
		for c := int64(0); c < colsPerLane; c++ {
			col := b.emitBin(idxTy, OpIAdd, pos1, b.uniq.IntConstant(idxTy, 32, c))
			colOff := b.emitBin(idxTy, OpIMul, col, stride1)
			off := b.emitBin(idxTy, OpIAdd, rowOff, colOff)
			ptr := NewID()
			b.mod.emit(sectionFunction, newInstBuilder().id(ptrTy).id(baseID).id(off).build(OpAccessChain, ptr))
			component := b.extractComponent(valID, compTy, uint32(blockNo*colsPerLane+c))
			b.mod.emit(sectionFunction, newInstBuilder().id(ptr).id(component).build(OpSubgroupBlockWriteINTEL, nil))
		}
	}
	return nil
}
