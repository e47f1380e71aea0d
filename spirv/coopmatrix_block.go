package spirv

import (
	"github.com/gogpu/tensorspv/ir"
	"github.com/gogpu/tensorspv/spirv/asm"
)

// lowerCoopLoadBlock2D emits a vISA lsc_load_block2d call via
// OpAsmINTEL for devices whose matrix extension table has an entry for
// the tile's component kind (the tile shape itself is not checked) and
// which stage operands through explicit block-2D addressing
// rather than OpCooperativeMatrixLoadKHR directly (§4.7 block-I/O
// policy, §4.8). The block-2D message reads a TileWidth x TileHeight
// rectangle starting at ptr in one transaction, avoiding the per-row
// gather OpCooperativeMatrixLoadKHR would otherwise lower to on
// hardware without native cooperative-matrix load support.
func (b *Backend) lowerCoopLoadBlock2D(inst *ir.Instruction, t ir.CoopMatrixType, ptr *ID) error {
	b.feat.usedAsm = true
	resTy := b.spirvType(inst.Results[0].Type)

	bl := asm.Block2D{
		ElementBytes: t.Component.Kind.ComponentWidth(),
		TileWidth:    int(t.Cols),
		TileHeight:   int(t.Rows),
	}

	if b.asmTarget == nil {
		b.asmTarget = NewID()
		b.mod.emit(sectionTypeConstVar, newInstBuilder().str(asm.Target).build(OpAsmTargetINTEL, b.asmTarget))
	}

	asmTy := b.uniq.FunctionType(resTy, []*ID{resTy})
	asmID := NewID()
	b.mod.emit(sectionTypeConstVar, newInstBuilder().
		id(resTy).id(asmTy).id(b.asmTarget).str(bl.Text()).str(bl.Constraints()).
		build(OpAsmINTEL, asmID))

	id := NewID()
	b.mod.emit(sectionFunction, newInstBuilder().id(resTy).id(asmID).id(ptr).build(OpAsmCallINTEL, id))
	b.define(inst, id)
	return nil
}

// lowerCoopStoreBlock2D emits the store-side lsc_store_block2d
// counterpart to lowerCoopLoadBlock2D, for devices whose matrix
// extension table covers this component kind.
func (b *Backend) lowerCoopStoreBlock2D(inst *ir.Instruction, t ir.CoopMatrixType, ptr, valID *ID) error {
	b.feat.usedAsm = true
	valTy := b.spirvType(ir.Type{Inner: t})
	voidTy := b.uniq.Void()

	bl := asm.Block2D{
		Store:        true,
		ElementBytes: t.Component.Kind.ComponentWidth(),
		TileWidth:    int(t.Cols),
		TileHeight:   int(t.Rows),
	}

	if b.asmTarget == nil {
		b.asmTarget = NewID()
		b.mod.emit(sectionTypeConstVar, newInstBuilder().str(asm.Target).build(OpAsmTargetINTEL, b.asmTarget))
	}

	asmTy := b.uniq.FunctionType(voidTy, []*ID{valTy, valTy})
	asmID := NewID()
	b.mod.emit(sectionTypeConstVar, newInstBuilder().
		id(voidTy).id(asmTy).id(b.asmTarget).str(bl.Text()).str(bl.Constraints()).
		build(OpAsmINTEL, asmID))

	b.mod.emit(sectionFunction, newInstBuilder().id(voidTy).id(asmID).id(ptr).id(valID).build(OpAsmCallINTEL, nil))
	return nil
}
