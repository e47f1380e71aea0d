package spirv

import (
	"github.com/gogpu/tensorspv/ir"
	"github.com/gogpu/tensorspv/spirv/asm"
)

// lowerCoopMulAddDPAS emits a dpas.<precA>.<precB>.8.8 call via
// OpAsmINTEL when the device's matrix-extension table has a native
// entry for this operation's operand kinds and tile shape (§4.8).
// OpAsmINTEL's result and argument types still flow through the
// ordinary SPIR-V type system; only the instruction body is
// target-specific text.
func (b *Backend) lowerCoopMulAddDPAS(inst *ir.Instruction, aT, bT ir.CoopMatrixType) error {
	b.feat.usedAsm = true
	resTy := b.spirvType(inst.Results[0].Type)
	a, bOperand, c := inst.Operands[0], inst.Operands[1], inst.Operands[2]

	d := asm.DPAS{
		PrecA:         precisionOf(aT.Component.Kind),
		PrecB:         precisionOf(bT.Component.Kind),
		SystolicDepth: 8,
		RepeatCount:   8,
	}

	if b.asmTarget == nil {
		b.asmTarget = NewID()
		bld := newInstBuilder().str(asm.Target)
		b.mod.emit(sectionTypeConstVar, bld.build(OpAsmTargetINTEL, b.asmTarget))
	}

	asmTy := b.uniq.FunctionType(resTy, []*ID{resTy, b.spirvType(ir.Type{Inner: aT}), b.spirvType(ir.Type{Inner: bT})})
	asmID := NewID()
	bld := newInstBuilder().id(resTy).id(asmTy).id(b.asmTarget).
		str(d.Text()).str(d.Constraints())
	b.mod.emit(sectionTypeConstVar, bld.build(OpAsmINTEL, asmID))

	id := NewID()
	b.mod.emit(sectionFunction, newInstBuilder().
		id(resTy).id(asmID).id(b.result(c)).id(b.result(a)).id(b.result(bOperand)).
		build(OpAsmCallINTEL, id))
	b.define(inst, id)
	return nil
}

func precisionOf(kind ir.ScalarKind) asm.Precision {
	switch kind {
	case ir.BF16:
		return asm.PrecisionBF16
	case ir.F16:
		return asm.PrecisionF16
	case ir.I8:
		return asm.PrecisionS8
	default:
		return asm.PrecisionBF16
	}
}
