package spirv

import (
	"fmt"

	"github.com/gogpu/tensorspv/ir"
)

func (b *Backend) lowerArith(inst *ir.Instruction, k ir.Arith) error {
	lhs, rhs := inst.Operands[0], inst.Operands[1]
	kind := scalarKindOf(lhs.Type)
	resTy := b.spirvType(inst.Results[0].Type)

	if kind.IsComplex() {
		return b.lowerComplexArith(inst, k, kind)
	}

	var op OpCode
	switch {
	case k.Op == ir.Min || k.Op == ir.Max:
		return b.lowerMinMaxExtInst(inst, k, kind)
	case kind.IsFloat():
		op = floatArithOp(k.Op)
	default:
		op = intArithOp(k.Op)
	}
	if op == OpNop {
		return fmt.Errorf("spirv: arith op %s unsupported for %s", k.Op, kind)
	}

	id := NewID()
	bld := newInstBuilder().id(resTy).id(b.result(lhs)).id(b.result(rhs))
	b.mod.emit(sectionFunction, bld.build(op, id))
	b.define(inst, id)
	return nil
}

func floatArithOp(op ir.ArithOp) OpCode {
	switch op {
	case ir.Add:
		return OpFAdd
	case ir.Sub:
		return OpFSub
	case ir.Mul:
		return OpFMul
	case ir.Div:
		return OpFDiv
	case ir.Rem:
		return OpFRem
	default:
		return OpNop
	}
}

func intArithOp(op ir.ArithOp) OpCode {
	switch op {
	case ir.Add:
		return OpIAdd
	case ir.Sub:
		return OpISub
	case ir.Mul:
		return OpIMul
	case ir.Div:
		return OpSDiv
	case ir.Rem:
		return OpSRem
	case ir.Shl:
		return OpShiftLeftLogical
	case ir.Shr:
		return OpShiftRightArithmetic
	case ir.And:
		return OpBitwiseAnd
	case ir.Or:
		return OpBitwiseOr
	case ir.Xor:
		return OpBitwiseXor
	default:
		return OpNop
	}
}

// lowerMinMaxExtInst lowers min/max via the OpenCL.std extended
// instruction set, which covers both integer and float min/max under
// one import rather than dedicated core opcodes.
func (b *Backend) lowerMinMaxExtInst(inst *ir.Instruction, k ir.Arith, kind ir.ScalarKind) error {
	resTy := b.spirvType(inst.Results[0].Type)
	var ext OpenCLExt
	switch {
	case kind.IsFloat() && k.Op == ir.Min:
		ext = OpenCLFmin
	case kind.IsFloat() && k.Op == ir.Max:
		ext = OpenCLFmax
	case k.Op == ir.Min:
		ext = OpenCLSMin
	default:
		ext = OpenCLSMax
	}
	id := NewID()
	bld := newInstBuilder().id(resTy).id(b.openCL).word(uint32(ext)).
		id(b.result(inst.Operands[0])).id(b.result(inst.Operands[1]))
	b.mod.emit(sectionFunction, bld.build(OpExtInst, id))
	b.define(inst, id)
	return nil
}

// lowerComplexArith implements add/sub/mul/div over the 2-lane vector
// representation of complex scalars component-wise for add/sub, and
// via the explicit formulas (ac-bd, ad+bc) and
// ((ac+bd)/(c²+d²), (bc-ad)/(c²+d²)) for mul/div (§4.6).
func (b *Backend) lowerComplexArith(inst *ir.Instruction, k ir.Arith, kind ir.ScalarKind) error {
	real := kind.RealComponent()
	lhs, rhs := b.result(inst.Operands[0]), b.result(inst.Operands[1])
	vecTy := b.spirvType(inst.Results[0].Type)

	if k.Op == ir.Add || k.Op == ir.Sub {
		op := OpFAdd
		if k.Op == ir.Sub {
			op = OpFSub
		}
		id := NewID()
		b.mod.emit(sectionFunction, newInstBuilder().id(vecTy).id(lhs).id(rhs).build(op, id))
		b.define(inst, id)
		return nil
	}

	realTy := b.scalarType(real)
	a := b.extractComponent(lhs, realTy, 0)
	bb := b.extractComponent(lhs, realTy, 1)
	c := b.extractComponent(rhs, realTy, 0)
	d := b.extractComponent(rhs, realTy, 1)

	mul := func(x, y *ID) *ID {
		id := NewID()
		b.mod.emit(sectionFunction, newInstBuilder().id(realTy).id(x).id(y).build(OpFMul, id))
		return id
	}
	addf := func(x, y *ID) *ID {
		id := NewID()
		b.mod.emit(sectionFunction, newInstBuilder().id(realTy).id(x).id(y).build(OpFAdd, id))
		return id
	}
	subf := func(x, y *ID) *ID {
		id := NewID()
		b.mod.emit(sectionFunction, newInstBuilder().id(realTy).id(x).id(y).build(OpFSub, id))
		return id
	}
	divf := func(x, y *ID) *ID {
		id := NewID()
		b.mod.emit(sectionFunction, newInstBuilder().id(realTy).id(x).id(y).build(OpFDiv, id))
		return id
	}

	var re, im *ID
	if k.Op == ir.Mul {
		re = subf(mul(a, c), mul(bb, d))
		im = addf(mul(a, d), mul(bb, c))
	} else {
		denom := addf(mul(c, c), mul(d, d))
		re = divf(addf(mul(a, c), mul(bb, d)), denom)
		im = divf(subf(mul(bb, c), mul(a, d)), denom)
	}

	id := NewID()
	b.mod.emit(sectionFunction, newInstBuilder().id(vecTy).id(re).id(im).build(OpCompositeConstruct, id))
	b.define(inst, id)
	return nil
}

func (b *Backend) extractComponent(vec *ID, componentTy *ID, lane uint32) *ID {
	id := NewID()
	b.mod.emit(sectionFunction, newInstBuilder().id(componentTy).id(vec).word(lane).build(OpCompositeExtract, id))
	return id
}

func (b *Backend) lowerUnary(inst *ir.Instruction, k ir.Unary) error {
	operand := inst.Operands[0]
	kind := scalarKindOf(operand.Type)
	resTy := b.spirvType(inst.Results[0].Type)
	opID := b.result(operand)

	switch k.Op {
	case ir.Not:
		id := NewID()
		b.mod.emit(sectionFunction, newInstBuilder().id(resTy).id(opID).build(OpLogicalNot, id))
		b.define(inst, id)
		return nil
	case ir.Neg:
		op := OpSNegate
		if kind.IsFloat() {
			op = OpFNegate
		}
		id := NewID()
		b.mod.emit(sectionFunction, newInstBuilder().id(resTy).id(opID).build(op, id))
		b.define(inst, id)
		return nil
	case ir.Abs:
		if kind.IsComplex() {
			realTy := b.scalarType(kind.RealComponent())
			re := b.extractComponent(opID, realTy, 0)
			im := b.extractComponent(opID, realTy, 1)
			reSq := NewID()
			b.mod.emit(sectionFunction, newInstBuilder().id(realTy).id(re).id(re).build(OpFMul, reSq))
			imSq := NewID()
			b.mod.emit(sectionFunction, newInstBuilder().id(realTy).id(im).id(im).build(OpFMul, imSq))
			normSq := NewID()
			b.mod.emit(sectionFunction, newInstBuilder().id(realTy).id(reSq).id(imSq).build(OpFAdd, normSq))
			id := NewID()
			b.mod.emit(sectionFunction, newInstBuilder().id(resTy).id(b.openCL).word(uint32(OpenCLSqrt)).id(normSq).build(OpExtInst, id))
			b.define(inst, id)
			return nil
		}
		ext := OpenCLSAbs
		if kind.IsFloat() {
			ext = OpenCLFabs
		}
		id := NewID()
		b.mod.emit(sectionFunction, newInstBuilder().id(resTy).id(b.openCL).word(uint32(ext)).id(opID).build(OpExtInst, id))
		b.define(inst, id)
		return nil
	case ir.Re, ir.Im:
		realTy := b.scalarType(kind.RealComponent())
		lane := uint32(0)
		if k.Op == ir.Im {
			lane = 1
		}
		id := b.extractComponent(opID, realTy, lane)
		b.define(inst, id)
		return nil
	case ir.Conj:
		realTy := b.scalarType(kind.RealComponent())
		re := b.extractComponent(opID, realTy, 0)
		im := b.extractComponent(opID, realTy, 1)
		negIm := NewID()
		b.mod.emit(sectionFunction, newInstBuilder().id(realTy).id(im).build(OpFNegate, negIm))
		id := NewID()
		b.mod.emit(sectionFunction, newInstBuilder().id(resTy).id(re).id(negIm).build(OpCompositeConstruct, id))
		b.define(inst, id)
		return nil
	default:
		return fmt.Errorf("spirv: unary op %s unsupported", k.Op)
	}
}

func (b *Backend) lowerCompare(inst *ir.Instruction, k ir.Compare) error {
	lhs, rhs := inst.Operands[0], inst.Operands[1]
	kind := scalarKindOf(lhs.Type)
	resTy := b.uniq.Bool()

	var op OpCode
	if kind.IsFloat() {
		op = floatCompareOp(k.Op)
	} else {
		op = intCompareOp(k.Op)
	}
	id := NewID()
	b.mod.emit(sectionFunction, newInstBuilder().id(resTy).id(b.result(lhs)).id(b.result(rhs)).build(op, id))
	b.define(inst, id)
	return nil
}

func floatCompareOp(op ir.CompareOp) OpCode {
	switch op {
	case ir.Eq:
		return OpFOrdEqual
	case ir.Ne:
		return OpFOrdNotEqual
	case ir.Lt:
		return OpFOrdLessThan
	case ir.Le:
		return OpFOrdLessThanEqual
	case ir.Gt:
		return OpFOrdGreaterThan
	default:
		return OpFOrdGreaterThanEqual
	}
}

func intCompareOp(op ir.CompareOp) OpCode {
	switch op {
	case ir.Eq:
		return OpIEqual
	case ir.Ne:
		return OpINotEqual
	case ir.Lt:
		return OpSLessThan
	case ir.Le:
		return OpSLessThanEqual
	case ir.Gt:
		return OpSGreaterThan
	default:
		return OpSGreaterThanEqual
	}
}

func (b *Backend) lowerConstant(inst *ir.Instruction, k ir.Constant) error {
	kind := scalarKindOf(inst.Results[0].Type)
	resTy := b.spirvType(inst.Results[0].Type)

	var id *ID
	switch v := k.Value.(type) {
	case ir.IntConst:
		id = b.uniq.IntConstant(resTy, kind.ComponentWidth()*8, int64(v))
	case ir.FloatConst:
		id = b.uniq.FloatConstant(resTy, kind.ComponentWidth()*8, float64(v))
	case ir.BoolConst:
		id = b.uniq.BoolConstant(resTy, bool(v))
	case ir.ComplexConst:
		realTy := b.scalarType(kind.RealComponent())
		re := b.uniq.FloatConstant(realTy, kind.RealComponent().ComponentWidth()*8, v.Re)
		im := b.uniq.FloatConstant(realTy, kind.RealComponent().ComponentWidth()*8, v.Im)
		id = b.uniq.CompositeConstant(resTy, []*ID{re, im})
	default:
		return fmt.Errorf("spirv: unhandled constant payload %T", k.Value)
	}
	b.define(inst, id)
	return nil
}

func (b *Backend) lowerCast(inst *ir.Instruction) error {
	src, dst := inst.Operands[0], inst.Results[0]
	srcKind, dstKind := scalarKindOf(src.Type), scalarKindOf(dst.Type)
	dstTy := b.spirvType(dst.Type)
	srcID := b.result(src)

	if dstKind.IsComplex() {
		return b.lowerCastToComplex(inst, srcKind, dstKind, srcID, dstTy)
	}

	id := b.castScalar(srcKind, dstKind, srcID, dstTy)
	b.define(inst, id)
	return nil
}

// lowerCastToComplex builds a complex result from either a real source
// (the real component is cast to the destination's component kind and
// the imaginary component is zero) or a complex source (each component
// is cast independently), per the complex promotion rule of §4.6.
func (b *Backend) lowerCastToComplex(inst *ir.Instruction, srcKind, dstKind ir.ScalarKind, srcID, dstTy *ID) error {
	dstReal := dstKind.RealComponent()
	dstRealTy := b.scalarType(dstReal)

	var re, im *ID
	if srcKind.IsComplex() {
		srcReal := srcKind.RealComponent()
		srcRealTy := b.scalarType(srcReal)
		re = b.castScalar(srcReal, dstReal, b.extractComponent(srcID, srcRealTy, 0), dstRealTy)
		im = b.castScalar(srcReal, dstReal, b.extractComponent(srcID, srcRealTy, 1), dstRealTy)
	} else {
		re = b.castScalar(srcKind, dstReal, srcID, dstRealTy)
		im = b.uniq.FloatConstant(dstRealTy, dstReal.ComponentWidth()*8, 0)
	}

	id := NewID()
	b.mod.emit(sectionFunction, newInstBuilder().id(dstTy).id(re).id(im).build(OpCompositeConstruct, id))
	b.define(inst, id)
	return nil
}

// castScalar converts one non-complex scalar value from srcKind to
// dstKind, routing through the bf16/f32 round-trip when either side is
// bf16 and through the plain numeric-conversion opcodes otherwise.
func (b *Backend) castScalar(srcKind, dstKind ir.ScalarKind, srcID, dstTy *ID) *ID {
	if srcKind == dstKind {
		return srcID
	}
	if srcKind == ir.BF16 || dstKind == ir.BF16 {
		return b.bf16CastValue(srcKind, dstKind, srcID, dstTy)
	}

	var op OpCode
	switch {
	case srcKind.IsFloat() && dstKind.IsFloat():
		op = OpFConvert
	case srcKind.IsFloat() && !dstKind.IsFloat():
		op = OpConvertFToS
	case !srcKind.IsFloat() && dstKind.IsFloat():
		op = OpConvertSToF
	case srcKind.ComponentWidth() != dstKind.ComponentWidth():
		op = OpSConvert
	default:
		op = OpBitcast
	}
	id := NewID()
	b.mod.emit(sectionFunction, newInstBuilder().id(dstTy).id(srcID).build(op, id))
	return id
}

// bf16CastValue round-trips bf16 through f32: bf16 is stored packed as
// u16, so a cast into bf16 first widens to f32 (if needed) then applies
// OpConvertFToBF16INTEL, and a cast out of bf16 applies
// OpConvertBF16ToFINTEL before any further narrowing (§4.6 "bf16
// promotion law").
func (b *Backend) bf16CastValue(srcKind, dstKind ir.ScalarKind, srcID, dstTy *ID) *ID {
	b.feat.usedBFloat16Conv = true
	f32 := b.uniq.Scalar(ir.F32)

	if srcKind == ir.BF16 {
		widened := NewID()
		b.mod.emit(sectionFunction, newInstBuilder().id(f32).id(srcID).build(OpConvertBF16ToFINTEL, widened))
		if dstKind == ir.F32 {
			return widened
		}
		id := NewID()
		b.mod.emit(sectionFunction, newInstBuilder().id(dstTy).id(widened).build(OpFConvert, id))
		return id
	}

	asF32 := srcID
	if srcKind != ir.F32 {
		widened := NewID()
		b.mod.emit(sectionFunction, newInstBuilder().id(f32).id(srcID).build(OpFConvert, widened))
		asF32 = widened
	}
	id := NewID()
	b.mod.emit(sectionFunction, newInstBuilder().id(dstTy).id(asF32).build(OpConvertFToBF16INTEL, id))
	return id
}

func scalarKindOf(t ir.Type) ir.ScalarKind {
	switch inner := t.Inner.(type) {
	case ir.ScalarType:
		return inner.Kind
	case ir.CoopMatrixType:
		return inner.Component.Kind
	default:
		panic(fmt.Sprintf("spirv: %T has no scalar kind", inner))
	}
}
