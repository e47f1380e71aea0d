package spirv

import (
	"fmt"

	"github.com/gogpu/tensorspv/ir"
)

func (b *Backend) lowerAlloca(inst *ir.Instruction) error {
	ptrTy := b.spirvType(inst.Results[0].Type)
	id := NewID()
	b.mod.emit(sectionFunction, newInstBuilder().
		id(ptrTy).word(uint32(StorageClassFunction)).build(OpVariable, id))
	b.define(inst, id)
	return nil
}

func (b *Backend) lowerLoad(inst *ir.Instruction) error {
	base := inst.Operands[0]
	indices := inst.Operands[1:]
	resTy := b.spirvType(inst.Results[0].Type)

	ptr := b.addressChain(base, indices)
	id := NewID()
	b.mod.emit(sectionFunction, newInstBuilder().id(resTy).id(ptr).build(OpLoad, id))
	b.define(inst, id)
	return nil
}

func (b *Backend) lowerStore(inst *ir.Instruction, k ir.Store) error {
	base, value := inst.Operands[0], inst.Operands[1]
	indices := inst.Operands[2:]
	ptr := b.addressChain(base, indices)
	valID := b.result(value)

	switch k.Flag {
	case ir.StoreRegular:
		b.mod.emit(sectionFunction, newInstBuilder().id(ptr).id(valID).build(OpStore, nil))
	case ir.StoreAtomic:
		b.mod.emit(sectionFunction, newInstBuilder().id(ptr).
			word(uint32(ScopeWorkgroup)).word(uint32(MemorySemanticsRelaxed)).id(valID).
			build(OpAtomicStore, nil))
	default:
		return b.lowerAtomicRMW(inst, k, ptr, valID)
	}
	return nil
}

// lowerAtomicRMW lowers atomic_add/min/max. Integer targets use the
// core OpAtomic* opcodes; float targets require the
// SPV_EXT_shader_atomic_float_add/min_max extension opcodes (§4.6 item
// 3), since core SPIR-V atomics are integer-only.
func (b *Backend) lowerAtomicRMW(inst *ir.Instruction, k ir.Store, ptr, valID *ID) error {
	value := inst.Operands[1]
	kind := scalarKindOf(value.Type)
	resTy := b.spirvType(value.Type)
	scope := uint32(ScopeWorkgroup)
	sem := uint32(MemorySemanticsRelaxed)

	if kind.IsComplex() {
		return b.lowerComplexAtomicRMW(inst, k, ptr, valID, kind)
	}

	id := NewID()
	bld := newInstBuilder().id(resTy).id(ptr).word(scope).word(sem).id(valID)
	if kind.IsFloat() {
		switch k.Flag {
		case ir.StoreAtomicAdd:
			b.feat.usedAtomicFloatAdd = true
			b.mod.emit(sectionFunction, bld.build(OpAtomicFAddEXT, id))
		case ir.StoreAtomicMin:
			b.feat.usedAtomicFloatMinMax = true
			b.mod.emit(sectionFunction, bld.build(OpAtomicFMinEXT, id))
		default:
			b.feat.usedAtomicFloatMinMax = true
			b.mod.emit(sectionFunction, bld.build(OpAtomicFMaxEXT, id))
		}
		return nil
	}
	switch k.Flag {
	case ir.StoreAtomicAdd:
		b.mod.emit(sectionFunction, bld.build(OpAtomicIAdd, id))
	case ir.StoreAtomicMin:
		b.mod.emit(sectionFunction, bld.build(OpAtomicSMin, id))
	default:
		b.mod.emit(sectionFunction, bld.build(OpAtomicSMax, id))
	}
	return nil
}

// lowerComplexAtomicRMW splits a complex atomic_add into two
// independent real-valued atomics, one per lane of the underlying
// 2-component vector. Complex min/max/exchange have no well-defined
// per-component semantics and are rejected.
func (b *Backend) lowerComplexAtomicRMW(inst *ir.Instruction, k ir.Store, ptr, valID *ID, kind ir.ScalarKind) error {
	if k.Flag != ir.StoreAtomicAdd {
		return ir.Diagnostic{Kind: ir.ErrSPIRVUnsupportedAtomicType, Message: fmt.Sprintf("spirv: atomic op unsupported for complex operand type %s", kind)}
	}
	base := inst.Operands[0]
	memref := memrefTypeOf(base.Type)
	realTy := b.scalarType(kind.RealComponent())
	ptrTy := b.uniq.Pointer(storageClassFor(memref.Space), realTy)
	idxTy := b.uniq.Scalar(ir.I32)
	scope := uint32(ScopeWorkgroup)
	sem := uint32(MemorySemanticsRelaxed)

	b.feat.usedAtomicFloatAdd = true
	for lane := uint32(0); lane < 2; lane++ {
		laneIdx := b.uniq.IntConstant(idxTy, 32, int64(lane))
		lanePtr := NewID()
		b.mod.emit(sectionFunction, newInstBuilder().id(ptrTy).id(ptr).id(laneIdx).build(OpAccessChain, lanePtr))
		laneVal := b.extractComponent(valID, realTy, lane)
		laneRes := NewID()
		b.mod.emit(sectionFunction, newInstBuilder().id(realTy).id(lanePtr).word(scope).word(sem).id(laneVal).build(OpAtomicFAddEXT, laneRes))
	}
	return nil
}

// addressChain computes a pointer to one element of base via a
// row-major strided OpAccessChain offset computed from base's static
// (or dynamically-queried) strides, matching the memref model of §3.
func (b *Backend) addressChain(base *ir.Value, indices []*ir.Value) *ID {
	baseID := b.result(base)
	if len(indices) == 0 {
		return baseID
	}
	memref := memrefTypeOf(base.Type)
	elemTy := b.spirvType(memref.Element)
	ptrTy := b.uniq.Pointer(storageClassFor(memref.Space), elemTy)

	offset := b.linearOffset(base, memref, indices)
	id := NewID()
	b.mod.emit(sectionFunction, newInstBuilder().id(ptrTy).id(baseID).id(offset).build(OpAccessChain, id))
	return id
}

// linearOffset computes sum(index[i] * stride[i]) for a memref access,
// using constant strides where known and consulting base's dope vector
// (bound by bindDopeVectors, see dopevector.go) for any dimension whose
// stride is only known at launch. A dimension with neither a static
// stride nor a bound dope vector entry is treated as unit stride.
func (b *Backend) linearOffset(base *ir.Value, memref ir.MemrefType, indices []*ir.Value) *ID {
	idxTy := b.uniq.Scalar(ir.I32)
	dv := b.dopeVectors[base]
	var acc *ID
	for i, idxVal := range indices {
		idxID := b.result(idxVal)
		term := idxID
		switch {
		case i < len(memref.Stride) && memref.Stride[i] != ir.DynamicSize:
			if stride := memref.Stride[i]; stride != 1 {
				strideConst := b.uniq.IntConstant(idxTy, 32, stride)
				mul := NewID()
				b.mod.emit(sectionFunction, newInstBuilder().id(idxTy).id(idxID).id(strideConst).build(OpIMul, mul))
				term = mul
			}
		case dv != nil && i < dv.Dim():
			mul := NewID()
			b.mod.emit(sectionFunction, newInstBuilder().id(idxTy).id(idxID).id(dv.Stride(i)).build(OpIMul, mul))
			term = mul
		}
		if acc == nil {
			acc = term
			continue
		}
		sum := NewID()
		b.mod.emit(sectionFunction, newInstBuilder().id(idxTy).id(acc).id(term).build(OpIAdd, sum))
		acc = sum
	}
	if dv != nil && dv.HasOffset() {
		if acc == nil {
			return dv.Offset()
		}
		sum := NewID()
		b.mod.emit(sectionFunction, newInstBuilder().id(idxTy).id(acc).id(dv.Offset()).build(OpIAdd, sum))
		acc = sum
	}
	return acc
}

func (b *Backend) lowerSize(inst *ir.Instruction, k ir.Size) error {
	base := inst.Operands[0]
	memref := memrefTypeOf(base.Type)
	resTy := b.spirvType(inst.Results[0].Type)

	if k.Dim < len(memref.Shape) && memref.Shape[k.Dim] != ir.DynamicSize {
		id := b.uniq.IntConstant(resTy, 32, memref.Shape[k.Dim])
		b.define(inst, id)
		return nil
	}
	// A dynamic shape entry is carried as a trailing dope-vector
	// parameter appended to the function signature by
	// planDopeVectors/bindDopeVectors (see dopevector.go).
	if dv, ok := b.dopeVectors[base]; ok && k.Dim < dv.Dim() {
		b.define(inst, dv.Shape(k.Dim))
		return nil
	}
	id := b.uniq.IntConstant(resTy, 32, 0)
	b.define(inst, id)
	return nil
}

func (b *Backend) lowerMemrefView(inst *ir.Instruction) error {
	// subview/expand/fuse all reinterpret the base pointer without
	// moving it: the access-chain math folds offset/stride changes into
	// later load/store lowering via memrefTypeOf(inst.Results[0].Type).
	b.define(inst, b.result(inst.Operands[0]))
	return nil
}

func memrefTypeOf(t ir.Type) ir.MemrefType {
	switch inner := t.Inner.(type) {
	case ir.MemrefType:
		return inner
	case ir.GroupType:
		return ir.MemrefType{Element: inner.Element}
	default:
		panic("spirv: expected memref or group type")
	}
}
