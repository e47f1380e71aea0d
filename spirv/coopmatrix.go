package spirv

import (
	"github.com/gogpu/tensorspv/device"
	"github.com/gogpu/tensorspv/ir"
)

// coopPolicy selects which of the three lowering strategies (§4.7)
// realizes a cooperative-matrix operation on the target device: a
// portable per-lane-array strategy every SPIR-V 1.3+ consumer accepts,
// a subgroup-block-I/O strategy for devices with block read/write
// builtins but no matrix-extension hardware, or native DPAS plus
// block-2D addressing on devices whose MatrixExtensions table has a
// matching tile shape.
type coopPolicy uint8

const (
	coopPolicyGeneric coopPolicy = iota
	coopPolicyBlockIO
	coopPolicyDPAS
)

// choosePolicy matches a coop_mul_add's operand/result kinds and tile
// shape against dev's matrix-extension table, preferring DPAS when an
// exact native entry exists, falling back to block I/O for any device
// that advertises a matching subgroup size but no native extension,
// and to generic otherwise.
func choosePolicy(dev device.Info, a, bT, c, r ir.ScalarKind, m, n, k int64, subgroupSize int) coopPolicy {
	if _, ok := dev.FindMatrixExtension(a, bT, c, r, m, n, k); ok {
		return coopPolicyDPAS
	}
	if dev.SupportsSubgroupSize(subgroupSize) {
		return coopPolicyBlockIO
	}
	return coopPolicyGeneric
}

// coopMatrixType represents a cooperative matrix at the SPIR-V level as
// a plain OpTypeVector holding one lane's share of the tile (§4.7
// "layout law"): none of the three lowering policies this backend
// implements use OpTypeCooperativeMatrixKHR, so the type itself never
// needs to be the KHR opaque type.
func (b *Backend) coopMatrixType(t ir.CoopMatrixType) *ID {
	layout := b.coopLayoutOf(t)
	compTy := b.scalarType(t.Component.Kind)
	return b.uniq.Vector(compTy, uint32(layout.Length))
}

func (b *Backend) lowerCoopLoad(inst *ir.Instruction, k ir.CoopLoad) error {
	base := inst.Operands[0]
	indices := inst.Operands[1:]
	t := matrixTypeOf(inst.Results[0].Type)
	memref := memrefTypeOf(base.Type)
	sgs := b.currentSubgroupSizeOrDefault()

	if hasAnyMatrixExtension(b.dev, t.Component.Kind) && !k.Transpose && !k.Checked {
		ptr := b.addressChain(base, indices)
		return b.lowerCoopLoadBlock2D(inst, t, ptr)
	}
	if !k.Checked && blockIOEligible(b.dev, t, memref, k.Transpose, sgs) {
		return b.lowerCoopLoadBlockIO(inst, t, base, memref, indices)
	}
	return b.lowerCoopLoadGeneric(inst, t, base, memref, indices, k)
}

func (b *Backend) lowerCoopStore(inst *ir.Instruction, k ir.CoopStore) error {
	base, value := inst.Operands[0], inst.Operands[1]
	indices := inst.Operands[2:]
	t := matrixTypeOf(value.Type)
	memref := memrefTypeOf(base.Type)
	sgs := b.currentSubgroupSizeOrDefault()

	if k.Flag != ir.StoreRegular {
		return b.lowerCoopStoreGeneric(inst, t, base, value, memref, indices)
	}
	if hasAnyMatrixExtension(b.dev, t.Component.Kind) {
		ptr := b.addressChain(base, indices)
		return b.lowerCoopStoreBlock2D(inst, t, ptr, b.result(value))
	}
	if blockIOEligible(b.dev, t, memref, false, sgs) {
		return b.lowerCoopStoreBlockIO(inst, t, base, value, memref, indices)
	}
	return b.lowerCoopStoreGeneric(inst, t, base, value, memref, indices)
}

func (b *Backend) lowerCoopMulAdd(inst *ir.Instruction) error {
	a, bOperand, c := inst.Operands[0], inst.Operands[1], inst.Operands[2]
	aT, bT := matrixTypeOf(a.Type), matrixTypeOf(bOperand.Type)
	cT, rT := matrixTypeOf(c.Type), matrixTypeOf(inst.Results[0].Type)
	policy := choosePolicy(b.dev, aT.Component.Kind, bT.Component.Kind, cT.Component.Kind, rT.Component.Kind,
		aT.Rows, bT.Cols, aT.Cols, b.currentSubgroupSizeOrDefault())

	if policy == coopPolicyDPAS {
		return b.lowerCoopMulAddDPAS(inst, aT, bT)
	}
	return b.lowerCoopMulAddArray(inst, aT, bT, cT, rT)
}

func (b *Backend) lowerCoopScale(inst *ir.Instruction) error {
	scalar, matrix := inst.Operands[0], inst.Operands[1]
	t := matrixTypeOf(matrix.Type)
	layout := b.coopLayoutOf(t)
	vecTy := b.spirvType(inst.Results[0].Type)
	compTy := b.scalarType(t.Component.Kind)
	op := arithOpFor(t.Component.Kind, OpFMul, OpIMul)

	matID, scalarID := b.result(matrix), b.result(scalar)
	result := b.emitUndef(vecTy)
	for m := int64(0); m < layout.Length; m++ {
		comp := b.extractComponent(matID, compTy, uint32(m))
		scaled := b.emitBin(compTy, op, comp, scalarID)
		result = b.emitInsert(vecTy, scaled, result, uint32(m))
	}
	b.define(inst, result)
	return nil
}

// lowerCoopReduce folds every lane-local component of the matrix's
// backing vector down to one scalar via a sequential local reduction,
// then applies the ordinary subgroup group-op (the same
// OpGroupFAdd/OpGroupIAdd family lowerWorkGroupReduce uses) across
// lanes to finish the reduction over the whole tile (§4.7 `coop_reduce`).
func (b *Backend) lowerCoopReduce(inst *ir.Instruction, k ir.CoopReduce) error {
	matrix := inst.Operands[0]
	t := matrixTypeOf(matrix.Type)
	layout := b.coopLayoutOf(t)
	kind := t.Component.Kind
	compTy := b.scalarType(kind)
	matID := b.result(matrix)

	acc := b.extractComponent(matID, compTy, 0)
	for m := int64(1); m < layout.Length; m++ {
		comp := b.extractComponent(matID, compTy, uint32(m))
		acc = b.localReduceStep(compTy, k.Op, kind, acc, comp)
	}

	resTy := b.spirvType(inst.Results[0].Type)
	groupOp := groupReduceOp(k.Op, kind)
	id := NewID()
	b.mod.emit(sectionFunction, newInstBuilder().
		id(resTy).word(uint32(ScopeSubgroup)).word(uint32(GroupOperationReduce)).
		id(acc).build(groupOp, id))
	b.define(inst, id)
	return nil
}

// localReduceStep combines two lane-local components according to op,
// the scalar half of coop_reduce before the cross-lane group-op runs.
func (b *Backend) localReduceStep(ty *ID, op ir.ReduceOp, kind ir.ScalarKind, x, y *ID) *ID {
	if op == ir.ReduceAdd {
		return b.emitBin(ty, arithOpFor(kind, OpFAdd, OpIAdd), x, y)
	}
	var ext OpenCLExt
	switch {
	case kind.IsFloat() && op == ir.ReduceMin:
		ext = OpenCLFmin
	case kind.IsFloat():
		ext = OpenCLFmax
	case op == ir.ReduceMin:
		ext = OpenCLSMin
	default:
		ext = OpenCLSMax
	}
	id := NewID()
	b.mod.emit(sectionFunction, newInstBuilder().id(ty).id(b.openCL).word(uint32(ext)).id(x).id(y).build(OpExtInst, id))
	return id
}

func arithOpFor(kind ir.ScalarKind, floatOp, intOp OpCode) OpCode {
	if kind.IsFloat() {
		return floatOp
	}
	return intOp
}

// hasAnyMatrixExtension reports whether dev's table contains at least
// one native DPAS entry operating on component kind kind, used to
// decide whether a bare coop_load should stage through block-2D
// addressing (the load path DPAS operands expect) rather than one of
// the portable policies.
func hasAnyMatrixExtension(dev device.Info, kind ir.ScalarKind) bool {
	for _, ext := range dev.MatrixExtensions {
		if ext.AType == kind || ext.BType == kind {
			return true
		}
	}
	return false
}

// blockIOEligible reports whether the subgroup-block-I/O policy
// applies: it requires the row dimension to be contiguous (unit
// stride), since each lane is assigned one row and the block-read/
// write message fans lanes out across consecutive addresses, an
// untransposed access, a component wide enough for the message, a tile
// with at least a full subgroup's worth of rows, and a subgroup size
// the device actually executes (§4.7 "subgroup block I/O policy").
func blockIOEligible(dev device.Info, t ir.CoopMatrixType, memref ir.MemrefType, transpose bool, sgs int) bool {
	if transpose {
		return false
	}
	if t.Component.Kind.ComponentWidth() < 4 {
		return false
	}
	if len(memref.Stride) < 2 || memref.Stride[0] != 1 {
		return false
	}
	if t.Rows < int64(sgs) {
		return false
	}
	return dev.SupportsSubgroupSize(sgs)
}

// coopMemrefGeometry resolves the shape/stride of the two dimensions a
// cooperative-matrix access walks, consulting base's dope vector (see
// dopevector.go) for any dimension not known until launch. transpose
// swaps which memref dimension backs the matrix's row axis.
func (b *Backend) coopMemrefGeometry(base *ir.Value, memref ir.MemrefType, transpose bool) (shape0, shape1, stride0, stride1 *ID) {
	idxTy := b.uniq.Scalar(ir.I32)
	dv := b.dopeVectors[base]
	shapeAt := func(i int) *ID {
		if i < len(memref.Shape) && memref.Shape[i] != ir.DynamicSize {
			return b.uniq.IntConstant(idxTy, 32, memref.Shape[i])
		}
		if dv != nil && i < dv.Dim() {
			return dv.Shape(i)
		}
		return b.uniq.IntConstant(idxTy, 32, 1)
	}
	strideAt := func(i int) *ID {
		if i < len(memref.Stride) && memref.Stride[i] != ir.DynamicSize {
			return b.uniq.IntConstant(idxTy, 32, memref.Stride[i])
		}
		if dv != nil && i < dv.Dim() {
			return dv.Stride(i)
		}
		return b.uniq.IntConstant(idxTy, 32, 1)
	}
	s0, s1 := shapeAt(0), shapeAt(1)
	st0, st1 := strideAt(0), strideAt(1)
	if transpose {
		return s1, s0, st1, st0
	}
	return s0, s1, st0, st1
}

// coopPositions splits a coop_load/coop_store's index operands into the
// tile's starting (row, col) position in memref coordinates, swapping
// them to match coopMemrefGeometry's transpose reordering.
func coopPositions(indices []*ir.Value, transpose bool) (pos0, pos1 *ir.Value) {
	if len(indices) < 2 {
		return indices[0], indices[0]
	}
	if transpose {
		return indices[1], indices[0]
	}
	return indices[0], indices[1]
}

func matrixTypeOf(t ir.Type) ir.CoopMatrixType {
	inner, ok := t.Inner.(ir.CoopMatrixType)
	if !ok {
		panic("spirv: expected cooperative-matrix type")
	}
	return inner
}
