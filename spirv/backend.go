package spirv

import (
	"fmt"

	"github.com/gogpu/tensorspv/device"
	"github.com/gogpu/tensorspv/ir"
	"github.com/gogpu/tensorspv/ir/passes"
)

// Backend lowers a verified, pass-pipelined ir.Program into a SPIR-V
// Module (§4.6). One Backend handles exactly one Program; construct a
// fresh one per Compile call.
type Backend struct {
	dev    device.Info
	mod    *Module
	uniq   *Uniquifier
	openCL *ID
	feat   featureSet
	slots  map[*ir.Function]*passes.StackSlots

	currentSubgroupSize int // the function currently being lowered's chosen subgroup size
	asmTarget           *ID // the module's single OpAsmTargetINTEL, created on first use

	values      map[*ir.Value]*ID          // scalar/bool/memref/pointer/coopmatrix results
	dopeVectors map[*ir.Value]*DopeVector // dynamic shape/stride/offset, keyed by the owning parameter

	// yields/yieldIDs track the operand list of the most recently
	// lowered Yield within each currently-open if/for region, so the
	// enclosing lowerIf/lowerFor can wire them into OpPhi nodes.
	yields   [][]*ir.Value
	yieldIDs []*ID
}

// NewBackend creates a Backend targeting dev, ready to lower functions
// into a fresh module at SPIR-V 1.3 (the first version with
// OpGroupNonUniform* and the baseline this target assumes).
func NewBackend(dev device.Info, slots map[*ir.Function]*passes.StackSlots) *Backend {
	mod := NewModule(1, 3)
	return &Backend{
		dev:         dev,
		mod:         mod,
		uniq:        NewUniquifier(mod),
		slots:       slots,
		values:      make(map[*ir.Value]*ID),
		dopeVectors: make(map[*ir.Value]*DopeVector),
	}
}

// Lower lowers every function of p into the backend's module, emits
// the memory model once, and finalizes IDs. It returns the finished
// module, ready for Emit.
func (b *Backend) Lower(p *ir.Program) (*Module, error) {
	b.openCL = b.uniq.ExtInstImport("OpenCL.std")
	b.mod.emit(sectionMemoryModel, newInstBuilder().
		word(uint32(AddressingModelPhysical64)).
		word(uint32(MemoryModelOpenCL)).
		build(OpMemoryModel, nil))

	for _, fn := range p.Functions {
		if err := b.lowerFunction(fn); err != nil {
			return nil, fmt.Errorf("spirv: lowering %q: %w", fn.Name, err)
		}
	}

	b.feat.declare(b.uniq)
	if err := b.mod.AssignIDs(); err != nil {
		return nil, fmt.Errorf("spirv: %w", err)
	}
	return b.mod, nil
}

func (b *Backend) lowerFunction(fn *ir.Function) error {
	b.currentSubgroupSize = fn.Metadata.SubgroupSize
	voidTy := b.uniq.Void()
	paramTypes := make([]*ID, len(fn.Params))
	for i, p := range fn.Params {
		paramTypes[i] = b.spirvType(p.Type)
	}
	extraTypes, dopePlans := b.planDopeVectors(fn)
	allTypes := append(append([]*ID{}, paramTypes...), extraTypes...)
	fnType := b.uniq.FunctionType(voidTy, allTypes)

	fnID := NewID()
	b.mod.emit(sectionFunction, newInstBuilder().
		id(voidTy).word(0).id(fnType).build(OpFunction, fnID))

	for i, p := range fn.Params {
		paramID := NewID()
		b.mod.emit(sectionFunction, newInstBuilder().id(paramTypes[i]).build(OpFunctionParameter, paramID))
		b.values[p] = paramID
	}
	extraIDs := make([]*ID, len(extraTypes))
	for i, ty := range extraTypes {
		paramID := NewID()
		b.mod.emit(sectionFunction, newInstBuilder().id(ty).build(OpFunctionParameter, paramID))
		extraIDs[i] = paramID
	}
	b.bindDopeVectors(dopePlans, extraIDs)

	entryLabel := NewID()
	b.mod.emit(sectionFunction, newInstBuilder().build(OpLabel, entryLabel))

	if err := b.lowerRegion(fn.Body); err != nil {
		return err
	}
	b.mod.emit(sectionFunction, newInstBuilder().build(OpReturn, nil))
	b.mod.emit(sectionFunction, newInstBuilder().build(OpFunctionEnd, nil))

	b.mod.emit(sectionEntryPoint, b.entryPointInstr(fn, fnID))
	wgx, wgy := fn.Metadata.WorkGroupSize[0], fn.Metadata.WorkGroupSize[1]
	if wgx == 0 {
		wgx = 1
	}
	if wgy == 0 {
		wgy = 1
	}
	b.mod.emit(sectionExecutionMode, newInstBuilder().
		id(fnID).word(uint32(ExecutionModeLocalSize)).
		word(uint32(wgx)).word(uint32(wgy)).word(1).
		build(OpExecutionMode, nil))
	if fn.Metadata.SubgroupSize > 0 {
		b.feat.usedSubgroupDispatch = true
		b.mod.emit(sectionExecutionMode, newInstBuilder().
			id(fnID).word(uint32(ExecutionModeSubgroupSize)).
			word(uint32(fn.Metadata.SubgroupSize)).
			build(OpExecutionMode, nil))
	}
	return nil
}

func (b *Backend) entryPointInstr(fn *ir.Function, fnID *ID) *Instruction {
	bld := newInstBuilder().word(uint32(ExecutionModelKernel)).id(fnID).str(fn.Name)
	return bld.build(OpEntryPoint, nil)
}

// lowerRegion lowers every instruction of r in order. It assumes the
// current SPIR-V basic block is already open (a preceding OpLabel has
// been emitted) and that r does not itself need a fresh block — callers
// lowering `if`/`for`/`parallel` bodies open the block before calling
// this.
func (b *Backend) lowerRegion(r *ir.Region) error {
	for _, inst := range r.Instrs {
		if err := b.lowerInstruction(inst); err != nil {
			return err
		}
	}
	return nil
}

func (b *Backend) lowerInstruction(inst *ir.Instruction) error {
	switch k := inst.Kind.(type) {
	case ir.Arith:
		return b.lowerArith(inst, k)
	case ir.Unary:
		return b.lowerUnary(inst, k)
	case ir.Compare:
		return b.lowerCompare(inst, k)
	case ir.Constant:
		return b.lowerConstant(inst, k)
	case ir.Cast:
		return b.lowerCast(inst)
	case ir.Alloca:
		return b.lowerAlloca(inst)
	case ir.Load:
		return b.lowerLoad(inst)
	case ir.Store:
		return b.lowerStore(inst, k)
	case ir.Size:
		return b.lowerSize(inst, k)
	case ir.Subview, ir.Expand, ir.Fuse:
		return b.lowerMemrefView(inst)
	case ir.LifetimeStop:
		return nil // stack-slot reuse is static; nothing to emit
	case ir.If:
		return b.lowerIf(inst, k)
	case ir.For:
		return b.lowerFor(inst, k)
	case ir.Parallel:
		return b.lowerParallel(inst)
	case ir.Yield:
		return b.lowerYield(inst)
	case ir.GroupID:
		return b.lowerBuiltinQuery(inst, "WorkgroupId", BuiltInWorkgroupID, k.Dim)
	case ir.GroupSize:
		return b.lowerBuiltinQuery(inst, "WorkgroupSize", BuiltInWorkgroupSize, k.Dim)
	case ir.NumSubgroups:
		return b.lowerScalarBuiltin(inst, "NumSubgroups", BuiltInNumSubgroups)
	case ir.SubgroupID:
		return b.lowerScalarBuiltin(inst, "SubgroupId", BuiltInSubgroupId)
	case ir.SubgroupLocalID:
		return b.lowerScalarBuiltin(inst, "SubgroupLocalInvocationId", BuiltInSubgroupLocalInvocationId)
	case ir.SubgroupSizeQuery:
		return b.lowerScalarBuiltin(inst, "SubgroupSize", BuiltInSubgroupSize)
	case ir.WorkGroup:
		return b.lowerWorkGroupReduce(inst, k)
	case ir.CoopLoad:
		return b.lowerCoopLoad(inst, k)
	case ir.CoopStore:
		return b.lowerCoopStore(inst, k)
	case ir.CoopMulAdd:
		return b.lowerCoopMulAdd(inst)
	case ir.CoopScale:
		return b.lowerCoopScale(inst)
	case ir.CoopPrefetch:
		return nil // no binding effect at the SPIR-V level without a target-specific prefetch op
	case ir.CoopReduce:
		return b.lowerCoopReduce(inst, k)
	case ir.Barrier:
		return b.lowerBarrier(inst, k)
	default:
		return fmt.Errorf("spirv: no lowering for instruction kind %T", inst.Kind)
	}
}

// --- type mapping --------------------------------------------------------

func (b *Backend) spirvType(t ir.Type) *ID {
	switch inner := t.Inner.(type) {
	case ir.VoidType:
		return b.uniq.Void()
	case ir.BooleanType:
		return b.uniq.Bool()
	case ir.ScalarType:
		return b.scalarType(inner.Kind)
	case ir.MemrefType:
		elem := b.spirvType(inner.Element)
		return b.uniq.Pointer(storageClassFor(inner.Space), elem)
	case ir.GroupType:
		elem := b.spirvType(inner.Element)
		return b.uniq.Pointer(StorageClassCrossWorkgroup, elem)
	case ir.CoopMatrixType:
		return b.coopMatrixType(inner)
	default:
		panic(fmt.Sprintf("spirv: unhandled type %T", inner))
	}
}

func (b *Backend) scalarType(kind ir.ScalarKind) *ID {
	b.feat.noteScalarKind(kind.ComponentWidth(), kind.IsFloat())
	if kind.IsComplex() {
		real := b.scalarType(kind.RealComponent())
		return b.uniq.Vector(real, 2)
	}
	if kind == ir.BF16 {
		// bf16 has no native SPIR-V storage type on this target; values
		// round-trip through f32 and are only ever stored packed as u16.
		b.feat.usedBFloat16Conv = true
		return b.uniq.Scalar(ir.I16)
	}
	return b.uniq.Scalar(kind)
}

func storageClassFor(space ir.AddressSpace) StorageClass {
	switch space {
	case ir.Local:
		return StorageClassWorkgroup
	case ir.Private:
		return StorageClassFunction
	default:
		return StorageClassCrossWorkgroup
	}
}

// result returns the id backing v, which must already have been
// lowered (operands are always defined before their users in a
// verified, dominance-ordered region).
func (b *Backend) result(v *ir.Value) *ID {
	if id, ok := b.values[v]; ok {
		return id
	}
	panic(fmt.Sprintf("spirv: value %q used before its defining instruction was lowered", v.Name))
}

func (b *Backend) define(inst *ir.Instruction, id *ID) {
	if len(inst.Results) == 1 {
		b.values[inst.Results[0]] = id
	}
}
