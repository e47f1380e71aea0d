package ir

// Builder provides an imperative, append-only API for constructing a
// Function's body, the way a client (a compile-time recipe, or a
// test) assembles IR without hand-managing use-lists and region
// nesting: each method appends one instruction and returns the
// pointer-typed Value it produces.
type Builder struct {
	ctx  *Context
	cur  *Region
}

// NewBuilder returns a Builder that appends instructions to r.
func NewBuilder(ctx *Context, r *Region) *Builder {
	return &Builder{ctx: ctx, cur: r}
}

// InsertionPoint returns the region currently receiving instructions.
func (b *Builder) InsertionPoint() *Region { return b.cur }

// SetInsertionPoint redirects subsequent instruction-appending calls to r.
func (b *Builder) SetInsertionPoint(r *Region) { b.cur = r }

func (b *Builder) append(inst *Instruction) *Instruction {
	b.cur.Append(inst)
	return inst
}

// Arith emits a binary arithmetic instruction and returns its result.
func (b *Builder) Arith(op ArithOp, lhs, rhs *Value, loc Location) *Value {
	inst := NewInstruction(Arith{Op: op}, []*Value{lhs, rhs})
	inst.Loc = loc
	b.append(inst)
	return inst.AddResult(lhs.Type, "")
}

// Unary emits a unary instruction and returns its result.
func (b *Builder) Unary(op UnaryOp, v *Value, resultType Type, loc Location) *Value {
	inst := NewInstruction(Unary{Op: op}, []*Value{v})
	inst.Loc = loc
	b.append(inst)
	return inst.AddResult(resultType, "")
}

// Compare emits a comparison instruction and returns its Boolean result.
func (b *Builder) Compare(op CompareOp, lhs, rhs *Value, loc Location) *Value {
	inst := NewInstruction(Compare{Op: op}, []*Value{lhs, rhs})
	inst.Loc = loc
	b.append(inst)
	return inst.AddResult(b.ctx.Bool(), "")
}

// Constant emits a constant-materialization instruction.
func (b *Builder) Constant(v ConstantValue, t Type, loc Location) *Value {
	inst := NewInstruction(Constant{Value: v}, nil)
	inst.Loc = loc
	b.append(inst)
	return inst.AddResult(t, "")
}

// Cast emits a type-conversion instruction.
func (b *Builder) Cast(v *Value, target Type, loc Location) *Value {
	inst := NewInstruction(Cast{}, []*Value{v})
	inst.Loc = loc
	b.append(inst)
	return inst.AddResult(target, "")
}

// Alloca emits a stack allocation of a memref of type t (t.Inner must
// be a MemrefType in the Private address space).
func (b *Builder) Alloca(t Type, loc Location) *Value {
	inst := NewInstruction(Alloca{}, nil)
	inst.Loc = loc
	b.append(inst)
	return inst.AddResult(t, "")
}

// Load emits a load from base indexed by indices, returning a value of
// elementType.
func (b *Builder) Load(base *Value, indices []*Value, elementType Type, loc Location) *Value {
	operands := append([]*Value{base}, indices...)
	inst := NewInstruction(Load{}, operands)
	inst.Loc = loc
	b.append(inst)
	return inst.AddResult(elementType, "")
}

// Store emits a store of value into base at indices.
func (b *Builder) Store(flag StoreFlag, base, value *Value, indices []*Value, loc Location) *Instruction {
	operands := append([]*Value{base, value}, indices...)
	inst := NewInstruction(Store{Flag: flag}, operands)
	inst.Loc = loc
	return b.append(inst)
}

// Size emits a query of one dimension of base's shape.
func (b *Builder) Size(base *Value, dim int, indexType Type, loc Location) *Value {
	inst := NewInstruction(Size{Dim: dim}, []*Value{base})
	inst.Loc = loc
	b.append(inst)
	return inst.AddResult(indexType, "")
}

// Barrier emits a work-group barrier with the given fence set.
func (b *Builder) Barrier(fences Fence, loc Location) *Instruction {
	inst := NewInstruction(Barrier{Fences: fences}, nil)
	inst.Loc = loc
	return b.append(inst)
}

// LifetimeStop marks the end of an alloca-produced memref's lifetime.
func (b *Builder) LifetimeStop(alloca *Value, loc Location) *Instruction {
	inst := NewInstruction(LifetimeStop{}, []*Value{alloca})
	inst.Loc = loc
	return b.append(inst)
}

// Yield terminates the current region, handing vals back as the
// enclosing if/for's results.
func (b *Builder) Yield(vals []*Value, loc Location) *Instruction {
	inst := NewInstruction(Yield{}, vals)
	inst.Loc = loc
	return b.append(inst)
}

// IfBuilder holds the in-progress state of an `if` being constructed.
type IfBuilder struct {
	b        *Builder
	inst     *Instruction
	resultTs []Type
}

// BeginIf emits an `if` instruction with the given result types and
// returns an IfBuilder positioned to receive the "then" region's
// instructions via Then(). Call Else() to add an else region, then
// End() to finish and obtain the if's results.
func (b *Builder) BeginIf(cond *Value, resultTypes []Type, loc Location) *IfBuilder {
	inst := NewInstruction(If{}, []*Value{cond})
	inst.Loc = loc
	b.append(inst)
	return &IfBuilder{b: b, inst: inst, resultTs: resultTypes}
}

// Then returns a Builder appending to the if's then-region.
func (ib *IfBuilder) Then() *Builder {
	r := ib.inst.AddRegion()
	return NewBuilder(ib.b.ctx, r)
}

// Else marks the if as two-armed and returns a Builder appending to
// its else-region. Must be called at most once, after Then's builder
// has emitted its yield.
func (ib *IfBuilder) Else() *Builder {
	ib.inst.Kind = If{HasElse: true}
	r := ib.inst.AddRegion()
	return NewBuilder(ib.b.ctx, r)
}

// End finalizes the if by allocating its results and returns them. It
// does not change any builder's insertion point.
func (ib *IfBuilder) End() []*Value {
	for _, t := range ib.resultTs {
		ib.inst.AddResult(t, "")
	}
	return ib.inst.Results
}

// ForBuilder holds the in-progress state of a `for` being constructed.
type ForBuilder struct {
	b        *Builder
	inst     *Instruction
	resultTs []Type
}

// BeginFor emits a `for` instruction iterating [from, to) with an
// optional step and initial iter-arg values, returning a ForBuilder.
// Call Body() to obtain a Builder for the loop body (whose region
// Params are [inductionVar, iterArg...]), then End().
func (b *Builder) BeginFor(from, to *Value, step *Value, initIterArgs []*Value, indexType Type, loc Location) *ForBuilder {
	operands := []*Value{from, to}
	hasStep := step != nil
	if hasStep {
		operands = append(operands, step)
	}
	operands = append(operands, initIterArgs...)
	inst := NewInstruction(For{HasStep: hasStep}, operands)
	inst.Loc = loc
	b.append(inst)

	resultTs := make([]Type, len(initIterArgs))
	for i, v := range initIterArgs {
		resultTs[i] = v.Type
	}
	return &ForBuilder{b: b, inst: inst, resultTs: resultTs}
}

// Body returns a Builder for the loop body region, plus the induction
// variable and the per-iteration iter-arg values that region.Params
// exposes.
func (fb *ForBuilder) Body(indexType Type) (*Builder, *Value, []*Value) {
	r := fb.inst.AddRegion()
	induction := NewValue(indexType, "")
	induction.IsIterArg = true
	r.Params = append(r.Params, induction)

	iterArgs := make([]*Value, len(fb.resultTs))
	for i, t := range fb.resultTs {
		v := NewValue(t, "")
		v.IsIterArg = true
		r.Params = append(r.Params, v)
		iterArgs[i] = v
	}
	return NewBuilder(fb.b.ctx, r), induction, iterArgs
}

// End finalizes the for, allocating its results (the final iter-arg
// values).
func (fb *ForBuilder) End() []*Value {
	for _, t := range fb.resultTs {
		fb.inst.AddResult(t, "")
	}
	return fb.inst.Results
}

// BeginParallel emits a `parallel` instruction and returns a Builder
// for its body region.
func (b *Builder) BeginParallel(loc Location) *Builder {
	inst := NewInstruction(Parallel{}, nil)
	inst.Loc = loc
	b.append(inst)
	r := inst.AddRegion()
	return NewBuilder(b.ctx, r)
}

// --- Builtin queries -------------------------------------------------

func (b *Builder) query(kind Kind, loc Location) *Value {
	inst := NewInstruction(kind, nil)
	inst.Loc = loc
	b.append(inst)
	return inst.AddResult(b.ctx.Scalar(Index), "")
}

// GroupID emits a query of the work-group index along dim.
func (b *Builder) GroupID(dim int, loc Location) *Value { return b.query(GroupID{Dim: dim}, loc) }

// GroupSize emits a query of the work-group extent along dim.
func (b *Builder) GroupSize(dim int, loc Location) *Value { return b.query(GroupSize{Dim: dim}, loc) }

// NumSubgroups emits a query of the number of subgroups per work-group.
func (b *Builder) NumSubgroups(loc Location) *Value { return b.query(NumSubgroups{}, loc) }

// SubgroupID emits a query of the calling lane's subgroup index.
func (b *Builder) SubgroupID(loc Location) *Value { return b.query(SubgroupID{}, loc) }

// SubgroupLocalID emits a query of the calling lane's index within its subgroup.
func (b *Builder) SubgroupLocalID(loc Location) *Value { return b.query(SubgroupLocalID{}, loc) }

// SubgroupSize emits a query of the subgroup size.
func (b *Builder) SubgroupSize(loc Location) *Value { return b.query(SubgroupSizeQuery{}, loc) }

// WorkGroupReduce emits a collective reduction of v across the work-group.
func (b *Builder) WorkGroupReduce(op ReduceOp, v *Value, loc Location) *Value {
	inst := NewInstruction(WorkGroup{Op: op}, []*Value{v})
	inst.Loc = loc
	b.append(inst)
	return inst.AddResult(v.Type, "")
}

// --- Memref views ------------------------------------------------------

// Subview carves a sub-memref of base at the given per-dimension
// offsets and sizes, returning a value of resultType.
func (b *Builder) Subview(base *Value, offsets, sizes []*Value, resultType Type, loc Location) *Value {
	operands := append([]*Value{base}, offsets...)
	operands = append(operands, sizes...)
	inst := NewInstruction(Subview{}, operands)
	inst.Loc = loc
	b.append(inst)
	return inst.AddResult(resultType, "")
}

// Expand splits dimension dim of base's memref type into the shape
// described by into, returning a value of resultType.
func (b *Builder) Expand(base *Value, dim int, into []int64, resultType Type, loc Location) *Value {
	inst := NewInstruction(Expand{Dim: dim, Into: into}, []*Value{base})
	inst.Loc = loc
	b.append(inst)
	return inst.AddResult(resultType, "")
}

// Fuse merges dimensions [from, to] of base's memref type into one,
// returning a value of resultType.
func (b *Builder) Fuse(base *Value, from, to int, resultType Type, loc Location) *Value {
	inst := NewInstruction(Fuse{From: from, To: to}, []*Value{base})
	inst.Loc = loc
	b.append(inst)
	return inst.AddResult(resultType, "")
}

// --- Cooperative matrix --------------------------------------------------

// CoopLoad loads a cooperative-matrix value from base at indices.
func (b *Builder) CoopLoad(base *Value, indices []*Value, transpose, checked bool, resultType Type, loc Location) *Value {
	operands := append([]*Value{base}, indices...)
	inst := NewInstruction(CoopLoad{Transpose: transpose, Checked: checked}, operands)
	inst.Loc = loc
	b.append(inst)
	return inst.AddResult(resultType, "")
}

// CoopStore stores a cooperative-matrix value to base at indices.
func (b *Builder) CoopStore(flag StoreFlag, base, value *Value, indices []*Value, loc Location) *Instruction {
	operands := append([]*Value{base, value}, indices...)
	inst := NewInstruction(CoopStore{Flag: flag}, operands)
	inst.Loc = loc
	return b.append(inst)
}

// CoopMulAdd computes c += a*b, returning the updated accumulator.
func (b *Builder) CoopMulAdd(a, bOperand, c *Value, resultType Type, loc Location) *Value {
	inst := NewInstruction(CoopMulAdd{}, []*Value{a, bOperand, c})
	inst.Loc = loc
	b.append(inst)
	return inst.AddResult(resultType, "")
}

// CoopScale multiplies every component of matrix by scalar.
func (b *Builder) CoopScale(scalar, matrix *Value, loc Location) *Value {
	inst := NewInstruction(CoopScale{}, []*Value{scalar, matrix})
	inst.Loc = loc
	b.append(inst)
	return inst.AddResult(matrix.Type, "")
}

// CoopPrefetch issues a non-binding prefetch for a later CoopLoad from
// base at indices.
func (b *Builder) CoopPrefetch(base *Value, indices []*Value, loc Location) *Instruction {
	operands := append([]*Value{base}, indices...)
	inst := NewInstruction(CoopPrefetch{}, operands)
	inst.Loc = loc
	return b.append(inst)
}

// CoopReduce reduces every component of matrix into a single value of
// resultType.
func (b *Builder) CoopReduce(op ReduceOp, matrix *Value, resultType Type, loc Location) *Value {
	inst := NewInstruction(CoopReduce{Op: op}, []*Value{matrix})
	inst.Loc = loc
	b.append(inst)
	return inst.AddResult(resultType, "")
}
