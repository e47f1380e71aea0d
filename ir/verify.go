package ir

import "fmt"

// Verify checks every function of p against the invariants of §4.1 and
// §3, collecting every violation rather than stopping at the first
// (the verifier is the sole pass in the pipeline permitted to do so).
// It returns nil if p is well-formed.
func Verify(p *Program) error {
	var dl DiagnosticList
	v := &verifier{dl: &dl}
	for _, fn := range p.Functions {
		v.verifyFunction(fn)
	}
	return dl.Err()
}

type verifier struct {
	dl *DiagnosticList
	// defined tracks, per region currently on the walk stack, which
	// values are visible (dominance proxy: producer precedes consumer
	// in the same or an enclosing region).
	defined map[*Value]bool
}

func (v *verifier) verifyFunction(fn *Function) {
	v.defined = make(map[*Value]bool, 64)
	for _, p := range fn.Params {
		v.defined[p] = true
	}
	v.verifyRegion(fn.Body, nil)
}

// verifyRegion walks r in order, checking each instruction's operands
// dominate (were defined earlier in r or an enclosing region) before
// recording its own results as defined. owner is the instruction that
// owns r, or nil for a function body.
func (v *verifier) verifyRegion(r *Region, owner *Instruction) {
	for _, p := range r.Params {
		v.defined[p] = true
	}
	for i, inst := range r.Instrs {
		v.verifyOperandsDominate(inst)
		v.verifyInstruction(inst, r, i == len(r.Instrs)-1, owner)
		for _, res := range inst.Results {
			v.defined[res] = true
		}
	}
}

func (v *verifier) verifyOperandsDominate(inst *Instruction) {
	for _, op := range inst.Operands {
		if op != nil && !v.defined[op] {
			v.dl.Add(ErrSPIRVUndefinedValue, inst.Loc,
				"operand %q used before its definition dominates this instruction", op.Name)
		}
	}
}

func (v *verifier) verifyInstruction(inst *Instruction, parent *Region, isLast bool, owner *Instruction) {
	switch k := inst.Kind.(type) {
	case If:
		v.verifyIf(inst, k)
	case For:
		v.verifyFor(inst, k)
	case Parallel:
		v.verifyParallel(inst)
	case Yield:
		v.verifyYield(inst, parent, isLast, owner)
	case Barrier:
		v.verifyBarrier(inst, owner, k)
	case Load:
		v.verifyIndexed(inst, inst.Operands[0], inst.Operands[1:])
	case Store:
		v.verifyIndexed(inst, inst.Operands[0], inst.Operands[2:])
	case CoopLoad:
		v.verifyIndexed(inst, inst.Operands[0], inst.Operands[1:])
	case CoopStore:
		v.verifyIndexed(inst, inst.Operands[0], inst.Operands[2:])
	case Arith:
		v.verifyArith(inst, k)
	case Unary:
		v.verifyUnary(inst, k)
	case Compare:
		v.verifyCompare(inst, k)
	case Cast:
		v.verifyCast(inst)
	case CoopMulAdd:
		v.verifyCoopMulAdd(inst)
	case CoopScale:
		v.verifyCoopScale(inst)
	case CoopReduce:
		v.verifyCoopReduce(inst, k)
	case Alloca, Subview, Expand, Fuse:
		for _, res := range inst.Results {
			v.verifyMemrefShape(inst, res.Type)
		}
	}
	for _, region := range inst.Regions {
		v.verifyRegion(region, inst)
	}
}

// scalarKindOf returns t's ScalarKind and true if t is a scalar type.
func scalarKindOf(t Type) (ScalarKind, bool) {
	s, ok := t.Inner.(ScalarType)
	return s.Kind, ok
}

func (v *verifier) isBoolean(t Type) bool {
	_, ok := t.Inner.(BooleanType)
	return ok
}

// verifyArith checks the operand/result kind constraints of a binary
// arithmetic instruction (§4.1 invariant: "an arithmetic op's operands
// must be scalar"). Bitwise and shift ops reject float and complex
// operand kinds; min/max reject only complex ones.
func (v *verifier) verifyArith(inst *Instruction, k Arith) {
	lhs, rhs := inst.Operands[0], inst.Operands[1]
	if v.isBoolean(lhs.Type) || v.isBoolean(rhs.Type) {
		v.dl.Add(ErrBooleanUnsupported, inst.Loc, "%s does not accept a boolean operand", k.Name())
		return
	}
	lk, lok := scalarKindOf(lhs.Type)
	rk, rok := scalarKindOf(rhs.Type)
	if !lok || !rok {
		v.dl.Add(ErrExpectedScalar, inst.Loc, "%s requires scalar operands", k.Name())
		return
	}
	switch k.Op {
	case And, Or, Xor, Shl, Shr:
		if lk.IsFloat() || rk.IsFloat() {
			v.dl.Add(ErrFPUnsupported, inst.Loc, "%s does not accept floating-point operands", k.Name())
		}
		if lk.IsComplex() || rk.IsComplex() {
			v.dl.Add(ErrComplexUnsupported, inst.Loc, "%s does not accept complex operands", k.Name())
		}
	case Min, Max:
		if lk.IsComplex() || rk.IsComplex() {
			v.dl.Add(ErrComplexUnsupported, inst.Loc, "%s has no total order over complex operands", k.Name())
		}
	}
}

// verifyUnary checks that conj/im/re only apply to complex operands and
// that not rejects float/complex operands (§4.1).
func (v *verifier) verifyUnary(inst *Instruction, k Unary) {
	if v.isBoolean(inst.Operands[0].Type) {
		v.dl.Add(ErrBooleanUnsupported, inst.Loc, "%s does not accept a boolean operand", k.Name())
		return
	}
	kind, ok := scalarKindOf(inst.Operands[0].Type)
	if !ok {
		v.dl.Add(ErrExpectedScalar, inst.Loc, "%s requires a scalar operand", k.Name())
		return
	}
	switch k.Op {
	case Conj, Im, Re:
		if !kind.IsComplex() {
			v.dl.Add(ErrComplexUnsupported, inst.Loc, "%s requires a complex operand, got %s", k.Name(), kind)
		}
	case Not:
		if kind.IsFloat() {
			v.dl.Add(ErrFPUnsupported, inst.Loc, "not does not accept a floating-point operand")
		}
		if kind.IsComplex() {
			v.dl.Add(ErrComplexUnsupported, inst.Loc, "not does not accept a complex operand")
		}
	}
}

// verifyCompare rejects the ordered comparisons (lt/le/gt/ge) over
// complex operands, which have no total order.
func (v *verifier) verifyCompare(inst *Instruction, k Compare) {
	lk, lok := scalarKindOf(inst.Operands[0].Type)
	rk, rok := scalarKindOf(inst.Operands[1].Type)
	if !lok || !rok {
		v.dl.Add(ErrExpectedScalar, inst.Loc, "%s requires scalar operands", k.Name())
		return
	}
	switch k.Op {
	case Lt, Le, Gt, Ge:
		if lk.IsComplex() || rk.IsComplex() {
			v.dl.Add(ErrComplexUnsupported, inst.Loc, "%s has no total order over complex operands", k.Name())
		}
	}
}

// verifyCast rejects a cast from a complex kind to a real kind: the
// lanes of a complex value are read through re/im, not cast. A cast
// from a real kind to a complex kind is accepted; it sets the real lane
// and zeroes the imaginary one.
func (v *verifier) verifyCast(inst *Instruction) {
	srcKind, srcOk := scalarKindOf(inst.Operands[0].Type)
	dstKind, dstOk := scalarKindOf(inst.Results[0].Type)
	if !srcOk || !dstOk {
		if _, isBool := inst.Results[0].Type.Inner.(BooleanType); isBool && srcOk {
			return
		}
		v.dl.Add(ErrExpectedScalar, inst.Loc, "cast requires scalar operand and result")
		return
	}
	if srcKind.IsComplex() && !dstKind.IsComplex() {
		v.dl.Add(ErrForbiddenCast, inst.Loc, "cast cannot convert complex %s to real %s", srcKind, dstKind)
	}
}

// verifyCoopMulAdd checks the four cooperative-matrix operands/result of
// a coop_mul_add share compatible shapes (A.cols == B.rows, C and R
// match A.rows x B.cols) and carry no complex component (§4.7
// invariant 3).
func (v *verifier) verifyCoopMulAdd(inst *Instruction) {
	a, bOperand, c := inst.Operands[0], inst.Operands[1], inst.Operands[2]
	r := inst.Results[0]
	aT, aOk := a.Type.Inner.(CoopMatrixType)
	bT, bOk := bOperand.Type.Inner.(CoopMatrixType)
	cT, cOk := c.Type.Inner.(CoopMatrixType)
	rT, rOk := r.Type.Inner.(CoopMatrixType)
	if !aOk || !bOk || !cOk || !rOk {
		v.dl.Add(ErrExpectedCoopMatrix, inst.Loc, "coop_mul_add requires cooperative-matrix operands and result")
		return
	}
	if aT.Cols != bT.Rows {
		v.dl.Add(ErrInternalCompilerError, inst.Loc,
			"coop_mul_add operand shape mismatch: A is %dx%d, B is %dx%d", aT.Rows, aT.Cols, bT.Rows, bT.Cols)
	}
	if cT.Rows != aT.Rows || cT.Cols != bT.Cols || rT.Rows != aT.Rows || rT.Cols != bT.Cols {
		v.dl.Add(ErrInternalCompilerError, inst.Loc, "coop_mul_add accumulator/result shape does not match A.rows x B.cols")
	}
	if aT.Component.Kind.IsComplex() || bT.Component.Kind.IsComplex() || cT.Component.Kind.IsComplex() {
		v.dl.Add(ErrComplexUnsupported, inst.Loc, "coop_mul_add does not support complex components")
	}
}

func (v *verifier) verifyCoopScale(inst *Instruction) {
	scalar, matrix := inst.Operands[0], inst.Operands[1]
	if _, ok := scalarKindOf(scalar.Type); !ok {
		v.dl.Add(ErrExpectedScalar, inst.Loc, "coop_scale requires a scalar multiplier")
	}
	if _, ok := matrix.Type.Inner.(CoopMatrixType); !ok {
		v.dl.Add(ErrExpectedCoopMatrix, inst.Loc, "coop_scale requires a cooperative-matrix operand")
	}
}

func (v *verifier) verifyCoopReduce(inst *Instruction, k CoopReduce) {
	t, ok := inst.Operands[0].Type.Inner.(CoopMatrixType)
	if !ok {
		v.dl.Add(ErrExpectedCoopMatrix, inst.Loc, "%s requires a cooperative-matrix operand", k.Name())
		return
	}
	if t.Component.Kind.IsComplex() {
		v.dl.Add(ErrComplexUnsupported, inst.Loc, "%s does not support complex components", k.Name())
	}
}

// verifyMemrefShape enforces invariant 2 of §3: a memref's Shape and
// Stride slices have the same length (one entry per dimension).
func (v *verifier) verifyMemrefShape(inst *Instruction, t Type) {
	m, ok := t.Inner.(MemrefType)
	if !ok {
		return
	}
	if len(m.Shape) != len(m.Stride) {
		v.dl.Add(ErrInternalCompilerError, inst.Loc,
			"memref shape has %d dimension(s) but stride has %d", len(m.Shape), len(m.Stride))
	}
}

func (v *verifier) verifyIf(inst *Instruction, k If) {
	want := 1
	if k.HasElse {
		want = 2
	}
	if len(inst.Regions) != want {
		v.dl.Add(ErrInternalCompilerError, inst.Loc,
			"if expects %d region(s), has %d", want, len(inst.Regions))
	}
}

func (v *verifier) verifyFor(inst *Instruction, _ For) {
	if len(inst.Regions) != 1 {
		v.dl.Add(ErrInternalCompilerError, inst.Loc,
			"for expects 1 region, has %d", len(inst.Regions))
	}
}

func (v *verifier) verifyParallel(inst *Instruction) {
	if len(inst.Regions) != 1 {
		v.dl.Add(ErrInternalCompilerError, inst.Loc,
			"parallel expects 1 region, has %d", len(inst.Regions))
	}
}

// verifyYield checks that a yield is the last instruction of an if/for
// body region and that its operand count matches the owning
// instruction's result arity.
func (v *verifier) verifyYield(inst *Instruction, parent *Region, isLast bool, owner *Instruction) {
	if owner == nil {
		v.dl.Add(ErrUnexpectedYield, inst.Loc, "yield outside an if/for region")
		return
	}
	switch owner.Kind.(type) {
	case If, For:
	default:
		v.dl.Add(ErrUnexpectedYield, inst.Loc, "yield inside a %s region", owner.Kind.Name())
		return
	}
	if !isLast {
		v.dl.Add(ErrUnexpectedYield, inst.Loc, "yield must be the last instruction of its region")
	}
	if len(inst.Operands) != len(owner.Results) {
		v.dl.Add(ErrYieldMismatch, inst.Loc,
			"yield supplies %d value(s), owner expects %d", len(inst.Operands), len(owner.Results))
	}
}

// verifyBarrier enforces "a barrier may appear only outside a parallel
// region (collective context) unless its fence set is empty" (§4.1).
func (v *verifier) verifyBarrier(inst *Instruction, owner *Instruction, k Barrier) {
	if owner == nil {
		return
	}
	if _, inParallel := owner.Kind.(Parallel); inParallel && k.Fences != FenceNone {
		v.dl.Add(ErrInternalCompilerError, inst.Loc,
			"barrier with non-empty fence set inside a parallel region")
	}
}

// verifyIndexed checks that an indexing instruction supplies exactly
// as many indices as the base's memref rank, or exactly one for a
// group base (§4.1).
func (v *verifier) verifyIndexed(inst *Instruction, base *Value, indices []*Value) {
	switch t := base.Type.Inner.(type) {
	case MemrefType:
		if len(indices) != t.Rank() {
			v.dl.Add(ErrInvalidNumberOfIndices, inst.Loc,
				"memref of rank %d indexed with %d index/indices", t.Rank(), len(indices))
		}
	case GroupType:
		if len(indices) != 1 {
			v.dl.Add(ErrInvalidNumberOfIndices, inst.Loc,
				"group load/store requires exactly one index, got %d", len(indices))
		}
	default:
		v.dl.Add(ErrExpectedMemrefOrGroup, inst.Loc,
			"%s requires a memref or group base, got %s", inst.Kind.Name(), fmt.Sprint(base.Type.Inner))
	}
}
