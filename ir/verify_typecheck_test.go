package ir

import "testing"

func TestVerifyRejectsShiftOnFloatOperand(t *testing.T) {
	prog := NewProgram()
	ctx := prog.Ctx
	fn := prog.NewFunction("bad_shift")
	f32 := ctx.Scalar(F32)

	b := NewBuilder(ctx, fn.Body)
	x := b.Constant(FloatConst(1), f32, Location{})
	y := b.Constant(FloatConst(2), f32, Location{})
	b.Arith(Shl, x, y, Location{})

	err := Verify(prog)
	if err == nil {
		t.Fatal("expected verify error for shl on float operands, got nil")
	}
	if diags := Diagnostics(err); len(diags) == 0 || diags[0].Kind != ErrFPUnsupported {
		t.Errorf("diagnostics = %v, want ErrFPUnsupported", diags)
	}
}

func TestVerifyRejectsOrderedCompareOnComplex(t *testing.T) {
	prog := NewProgram()
	ctx := prog.Ctx
	fn := prog.NewFunction("bad_compare")
	c32 := ctx.Scalar(C32)

	b := NewBuilder(ctx, fn.Body)
	x := b.Constant(ComplexConst{Re: 1}, c32, Location{})
	y := b.Constant(ComplexConst{Re: 2}, c32, Location{})
	b.Compare(Lt, x, y, Location{})

	err := Verify(prog)
	if err == nil {
		t.Fatal("expected verify error for lt on complex operands, got nil")
	}
	if diags := Diagnostics(err); len(diags) == 0 || diags[0].Kind != ErrComplexUnsupported {
		t.Errorf("diagnostics = %v, want ErrComplexUnsupported", diags)
	}
}

func TestVerifyRejectsCastAcrossComplexBoundary(t *testing.T) {
	prog := NewProgram()
	ctx := prog.Ctx
	fn := prog.NewFunction("bad_cast")
	f32 := ctx.Scalar(F32)
	c32 := ctx.Scalar(C32)

	b := NewBuilder(ctx, fn.Body)
	x := b.Constant(ComplexConst{Re: 1}, c32, Location{})
	b.Cast(x, f32, Location{})

	err := Verify(prog)
	if err == nil {
		t.Fatal("expected verify error for c32->f32 cast, got nil")
	}
	if diags := Diagnostics(err); len(diags) == 0 || diags[0].Kind != ErrForbiddenCast {
		t.Errorf("diagnostics = %v, want ErrForbiddenCast", diags)
	}
}

func TestVerifyRejectsBooleanArithOperand(t *testing.T) {
	prog := NewProgram()
	ctx := prog.Ctx
	fn := prog.NewFunction("bad_bool_arith")
	f32 := ctx.Scalar(F32)

	b := NewBuilder(ctx, fn.Body)
	x := b.Constant(FloatConst(1), f32, Location{})
	y := b.Constant(FloatConst(2), f32, Location{})
	cond := b.Compare(Eq, x, y, Location{})
	b.Arith(Add, cond, cond, Location{})

	err := Verify(prog)
	if err == nil {
		t.Fatal("expected verify error for arith over a boolean operand, got nil")
	}
	if diags := Diagnostics(err); len(diags) == 0 || diags[0].Kind != ErrBooleanUnsupported {
		t.Errorf("diagnostics = %v, want ErrBooleanUnsupported", diags)
	}
}

func TestVerifyRejectsCoopMulAddShapeMismatch(t *testing.T) {
	prog := NewProgram()
	ctx := prog.Ctx
	fn := prog.NewFunction("bad_mul_add")
	f32 := ScalarType{Kind: F32}
	aTy := ctx.CoopMatrix(f32, 8, 8, CoopA)
	bTy := ctx.CoopMatrix(f32, 16, 8, CoopB) // A.cols (8) != B.rows (16)
	cTy := ctx.CoopMatrix(f32, 8, 8, CoopAcc)

	a := fn.AddParam(aTy, "a")
	bVal := fn.AddParam(bTy, "b")
	c := fn.AddParam(cTy, "c")
	b := NewBuilder(ctx, fn.Body)
	_ = b.CoopMulAdd(a, bVal, c, cTy, Location{})

	err := Verify(prog)
	if err == nil {
		t.Fatal("expected verify error for mismatched coop_mul_add shapes, got nil")
	}
	if diags := Diagnostics(err); len(diags) == 0 || diags[0].Kind != ErrInternalCompilerError {
		t.Errorf("diagnostics = %v, want ErrInternalCompilerError", diags)
	}
}

func TestVerifyRejectsCoopReduceOnComplexComponent(t *testing.T) {
	prog := NewProgram()
	ctx := prog.Ctx
	fn := prog.NewFunction("bad_coop_reduce")
	c32 := ScalarType{Kind: C32}
	matTy := ctx.CoopMatrix(c32, 8, 8, CoopAcc)
	scalarTy := ctx.Scalar(C32)

	mat := fn.AddParam(matTy, "m")
	b := NewBuilder(ctx, fn.Body)
	b.CoopReduce(ReduceAdd, mat, scalarTy, Location{})

	err := Verify(prog)
	if err == nil {
		t.Fatal("expected verify error for coop_reduce over complex components, got nil")
	}
	if diags := Diagnostics(err); len(diags) == 0 || diags[0].Kind != ErrComplexUnsupported {
		t.Errorf("diagnostics = %v, want ErrComplexUnsupported", diags)
	}
}

func TestVerifyRejectsMemrefShapeStrideMismatch(t *testing.T) {
	prog := NewProgram()
	ctx := prog.Ctx
	fn := prog.NewFunction("bad_memref")
	f32 := ctx.Scalar(F32)
	badMemref := Type{Inner: MemrefType{Element: f32, Shape: []int64{4, 4}, Stride: []int64{1}, Space: Private}}

	b := NewBuilder(ctx, fn.Body)
	b.Alloca(badMemref, Location{})

	err := Verify(prog)
	if err == nil {
		t.Fatal("expected verify error for shape/stride rank mismatch, got nil")
	}
	if diags := Diagnostics(err); len(diags) == 0 || diags[0].Kind != ErrInternalCompilerError {
		t.Errorf("diagnostics = %v, want ErrInternalCompilerError", diags)
	}
}
