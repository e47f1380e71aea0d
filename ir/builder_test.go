package ir

import "testing"

func TestBuilderArithVerifies(t *testing.T) {
	prog := NewProgram()
	ctx := prog.Ctx
	fn := prog.NewFunction("add_one")
	f32 := ctx.Scalar(F32)
	x := fn.AddParam(f32, "x")
	out := fn.AddParam(ctx.Memref(f32, nil, nil, Global), "out")

	b := NewBuilder(ctx, fn.Body)
	one := b.Constant(FloatConst(1), f32, Location{})
	sum := b.Arith(Add, x, one, Location{})
	b.Store(StoreRegular, out, sum, nil, Location{})

	if err := Verify(prog); err != nil {
		t.Fatalf("unexpected verify error: %v", err)
	}
	if sum.Type != f32 {
		t.Errorf("Arith result type = %v, want f32", sum.Type)
	}
}

func TestBuilderUndefinedOperandFails(t *testing.T) {
	prog := NewProgram()
	ctx := prog.Ctx
	fn := prog.NewFunction("bad")
	f32 := ctx.Scalar(F32)

	// Construct a stray value never produced by any instruction in fn,
	// then reference it — the verifier must flag it as undefined.
	stray := NewValue(f32, "stray")
	b := NewBuilder(ctx, fn.Body)
	b.Arith(Add, stray, stray, Location{})

	err := Verify(prog)
	if err == nil {
		t.Fatal("expected verify error for undefined operand, got nil")
	}
	diags := Diagnostics(err)
	if len(diags) == 0 || diags[0].Kind != ErrSPIRVUndefinedValue {
		t.Errorf("diagnostics = %v, want one ErrSPIRVUndefinedValue", diags)
	}
}

func TestBuilderForLoopIterArgsVerify(t *testing.T) {
	prog := NewProgram()
	ctx := prog.Ctx
	fn := prog.NewFunction("sum_loop")
	idx := ctx.Scalar(Index)

	b := NewBuilder(ctx, fn.Body)
	from := b.Constant(IntConst(0), idx, Location{})
	to := b.Constant(IntConst(10), idx, Location{})
	zero := b.Constant(IntConst(0), idx, Location{})

	fb := b.BeginFor(from, to, nil, []*Value{zero}, idx, Location{})
	body, k, iterArgs := fb.Body(idx)
	next := body.Arith(Add, iterArgs[0], k, Location{})
	body.Yield([]*Value{next}, Location{})
	results := fb.End()

	if len(results) != 1 {
		t.Fatalf("for.End() returned %d results, want 1", len(results))
	}
	if err := Verify(prog); err != nil {
		t.Fatalf("unexpected verify error: %v", err)
	}
}

func TestBuilderYieldArityMismatchFails(t *testing.T) {
	prog := NewProgram()
	ctx := prog.Ctx
	fn := prog.NewFunction("bad_if")
	boolT := ctx.Bool()
	f32 := ctx.Scalar(F32)

	b := NewBuilder(ctx, fn.Body)
	cond := b.Constant(IntConst(1), boolT, Location{})
	ib := b.BeginIf(cond, []Type{f32}, Location{})
	then := ib.Then()
	// Yield zero values when the if expects one result.
	then.Yield(nil, Location{})
	ib.End()

	err := Verify(prog)
	if err == nil {
		t.Fatal("expected a yield-arity diagnostic, got nil")
	}
	diags := Diagnostics(err)
	found := false
	for _, d := range diags {
		if d.Kind == ErrYieldMismatch {
			found = true
		}
	}
	if !found {
		t.Errorf("diagnostics = %v, want ErrYieldMismatch", diags)
	}
}
