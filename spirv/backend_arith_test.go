package spirv

import (
	"testing"

	"github.com/gogpu/tensorspv/device"
	"github.com/gogpu/tensorspv/ir"
)

func countOpcode(m *Module, sec section, op OpCode) int {
	n := 0
	for _, inst := range m.sections[sec] {
		if inst.Opcode == op {
			n++
		}
	}
	return n
}

func buildBinaryArithFunction(op ir.ArithOp) *ir.Program {
	prog := ir.NewProgram()
	ctx := prog.Ctx
	f32 := ctx.Scalar(ir.F32)
	fn := prog.NewFunction("arith")
	x := fn.AddParam(f32, "x")
	y := fn.AddParam(f32, "y")

	bd := ir.NewBuilder(ctx, fn.Body)
	loc := ir.Location{File: "backend_arith_test.go"}
	bd.Arith(op, x, y, loc)
	return prog
}

func TestLowerArithEmitsFAddForFloatAdd(t *testing.T) {
	prog := buildBinaryArithFunction(ir.Add)
	if err := ir.Verify(prog); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	b := NewBackend(device.Generic16(), nil)
	mod, err := b.Lower(prog)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if got := countOpcode(mod, sectionFunction, OpFAdd); got != 1 {
		t.Errorf("OpFAdd count = %d, want 1", got)
	}
}

func TestLowerArithEmitsFMulForFloatMul(t *testing.T) {
	prog := buildBinaryArithFunction(ir.Mul)
	if err := ir.Verify(prog); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	b := NewBackend(device.Generic16(), nil)
	mod, err := b.Lower(prog)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if got := countOpcode(mod, sectionFunction, OpFMul); got != 1 {
		t.Errorf("OpFMul count = %d, want 1", got)
	}
}

func TestLowerCastBF16RoundTripsThroughF32AndDeclaresCapability(t *testing.T) {
	prog := ir.NewProgram()
	ctx := prog.Ctx
	f32 := ctx.Scalar(ir.F32)
	bf16 := ctx.Scalar(ir.BF16)
	fn := prog.NewFunction("bf16_roundtrip")
	x := fn.AddParam(f32, "x")

	bd := ir.NewBuilder(ctx, fn.Body)
	loc := ir.Location{File: "backend_arith_test.go"}
	narrowed := bd.Cast(x, bf16, loc)
	bd.Cast(narrowed, f32, loc)

	if err := ir.Verify(prog); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	b := NewBackend(device.Generic16(), nil)
	mod, err := b.Lower(prog)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if got := countOpcode(mod, sectionFunction, OpConvertFToBF16INTEL); got != 1 {
		t.Errorf("OpConvertFToBF16INTEL count = %d, want 1", got)
	}
	if got := countOpcode(mod, sectionFunction, OpConvertBF16ToFINTEL); got != 1 {
		t.Errorf("OpConvertBF16ToFINTEL count = %d, want 1", got)
	}
	if got := countOpcode(mod, sectionCapability, OpCapability); got == 0 {
		t.Fatal("no OpCapability instructions emitted")
	}
	foundCap := false
	for _, inst := range mod.sections[sectionCapability] {
		if inst.Opcode == OpCapability && len(inst.operands) > 0 &&
			inst.operands[0].resolve() == uint32(CapabilityBFloat16ConversionINTEL) {
			foundCap = true
		}
	}
	if !foundCap {
		t.Error("CapabilityBFloat16ConversionINTEL not declared after a bf16 cast")
	}
}

func TestLowerCompareEmitsOrderedFloatCompare(t *testing.T) {
	prog := ir.NewProgram()
	ctx := prog.Ctx
	f32 := ctx.Scalar(ir.F32)
	fn := prog.NewFunction("compare")
	x := fn.AddParam(f32, "x")
	y := fn.AddParam(f32, "y")

	bd := ir.NewBuilder(ctx, fn.Body)
	loc := ir.Location{File: "backend_arith_test.go"}
	bd.Compare(ir.Lt, x, y, loc)

	if err := ir.Verify(prog); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	b := NewBackend(device.Generic16(), nil)
	mod, err := b.Lower(prog)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if got := countOpcode(mod, sectionFunction, OpFOrdLessThan); got != 1 {
		t.Errorf("OpFOrdLessThan count = %d, want 1", got)
	}
}
