package spirv

import (
	"testing"

	"github.com/gogpu/tensorspv/device"
	"github.com/gogpu/tensorspv/ir"
)

// buildCoopLoadReduceFunction builds an 8x8 f32 tile load followed by a
// coop_reduce.add over an 8x8-row-major global memref, small enough
// (Rows=8 < a 16-wide subgroup) that blockIOEligible rejects it and the
// generic per-lane policy handles the load.
func buildCoopLoadReduceFunction() *ir.Program {
	prog := ir.NewProgram()
	ctx := prog.Ctx
	f32 := ctx.Scalar(ir.F32)
	i32 := ctx.Scalar(ir.I32)
	memref := ctx.Memref(f32, []int64{8, 8}, []int64{8, 1}, ir.Global)
	matTy := ctx.CoopMatrix(ir.ScalarType{Kind: ir.F32}, 8, 8, ir.CoopAcc)

	fn := prog.NewFunction("coop_reduce_sum")
	fn.Metadata.SubgroupSize = 16
	base := fn.AddParam(memref, "mat")

	bd := ir.NewBuilder(ctx, fn.Body)
	loc := ir.Location{File: "coopmatrix_lowering_test.go"}
	zero := bd.Constant(ir.IntConst(0), i32, loc)
	loaded := bd.CoopLoad(base, []*ir.Value{zero, zero}, false, false, matTy, loc)
	bd.CoopReduce(ir.ReduceAdd, loaded, f32, loc)
	return prog
}

func TestLowerCoopReduceFoldsLocalComponentsThenGroupReduces(t *testing.T) {
	prog := buildCoopLoadReduceFunction()
	if err := ir.Verify(prog); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	b := NewBackend(device.Generic16(), nil)
	mod, err := b.Lower(prog)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}

	if got := countOpcode(mod, sectionFunction, OpGroupFAdd); got != 1 {
		t.Errorf("OpGroupFAdd count = %d, want 1 (one cross-lane reduce, not one per component)", got)
	}
	// The backing vector has 4 lane-local components for this tile/subgroup
	// shape; folding them to one scalar takes 3 local OpFAdds before the
	// single cross-lane OpGroupFAdd.
	if got := countOpcode(mod, sectionFunction, OpFAdd); got != 3 {
		t.Errorf("local OpFAdd count = %d, want 3", got)
	}
	if got := countOpcode(mod, sectionFunction, OpCompositeExtract); got != 4 {
		t.Errorf("OpCompositeExtract count = %d, want 4 (one per lane-local component)", got)
	}
}

func TestBlockIOEligibleRejectsTileSmallerThanSubgroup(t *testing.T) {
	dev := device.Generic16()
	memref := ir.MemrefType{
		Element: ir.Type{Inner: ir.ScalarType{Kind: ir.F32}},
		Shape:   []int64{8, 8},
		Stride:  []int64{8, 1},
	}
	tile := ir.CoopMatrixType{Component: ir.ScalarType{Kind: ir.F32}, Rows: 8, Cols: 8}
	if blockIOEligible(dev, tile, memref, false, 16) {
		t.Error("blockIOEligible = true for an 8-row tile under a 16-wide subgroup, want false")
	}
}

func TestBlockIOEligibleRejectsNonRowContiguousMemref(t *testing.T) {
	dev := device.DG2()
	memref := ir.MemrefType{
		Element: ir.Type{Inner: ir.ScalarType{Kind: ir.I32}},
		Shape:   []int64{16, 16},
		Stride:  []int64{16, 1}, // row dimension strided, not unit-stride
	}
	tile := ir.CoopMatrixType{Component: ir.ScalarType{Kind: ir.I32}, Rows: 16, Cols: 16}
	if blockIOEligible(dev, tile, memref, false, 16) {
		t.Error("blockIOEligible = true for a memref whose row dimension is not unit-stride, want false")
	}
}

func TestBlockIOEligibleAcceptsRowContiguousFullSubgroupTile(t *testing.T) {
	dev := device.DG2()
	memref := ir.MemrefType{
		Element: ir.Type{Inner: ir.ScalarType{Kind: ir.I32}},
		Shape:   []int64{16, 16},
		Stride:  []int64{1, 16},
	}
	tile := ir.CoopMatrixType{Component: ir.ScalarType{Kind: ir.I32}, Rows: 16, Cols: 16}
	if !blockIOEligible(dev, tile, memref, false, 16) {
		t.Error("blockIOEligible = false for a row-contiguous full-subgroup tile, want true")
	}
}
