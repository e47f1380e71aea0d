package device

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/tensorspv/ir"
)

func TestFindMatrixExtensionMatchesPVCBF16Tile(t *testing.T) {
	dev := PVC()
	got, ok := dev.FindMatrixExtension(ir.BF16, ir.BF16, ir.F32, ir.F32, 8, 8, 16)
	if !ok {
		t.Fatal("FindMatrixExtension: no match for PVC bf16 8x8x16")
	}

	want := MatrixExtension{
		AType: ir.BF16, BType: ir.BF16, CType: ir.F32, RType: ir.F32,
		M: 8, N: 8, K: 16, RequiredAlignmentBytes: 4,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FindMatrixExtension(): (-want, +got)\n%s", diff)
	}
}

func TestFindMatrixExtensionMissesOnDG2Int8(t *testing.T) {
	dev := DG2()
	if _, ok := dev.FindMatrixExtension(ir.I8, ir.I8, ir.I32, ir.I32, 8, 8, 32); ok {
		t.Error("FindMatrixExtension: DG2 has no int8 tile, want no match")
	}
}

func TestSupportsSubgroupSize(t *testing.T) {
	dev := DG2()
	for _, sgs := range []int{8, 16} {
		if !dev.SupportsSubgroupSize(sgs) {
			t.Errorf("SupportsSubgroupSize(%d) = false, want true", sgs)
		}
	}
	if dev.SupportsSubgroupSize(32) {
		t.Error("SupportsSubgroupSize(32) = true, want false (DG2 tops out at 16)")
	}
}

func TestMaxRegisterFileBytesPicksLargestAcrossSubgroupSizes(t *testing.T) {
	dev := PVC()
	got := dev.MaxRegisterFileBytes()
	want := int64(128 * xeGRFSize)
	if got != want {
		t.Errorf("MaxRegisterFileBytes() = %d, want %d", got, want)
	}
}

func TestByNameResolvesCatalogEntries(t *testing.T) {
	tests := []struct {
		name string
		want Info
	}{
		{"pvc", PVC()},
		{"dg2", DG2()},
		{"generic16", Generic16()},
	}
	for _, test := range tests {
		got, ok := ByName(test.name)
		if !ok {
			t.Fatalf("ByName(%q): not found", test.name)
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("ByName(%q): (-want, +got)\n%s", test.name, diff)
		}
	}
	if _, ok := ByName("unknown"); ok {
		t.Error("ByName(\"unknown\") = true, want false")
	}
}
