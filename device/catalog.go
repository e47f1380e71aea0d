package device

import "github.com/gogpu/tensorspv/ir"

// xeGRFSize is the size in bytes of one general register file entry on
// Xe-class hardware, grounded on the reference compiler's xe_constants
// (grf_size = 64).
const xeGRFSize = 64

// PVC returns the descriptor for the Xe-HPC "Ponte Vecchio" class
// device: 8/16/32-wide subgroups, a 64KB SLM budget per work-group,
// and a DPAS table covering the bf16/f16 and int8 GEMM tile shapes the
// systolic array executes at 8x8x16 granularity.
func PVC() Info {
	return Info{
		Name:                    "pvc",
		SupportedSubgroupSizes:  []int{8, 16, 32},
		RegisterFileSize:        map[int]int64{8: 128 * xeGRFSize, 16: 128 * xeGRFSize, 32: 64 * xeGRFSize},
		LargeRegisterFileMode:   true,
		SLMBytes:                64 * 1024,
		IndexWidth:              64,
		MatrixExtensions: []MatrixExtension{
			{AType: ir.BF16, BType: ir.BF16, CType: ir.F32, RType: ir.F32, M: 8, N: 8, K: 16, RequiredAlignmentBytes: 4},
			{AType: ir.F16, BType: ir.F16, CType: ir.F32, RType: ir.F32, M: 8, N: 8, K: 16, RequiredAlignmentBytes: 4},
			{AType: ir.I8, BType: ir.I8, CType: ir.I32, RType: ir.I32, M: 8, N: 8, K: 32, RequiredAlignmentBytes: 4},
		},
	}
}

// DG2 returns the descriptor for the Xe-HPG "Alchemist" class device:
// a narrower 8/16-wide subgroup set, a smaller register file, and the
// same bf16/f16 DPAS tile shapes without the int8 extension.
func DG2() Info {
	return Info{
		Name:                   "dg2",
		SupportedSubgroupSizes: []int{8, 16},
		RegisterFileSize:       map[int]int64{8: 128 * xeGRFSize, 16: 64 * xeGRFSize},
		LargeRegisterFileMode:  false,
		SLMBytes:               64 * 1024,
		IndexWidth:             32,
		MatrixExtensions: []MatrixExtension{
			{AType: ir.BF16, BType: ir.BF16, CType: ir.F32, RType: ir.F32, M: 8, N: 8, K: 16, RequiredAlignmentBytes: 4},
			{AType: ir.F16, BType: ir.F16, CType: ir.F32, RType: ir.F32, M: 8, N: 8, K: 16, RequiredAlignmentBytes: 4},
		},
	}
}

// Generic16 returns a conservative descriptor for an OpenCL device
// that exposes no native DPAS capability — cooperative matrices fall
// back to the generic or subgroup-block-I/O policy (§4.7 policies 1-2).
// Used by tests and by the CLI's default target.
func Generic16() Info {
	return Info{
		Name:                   "generic16",
		SupportedSubgroupSizes: []int{16},
		RegisterFileSize:       map[int]int64{16: 64 * xeGRFSize},
		SLMBytes:               32 * 1024,
		IndexWidth:             32,
	}
}

// ByName resolves one of the built-in descriptors by its catalog name,
// reporting false if name is not recognized.
func ByName(name string) (Info, bool) {
	switch name {
	case "pvc":
		return PVC(), true
	case "dg2":
		return DG2(), true
	case "generic16":
		return Generic16(), true
	default:
		return Info{}, false
	}
}
