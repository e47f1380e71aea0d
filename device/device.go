// Package device describes the target accelerator: its supported
// subgroup sizes, register and shared-local-memory budgets, and the
// table of cooperative-matrix shapes it can execute natively via DPAS.
// A device.Info is supplied to the compiler as an input to lowering
// (§6 "Device-info (input to lowering)") — it is never mutated by the
// compiler.
package device

import "github.com/gogpu/tensorspv/ir"

// MatrixExtension describes one natively supported DPAS tile shape:
// operand/result scalar kinds and the (M, N, K) dimensions of a single
// dpas.<precA>.<precB>.M.N-class instruction, plus the byte alignment
// each operand buffer must satisfy for the block-2D load/store path.
type MatrixExtension struct {
	AType, BType, CType, RType ir.ScalarKind
	M, N, K                    int64
	RequiredAlignmentBytes     int64
}

// Matches reports whether ext can serve a coop_mul_add with the given
// operand/result component kinds and tile shape.
func (ext MatrixExtension) Matches(aType, bType, cType, rType ir.ScalarKind, m, n, k int64) bool {
	return ext.AType == aType && ext.BType == bType && ext.CType == cType && ext.RType == rType &&
		ext.M == m && ext.N == n && ext.K == k
}

// Info is the per-device descriptor consumed by work-group-size
// selection, cooperative-matrix policy selection, and capability
// inference.
type Info struct {
	Name string

	// SupportedSubgroupSizes lists the subgroup sizes the device's
	// ISA can execute, in ascending order (e.g. [8, 16, 32]).
	SupportedSubgroupSizes []int

	// RegisterFileSize maps a subgroup size to the register file size,
	// in bytes, available in that configuration.
	RegisterFileSize map[int]int64

	// LargeRegisterFileMode, when true, doubles the usable register
	// budget at the cost of halving the maximum number of concurrent
	// subgroups per execution unit (Xe "large GRF" mode).
	LargeRegisterFileMode bool

	// SLMBytes is the total shared-local-memory budget per work-group.
	SLMBytes int64

	// IndexWidth is the bit width ir.Index resolves to on this device
	// (32 or 64).
	IndexWidth int

	// MatrixExtensions lists every natively supported DPAS tile shape.
	MatrixExtensions []MatrixExtension
}

// SupportsSubgroupSize reports whether sgs is one of the device's
// supported subgroup sizes.
func (i Info) SupportsSubgroupSize(sgs int) bool {
	for _, s := range i.SupportedSubgroupSizes {
		if s == sgs {
			return true
		}
	}
	return false
}

// FindMatrixExtension returns the native DPAS tile entry matching the
// given operand kinds and shape, if the device's table has one.
func (i Info) FindMatrixExtension(aType, bType, cType, rType ir.ScalarKind, m, n, k int64) (MatrixExtension, bool) {
	for _, ext := range i.MatrixExtensions {
		if ext.Matches(aType, bType, cType, rType, m, n, k) {
			return ext, true
		}
	}
	return MatrixExtension{}, false
}

// MaxRegisterFileBytes returns the largest register file available
// across all supported subgroup sizes, used as an upper bound by the
// work-group-size heuristic before a specific subgroup size is chosen.
func (i Info) MaxRegisterFileBytes() int64 {
	var max int64
	for _, v := range i.RegisterFileSize {
		if v > max {
			max = v
		}
	}
	return max
}
