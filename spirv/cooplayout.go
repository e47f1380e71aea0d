package spirv

import "github.com/gogpu/tensorspv/ir"

// CoopLayout distributes a Rows x Cols cooperative-matrix tile across
// the lanes of a subgroup of size sgs (§4.7 "layout law"), grounded on
// the reference compiler's coopmatrix_layout get_layout: Rows lanes
// cooperate to cover one row-block, Blocks row-blocks stack to cover
// the whole tile, and Cols is Shape1 padded up to the nearest multiple
// of sgs/Rows so every lane holds the same number of components.
// Length is the number of vector components one lane's share occupies;
// a cooperative-matrix value is represented at the SPIR-V level as a
// plain OpTypeVector of this length, not OpTypeCooperativeMatrixKHR.
type CoopLayout struct {
	Rows, Cols, Blocks, Length int64
	Shape1                     int64
}

// computeCoopLayout derives t's layout for a subgroup of size sgs.
func computeCoopLayout(t ir.CoopMatrixType, sgs int) CoopLayout {
	s := int64(sgs)
	rows := t.Rows
	if s < rows {
		rows = s
	}
	cols := (1 + (rows*t.Cols-1)/s) * s / rows
	blocks := t.Rows / rows
	length := rows * cols * blocks / s
	return CoopLayout{Rows: rows, Cols: cols, Blocks: blocks, Length: length, Shape1: t.Cols}
}

// colsPerLane is the number of components one lane contributes per
// row-block: cols*rows/sgs, i.e. Length/Blocks.
func (l CoopLayout) colsPerLane(sgs int) int64 {
	if l.Blocks == 0 {
		return 0
	}
	return l.Length / l.Blocks
}

// colIncFactor is how many distinct lanes cover one row: sgs/Rows.
func (l CoopLayout) colIncFactor(sgs int) int64 {
	if l.Rows == 0 {
		return 0
	}
	return int64(sgs) / l.Rows
}

// coopLayoutOf computes t's layout using the backend's currently
// lowering function's chosen subgroup size, falling back to 16 for
// standalone lowering paths (tests) that never ran work-group-size
// selection.
func (b *Backend) coopLayoutOf(t ir.CoopMatrixType) CoopLayout {
	return computeCoopLayout(t, b.currentSubgroupSizeOrDefault())
}

// currentSubgroupSizeOrDefault returns the subgroup size chosen for
// the function presently being lowered, or 16 when none was set.
func (b *Backend) currentSubgroupSizeOrDefault() int {
	if b.currentSubgroupSize == 0 {
		return 16
	}
	return b.currentSubgroupSize
}
