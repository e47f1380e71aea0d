package passes

import "github.com/gogpu/tensorspv/ir"

// DeviceInfo is the subset of device.Info the work-group-size
// heuristic needs; declared locally to avoid ir/passes importing the
// device package (device already imports ir, and passes is logically
// downstream of ir, not of device).
type DeviceInfo interface {
	SupportsSubgroupSize(sgs int) bool
	MaxRegisterFileBytes() int64
}

// blasShape is the (rows, cols) of one cooperative-matrix result
// reachable in a function, the unit the tiling heuristic reasons
// about, grounded on the reference compiler's work_group_size visitor
// (which collects a std::unordered_set<blas_shape> per function before
// picking a tile).
type blasShape struct{ rows, cols int64 }

// WorkGroupSizeSelection walks fn's body collecting every
// cooperative-matrix result shape reachable in it, then deterministically
// picks a subgroup size (the largest the device supports that evenly
// tiles every observed shape, defaulting to the device's smallest
// supported size when no coopmatrix work is present) and a 2-D
// work-group size bounding per-lane register pressure to the device's
// budget (§4.3 step 6). Writes fn.Metadata.SubgroupSize and
// fn.Metadata.WorkGroupSize.
//
// Deterministic and side-effect-free on IR: running it twice over the
// same function recomputes the identical metadata.
func WorkGroupSizeSelection(fn *ir.Function, dev DeviceInfo) {
	shapes := collectBlasShapes(fn.Body)

	sgs := pickSubgroupSize(shapes, dev)
	fn.Metadata.SubgroupSize = sgs
	fn.Metadata.WorkGroupSize = pickWorkGroupSize(shapes, sgs, dev)
}

func collectBlasShapes(r *ir.Region) map[blasShape]struct{} {
	shapes := map[blasShape]struct{}{}
	var walk func(r *ir.Region)
	walk = func(r *ir.Region) {
		for _, inst := range r.Instrs {
			for _, res := range inst.Results {
				if cm, ok := res.Type.Inner.(ir.CoopMatrixType); ok {
					shapes[blasShape{rows: cm.Rows, cols: cm.Cols}] = struct{}{}
				}
			}
			for _, sub := range inst.Regions {
				walk(sub)
			}
		}
	}
	walk(r)
	return shapes
}

// pickSubgroupSize chooses the largest device-supported subgroup size
// that divides every observed coopmatrix row count (the dimension
// distributed across subgroup lanes in the layout law of §4.7). With
// no coopmatrix work present it returns the smallest supported size,
// the conservative default that maximizes occupancy for scalar code.
func pickSubgroupSize(shapes map[blasShape]struct{}, dev DeviceInfo) int {
	candidates := []int{32, 16, 8}
	if len(shapes) == 0 {
		for i := len(candidates) - 1; i >= 0; i-- {
			if dev.SupportsSubgroupSize(candidates[i]) {
				return candidates[i]
			}
		}
		return 16
	}
	for _, sgs := range candidates {
		if !dev.SupportsSubgroupSize(sgs) {
			continue
		}
		allDivide := true
		for s := range shapes {
			if s.rows%int64(sgs) != 0 {
				allDivide = false
				break
			}
		}
		if allDivide {
			return sgs
		}
	}
	for _, sgs := range candidates {
		if dev.SupportsSubgroupSize(sgs) {
			return sgs
		}
	}
	return 16
}

// pickWorkGroupSize chooses a 2-D work-group extent: the X dimension
// packs as many subgroups as the register-file budget allows (one
// subgroup's worth of live coopmatrix state per lane, conservatively
// estimated at 4 registers per lane when no coopmatrix work is
// present), and Y is fixed at 1 since the IR exposes no second grid
// dimension requirement beyond group_id(1).
func pickWorkGroupSize(shapes map[blasShape]struct{}, sgs int, dev DeviceInfo) [2]int {
	registersPerLane := int64(4)
	for s := range shapes {
		tile := (s.rows / int64(sgs)) * s.cols
		if tile > registersPerLane {
			registersPerLane = tile
		}
	}
	budget := dev.MaxRegisterFileBytes() / 4 // 32-bit registers
	if registersPerLane <= 0 {
		registersPerLane = 1
	}
	subgroupsPerWG := budget / (registersPerLane * int64(sgs))
	if subgroupsPerWG < 1 {
		subgroupsPerWG = 1
	}
	if subgroupsPerWG > 8 {
		subgroupsPerWG = 8 // cap occupancy growth once register pressure is no longer the binding constraint
	}
	return [2]int{int(subgroupsPerWG) * sgs, 1}
}
