package spirv

import "github.com/gogpu/tensorspv/ir"

// DopeVector carries the per-dimension shape and stride of one memref
// or group parameter whose shape, stride, or batch offset is not known
// until launch. Each dynamic entry becomes one trailing i32
// OpFunctionParameter, appended after the kernel's declared parameter
// list in declaration order (§3 "dope vector").
type DopeVector struct {
	shape  []*ID
	stride []*ID
	offset *ID
}

// Dim returns the rank this dope vector describes.
func (d *DopeVector) Dim() int { return len(d.shape) }

// Shape returns the i-th dimension's extent, static or dynamic.
func (d *DopeVector) Shape(i int) *ID { return d.shape[i] }

// Stride returns the i-th dimension's stride, static or dynamic.
func (d *DopeVector) Stride(i int) *ID { return d.stride[i] }

// HasOffset reports whether this dope vector carries a dynamic batch
// offset (group types declared with Offset: true).
func (d *DopeVector) HasOffset() bool { return d.offset != nil }

// Offset returns the dynamic batch offset. Callers must check
// HasOffset first.
func (d *DopeVector) Offset() *ID { return d.offset }

// dopePlan records the extra OpFunctionParameter slots one function
// parameter needs for its dynamic shape/stride/offset entries, computed
// before any parameter is emitted so lowerFunction can size the
// function type correctly.
type dopePlan struct {
	param  *ir.Value
	memref ir.MemrefType
	group  bool
}

// planDopeVectors scans fn's parameters for memref/group types with
// dynamic shape, stride, or batch-offset entries and returns the extra
// i32 parameter types the function signature must carry, plus the plan
// bindDopeVectors uses to consume them once the real OpFunctionParameter
// ids exist.
func (b *Backend) planDopeVectors(fn *ir.Function) ([]*ID, []dopePlan) {
	idxTy := b.uniq.Scalar(ir.I32)
	var extra []*ID
	var plans []dopePlan
	for _, p := range fn.Params {
		switch inner := p.Type.Inner.(type) {
		case ir.MemrefType:
			if !inner.HasDynamicShape() && !inner.HasDynamicStride() {
				continue
			}
			plans = append(plans, dopePlan{param: p, memref: inner})
			for _, s := range inner.Shape {
				if s == ir.DynamicSize {
					extra = append(extra, idxTy)
				}
			}
			for _, s := range inner.Stride {
				if s == ir.DynamicSize {
					extra = append(extra, idxTy)
				}
			}
		case ir.GroupType:
			if !inner.Offset {
				continue
			}
			plans = append(plans, dopePlan{param: p, group: true})
			extra = append(extra, idxTy)
		}
	}
	return extra, plans
}

// bindDopeVectors builds one DopeVector per planned parameter,
// consuming extraIDs (the already-emitted trailing OpFunctionParameter
// ids, in the order planDopeVectors produced their types) and filling
// static entries with interned constants.
func (b *Backend) bindDopeVectors(plans []dopePlan, extraIDs []*ID) {
	idxTy := b.uniq.Scalar(ir.I32)
	cursor := 0
	for _, pl := range plans {
		if pl.group {
			b.dopeVectors[pl.param] = &DopeVector{offset: extraIDs[cursor]}
			cursor++
			continue
		}
		dv := &DopeVector{}
		for _, s := range pl.memref.Shape {
			if s == ir.DynamicSize {
				dv.shape = append(dv.shape, extraIDs[cursor])
				cursor++
			} else {
				dv.shape = append(dv.shape, b.uniq.IntConstant(idxTy, 32, s))
			}
		}
		for _, s := range pl.memref.Stride {
			if s == ir.DynamicSize {
				dv.stride = append(dv.stride, extraIDs[cursor])
				cursor++
			} else {
				dv.stride = append(dv.stride, b.uniq.IntConstant(idxTy, 32, s))
			}
		}
		b.dopeVectors[pl.param] = dv
	}
}
