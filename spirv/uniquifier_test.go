package spirv

import (
	"testing"

	"github.com/gogpu/tensorspv/ir"
)

func TestUniquifierScalarDeduplicates(t *testing.T) {
	m := NewModule(1, 4)
	u := NewUniquifier(m)

	f32a := u.Scalar(ir.F32)
	f32b := u.Scalar(ir.F32)
	i32 := u.Scalar(ir.I32)

	if f32a != f32b {
		t.Errorf("Scalar(F32) called twice returned different IDs")
	}
	if f32a == i32 {
		t.Errorf("Scalar(F32) and Scalar(I32) returned the same ID")
	}
}

func TestUniquifierIntConstantDeduplicatesByTypeAndValue(t *testing.T) {
	m := NewModule(1, 4)
	u := NewUniquifier(m)
	i32 := u.Scalar(ir.I32)
	i64 := u.Scalar(ir.I64)

	a := u.IntConstant(i32, 32, 7)
	b := u.IntConstant(i32, 32, 7)
	c := u.IntConstant(i32, 32, 8)
	d := u.IntConstant(i64, 64, 7)

	if a != b {
		t.Errorf("IntConstant(i32, 7) called twice returned different IDs")
	}
	if a == c {
		t.Errorf("IntConstant(i32, 7) and IntConstant(i32, 8) collided")
	}
	if a == d {
		t.Errorf("IntConstant(i32, 7) and IntConstant(i64, 7) collided")
	}
}

func TestUniquifierCapabilityEmittedOnce(t *testing.T) {
	m := NewModule(1, 4)
	u := NewUniquifier(m)

	u.RequireCapability(CapabilityKernel)
	u.RequireCapability(CapabilityKernel)
	u.RequireCapability(CapabilityFloat16)

	if got := len(m.sections[sectionCapability]); got != 2 {
		t.Errorf("capability section has %d instructions, want 2 (dedup on repeat)", got)
	}
}

func TestUniquifierBuiltinVariableDeduplicates(t *testing.T) {
	m := NewModule(1, 4)
	u := NewUniquifier(m)
	i32 := u.Scalar(ir.I32)

	id1, typ1 := u.BuiltinVariable("SubgroupSize", BuiltInSubgroupSize, i32)
	id2, typ2 := u.BuiltinVariable("SubgroupSize", BuiltInSubgroupSize, i32)

	if id1 != id2 || typ1 != typ2 {
		t.Errorf("BuiltinVariable not deduplicated across repeat calls")
	}
}
