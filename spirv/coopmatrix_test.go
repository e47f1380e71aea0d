package spirv

import (
	"testing"

	"github.com/gogpu/tensorspv/device"
	"github.com/gogpu/tensorspv/ir"
)

func TestChoosePolicyPrefersDPASOnMatchingExtension(t *testing.T) {
	pvc := device.PVC()
	got := choosePolicy(pvc, ir.BF16, ir.BF16, ir.F32, ir.F32, 8, 8, 16, 16)
	if got != coopPolicyDPAS {
		t.Errorf("choosePolicy on PVC bf16 8x8x16 = %v, want coopPolicyDPAS", got)
	}
}

func TestChoosePolicyFallsBackToBlockIOWithoutMatchingExtension(t *testing.T) {
	dg2 := device.DG2()
	// DG2 has no int8 DPAS entry but does support a 16-wide subgroup.
	got := choosePolicy(dg2, ir.I8, ir.I8, ir.I32, ir.I32, 8, 8, 32, 16)
	if got != coopPolicyBlockIO {
		t.Errorf("choosePolicy on DG2 i8 with no native extension = %v, want coopPolicyBlockIO", got)
	}
}

func TestChoosePolicyFallsBackToGenericWithoutSubgroupSupport(t *testing.T) {
	generic := device.Generic16()
	// Generic16 only supports a 16-wide subgroup and has no matrix table at all.
	got := choosePolicy(generic, ir.F16, ir.F16, ir.F32, ir.F32, 8, 8, 16, 8)
	if got != coopPolicyGeneric {
		t.Errorf("choosePolicy on Generic16 with unsupported subgroup size = %v, want coopPolicyGeneric", got)
	}
}

func TestHasAnyMatrixExtensionMatchesComponentKind(t *testing.T) {
	pvc := device.PVC()
	if !hasAnyMatrixExtension(pvc, ir.BF16) {
		t.Error("hasAnyMatrixExtension(PVC, BF16) = false, want true")
	}
	if hasAnyMatrixExtension(pvc, ir.F64) {
		t.Error("hasAnyMatrixExtension(PVC, F64) = true, want false")
	}
	generic := device.Generic16()
	if hasAnyMatrixExtension(generic, ir.F16) {
		t.Error("hasAnyMatrixExtension(Generic16, F16) = true, want false (empty table)")
	}
}
