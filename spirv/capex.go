package spirv

// featureSet accumulates which optional SPIR-V features a lowering
// has actually used, so the backend can declare exactly the
// capabilities and extensions those features require (§4.10) instead
// of a fixed worst-case set.
type featureSet struct {
	usedFloat16                bool
	usedFloat64                bool
	usedInt64                  bool
	usedInt16                  bool
	usedInt8                   bool
	usedGroups                 bool
	usedSubgroupDispatch       bool
	usedSubgroupBlockIO        bool
	usedGroupNonUniformShuffle bool
	usedAsm                    bool
	usedVectorCompute          bool
	usedAtomicFloatAdd         bool
	usedAtomicFloatMinMax      bool
	usedBFloat16Conv           bool
}

// declare emits exactly the capabilities and extensions implied by the
// features recorded in fs, via u. Kernel and Addresses are always
// required: every entry point this backend emits is an OpenCL kernel
// using physical addressing.
func (fs *featureSet) declare(u *Uniquifier) {
	u.RequireCapability(CapabilityKernel)
	u.RequireCapability(CapabilityAddresses)

	if fs.usedFloat16 {
		u.RequireCapability(CapabilityFloat16)
	}
	if fs.usedFloat64 {
		u.RequireCapability(CapabilityFloat64)
	}
	if fs.usedInt64 {
		u.RequireCapability(CapabilityInt64)
	}
	if fs.usedInt16 {
		u.RequireCapability(CapabilityInt16)
	}
	if fs.usedInt8 {
		u.RequireCapability(CapabilityInt8)
	}
	if fs.usedGroups {
		u.RequireCapability(CapabilityGroups)
	}
	if fs.usedSubgroupDispatch {
		u.RequireCapability(CapabilitySubgroupDispatch)
	}
	if fs.usedVectorCompute {
		u.RequireCapability(CapabilityVectorComputeINTEL)
		u.RequireExtension(ExtVectorComputeINTEL)
	}
	if fs.usedAsm {
		u.RequireCapability(CapabilityAsmINTEL)
		u.RequireExtension(ExtInlineAssemblyINTEL)
	}
	if fs.usedSubgroupBlockIO {
		u.RequireCapability(CapabilitySubgroupBufferBlockIOINTEL)
		u.RequireExtension(ExtSubgroupsINTEL)
	}
	if fs.usedGroupNonUniformShuffle {
		u.RequireCapability(CapabilityGroupNonUniform)
		u.RequireCapability(CapabilityGroupNonUniformShuffle)
	}
	if fs.usedAtomicFloatAdd {
		u.RequireCapability(CapabilityAtomicFloat32AddEXT)
		u.RequireExtension(ExtAtomicFloatAddEXT)
	}
	if fs.usedAtomicFloatMinMax {
		u.RequireCapability(CapabilityAtomicFloat32MinMaxEXT)
		u.RequireExtension(ExtAtomicFloatMinMaxEXT)
	}
	if fs.usedBFloat16Conv {
		u.RequireCapability(CapabilityBFloat16ConversionINTEL)
		u.RequireExtension(ExtBFloat16ConversionINTEL)
	}
}

// note* helpers record a feature use for the backend's arithmetic
// lowering; they return nothing.
func (fs *featureSet) noteScalarKind(width int, isFloat bool) {
	switch {
	case isFloat && width == 2:
		fs.usedFloat16 = true
	case isFloat && width == 8:
		fs.usedFloat64 = true
	case !isFloat && width == 8:
		fs.usedInt64 = true
	case !isFloat && width == 2:
		fs.usedInt16 = true
	case !isFloat && width == 1:
		fs.usedInt8 = true
	}
}
