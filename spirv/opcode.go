package spirv

// OpCode is a SPIR-V instruction opcode.
type OpCode uint16

const (
	MagicNumber = 0x07230203
)

// Core opcodes used by the kernel lowering (§4.6, §6): the baseline
// SPIR-V core plus the OpenCL-kernel, cooperative-matrix, and Intel
// inline-assembly opcodes an OpenCL-style compute target needs beyond
// a graphics-shader opcode subset.
const (
	OpNop               OpCode = 0
	OpUndef             OpCode = 1
	OpSource            OpCode = 3
	OpExtension         OpCode = 10
	OpExtInstImport     OpCode = 11
	OpExtInst           OpCode = 12
	OpMemoryModel       OpCode = 14
	OpEntryPoint        OpCode = 15
	OpExecutionMode     OpCode = 16
	OpCapability        OpCode = 17
	OpTypeVoid          OpCode = 19
	OpTypeBool          OpCode = 20
	OpTypeInt           OpCode = 21
	OpTypeFloat         OpCode = 22
	OpTypeVector        OpCode = 23
	OpTypeArray         OpCode = 28
	OpTypeStruct        OpCode = 30
	OpTypePointer       OpCode = 32
	OpTypeFunction       OpCode = 33
	OpConstantTrue      OpCode = 41
	OpConstantFalse     OpCode = 42
	OpConstant          OpCode = 43
	OpConstantComposite OpCode = 44
	OpConstantNull      OpCode = 46
	OpFunction          OpCode = 54
	OpFunctionParameter OpCode = 55
	OpFunctionEnd       OpCode = 56
	OpFunctionCall      OpCode = 57
	OpVariable          OpCode = 59
	OpLoad              OpCode = 61
	OpStore             OpCode = 62
	OpAccessChain       OpCode = 65
	OpDecorate          OpCode = 71
	OpMemberDecorate    OpCode = 72
	OpName              OpCode = 5
	OpMemberName        OpCode = 6
	OpCompositeConstruct OpCode = 80
	OpCompositeExtract  OpCode = 81
	OpCompositeInsert   OpCode = 82

	OpVectorExtractDynamic OpCode = 77

	OpConvertFToU OpCode = 109
	OpConvertFToS OpCode = 110
	OpConvertSToF OpCode = 111
	OpConvertUToF OpCode = 112
	OpUConvert    OpCode = 113
	OpSConvert    OpCode = 114
	OpFConvert    OpCode = 115
	OpBitcast     OpCode = 124

	OpSNegate OpCode = 126
	OpFNegate OpCode = 127
	OpIAdd    OpCode = 128
	OpFAdd    OpCode = 129
	OpISub    OpCode = 130
	OpFSub    OpCode = 131
	OpIMul    OpCode = 132
	OpFMul    OpCode = 133
	OpUDiv    OpCode = 134
	OpSDiv    OpCode = 135
	OpFDiv    OpCode = 136
	OpUMod    OpCode = 137
	OpSRem    OpCode = 138
	OpSMod    OpCode = 139
	OpFRem    OpCode = 140
	OpFMod    OpCode = 141

	OpLogicalEqual    OpCode = 164
	OpLogicalNotEqual OpCode = 165
	OpLogicalOr       OpCode = 166
	OpLogicalAnd      OpCode = 167
	OpLogicalNot      OpCode = 168
	OpSelect          OpCode = 169

	OpIEqual               OpCode = 170
	OpINotEqual            OpCode = 171
	OpUGreaterThan         OpCode = 172
	OpSGreaterThan         OpCode = 173
	OpUGreaterThanEqual    OpCode = 174
	OpSGreaterThanEqual    OpCode = 175
	OpULessThan            OpCode = 176
	OpSLessThan            OpCode = 177
	OpULessThanEqual       OpCode = 178
	OpSLessThanEqual       OpCode = 179
	OpFOrdEqual            OpCode = 180
	OpFOrdNotEqual         OpCode = 182
	OpFOrdLessThan         OpCode = 184
	OpFOrdGreaterThan      OpCode = 186
	OpFOrdLessThanEqual    OpCode = 188
	OpFOrdGreaterThanEqual OpCode = 190

	OpShiftRightLogical    OpCode = 194
	OpShiftRightArithmetic OpCode = 195
	OpShiftLeftLogical     OpCode = 196
	OpBitwiseOr            OpCode = 197
	OpBitwiseXor           OpCode = 198
	OpBitwiseAnd           OpCode = 199
	OpNot                  OpCode = 200

	OpPhi               OpCode = 245
	OpLoopMerge         OpCode = 246
	OpSelectionMerge    OpCode = 247
	OpLabel             OpCode = 248
	OpBranch            OpCode = 249
	OpBranchConditional OpCode = 250
	OpReturn            OpCode = 253
	OpReturnValue       OpCode = 254
	OpUnreachable       OpCode = 255

	OpControlBarrier OpCode = 224
	OpMemoryBarrier  OpCode = 225

	OpAtomicLoad       OpCode = 227
	OpAtomicStore      OpCode = 228
	OpAtomicIAdd       OpCode = 234
	OpAtomicSMin       OpCode = 236
	OpAtomicUMin       OpCode = 237
	OpAtomicSMax       OpCode = 238
	OpAtomicUMax       OpCode = 239

	// SPV_EXT_shader_atomic_float_add
	OpAtomicFAddEXT OpCode = 6121
	// SPV_EXT_shader_atomic_float_min_max
	OpAtomicFMinEXT OpCode = 6134
	OpAtomicFMaxEXT OpCode = 6135

	// INTEL bfloat16 conversion (SPV_INTEL_bfloat16_conversion).
	OpConvertFToBF16INTEL OpCode = 6116
	OpConvertBF16ToFINTEL OpCode = 6117

	// SPV_KHR_cooperative_matrix.
	OpTypeCooperativeMatrixKHR         OpCode = 4456
	OpCooperativeMatrixLoadKHR         OpCode = 4457
	OpCooperativeMatrixStoreKHR        OpCode = 4458
	OpCooperativeMatrixMulAddKHR       OpCode = 4459
	OpCooperativeMatrixLengthKHR       OpCode = 4460

	// SPV_INTEL_inline_assembly.
	OpAsmTargetINTEL OpCode = 5609
	OpAsmINTEL       OpCode = 5610
	OpAsmCallINTEL   OpCode = 5611

	// SPV_INTEL_subgroups block read/write, the Policy 2 fallback for
	// cooperative-matrix load/store when neither DPAS nor block-2D
	// addressing applies.
	OpSubgroupBlockReadINTEL  OpCode = 5575
	OpSubgroupBlockWriteINTEL OpCode = 5576

	// SPV_INTEL_subgroups / core subgroup builtins are modeled as
	// OpLoad from a builtin variable rather than dedicated opcodes.
	OpGroupBroadcast OpCode = 263
	OpGroupIAdd      OpCode = 264
	OpGroupFAdd      OpCode = 265
	OpGroupSMin      OpCode = 268
	OpGroupUMin      OpCode = 269
	OpGroupFMin      OpCode = 267
	OpGroupSMax      OpCode = 272
	OpGroupUMax      OpCode = 273
	OpGroupFMax      OpCode = 271

	// SPIR-V 1.3 core group non-uniform ops: the array mul_add policy's
	// cross-lane gather of A/B tile components, where the source lane
	// is not dynamically uniform across the subgroup.
	OpGroupNonUniformShuffle OpCode = 345
)

// Capability is a SPIR-V capability name.
type Capability uint32

const (
	CapabilityMatrix               Capability = 0
	CapabilityAddresses            Capability = 4
	CapabilityKernel               Capability = 6
	CapabilityFloat16              Capability = 9
	CapabilityFloat64              Capability = 10
	CapabilityInt64                Capability = 11
	CapabilityGroups               Capability = 18
	CapabilityInt16                Capability = 22
	CapabilityInt8                 Capability = 39
	CapabilitySubgroupDispatch     Capability = 58
	CapabilityVectorComputeINTEL   Capability = 5617
	CapabilityAsmINTEL             Capability = 5606
	CapabilityCooperativeMatrixKHR Capability = 6022
	CapabilityAtomicFloat32AddEXT  Capability = 6033
	CapabilityAtomicFloat32MinMaxEXT Capability = 5612
	CapabilityBFloat16ConversionINTEL Capability = 6115
	CapabilitySubgroupBufferBlockIOINTEL Capability = 5569
	CapabilityGroupNonUniform            Capability = 61
	CapabilityGroupNonUniformShuffle     Capability = 64
)

// Extension is a SPIR-V extension name string, used verbatim in
// OpExtension.
type Extension string

const (
	ExtInlineAssemblyINTEL       Extension = "SPV_INTEL_inline_assembly"
	ExtVectorComputeINTEL        Extension = "SPV_INTEL_vector_compute"
	ExtCooperativeMatrixKHR      Extension = "SPV_KHR_cooperative_matrix"
	ExtAtomicFloatAddEXT         Extension = "SPV_EXT_shader_atomic_float_add"
	ExtAtomicFloatMinMaxEXT      Extension = "SPV_EXT_shader_atomic_float_min_max"
	ExtBFloat16ConversionINTEL   Extension = "SPV_INTEL_bfloat16_conversion"
	ExtSubgroupsINTEL            Extension = "SPV_INTEL_subgroups"
)

// Decoration is a SPIR-V decoration kind.
type Decoration uint32

const (
	DecorationBuiltIn    Decoration = 11
	DecorationAlignment  Decoration = 44
	DecorationFuncParamAttr Decoration = 38
)

// BuiltIn is a SPIR-V BuiltIn decoration value.
type BuiltIn uint32

const (
	BuiltInWorkgroupSize        BuiltIn = 25
	BuiltInWorkgroupID          BuiltIn = 26
	BuiltInLocalInvocationID    BuiltIn = 27
	BuiltInGlobalInvocationID   BuiltIn = 28
	BuiltInLocalInvocationIndex BuiltIn = 29
	BuiltInSubgroupSize         BuiltIn = 36
	BuiltInNumSubgroups         BuiltIn = 38
	BuiltInSubgroupId           BuiltIn = 40
	BuiltInSubgroupLocalInvocationId BuiltIn = 41
)

// ExecutionModel selects the shader/kernel stage an entry point runs as.
type ExecutionModel uint32

const (
	ExecutionModelKernel ExecutionModel = 6
)

// ExecutionMode configures an entry point's fixed-function behavior.
type ExecutionMode uint32

const (
	ExecutionModeLocalSize    ExecutionMode = 17
	ExecutionModeSubgroupSize ExecutionMode = 35
)

// StorageClass is a SPIR-V pointer storage class.
type StorageClass uint32

const (
	StorageClassUniformConstant StorageClass = 0
	StorageClassWorkgroup       StorageClass = 4 // Local / SLM
	StorageClassCrossWorkgroup  StorageClass = 5 // Global
	StorageClassFunction        StorageClass = 7 // Private / per-invocation stack
	StorageClassInput           StorageClass = 1 // builtin variables
)

// AddressingModel is a SPIR-V addressing model.
type AddressingModel uint32

const (
	AddressingModelPhysical64 AddressingModel = 2
)

// MemoryModel is a SPIR-V memory model.
type MemoryModel uint32

const (
	MemoryModelOpenCL MemoryModel = 2
)

// Scope is a SPIR-V execution/memory scope operand value.
type Scope uint32

const (
	ScopeWorkgroup Scope = 2
	ScopeSubgroup  Scope = 3
)

// MemorySemantics is a bitmask of SPIR-V memory-semantics flags.
type MemorySemantics uint32

const (
	MemorySemanticsRelaxed            MemorySemantics = 0x0
	MemorySemanticsAcquireRelease     MemorySemantics = 0x8
	MemorySemanticsWorkgroupMemory    MemorySemantics = 0x100
	MemorySemanticsCrossWorkgroupMemory MemorySemantics = 0x200
)

// GroupOperation selects the reduction/scan flavor for OpGroup* ops.
type GroupOperation uint32

const (
	GroupOperationReduce GroupOperation = 0
)

// OpenCLExt lists the OpenCL.std extended-instruction-set entry points
// this lowering uses.
type OpenCLExt uint32

const (
	OpenCLFabs OpenCLExt = 23
	OpenCLFmin OpenCLExt = 170 // OpenCL.std fmin
	OpenCLFmax OpenCLExt = 171
	OpenCLFma  OpenCLExt = 26
	OpenCLSqrt OpenCLExt = 61
	OpenCLSAbs OpenCLExt = 141
	OpenCLSMin OpenCLExt = 158
	OpenCLSMax OpenCLExt = 156
)
