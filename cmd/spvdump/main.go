// Command spvdump summarizes an emitted SPIR-V binary's section
// structure against this repository's own opcode table: per-opcode
// instruction counts, the declared capability and extension list, and
// every entry point's name and execution model. It is a diagnostic
// companion to package spirv, not a general SPIR-V disassembler: it
// walks the word stream and looks up names in its own opcode table,
// trimmed to the summary this tool needs rather than a full
// instruction-by-instruction rendering.
//
// Usage:
//
//	spvdump <file.spv>
package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/gogpu/tensorspv/spirv"
)

var opcodeNames = map[spirv.OpCode]string{
	spirv.OpNop:                         "OpNop",
	spirv.OpSource:                      "OpSource",
	spirv.OpExtension:                   "OpExtension",
	spirv.OpExtInstImport:               "OpExtInstImport",
	spirv.OpExtInst:                     "OpExtInst",
	spirv.OpMemoryModel:                 "OpMemoryModel",
	spirv.OpEntryPoint:                  "OpEntryPoint",
	spirv.OpExecutionMode:               "OpExecutionMode",
	spirv.OpCapability:                  "OpCapability",
	spirv.OpTypeVoid:                    "OpTypeVoid",
	spirv.OpTypeBool:                    "OpTypeBool",
	spirv.OpTypeInt:                     "OpTypeInt",
	spirv.OpTypeFloat:                   "OpTypeFloat",
	spirv.OpTypeVector:                  "OpTypeVector",
	spirv.OpTypeArray:                   "OpTypeArray",
	spirv.OpTypeStruct:                  "OpTypeStruct",
	spirv.OpTypePointer:                 "OpTypePointer",
	spirv.OpTypeFunction:                "OpTypeFunction",
	spirv.OpConstantTrue:                "OpConstantTrue",
	spirv.OpConstantFalse:               "OpConstantFalse",
	spirv.OpConstant:                    "OpConstant",
	spirv.OpConstantComposite:           "OpConstantComposite",
	spirv.OpConstantNull:                "OpConstantNull",
	spirv.OpFunction:                    "OpFunction",
	spirv.OpFunctionParameter:           "OpFunctionParameter",
	spirv.OpFunctionEnd:                 "OpFunctionEnd",
	spirv.OpFunctionCall:                "OpFunctionCall",
	spirv.OpVariable:                    "OpVariable",
	spirv.OpLoad:                        "OpLoad",
	spirv.OpStore:                       "OpStore",
	spirv.OpAccessChain:                 "OpAccessChain",
	spirv.OpDecorate:                    "OpDecorate",
	spirv.OpMemberDecorate:              "OpMemberDecorate",
	spirv.OpName:                        "OpName",
	spirv.OpMemberName:                  "OpMemberName",
	spirv.OpCompositeConstruct:          "OpCompositeConstruct",
	spirv.OpCompositeExtract:            "OpCompositeExtract",
	spirv.OpCompositeInsert:             "OpCompositeInsert",
	spirv.OpPhi:                         "OpPhi",
	spirv.OpLoopMerge:                   "OpLoopMerge",
	spirv.OpSelectionMerge:              "OpSelectionMerge",
	spirv.OpLabel:                       "OpLabel",
	spirv.OpBranch:                      "OpBranch",
	spirv.OpBranchConditional:           "OpBranchConditional",
	spirv.OpReturn:                      "OpReturn",
	spirv.OpReturnValue:                 "OpReturnValue",
	spirv.OpUnreachable:                 "OpUnreachable",
	spirv.OpControlBarrier:              "OpControlBarrier",
	spirv.OpMemoryBarrier:               "OpMemoryBarrier",
	spirv.OpAtomicLoad:                  "OpAtomicLoad",
	spirv.OpAtomicStore:                 "OpAtomicStore",
	spirv.OpAtomicIAdd:                  "OpAtomicIAdd",
	spirv.OpAtomicFAddEXT:               "OpAtomicFAddEXT",
	spirv.OpAtomicFMinEXT:               "OpAtomicFMinEXT",
	spirv.OpAtomicFMaxEXT:               "OpAtomicFMaxEXT",
	spirv.OpConvertFToBF16INTEL:         "OpConvertFToBF16INTEL",
	spirv.OpConvertBF16ToFINTEL:         "OpConvertBF16ToFINTEL",
	spirv.OpTypeCooperativeMatrixKHR:    "OpTypeCooperativeMatrixKHR",
	spirv.OpCooperativeMatrixLoadKHR:    "OpCooperativeMatrixLoadKHR",
	spirv.OpCooperativeMatrixStoreKHR:   "OpCooperativeMatrixStoreKHR",
	spirv.OpCooperativeMatrixMulAddKHR:  "OpCooperativeMatrixMulAddKHR",
	spirv.OpCooperativeMatrixLengthKHR:  "OpCooperativeMatrixLengthKHR",
	spirv.OpAsmTargetINTEL:              "OpAsmTargetINTEL",
	spirv.OpAsmINTEL:                    "OpAsmINTEL",
	spirv.OpAsmCallINTEL:                "OpAsmCallINTEL",
	spirv.OpUndef:                       "OpUndef",
	spirv.OpVectorExtractDynamic:        "OpVectorExtractDynamic",
	spirv.OpGroupNonUniformShuffle:      "OpGroupNonUniformShuffle",
	spirv.OpSubgroupBlockReadINTEL:      "OpSubgroupBlockReadINTEL",
	spirv.OpSubgroupBlockWriteINTEL:     "OpSubgroupBlockWriteINTEL",
}

var capabilityNames = map[spirv.Capability]string{
	spirv.CapabilityMatrix:                    "Matrix",
	spirv.CapabilityAddresses:                 "Addresses",
	spirv.CapabilityKernel:                    "Kernel",
	spirv.CapabilityFloat16:                   "Float16",
	spirv.CapabilityFloat64:                   "Float64",
	spirv.CapabilityInt64:                     "Int64",
	spirv.CapabilityGroups:                    "Groups",
	spirv.CapabilityInt16:                     "Int16",
	spirv.CapabilityInt8:                      "Int8",
	spirv.CapabilitySubgroupDispatch:          "SubgroupDispatch",
	spirv.CapabilityVectorComputeINTEL:        "VectorComputeINTEL",
	spirv.CapabilityAsmINTEL:                  "AsmINTEL",
	spirv.CapabilityCooperativeMatrixKHR:      "CooperativeMatrixKHR",
	spirv.CapabilityAtomicFloat32AddEXT:       "AtomicFloat32AddEXT",
	spirv.CapabilityAtomicFloat32MinMaxEXT:    "AtomicFloat32MinMaxEXT",
	spirv.CapabilityBFloat16ConversionINTEL:   "BFloat16ConversionINTEL",
	spirv.CapabilitySubgroupBufferBlockIOINTEL: "SubgroupBufferBlockIOINTEL",
	spirv.CapabilityGroupNonUniform:            "GroupNonUniform",
	spirv.CapabilityGroupNonUniformShuffle:     "GroupNonUniformShuffle",
}

var executionModels = map[uint32]string{
	uint32(spirv.ExecutionModelKernel): "Kernel",
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: spvdump <file.spv>")
		os.Exit(2)
	}
	if err := dump(os.Args[1]); err != nil {
		fmt.Fprintln(os.Stderr, "spvdump:", err)
		os.Exit(1)
	}
}

func dump(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(data) < 20 || len(data)%4 != 0 {
		return fmt.Errorf("%s: not a well-formed SPIR-V word stream (%d bytes)", path, len(data))
	}
	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != spirv.MagicNumber {
		return fmt.Errorf("%s: bad magic 0x%08x", path, magic)
	}

	version := binary.LittleEndian.Uint32(data[4:8])
	bound := binary.LittleEndian.Uint32(data[12:16])
	fmt.Printf("version:    %d.%d\n", (version>>16)&0xff, (version>>8)&0xff)
	fmt.Printf("bound:      %d\n", bound)

	opcounts := make(map[spirv.OpCode]int)
	var capabilities []string
	var extensions []string
	type entryPoint struct {
		model string
		name  string
	}
	var entryPoints []entryPoint

	offset := 20
	for offset+4 <= len(data) {
		word := binary.LittleEndian.Uint32(data[offset:])
		opcode := spirv.OpCode(word & 0xffff)
		wordCount := int(word >> 16)
		if wordCount == 0 || offset+wordCount*4 > len(data) {
			return fmt.Errorf("%s: corrupt instruction at byte offset %d (word count %d)", path, offset, wordCount)
		}
		opcounts[opcode]++

		switch opcode {
		case spirv.OpCapability:
			cap := spirv.Capability(binary.LittleEndian.Uint32(data[offset+4:]))
			capabilities = append(capabilities, capabilityName(cap))
		case spirv.OpExtension:
			extensions = append(extensions, readString(data, offset+4))
		case spirv.OpEntryPoint:
			model := executionModels[binary.LittleEndian.Uint32(data[offset+4:])]
			entryPoints = append(entryPoints, entryPoint{model: model, name: readString(data, offset+12)})
		}

		offset += wordCount * 4
	}

	fmt.Printf("capabilities: %s\n", strings.Join(capabilities, ", "))
	fmt.Printf("extensions:   %s\n", strings.Join(extensions, ", "))
	fmt.Println("entry points:")
	for _, ep := range entryPoints {
		fmt.Printf("  %-8s %s\n", ep.model, ep.name)
	}

	fmt.Println("opcode counts:")
	ops := make([]spirv.OpCode, 0, len(opcounts))
	for op := range opcounts {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	for _, op := range ops {
		fmt.Printf("  %-28s %d\n", opcodeName(op), opcounts[op])
	}
	return nil
}

func opcodeName(op spirv.OpCode) string {
	if n, ok := opcodeNames[op]; ok {
		return n
	}
	return fmt.Sprintf("Op<%d>", op)
}

func capabilityName(c spirv.Capability) string {
	if n, ok := capabilityNames[c]; ok {
		return n
	}
	return fmt.Sprintf("Capability<%d>", c)
}

// readString decodes a SPIR-V null-terminated, word-padded UTF-8
// literal string starting at byte offset off.
func readString(data []byte, off int) string {
	var sb strings.Builder
	for i := off; i < len(data); i++ {
		if data[i] == 0 {
			break
		}
		sb.WriteByte(data[i])
	}
	return sb.String()
}
