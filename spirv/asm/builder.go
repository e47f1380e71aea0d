// Package asm builds the vISA inline-assembly text strings the SPIR-V
// backend embeds via OpAsmINTEL for the DPAS and block-2D operations
// that have no portable SPIR-V opcode (§4.8). Each builder returns
// plain text plus the constraint string the surrounding
// OpAsmTargetINTEL/OpAsmCallINTEL pair needs; callers are responsible
// for wiring the returned strings into the SPIR-V module.
package asm

// Target identifies the vISA target string passed to OpAsmTargetINTEL.
const Target = "spirv64-unknown-unknown"

// Precision names the element precision vISA's dpas instruction
// accepts for its A/B operands.
type Precision string

const (
	PrecisionBF16 Precision = "bf16"
	PrecisionF16  Precision = "f16"
	PrecisionU8   Precision = "u8"
	PrecisionS8   Precision = "s8"
)

// Instr is anything this package can render into inline-assembly text
// plus an OpAsmCallINTEL operand-constraint string.
type Instr interface {
	Text() string
	Constraints() string
}
