package asm

import "fmt"

// DPAS builds the vISA text for one
// dpas.<precA>.<precB>.<systolicDepth>.<repeatCount> instruction
// computing dst = dst + srcA * srcB over an 8-deep systolic array (the
// fixed depth every PVC/DG2 DPAS unit implements), grounded on the
// `raw_sends` call-convention text src/spv/coopmatrix_impl_dpas.*
// emits for a native tile multiply-accumulate.
type DPAS struct {
	PrecA, PrecB  Precision
	SystolicDepth int // fixed at 8 on current Xe hardware
	RepeatCount   int // rows of the result each invocation produces (1-8)
}

var _ Instr = DPAS{}

// Text renders the instruction mnemonic, e.g. "dpas.bf16.bf16.8.8".
func (d DPAS) Text() string {
	return fmt.Sprintf("dpas.%s.%s.%d.%d $0 $1 $2 $3", d.PrecA, d.PrecB, d.SystolicDepth, d.RepeatCount)
}

// Constraints returns the vISA operand-constraint string for a dpas
// call: one write-only accumulator result and three read-only operands
// (accumulator-in, A tile, B tile), matching OpAsmCallINTEL's
// positional argument order.
func (DPAS) Constraints() string { return "=rw,0,rw,rw" }
