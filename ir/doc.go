// Package ir defines the tensor/BLAS intermediate representation
// compiled by tensorspv.
//
// The IR is organized around a Program that owns a Context (interned
// types) and an ordered list of Functions. A Function owns a body
// Region; a Region owns an ordered sequence of Instructions; an
// Instruction carries zero or more operand Values, zero or more result
// Values, and zero or more nested child Regions (for structured control
// flow: for, if, parallel).
//
// Values are SSA: every Value is defined by exactly one Instruction
// result, one Function parameter, or one Region iteration-argument.
// Uses must appear in the defining Region or in a Region transitively
// nested within it.
package ir
