// Package tensorspv is a just-in-time compiler that lowers a small
// tensor/BLAS intermediate representation into SPIR-V binary modules
// targeting OpenCL-style accelerator devices — in particular Intel
// Xe-class GPUs with 2D block load/store and systolic DPAS instructions.
//
// Given a program of kernel functions expressed in the tensor IR (see
// package ir), the compiler produces a loadable SPIR-V binary together
// with per-kernel metadata (subgroup size and work-group size).
//
// # Pipeline
//
// The compiler does not parse source text; callers build an *ir.Program
// directly (or via their own front end) and pass it to Compile. The
// pipeline is:
//
//	Program → verify → optimize (ir/passes) → lower (spirv) → assemble → Binary
//
// Example:
//
//	prog := ir.NewProgram()
//	fn := prog.NewFunction("saxpy")
//	// ... build fn.Body with the ir package's instruction constructors ...
//	bin, err := tensorspv.Compile(prog, device.Generic16(), tensorspv.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Scope
//
// tensorspv emits SPIR-V only: there is no OpenCL-C textual backend, no
// dynamic linking of the produced module, and no auto-tuning — tile
// sizes and work-group shapes are chosen by a deterministic heuristic
// over a tabulated device description (see package device).
package tensorspv
