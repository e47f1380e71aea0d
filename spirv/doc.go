// Package spirv models an in-memory SPIR-V module — its ten
// strictly ordered sections, ID assignment, and binary word-stream
// emission — and lowers a verified tensorspv/ir.Program into one.
//
// Rather than allocating every ID eagerly as each instruction is
// appended, this package splits construction into two phases: lowering
// appends instructions
// that reference unresolved *ID placeholders for forward uses (a
// structured branch to a not-yet-emitted loop header, an OpPhi operand
// from a sibling block), and Module.AssignIDs walks the finished
// section order exactly once to hand out sequential numbers, so a
// result's ID always reflects its true position in the emitted module
// regardless of the order its defining instruction was constructed in.
package spirv
