package ir

import "fmt"

// DynamicSize marks a memref/group shape or stride entry whose value is
// supplied at kernel launch rather than known at compile time.
const DynamicSize int64 = -1

// Type is an IR type value. Context.Intern keeps one canonical entry
// per structural shape and returns a copy of it, so Types carry no
// pointer identity: two Types from the same Context for structurally
// equal inner types hold equal Inner values (see Context.Intern).
type Type struct {
	Inner TypeInner
}

// TypeInner is the closed set of type kinds. Implemented by VoidType,
// BooleanType, ScalarType, MemrefType, GroupType, and CoopMatrixType.
type TypeInner interface {
	typeInner()
	key() string
}

// VoidType is the type of instructions with no result (e.g. store, barrier).
type VoidType struct{}

func (VoidType) typeInner()  {}
func (VoidType) key() string { return "void" }

// BooleanType is the single-bit boolean type produced by compare instructions.
type BooleanType struct{}

func (BooleanType) typeInner()  {}
func (BooleanType) key() string { return "bool" }

// ScalarKind enumerates the scalar element kinds of §3.
type ScalarKind uint8

const (
	I8 ScalarKind = iota
	I16
	I32
	I64
	Index // platform-sized: i32 or i64, resolved by device.Info.IndexWidth
	F16
	BF16
	F32
	F64
	C32 // complex, two f32 lanes
	C64 // complex, two f64 lanes
)

// String renders the scalar kind the way diagnostics and SPIR-V debug
// names spell it.
func (k ScalarKind) String() string {
	switch k {
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case Index:
		return "index"
	case F16:
		return "f16"
	case BF16:
		return "bf16"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case C32:
		return "c32"
	case C64:
		return "c64"
	default:
		return fmt.Sprintf("scalar(%d)", uint8(k))
	}
}

// IsInteger reports whether k is one of the signed-integer or index kinds.
func (k ScalarKind) IsInteger() bool {
	switch k {
	case I8, I16, I32, I64, Index:
		return true
	default:
		return false
	}
}

// IsFloat reports whether k is one of the real floating-point kinds.
func (k ScalarKind) IsFloat() bool {
	switch k {
	case F16, BF16, F32, F64:
		return true
	default:
		return false
	}
}

// IsComplex reports whether k is a complex kind.
func (k ScalarKind) IsComplex() bool {
	return k == C32 || k == C64
}

// ComponentWidth returns the width in bytes of a single lane: for
// complex kinds this is the width of one real/imaginary component, not
// the composite.
func (k ScalarKind) ComponentWidth() int {
	switch k {
	case I8:
		return 1
	case I16, F16, BF16:
		return 2
	case I32, F32, C32:
		return 4
	case I64, F64, C64:
		return 8
	case Index:
		return 8 // widened by device.Info.IndexWidth at lowering time
	default:
		return 0
	}
}

// RealComponent returns the real scalar kind backing a complex kind
// (F32 for C32, F64 for C64); it panics if k is not complex.
func (k ScalarKind) RealComponent() ScalarKind {
	switch k {
	case C32:
		return F32
	case C64:
		return F64
	default:
		panic(fmt.Sprintf("ir: RealComponent of non-complex kind %s", k))
	}
}

// ScalarType is a scalar element type (§3).
type ScalarType struct {
	Kind ScalarKind
}

func (ScalarType) typeInner()       {}
func (s ScalarType) key() string    { return "scalar:" + s.Kind.String() }
func (s ScalarType) String() string { return s.Kind.String() }

// AddressSpace is the memory space a Memref points into.
type AddressSpace uint8

const (
	Global AddressSpace = iota
	Local              // workgroup-shared / SLM
	Private            // per-lane, register-resident in practice
)

func (s AddressSpace) String() string {
	switch s {
	case Global:
		return "global"
	case Local:
		return "local"
	case Private:
		return "private"
	default:
		return "addrspace(?)"
	}
}

// MemrefType designates a strided multi-dimensional array (§3, §GLOSSARY).
// Shape and Stride entries equal to DynamicSize are supplied at launch.
type MemrefType struct {
	Element Type
	Shape   []int64
	Stride  []int64
	Space   AddressSpace
}

func (MemrefType) typeInner() {}

func (m MemrefType) key() string {
	k := fmt.Sprintf("memref:%p:%d:", m.Element.Inner, m.Space)
	for _, s := range m.Shape {
		k += fmt.Sprintf("%d,", s)
	}
	k += ";"
	for _, s := range m.Stride {
		k += fmt.Sprintf("%d,", s)
	}
	return k
}

// Rank returns the number of dimensions.
func (m MemrefType) Rank() int { return len(m.Shape) }

// HasDynamicShape reports whether any shape entry is DynamicSize.
func (m MemrefType) HasDynamicShape() bool {
	for _, s := range m.Shape {
		if s == DynamicSize {
			return true
		}
	}
	return false
}

// HasDynamicStride reports whether any stride entry is DynamicSize.
func (m MemrefType) HasDynamicStride() bool {
	for _, s := range m.Stride {
		if s == DynamicSize {
			return true
		}
	}
	return false
}

// GroupType is an array of memrefs sharing an element type, indexed by
// a single dynamic index at load time (§3, §GLOSSARY). Offset tracks
// whether loading a member from the group additionally carries a
// dynamic base offset (used by tensor-batch kernels).
type GroupType struct {
	Element Type
	Offset  bool
}

func (GroupType) typeInner() {}
func (g GroupType) key() string {
	return fmt.Sprintf("group:%p:%v", g.Element.Inner, g.Offset)
}

// CoopUse classifies how a cooperative-matrix value participates in a
// coop_mul_add: as the A (left) or B (right) operand, or as the
// accumulator/result (Acc).
type CoopUse uint8

const (
	CoopA CoopUse = iota
	CoopB
	CoopAcc
)

func (u CoopUse) String() string {
	switch u {
	case CoopA:
		return "A"
	case CoopB:
		return "B"
	case CoopAcc:
		return "Acc"
	default:
		return "?"
	}
}

// CoopMatrixType is a matrix-typed value whose components are
// distributed across the lanes of a subgroup (§3, §GLOSSARY).
type CoopMatrixType struct {
	Component ScalarType
	Rows      int64
	Cols      int64
	Use       CoopUse
}

func (CoopMatrixType) typeInner() {}
func (c CoopMatrixType) key() string {
	return fmt.Sprintf("coop:%s:%dx%d:%s", c.Component.Kind, c.Rows, c.Cols, c.Use)
}
