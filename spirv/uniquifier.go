package spirv

import (
	"fmt"

	"github.com/gogpu/tensorspv/ir"
)

// Uniquifier memoizes, by structural key, every scalar/vector/pointer/
// function type, typed constant, built-in variable, imported extended
// instruction set, and declared capability/extension a module needs
// (§4.5), guaranteeing a single definition per structural shape.
type Uniquifier struct {
	m *Module

	types     map[string]*ID
	pointers  map[string]*ID
	functions map[string]*ID
	constants map[string]*ID
	builtins  map[string]builtinVar
	extInsts  map[string]*ID

	capabilities map[Capability]bool
	extensions   map[Extension]bool
}

type builtinVar struct {
	id  *ID
	typ *ID
}

// NewUniquifier creates a Uniquifier that emits into m.
func NewUniquifier(m *Module) *Uniquifier {
	return &Uniquifier{
		m:            m,
		types:        make(map[string]*ID),
		pointers:     make(map[string]*ID),
		functions:    make(map[string]*ID),
		constants:    make(map[string]*ID),
		builtins:     make(map[string]builtinVar),
		extInsts:     make(map[string]*ID),
		capabilities: make(map[Capability]bool),
		extensions:   make(map[Extension]bool),
	}
}

// RequireCapability records that cap must appear in the module's
// capability section, emitting it the first time it's requested.
func (u *Uniquifier) RequireCapability(cap Capability) {
	if u.capabilities[cap] {
		return
	}
	u.capabilities[cap] = true
	b := newInstBuilder().word(uint32(cap))
	u.m.emit(sectionCapability, b.build(OpCapability, nil))
}

// RequireExtension records that ext must appear in the module's
// extension section, emitting it the first time it's requested.
func (u *Uniquifier) RequireExtension(ext Extension) {
	if u.extensions[ext] {
		return
	}
	u.extensions[ext] = true
	b := newInstBuilder().str(string(ext))
	u.m.emit(sectionExtension, b.build(OpExtension, nil))
}

// ExtInstImport returns the id of the imported extended instruction
// set named name (e.g. "OpenCL.std"), importing it the first time it's
// requested.
func (u *Uniquifier) ExtInstImport(name string) *ID {
	if id, ok := u.extInsts[name]; ok {
		return id
	}
	id := NewID()
	b := newInstBuilder().str(name)
	u.m.emit(sectionExtInstImport, b.build(OpExtInstImport, id))
	u.extInsts[name] = id
	return id
}

// Void returns the id of OpTypeVoid, emitting it once.
func (u *Uniquifier) Void() *ID { return u.typeOnce("void", func() *Instruction {
	return newInstBuilder().build(OpTypeVoid, nil)
})
}

// Bool returns the id of OpTypeBool, emitting it once.
func (u *Uniquifier) Bool() *ID { return u.typeOnce("bool", func() *Instruction {
	return newInstBuilder().build(OpTypeBool, nil)
})
}

// Scalar returns the id of the OpTypeInt/OpTypeFloat for kind,
// emitting it once. Complex kinds are not scalar at the SPIR-V level:
// callers lower them to a 2-component vector of the real component
// type via Vector.
func (u *Uniquifier) Scalar(kind ir.ScalarKind) *ID {
	key := fmt.Sprintf("scalar:%s", kind)
	return u.typeOnce(key, func() *Instruction {
		b := newInstBuilder()
		width := uint32(kind.ComponentWidth() * 8)
		if kind.IsFloat() {
			return b.word(width).build(OpTypeFloat, nil)
		}
		signed := uint32(1)
		return b.word(width).word(signed).build(OpTypeInt, nil)
	})
}

// Vector returns the id of an OpTypeVector of the given component type
// and element count, emitting it once.
func (u *Uniquifier) Vector(component *ID, count uint32) *ID {
	key := fmt.Sprintf("vec:%p:%d", component, count)
	return u.typeOnce(key, func() *Instruction {
		return newInstBuilder().id(component).word(count).build(OpTypeVector, nil)
	})
}

// Pointer returns the id of an OpTypePointer into storageClass
// pointing at pointee, emitting it once.
func (u *Uniquifier) Pointer(storageClass StorageClass, pointee *ID) *ID {
	key := fmt.Sprintf("ptr:%d:%p", storageClass, pointee)
	if id, ok := u.pointers[key]; ok {
		return id
	}
	id := NewID()
	b := newInstBuilder().word(uint32(storageClass)).id(pointee)
	u.m.emit(sectionTypeConstVar, b.build(OpTypePointer, id))
	u.pointers[key] = id
	return id
}

// FunctionType returns the id of an OpTypeFunction with the given
// return and parameter types, emitting it once.
func (u *Uniquifier) FunctionType(ret *ID, params []*ID) *ID {
	key := fmt.Sprintf("fn:%p", ret)
	for _, p := range params {
		key += fmt.Sprintf(":%p", p)
	}
	if id, ok := u.functions[key]; ok {
		return id
	}
	id := NewID()
	b := newInstBuilder().id(ret)
	for _, p := range params {
		b.id(p)
	}
	u.m.emit(sectionTypeConstVar, b.build(OpTypeFunction, id))
	u.functions[key] = id
	return id
}

func (u *Uniquifier) typeOnce(key string, build func() *Instruction) *ID {
	if id, ok := u.types[key]; ok {
		return id
	}
	inst := build()
	id := NewID()
	inst.Result = id
	u.m.emit(sectionTypeConstVar, inst)
	u.types[key] = id
	return id
}

// IntConstant returns the id of an OpConstant of integer type typ
// holding value, emitting it once per (type, value) pair. Negative
// values are encoded as their two's-complement bit pattern, consistent
// with how OpConstant represents signed integers.
func (u *Uniquifier) IntConstant(typ *ID, width int, value int64) *ID {
	key := fmt.Sprintf("iconst:%p:%d", typ, value)
	if id, ok := u.constants[key]; ok {
		return id
	}
	id := NewID()
	b := newInstBuilder().id(typ)
	if width > 32 {
		u64 := uint64(value)
		b.word(uint32(u64)).word(uint32(u64 >> 32))
	} else {
		b.word(uint32(value))
	}
	u.m.emit(sectionTypeConstVar, b.build(OpConstant, id))
	u.constants[key] = id
	return id
}

// FloatConstant returns the id of an OpConstant of float type typ
// holding value (bit pattern selected by width), emitting it once.
func (u *Uniquifier) FloatConstant(typ *ID, width int, value float64) *ID {
	key := fmt.Sprintf("fconst:%p:%g", typ, value)
	if id, ok := u.constants[key]; ok {
		return id
	}
	id := NewID()
	b := newInstBuilder().id(typ)
	b.words(floatBits(width, value))
	u.m.emit(sectionTypeConstVar, b.build(OpConstant, id))
	u.constants[key] = id
	return id
}

// BoolConstant returns the id of OpConstantTrue/OpConstantFalse,
// emitting it once.
func (u *Uniquifier) BoolConstant(boolType *ID, value bool) *ID {
	key := fmt.Sprintf("bconst:%v", value)
	if id, ok := u.constants[key]; ok {
		return id
	}
	id := NewID()
	op := OpConstantFalse
	if value {
		op = OpConstantTrue
	}
	u.m.emit(sectionTypeConstVar, newInstBuilder().build(op, id))
	u.constants[key] = id
	return id
}

// CompositeConstant returns the id of an OpConstantComposite of typ
// over constituents, emitting it once per distinct constituent list —
// used for complex literals (a 2-lane vector of real, imaginary).
func (u *Uniquifier) CompositeConstant(typ *ID, constituents []*ID) *ID {
	key := fmt.Sprintf("cconst:%p", typ)
	for _, c := range constituents {
		key += fmt.Sprintf(":%p", c)
	}
	if id, ok := u.constants[key]; ok {
		return id
	}
	id := NewID()
	b := newInstBuilder().id(typ)
	for _, c := range constituents {
		b.id(c)
	}
	u.m.emit(sectionTypeConstVar, b.build(OpConstantComposite, id))
	u.constants[key] = id
	return id
}

// BuiltinVariable returns the (variable id, pointer type id) pair for
// the named built-in (e.g. "GlobalInvocationId", "SubgroupSize"),
// declaring the OpVariable and its BuiltIn decoration once.
func (u *Uniquifier) BuiltinVariable(name string, builtin BuiltIn, valueType *ID) (*ID, *ID) {
	if bv, ok := u.builtins[name]; ok {
		return bv.id, bv.typ
	}
	ptrType := u.Pointer(StorageClassInput, valueType)
	varID := NewID()
	b := newInstBuilder().word(uint32(StorageClassInput))
	u.m.emit(sectionTypeConstVar, b.build(OpVariable, varID))
	dec := newInstBuilder().id(varID).word(uint32(DecorationBuiltIn)).word(uint32(builtin))
	u.m.emit(sectionDecoration, dec.build(OpDecorate, nil))
	u.builtins[name] = builtinVar{id: varID, typ: ptrType}
	return varID, ptrType
}

func floatBits(width int, value float64) []uint32 {
	switch width {
	case 64:
		bits := float64bits(value)
		return []uint32{uint32(bits), uint32(bits >> 32)}
	case 32:
		return []uint32{float32bits(float32(value))}
	case 16:
		return []uint32{uint32(float16bits(value))}
	default:
		return []uint32{float32bits(float32(value))}
	}
}
