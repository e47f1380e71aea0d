package spirv

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/tensorspv/ir"
)

// Instruction is one SPIR-V instruction prior to ID assignment.
// Result, if non-nil, is the ID box this instruction defines; it must
// also appear in the module's section list at the position that
// determines its assigned number.
type Instruction struct {
	Opcode   OpCode
	Result   *ID
	operands []operand
}

// instBuilder accumulates operand words for one instruction, accepting
// forward ID references in addition to literal words.
type instBuilder struct {
	ops []operand
}

func newInstBuilder() *instBuilder { return &instBuilder{} }

func (b *instBuilder) word(w uint32) *instBuilder  { b.ops = append(b.ops, lit(w)); return b }
func (b *instBuilder) id(id *ID) *instBuilder      { b.ops = append(b.ops, ref(id)); return b }
func (b *instBuilder) words(ws []uint32) *instBuilder {
	for _, w := range ws {
		b.ops = append(b.ops, lit(w))
	}
	return b
}

// str appends s as SPIR-V's null-terminated, word-padded UTF-8 string
// encoding.
func (b *instBuilder) str(s string) *instBuilder {
	bs := []byte(s)
	bs = append(bs, 0)
	for len(bs)%4 != 0 {
		bs = append(bs, 0)
	}
	for i := 0; i < len(bs); i += 4 {
		w := uint32(bs[i]) | uint32(bs[i+1])<<8 | uint32(bs[i+2])<<16 | uint32(bs[i+3])<<24
		b.ops = append(b.ops, lit(w))
	}
	return b
}

func (b *instBuilder) build(op OpCode, result *ID) *Instruction {
	return &Instruction{Opcode: op, Result: result, operands: b.ops}
}

// section identifies which of the ten ordered module sections an
// instruction belongs to (§4.4). It indexes the Module's per-section
// slices; the Module stores sections as separate slices rather than
// tagging each Instruction, the way the SPIR-V spec itself treats
// section membership as purely positional.
type section int

const (
	sectionCapability section = iota
	sectionExtension
	sectionExtInstImport
	sectionMemoryModel
	sectionEntryPoint
	sectionExecutionMode
	sectionDecoration
	sectionDebug
	sectionTypeConstVar
	sectionFunction
)

// Module is an in-memory SPIR-V module: the ten ordered sections of
// §4.4 (debug names are folded between decoration and type-const-var,
// matching where OpName/OpMemberName legally sit) plus header fields.
type Module struct {
	VersionMajor, VersionMinor uint32
	Generator                  uint32
	Schema                     uint32

	sections [10][]*Instruction

	bound uint32
}

// NewModule creates an empty module targeting the given SPIR-V
// version.
func NewModule(versionMajor, versionMinor uint32) *Module {
	return &Module{VersionMajor: versionMajor, VersionMinor: versionMinor, Generator: 0}
}

// emit appends inst to the given section.
func (m *Module) emit(sec section, inst *Instruction) {
	m.sections[sec] = append(m.sections[sec], inst)
}

// forwardRefAllowed is the set of opcodes a forward-referenced ID may
// legally be the result of (§4.9): label targets of branches/merges,
// variables and pointers self-referencing their own declaration
// through a later access, and functions called before their
// definition is lowered.
var forwardRefAllowed = map[OpCode]bool{
	OpFunction:    true,
	OpVariable:    true,
	OpLabel:       true,
	OpTypePointer: true,
}

// AssignIDs walks every section in fixed module order and assigns each
// instruction with a non-nil Result the next sequential positive ID,
// then sets the module bound to one past the largest assigned ID
// (§4.9, §8 "Bound correctness"). Along the way it enforces SPIR-V's
// forward-reference rule: an operand referring to an ID not yet
// assigned at that point in module order is only legal when that ID's
// defining opcode is in forwardRefAllowed, or when the referencing
// instruction is itself OpPhi (which legitimately reads not-yet-
// computed back-edge values). Must be called exactly once, after every
// instruction that will appear in the module has been emitted.
func (m *Module) AssignIDs() error {
	defOp := make(map[*ID]OpCode)
	for _, sec := range m.sections {
		for _, inst := range sec {
			if inst.Result != nil {
				defOp[inst.Result] = inst.Opcode
			}
		}
	}

	next := uint32(1)
	for _, sec := range m.sections {
		for _, inst := range sec {
			for _, op := range inst.operands {
				if !op.isRef || op.ref == nil || op.ref.value != 0 {
					continue
				}
				if inst.Opcode == OpPhi || forwardRefAllowed[defOp[op.ref]] {
					continue
				}
				return ir.Diagnostic{
					Kind:    ir.ErrSPIRVForbiddenForwardDecl,
					Message: fmt.Sprintf("instruction %d references an id not yet defined (defining opcode %d)", inst.Opcode, defOp[op.ref]),
				}
			}
			if inst.Result != nil && inst.Result.value == 0 {
				inst.Result.value = next
				next++
			}
		}
	}
	m.bound = next
	return nil
}

// Bound returns the header bound computed by the most recent
// AssignIDs call.
func (m *Module) Bound() uint32 { return m.bound }

// Encode resolves every operand and serializes inst to its SPIR-V word
// encoding: a single word_count<<16|opcode header word (§6, §8
// "Word-count correctness") followed by the result-type, result-id (if
// present as a leading pair in Words — callers are responsible for
// placing them in the order the opcode's grammar specifies) and
// operand words.
func (inst *Instruction) Encode() []uint32 {
	words := make([]uint32, 0, len(inst.operands)+1)
	wordCount := uint32(len(inst.operands) + 1)
	words = append(words, (wordCount<<16)|uint32(inst.Opcode))
	for _, op := range inst.operands {
		words = append(words, op.resolve())
	}
	return words
}

// Emit serializes the whole module to its binary word stream: the
// 5-word header followed by every section's instructions in fixed
// order (§6 "SPIR-V binary (output)"). AssignIDs must have been called
// first.
func (m *Module) Emit() []byte {
	var words []uint32
	words = append(words,
		MagicNumber,
		(m.VersionMajor<<16)|(m.VersionMinor<<8),
		m.Generator,
		m.bound,
		m.Schema,
	)
	for _, sec := range m.sections {
		for _, inst := range sec {
			words = append(words, inst.Encode()...)
		}
	}

	out := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}
