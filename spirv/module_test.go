package spirv

import (
	"testing"

	"github.com/gogpu/tensorspv/ir"
)

func TestModuleAssignIDsIsSequentialAndBoundsCorrect(t *testing.T) {
	m := NewModule(1, 4)
	u := NewUniquifier(m)

	u.Void()
	u.Scalar(ir.F32)

	m.AssignIDs()

	if m.Bound() == 0 {
		t.Fatal("Bound() == 0 after AssignIDs")
	}
	seen := make(map[uint32]bool)
	for _, sec := range m.sections {
		for _, inst := range sec {
			if inst.Result == nil {
				continue
			}
			v := inst.Result.Value()
			if v == 0 {
				t.Errorf("instruction with a Result left unassigned (value 0)")
			}
			if seen[v] {
				t.Errorf("ID %d assigned to more than one instruction", v)
			}
			seen[v] = true
			if v >= m.Bound() {
				t.Errorf("assigned ID %d >= bound %d", v, m.Bound())
			}
		}
	}
}

func TestInstructionEncodeWordCountMatchesOperands(t *testing.T) {
	m := NewModule(1, 4)
	u := NewUniquifier(m)
	u.Scalar(ir.F32)
	m.AssignIDs()

	for _, sec := range m.sections {
		for _, inst := range sec {
			words := inst.Encode()
			wantCount := uint32(len(words))
			gotCount := words[0] >> 16
			if gotCount != wantCount {
				t.Errorf("opcode %d: header word count %d, encoded %d words", inst.Opcode, gotCount, wantCount)
			}
		}
	}
}

func TestModuleEmitProducesWordAlignedMagicPrefixedStream(t *testing.T) {
	m := NewModule(1, 4)
	u := NewUniquifier(m)
	u.Scalar(ir.F32)
	m.AssignIDs()

	bin := m.Emit()
	if len(bin)%4 != 0 {
		t.Fatalf("emitted binary length %d is not a multiple of 4", len(bin))
	}
	if len(bin) < 20 {
		t.Fatalf("emitted binary shorter than the 5-word header: %d bytes", len(bin))
	}
	magic := uint32(bin[0]) | uint32(bin[1])<<8 | uint32(bin[2])<<16 | uint32(bin[3])<<24
	if magic != MagicNumber {
		t.Errorf("magic = 0x%08x, want 0x%08x", magic, MagicNumber)
	}
}
