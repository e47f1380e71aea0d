package ir

// Value is an SSA value: a typed, optionally named slot produced by
// exactly one defining site (an Instruction result, a Function
// parameter, or a Region iteration-argument). Values are allocated
// once and referenced thereafter by pointer — the "borrowed reference
// bounded by the arena's lifetime" the design notes describe, with the
// owning Program/Function/Region/Instruction acting as the arena.
type Value struct {
	Type Type
	Name string

	// def records how this value came to exist, for diagnostics and
	// for dominance checks in the verifier. Exactly one of DefInstr,
	// IsParam, IsIterArg is meaningful.
	DefInstr  *Instruction // non-nil if this is an instruction result
	ResultIdx int          // index into DefInstr.Results, if DefInstr != nil
	IsParam   bool         // function parameter
	IsIterArg bool         // region iteration-argument (for's induction var or iter-arg)

	uses []*Use
}

// Use records one occurrence of a Value as an operand.
type Use struct {
	User  *Instruction
	Index int // index into User.Operands
}

// Uses returns every recorded use of v. The verifier and DCE rely on
// this list being kept in sync by addUse/removeUse — callers should
// build and mutate IR through the Builder rather than writing to
// Instruction.Operands directly.
func (v *Value) Uses() []*Use { return v.uses }

// HasUses reports whether any instruction still reads v.
func (v *Value) HasUses() bool { return len(v.uses) > 0 }

func (v *Value) addUse(u *Use) { v.uses = append(v.uses, u) }

func (v *Value) removeUse(user *Instruction, index int) {
	for i, u := range v.uses {
		if u.User == user && u.Index == index {
			v.uses = append(v.uses[:i], v.uses[i+1:]...)
			return
		}
	}
}

// NewValue creates a detached value of the given type. It is typically
// immediately assigned as a function parameter, region iter-arg, or
// instruction result by the Builder.
func NewValue(t Type, name string) *Value {
	return &Value{Type: t, Name: name}
}
