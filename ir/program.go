package ir

// Program is the top-level compilation unit: a type Context shared by
// every function it contains, plus the ordered list of functions
// themselves (§3). Functions within a Program may reference each
// other's names for diagnostics but not call each other.
type Program struct {
	Ctx       *Context
	Functions []*Function
}

// NewProgram creates an empty program with a fresh type context.
func NewProgram() *Program {
	return &Program{Ctx: NewContext()}
}

// NewFunction creates a function named name, appends it to p, and
// returns it.
func (p *Program) NewFunction(name string) *Function {
	f := NewFunction(name)
	p.Functions = append(p.Functions, f)
	return f
}

// FunctionByName returns the first function named name, or nil.
func (p *Program) FunctionByName(name string) *Function {
	for _, f := range p.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}
