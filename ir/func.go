package ir

import "github.com/irforge/recast/types"

// Linkage mirrors the handful of object-file linkages an object
// synthesized by this core can carry.
type Linkage int

const (
	LinkageExternal Linkage = iota
	LinkageInternal
	LinkagePrivate
)

func (l Linkage) String() string {
	switch l {
	case LinkageInternal:
		return "internal"
	case LinkagePrivate:
		return "private"
	default:
		return "external"
	}
}

// Param is a function argument: a Value whose type can be changed in
// place by ObjectMutator via a signature rewrite.
type Param struct {
	valueBase
	Name  string
	Index int
	Func  *Func
}

func (p *Param) Repr() string { return "%" + p.Name }

// Func is a function: its signature, an ordered list of parameters,
// and an ordered list of basic blocks whose first is the entry block.
type Func struct {
	Name    string
	Addr    *uint64
	Sig     types.Func
	Params  []*Param
	Blocks  []*Block
	Linkage Linkage
}

// NewFunc creates a function with params bound to sig's parameter
// types (in order) and no blocks.
func NewFunc(name string, sig types.Func) *Func {
	f := &Func{Name: name, Sig: sig}
	f.Params = make([]*Param, len(sig.Params))
	for i, pt := range sig.Params {
		p := &Param{Name: "", Index: i, Func: f}
		p.valueBase = newValueBase(pt)
		f.Params[i] = p
	}
	return f
}

// Entry returns the function's entry block, or nil if it has none
// yet.
func (f *Func) Entry() *Block {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

// NewBlock appends a new named basic block to the function.
func (f *Func) NewBlock(name string) *Block {
	b := &Block{Name: name, Func: f}
	f.Blocks = append(f.Blocks, b)
	return b
}

// PrependAlloca inserts in at the end of the entry block's alloca
// run — i.e. after any existing allocas, before the first
// non-alloca instruction — preserving invariant 6. The function must
// already have an entry block.
func (f *Func) PrependAlloca(in *Instr) {
	entry := f.Entry()
	if entry == nil {
		panic("ir: PrependAlloca on function with no entry block")
	}
	if anchor := entry.FirstNonAlloca(); anchor != nil {
		entry.InsertBefore(in, anchor)
	} else {
		entry.Append(in)
	}
}

// RebuildSignature replaces f's signature with sig, rebuilding the
// Param slice so every existing *Param keeps its identity: a Param at
// a retyped position has its type changed in place, and only
// positions beyond the old parameter count get fresh Params (callers
// match parameters by Index across a rewrite — see
// mutate.ChangeObjectType).
func (f *Func) RebuildSignature(sig types.Func) {
	f.Sig = sig
	newParams := make([]*Param, len(sig.Params))
	for i, pt := range sig.Params {
		if i < len(f.Params) {
			p := f.Params[i]
			p.typ = pt
			newParams[i] = p
		} else {
			p := &Param{Index: i, Func: f}
			p.valueBase = newValueBase(pt)
			newParams[i] = p
		}
	}
	f.Params = newParams
}
