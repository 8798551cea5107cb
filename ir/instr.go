package ir

import (
	"fmt"

	"github.com/irforge/recast/types"
)

// Instr is every instruction kind: one struct tagged by Op, per
// spec.md's design notes ("Instruction kind is itself a tagged
// variant"). It is simultaneously a User (of its operands) and a
// Value (its own result; Void-typed for Store/Br/Ret).
type Instr struct {
	userBase

	Op    Op
	Name  string
	Block *Block

	// Indices, when Op is OpExtractValue/OpInsertValue/OpGEP, is the
	// constant index path (GEP here is simplified to a single index,
	// sufficient for the struct/array stepping this core performs;
	// richer multi-index GEPs are a pass-level concern upstream).
	Indices []int

	// Callee is populated only for Op == OpCall.
	Callee *Func
	// Succs holds branch targets for OpBr ([0]) and OpCondBr ([0]=true,[1]=false).
	Succs []*Block
}

// NewInstr creates a detached instruction (not yet owned by a block;
// use Block.InsertBefore/InsertAfter/Append to place it) and records
// it as a user of each of its operands.
func NewInstr(op Op, t types.Type, operands ...Value) *Instr {
	in := &Instr{Op: op}
	in.userBase = newUserBase(t, operands)
	registerUses(in)
	return in
}

func (in *Instr) Repr() string {
	name := in.Name
	if name == "" {
		name = "%_"
	}
	s := name + " = " + in.Op.String() + " " + in.typ.Repr()
	for i := 0; i < in.NumOperands(); i++ {
		if op := in.Operand(i); op != nil {
			s += ", " + op.Repr()
		}
	}
	return s
}

// PointerOperand returns operand 0 when this is a Load or Store
// instruction whose addressed pointer is being examined.
func (in *Instr) PointerOperand() Value {
	switch in.Op {
	case OpLoad:
		return in.Operand(0)
	case OpStore:
		return in.Operand(1)
	default:
		return nil
	}
}

// ValueOperand returns the stored operand of a Store instruction.
func (in *Instr) ValueOperand() Value {
	if in.Op != OpStore {
		return nil
	}
	return in.Operand(0)
}

// NewStore builds a (detached) Store instruction: operand 0 is the
// value being stored, operand 1 is the destination pointer.
func NewStore(val, ptr Value) *Instr {
	return NewInstr(OpStore, types.Void{}, val, ptr)
}

// NewLoad builds a (detached) Load instruction through ptr, yielding
// a value of elemType.
func NewLoad(ptr Value, elemType types.Type) *Instr {
	return NewInstr(OpLoad, elemType, ptr)
}

// NewAlloca builds a (detached) Alloca instruction reserving a stack
// slot of elemType, yielding a Pointer(elemType).
func NewAlloca(elemType types.Type, name string) *Instr {
	in := NewInstr(OpAlloca, types.Pointer{Elem: elemType})
	in.Name = name
	return in
}

func (in *Instr) String() string { return fmt.Sprintf("<instr %s>", in.Repr()) }
