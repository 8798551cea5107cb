// Package ir implements the in-memory SSA program graph: values,
// instructions, basic blocks, functions, and globals, plus the
// use-list bookkeeping that lets ReplaceAllUsesWith run in time
// proportional to the number of users rather than the size of the
// graph.
//
// Value and User deliberately carry unexported methods: only types
// declared in this package may implement them, which keeps the value
// variant closed and every dispatch on it exhaustive, the same
// discipline spec.md's design notes ask for from a tagged union.
package ir

import "github.com/irforge/recast/types"

// Use records one occurrence of a Value as an operand: which User
// holds the reference and at what operand index.
type Use struct {
	Owner User
	Index int
}

// Value is any SSA value: a constant, a global, a function argument,
// or the result of an instruction. Every Value has exactly one Type.
type Value interface {
	Type() types.Type
	Repr() string

	// Users returns a snapshot of the current use list. It is always
	// a fresh copy so callers (notably mutate.ChangeObjectType) can
	// iterate it safely while rewriting the very users it names.
	Users() []Use

	addUser(u Use)
	removeUser(owner User, index int)
}

// User is a Value that itself holds references to other Values as
// operands (an instruction, a global's initializer slot, or a
// constant expression).
type User interface {
	Value
	NumOperands() int
	Operand(i int) Value
	setOperandRaw(i int, v Value)
}

// SetOperand rewrites operand i of u to v, maintaining both old and
// new operands' use lists. Passing v == nil clears the operand
// without installing a new use (used when erasing).
func SetOperand(u User, i int, v Value) {
	if old := u.Operand(i); old != nil {
		old.removeUser(u, i)
	}
	u.setOperandRaw(i, v)
	if v != nil {
		v.addUser(Use{Owner: u, Index: i})
	}
}

// ReplaceAllUsesWith rewrites every current user of old to refer to
// replacement instead. It is the core's single primitive for
// reconnecting the graph after a value is superseded; every operation
// in this module that swaps one Value for another goes through it so
// that invariant 7 (no dangling reference to a superseded object)
// holds without each caller re-deriving it.
func ReplaceAllUsesWith(old, replacement Value) {
	if old == replacement {
		return
	}
	for _, u := range old.Users() {
		SetOperand(u.Owner, u.Index, replacement)
	}
}

// valueBase is embedded by every concrete Value implementation. It
// owns the type and use-list bookkeeping so concrete types only need
// to implement Repr (and, for Users, NumOperands/Operand/setOperandRaw).
type valueBase struct {
	typ   types.Type
	users []Use
}

func newValueBase(t types.Type) valueBase {
	return valueBase{typ: t}
}

func (vb *valueBase) Type() types.Type { return vb.typ }

func (vb *valueBase) Users() []Use {
	out := make([]Use, len(vb.users))
	copy(out, vb.users)
	return out
}

func (vb *valueBase) addUser(u Use) {
	vb.users = append(vb.users, u)
}

func (vb *valueBase) removeUser(owner User, index int) {
	for i, u := range vb.users {
		if u.Owner == owner && u.Index == index {
			vb.users = append(vb.users[:i], vb.users[i+1:]...)
			return
		}
	}
}

// userBase is embedded by every concrete User implementation on top
// of valueBase; it stores the operand slice generically.
type userBase struct {
	valueBase
	ops []Value
}

func newUserBase(t types.Type, ops []Value) userBase {
	return userBase{valueBase: newValueBase(t), ops: ops}
}

// registerUses records u as a user of each of its non-nil operands.
// Constructors call it once the concrete User exists, so operands
// passed at construction appear in their values' use lists just as
// operands installed later through SetOperand do.
func registerUses(u User) {
	for i := 0; i < u.NumOperands(); i++ {
		if op := u.Operand(i); op != nil {
			op.addUser(Use{Owner: u, Index: i})
		}
	}
}

func (ub *userBase) NumOperands() int { return len(ub.ops) }

func (ub *userBase) Operand(i int) Value {
	if i < 0 || i >= len(ub.ops) {
		return nil
	}
	return ub.ops[i]
}

func (ub *userBase) setOperandRaw(i int, v Value) {
	ub.ops[i] = v
}
