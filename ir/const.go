package ir

import (
	"fmt"

	"github.com/irforge/recast/types"
)

// Constant is any Value that TypeConverter may operate on in
// const-expr mode: it never requires an insertion point.
type Constant interface {
	Value
	isConstant()
}

// ConstInt is an integer, boolean, or pointer-sized constant.
type ConstInt struct {
	valueBase
	Val int64
}

func NewConstInt(t types.Type, val int64) *ConstInt {
	ci := &ConstInt{Val: val}
	ci.valueBase = newValueBase(t)
	return ci
}

func (c *ConstInt) Repr() string   { return fmt.Sprintf("%s %d", c.typ.Repr(), c.Val) }
func (*ConstInt) isConstant()      {}

// ConstFloat is a floating-point constant.
type ConstFloat struct {
	valueBase
	Val float64
}

func NewConstFloat(t types.Type, val float64) *ConstFloat {
	cf := &ConstFloat{Val: val}
	cf.valueBase = newValueBase(t)
	return cf
}

func (c *ConstFloat) Repr() string { return fmt.Sprintf("%s %g", c.typ.Repr(), c.Val) }
func (*ConstFloat) isConstant()    {}

// Undef is the undefined value of a type — used as the base operand
// of an InsertValue chain when building an aggregate constant from
// scratch (the TypeConverter's aggregate-construction rule).
type Undef struct {
	valueBase
}

func NewUndef(t types.Type) *Undef {
	u := &Undef{}
	u.valueBase = newValueBase(t)
	return u
}

func (u *Undef) Repr() string { return "undef " + u.typ.Repr() }
func (*Undef) isConstant()    {}

// ConstAggregate is a constant array or struct literal built up
// element by element (used by AddressMaterializer when reading an
// initializer out of the image).
type ConstAggregate struct {
	userBase
}

func NewConstAggregate(t types.Type, elems []Value) *ConstAggregate {
	ca := &ConstAggregate{}
	ca.userBase = newUserBase(t, elems)
	registerUses(ca)
	return ca
}

func (c *ConstAggregate) Repr() string {
	s := c.typ.Repr() + " {"
	for i := 0; i < c.NumOperands(); i++ {
		if i > 0 {
			s += ", "
		}
		s += c.Operand(i).Repr()
	}
	return s + "}"
}
func (*ConstAggregate) isConstant() {}

// ConstExpr is a constant expression: the const-expr-mode mirror of a
// cast or aggregate-peel instruction, built by TypeConverter without
// touching the IR. Op is one of the cast/aggregate opcodes (never a
// side-effecting op like OpCall, OpLoad, or OpStore).
type ConstExpr struct {
	userBase
	Op    Op
	Index int // meaningful for OpExtractValue / OpInsertValue
}

func NewConstExpr(op Op, t types.Type, operands ...Value) *ConstExpr {
	ce := &ConstExpr{Op: op}
	ce.userBase = newUserBase(t, operands)
	registerUses(ce)
	return ce
}

func (c *ConstExpr) Repr() string {
	s := c.Op.String() + "(" + c.typ.Repr()
	for i := 0; i < c.NumOperands(); i++ {
		s += ", " + c.Operand(i).Repr()
	}
	return s + ")"
}
func (*ConstExpr) isConstant() {}
