package ir

import (
	"fmt"

	"github.com/irforge/recast/types"
)

// Global is a global object: a variable at an (optional) binary
// address, or a compiler-synthesized global with no address (e.g. an
// interned string table). Its type is always Pointer(T); T is the
// type of the underlying storage.
type Global struct {
	userBase // operand 0, if present, is Init

	Name       string
	Addr       *uint64
	IsConstant bool
	Linkage    Linkage
}

// NewGlobal creates a global of type Pointer(elemType). init may be
// nil (uninitialized / external).
func NewGlobal(name string, elemType types.Type, init Value, linkage Linkage, isConstant bool) *Global {
	g := &Global{Name: name, Linkage: linkage, IsConstant: isConstant}
	ops := []Value{}
	if init != nil {
		ops = []Value{init}
	} else {
		ops = []Value{nil}
	}
	g.userBase = newUserBase(types.Pointer{Elem: elemType}, ops)
	registerUses(g)
	return g
}

// ElemType returns the type of the object the global points to.
func (g *Global) ElemType() types.Type {
	return g.typ.(types.Pointer).Elem
}

// Init returns the initializer value, or nil.
func (g *Global) Init() Value {
	return g.Operand(0)
}

// SetInit installs (or replaces) the initializer, maintaining use
// bookkeeping.
func (g *Global) SetInit(v Value) {
	SetOperand(g, 0, v)
}

func (g *Global) Repr() string {
	addr := "?"
	if g.Addr != nil {
		addr = fmt.Sprintf("0x%x", *g.Addr)
	}
	return fmt.Sprintf("@%s %s [addr=%s]", g.Name, g.ElemType().Repr(), addr)
}
func (*Global) isConstant() {}
