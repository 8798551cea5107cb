// Package types implements the IR type model: a tagged variant over
// the handful of "machine-like" shapes a lifted program can express.
package types

import (
	"fmt"
	"strings"
)

// Type is any IR type. Every Value has exactly one Type.
type Type interface {
	// Repr returns the source-level IR string for the type, the form
	// persisted into ConfigStore's type-llvm-ir field.
	Repr() string

	// Equal reports whether t and other denote the same type.
	Equal(other Type) bool
}

// Void is the type of a value-less instruction result (e.g. a Store
// or a void-returning Call).
type Void struct{}

func (Void) Repr() string        { return "void" }
func (Void) Equal(o Type) bool   { _, ok := o.(Void); return ok }

// Int is an integer of arbitrary bit width. Signedness is not part of
// the type: per spec, integer conversions are always performed as
// signed casts by this core, and unsigned semantics are recovered by
// later passes at the operand level.
type Int struct {
	Bits uint
}

func (i Int) Repr() string { return fmt.Sprintf("i%d", i.Bits) }

func (i Int) Equal(o Type) bool {
	oi, ok := o.(Int)
	return ok && oi.Bits == i.Bits
}

// SupportedFloatWidths enumerates the only bit widths a Float may
// legally carry; anything else must be routed through the i32
// fallback described in the TypeConverter decision table.
var SupportedFloatWidths = map[uint]bool{16: true, 32: true, 64: true, 80: true}

// Float is a floating-point type of one of the supported widths.
type Float struct {
	Bits uint
}

func (f Float) Repr() string {
	switch f.Bits {
	case 16:
		return "half"
	case 32:
		return "float"
	case 64:
		return "double"
	case 80:
		return "x86_fp80"
	default:
		return fmt.Sprintf("f%d", f.Bits)
	}
}

func (f Float) Equal(o Type) bool {
	of, ok := o.(Float)
	return ok && of.Bits == f.Bits
}

// Pointer is a typed pointer; the element type is always recoverable.
type Pointer struct {
	Elem Type
}

func (p Pointer) Repr() string { return p.Elem.Repr() + "*" }

func (p Pointer) Equal(o Type) bool {
	op, ok := o.(Pointer)
	return ok && op.Elem.Equal(p.Elem)
}

// Array is a fixed-length, same-typed block.
type Array struct {
	Elem Type
	Len  uint
}

func (a Array) Repr() string { return fmt.Sprintf("[%d x %s]", a.Len, a.Elem.Repr()) }

func (a Array) Equal(o Type) bool {
	oa, ok := o.(Array)
	return ok && oa.Len == a.Len && oa.Elem.Equal(a.Elem)
}

// Struct is a sequence of fields, contiguous unless Packed is false
// (in which case ordinary alignment padding applies).
type Struct struct {
	Name   string
	Fields []Type
	Packed bool
}

func (s Struct) Repr() string {
	if s.Name != "" {
		return "%" + s.Name
	}
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = f.Repr()
	}
	open, close := "{", "}"
	if s.Packed {
		open, close = "<{", "}>"
	}
	return open + strings.Join(parts, ", ") + close
}

func (s Struct) Equal(o Type) bool {
	os, ok := o.(Struct)
	if !ok || len(os.Fields) != len(s.Fields) || os.Packed != s.Packed {
		return false
	}
	for i := range s.Fields {
		if !s.Fields[i].Equal(os.Fields[i]) {
			return false
		}
	}
	return true
}

// IsAggregate reports whether t is a Struct or Array — the types that
// machine instructions can never load or store directly.
func IsAggregate(t Type) bool {
	switch t.(type) {
	case Struct, Array:
		return true
	default:
		return false
	}
}

// ElemAt returns the type of field/element index i of an aggregate
// type, used by the TypeConverter's "recurse into field[0]" rule.
func ElemAt(t Type, i int) (Type, bool) {
	switch v := t.(type) {
	case Struct:
		if i < 0 || i >= len(v.Fields) {
			return nil, false
		}
		return v.Fields[i], true
	case Array:
		if uint(i) >= v.Len {
			return nil, false
		}
		return v.Elem, true
	default:
		return nil, false
	}
}

// Func is a function signature: return type, ordered parameter types,
// and whether it is variadic.
type Func struct {
	Ret    Type
	Params []Type
	Vararg bool
}

func (f Func) Repr() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.Repr()
	}
	va := ""
	if f.Vararg {
		va = ", ..."
	}
	return fmt.Sprintf("%s (%s%s)", f.Ret.Repr(), strings.Join(parts, ", "), va)
}

func (f Func) Equal(o Type) bool {
	of, ok := o.(Func)
	if !ok || of.Vararg != f.Vararg || !of.Ret.Equal(f.Ret) || len(of.Params) != len(f.Params) {
		return false
	}
	for i := range f.Params {
		if !f.Params[i].Equal(of.Params[i]) {
			return false
		}
	}
	return true
}

// IsValidPointee reports whether t may legally be the Elem of a
// Pointer / the type of an Alloca. Void and raw Func types are not;
// everything else is.
func IsValidPointee(t Type) bool {
	switch t.(type) {
	case Void, Func:
		return false
	default:
		return true
	}
}
