// Package convert implements the TypeConverter: given a value and a
// target type, it inserts the minimal chain of primitive casts
// needed to bridge the two, either as live instructions spliced into
// the IR or as a constant-expression tree, per spec.md §4.1. The
// decision table and every tie-break (signed integer casts, the
// float-width fallback to i32, the aggregate field[0] peel) are
// ported directly from the source decompiler's convertToType.
package convert

import (
	"fmt"

	"github.com/irforge/recast/ir"
	"github.com/irforge/recast/types"
	"tlog.app/go/errors"
)

// Mode selects how Convert realizes the cast chain.
type Mode int

const (
	// Live creates real instructions, spliced in at Point.
	Live Mode = iota
	// ConstExpr builds a constant-expression tree and mutates
	// nothing; v must already be an ir.Constant.
	ConstExpr
)

// Point is the insertion anchor for Live mode: exactly one of Before
// or After must be set.
type Point struct {
	Before *ir.Instr
	After  *ir.Instr
}

func (p Point) valid() bool {
	return (p.Before != nil) != (p.After != nil)
}

// ErrUnsupportedConversion is returned when no rule bridges Src to Dst.
type ErrUnsupportedConversion struct {
	Src, Dst types.Type
}

func (e *ErrUnsupportedConversion) Error() string {
	return fmt.Sprintf("unsupported conversion: %s -> %s", e.Src.Repr(), e.Dst.Repr())
}

// Convert returns a value of type target built from v. If v's type
// already equals target, v is returned unchanged. In Live mode,
// new instructions are inserted at p; in ConstExpr mode, p is
// ignored and v must be an ir.Constant.
func Convert(v ir.Value, target types.Type, p Point, mode Mode) (ir.Value, error) {
	if mode == Live && !p.valid() {
		return nil, errors.New("convert: exactly one of Point.Before/After must be set")
	}
	if mode == ConstExpr {
		if _, ok := v.(ir.Constant); !ok {
			return nil, errors.New("convert: ConstExpr mode requires a constant value, got %T", v)
		}
	}
	return convert(v, target, p, mode)
}

func convert(v ir.Value, target types.Type, p Point, mode Mode) (ir.Value, error) {
	src := v.Type()
	if src.Equal(target) {
		return v, nil
	}

	switch {
	case isPointer(src) && isPointer(target):
		return cast(v, ir.OpBitCast, target, p, mode)

	case isPointer(src) && isInt(target):
		return cast(v, ir.OpPtrToInt, target, p, mode)

	case isInt(src) && isPointer(target):
		return cast(v, ir.OpIntToPtr, target, p, mode)

	case isInt(src) && isInt(target):
		return cast(v, ir.OpIntCast, target, p, mode)

	case isInt(src) && isFloat(target):
		return intToFloat(v, target.(types.Float), p, mode)

	case isPointer(src) && isFloat(target):
		return viaInt(v, src, target, p, mode)

	case isFloat(src) && isInt(target):
		return floatToInt(v, src.(types.Float), target.(types.Int), p, mode)

	case isFloat(src) && isPointer(target):
		return viaInt(v, src, target, p, mode)

	case isFloat(src) && isFloat(target):
		return cast(v, ir.OpFPCast, target, p, mode)

	case isAggregateLoad(v, mode):
		return loadAggregatePeel(v.(*ir.Instr), target, p, mode)

	case types.IsAggregate(src):
		return aggregatePeelSrc(v, src, target, p, mode)

	case types.IsAggregate(target):
		return buildAggregate(v, target, p, mode)

	default:
		return nil, &ErrUnsupportedConversion{Src: src, Dst: target}
	}
}

func isPointer(t types.Type) bool { _, ok := t.(types.Pointer); return ok }
func isInt(t types.Type) bool     { _, ok := t.(types.Int); return ok }
func isFloat(t types.Type) bool   { _, ok := t.(types.Float); return ok }

// isAggregateLoad is the live-only special case: a Load instruction
// whose *result* type is an aggregate cannot be cast field-by-field
// in place (the hardware never loaded that shape); instead a brand
// new Load through a bitcast pointer is synthesized and the old load
// is discarded by the caller.
func isAggregateLoad(v ir.Value, mode Mode) bool {
	if mode != Live {
		return false
	}
	in, ok := v.(*ir.Instr)
	return ok && in.Op == ir.OpLoad && types.IsAggregate(in.Type())
}

// cast emits (or builds) a single instruction/const-expr of the given
// opcode converting v to target.
func cast(v ir.Value, op ir.Op, target types.Type, p Point, mode Mode) (ir.Value, error) {
	if mode == ConstExpr {
		return ir.NewConstExpr(op, target, v), nil
	}
	in := ir.NewInstr(op, target, v)
	splice(in, p)
	return in, nil
}

func splice(in *ir.Instr, p Point) {
	if p.Before != nil {
		p.Before.Block.InsertBefore(in, p.Before)
	} else {
		p.After.Block.InsertAfter(in, p.After)
	}
}

// pointAfter returns a Point anchored immediately after the given
// value if it is a live instruction, else falls back to the original
// point (used when an intermediate conversion step turned out to be
// a no-op, so the original anchor is still valid).
func pointAfter(v ir.Value, orig Point, mode Mode) Point {
	if mode != Live {
		return orig
	}
	if in, ok := v.(*ir.Instr); ok {
		return Point{After: in}
	}
	return orig
}

// intToFloat implements the Integer -> Float row: pick a same-width
// bitcast-compatible integer, then BitCast to the float type.
func intToFloat(v ir.Value, target types.Float, p Point, mode Mode) (ir.Value, error) {
	toInt := types.Int{Bits: target.Bits}
	szConv, err := convert(v, toInt, p, mode)
	if err != nil {
		return nil, err
	}
	next := pointAfter(szConv, p, mode)
	return cast(szConv, ir.OpBitCast, target, next, mode)
}

// viaInt implements the Pointer<->Float rows, which always route
// through an Integer of matching width first.
func viaInt(v ir.Value, src, target types.Type, p Point, mode Mode) (ir.Value, error) {
	var bits uint
	if f, ok := src.(types.Float); ok {
		bits = f.Bits
	} else if f, ok := target.(types.Float); ok {
		bits = f.Bits
	}
	toInt := types.Int{Bits: bits}
	intConv, err := convert(v, toInt, p, mode)
	if err != nil {
		return nil, err
	}
	next := pointAfter(intConv, p, mode)
	return convert(intConv, target, next, mode)
}

// floatToInt implements the Float -> Integer row: prefer a same-width
// bitcast if target's width is one of the supported float widths;
// otherwise canonicalize through i32 as the spec's fallback mandates.
func floatToInt(v ir.Value, src types.Float, target types.Int, p Point, mode Mode) (ir.Value, error) {
	if !types.SupportedFloatWidths[target.Bits] {
		fpConv, err := convert(v, types.Int{Bits: 32}, p, mode)
		if err != nil {
			return nil, err
		}
		next := pointAfter(fpConv, p, mode)
		return convert(fpConv, target, next, mode)
	}

	ft := types.Float{Bits: target.Bits}
	if !src.Equal(ft) {
		fpConv, err := convert(v, ft, p, mode)
		if err != nil {
			return nil, err
		}
		next := pointAfter(fpConv, p, mode)
		return cast(fpConv, ir.OpBitCast, target, next, mode)
	}
	return cast(v, ir.OpBitCast, target, p, mode)
}

// aggregatePeelSrc implements "Aggregate -> *": extract field 0 and
// recurse. The source decompiler's comment is carried forward: this
// is a last-resort peel for aggregate values that should never have
// existed at the machine-instruction level.
func aggregatePeelSrc(v ir.Value, src types.Type, target types.Type, p Point, mode Mode) (ir.Value, error) {
	field0, ok := types.ElemAt(src, 0)
	if !ok {
		return nil, &ErrUnsupportedConversion{Src: src, Dst: target}
	}
	var simple ir.Value
	if mode == ConstExpr {
		simple = ir.NewConstExpr(ir.OpExtractValue, field0, v)
	} else {
		in := ir.NewInstr(ir.OpExtractValue, field0, v)
		in.Indices = []int{0}
		splice(in, p)
		simple = in
	}
	next := pointAfter(simple, p, mode)
	return convert(simple, target, next, mode)
}

// buildAggregate implements "* -> Aggregate": convert v to the type
// of field 0, then wrap it in an InsertValue (live) or a constant
// InsertValue expression over an Undef base (const-expr).
func buildAggregate(v ir.Value, target types.Type, p Point, mode Mode) (ir.Value, error) {
	field0, ok := types.ElemAt(target, 0)
	if !ok {
		return nil, errors.New("convert: aggregate type %s has no field 0", target.Repr())
	}
	tmp, err := convert(v, field0, p, mode)
	if err != nil {
		return nil, err
	}

	if mode == ConstExpr {
		base := ir.NewUndef(target)
		return ir.NewConstExpr(ir.OpInsertValue, target, base, tmp), nil
	}

	base := ir.NewUndef(target)
	in := ir.NewInstr(ir.OpInsertValue, target, base, tmp)
	in.Indices = []int{0}
	next := pointAfter(tmp, p, mode)
	splice(in, next)
	return in, nil
}

// loadAggregatePeel implements the live-only rule: synthesize a new
// Load whose pointer has been BitCast to Pointer(target), discarding
// the old aggregate-typed load. The caller (mutate.ChangeObjectType
// or a direct convert.Convert caller) is responsible for erasing the
// original load and redirecting its uses to the returned value.
func loadAggregatePeel(oldLoad *ir.Instr, target types.Type, p Point, mode Mode) (ir.Value, error) {
	ptr := oldLoad.PointerOperand()
	castPtr, err := convert(ptr, types.Pointer{Elem: target}, p, mode)
	if err != nil {
		return nil, err
	}
	castInstr, ok := castPtr.(*ir.Instr)
	if !ok {
		return nil, errors.New("convert: aggregate-load peel requires a live pointer cast")
	}
	newLoad := ir.NewLoad(castPtr, target)
	castInstr.Block.InsertAfter(newLoad, castInstr)
	return newLoad, nil
}
