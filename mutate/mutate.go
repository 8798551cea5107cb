// Package mutate implements ObjectMutator: changing the declared type
// of a global, stack local, or function argument, and re-typing every
// use so the graph stays well-formed, per spec.md §4.2.
package mutate

import (
	"fmt"

	"github.com/irforge/recast/config"
	"github.com/irforge/recast/convert"
	"github.com/irforge/recast/image"
	"github.com/irforge/recast/ir"
	"github.com/irforge/recast/types"
	"tlog.app/go/errors"
)

// Context bundles the IrGraph, ConfigStore, and ImageView a single
// decompilation run shares — the "explicit context object threaded
// through every operation" spec.md §9 asks for in place of
// module-level state.
type Context struct {
	Graph *ir.Graph
	Store *config.Store
	Image image.View
}

// ChangeOpts carries the optional knobs change_object_type accepts.
type ChangeOpts struct {
	// Init, if non-nil, is used as a global's new initializer instead
	// of reading one from the image.
	Init ir.Value
	// EraseQueue, if non-nil, defers instruction erasure to the
	// caller instead of erasing eagerly.
	EraseQueue *ir.EraseQueue
	// WideString controls string-initializer interpretation when a
	// global's initializer must be re-read from the image.
	WideString bool
}

// ErrUnsupportedObjectKind is returned when v is not an Alloca
// instruction, a Global, or a Param.
type ErrUnsupportedObjectKind struct {
	Value ir.Value
}

func (e *ErrUnsupportedObjectKind) Error() string {
	return fmt.Sprintf("only globals, allocas, and arguments can have their type changed (got %T)", e.Value)
}

// ChangeObjectType changes v's declared type to target and re-types
// every current user of v so the graph continues to type-check
// (invariant 1 and 7 of spec.md §3). Returns the value that now
// stands in for v — which may be v itself (Param) or a freshly
// declared replacement (Alloca, Global).
func ChangeObjectType(ctx *Context, v ir.Value, target types.Type, opts ChangeOpts) (ir.Value, error) {
	switch v.(type) {
	case *ir.Instr, *ir.Global, *ir.Param:
		// ok
	default:
		return nil, &ErrUnsupportedObjectKind{Value: v}
	}
	if in, ok := v.(*ir.Instr); ok && in.Op != ir.OpAlloca {
		return nil, &ErrUnsupportedObjectKind{Value: v}
	}

	declared := v.Type()
	switch val := v.(type) {
	case *ir.Instr: // Alloca: the declared type is the allocated element type
		declared = val.Type().(types.Pointer).Elem
	case *ir.Global:
		declared = val.ElemType()
	}
	if declared.Equal(target) {
		return v, nil
	}

	origType := v.Type()
	nval, err := redeclare(ctx, v, target, opts)
	if err != nil {
		return nil, err
	}

	// Snapshot users before rewriting: in-place iteration over a use
	// list under mutation has been observed to terminate prematurely
	// (spec.md §4.2 step 3 / §9 design notes) — never range directly
	// over a live use list while rewriting it.
	users := v.Users()

	for _, u := range users {
		if err := retypeUser(ctx, v, nval, origType, u, opts.EraseQueue); err != nil {
			return nil, err
		}
	}

	return nval, nil
}

// redeclare performs step 2 of spec.md §4.2: construct the
// re-declared object of the new type (a new Alloca, a new Global, or
// — for Param — the same Param with its function's signature
// rewritten in place).
func redeclare(ctx *Context, v ir.Value, target types.Type, opts ChangeOpts) (ir.Value, error) {
	switch val := v.(type) {
	case *ir.Instr: // Alloca
		nalloca := ir.NewAlloca(target, val.Name)
		val.Block.Func.PrependAlloca(nalloca)
		if obj, ok := ctx.Store.ByHandle(val); ok {
			obj.TypeIR = target.Repr()
			obj.Type = target
			ctx.Store.Rehandle(val, nalloca)
		}
		return nalloca, nil

	case *ir.Global:
		init := opts.Init
		if init == nil && val.Addr != nil && ctx.Image != nil {
			init = readInitializer(ctx, target, *val.Addr, opts.WideString)
		}
		elemType := target
		if init != nil {
			elemType = init.Type()
		}
		ngv := ir.NewGlobal(val.Name, elemType, init, val.Linkage, val.IsConstant)
		ngv.Addr = val.Addr
		ctx.Graph.AddGlobal(ngv)
		ctx.Graph.RemoveGlobal(val)

		if obj, ok := ctx.Store.ByHandle(val); ok {
			obj.TypeIR = elemType.Repr()
			obj.Type = elemType
			obj.IsWideString = opts.WideString
			ctx.Store.Rehandle(val, ngv)
		}
		return ngv, nil

	case *ir.Param:
		sig := val.Func.Sig
		newParams := append([]types.Type(nil), sig.Params...)
		newParams[val.Index] = target
		val.Func.RebuildSignature(types.Func{Ret: sig.Ret, Params: newParams, Vararg: sig.Vararg})
		return val, nil

	default:
		return nil, &ErrUnsupportedObjectKind{Value: v}
	}
}

// readInitializer reads a fresh initializer constant of t at addr
// from the image, returning nil if unavailable (the caller falls
// back to an uninitialized declaration of t).
func readInitializer(ctx *Context, t types.Type, addr uint64, wideString bool) ir.Value {
	_ = wideString // string-width interpretation is resolved by the Constant collaborator
	c, ok := ctx.Image.Constant(t, addr)
	if !ok {
		return nil
	}
	v, ok := c.(ir.Value)
	if !ok {
		return nil
	}
	return v
}

// retypeUser re-types a single user of v by kind, per spec.md §4.2
// step 4's exhaustive case list.
func retypeUser(ctx *Context, v, nval ir.Value, origType types.Type, u ir.Use, q *ir.EraseQueue) error {
	switch owner := u.Owner.(type) {
	case *ir.Instr:
		return retypeInstrUser(owner, u.Index, v, nval, origType, q)
	case *ir.Global:
		return retypeGlobalUser(owner, v, nval)
	case *ir.ConstAggregate, *ir.ConstExpr:
		return retypeConstUser(owner.(ir.User), u.Index, v, nval)
	default:
		return errors.New("mutate: unhandled user kind %T", owner)
	}
}

func retypeInstrUser(in *ir.Instr, idx int, v, nval ir.Value, origType types.Type, q *ir.EraseQueue) error {
	switch in.Op {
	case ir.OpStore:
		if idx == 1 { // store's pointer operand is v
			elemT := nval.Type().(types.Pointer).Elem
			conv, err := convert.Convert(in.ValueOperand(), elemT, convert.Point{Before: in}, convert.Live)
			if err != nil {
				return err
			}
			ir.SetOperand(in, 0, conv)
			ir.SetOperand(in, 1, nval)
			return nil
		}
		// store's stored-value operand is v
		conv, err := convert.Convert(nval, origType, convert.Point{Before: in}, convert.Live)
		if err != nil {
			return err
		}
		ir.SetOperand(in, 0, conv)
		return nil

	case ir.OpLoad:
		newLoad := ir.NewLoad(nval, nval.Type().(types.Pointer).Elem)
		in.Block.InsertBefore(newLoad, in)
		conv, err := convert.Convert(newLoad, in.Type(), convert.Point{Before: in}, convert.Live)
		if err != nil {
			return err
		}
		if conv != ir.Value(in) {
			ir.ReplaceAllUsesWith(in, conv)
			ir.EraseOrQueue(q, in)
		}
		return nil

	default:
		if in.Op.IsCast() {
			if nval.Type().Equal(in.Type()) {
				if v != ir.Value(in) {
					ir.ReplaceAllUsesWith(in, nval)
					ir.EraseOrQueue(q, in)
				}
				return nil
			}
			conv, err := convert.Convert(nval, in.Type(), convert.Point{Before: in}, convert.Live)
			if err != nil {
				return err
			}
			if ir.Value(in) != conv {
				ir.ReplaceAllUsesWith(in, conv)
				ir.EraseOrQueue(q, in)
			}
			return nil
		}

		// GEP, Call, Branch, arithmetic, etc: convert nval back to v's
		// original type and patch just this operand, leaving further
		// propagation to later passes.
		conv, err := convert.Convert(nval, origType, convert.Point{Before: in}, convert.Live)
		if err != nil {
			return err
		}
		ir.SetOperand(in, idx, conv)
		return nil
	}
}

func retypeGlobalUser(gv *ir.Global, v, nval ir.Value) error {
	nc, ok := nval.(ir.Constant)
	if !ok {
		return errors.New("mutate: global initializer user requires a constant replacement")
	}
	conv, err := convert.Convert(nc, gv.ElemType(), convert.Point{}, convert.ConstExpr)
	if err != nil {
		return err
	}
	if ir.Value(gv) != conv {
		ir.SetOperand(gv, 0, conv)
	}
	return nil
}

func retypeConstUser(owner ir.User, idx int, v, nval ir.Value) error {
	nc, ok := nval.(ir.Constant)
	if !ok {
		return errors.New("mutate: constant user requires a constant replacement")
	}
	target := owner.Operand(idx).Type()
	conv, err := convert.Convert(nc, target, convert.Point{}, convert.ConstExpr)
	if err != nil {
		return err
	}
	ir.SetOperand(owner, idx, conv)
	return nil
}
