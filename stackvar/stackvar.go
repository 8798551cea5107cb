// Package stackvar implements StackSlotAllocator: given a function
// and a stack offset, it returns (creating if missing) the local
// alloca at that offset, keyed in the ConfigStore by (function,
// offset), per spec.md §4.4.
package stackvar

import (
	"fmt"

	"github.com/irforge/recast/config"
	"github.com/irforge/recast/ir"
	"github.com/irforge/recast/types"
)

// Context bundles the collaborators a stack-slot request needs.
type Context struct {
	Graph *ir.Graph
	Store *config.Store
}

// GetStackSlot returns the alloca at (fn.Name, offset), creating it
// if this is the first request for that slot. requestedType, if not
// a valid pointee, falls back to the ABI word type for arch.
// nameHint becomes "<hint>_<offset>" (offset's sign carried literally,
// e.g. "x_-16").
func GetStackSlot(ctx *Context, fn *ir.Func, offset int64, requestedType types.Type, nameHint string, arch types.Arch) *ir.Instr {
	if obj, ok := ctx.Store.ByStackOffset(fn.Name, offset); ok {
		if existing, ok := obj.Handle().(*ir.Instr); ok {
			return existing
		}
		// Handle is unset (or of the wrong kind) for an entry this
		// store didn't create itself — fall back to a name scan.
		if existing, ok := findAlloca(fn, obj.Name); ok {
			return existing
		}
	}

	elemType := requestedType
	if elemType == nil || !types.IsValidPointee(elemType) {
		elemType = arch.WordType()
	}

	name := fmt.Sprintf("%s_%d", nameHint, offset)
	alloca := ir.NewAlloca(elemType, name)
	fn.PrependAlloca(alloca)

	ctx.Store.Put(alloca, &config.Object{
		Name:    name,
		Storage: config.StackStorage(fn.Name, offset),
		TypeIR:  elemType.Repr(),
		Type:    elemType,
	})

	return alloca
}

// findAlloca recovers the live *ir.Instr for a previously-registered
// slot name, for the rare entry whose handle isn't usable directly
// (e.g. restored from disk with no live IR object behind it yet).
func findAlloca(fn *ir.Func, name string) (*ir.Instr, bool) {
	entry := fn.Entry()
	if entry == nil {
		return nil, false
	}
	for _, in := range entry.Instrs {
		if in.Op != ir.OpAlloca {
			break
		}
		if in.Name == name {
			return in, true
		}
	}
	return nil, false
}
