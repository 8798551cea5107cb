// Package xform implements the Localize and RenameFunction helpers:
// converting a store-defined pseudo-global into a true function
// local, and renaming functions with canonical normalization, per
// spec.md §4.5.
package xform

import (
	"strings"
	"unicode"

	"github.com/irforge/recast/config"
	"github.com/irforge/recast/ir"
	"tlog.app/go/errors"
)

// Context bundles the collaborators Localize and RenameFunction need.
type Context struct {
	Graph *ir.Graph
	Store *config.Store
}

// Localize treats def's pointer operand as a pseudo-global standing
// in for a function local: it inserts a fresh alloca of the pointee
// type at the entry block, re-emits the store at def's original
// position against the new alloca, erases def, and redirects every
// value in uses to the new alloca.
func Localize(ctx *Context, def *ir.Instr, uses []*ir.Instr) error {
	if def.Op != ir.OpStore {
		return errors.New("xform: Localize requires a Store instruction, got %s", def.Op)
	}
	fn := def.Block.Func
	elemType := def.ValueOperand().Type()

	alloca := ir.NewAlloca(elemType, "local")
	fn.PrependAlloca(alloca)

	newStore := ir.NewStore(def.ValueOperand(), alloca)
	def.Block.InsertBefore(newStore, def)
	def.Block.Erase(def)

	pseudoGlobal := def.PointerOperand()
	for _, u := range uses {
		for i := 0; i < u.NumOperands(); i++ {
			if u.Operand(i) == pseudoGlobal {
				ir.SetOperand(u, i, alloca)
			}
		}
	}

	return nil
}

// RenameFunction applies canonical name normalization to newName; if
// the normalized result equals fn's current name this is a no-op
// returning fn and its existing ConfigStore entry unchanged
// (spec.md §8's "rename to same name" scenario). Otherwise fn is
// renamed, the graph's name index and ConfigStore entry are updated
// (inserting one if none existed).
func RenameFunction(ctx *Context, fn *ir.Func, newName string) (*ir.Func, *config.FunctionObject, error) {
	normalized := normalizeNamePrefix(newName)
	if normalized == fn.Name {
		obj, _ := ctx.Store.Function(fn.Name)
		return fn, obj, nil
	}

	oldName := fn.Name
	fn.Name = normalized
	ctx.Graph.RenameFuncIndex(oldName, fn)

	obj, ok := ctx.Store.Function(oldName)
	if !ok {
		obj = &config.FunctionObject{Name: normalized}
		if fn.Addr != nil {
			addr := *fn.Addr
			obj.Addr = &addr
		}
		ctx.Store.PutFunction(normalized, obj)
		return fn, obj, nil
	}

	ctx.Store.RenameFunction(oldName, normalized)
	return fn, obj, nil
}

// normalizeNamePrefix is the canonical name-prefix normalization:
// trims surrounding whitespace and, when the name begins with a
// digit, prefixes it with an underscore so downstream tooling never
// has to special-case a digit-led symbol name. A name led by any
// other character is left as it is.
func normalizeNamePrefix(name string) string {
	n := strings.TrimSpace(name)
	if n == "" {
		return n
	}
	r := []rune(n)
	if unicode.IsDigit(r[0]) {
		return "_" + n
	}
	return n
}
