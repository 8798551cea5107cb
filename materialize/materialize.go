// Package materialize implements AddressMaterializer: deciding
// whether a global variable may legally be synthesized at a binary
// address, reading its initializer, detecting self-referential
// initializer cycles, and installing the result in both the IrGraph
// and the ConfigStore, per spec.md §4.3.
package materialize

import (
	"fmt"

	"github.com/irforge/recast/config"
	"github.com/irforge/recast/image"
	"github.com/irforge/recast/ir"
	"github.com/irforge/recast/types"
	"tlog.app/go/errors"
)

// Context bundles the collaborators a materialization call needs.
type Context struct {
	Graph *ir.Graph
	Store *config.Store
	Image image.View
}

// DebugInfoProvider supplies a type (and optionally a preferred name)
// for a global at addr, when debug information is available. It is
// consulted before any other type override.
type DebugInfoProvider interface {
	TypeAt(addr uint64) (t types.Type, name string, ok bool)
}

// CryptoPatternProvider recognizes well-known crypto constant tables
// (S-boxes, round constants, IVs) at addr and supplies the type that
// best describes them. Consulted last, after debug info and any
// existing ConfigStore entry.
type CryptoPatternProvider interface {
	TypeAt(addr uint64) (t types.Type, name string, ok bool)
}

// Stats accumulates diagnostic counters across materialization calls.
// RelaxedAccepts counts how many CanBeCreated calls returned true
// solely because of the ARM/Thumb/PIC32 data-in-code relaxation —
// surfaced so a driver can log how often the loose heuristic fired,
// per spec.md §9's open question asking for "a counter for
// diagnostic review."
type Stats struct {
	RelaxedAccepts int
}

// Options carries the optional collaborators and policy knobs.
type Options struct {
	DebugInfo   DebugInfoProvider
	CryptoInfo  CryptoPatternProvider
	Strict      bool
	StringProbe float64 // printable-byte threshold for IsNiceString; 0 uses a sane default
	Stats       *Stats
}

const defaultStringProbe = 0.8

// CanBeCreated is the pre-check of §4.3: may a global legally be
// synthesized at addr. probe is the printable-byte threshold passed
// to IsNiceString; 0 selects defaultStringProbe.
func CanBeCreated(img image.View, addr uint64, strict bool, probe float64, stats *Stats) bool {
	if probe == 0 {
		probe = defaultStringProbe
	}
	if !img.HasDataOn(addr) {
		return false
	}
	seg, ok := img.SegmentOf(addr)
	if !ok || !seg.Kind.IsCode() {
		return true
	}

	if s, ok := img.StringAt(addr); ok && image.IsNiceString(s, probe) {
		return true
	}

	w := img.BytesPerWord()
	addressesData := func(probe uint64) bool {
		word, ok := img.WordAt(probe)
		if !ok {
			return false
		}
		return img.HasDataOn(word)
	}
	if addressesData(addr) || (addr >= w && addressesData(addr-w)) || addressesData(addr+w) {
		return true
	}

	if !strict && (img.Arch().IsArmOrThumb() || img.Arch().IsPIC32()) {
		if stats != nil {
			stats.RelaxedAccepts++
		}
		return true
	}

	return false
}

// GetGlobalVariable implements get_global_variable: synthesize (or
// retrieve) a global at addr. Returns (nil, nil) for a recoverable
// "materialized in config only, not in IR" outcome — never a Go
// error for InitializerUnreadable/InitializerCycle/
// AddressNotMaterializable, matching spec.md §7's nullable-return
// policy for recoverable conditions.
func GetGlobalVariable(ctx *Context, addr uint64, nameHint string, opts Options) (*ir.Global, error) {
	name := fmt.Sprintf("%s_%x", nameHint, addr)
	for _, existing := range ctx.Graph.Globals {
		if existing.Addr != nil && *existing.Addr == addr {
			return existing, nil
		}
	}

	if !CanBeCreated(ctx.Image, addr, opts.Strict, opts.StringProbe, opts.Stats) {
		return nil, nil
	}

	elemType, resolvedName := chooseType(ctx, addr, name, opts)

	seg, _ := ctx.Image.SegmentOf(addr)
	isConst := seg.Kind == image.SegmentReadOnlyData

	placeholder := ir.NewGlobal(resolvedName, elemType, nil, ir.LinkageInternal, isConst)
	placeholder.Addr = &addr
	ctx.Graph.AddGlobal(placeholder)

	initVal, ok := ctx.Image.Constant(elemType, addr)
	if !ok {
		// InitializerUnreadable: keep the ConfigStore entry (for later
		// manual annotation) but discard the IR-level global.
		ctx.Graph.RemoveGlobal(placeholder)
		registerConfigOnly(ctx, resolvedName, addr, elemType, isConst)
		return nil, nil
	}

	init, ok := initVal.(ir.Value)
	if !ok {
		ctx.Graph.RemoveGlobal(placeholder)
		registerConfigOnly(ctx, resolvedName, addr, elemType, isConst)
		return nil, nil
	}

	if referencesAddr(init, addr) || pointsToSelf(elemType, init, addr) {
		// InitializerCycle: break it with a plain scalar word read.
		word, ok := ctx.Image.WordAt(addr)
		if !ok {
			ctx.Graph.RemoveGlobal(placeholder)
			registerConfigOnly(ctx, resolvedName, addr, elemType, isConst)
			return nil, nil
		}
		init = ir.NewConstInt(types.Int{Bits: uint(ctx.Image.BytesPerWord()) * 8}, int64(word))
	}

	// Build the second, correctly-typed global; replace the first
	// (pointer-typed placeholder) with a const-expr cast of the
	// second back to the original pointer type, then erase it — this
	// is the "second global" pattern spec.md §4.3 and §9 both call
	// out by name.
	second := ir.NewGlobal(resolvedName, init.Type(), init, ir.LinkageInternal, isConst)
	second.Addr = &addr
	ctx.Graph.AddGlobal(second)
	ctx.Graph.RemoveGlobal(placeholder)

	castBack := ir.NewConstExpr(ir.OpBitCast, placeholder.Type(), second)
	ir.ReplaceAllUsesWith(placeholder, castBack)

	ctx.Store.Put(second, &config.Object{
		Name:    resolvedName,
		Storage: config.GlobalStorage(addr),
		TypeIR:  init.Type().Repr(),
		Type:    init.Type(),
	})

	return second, nil
}

func registerConfigOnly(ctx *Context, name string, addr uint64, elemType types.Type, isConst bool) {
	if _, ok := ctx.Store.ByAddr(addr); ok {
		return
	}
	ctx.Store.Put(nil, &config.Object{
		Name:    name,
		Storage: config.GlobalStorage(addr),
		TypeIR:  elemType.Repr(),
		Type:    elemType,
	})
}

// chooseType resolves the new global's element type and name,
// preferring (in order) debug info, an existing ConfigStore entry,
// then a crypto-pattern match, falling back to the image's word type.
func chooseType(ctx *Context, addr uint64, name string, opts Options) (types.Type, string) {
	if opts.DebugInfo != nil {
		if t, n, ok := opts.DebugInfo.TypeAt(addr); ok {
			return t, pick(n, name)
		}
	}
	if obj, ok := ctx.Store.ByAddr(addr); ok && obj.Type != nil {
		return obj.Type, pick(obj.Name, name)
	}
	if opts.CryptoInfo != nil {
		if t, n, ok := opts.CryptoInfo.TypeAt(addr); ok {
			return t, pick(n, name)
		}
	}
	return ctx.Image.Arch().WordType(), name
}

func pick(preferred, fallback string) string {
	if preferred != "" {
		return preferred
	}
	return fallback
}

// referencesAddr reports whether v's constant-expression tree
// transitively reads from addr — the initializer-cycle check of
// spec.md §4.3.
func referencesAddr(v ir.Value, addr uint64) bool {
	switch val := v.(type) {
	case *ir.Global:
		return val.Addr != nil && *val.Addr == addr
	case *ir.ConstExpr:
		for i := 0; i < val.NumOperands(); i++ {
			if referencesAddr(val.Operand(i), addr) {
				return true
			}
		}
		return false
	case *ir.ConstAggregate:
		for i := 0; i < val.NumOperands(); i++ {
			if referencesAddr(val.Operand(i), addr) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// pointsToSelf catches the scalar-read case the original's cycle
// check also covers: elemType is a Pointer and the word read at addr
// numerically equals addr itself, i.e. the object's own address was
// read back as its initializer.
func pointsToSelf(elemType types.Type, init ir.Value, addr uint64) bool {
	if _, ok := elemType.(types.Pointer); !ok {
		return false
	}
	ci, ok := init.(*ir.ConstInt)
	return ok && uint64(ci.Val) == addr
}

// ErrAddressNotMaterializable is not currently returned by
// GetGlobalVariable (that condition surfaces as a nil return per
// policy) but is kept available for callers that want to
// distinguish "not materializable" from other nil-returning paths
// via CanBeCreated directly.
var ErrAddressNotMaterializable = errors.New("materialize: address not materializable")
