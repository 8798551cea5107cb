package mutate

import (
	"testing"

	"github.com/irforge/recast/config"
	"github.com/irforge/recast/ir"
	"github.com/irforge/recast/types"
	"github.com/stretchr/testify/require"
)

func newCtx() (*Context, *ir.Func, *ir.Block) {
	graph := ir.NewGraph()
	fn := ir.NewFunc("f", types.Func{Ret: types.Void{}})
	entry := fn.NewBlock("entry")
	graph.AddFunc(fn)
	return &Context{Graph: graph, Store: config.NewStore()}, fn, entry
}

func TestChangeObjectTypeAllocaRetypesLoadAndStore(t *testing.T) {
	ctx, _, entry := newCtx()

	alloca := ir.NewAlloca(types.Int{Bits: 32}, "x")
	entry.Append(alloca)

	anchor := ir.NewInstr(ir.OpRet, types.Void{})
	entry.Append(anchor)

	storeVal := ir.NewConstInt(types.Int{Bits: 32}, 7)
	store := ir.NewStore(storeVal, alloca)
	entry.InsertBefore(store, anchor)

	load := ir.NewLoad(alloca, types.Int{Bits: 32})
	entry.InsertBefore(load, anchor)

	nval, err := ChangeObjectType(ctx, alloca, types.Int{Bits: 64}, ChangeOpts{})
	require.NoError(t, err)

	nalloca, ok := nval.(*ir.Instr)
	require.True(t, ok)
	require.Equal(t, ir.OpAlloca, nalloca.Op)
	require.True(t, nalloca.Type().Equal(types.Pointer{Elem: types.Int{Bits: 64}}))

	// The store's pointer operand should now be the new alloca, with
	// its value operand converted to i64.
	require.Same(t, nalloca, store.Operand(1))
	require.True(t, store.Operand(0).Type().Equal(types.Int{Bits: 64}))

	// The old load should have been replaced by a new Load through the
	// new alloca, converted back to i32 for the load's original users.
	require.Empty(t, alloca.Users())
}

func TestChangeObjectTypeNoOpWhenTypeUnchanged(t *testing.T) {
	ctx, _, entry := newCtx()
	alloca := ir.NewAlloca(types.Int{Bits: 32}, "x")
	entry.Append(alloca)

	nval, err := ChangeObjectType(ctx, alloca, types.Int{Bits: 32}, ChangeOpts{})
	require.NoError(t, err)
	require.Same(t, alloca, nval)
}

func TestChangeObjectTypeRejectsUnsupportedKind(t *testing.T) {
	ctx, _, entry := newCtx()
	anchor := ir.NewInstr(ir.OpRet, types.Void{})
	entry.Append(anchor)

	_, err := ChangeObjectType(ctx, anchor, types.Int{Bits: 32}, ChangeOpts{})
	require.Error(t, err)
	var unsupported *ErrUnsupportedObjectKind
	require.ErrorAs(t, err, &unsupported)
}

func TestChangeObjectTypeParamRewritesSignatureInPlace(t *testing.T) {
	graph := ir.NewGraph()
	fn := ir.NewFunc("f", types.Func{Ret: types.Void{}, Params: []types.Type{types.Int{Bits: 32}}})
	graph.AddFunc(fn)
	ctx := &Context{Graph: graph, Store: config.NewStore()}

	p0 := fn.Params[0]
	nval, err := ChangeObjectType(ctx, p0, types.Int{Bits: 64}, ChangeOpts{})
	require.NoError(t, err)
	require.Same(t, p0, nval)
	require.True(t, fn.Sig.Params[0].Equal(types.Int{Bits: 64}))
}
