package xform

import (
	"testing"

	"github.com/irforge/recast/config"
	"github.com/irforge/recast/ir"
	"github.com/irforge/recast/types"
	"github.com/stretchr/testify/require"
)

func TestLocalizeRedirectsUsesToNewAlloca(t *testing.T) {
	graph := ir.NewGraph()
	fn := ir.NewFunc("f", types.Func{Ret: types.Void{}})
	entry := fn.NewBlock("entry")
	graph.AddFunc(fn)
	ctx := &Context{Graph: graph, Store: config.NewStore()}

	// pseudoGlobal stands in for a pointer value computed upstream
	// (e.g. an inttoptr chain) that def stores through.
	pseudoGlobal := ir.NewGlobal("g", types.Int{Bits: 32}, nil, ir.LinkageInternal, false)
	val := ir.NewConstInt(types.Int{Bits: 32}, 9)
	def := ir.NewStore(val, pseudoGlobal)
	entry.Append(def)

	load := ir.NewLoad(pseudoGlobal, types.Int{Bits: 32})
	entry.Append(load)

	err := Localize(ctx, def, []*ir.Instr{load})
	require.NoError(t, err)

	require.Nil(t, def.Block)
	require.NotSame(t, pseudoGlobal, load.Operand(0))

	newAlloca, ok := load.Operand(0).(*ir.Instr)
	require.True(t, ok)
	require.Equal(t, ir.OpAlloca, newAlloca.Op)

	// The entry block's first instruction should be the new alloca
	// (invariant 6: allocas precede non-allocas), and the rewritten
	// store should remain at the original store's position.
	require.Equal(t, ir.OpAlloca, entry.Instrs[0].Op)
}

func TestRenameFunctionNormalizesAndIndexes(t *testing.T) {
	graph := ir.NewGraph()
	fn := ir.NewFunc("1bad", types.Func{Ret: types.Void{}})
	graph.AddFunc(fn)
	ctx := &Context{Graph: graph, Store: config.NewStore()}

	renamed, obj, err := RenameFunction(ctx, fn, "1bad")
	require.NoError(t, err)
	require.Equal(t, "_1bad", renamed.Name)
	require.NotNil(t, obj)

	found, ok := graph.FuncByName("_1bad")
	require.True(t, ok)
	require.Same(t, fn, found)
}

func TestRenameFunctionToSameNameIsNoOp(t *testing.T) {
	graph := ir.NewGraph()
	fn := ir.NewFunc("main", types.Func{Ret: types.Void{}})
	graph.AddFunc(fn)
	store := config.NewStore()
	existing := &config.FunctionObject{Name: "main"}
	store.PutFunction("main", existing)
	ctx := &Context{Graph: graph, Store: store}

	renamed, obj, err := RenameFunction(ctx, fn, "main")
	require.NoError(t, err)
	require.Same(t, fn, renamed)
	require.Same(t, existing, obj)
}
