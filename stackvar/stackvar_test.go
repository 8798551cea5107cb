package stackvar

import (
	"testing"

	"github.com/irforge/recast/config"
	"github.com/irforge/recast/ir"
	"github.com/irforge/recast/types"
	"github.com/stretchr/testify/require"
)

func TestGetStackSlotIsIdempotent(t *testing.T) {
	fn := ir.NewFunc("f", types.Func{Ret: types.Void{}})
	fn.NewBlock("entry")
	ctx := &Context{Graph: ir.NewGraph(), Store: config.NewStore()}

	a1 := GetStackSlot(ctx, fn, -16, types.Int{Bits: 32}, "x", types.ArchGeneric)
	a2 := GetStackSlot(ctx, fn, -16, types.Int{Bits: 32}, "x", types.ArchGeneric)

	require.Same(t, a1, a2)
	require.Equal(t, "x_-16", a1.Name)
}

func TestGetStackSlotDistinctOffsetsDistinctSlots(t *testing.T) {
	fn := ir.NewFunc("f", types.Func{Ret: types.Void{}})
	fn.NewBlock("entry")
	ctx := &Context{Graph: ir.NewGraph(), Store: config.NewStore()}

	a1 := GetStackSlot(ctx, fn, -16, types.Int{Bits: 32}, "x", types.ArchGeneric)
	a2 := GetStackSlot(ctx, fn, -24, types.Int{Bits: 32}, "x", types.ArchGeneric)

	require.NotSame(t, a1, a2)
	require.Equal(t, "x_-24", a2.Name)
}

func TestGetStackSlotFallsBackToWordTypeForInvalidPointee(t *testing.T) {
	fn := ir.NewFunc("f", types.Func{Ret: types.Void{}})
	fn.NewBlock("entry")
	ctx := &Context{Graph: ir.NewGraph(), Store: config.NewStore()}

	alloca := GetStackSlot(ctx, fn, -8, types.Void{}, "v", types.ArchARM)
	require.True(t, alloca.Type().Equal(types.Pointer{Elem: types.Int{Bits: 32}}))
}
