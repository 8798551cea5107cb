package materialize

import (
	"encoding/binary"
	"testing"

	"github.com/irforge/recast/config"
	"github.com/irforge/recast/image"
	"github.com/irforge/recast/ir"
	"github.com/irforge/recast/types"
	"github.com/stretchr/testify/require"
)

func wordConstant(t types.Type, addr uint64, data []byte) (any, bool) {
	bits := uint(64)
	switch tt := t.(type) {
	case types.Int:
		bits = tt.Bits
	case types.Pointer:
		bits = 64 // a pointer-typed read is materialized as its raw numeric address
	default:
		return nil, false
	}
	n := int(bits / 8)
	if n > len(data) {
		return nil, false
	}
	var v uint64
	switch n {
	case 4:
		v = uint64(binary.LittleEndian.Uint32(data[:4]))
	case 8:
		v = binary.LittleEndian.Uint64(data[:8])
	default:
		return nil, false
	}
	return ir.NewConstInt(types.Int{Bits: bits}, int64(v)), true
}

func newView(base uint64, data []byte, kind image.SegmentKind) *image.MemView {
	return &image.MemView{
		Base:         base,
		Data:         data,
		WordSize:     8,
		Machine:      types.ArchGeneric,
		Segments:     []image.Segment{{Start: base, End: base + uint64(len(data)), Kind: kind}},
		MakeConstant: wordConstant,
	}
}

func TestGetGlobalVariableCreatesAndReusesByAddress(t *testing.T) {
	data := make([]byte, 16)
	binary.LittleEndian.PutUint64(data[0:], 0x2a)
	view := newView(0x1000, data, image.SegmentData)

	ctx := &Context{Graph: ir.NewGraph(), Store: config.NewStore(), Image: view}

	gv1, err := GetGlobalVariable(ctx, 0x1000, "g", Options{})
	require.NoError(t, err)
	require.NotNil(t, gv1)

	gv2, err := GetGlobalVariable(ctx, 0x1000, "g", Options{})
	require.NoError(t, err)
	require.Same(t, gv1, gv2)
}

type fixedDebugInfo struct {
	t types.Type
}

func (f fixedDebugInfo) TypeAt(addr uint64) (types.Type, string, bool) { return f.t, "", true }

func TestGetGlobalVariableInitializerCycleFallsBackToWordRead(t *testing.T) {
	addr := uint64(0x2000)
	data := make([]byte, 16)
	binary.LittleEndian.PutUint64(data[0:], addr) // initializer bytes point back at addr
	view := newView(addr, data, image.SegmentData)

	ctx := &Context{Graph: ir.NewGraph(), Store: config.NewStore(), Image: view}

	// Debug info claims this object is a pointer; its bytes happen to
	// encode its own address, which is the self-reference cycle §4.3
	// describes.
	opts := Options{DebugInfo: fixedDebugInfo{t: types.Pointer{Elem: types.Int{Bits: 64}}}}

	gv, err := GetGlobalVariable(ctx, addr, "g", opts)
	require.NoError(t, err)
	require.NotNil(t, gv)

	ci, ok := gv.Init().(*ir.ConstInt)
	require.True(t, ok)
	require.Equal(t, int64(addr), ci.Val)
}

func TestCanBeCreatedRejectsCodeWithoutDataHint(t *testing.T) {
	data := make([]byte, 16)
	// Bytes that look like neither a string nor a pointer into data.
	for i := range data {
		data[i] = 0x90
	}
	view := newView(0x3000, data, image.SegmentCode)

	require.False(t, CanBeCreated(view, 0x3000, true, 0, nil))
}

func TestCanBeCreatedRelaxesOnArm(t *testing.T) {
	data := make([]byte, 16)
	for i := range data {
		data[i] = 0x90
	}
	view := newView(0x4000, data, image.SegmentCode)
	view.Machine = types.ArchARM

	stats := &Stats{}
	require.True(t, CanBeCreated(view, 0x4000, false, 0, stats))
	require.Equal(t, 1, stats.RelaxedAccepts)

	require.False(t, CanBeCreated(view, 0x4000, true, 0, stats))
}

func TestGetGlobalVariableUsesExistingConfigStoreType(t *testing.T) {
	addr := uint64(0x6000)
	data := make([]byte, 16)
	binary.LittleEndian.PutUint64(data[0:], 0xcafe) // not a self-reference
	view := newView(addr, data, image.SegmentData)

	ctx := &Context{Graph: ir.NewGraph(), Store: config.NewStore(), Image: view}

	// A prior run (or a restored config-only entry) already pinned this
	// address to a 32-bit int, distinct from view's 64-bit ABI word
	// type. No debug info or crypto provider is supplied, so the middle
	// tier of chooseType's priority order must be what supplies the
	// type, not the plain ABI word-type fallback.
	wantType := types.Int{Bits: 32}
	ctx.Store.Put(nil, &config.Object{
		Name:    "g",
		Storage: config.GlobalStorage(addr),
		TypeIR:  wantType.Repr(),
		Type:    wantType,
	})

	gv, err := GetGlobalVariable(ctx, addr, "g", Options{})
	require.NoError(t, err)
	require.NotNil(t, gv)
	require.True(t, gv.ElemType().Equal(wantType))
}

func TestGetGlobalVariableRejectsUnmaterializableAddress(t *testing.T) {
	data := make([]byte, 16)
	for i := range data {
		data[i] = 0x90
	}
	view := newView(0x5000, data, image.SegmentCode)

	ctx := &Context{Graph: ir.NewGraph(), Store: config.NewStore(), Image: view}
	gv, err := GetGlobalVariable(ctx, 0x5000, "g", Options{Strict: true})
	require.NoError(t, err)
	require.Nil(t, gv)
}
