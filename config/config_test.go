package config

import (
	"testing"

	"github.com/irforge/recast/ir"
	"github.com/irforge/recast/types"
	"github.com/stretchr/testify/require"
)

func TestPutAndLookupByHandleAndStorage(t *testing.T) {
	s := NewStore()
	gv := ir.NewGlobal("g", types.Int{Bits: 32}, nil, ir.LinkageInternal, false)
	s.Put(gv, &Object{Name: "g", Storage: GlobalStorage(0x1000), TypeIR: "i32"})

	byHandle, ok := s.ByHandle(gv)
	require.True(t, ok)
	require.Equal(t, "g", byHandle.Name)

	byAddr, ok := s.ByAddr(0x1000)
	require.True(t, ok)
	require.Same(t, byHandle, byAddr)
}

func TestRehandleMovesHandleIndexOnly(t *testing.T) {
	s := NewStore()
	old := ir.NewGlobal("g", types.Int{Bits: 32}, nil, ir.LinkageInternal, false)
	s.Put(old, &Object{Name: "g", Storage: GlobalStorage(0x2000)})

	next := ir.NewGlobal("g", types.Int{Bits: 64}, nil, ir.LinkageInternal, false)
	s.Rehandle(old, next)

	_, ok := s.ByHandle(old)
	require.False(t, ok)

	obj, ok := s.ByHandle(next)
	require.True(t, ok)
	require.Equal(t, "g", obj.Name)

	// storage index is untouched by rehandling.
	byAddr, ok := s.ByAddr(0x2000)
	require.True(t, ok)
	require.Same(t, obj, byAddr)
}

func TestPutConfigOnlyEntriesDontCollideOnNilHandle(t *testing.T) {
	s := NewStore()
	s.Put(nil, &Object{Name: "a", Storage: GlobalStorage(0x1000), TypeIR: "i32"})
	s.Put(nil, &Object{Name: "b", Storage: GlobalStorage(0x2000), TypeIR: "i32"})

	a, ok := s.ByAddr(0x1000)
	require.True(t, ok)
	require.Equal(t, "a", a.Name)

	b, ok := s.ByAddr(0x2000)
	require.True(t, ok)
	require.Equal(t, "b", b.Name)
}

func TestSnapshotIncludesConfigOnlyEntries(t *testing.T) {
	s := NewStore()
	s.Put(nil, &Object{Name: "a", Storage: GlobalStorage(0x1000), TypeIR: "i32"})
	s.Put(nil, &Object{Name: "b", Storage: GlobalStorage(0x2000), TypeIR: "i32"})

	doc := Snapshot(s)
	require.Len(t, doc.Globals, 2)
}

func TestObjectHandleAccessor(t *testing.T) {
	s := NewStore()
	gv := ir.NewGlobal("g", types.Int{Bits: 32}, nil, ir.LinkageInternal, false)
	s.Put(gv, &Object{Name: "g", Storage: GlobalStorage(0x3000)})

	obj, ok := s.ByAddr(0x3000)
	require.True(t, ok)
	require.Same(t, gv, obj.Handle())

	s.Put(nil, &Object{Name: "h", Storage: GlobalStorage(0x4000)})
	configOnly, ok := s.ByAddr(0x4000)
	require.True(t, ok)
	require.Nil(t, configOnly.Handle())
}

func TestSnapshotRoundTripsThroughToml(t *testing.T) {
	s := NewStore()
	gv := ir.NewGlobal("g", types.Int{Bits: 32}, nil, ir.LinkageInternal, false)
	s.Put(gv, &Object{
		Name:    "g",
		Storage: GlobalStorage(0x3000),
		TypeIR:  "i32",
	})
	s.PutFunction("main", &FunctionObject{Name: "main", CallingConvention: "cdecl"})

	doc := Snapshot(s)
	require.Len(t, doc.Globals, 1)
	require.Equal(t, "0x3000", doc.Globals[0].Address)
	require.Len(t, doc.Functions, 1)

	data, err := Marshal(doc)
	require.NoError(t, err)

	round, err := Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, doc.Globals, round.Globals)
	require.Equal(t, doc.Functions, round.Functions)
}
