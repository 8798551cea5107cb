package image

import (
	"encoding/binary"
	"testing"

	"github.com/irforge/recast/types"
	"github.com/stretchr/testify/require"
)

func TestMemViewWordAndStringAt(t *testing.T) {
	data := make([]byte, 32)
	binary.LittleEndian.PutUint64(data[0:], 0xdeadbeef)
	copy(data[8:], "hello\x00")

	v := &MemView{
		Base:     0x1000,
		Data:     data,
		WordSize: 8,
		Machine:  types.ArchGeneric,
		Segments: []Segment{{Start: 0x1000, End: 0x1020, Kind: SegmentData}},
	}

	word, ok := v.WordAt(0x1000)
	require.True(t, ok)
	require.Equal(t, uint64(0xdeadbeef), word)

	s, ok := v.StringAt(0x1008)
	require.True(t, ok)
	require.Equal(t, "hello", s)

	_, ok = v.WordAt(0x5000)
	require.False(t, ok)
}

func TestMemViewSegmentClassification(t *testing.T) {
	v := &MemView{
		Base: 0x1000,
		Data: make([]byte, 16),
		Segments: []Segment{
			{Start: 0x1000, End: 0x1008, Kind: SegmentCode},
			{Start: 0x1008, End: 0x1010, Kind: SegmentReadOnlyData},
		},
	}

	require.True(t, v.HasReadOnlyDataOn(0x1009))
	require.False(t, v.HasReadOnlyDataOn(0x1000))

	seg, ok := v.SegmentOf(0x1002)
	require.True(t, ok)
	require.True(t, seg.Kind.IsCode())
}

func TestIsNiceString(t *testing.T) {
	require.True(t, IsNiceString("hello, world!", 0.8))
	require.False(t, IsNiceString("\x01\x02\x03\x04", 0.8))
	require.False(t, IsNiceString("", 0.8))
}

func TestMemViewConstantUsesInjectedBuilder(t *testing.T) {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint32(data[0:], 42)

	v := &MemView{
		Base:     0x2000,
		Data:     data,
		WordSize: 4,
		Segments: []Segment{{Start: 0x2000, End: 0x2008, Kind: SegmentData}},
		MakeConstant: func(t types.Type, addr uint64, bytes []byte) (any, bool) {
			return binary.LittleEndian.Uint32(bytes[:4]), true
		},
	}

	c, ok := v.Constant(types.Int{Bits: 32}, 0x2000)
	require.True(t, ok)
	require.Equal(t, uint32(42), c)
}
