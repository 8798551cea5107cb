// Package image provides a read-only view over a loaded object file:
// byte access, segment classification, word/string reads, and
// constant materialization at an address for a given type. It is the
// ImageView component — the only I/O this core performs, and it is
// treated as immutable for the run (spec.md §5).
package image

import (
	"encoding/binary"

	"github.com/irforge/recast/types"
)

// SegmentKind classifies a region of the image.
type SegmentKind int

const (
	SegmentUnknown SegmentKind = iota
	SegmentCode
	SegmentData
	SegmentReadOnlyData
	SegmentBSS
)

func (k SegmentKind) IsCode() bool { return k == SegmentCode }

// Segment describes one contiguous region of the image.
type Segment struct {
	Start uint64
	End   uint64 // exclusive
	Kind  SegmentKind
}

func (s Segment) contains(addr uint64) bool { return addr >= s.Start && addr < s.End }

// View is the read-only interface this core consumes. Anything that
// can answer these eight questions about a loaded binary can stand in
// for a real object-file loader; materialize and convert depend only
// on this interface, never on a concrete loader.
type View interface {
	HasDataOn(addr uint64) bool
	HasReadOnlyDataOn(addr uint64) bool
	SegmentOf(addr uint64) (Segment, bool)
	WordAt(addr uint64) (uint64, bool)
	StringAt(addr uint64) (string, bool)
	// Constant materializes an ir.Value constant of type t from the
	// bytes at addr. It returns `any` rather than an ir.Value so this
	// package never has to import ir (which would otherwise cycle
	// back through materialize/convert); callers type-assert the
	// result to ir.Value.
	Constant(t types.Type, addr uint64) (any, bool)
	// BytesPerWord is the architecture's natural word size, used by
	// the ±W probe in the AddressMaterializer heuristic.
	BytesPerWord() uint64
	Arch() types.Arch
}

// MemView is a simple in-memory implementation of View backed by a
// byte slice plus a segment table, sufficient for tests and for small
// standalone tools that load a flat binary image directly.
type MemView struct {
	Base     uint64
	Data     []byte
	Segments []Segment
	WordSize uint64
	Machine  types.Arch
	// MakeConstant builds an ir.Value constant of type t from the raw
	// bytes at addr; injected so this package never imports ir.
	MakeConstant func(t types.Type, addr uint64, data []byte) (any, bool)
}

func (m *MemView) inRange(addr uint64) bool {
	return addr >= m.Base && addr < m.Base+uint64(len(m.Data))
}

func (m *MemView) HasDataOn(addr uint64) bool {
	if !m.inRange(addr) {
		return false
	}
	seg, ok := m.SegmentOf(addr)
	return !ok || seg.Kind != SegmentBSS
}

func (m *MemView) HasReadOnlyDataOn(addr uint64) bool {
	seg, ok := m.SegmentOf(addr)
	return ok && seg.Kind == SegmentReadOnlyData
}

func (m *MemView) SegmentOf(addr uint64) (Segment, bool) {
	for _, s := range m.Segments {
		if s.contains(addr) {
			return s, true
		}
	}
	return Segment{}, false
}

func (m *MemView) BytesPerWord() uint64 { return m.WordSize }
func (m *MemView) Arch() types.Arch     { return m.Machine }

func (m *MemView) WordAt(addr uint64) (uint64, bool) {
	if !m.inRange(addr) || !m.inRange(addr+m.WordSize-1) {
		return 0, false
	}
	off := addr - m.Base
	switch m.WordSize {
	case 4:
		return uint64(binary.LittleEndian.Uint32(m.Data[off : off+4])), true
	case 8:
		return binary.LittleEndian.Uint64(m.Data[off : off+8]), true
	default:
		return 0, false
	}
}

func (m *MemView) StringAt(addr uint64) (string, bool) {
	if !m.inRange(addr) {
		return "", false
	}
	off := addr - m.Base
	end := off
	for end < uint64(len(m.Data)) && m.Data[end] != 0 {
		end++
	}
	if end >= uint64(len(m.Data)) {
		return "", false
	}
	return string(m.Data[off:end]), true
}

func (m *MemView) Constant(t types.Type, addr uint64) (any, bool) {
	if m.MakeConstant == nil || !m.inRange(addr) {
		return nil, false
	}
	off := addr - m.Base
	return m.MakeConstant(t, addr, m.Data[off:])
}

// IsNiceString is a crude heuristic for "these bytes look like a
// plausible printable C string," used by CanBeCreated to decide
// whether a code-segment address should be treated as string data
// rather than as a pointer table. threshold is the minimum fraction
// (0..1) of printable-or-common-whitespace bytes required.
func IsNiceString(s string, threshold float64) bool {
	if len(s) == 0 {
		return false
	}
	printable := 0
	for _, r := range s {
		if (r >= 0x20 && r < 0x7f) || r == '\n' || r == '\t' || r == '\r' {
			printable++
		}
	}
	return float64(printable)/float64(len(s)) >= threshold
}
