package types

// Arch enumerates the target machine families relevant to type
// defaulting and to the AddressMaterializer's segment heuristics.
// Most of the decompiler's architecture-specific behavior (register
// sets, calling convention, NOP recognition) lives upstream of this
// core; only the pieces this core actually branches on are modeled
// here.
type Arch int

const (
	ArchGeneric Arch = iota
	ArchARM
	ArchPIC32
)

// IsArmOrThumb and IsPIC32 mirror the two architecture predicates the
// AddressMaterializer heuristic consults (see materialize.CanBeCreated).
func (a Arch) IsArmOrThumb() bool { return a == ArchARM }
func (a Arch) IsPIC32() bool      { return a == ArchPIC32 }

// WordWidth is the natural pointer/word width, in bits, for an Arch.
// PIC32 and ARM here are both 32-bit; a 64-bit ARM target would be
// modeled as ArchGeneric with an explicit width override by a caller
// that cares (this core does not need to distinguish them further).
func (a Arch) WordWidth() uint {
	switch a {
	case ArchARM, ArchPIC32:
		return 32
	default:
		return 64
	}
}

// WordType returns the integer type matching the architecture's
// natural word width — the "ABI word type" used as the placeholder
// type when a global or stack slot is first synthesized, before any
// analysis pass narrows it.
func (a Arch) WordType() Type {
	return Int{Bits: a.WordWidth()}
}
