package arena

import (
	"fmt"

	"github.com/wippyai/contract-runtime/value"
)

const (
	indexBits = 24
	indexMask = 1<<indexBits - 1

	// rawGenMask is the part of a generation that fits in a raw handle.
	rawGenMask  = 1<<(32-indexBits) - 1
	fullGenMask = ^uint32(0)

	// MaxSlots is the number of slots addressable by a raw handle.
	MaxSlots = 1 << indexBits
)

// HostPtr is a handle to a value held in an Arena. It is only meaningful to
// the arena that issued it, and only until the issuing frame or one of its
// ancestors is dropped.
type HostPtr struct {
	arena uint64
	Index int32
	Gen   uint32
	Tag   value.Tag
	// Owned marks pointers to results promoted out of a finished frame.
	Owned bool
}

// Raw packs the pointer into the i32 handed to guests: the slot index in
// the low 24 bits and the low 8 bits of the slot generation in the high 8
// bits. A raw handle is therefore only checked modulo 256 reuses of its
// slot; HostPtr itself compares the full generation.
func (p HostPtr) Raw() int32 {
	return int32((p.Gen&rawGenMask)<<indexBits | uint32(p.Index)&indexMask)
}

// Arena returns the identity of the issuing arena.
func (p HostPtr) Arena() uint64 { return p.arena }

func (p HostPtr) String() string {
	owned := ""
	if p.Owned {
		owned = ",owned"
	}
	return fmt.Sprintf("ptr(%d#%d:%s%s)", p.Index, p.Gen, p.Tag, owned)
}

// SplitRaw unpacks a raw handle into slot index and the low bits of the
// generation.
func SplitRaw(raw int32) (index int32, gen uint8) {
	return int32(uint32(raw) & indexMask), uint8(uint32(raw) >> indexBits)
}
