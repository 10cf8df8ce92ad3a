package engine

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	contractruntime "github.com/wippyai/contract-runtime"
	"github.com/wippyai/contract-runtime/errors"
)

// growable is guest memory the bump allocator can extend.
type growable interface {
	Size() uint32
	Grow(pages uint32) (uint32, bool)
}

// BumpAllocator places host results in a scratch region at the top of guest
// memory. The region is claimed by growing memory, so it never overlaps data
// the guest placed before the growth. Reset rewinds to the start of the
// region; allocations live until then.
type BumpAllocator struct {
	mem   growable
	start uint64
	cur   uint64
	end   uint64
	last  uint64
	pages uint32
}

var _ contractruntime.Allocator = (*BumpAllocator)(nil)

// NewBumpAllocator creates an allocator that grows mem by at least pages
// pages at a time. No memory is claimed until the first allocation.
func NewBumpAllocator(mem growable, pages uint32) *BumpAllocator {
	if pages == 0 {
		pages = 1
	}
	return &BumpAllocator{mem: mem, pages: pages}
}

// Alloc returns size bytes aligned to align, a power of two.
func (b *BumpAllocator) Alloc(size, align uint32) (uint32, error) {
	if align == 0 {
		align = 1
	}
	if align&(align-1) != 0 {
		return 0, errors.New(errors.PhaseHost, errors.KindAllocation).
			Detail("alignment %d is not a power of two", align).Build()
	}
	p := alignUp(b.cur, align)
	if b.end == 0 || p+uint64(size) > b.end {
		if err := b.grow(uint64(size) + uint64(align)); err != nil {
			return 0, err
		}
		p = alignUp(b.cur, align)
	}
	b.cur = p + uint64(size)
	b.last = p
	return uint32(p), nil
}

// Free releases ptr only if it is the most recent allocation.
func (b *BumpAllocator) Free(ptr, size, _ uint32) {
	if uint64(ptr) == b.last && uint64(ptr)+uint64(size) == b.cur {
		b.cur = b.last
	}
}

// Reset makes the whole current region available again.
func (b *BumpAllocator) Reset() {
	if b.cur != b.start {
		debugf("bump allocator: reset, %d bytes released", b.Used())
	}
	b.cur = b.start
	b.last = b.start
}

// Used returns the bytes allocated since the last Reset.
func (b *BumpAllocator) Used() uint32 {
	return uint32(b.cur - b.start)
}

func (b *BumpAllocator) grow(need uint64) error {
	pages := uint32((need + pageSize - 1) / pageSize)
	if pages < b.pages {
		pages = b.pages
	}
	prev, ok := b.mem.Grow(pages)
	if !ok {
		return errors.AllocationFailed(errors.PhaseHost, uint32(need), 0)
	}
	top := uint64(prev) * pageSize
	if top != b.end {
		// The guest grew memory since our last growth: start a new region.
		b.start = top
		b.cur = top
		b.last = top
	}
	b.end = top + uint64(pages)*pageSize
	debugf("bump allocator: region [%d, %d)", b.start, b.end)
	return nil
}

func alignUp(v uint64, align uint32) uint64 {
	a := uint64(align)
	return (v + a - 1) &^ (a - 1)
}

// GuestAllocator delegates to a guest export alloc(size i32) -> i32.
type GuestAllocator struct {
	fn api.Function
}

var _ contractruntime.Allocator = (*GuestAllocator)(nil)

// NewGuestAllocator wraps the guest alloc export fn.
func NewGuestAllocator(fn api.Function) *GuestAllocator {
	return &GuestAllocator{fn: fn}
}

// Alloc calls the guest allocator. Alignment is the guest's concern.
func (g *GuestAllocator) Alloc(size, align uint32) (uint32, error) {
	return g.AllocContext(context.Background(), size, align)
}

// AllocContext is Alloc with the context of the host call in progress.
func (g *GuestAllocator) AllocContext(ctx context.Context, size, _ uint32) (uint32, error) {
	res, err := g.fn.Call(ctx, api.EncodeU32(size))
	if err != nil {
		return 0, errors.Wrap(errors.PhaseHost, errors.KindAllocation, err, "guest alloc trapped")
	}
	if len(res) != 1 || api.DecodeU32(res[0]) == 0 {
		return 0, errors.AllocationFailed(errors.PhaseHost, size, 0)
	}
	return api.DecodeU32(res[0]), nil
}

// Free is a no-op; guest memory is reclaimed by the guest.
func (g *GuestAllocator) Free(_, _, _ uint32) {}

type contextAllocator interface {
	AllocContext(ctx context.Context, size, align uint32) (uint32, error)
}

func alloc(ctx context.Context, a contractruntime.Allocator, size, align uint32) (uint32, error) {
	if ca, ok := a.(contextAllocator); ok {
		return ca.AllocContext(ctx, size, align)
	}
	return a.Alloc(size, align)
}
