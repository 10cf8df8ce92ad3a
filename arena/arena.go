package arena

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/wippyai/contract-runtime/errors"
	"github.com/wippyai/contract-runtime/value"
)

var nextID atomic.Uint64

// Arena is a frame-scoped slot table of values.
//
// Slots are issued at the tip. Opening a frame records the tip, dropping the
// frame rewinds to it, and every slot above the mark is invalidated by
// bumping its generation so that retained pointers stop resolving.
//
// An Arena is not safe for concurrent use. Nested frames model sequential
// guest to host reentrancy on one goroutine.
type Arena struct {
	slots   []slot
	frames  []FrameContext
	serials []uint64
	results []value.Value
	id      uint64
	tip     int
	serial  uint64
}

type slot struct {
	value value.Value
	gen   uint32
	owned bool
}

// New creates an empty arena.
func New() *Arena {
	return NewWithCapacity(64)
}

// NewWithCapacity creates an empty arena with room for n slots.
func NewWithCapacity(n int) *Arena {
	if n < 0 {
		n = 0
	}
	return &Arena{
		id:    nextID.Add(1),
		slots: make([]slot, 0, n),
	}
}

// ID returns the process-unique identity stamped into every HostPtr.
func (a *Arena) ID() uint64 { return a.id }

// Depth returns the number of open frames.
func (a *Arena) Depth() int { return len(a.frames) }

// Tip returns the index the next push will use.
func (a *Arena) Tip() int { return a.tip }

// Live returns the number of slots below the tip that hold a value.
func (a *Arena) Live() int {
	n := 0
	for i := 0; i < a.tip; i++ {
		if a.slots[i].value != nil {
			n++
		}
	}
	return n
}

// Push stores v at the tip of the innermost region, which is the top frame
// or the root region when no frame is open.
func (a *Arena) Push(v value.Value) HostPtr {
	return a.push(v, false)
}

func (a *Arena) push(v value.Value, owned bool) HostPtr {
	if v == nil {
		panic(errors.Invariant("push of nil value"))
	}
	idx := a.tip
	if idx >= MaxSlots {
		panic(errors.Invariant("arena exhausted at %d slots", MaxSlots))
	}
	if idx < len(a.slots) {
		s := &a.slots[idx]
		s.value = v
		s.owned = owned
	} else {
		a.slots = append(a.slots, slot{value: v, owned: owned})
	}
	a.tip++
	return HostPtr{
		arena: a.id,
		Index: int32(idx),
		Gen:   a.slots[idx].gen,
		Tag:   v.Tag(),
		Owned: owned,
	}
}

// Get resolves ptr. It reports false for a pointer from another arena, an
// index at or above the tip, a dropped slot, or a slot reissued since ptr
// was created.
func (a *Arena) Get(ptr HostPtr) (value.Value, bool) {
	if ptr.arena != a.id {
		return nil, false
	}
	return a.lookup(ptr.Index, ptr.Gen, fullGenMask)
}

// Lookup is Get with a typed error describing why resolution failed.
func (a *Arena) Lookup(ptr HostPtr) (value.Value, error) {
	if ptr.arena != a.id {
		return nil, errors.New(errors.PhaseArena, errors.KindForeignHandle).
			Detail("pointer from arena %d used with arena %d", ptr.arena, a.id).Build()
	}
	return a.lookupErr(ptr.Index, ptr.Gen, fullGenMask)
}

// GetRaw resolves a guest-supplied raw handle with full bounds and
// generation checks.
func (a *Arena) GetRaw(raw int32) (value.Value, error) {
	idx, gen := SplitRaw(raw)
	return a.lookupErr(idx, uint32(gen), rawGenMask)
}

// GetUnchecked returns the value at the slot index of raw without checking
// the generation or whether the slot was dropped. The caller guarantees raw
// came from this arena and its frame is still open. Out of range indices
// are undefined and currently panic.
func (a *Arena) GetUnchecked(raw int32) value.Value {
	return a.slots[uint32(raw)&indexMask].value
}

// lookup compares the bits of the slot generation selected by mask.
func (a *Arena) lookup(idx int32, gen, mask uint32) (value.Value, bool) {
	if idx < 0 || int(idx) >= a.tip {
		return nil, false
	}
	s := &a.slots[idx]
	if s.value == nil || s.gen&mask != gen {
		return nil, false
	}
	return s.value, true
}

func (a *Arena) lookupErr(idx int32, gen, mask uint32) (value.Value, error) {
	if idx < 0 || int(idx) >= a.tip {
		return nil, errors.OutOfBounds(errors.PhaseArena, nil, int(idx), a.tip)
	}
	s := &a.slots[idx]
	if s.value == nil || s.gen&mask != gen {
		return nil, errors.New(errors.PhaseArena, errors.KindStaleHandle).
			Detail("slot %d generation %d, pointer generation %d", idx, s.gen&mask, gen).Value(idx).Build()
	}
	return s.value, nil
}

// Drop releases the slot ptr refers to. The table does not shrink, except
// that dropping the slot directly below the tip retreats the tip over
// trailing released slots of the innermost region. It reports false if ptr
// does not resolve.
func (a *Arena) Drop(ptr HostPtr) bool {
	if ptr.arena != a.id {
		return false
	}
	return a.drop(ptr.Index, ptr.Gen, fullGenMask) == nil
}

// DropRaw is Drop for a guest-supplied raw handle.
func (a *Arena) DropRaw(raw int32) error {
	idx, gen := SplitRaw(raw)
	return a.drop(idx, uint32(gen), rawGenMask)
}

func (a *Arena) drop(idx int32, gen, mask uint32) error {
	if _, err := a.lookupErr(idx, gen, mask); err != nil {
		return err
	}
	a.release(int(idx))
	if int(idx) == a.tip-1 {
		floor := a.floor()
		for a.tip > floor && a.slots[a.tip-1].value == nil {
			a.tip--
		}
	}
	return nil
}

// release clears a live slot and advances its generation.
func (a *Arena) release(i int) {
	s := &a.slots[i]
	if s.value == nil {
		return
	}
	s.value = nil
	s.owned = false
	s.gen++
}

// floor is the lowest index the innermost region may rewind to.
func (a *Arena) floor() int {
	if n := len(a.frames); n > 0 {
		return a.frames[n-1].LowerBound
	}
	return 0
}

// FillResultBuffer stores values as the results of the current invocation.
// The buffer holds them independently of any frame until it is refilled or
// the arena is reset.
func (a *Arena) FillResultBuffer(values []value.Value) {
	clear(a.results)
	a.results = append(a.results[:0], values...)
}

// ResultBuffer returns the values last stored by FillResultBuffer.
func (a *Arena) ResultBuffer() []value.Value {
	return a.results
}

// Reset closes every frame and invalidates every slot. It is used to recover
// the arena after a call was aborted.
func (a *Arena) Reset() {
	if len(a.frames) > 0 {
		debugf("arena %d: reset with %d open frames", a.id, len(a.frames))
	}
	for i := 0; i < a.tip; i++ {
		a.release(i)
	}
	a.tip = 0
	a.frames = a.frames[:0]
	a.serials = a.serials[:0]
	clear(a.results)
	a.results = a.results[:0]
}

// String dumps the live region of the arena, one slot per line.
func (a *Arena) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "arena %d: depth=%d tip=%d\n", a.id, len(a.frames), a.tip)
	fi := 0
	for i := 0; i < a.tip; i++ {
		for fi < len(a.frames) && a.frames[fi].LowerBound == i {
			fmt.Fprintf(&b, "  -- frame %d --\n", a.frames[fi].Index)
			fi++
		}
		s := a.slots[i]
		switch {
		case s.value == nil:
			fmt.Fprintf(&b, "  [%d#%d] <dropped>\n", i, s.gen)
		case s.owned:
			fmt.Fprintf(&b, "  [%d#%d] %s (owned)\n", i, s.gen, s.value)
		default:
			fmt.Fprintf(&b, "  [%d#%d] %s\n", i, s.gen, s.value)
		}
	}
	for ; fi < len(a.frames); fi++ {
		fmt.Fprintf(&b, "  -- frame %d --\n", a.frames[fi].Index)
	}
	return b.String()
}
