package arena

import (
	"github.com/wippyai/contract-runtime/errors"
	"github.com/wippyai/contract-runtime/value"
)

// FrameContext records where a frame starts.
type FrameContext struct {
	// Index is the frame's position in the frame stack, equal to the depth
	// before it was opened.
	Index int
	// Parent is the index of the enclosing frame, or -1.
	Parent int
	// LowerBound is the tip when the frame was opened. Dropping the frame
	// rewinds the tip to it.
	LowerBound int
}

// HasParent reports whether the frame is nested in another frame.
func (c FrameContext) HasParent() bool { return c.Parent >= 0 }

// Frame is a scope over an Arena. Values pushed through a frame live until
// the frame or one of its ancestors is dropped.
type Frame struct {
	arena  *Arena
	index  int
	serial uint64
}

// NewFrame opens a frame on top of the frame stack. Every NewFrame must be
// paired with exactly one DropFrame of the returned index; Exec does the
// pairing automatically.
func (a *Arena) NewFrame() (*Frame, FrameContext) {
	ctx := FrameContext{
		Index:      len(a.frames),
		Parent:     len(a.frames) - 1,
		LowerBound: a.tip,
	}
	a.serial++
	a.frames = append(a.frames, ctx)
	a.serials = append(a.serials, a.serial)
	debugf("arena %d: open frame %d at %d", a.id, ctx.Index, ctx.LowerBound)
	return &Frame{arena: a, index: ctx.Index, serial: a.serial}, ctx
}

// DropFrame closes the top frame, which must have the given index, and
// rewinds the tip to the frame's lower bound. Closing any other frame, or
// closing with no frame open, is an embedding bug and panics with a
// KindInvariant error.
func (a *Arena) DropFrame(index int) {
	top := len(a.frames) - 1
	if top < 0 {
		panic(errors.Invariant("drop of frame %d with no open frame", index))
	}
	if index != top {
		panic(errors.Invariant("drop of frame %d while frame %d is on top", index, top))
	}
	ctx := a.frames[top]
	for i := ctx.LowerBound; i < a.tip; i++ {
		a.release(i)
	}
	a.tip = ctx.LowerBound
	a.frames = a.frames[:top]
	a.serials = a.serials[:top]
	debugf("arena %d: drop frame %d, tip %d", a.id, index, a.tip)
}

// Index returns the frame's position in the frame stack.
func (f *Frame) Index() int { return f.index }

// Arena returns the arena the frame belongs to.
func (f *Frame) Arena() *Arena { return f.arena }

// Open reports whether the frame has not been dropped.
func (f *Frame) Open() bool {
	a := f.arena
	return f.index < len(a.frames) && a.serials[f.index] == f.serial
}

// Context returns the frame's bookkeeping record.
func (f *Frame) Context() FrameContext {
	f.mustBeOpen()
	return f.arena.frames[f.index]
}

// Push stores v in this frame. The frame must be the top frame.
func (f *Frame) Push(v value.Value) HostPtr {
	f.mustBeOpen()
	if top := len(f.arena.frames) - 1; f.index != top {
		panic(errors.Invariant("push through frame %d while frame %d is on top", f.index, top))
	}
	return f.arena.push(v, false)
}

// Get resolves ptr in this frame or any ancestor.
func (f *Frame) Get(ptr HostPtr) (value.Value, bool) { return f.arena.Get(ptr) }

// Lookup resolves ptr, reporting why it does not resolve.
func (f *Frame) Lookup(ptr HostPtr) (value.Value, error) { return f.arena.Lookup(ptr) }

// GetRaw resolves a guest-supplied raw handle.
func (f *Frame) GetRaw(raw int32) (value.Value, error) { return f.arena.GetRaw(raw) }

// GetUnchecked resolves raw without validation. See Arena.GetUnchecked.
func (f *Frame) GetUnchecked(raw int32) value.Value { return f.arena.GetUnchecked(raw) }

// Drop releases the slot behind ptr.
func (f *Frame) Drop(ptr HostPtr) bool { return f.arena.Drop(ptr) }

func (f *Frame) mustBeOpen() {
	if !f.Open() {
		panic(errors.Invariant("use of dropped frame %d", f.index))
	}
}

// Exec runs body inside a new frame and returns pointers to its results.
//
// The frame is dropped exactly once however body exits. Results are kept in
// the result buffer while the frame is dropped, then pushed into the
// enclosing region as owned pointers, so they outlive the frame that
// produced them. If body returns an error, or panics, the frame and any
// frames body left open above it are unwound before the error or panic
// propagates.
func (a *Arena) Exec(body func(*Frame) ([]value.Value, error)) (ptrs []HostPtr, err error) {
	frame, ctx := a.NewFrame()
	done := false
	defer func() {
		if !done {
			a.unwindTo(ctx.Index)
		}
	}()

	results, err := body(frame)
	if depth := len(a.frames); depth != ctx.Index+1 || !frame.Open() {
		a.unwindTo(ctx.Index)
		done = true
		panic(errors.Invariant("frame %d returned with frame stack at depth %d", ctx.Index, depth))
	}
	if err != nil {
		a.DropFrame(ctx.Index)
		done = true
		return nil, err
	}

	a.FillResultBuffer(results)
	a.DropFrame(ctx.Index)
	done = true

	ptrs = make([]HostPtr, len(a.results))
	for i, v := range a.results {
		ptrs[i] = a.push(v, true)
	}
	return ptrs, nil
}

// unwindTo drops frames from the top down to and including index.
func (a *Arena) unwindTo(index int) {
	for len(a.frames) > index {
		a.DropFrame(len(a.frames) - 1)
	}
}
