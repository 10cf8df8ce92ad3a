package engine

import (
	"context"
	"slices"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/contract-runtime/codec"
	"github.com/wippyai/contract-runtime/errors"
	"github.com/wippyai/contract-runtime/hostfn"
	"github.com/wippyai/contract-runtime/value"
)

var (
	i32x3 = []api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32}
	i32x4 = []api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32}
)

// MemoryStrategy passes each value as an (offset, length) pair of encoded
// bytes in guest memory. Results are (code, offset, length); a non-zero code
// is an errors.Code and the other two are zero. Host functions never trap.
type MemoryStrategy struct{}

func (MemoryStrategy) Name() string                 { return "mem" }
func (MemoryStrategy) ValueTypes() []api.ValueType  { return i32x2 }
func (MemoryStrategy) ResultTypes() []api.ValueType { return i32x3 }

func (s MemoryStrategy) HostFunctions() []HostFunc {
	fns := make([]HostFunc, 0, len(hostfn.Binaries)+1)
	for _, b := range hostfn.Binaries {
		fns = append(fns, HostFunc{
			Name:    ExportName(s, b.Name),
			Params:  i32x4,
			Results: i32x3,
			Fn:      memBinary(ExportName(s, b.Name), b.Fn),
		})
	}
	return append(fns, HostFunc{Name: ExportName(s, "fold"), Params: foldParams(s), Results: i32x3, Fn: s.fold})
}

// Lower encodes v into freshly allocated guest memory.
func (MemoryStrategy) Lower(ctx context.Context, cc *CallContext, v value.Value) ([]uint64, error) {
	off, n, err := cc.writeValue(ctx, v)
	if err != nil {
		return nil, err
	}
	return []uint64{api.EncodeU32(off), api.EncodeU32(n)}, nil
}

// Lift decodes the returned bytes, or converts a non-zero code to an error.
// When the code came from a host function of this call, that function's
// original error is returned.
func (MemoryStrategy) Lift(_ context.Context, cc *CallContext, results []uint64) (value.Value, error) {
	if code := errors.Code(api.DecodeI32(results[0])); code != errors.CodeOK {
		return nil, cc.codeErr(code)
	}
	return cc.readValue(results[1], results[2])
}

func (cc *CallContext) codeErr(code errors.Code) error {
	if cc.err != nil && errors.CodeOf(cc.err) == code {
		return cc.err
	}
	return errors.FromCode(code)
}

// readValue decodes the value at (off, n) in guest memory.
func (cc *CallContext) readValue(off, n uint64) (value.Value, error) {
	mem, err := cc.memory()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "read argument")
	}
	b, err := mem.Read(api.DecodeU32(off), api.DecodeU32(n))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindOutOfBounds, err, "read argument")
	}
	return codec.Decode(b)
}

// writeValue encodes v into guest memory and returns where it went.
func (cc *CallContext) writeValue(ctx context.Context, v value.Value) (off, n uint32, err error) {
	a, err := cc.allocator()
	if err != nil {
		return 0, 0, err
	}
	mem, err := cc.memory()
	if err != nil {
		return 0, 0, errors.Wrap(errors.PhaseEncode, errors.KindAllocation, err, "write result")
	}
	err = codec.EncodeFunc(v, func(b []byte) error {
		p, err := alloc(ctx, a, uint32(len(b)), 1)
		if err != nil {
			return errors.Wrap(errors.PhaseEncode, errors.KindAllocation, err, "allocate result")
		}
		if err := mem.Write(p, b); err != nil {
			a.Free(p, uint32(len(b)), 1)
			return errors.Wrap(errors.PhaseEncode, errors.KindOutOfBounds, err, "write result")
		}
		off, n = p, uint32(len(b))
		return nil
	})
	return off, n, err
}

// release returns a region from writeValue to the allocator. Only the most
// recent allocation is reclaimed by the bump allocator.
func (cc *CallContext) release(off, n uint32) {
	if cc.Alloc != nil && n > 0 {
		cc.Alloc.Free(off, n, 1)
	}
}

// memReturn stores a (code, offset, length) result.
func (cc *CallContext) memReturn(name string, stack []uint64, off, n uint32, err error) {
	if err != nil {
		debugf("host %s: %v", name, err)
		cc.note(err)
		stack[0], stack[1], stack[2] = api.EncodeI32(int32(errors.CodeOf(err))), 0, 0
		return
	}
	stack[0], stack[1], stack[2] = 0, api.EncodeU32(off), api.EncodeU32(n)
}

func memBinary(name string, fn hostfn.BinaryFunc) api.GoModuleFunc {
	return func(ctx context.Context, _ api.Module, stack []uint64) {
		cc := mustCallContext(ctx, name)
		off, n, err := func() (uint32, uint32, error) {
			a, err := cc.readValue(stack[0], stack[1])
			if err != nil {
				return 0, 0, err
			}
			b, err := cc.readValue(stack[2], stack[3])
			if err != nil {
				return 0, 0, err
			}
			r, err := fn(a, b)
			if err != nil {
				return 0, 0, err
			}
			return cc.writeValue(ctx, r)
		}()
		cc.memReturn(name, stack, off, n, err)
	}
}

func (s MemoryStrategy) fold(ctx context.Context, m api.Module, stack []uint64) {
	cc := mustCallContext(ctx, "fold_mem")
	off, n, err := s.foldSpans(ctx, cc, m, stack)
	cc.memReturn("fold_mem", stack, off, n, err)
}

// foldSpans walks the sequence with codec.ScanFunc instead of decoding it.
// List elements are handed to the guest in place, as spans of the original
// buffer; bytes and characters are encoded one at a time into scratch
// memory.
func (s MemoryStrategy) foldSpans(ctx context.Context, cc *CallContext, m api.Module, stack []uint64) (uint32, uint32, error) {
	fn, name, err := callback(cc, m, s, stack[0], stack[1])
	if err != nil {
		return 0, 0, err
	}
	mem, err := cc.memory()
	if err != nil {
		return 0, 0, err
	}
	seqOff, seqLen := api.DecodeU32(stack[2]), api.DecodeU32(stack[3])
	view, err := mem.Read(seqOff, seqLen)
	if err != nil {
		return 0, 0, errors.Wrap(errors.PhaseDecode, errors.KindOutOfBounds, err, "read sequence")
	}
	buf := slices.Clone(view)
	tag, err := codec.PeekTag(buf)
	if err != nil {
		return 0, 0, err
	}

	accOff, accLen := api.DecodeU32(stack[4]), api.DecodeU32(stack[5])
	err = codec.ScanFunc(buf, nil, func(_ int, sp codec.Span) error {
		elOff, elLen := seqOff+sp.Offset, sp.Len
		if tag != value.TagList {
			raw, err := codec.Element(buf, sp)
			if err != nil {
				return err
			}
			if elOff, elLen, err = cc.writeValue(ctx, element(tag, raw)); err != nil {
				return err
			}
		}
		res, err := fn.Call(ctx, api.EncodeU32(elOff), api.EncodeU32(elLen), api.EncodeU32(accOff), api.EncodeU32(accLen))
		scratch := tag != value.TagList
		if err != nil {
			if scratch {
				cc.release(elOff, elLen)
			}
			return guestCallFailed(name, err)
		}
		if code := errors.Code(api.DecodeI32(res[0])); code != errors.CodeOK {
			if scratch {
				cc.release(elOff, elLen)
			}
			return cc.codeErr(code)
		}
		accOff, accLen = api.DecodeU32(res[1]), api.DecodeU32(res[2])
		if scratch && !overlaps(accOff, accLen, elOff, elLen) {
			// The element is dead unless it became the accumulator.
			cc.release(elOff, elLen)
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return accOff, accLen, nil
}

func overlaps(aOff, aLen, bOff, bLen uint32) bool {
	return uint64(aOff) < uint64(bOff)+uint64(bLen) && uint64(bOff) < uint64(aOff)+uint64(aLen)
}

// element rebuilds a one-element value of a byte or string sequence.
func element(tag value.Tag, raw []byte) value.Value {
	switch tag {
	case value.TagASCII:
		return value.ASCIIString(raw)
	case value.TagUTF8:
		return value.UTF8String(raw)
	}
	return value.Buffer(slices.Clone(raw))
}
