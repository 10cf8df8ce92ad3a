package engine

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/contract-runtime/hostfn"
	"github.com/wippyai/contract-runtime/value"
)

var (
	externref   = []api.ValueType{api.ValueTypeExternref}
	externrefx2 = []api.ValueType{api.ValueTypeExternref, api.ValueTypeExternref}
)

// ReferenceStrategy passes each value as an externref naming an entry of
// the instance reference table. Returned references are owned by the
// receiver, which releases them with drop_ref. Failures trap.
type ReferenceStrategy struct{}

func (ReferenceStrategy) Name() string                 { return "ref" }
func (ReferenceStrategy) ValueTypes() []api.ValueType  { return externref }
func (ReferenceStrategy) ResultTypes() []api.ValueType { return externref }

func (s ReferenceStrategy) HostFunctions() []HostFunc {
	fns := make([]HostFunc, 0, len(hostfn.Binaries)+2)
	for _, b := range hostfn.Binaries {
		fns = append(fns, HostFunc{
			Name:    ExportName(s, b.Name),
			Params:  externrefx2,
			Results: externref,
			Fn:      refBinary(ExportName(s, b.Name), b.Fn),
		})
	}
	fns = append(fns,
		HostFunc{Name: ExportName(s, "fold"), Params: foldParams(s), Results: externref, Fn: s.fold},
		HostFunc{Name: ExportName(s, "drop"), Params: externref, Fn: s.drop},
	)
	return fns
}

func encodeRef(h uint32) uint64 { return api.EncodeExternref(uintptr(h)) }
func decodeRef(v uint64) uint32 { return uint32(api.DecodeExternref(v)) }

// Lower stores v in the reference table.
func (ReferenceStrategy) Lower(_ context.Context, cc *CallContext, v value.Value) ([]uint64, error) {
	return []uint64{encodeRef(cc.Refs.Insert(v))}, nil
}

// Lift takes ownership of the returned reference.
func (ReferenceStrategy) Lift(_ context.Context, cc *CallContext, results []uint64) (value.Value, error) {
	return cc.Refs.Take(decodeRef(results[0]))
}

func refBinary(name string, fn hostfn.BinaryFunc) api.GoModuleFunc {
	return func(ctx context.Context, _ api.Module, stack []uint64) {
		cc := mustCallContext(ctx, name)
		a, err := cc.Refs.Get(decodeRef(stack[0]))
		if err != nil {
			cc.trap(name, err)
		}
		b, err := cc.Refs.Get(decodeRef(stack[1]))
		if err != nil {
			cc.trap(name, err)
		}
		r, err := fn(a, b)
		if err != nil {
			cc.trap(name, err)
		}
		stack[0] = encodeRef(cc.Refs.Insert(r))
	}
}

func (s ReferenceStrategy) drop(ctx context.Context, _ api.Module, stack []uint64) {
	cc := mustCallContext(ctx, "drop_ref")
	h := decodeRef(stack[0])
	if _, err := cc.Refs.Get(h); err != nil {
		cc.trap("drop_ref", err)
	}
	cc.Refs.Remove(h)
}

// fold hands the guest an owned reference per element and per accumulator
// and releases them once the step's result is known. References the caller
// passed in are never released.
func (s ReferenceStrategy) fold(ctx context.Context, m api.Module, stack []uint64) {
	cc := mustCallContext(ctx, "fold_ref")
	fn, name, err := callback(cc, m, s, stack[0], stack[1])
	if err != nil {
		cc.trap("fold_ref", err)
	}
	seqRef, initRef := decodeRef(stack[2]), decodeRef(stack[3])
	seq, err := cc.Refs.Get(seqRef)
	if err != nil {
		cc.trap("fold_ref", err)
	}
	init, err := cc.Refs.Get(initRef)
	if err != nil {
		cc.trap("fold_ref", err)
	}
	// The fold releases only handles it owns: the accumulator it inserted,
	// each element handle, and results the callback created. Any other
	// handle the callback returns, such as seq, init or one the caller
	// holds, is borrowed.
	acc, owned := cc.Refs.Insert(init), true
	err = hostfn.Each(seq, func(_ int, el value.Value) error {
		eh := cc.Refs.Insert(el)
		mark := cc.Refs.Mark()
		res, err := fn.Call(ctx, encodeRef(eh), encodeRef(acc))
		if err != nil {
			cc.Refs.Remove(eh)
			return guestCallFailed(name, err)
		}
		next := decodeRef(res[0])
		if _, err := cc.Refs.Get(next); err != nil {
			cc.Refs.Remove(eh)
			return err
		}
		nextOwned := next == eh || (next == acc && owned) || cc.Refs.IssuedSince(next, mark)
		if eh != next {
			cc.Refs.Remove(eh)
		}
		if owned && acc != next {
			cc.Refs.Remove(acc)
		}
		acc, owned = next, nextOwned
		return nil
	})
	if err != nil {
		if owned {
			cc.Refs.Remove(acc)
		}
		cc.trap("fold_ref", err)
	}
	if !owned {
		v, _ := cc.Refs.Get(acc)
		acc = cc.Refs.Insert(v)
	}
	stack[0] = encodeRef(acc)
}
