package engine

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/contract-runtime/arena"
	"github.com/wippyai/contract-runtime/hostfn"
	"github.com/wippyai/contract-runtime/value"
)

var (
	i32   = []api.ValueType{api.ValueTypeI32}
	i32x2 = []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}
)

// ArenaStrategy passes each value as an i32 handle into the instance arena.
// Host functions run inside a frame and promote their result into the
// caller's region before the frame is dropped. Failures trap.
type ArenaStrategy struct{}

func (ArenaStrategy) Name() string                 { return "ptr" }
func (ArenaStrategy) ValueTypes() []api.ValueType  { return i32 }
func (ArenaStrategy) ResultTypes() []api.ValueType { return i32 }

func (s ArenaStrategy) HostFunctions() []HostFunc {
	fns := make([]HostFunc, 0, len(hostfn.Binaries)+2)
	for _, b := range hostfn.Binaries {
		fns = append(fns, HostFunc{
			Name:    ExportName(s, b.Name),
			Params:  i32x2,
			Results: i32,
			Fn:      ptrBinary(ExportName(s, b.Name), b.Fn),
		})
	}
	fns = append(fns,
		HostFunc{Name: ExportName(s, "fold"), Params: foldParams(s), Results: i32, Fn: s.fold},
		HostFunc{Name: ExportName(s, "drop"), Params: i32, Fn: s.drop},
	)
	return fns
}

// Lower pushes v into the innermost arena region.
func (ArenaStrategy) Lower(_ context.Context, cc *CallContext, v value.Value) ([]uint64, error) {
	ptr := cc.Arena.Push(v)
	return []uint64{api.EncodeI32(ptr.Raw())}, nil
}

// Lift resolves the returned handle.
func (ArenaStrategy) Lift(_ context.Context, cc *CallContext, results []uint64) (value.Value, error) {
	return cc.Arena.GetRaw(api.DecodeI32(results[0]))
}

func ptrBinary(name string, fn hostfn.BinaryFunc) api.GoModuleFunc {
	return func(ctx context.Context, _ api.Module, stack []uint64) {
		cc := mustCallContext(ctx, name)
		ptrs, err := cc.Arena.Exec(func(f *arena.Frame) ([]value.Value, error) {
			a, err := f.GetRaw(api.DecodeI32(stack[0]))
			if err != nil {
				return nil, err
			}
			b, err := f.GetRaw(api.DecodeI32(stack[1]))
			if err != nil {
				return nil, err
			}
			r, err := fn(a, b)
			if err != nil {
				return nil, err
			}
			return []value.Value{r}, nil
		})
		if err != nil {
			cc.trap(name, err)
		}
		stack[0] = api.EncodeI32(ptrs[0].Raw())
	}
}

func (s ArenaStrategy) drop(ctx context.Context, _ api.Module, stack []uint64) {
	cc := mustCallContext(ctx, "drop_ptr")
	if err := cc.Arena.DropRaw(api.DecodeI32(stack[0])); err != nil {
		cc.trap("drop_ptr", err)
	}
}

// fold applies a guest export to each element. Elements and the running
// accumulator live in the fold's frame; each step's temporaries are dropped
// so the tip stays put however long the sequence is.
func (s ArenaStrategy) fold(ctx context.Context, m api.Module, stack []uint64) {
	cc := mustCallContext(ctx, "fold_ptr")
	fn, name, err := callback(cc, m, s, stack[0], stack[1])
	if err != nil {
		cc.trap("fold_ptr", err)
	}

	ptrs, err := cc.Arena.Exec(func(f *arena.Frame) ([]value.Value, error) {
		seq, err := f.GetRaw(api.DecodeI32(stack[2]))
		if err != nil {
			return nil, err
		}
		init, err := f.GetRaw(api.DecodeI32(stack[3]))
		if err != nil {
			return nil, err
		}
		floor := f.Context().LowerBound

		acc := f.Push(init)
		err = hostfn.Each(seq, func(_ int, el value.Value) error {
			elp := f.Push(el)
			res, err := fn.Call(ctx, api.EncodeI32(elp.Raw()), api.EncodeI32(acc.Raw()))
			if err != nil {
				return guestCallFailed(name, err)
			}
			raw := api.DecodeI32(res[0])
			next, err := f.GetRaw(raw)
			if err != nil {
				return err
			}
			// Results the callback pushed are released here. The element and
			// accumulator may come back as the result and are released below.
			if idx, _ := arena.SplitRaw(raw); int(idx) >= floor && idx != elp.Index && idx != acc.Index {
				if err := f.Arena().DropRaw(raw); err != nil {
					return err
				}
			}
			f.Drop(elp)
			f.Drop(acc)
			acc = f.Push(next)
			return nil
		})
		if err != nil {
			return nil, err
		}
		v, _ := f.Get(acc)
		return []value.Value{v}, nil
	})
	if err != nil {
		cc.trap("fold_ptr", err)
	}
	stack[0] = api.EncodeI32(ptrs[0].Raw())
}
