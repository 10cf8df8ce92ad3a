package engine

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	contractruntime "github.com/wippyai/contract-runtime"
	"github.com/wippyai/contract-runtime/arena"
	"github.com/wippyai/contract-runtime/errors"
)

// CallContext is the per-instance state host functions operate on. It
// travels to host functions inside the context.Context of a guest call.
type CallContext struct {
	Arena  *arena.Arena
	Refs   *RefTable
	Alloc  contractruntime.Allocator
	Memory *Memory // nil when the guest has no memory

	// err is the first host failure of the current call. Host functions
	// that trap record it so the caller sees the typed error rather than
	// the trap wazero reports.
	err error
}

type callContextKey struct{}

// WithCallContext returns a context carrying cc.
func WithCallContext(ctx context.Context, cc *CallContext) context.Context {
	return context.WithValue(ctx, callContextKey{}, cc)
}

// CallContextFrom extracts the call context installed by WithCallContext.
func CallContextFrom(ctx context.Context) (*CallContext, bool) {
	cc, ok := ctx.Value(callContextKey{}).(*CallContext)
	return cc, ok
}

// NewCallContext builds the call context for an instantiated guest.
func NewCallContext(mod api.Module, cfg *Config) *CallContext {
	c := cfg.withDefaults()
	cc := &CallContext{
		Arena: arena.NewWithCapacity(c.ArenaCapacity),
		Refs:  NewRefTable(),
	}

	if mem := guestMemory(mod, c.MemoryExport); mem != nil {
		cc.Memory = NewMemory(mem)
	}

	if fn := mod.ExportedFunction(c.AllocExport); fn != nil && isAllocSignature(fn.Definition()) {
		cc.Alloc = NewGuestAllocator(fn)
	} else if cc.Memory != nil {
		cc.Alloc = NewBumpAllocator(cc.Memory, c.ScratchPages)
	}
	return cc
}

// guestMemory finds the memory host functions read and write: the named
// export, else the module's only exported memory. Module.Memory is not
// consulted; for a module without memory it is a non-nil interface holding
// a nil instance.
func guestMemory(mod api.Module, name string) api.Memory {
	if mem := mod.ExportedMemory(name); mem != nil {
		return mem
	}
	defs := mod.ExportedMemoryDefinitions()
	if len(defs) != 1 {
		return nil
	}
	for export := range defs {
		return mod.ExportedMemory(export)
	}
	return nil
}

func isAllocSignature(def api.FunctionDefinition) bool {
	p, r := def.ParamTypes(), def.ResultTypes()
	return len(p) == 1 && p[0] == api.ValueTypeI32 && len(r) == 1 && r[0] == api.ValueTypeI32
}

// Err returns the first host failure recorded in the current call.
func (cc *CallContext) Err() error { return cc.err }

// note records err as the call's failure unless one is already recorded.
func (cc *CallContext) note(err error) {
	if cc.err == nil {
		cc.err = err
	}
}

// trap records err and aborts the guest call. wazero turns the panic into
// the error returned from the guest export.
func (cc *CallContext) trap(fn string, err error) {
	debugf("host %s: trap: %v", fn, err)
	cc.note(err)
	panic(err)
}

// Reset releases everything the last call left behind: arena slots and
// frames, references, scratch memory and the recorded failure.
func (cc *CallContext) Reset() {
	cc.Arena.Reset()
	cc.Refs.Reset()
	if r, ok := cc.Alloc.(interface{ Reset() }); ok {
		r.Reset()
	}
	cc.err = nil
}

func (cc *CallContext) memory() (*Memory, error) {
	if cc.Memory == nil {
		return nil, errors.NotFound(errors.PhaseHost, "memory", "guest memory")
	}
	return cc.Memory, nil
}

func (cc *CallContext) allocator() (contractruntime.Allocator, error) {
	if cc.Alloc == nil {
		return nil, errors.New(errors.PhaseEncode, errors.KindAllocation).
			Detail("guest has no memory to write results to").Build()
	}
	return cc.Alloc, nil
}

// mustCallContext is used by host functions, which are only reachable
// through an instance call.
func mustCallContext(ctx context.Context, fn string) *CallContext {
	cc, ok := CallContextFrom(ctx)
	if !ok {
		panic(errors.New(errors.PhaseHost, errors.KindInvalidInput).
			Path(fn).Detail("host function called without a call context").Build())
	}
	return cc
}

// guestString reads a name the guest passed as (offset, length).
func (cc *CallContext) guestString(off, n uint32) (string, error) {
	mem, err := cc.memory()
	if err != nil {
		return "", err
	}
	b, err := mem.Read(off, n)
	if err != nil {
		return "", errors.Wrap(errors.PhaseRuntime, errors.KindInvalidInput, err, "read function name")
	}
	return string(b), nil
}
