package engine

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/contract-runtime/errors"
	"github.com/wippyai/contract-runtime/value"
)

// WazeroEngine owns a wazero runtime with the "contract" host module
// instantiated in it. Guests compiled by the engine import host functions
// from that module.
type WazeroEngine struct {
	runtime wazero.Runtime
	host    api.Module
	cfg     Config
}

// NewWazeroEngine creates a new engine with default configuration
func NewWazeroEngine(ctx context.Context) (*WazeroEngine, error) {
	return NewWazeroEngineWithConfig(ctx, nil)
}

// NewWazeroEngineWithConfig creates a new engine with custom configuration
func NewWazeroEngineWithConfig(ctx context.Context, cfg *Config) (*WazeroEngine, error) {
	c := cfg.withDefaults()
	runtimeCfg := wazero.NewRuntimeConfig()
	if c.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(c.MemoryLimitPages)
	}

	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	host, err := instantiateHost(ctx, rt, Strategies())
	if err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	return &WazeroEngine{runtime: rt, host: host, cfg: c}, nil
}

func instantiateHost(ctx context.Context, rt wazero.Runtime, strategies []Strategy) (api.Module, error) {
	builder := rt.NewHostModuleBuilder(HostModule)
	n := 0
	for _, s := range strategies {
		for _, hf := range s.HostFunctions() {
			builder.NewFunctionBuilder().
				WithGoModuleFunction(hf.Fn, hf.Params, hf.Results).
				WithName(hf.Name).
				Export(hf.Name)
			n++
		}
	}
	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, errors.Registration("instantiate host module "+HostModule, err)
	}
	Logger().Debug("host module instantiated", zap.String("module", HostModule), zap.Int("functions", n))
	return mod, nil
}

// Config returns the effective configuration.
func (e *WazeroEngine) Config() Config { return e.cfg }

// Runtime exposes the underlying wazero runtime.
func (e *WazeroEngine) Runtime() wazero.Runtime { return e.runtime }

// HostFunctions lists the exports of the host module, sorted by name.
func (e *WazeroEngine) HostFunctions() []string {
	defs := e.host.ExportedFunctionDefinitions()
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Close releases the runtime and every module compiled or instantiated in it.
func (e *WazeroEngine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// LoadModule compiles a core WebAssembly module. Imports other than the
// host module are rejected here rather than at instantiation.
func (e *WazeroEngine) LoadModule(ctx context.Context, wasmBytes []byte) (*WazeroModule, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, errors.Load(errors.KindInvalidData, "compile module", err)
	}
	var foreign []string
	for _, def := range compiled.ImportedFunctions() {
		module, name, _ := def.Import()
		if module != HostModule {
			foreign = append(foreign, module+"."+name)
		}
	}
	if len(foreign) > 0 {
		_ = compiled.Close(ctx)
		return nil, errors.Load(errors.KindNotFound, "unresolved imports: "+strings.Join(foreign, ", "), nil)
	}
	return &WazeroModule{engine: e, compiled: compiled}, nil
}

// WazeroModule is a compiled WASM module
type WazeroModule struct {
	engine   *WazeroEngine
	compiled wazero.CompiledModule
}

// Export describes a guest function export.
type Export struct {
	Name    string
	Params  []api.ValueType
	Results []api.ValueType
}

// Signature renders the export as "name(params) -> results".
func (x Export) Signature() string {
	return x.Name + "(" + strings.Join(typeNames(x.Params), ", ") + ") -> (" + strings.Join(typeNames(x.Results), ", ") + ")"
}

// Exports lists the module's function exports sorted by name.
func (m *WazeroModule) Exports() []Export {
	defs := m.compiled.ExportedFunctions()
	out := make([]Export, 0, len(defs))
	for name, def := range defs {
		out = append(out, Export{Name: name, Params: def.ParamTypes(), Results: def.ResultTypes()})
	}
	slices.SortFunc(out, func(a, b Export) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Instantiate creates an instance with its own arena, reference table and
// allocator. name may be empty; instances with the same non-empty name
// cannot coexist in one engine.
func (m *WazeroModule) Instantiate(ctx context.Context, name string) (*WazeroInstance, error) {
	mod, err := m.engine.runtime.InstantiateModule(ctx, m.compiled, wazero.NewModuleConfig().WithName(name))
	if err != nil {
		return nil, errors.Load(errors.KindInstantiation, "instantiate module", err)
	}
	return &WazeroInstance{
		module: mod,
		cc:     NewCallContext(mod, &m.engine.cfg),
	}, nil
}

// Close releases the compiled module.
func (m *WazeroModule) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}

// WazeroInstance is an instantiated guest. It is not safe for concurrent
// use; guest to host reentrancy happens on the calling goroutine.
type WazeroInstance struct {
	module api.Module
	cc     *CallContext
	mu     sync.Mutex
	busy   bool
}

// Module exposes the wazero module instance.
func (i *WazeroInstance) Module() api.Module { return i.module }

// CallContext returns the state host functions see during calls.
func (i *WazeroInstance) CallContext() *CallContext { return i.cc }

// Call invokes a guest export under strategy s. Each argument is lowered
// to the strategy's parameter form and the single result is lifted back.
//
// Everything the call allocated in the arena, the reference table and
// scratch memory is released before Call returns, on success and on
// failure alike. A host function failure is returned as the host's typed
// error rather than as the trap that aborted the guest.
func (i *WazeroInstance) Call(ctx context.Context, s Strategy, name string, args ...value.Value) (value.Value, error) {
	fn := i.module.ExportedFunction(name)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseRuntime, "function", name)
	}
	if err := checkSignature(fn.Definition(), s, len(args)); err != nil {
		return nil, err
	}
	for idx, a := range args {
		if a == nil {
			return nil, errors.New(errors.PhaseRuntime, errors.KindArgumentMissing).
				Path(name).Value(idx).Detail("argument %d is nil", idx).Build()
		}
	}

	i.mu.Lock()
	if i.busy {
		i.mu.Unlock()
		return nil, errors.InvalidInput(errors.PhaseRuntime, "instance is already executing a call")
	}
	i.busy = true
	i.mu.Unlock()
	defer func() {
		i.cc.Reset()
		i.mu.Lock()
		i.busy = false
		i.mu.Unlock()
	}()

	ctx = WithCallContext(ctx, i.cc)
	params := make([]uint64, 0, len(args)*len(s.ValueTypes()))
	for _, a := range args {
		p, err := s.Lower(ctx, i.cc, a)
		if err != nil {
			return nil, err
		}
		params = append(params, p...)
	}

	debugf("call %s_%s with %d args", name, s.Name(), len(args))
	results, err := fn.Call(ctx, params...)
	if err != nil {
		if herr := i.cc.Err(); herr != nil {
			return nil, herr
		}
		return nil, errors.New(errors.PhaseRuntime, errors.KindGuestCall).
			Path(name).Cause(err).Detail("guest call failed").Build()
	}
	return s.Lift(ctx, i.cc, results)
}

// Close closes the guest module instance.
func (i *WazeroInstance) Close(ctx context.Context) error {
	return i.module.Close(ctx)
}
