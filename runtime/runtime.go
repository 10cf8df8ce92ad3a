package runtime

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/contract-runtime/arena"
	"github.com/wippyai/contract-runtime/engine"
	"github.com/wippyai/contract-runtime/errors"
)

// Config holds runtime configuration. The zero value is usable.
type Config struct {
	// Logger, when set, is installed as the engine and arena logger.
	// Debug level enables host function and frame tracing.
	Logger *zap.Logger

	// Strategy names the calling convention Instance.Call uses:
	// "ptr", "mem" or "ref". Default "ptr".
	Strategy string

	Engine engine.Config
}

type Runtime struct {
	engine   *engine.WazeroEngine
	strategy engine.Strategy
	modules  []*Module
	mu       sync.Mutex
}

func New(ctx context.Context) (*Runtime, error) {
	return NewWithConfig(ctx, nil)
}

func NewWithConfig(ctx context.Context, cfg *Config) (*Runtime, error) {
	var c Config
	if cfg != nil {
		c = *cfg
	}
	if c.Strategy == "" {
		c.Strategy = engine.Arena.Name()
	}
	strategy, err := engine.StrategyByName(c.Strategy)
	if err != nil {
		return nil, err
	}
	if c.Logger != nil {
		engine.SetLogger(c.Logger)
		arena.SetLogger(c.Logger)
	}

	eng, err := engine.NewWazeroEngineWithConfig(ctx, &c.Engine)
	if err != nil {
		return nil, errors.Load(errors.KindRegistration, "create engine", err)
	}
	return &Runtime{engine: eng, strategy: strategy}, nil
}

// Engine exposes the underlying engine.
func (r *Runtime) Engine() *engine.WazeroEngine { return r.engine }

// Strategy returns the default calling convention.
func (r *Runtime) Strategy() engine.Strategy { return r.strategy }

// Close releases all runtime resources: every module, every instance of
// those modules and finally the engine. All failures are reported.
func (r *Runtime) Close(ctx context.Context) error {
	r.mu.Lock()
	modules := r.modules
	r.modules = nil
	r.mu.Unlock()

	var err error
	for _, m := range modules {
		err = multierr.Append(err, m.Close(ctx))
	}
	return multierr.Append(err, r.engine.Close(ctx))
}

// LoadWASM compiles a core WebAssembly module whose imports come from the
// "contract" host module.
func (r *Runtime) LoadWASM(ctx context.Context, wasm []byte) (*Module, error) {
	wazeroModule, err := r.engine.LoadModule(ctx, wasm)
	if err != nil {
		return nil, err
	}
	m := &Module{runtime: r, wazeroModule: wazeroModule}

	r.mu.Lock()
	r.modules = append(r.modules, m)
	r.mu.Unlock()
	engine.Logger().Debug("module loaded", zap.Int("bytes", len(wasm)), zap.Int("exports", len(m.Exports())))
	return m, nil
}

// LoadDemo loads the built-in guest for strategy s. It forwards the binary
// host functions, folds with sum and echoes with identity.
func (r *Runtime) LoadDemo(ctx context.Context, s engine.Strategy) (*Module, error) {
	return r.LoadWASM(ctx, engine.BuildGuest(s))
}

func (r *Runtime) forget(m *Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := slices.Index(r.modules, m); i >= 0 {
		r.modules = slices.Delete(r.modules, i, i+1)
	}
}
