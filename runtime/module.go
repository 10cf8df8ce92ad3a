package runtime

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/multierr"

	"github.com/wippyai/contract-runtime/engine"
)

type Module struct {
	runtime      *Runtime
	wazeroModule *engine.WazeroModule
	instances    []*Instance
	mu           sync.Mutex
	closed       bool
}

// Export describes an exported function.
type Export = engine.Export

func (m *Module) Instantiate(ctx context.Context) (*Instance, error) {
	inst, err := m.wazeroModule.Instantiate(ctx, "")
	if err != nil {
		return nil, err
	}
	i := &Instance{module: m, wazeroInstance: inst, strategy: m.runtime.strategy}

	m.mu.Lock()
	m.instances = append(m.instances, i)
	m.mu.Unlock()
	return i, nil
}

// Exports lists the module's function exports sorted by name.
func (m *Module) Exports() []Export {
	return m.wazeroModule.Exports()
}

// Close closes every open instance and releases the compiled module.
func (m *Module) Close(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	instances := m.instances
	m.instances = nil
	m.mu.Unlock()

	var err error
	for _, i := range instances {
		err = multierr.Append(err, i.close(ctx))
	}
	m.runtime.forget(m)
	return multierr.Append(err, m.wazeroModule.Close(ctx))
}

func (m *Module) forget(i *Instance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx := slices.Index(m.instances, i); idx >= 0 {
		m.instances = slices.Delete(m.instances, idx, idx+1)
	}
}
