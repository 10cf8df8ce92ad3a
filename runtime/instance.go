package runtime

import (
	"context"
	"sync"

	"github.com/wippyai/contract-runtime/arena"
	"github.com/wippyai/contract-runtime/engine"
	"github.com/wippyai/contract-runtime/errors"
	"github.com/wippyai/contract-runtime/value"
)

type Instance struct {
	module         *Module
	wazeroInstance *engine.WazeroInstance
	strategy       engine.Strategy
	once           sync.Once
	closeErr       error
}

// Call invokes an exported function under the runtime's default strategy.
// Arguments are converted with ToValue.
func (i *Instance) Call(ctx context.Context, name string, args ...any) (value.Value, error) {
	vals := make([]value.Value, len(args))
	for idx, a := range args {
		v, err := ToValue(a)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseRuntime, errors.KindInvalidInput, err, "convert argument")
		}
		vals[idx] = v
	}
	return i.CallWith(ctx, i.strategy, name, vals...)
}

// CallWith invokes an exported function under strategy s.
func (i *Instance) CallWith(ctx context.Context, s engine.Strategy, name string, args ...value.Value) (value.Value, error) {
	return i.wazeroInstance.Call(ctx, s, name, args...)
}

// CallLiteral parses each argument as a value literal, such as u10 or
// (list 1 2 3), and invokes name under strategy s.
func (i *Instance) CallLiteral(ctx context.Context, s engine.Strategy, name string, literals ...string) (value.Value, error) {
	vals := make([]value.Value, len(literals))
	for idx, lit := range literals {
		v, err := value.Parse(lit)
		if err != nil {
			return nil, err
		}
		vals[idx] = v
	}
	return i.CallWith(ctx, s, name, vals...)
}

// Arena returns the instance arena, for inspection between calls.
func (i *Instance) Arena() *arena.Arena {
	return i.wazeroInstance.CallContext().Arena
}

func (i *Instance) Close(ctx context.Context) error {
	i.module.forget(i)
	return i.close(ctx)
}

func (i *Instance) close(ctx context.Context) error {
	i.once.Do(func() {
		i.closeErr = i.wazeroInstance.Close(ctx)
	})
	return i.closeErr
}
