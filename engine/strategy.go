package engine

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/contract-runtime/errors"
	"github.com/wippyai/contract-runtime/value"
)

// HostFunc is one function of the host module.
type HostFunc struct {
	Fn      api.GoModuleFunc
	Name    string
	Params  []api.ValueType
	Results []api.ValueType
}

// Strategy is a calling convention for passing values across the guest
// boundary. Each strategy exports its own suffixed set of host functions
// and knows how to lower host values into guest parameters and lift guest
// results back.
type Strategy interface {
	// Name is the export suffix, e.g. "ptr" for add_ptr.
	Name() string
	// ValueTypes is the WebAssembly signature of one value parameter.
	ValueTypes() []api.ValueType
	// ResultTypes is the WebAssembly signature of one value result.
	ResultTypes() []api.ValueType
	// HostFunctions lists the host functions the strategy exports.
	HostFunctions() []HostFunc
	// Lower converts v into guest parameters.
	Lower(ctx context.Context, cc *CallContext, v value.Value) ([]uint64, error)
	// Lift converts guest results into a value.
	Lift(ctx context.Context, cc *CallContext, results []uint64) (value.Value, error)
}

var (
	// Arena passes values as generation-checked arena indices.
	Arena Strategy = ArenaStrategy{}
	// Serialized passes values as encoded bytes in guest memory.
	Serialized Strategy = MemoryStrategy{}
	// Reference passes values as external references.
	Reference Strategy = ReferenceStrategy{}
)

// Strategies returns every calling convention in export order.
func Strategies() []Strategy {
	return []Strategy{Arena, Serialized, Reference}
}

// StrategyByName finds a strategy by its export suffix.
func StrategyByName(name string) (Strategy, error) {
	for _, s := range Strategies() {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, errors.NotFound(errors.PhaseRuntime, "strategy", name)
}

// ExportName returns the host export implementing op under s.
func ExportName(s Strategy, op string) string {
	return op + "_" + s.Name()
}

// repeat concatenates n copies of ts.
func repeat(ts []api.ValueType, n int) []api.ValueType {
	out := make([]api.ValueType, 0, len(ts)*n)
	for i := 0; i < n; i++ {
		out = append(out, ts...)
	}
	return out
}

// foldParams is (name_off i32, name_len i32, seq, init).
func foldParams(s Strategy) []api.ValueType {
	return append([]api.ValueType{api.ValueTypeI32, api.ValueTypeI32}, repeat(s.ValueTypes(), 2)...)
}

func sameTypes(a, b []api.ValueType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// checkSignature verifies def takes n values and returns one under s.
func checkSignature(def api.FunctionDefinition, s Strategy, n int) error {
	wantP, wantR := repeat(s.ValueTypes(), n), s.ResultTypes()
	if sameTypes(def.ParamTypes(), wantP) && sameTypes(def.ResultTypes(), wantR) {
		return nil
	}
	return errors.New(errors.PhaseRuntime, errors.KindTypeMismatch).
		Path(def.Name()).
		Detail("signature %s does not take %d %s values", signature(def), n, s.Name()).Build()
}

func signature(def api.FunctionDefinition) string {
	return fmt.Sprintf("%v -> %v", typeNames(def.ParamTypes()), typeNames(def.ResultTypes()))
}

func typeNames(ts []api.ValueType) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = api.ValueTypeName(t)
	}
	return out
}

// callback resolves the guest export a fold applies. The name is read from
// guest memory and the export must take an element and an accumulator.
func callback(cc *CallContext, m api.Module, s Strategy, nameOff, nameLen uint64) (api.Function, string, error) {
	name, err := cc.guestString(api.DecodeU32(nameOff), api.DecodeU32(nameLen))
	if err != nil {
		return nil, "", err
	}
	fn := m.ExportedFunction(name)
	if fn == nil {
		return nil, name, errors.NotFound(errors.PhaseRuntime, "function", name)
	}
	if err := checkSignature(fn.Definition(), s, 2); err != nil {
		return nil, name, err
	}
	return fn, name, nil
}

func guestCallFailed(name string, err error) error {
	return errors.New(errors.PhaseRuntime, errors.KindGuestCall).
		Path(name).Cause(err).Detail("guest callback failed").Build()
}
