package engine

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/contract-runtime/hostfn"
	"github.com/wippyai/contract-runtime/internal/wasmgen"
)

// foldCallbackAddr is where BuildGuest places the name of the fold callback.
const foldCallbackAddr = 16

// BuildGuest assembles a guest module for strategy s. It exports:
//
//   - one function per binary host function (add, sub, ..., ge) that
//     forwards its two arguments to the host;
//   - sum(seq, init), a fold of seq with the guest's own add export;
//   - identity(v), which returns its argument.
//
// The module exports its memory as "vm_mem" and has no allocator, so the
// engine writes serialized results into a scratch region.
func BuildGuest(s Strategy) []byte {
	vt := valTypes(s.ValueTypes())
	rt := valTypes(s.ResultTypes())
	binary := wasmgen.FuncType{Params: append(append([]wasmgen.ValType{}, vt...), vt...), Results: rt}
	fold := wasmgen.FuncType{
		Params:  append([]wasmgen.ValType{wasmgen.I32, wasmgen.I32}, binary.Params...),
		Results: rt,
	}

	m := wasmgen.New()
	imports := make([]uint32, len(hostfn.Binaries))
	for i, b := range hostfn.Binaries {
		imports[i] = m.ImportFunc(HostModule, ExportName(s, b.Name), binary)
	}
	foldIdx := m.ImportFunc(HostModule, ExportName(s, "fold"), fold)

	nparams := uint32(len(binary.Params))
	for i, b := range hostfn.Binaries {
		fn := m.Func(binary, nil, wasmgen.NewCode().LocalsGet(0, nparams).Call(imports[i]))
		m.Export(b.Name, fn)
	}

	callback := "add"
	sum := wasmgen.NewCode().
		I32Const(foldCallbackAddr).
		I32Const(int32(len(callback))).
		LocalsGet(0, nparams).
		Call(foldIdx)
	m.Export("sum", m.Func(binary, nil, sum))

	// A value result is a value parameter, preceded by a zero code when the
	// convention returns one.
	id := wasmgen.NewCode()
	if len(rt) > len(vt) {
		id.I32Const(0)
	}
	id.LocalsGet(0, uint32(len(vt)))
	m.Export("identity", m.Func(wasmgen.FuncType{Params: vt, Results: rt}, nil, id))

	m.Memory(1, (&Config{}).withDefaults().MemoryExport)
	m.Data(foldCallbackAddr, []byte(callback))
	return m.Encode()
}

func valTypes(ts []api.ValueType) []wasmgen.ValType {
	out := make([]wasmgen.ValType, len(ts))
	for i, t := range ts {
		out[i] = wasmgen.ValType(t)
	}
	return out
}
