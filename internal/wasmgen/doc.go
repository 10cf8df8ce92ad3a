// Package wasmgen assembles small core WebAssembly modules in memory.
//
// It produces the guest modules used by tests and by the run command's
// demo mode: functions that import host calling conventions from the
// "contract" module and forward to them.
//
//	m := wasmgen.New()
//	add := m.ImportFunc("contract", "add_ptr", wasmgen.FuncType{
//		Params:  []wasmgen.ValType{wasmgen.I32, wasmgen.I32},
//		Results: []wasmgen.ValType{wasmgen.I32},
//	})
//	fn := m.Func(ft, nil, wasmgen.NewCode().LocalsGet(0, 2).Call(add))
//	m.Export("add", fn)
//	bin := m.Encode()
package wasmgen
