// Package contractruntime is the value interchange layer between a Go host
// and WebAssembly guest contracts.
//
// Guests exchange typed contract values (integers, principals, buffers,
// strings, lists, tuples, optionals, responses, callables) with host
// functions through one of three calling conventions, and every value has a
// single binary serialization shared by all of them.
//
// # Architecture Overview
//
//	contractruntime/     Root package with the guest Memory and Allocator interfaces
//	├── runtime/         High-level API for loading modules and calling exports
//	├── engine/          wazero integration, host module and calling conventions
//	├── arena/           Frame-scoped value arena and generation-checked pointers
//	├── codec/           [tag][len][payload] serialization and span scanning
//	├── value/           Contract value model and literal parser
//	├── hostfn/          Arithmetic, comparison and fold over values
//	├── errors/          Structured errors and guest-visible error codes
//	└── internal/wasmgen Minimal module encoder for the built-in guests
//
// # Quick Start
//
//	rt, err := runtime.New(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	mod, err := rt.LoadWASM(ctx, wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	inst, err := mod.Instantiate(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer inst.Close(ctx)
//
//	result, err := inst.Call(ctx, "sum", []any{1, 2, 3}, 0)
//	fmt.Println(result) // 6
//
// # Calling Conventions
//
//   - ptr: values live in a host arena; the guest holds 32-bit handles.
//   - mem: values are serialized into guest linear memory as (offset, length).
//   - ref: values are passed as externref handles.
//
// Host functions are imported from the "contract" module as <op>_<strategy>,
// for example add_ptr or fold_mem.
//
// # Thread Safety
//
// Runtime and Module are safe for concurrent use. Instance is NOT thread-safe;
// a call made while another is in flight on the same instance fails.
//
// # Memory Model
//
// Arena values, reference handles and host scratch memory are released when
// the outermost call returns. Guest linear memory only grows.
package contractruntime
