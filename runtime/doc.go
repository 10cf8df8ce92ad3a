// Package runtime provides the high-level API for running contract guests.
//
// # Quick Start
//
//	ctx := context.Background()
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
//	result, err := inst.Call(ctx, "add", 2, 3)
//	fmt.Println(result) // 5
//
// # Calling Conventions
//
// Guests choose how values cross the boundary by which host functions they
// import. Call uses the runtime's default strategy, set by Config.Strategy;
// CallWith and CallLiteral take one explicitly:
//
//	inst.CallWith(ctx, engine.Serialized, "sum", list, value.NewInt(0))
//	inst.CallLiteral(ctx, engine.Reference, "add", "u1", "u2")
//
// # Lifetimes
//
// Each instance has one arena and one reference table. Everything a call
// creates in them is released when the call returns; results are plain Go
// values. Closing a module closes its instances, and closing the runtime
// closes every module.
package runtime
