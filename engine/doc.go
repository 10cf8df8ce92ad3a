// Package engine runs guest modules on wazero and bridges contract values
// across the guest boundary.
//
// # Architecture
//
// The engine package provides three main types:
//
//	WazeroEngine   - A wazero runtime with the "contract" host module
//	WazeroModule   - A compiled guest, can create instances
//	WazeroInstance - A running guest with its own arena and reference table
//
// # Calling Conventions
//
// Every host function is exported once per Strategy, suffixed with the
// strategy name:
//
//	Strategy           Value form               Result form          Errors
//	──────────────────────────────────────────────────────────────────────
//	ArenaStrategy      i32 arena handle         i32 arena handle     trap
//	MemoryStrategy     (i32 off, i32 len)       (i32 code, off, len) code
//	ReferenceStrategy  externref                externref            trap
//
// The binary functions are add, sub, mul, div, mod, lt, gt, le and ge.
// fold_<suffix>(name_off, name_len, seq, init) applies the guest export
// named by the string at name_off to each element of seq and the running
// accumulator, left to right. drop_ptr and drop_ref release a handle early.
//
// # Call Lifecycle
//
// WazeroInstance.Call installs the instance CallContext in the context
// passed to the guest, lowers the arguments, calls the export and lifts the
// result. Host functions find their CallContext in the context they
// receive. Arena-convention host functions run their body inside
// arena.Exec, so each nested guest to host call gets its own frame and the
// frame is dropped on every exit path. When the call returns, the arena,
// the reference table and scratch memory are reset.
//
// # Memory
//
// Serialized results are written where the guest's alloc(size) export says,
// or, if it has none, into a scratch region the BumpAllocator claims by
// growing guest memory.
package engine
