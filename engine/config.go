package engine

// HostModule is the import module name guests use for host functions.
const HostModule = "contract"

const pageSize = 65536

// Config holds configuration for engine creation
type Config struct {
	// MemoryExport names the guest memory used by host functions.
	// Falls back to the module's first memory when the export is absent.
	// Default "vm_mem".
	MemoryExport string

	// AllocExport names an optional guest export alloc(size i32) -> i32.
	// When present, results written into guest memory are placed by the
	// guest; otherwise the engine grows memory for a scratch region.
	// Default "alloc".
	AllocExport string

	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	MemoryLimitPages uint32

	// ScratchPages is the minimum number of pages the bump allocator grows
	// memory by. Default 1.
	ScratchPages uint32

	// ArenaCapacity is the initial slot capacity of each instance arena.
	// Default 64.
	ArenaCapacity int
}

func (c *Config) withDefaults() Config {
	var out Config
	if c != nil {
		out = *c
	}
	if out.MemoryExport == "" {
		out.MemoryExport = "vm_mem"
	}
	if out.AllocExport == "" {
		out.AllocExport = "alloc"
	}
	if out.ScratchPages == 0 {
		out.ScratchPages = 1
	}
	if out.ArenaCapacity <= 0 {
		out.ArenaCapacity = 64
	}
	return out
}
