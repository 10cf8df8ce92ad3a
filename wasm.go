package contractruntime

// Memory is guest linear memory as seen by host functions. Reads return
// views that are only valid until the guest runs again.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	Size() uint32
}

// Allocator hands out regions of guest linear memory for values the host
// writes back to the guest. Free may ignore regions it cannot reclaim.
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Free(ptr, size, align uint32)
}
