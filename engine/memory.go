package engine

import (
	"github.com/tetratelabs/wazero/api"

	contractruntime "github.com/wippyai/contract-runtime"
	"github.com/wippyai/contract-runtime/errors"
)

// Memory adapts wazero memory to the runtime Memory interface with
// bounds-checked errors instead of ok flags.
type Memory struct {
	mem api.Memory
}

var _ contractruntime.Memory = (*Memory)(nil)

// NewMemory wraps mem.
func NewMemory(mem api.Memory) *Memory {
	return &Memory{mem: mem}
}

// Size returns the memory size in bytes.
func (m *Memory) Size() uint32 { return m.mem.Size() }

// Grow adds pages and returns the previous size in pages.
func (m *Memory) Grow(pages uint32) (uint32, bool) { return m.mem.Grow(pages) }

func (m *Memory) bounds(offset, length uint32) error {
	end := uint64(offset) + uint64(length)
	if end > uint64(m.mem.Size()) {
		return errors.OutOfBounds(errors.PhaseHost, nil, int(end), int(m.mem.Size()))
	}
	return nil
}

func (m *Memory) Read(offset, length uint32) ([]byte, error) {
	b, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, m.bounds(offset, length)
	}
	return b, nil
}

func (m *Memory) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return m.bounds(offset, uint32(len(data)))
	}
	return nil
}
