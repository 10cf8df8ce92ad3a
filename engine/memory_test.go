package engine

import (
	"context"
	"testing"

	"github.com/tetratelabs/wazero"

	rterrors "github.com/wippyai/contract-runtime/errors"
	"github.com/wippyai/contract-runtime/internal/wasmgen"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	m := wasmgen.New()
	m.Memory(1, "vm_mem")
	mod, err := r.Instantiate(ctx, m.Encode())
	if err != nil {
		t.Fatal(err)
	}
	mem := NewMemory(mod.ExportedMemory("vm_mem"))

	if mem.Size() != pageSize {
		t.Errorf("Size() = %d", mem.Size())
	}
	if err := mem.Write(100, []byte("abc")); err != nil {
		t.Fatal(err)
	}
	if b, _ := mem.Read(100, 3); string(b) != "abc" {
		t.Errorf("Read = %q", b)
	}

	tests := []struct {
		name string
		fn   func() error
	}{
		{"read", func() error { _, err := mem.Read(pageSize-1, 2); return err }},
		{"write", func() error { return mem.Write(pageSize, []byte{1}) }},
		{"read past end", func() error { _, err := mem.Read(pageSize, 1); return err }},
		{"write straddling end", func() error { return mem.Write(pageSize-2, []byte{1, 2, 3}) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); kindOf(err) != rterrors.KindOutOfBounds {
				t.Errorf("expected out_of_bounds, got %v", err)
			}
		})
	}

	if prev, ok := mem.Grow(1); !ok || prev != 1 || mem.Size() != 2*pageSize {
		t.Errorf("Grow = %d, %v", prev, ok)
	}
}
