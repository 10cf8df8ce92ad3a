// Package arena hands out integer handles to host values so that guest code
// can refer to them without copying.
//
// An Arena is a slot table with a stack of frames. Each host function
// invocation opens a frame; values pushed while it is open live until it is
// dropped, at which point the tip rewinds to where the frame began:
//
//	a := arena.New()
//	ptrs, err := a.Exec(func(f *arena.Frame) ([]value.Value, error) {
//	    x := f.Push(value.NewInt(1024))
//	    v, _ := f.Get(x)
//	    return []value.Value{v}, nil
//	})
//
// Handles are generation checked. Every slot carries an 8-bit generation
// that advances when the slot is dropped or rewound, and HostPtr.Raw packs
// it next to the slot index, so a handle retained past its frame fails
// with KindStaleHandle instead of reading whatever reused the slot. The
// generation wraps after 256 reuses of the same slot.
//
// Misnested frames are embedding bugs: DropFrame panics with a
// KindInvariant error when asked to drop anything but the top frame.
package arena
