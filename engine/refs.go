package engine

import (
	"github.com/wippyai/contract-runtime/errors"
	"github.com/wippyai/contract-runtime/value"
)

// RefTable maps external reference handles to values for the reference
// calling convention. Handle 0 is the null reference and never issued.
// Released handles are reused.
type RefTable struct {
	entries  []refEntry
	freeList []uint32
	live     int
	serial   uint64
}

type refEntry struct {
	value  value.Value
	serial uint64
	valid  bool
}

// NewRefTable creates an empty table.
func NewRefTable() *RefTable {
	return &RefTable{
		entries:  make([]refEntry, 0, 64),
		freeList: make([]uint32, 0, 16),
	}
}

// Insert stores v and returns its handle.
func (t *RefTable) Insert(v value.Value) uint32 {
	t.live++
	t.serial++
	e := refEntry{value: v, serial: t.serial, valid: true}
	if n := len(t.freeList); n > 0 {
		h := t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		t.entries[h-1] = e
		return h
	}
	t.entries = append(t.entries, e)
	return uint32(len(t.entries))
}

// Get resolves h.
func (t *RefTable) Get(h uint32) (value.Value, error) {
	if h == 0 {
		return nil, errors.New(errors.PhaseRuntime, errors.KindArgumentMissing).
			Detail("null reference").Build()
	}
	if int(h) > len(t.entries) || !t.entries[h-1].valid {
		return nil, errors.New(errors.PhaseArena, errors.KindStaleHandle).
			Detail("reference %d is not live", h).Value(h).Build()
	}
	return t.entries[h-1].value, nil
}

// Remove releases h. It reports false if h was not live.
func (t *RefTable) Remove(h uint32) bool {
	if h == 0 || int(h) > len(t.entries) || !t.entries[h-1].valid {
		return false
	}
	t.entries[h-1] = refEntry{}
	t.freeList = append(t.freeList, h)
	t.live--
	return true
}

// Take resolves and releases h.
func (t *RefTable) Take(h uint32) (value.Value, error) {
	v, err := t.Get(h)
	if err != nil {
		return nil, err
	}
	t.Remove(h)
	return v, nil
}

// Len returns the number of live references.
func (t *RefTable) Len() int { return t.live }

// Mark returns a position in the insertion order for IssuedSince.
func (t *RefTable) Mark() uint64 { return t.serial }

// IssuedSince reports whether h is live and was inserted after mark.
func (t *RefTable) IssuedSince(h uint32, mark uint64) bool {
	if h == 0 || int(h) > len(t.entries) {
		return false
	}
	e := t.entries[h-1]
	return e.valid && e.serial > mark
}

// Reset releases every reference.
func (t *RefTable) Reset() {
	clear(t.entries)
	t.entries = t.entries[:0]
	t.freeList = t.freeList[:0]
	t.live = 0
}
