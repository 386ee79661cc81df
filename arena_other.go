//go:build !linux
// +build !linux

package coldcopy

// newArena allocates a heap-backed region on platforms without the mmap path.
// The protection-toggle evictor needs a real mapping and reports itself
// unavailable here; everything else only needs bytes.
func newArena(size int) (*arena, error) {
	return &arena{region: make([]byte, size)}, nil
}

// release drops the region reference. Safe to call more than once.
func (a *arena) release() error {
	if a == nil || a.released {
		return nil
	}
	a.released = true
	a.region = nil
	return nil
}
