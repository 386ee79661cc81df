//go:build linux
// +build linux

package coldcopy

import (
	"golang.org/x/sys/unix"
)

// newArena maps an anonymous private region of size bytes.
func newArena(size int) (*arena, error) {
	region, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANONYMOUS|unix.MAP_PRIVATE)
	if err != nil {
		return nil, NewAllocError("newArena", "mmap failed", err)
	}
	return &arena{region: region, mapped: true}, nil
}

// release unmaps the arena. Safe to call more than once.
func (a *arena) release() error {
	if a == nil || a.released {
		return nil
	}
	a.released = true
	region := a.region
	a.region = nil
	if !a.mapped {
		return nil
	}
	if err := unix.Munmap(region); err != nil {
		return NewAllocError("arena.release", "munmap failed", err)
	}
	return nil
}
