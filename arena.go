package coldcopy

import (
	"unsafe"
)

// arena owns one contiguous byte region obtained from the operating system.
// On Linux the region is an anonymous private mapping, which keeps it
// page-aligned and lets the protection-toggle evictor operate on it directly.
// Elsewhere it falls back to a heap allocation.
type arena struct {
	region   []byte
	mapped   bool
	released bool
}

// size returns the total region size in bytes.
func (a *arena) size() int {
	return len(a.region)
}

// alignOffset returns how many bytes past p the next align boundary lies.
// align must be a power of two; zero or one means no alignment.
func alignOffset(p uintptr, align int) int {
	if align <= 1 {
		return 0
	}
	if mod := p % uintptr(align); mod != 0 {
		return align - int(mod)
	}
	return 0
}

// alignedWithin slices region so its first byte sits on an align boundary,
// keeping at least need bytes. The caller must have over-allocated by align.
func alignedWithin(region []byte, align, need int) []byte {
	off := alignOffset(uintptr(unsafe.Pointer(&region[0])), align)
	return region[off : off+need]
}

// roundUp rounds n up to the next multiple of m. m <= 1 leaves n unchanged.
func roundUp(n, m int) int {
	if m <= 1 {
		return n
	}
	over := n % m
	if over == 0 {
		return n
	}
	return n + m - over
}
