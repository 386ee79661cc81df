package coldcopy

const maxInt = int(^uint(0) >> 1)

// validateLayout checks a pool layout's size arithmetic without allocating
// anything, and returns the resulting copy stride. Both NewBufferPool and
// Config validation run through here so a bad layout is caught in Init,
// before any arena exists.
func validateLayout(sourceSize, copyCount, alignment, perCopyPadding int) (int, error) {
	if copyCount <= 0 {
		return 0, ErrZeroCopyCount
	}
	if sourceSize <= 0 {
		return 0, ErrZeroSourceSize
	}
	if alignment < 0 || (alignment > 1 && alignment&(alignment-1) != 0) {
		return 0, ErrBadAlignment
	}
	if perCopyPadding < 0 {
		return 0, NewConfigError("validateLayout", "per-copy padding must not be negative")
	}
	if perCopyPadding > 1 && sourceSize > maxInt-perCopyPadding {
		return 0, ErrSizeOverflow
	}
	stride := roundUp(sourceSize, perCopyPadding)
	slack := 0
	if alignment > 1 {
		slack = alignment
	}
	if copyCount > (maxInt-slack)/stride {
		return 0, ErrSizeOverflow
	}
	return stride, nil
}

// BufferPool lays out independent duplicates of a source byte pattern in one
// arena and hands them out round-robin. Each copy serves as a once-cold
// measurement target: within one epoch every copy is returned exactly once,
// so no timed access ever re-reads data it warmed itself.
type BufferPool struct {
	arena     *arena
	base      []byte // aligned start of the copies, copyCount*stride bytes
	copySize  int
	stride    int
	copyCount int
	index     int
}

// NewBufferPool allocates a single arena holding copyCount byte-for-byte
// duplicates of source, each starting stride = roundUp(len(source),
// perCopyPadding) bytes after the previous one, with the first copy aligned
// to alignment (zero for none).
//
// Nonzero perCopyPadding spaces copies apart so successive copies never share
// a cache line or a translation-cache entry; without it, residency from one
// copy can accidentally warm its neighbour.
//
// All size arithmetic is validated before any allocation happens.
func NewBufferPool(source []byte, copyCount, alignment, perCopyPadding int) (*BufferPool, error) {
	stride, err := validateLayout(len(source), copyCount, alignment, perCopyPadding)
	if err != nil {
		return nil, err
	}
	slack := 0
	if alignment > 1 {
		slack = alignment
	}
	total := copyCount*stride + slack

	a, err := newArena(total)
	if err != nil {
		return nil, err
	}

	p := &BufferPool{
		arena:     a,
		base:      alignedWithin(a.region, alignment, copyCount*stride),
		copySize:  len(source),
		stride:    stride,
		copyCount: copyCount,
	}
	for i := 0; i < copyCount; i++ {
		copy(p.base[i*stride:], source)
	}
	return p, nil
}

// Next returns the current copy and advances the rotation cursor. The second
// return value reports whether the advance wrapped back to copy zero, which
// is the epoch boundary the caller schedules eviction on.
func (p *BufferPool) Next() ([]byte, bool) {
	i := p.index
	p.index++
	wrapped := p.index == p.copyCount
	if wrapped {
		p.index = 0
	}
	start := i * p.stride
	return p.base[start : start+p.copySize : start+p.copySize], wrapped
}

// Copy returns copy i without touching the rotation cursor.
func (p *BufferPool) Copy(i int) []byte {
	start := i * p.stride
	return p.base[start : start+p.copySize : start+p.copySize]
}

// CopyCount returns the number of copies in the pool.
func (p *BufferPool) CopyCount() int { return p.copyCount }

// CopySize returns the size of each copy's valid content in bytes.
func (p *BufferPool) CopySize() int { return p.copySize }

// Stride returns the distance in bytes between successive copies.
func (p *BufferPool) Stride() int { return p.stride }

// ArenaSize returns the total allocated arena size including alignment slack.
func (p *BufferPool) ArenaSize() int { return p.arena.size() }

// Region returns the span covering every copy, padding included. This is the
// range an evictor must cover to get the whole pool cold.
func (p *BufferPool) Region() []byte {
	return p.base[: p.copyCount*p.stride : p.copyCount*p.stride]
}

// MappedRegion returns the full arena when it is backed by a page-aligned
// mapping, or nil on heap-backed arenas. The protection-toggle evictor
// operates on this region.
func (p *BufferPool) MappedRegion() []byte {
	if !p.arena.mapped {
		return nil
	}
	return p.arena.region
}

// Release frees the arena. The pool must not be used afterwards; calling
// Release again is a no-op.
func (p *BufferPool) Release() error {
	p.base = nil
	return p.arena.release()
}
