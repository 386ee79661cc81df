package coldcopy

// EvictorKind selects which eviction primitive a benchmark cycle uses. The
// kind is fixed at construction; nothing ever falls back to a different
// strategy at runtime, since that would silently change what a sample means.
type EvictorKind int

const (
	// EvictorNone performs no eviction. Rotation alone provides cold
	// accesses when the pool is sized past the cache or TLB capacity.
	EvictorNone EvictorKind = iota

	// EvictorLineFlush issues an explicit per-line cache flush over the
	// target range, evicting it from every cache level.
	EvictorLineFlush

	// EvictorBulkOverwrite writes through a large scratch region so
	// capacity pressure displaces the target data.
	EvictorBulkOverwrite

	// EvictorTlbInvalidate toggles the target region's page protection to
	// drop its cached address translations without touching its data.
	EvictorTlbInvalidate
)

// String returns the evictor kind as a string
func (k EvictorKind) String() string {
	switch k {
	case EvictorNone:
		return "None"
	case EvictorLineFlush:
		return "LineFlush"
	case EvictorBulkOverwrite:
		return "BulkOverwrite"
	case EvictorTlbInvalidate:
		return "TlbInvalidate"
	default:
		return "Unknown"
	}
}

// Evictor forces a target memory region out of some level of the cache/TLB
// hierarchy. Evict is idempotent with respect to the observable eviction
// state and must never read or write the pool's copy data. The epoch tags
// scratch writes so an optimizer cannot prove them dead; it has no other
// meaning.
type Evictor interface {
	Evict(epoch uint64) error
	Kind() EvictorKind
	ScratchBytes() int
	Release() error
}

// EvictorParams carries the per-kind construction inputs. Exactly the fields
// for the selected kind are consulted.
type EvictorParams struct {
	// FlushRange is the range LineFlush covers. It must cover exactly the
	// addresses the timed operation touches: over-flushing adds unrelated
	// cost, under-flushing leaves stale warm lines.
	FlushRange []byte

	// ScratchSize and GuardPadding size the BulkOverwrite scratch region
	// and the unwritten padding reserved on both ends of it.
	ScratchSize  int
	GuardPadding int

	// Region is the mapped region TlbInvalidate toggles protection on.
	Region []byte
}

// NewEvictor constructs the evictor for kind, checking the underlying
// primitive's availability up front. A kind whose primitive is missing on
// this platform fails here with a PlatformUnsupported error rather than
// degrading to a different strategy.
func NewEvictor(kind EvictorKind, p EvictorParams) (Evictor, error) {
	switch kind {
	case EvictorNone:
		return noneEvictor{}, nil
	case EvictorLineFlush:
		return newLineFlush(p.FlushRange)
	case EvictorBulkOverwrite:
		return newBulkOverwrite(p.ScratchSize, p.GuardPadding)
	case EvictorTlbInvalidate:
		return newTlbInvalidate(p.Region)
	default:
		return nil, NewConfigError("NewEvictor", "unknown evictor kind")
	}
}

// numFlushLines returns how many per-line flush operations cover size bytes.
func numFlushLines(size int) int {
	return (size + CacheLineSize - 1) / CacheLineSize
}

// noneEvictor

type noneEvictor struct{}

func (noneEvictor) Evict(uint64) error { return nil }
func (noneEvictor) Kind() EvictorKind  { return EvictorNone }
func (noneEvictor) ScratchBytes() int  { return 0 }
func (noneEvictor) Release() error     { return nil }

// lineFlush

type lineFlush struct {
	target []byte
}

func newLineFlush(target []byte) (*lineFlush, error) {
	if !LineFlushAvailable() {
		return nil, NewUnsupportedError("NewEvictor", "cache line flush instruction unavailable")
	}
	if len(target) == 0 {
		return nil, NewConfigError("NewEvictor", "line flush needs a non-empty target range")
	}
	return &lineFlush{target: target}, nil
}

func (e *lineFlush) Evict(uint64) error {
	flushRange(e.target)
	return nil
}

func (e *lineFlush) Kind() EvictorKind { return EvictorLineFlush }
func (e *lineFlush) ScratchBytes() int { return 0 }
func (e *lineFlush) Release() error    { return nil }

// bulkOverwrite

type bulkOverwrite struct {
	arena   *arena
	scratch []byte // the written middle of the arena, guards excluded
	guard   int
}

func newBulkOverwrite(scratchSize, guardPadding int) (*bulkOverwrite, error) {
	if scratchSize <= 0 {
		return nil, NewConfigError("NewEvictor", "scratch size must be positive")
	}
	if guardPadding < 0 {
		return nil, NewConfigError("NewEvictor", "guard padding must not be negative")
	}
	if guardPadding > (maxInt-scratchSize)/2 {
		return nil, ErrSizeOverflow
	}
	a, err := newArena(scratchSize + 2*guardPadding)
	if err != nil {
		return nil, err
	}
	return &bulkOverwrite{
		arena:   a,
		scratch: a.region[guardPadding : guardPadding+scratchSize : guardPadding+scratchSize],
		guard:   guardPadding,
	}, nil
}

// Evict makes one sequential byte-store pass over the scratch region. The
// guard padding on both ends is never written, so hardware prefetch running
// ahead of the pass lands inside memory this evictor owns instead of warming
// translation lines that belong to the pool.
func (e *bulkOverwrite) Evict(epoch uint64) error {
	// The fill value changes per epoch solely so the stores cannot be
	// proven dead and eliminated.
	fill := byte(epoch)
	s := e.scratch
	for i := range s {
		s[i] = fill
	}
	return nil
}

func (e *bulkOverwrite) Kind() EvictorKind { return EvictorBulkOverwrite }
func (e *bulkOverwrite) ScratchBytes() int { return e.arena.size() }
func (e *bulkOverwrite) Release() error    { return e.arena.release() }

// tlbInvalidate

type tlbInvalidate struct {
	region []byte
}

func newTlbInvalidate(region []byte) (*tlbInvalidate, error) {
	if !TlbToggleAvailable() {
		return nil, NewUnsupportedError("NewEvictor", "protection toggling unavailable on this platform")
	}
	if len(region) == 0 {
		return nil, NewConfigError("NewEvictor", "tlb invalidation needs a mapped target region")
	}
	return &tlbInvalidate{region: region}, nil
}

func (e *tlbInvalidate) Evict(uint64) error {
	return protectToggle(e.region)
}

func (e *tlbInvalidate) Kind() EvictorKind { return EvictorTlbInvalidate }
func (e *tlbInvalidate) ScratchBytes() int { return 0 }
func (e *tlbInvalidate) Release() error    { return nil }
