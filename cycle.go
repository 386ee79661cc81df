package coldcopy

import (
	"sync/atomic"
)

// Segment describes one byte range copied out of the target buffer per
// iteration.
type Segment struct {
	Offset int
	Length int
}

// Config describes one benchmark case. The zero value is not runnable; at
// minimum CopyCount, Iterations and a source (Source or SourceSize) are
// required. Segments defaults to DefaultSegments, and a BulkOverwrite
// evictor's ScratchSize defaults to DefaultScratchMultiple times the L3 size.
type Config struct {
	// Source is the canonical byte pattern every pool copy duplicates.
	// When nil, a SourceSize-byte pattern filled with DefaultFillByte is
	// used (DefaultSourceSize when that is zero too).
	Source     []byte
	SourceSize int

	CopyCount      int
	Alignment      int
	PerCopyPadding int

	Evictor EvictorKind

	// FlushRangeSize limits the LineFlush target; zero covers the whole
	// pool region.
	FlushRangeSize int

	// ScratchSize and GuardPadding shape the BulkOverwrite scratch arena.
	ScratchSize  int
	GuardPadding int

	// RegionSize limits the TlbInvalidate target; zero covers the whole
	// mapped arena.
	RegionSize int

	Segments []Segment

	// Iterations is supplied by the external driver; the core applies no
	// warm-up or repetition policy of its own.
	Iterations int
}

// Result is the raw output of one completed run, handed to the external
// aggregator. Durations holds one wall-clock sample per iteration, in order.
type Result struct {
	SampleCount         int
	Durations           []float64
	TotalBytesMoved     int64
	TotalBytesAllocated int64
}

type cycleState int

const (
	stateInit cycleState = iota
	stateWarmup
	stateSteady
	stateDone
)

// BenchmarkCycle orchestrates one benchmark case: validate, allocate, one
// cold-baseline eviction, the steady measurement loop, teardown. A cycle is
// single-owner and single-threaded; it runs exactly once. Only Stop may be
// called from another goroutine.
type BenchmarkCycle struct {
	cfg    Config
	source []byte
	state  cycleState

	pool    *BufferPool
	evictor Evictor
	dst     []byte

	epoch     uint64
	evictions int
	stopped   atomic.Bool
}

// NewBenchmarkCycle validates cfg and returns a cycle in its initial state.
// Every configuration problem, including the selected evictor's availability
// on this platform, surfaces here before anything is allocated.
func NewBenchmarkCycle(cfg Config) (*BenchmarkCycle, error) {
	source := cfg.Source
	if source == nil {
		size := cfg.SourceSize
		if size == 0 {
			size = DefaultSourceSize
		}
		if size < 0 {
			return nil, ErrZeroSourceSize
		}
		source = make([]byte, size)
		for i := range source {
			source[i] = DefaultFillByte
		}
	}
	if cfg.Segments == nil {
		cfg.Segments = DefaultSegments()
	}
	if cfg.Evictor == EvictorBulkOverwrite && cfg.ScratchSize == 0 {
		cfg.ScratchSize = DefaultScratchMultiple * L3CacheSize
	}
	if err := validateConfig(&cfg, len(source)); err != nil {
		return nil, err
	}
	return &BenchmarkCycle{cfg: cfg, source: source}, nil
}

func validateConfig(cfg *Config, sourceSize int) error {
	stride, err := validateLayout(sourceSize, cfg.CopyCount, cfg.Alignment, cfg.PerCopyPadding)
	if err != nil {
		return err
	}
	if cfg.Iterations <= 0 {
		return NewConfigError("NewBenchmarkCycle", "iteration count must be positive")
	}
	if len(cfg.Segments) == 0 {
		return NewConfigError("NewBenchmarkCycle", "at least one copy segment is required")
	}
	for _, s := range cfg.Segments {
		if s.Offset < 0 || s.Length <= 0 || s.Offset > sourceSize-s.Length {
			return NewConfigError("NewBenchmarkCycle", "segment out of source range")
		}
	}
	switch cfg.Evictor {
	case EvictorNone:
	case EvictorLineFlush:
		if !LineFlushAvailable() {
			return NewUnsupportedError("NewBenchmarkCycle", "cache line flush instruction unavailable")
		}
		if cfg.FlushRangeSize < 0 || cfg.FlushRangeSize > cfg.CopyCount*stride {
			return NewConfigError("NewBenchmarkCycle", "flush range exceeds pool region")
		}
	case EvictorBulkOverwrite:
		if cfg.ScratchSize <= 0 {
			return NewConfigError("NewBenchmarkCycle", "scratch size must be positive")
		}
		if cfg.GuardPadding < 0 {
			return NewConfigError("NewBenchmarkCycle", "guard padding must not be negative")
		}
		if cfg.GuardPadding > (maxInt-cfg.ScratchSize)/2 {
			return ErrSizeOverflow
		}
	case EvictorTlbInvalidate:
		if !TlbToggleAvailable() {
			return NewUnsupportedError("NewBenchmarkCycle", "protection toggling unavailable on this platform")
		}
		if cfg.RegionSize < 0 {
			return NewConfigError("NewBenchmarkCycle", "region size must not be negative")
		}
	default:
		return NewConfigError("NewBenchmarkCycle", "unknown evictor kind")
	}
	return nil
}

// Run executes Warmup, the Steady loop and Teardown, and returns the raw
// samples. Arenas are released on every exit path, failures included. A
// cycle cannot be run twice.
func (c *BenchmarkCycle) Run() (Result, error) {
	if c.state != stateInit {
		return Result{}, ErrCycleFinished
	}
	c.state = stateWarmup
	defer c.teardown()

	if err := c.warmup(); err != nil {
		return Result{}, err
	}
	c.state = stateSteady
	return c.steady()
}

// warmup allocates the pool and evictor and performs one unconditional
// eviction so the first measured iteration starts from a known cold state.
func (c *BenchmarkCycle) warmup() error {
	pool, err := NewBufferPool(c.source, c.cfg.CopyCount, c.cfg.Alignment, c.cfg.PerCopyPadding)
	if err != nil {
		return err
	}
	c.pool = pool

	evictor, err := NewEvictor(c.cfg.Evictor, c.evictorParams())
	if err != nil {
		return err
	}
	c.evictor = evictor

	c.dst = make([]byte, totalSegmentBytes(c.cfg.Segments))

	return c.evictor.Evict(c.epoch)
}

// evictorParams derives the selected evictor's target from the live pool.
func (c *BenchmarkCycle) evictorParams() EvictorParams {
	var p EvictorParams
	switch c.cfg.Evictor {
	case EvictorLineFlush:
		p.FlushRange = c.pool.Region()
		if c.cfg.FlushRangeSize > 0 {
			p.FlushRange = p.FlushRange[:c.cfg.FlushRangeSize]
		}
	case EvictorBulkOverwrite:
		p.ScratchSize = c.cfg.ScratchSize
		p.GuardPadding = c.cfg.GuardPadding
	case EvictorTlbInvalidate:
		p.Region = c.pool.MappedRegion()
		if c.cfg.RegionSize > 0 && c.cfg.RegionSize < len(p.Region) {
			end := roundUp(c.cfg.RegionSize, caps.PageSize)
			if end < len(p.Region) {
				p.Region = p.Region[:end]
			}
		}
	}
	return p
}

func (c *BenchmarkCycle) steady() (Result, error) {
	segs := c.cfg.Segments
	perIter := totalSegmentBytes(segs)
	res := Result{
		Durations:           make([]float64, 0, c.cfg.Iterations),
		TotalBytesAllocated: int64(c.pool.ArenaSize()) + int64(c.evictor.ScratchBytes()),
	}

	for i := 0; i < c.cfg.Iterations; i++ {
		if c.stopped.Load() {
			break
		}
		buf, wrapped := c.pool.Next()

		res.Durations = append(res.Durations, Measure(func() {
			copySegments(c.dst, buf, segs)
		}))
		res.TotalBytesMoved += int64(perIter)

		if wrapped {
			c.epoch++
			c.evictions++
			if err := c.evictor.Evict(c.epoch); err != nil {
				return Result{}, err
			}
		}
	}
	res.SampleCount = len(res.Durations)
	return res, nil
}

// Stop requests that the Steady loop end after the in-flight iteration.
// Samples taken so far remain valid; a timed operation is never interrupted.
func (c *BenchmarkCycle) Stop() {
	c.stopped.Store(true)
}

// Close tears the cycle down early. It is idempotent and safe in any state;
// Run's own teardown makes it unnecessary after a completed run.
func (c *BenchmarkCycle) Close() error {
	c.teardown()
	return nil
}

func (c *BenchmarkCycle) teardown() {
	if c.state == stateDone {
		return
	}
	c.state = stateDone
	if c.evictor != nil {
		c.evictor.Release()
		c.evictor = nil
	}
	if c.pool != nil {
		c.pool.Release()
		c.pool = nil
	}
}

// Epoch returns how many full pool rotations have completed.
func (c *BenchmarkCycle) Epoch() uint64 { return c.epoch }

// Evictions returns how many epoch-boundary evictions the Steady loop has
// performed, excluding the unconditional warm-up eviction.
func (c *BenchmarkCycle) Evictions() int { return c.evictions }

// Destination returns the buffer the last iteration's segments landed in.
func (c *BenchmarkCycle) Destination() []byte { return c.dst }

// copySegments copies each segment of src into dst back to back and returns
// the number of bytes moved.
func copySegments(dst, src []byte, segs []Segment) int {
	off := 0
	for _, s := range segs {
		off += copy(dst[off:off+s.Length], src[s.Offset:s.Offset+s.Length])
	}
	return off
}

func totalSegmentBytes(segs []Segment) int {
	total := 0
	for _, s := range segs {
		total += s.Length
	}
	return total
}
