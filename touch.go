package coldcopy

// WarmRegion touches one byte per cache line of b so the hardware pulls the
// whole region into cache. Drivers use this to take a warm-state measurement
// to contrast against the evicted cold state. The returned sum only exists to
// keep the reads from being optimized away; callers may discard it.
func WarmRegion(b []byte) uint64 {
	var sink uint64
	for i := 0; i < len(b); i += CacheLineSize {
		sink += uint64(b[i])
	}
	return sink
}

// WarmPool touches every copy in the pool, padding excluded.
func WarmPool(p *BufferPool) uint64 {
	var sink uint64
	for i := 0; i < p.CopyCount(); i++ {
		sink += WarmRegion(p.Copy(i))
	}
	return sink
}
