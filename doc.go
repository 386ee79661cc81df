// Package coldcopy measures the latency of memory-copy operations with the
// source data held in a known cache/TLB state.
//
// The hard part of a "cold memcpy" measurement is not the timing, it is
// getting the data cold in the first place without the eviction work itself
// showing up in the measured interval. coldcopy does this with three pieces:
//
//   - BufferPool lays out independent duplicates of a source pattern in one
//     arena, spaced so that touching one copy cannot warm another, and hands
//     them out round-robin so each copy is touched at most once per epoch.
//   - Evictor forces memory back out of the cache or TLB on epoch boundaries,
//     using explicit cache-line flushes, capacity pressure over a scratch
//     region, or a virtual-memory protection toggle.
//   - BenchmarkCycle drives the rotation and brackets only the copy itself
//     with a monotonic clock, so eviction cost never leaks into a sample.
//
// Typical use:
//
//	cfg := coldcopy.Config{
//		SourceSize: 17234,
//		CopyCount:  1000,
//		Alignment:  coldcopy.PageAlign,
//		Evictor:    coldcopy.EvictorBulkOverwrite,
//		Iterations: 10000,
//	}
//	cycle, err := coldcopy.NewBenchmarkCycle(cfg)
//	if err != nil {
//		return err
//	}
//	res, err := cycle.Run()
//
// Statistical aggregation, warm-up policy and reporting are the caller's
// concern; the cycle emits one raw duration per iteration and nothing else.
package coldcopy
