package coldcopy

import (
	"testing"
)

// NewPoolOrFail creates a buffer pool and fails the test if unsuccessful
func NewPoolOrFail(t testing.TB, source []byte, copyCount, alignment, padding int) *BufferPool {
	t.Helper()
	p, err := NewBufferPool(source, copyCount, alignment, padding)
	if err != nil {
		t.Fatalf("Failed to create pool (%d copies of %d bytes): %v", copyCount, len(source), err)
	}
	return p
}

// NewEvictorOrFail creates an evictor and fails the test if unsuccessful
func NewEvictorOrFail(t testing.TB, kind EvictorKind, p EvictorParams) Evictor {
	t.Helper()
	e, err := NewEvictor(kind, p)
	if err != nil {
		t.Fatalf("Failed to create %s evictor: %v", kind, err)
	}
	return e
}

// RunOrFail runs a cycle and fails the test if unsuccessful
func RunOrFail(t testing.TB, c *BenchmarkCycle) Result {
	t.Helper()
	res, err := c.Run()
	if err != nil {
		t.Fatalf("Cycle run failed: %v", err)
	}
	return res
}

// testSource returns a source pattern with position-dependent content so
// copy and layout mistakes show up as content mismatches.
func testSource(size int) []byte {
	src := make([]byte, size)
	for i := range src {
		src[i] = byte(i*31 + 7)
	}
	return src
}
