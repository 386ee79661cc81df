//go:build !amd64
// +build !amd64

package coldcopy

// flushRange is unreachable off amd64: NewEvictor refuses to construct a
// LineFlush evictor when the flush instruction is unavailable.
func flushRange(b []byte) {
	panic("coldcopy: line flush not available on this architecture")
}
