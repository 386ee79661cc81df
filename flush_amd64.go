//go:build amd64
// +build amd64

package coldcopy

import (
	"unsafe"
)

// Assembly function declarations
//go:noescape
func flushLines(ptr unsafe.Pointer, lines, stride uintptr)

// flushRange issues one CLFLUSH per cache-line stride over b, then fences so
// every targeted line is out of all cache levels before return.
func flushRange(b []byte) {
	if len(b) == 0 {
		return
	}
	flushLines(unsafe.Pointer(&b[0]), uintptr(numFlushLines(len(b))), CacheLineSize)
}
