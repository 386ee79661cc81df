package coldcopy

import (
	"os"
	"runtime"

	"golang.org/x/sys/cpu"
)

// platformCaps tracks which eviction primitives the current platform offers
type platformCaps struct {
	HasLineFlush  bool // per-line cache flush instruction
	HasTlbToggle  bool // virtual-memory protection toggling
	PageSize      int  // operating system page size
	CacheLineSize int
}

var caps platformCaps

func init() {
	detectCaps()
}

// detectCaps populates the package-level caps struct
func detectCaps() {
	caps = platformCaps{
		// CLFLUSH arrived with SSE2, so SSE2 support implies it.
		HasLineFlush:  runtime.GOARCH == "amd64" && cpu.X86.HasSSE2,
		HasTlbToggle:  runtime.GOOS == "linux",
		PageSize:      os.Getpagesize(),
		CacheLineSize: CacheLineSize,
	}
}

// LineFlushAvailable reports whether the LineFlush evictor can be constructed
// on this hardware.
func LineFlushAvailable() bool {
	return caps.HasLineFlush
}

// TlbToggleAvailable reports whether the TlbInvalidate evictor can be
// constructed on this operating system.
func TlbToggleAvailable() bool {
	return caps.HasTlbToggle
}
