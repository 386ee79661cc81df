//go:build linux
// +build linux

// Package coldcopy Linux hardware miss-counter support
package coldcopy

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// MissCounts holds the hardware miss counters observed around an operation.
// They exist to validate an evictor: a cold-state configuration that shows no
// extra misses over its warm counterpart is not actually evicting.
type MissCounts struct {
	CacheMisses    uint64
	L1DLoadMisses  uint64
	DTLBLoadMisses uint64
}

type missEventConfig struct {
	name   string
	typ    uint32
	config uint64
}

// MissMonitor reads cache and TLB miss counters via perf_event_open. It is
// for validation runs only; enabling it inside a timed bracket would perturb
// the measurement.
type MissMonitor struct {
	fds     []int
	configs []missEventConfig
}

// cacheConfig packs a HW_CACHE event descriptor
func cacheConfig(cache, op, result uint64) uint64 {
	return cache | (op << 8) | (result << 16)
}

// NewMissMonitor opens the counter file descriptors in a disabled state.
// The counters are per-process and exclude kernel time.
func NewMissMonitor() (*MissMonitor, error) {
	m := &MissMonitor{
		configs: []missEventConfig{
			{"cache-misses", unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_CACHE_MISSES},
			{"L1-dcache-load-misses", unix.PERF_TYPE_HW_CACHE,
				cacheConfig(unix.PERF_COUNT_HW_CACHE_L1D, unix.PERF_COUNT_HW_CACHE_OP_READ, unix.PERF_COUNT_HW_CACHE_RESULT_MISS)},
			{"dTLB-load-misses", unix.PERF_TYPE_HW_CACHE,
				cacheConfig(unix.PERF_COUNT_HW_CACHE_DTLB, unix.PERF_COUNT_HW_CACHE_OP_READ, unix.PERF_COUNT_HW_CACHE_RESULT_MISS)},
		},
	}

	for _, c := range m.configs {
		attr := unix.PerfEventAttr{
			Type:   c.typ,
			Size:   uint32(unsafe.Sizeof(unix.PerfEventAttr{})),
			Config: c.config,
			Bits:   unix.PerfBitDisabled | unix.PerfBitExcludeKernel | unix.PerfBitExcludeHv,
		}
		fd, err := unix.PerfEventOpen(&attr, 0, -1, -1, unix.PERF_FLAG_FD_CLOEXEC)
		if err != nil {
			m.Close()
			return nil, NewUnsupportedError("NewMissMonitor", "perf_event_open "+c.name+" failed")
		}
		m.fds = append(m.fds, fd)
	}
	return m, nil
}

// Start resets and enables all counters
func (m *MissMonitor) Start() error {
	for _, fd := range m.fds {
		if err := unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_RESET, 0); err != nil {
			return NewUnsupportedError("MissMonitor.Start", "counter reset failed")
		}
		if err := unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_ENABLE, 0); err != nil {
			return NewUnsupportedError("MissMonitor.Start", "counter enable failed")
		}
	}
	return nil
}

// Stop disables the counters and returns their values
func (m *MissMonitor) Stop() (MissCounts, error) {
	var counts MissCounts
	values := make([]uint64, len(m.fds))
	for i, fd := range m.fds {
		unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_DISABLE, 0)

		var buf [8]byte
		n, err := unix.Read(fd, buf[:])
		if err != nil || n != 8 {
			return counts, NewUnsupportedError("MissMonitor.Stop", "counter read failed")
		}
		values[i] = *(*uint64)(unsafe.Pointer(&buf[0]))
	}
	counts.CacheMisses = values[0]
	counts.L1DLoadMisses = values[1]
	counts.DTLBLoadMisses = values[2]
	return counts, nil
}

// Close releases the counter file descriptors
func (m *MissMonitor) Close() error {
	for _, fd := range m.fds {
		unix.Close(fd)
	}
	m.fds = nil
	return nil
}

// MeasureMisses runs fn with miss counters enabled and returns the counts.
func MeasureMisses(fn func()) (MissCounts, error) {
	m, err := NewMissMonitor()
	if err != nil {
		return MissCounts{}, err
	}
	defer m.Close()

	if err := m.Start(); err != nil {
		return MissCounts{}, err
	}
	fn()
	return m.Stop()
}
