//go:build !linux
// +build !linux

// Package coldcopy miss-counter stubs for non-Linux platforms
package coldcopy

// MissCounts holds the hardware miss counters observed around an operation.
type MissCounts struct {
	CacheMisses    uint64
	L1DLoadMisses  uint64
	DTLBLoadMisses uint64
}

// MissMonitor stub for non-Linux platforms
type MissMonitor struct{}

// NewMissMonitor reports miss counters as unavailable off Linux
func NewMissMonitor() (*MissMonitor, error) {
	return nil, NewUnsupportedError("NewMissMonitor", "hardware miss counters require Linux")
}

// Start is unreachable on non-Linux platforms
func (m *MissMonitor) Start() error { return nil }

// Stop is unreachable on non-Linux platforms
func (m *MissMonitor) Stop() (MissCounts, error) { return MissCounts{}, nil }

// Close is unreachable on non-Linux platforms
func (m *MissMonitor) Close() error { return nil }

// MeasureMisses runs fn without counters and reports them as unavailable.
func MeasureMisses(fn func()) (MissCounts, error) {
	fn()
	return MissCounts{}, NewUnsupportedError("MeasureMisses", "hardware miss counters require Linux")
}
