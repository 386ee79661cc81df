//go:build !linux
// +build !linux

// Package coldcopy protection-toggle stub for non-Linux platforms
package coldcopy

// protectToggle is unreachable off Linux: NewEvictor refuses to construct a
// TlbInvalidate evictor when protection toggling is unavailable.
func protectToggle(region []byte) error {
	return NewUnsupportedError("protectToggle", "mprotect toggling requires Linux")
}
