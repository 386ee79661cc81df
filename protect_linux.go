//go:build linux
// +build linux

// Package coldcopy Linux virtual-memory protection toggling
package coldcopy

import (
	"golang.org/x/sys/unix"
)

// protectToggle flips region to no-access and straight back to read-write.
// The kernel must drop its cached virtual-to-physical translations for the
// range, so the next access pays a page walk, while the bytes themselves are
// untouched. The CPU's cached page-table data may well survive; this evicts
// TLB entries, not cache lines.
func protectToggle(region []byte) error {
	if err := unix.Mprotect(region, unix.PROT_NONE); err != nil {
		return NewAllocError("protectToggle", "mprotect PROT_NONE failed", err)
	}
	if err := unix.Mprotect(region, unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return NewAllocError("protectToggle", "mprotect restore failed", err)
	}
	return nil
}
