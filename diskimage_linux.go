//go:build linux

package diskimage

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

const (
	blkSSZGet = 0x1268
	blkBSZGet = 0x80081270
)

// platformSectorSizes returns the logical and physical sector size reported
// by the kernel for a block device, via BLKSSZGET/BLKBSZGET.
func platformSectorSizes(f *os.File) (logical, physical int64, err error) {
	fd := int(f.Fd())
	l, err := unix.IoctlGetInt(fd, blkSSZGet)
	if err != nil {
		return 0, 0, fmt.Errorf("BLKSSZGET: %w", err)
	}
	p, err := unix.IoctlGetInt(fd, blkBSZGet)
	if err != nil {
		return 0, 0, fmt.Errorf("BLKBSZGET: %w", err)
	}
	return int64(l), int64(p), nil
}
