//go:build darwin

package diskimage

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// these constants should be part of "golang.org/x/sys/unix", but aren't, yet
const (
	dkIOCGetBlockSize         = 0x40046418
	dkIOCGetPhysicalBlockSize = 0x4004644D
)

func platformSectorSizes(f *os.File) (logical, physical int64, err error) {
	fd := int(f.Fd())
	l, err := unix.IoctlGetInt(fd, dkIOCGetBlockSize)
	if err != nil {
		return 0, 0, fmt.Errorf("DKIOCGETBLOCKSIZE: %w", err)
	}
	p, err := unix.IoctlGetInt(fd, dkIOCGetPhysicalBlockSize)
	if err != nil {
		return 0, 0, fmt.Errorf("DKIOCGETPHYSICALBLOCKSIZE: %w", err)
	}
	return int64(l), int64(p), nil
}
