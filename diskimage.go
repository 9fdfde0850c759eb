// Package diskimage opens and creates the flat backing files (or raw block
// devices) that the unixv6 filesystem is laid out on top of.
//
// It does not know anything about inodes, bitmaps or directories -- it only
// establishes that the backing storage exists (Create also requires a size
// that is a whole number of sectors), and when backed by a real block
// device, reports a 512-byte logical sector size, since the UNIX V6 layout
// is hard-coded to that sector size. Open does not check the size of an
// existing image.
package diskimage

import (
	"errors"
	"fmt"
	"os"
)

// SectorSize is the only sector size the V6 on-disk layout supports.
const SectorSize = 512

// Open opens an existing image for read/write access.
//
// path may point to a regular file or, on supported platforms, a raw block
// device. The backing store's logical sector size is validated to be
// SectorSize when it can be determined from the device.
func Open(path string) (*os.File, error) {
	if path == "" {
		return nil, errors.New("diskimage: path must not be empty")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("diskimage: stat %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("diskimage: open %s: %w", path, err)
	}
	if info.Mode()&os.ModeDevice != 0 {
		logical, _, err := platformSectorSizes(f)
		if err == nil && logical != 0 && logical != SectorSize {
			f.Close()
			return nil, fmt.Errorf("diskimage: %s reports a %d-byte logical sector, only %d is supported", path, logical, SectorSize)
		}
	}
	return f, nil
}

// Create creates a new, empty image file of the given size in bytes. size
// must be a multiple of SectorSize. The path must not already exist.
func Create(path string, size int64) (*os.File, error) {
	if path == "" {
		return nil, errors.New("diskimage: path must not be empty")
	}
	if size <= 0 || size%SectorSize != 0 {
		return nil, fmt.Errorf("diskimage: size %d must be a positive multiple of %d", size, SectorSize)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o666)
	if err != nil {
		return nil, fmt.Errorf("diskimage: create %s: %w", path, err)
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, fmt.Errorf("diskimage: truncate %s to %d: %w", path, size, err)
	}
	return f, nil
}
