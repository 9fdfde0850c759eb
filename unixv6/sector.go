package unixv6

import (
	"fmt"

	"github.com/go-unixv6/unixv6fs/backend"
)

// readSector reads exactly SectorSize bytes at the given absolute sector
// index into out. A short read is fatal: it is reported as ErrIO.
func readSector(f backend.Storage, sector uint32, out []byte) error {
	if len(out) != SectorSize {
		return fmt.Errorf("unixv6: read buffer must be exactly %d bytes, got %d: %w", SectorSize, len(out), ErrBadParameter)
	}
	n, err := f.ReadAt(out, int64(sector)*SectorSize)
	if err != nil {
		return fmt.Errorf("unixv6: read sector %d: %w: %v", sector, ErrIO, err)
	}
	if n != SectorSize {
		return fmt.Errorf("unixv6: read sector %d: short read of %d bytes: %w", sector, n, ErrIO)
	}
	return nil
}

// writeSector writes exactly SectorSize bytes at the given absolute sector
// index. A short write is fatal: it is reported as ErrIO.
func writeSector(f backend.Storage, sector uint32, in []byte) error {
	if len(in) != SectorSize {
		return fmt.Errorf("unixv6: write buffer must be exactly %d bytes, got %d: %w", SectorSize, len(in), ErrBadParameter)
	}
	wf, err := f.Writable()
	if err != nil {
		return fmt.Errorf("unixv6: write sector %d: %w: %v", sector, ErrIO, err)
	}
	n, err := wf.WriteAt(in, int64(sector)*SectorSize)
	if err != nil {
		return fmt.Errorf("unixv6: write sector %d: %w: %v", sector, ErrIO, err)
	}
	if n != SectorSize {
		return fmt.Errorf("unixv6: write sector %d: short write of %d bytes: %w", sector, n, ErrIO)
	}
	return nil
}
