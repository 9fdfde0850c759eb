package unixv6

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// FileV6 is a byte-stream view over an inode's content: a non-owning
// reference to the mounted filesystem, the inode number, an in-memory
// copy of the inode (see design notes on why this must not be treated as
// authoritative once written elsewhere), and a byte offset used for
// sequential reads.
type FileV6 struct {
	u      *UnixFilesystem
	Inr    uint32
	Inode  Inode
	Offset uint32
}

// Open reads inode inr and returns a FileV6 positioned at offset 0.
func Open(u *UnixFilesystem, inr uint32) (*FileV6, error) {
	var in Inode
	if err := u.InodeRead(inr, &in); err != nil {
		return nil, err
	}
	return &FileV6{u: u, Inr: inr, Inode: in}, nil
}

// ReadBlock reads the next sector's worth of file content into out, which
// must be exactly SectorSize bytes. It returns 0 at EOF, and never
// advances the offset past the file's size; the last partial sector's
// return value reflects only the valid byte count, the rest of out is
// whatever sector I/O produced.
func (fv *FileV6) ReadBlock(out []byte) (int, error) {
	if len(out) != SectorSize {
		return 0, fmt.Errorf("unixv6: read buffer must be exactly %d bytes: %w", SectorSize, ErrBadParameter)
	}
	size := fv.Inode.Size()
	if fv.Offset >= size {
		return 0, nil
	}
	sector, err := fv.u.FindSector(&fv.Inode, fv.Offset/SectorSize)
	if err != nil {
		return 0, err
	}
	if err := readSector(fv.u.f, sector, out); err != nil {
		return 0, err
	}
	remaining := size - fv.Offset
	n := uint32(SectorSize)
	if remaining < SectorSize {
		n = remaining
	}
	fv.Offset += n
	return int(n), nil
}

// Seek repositions the read offset. newOffset == size is allowed (EOF);
// newOffset > size is rejected.
func (fv *FileV6) Seek(newOffset uint32) error {
	if newOffset > fv.Inode.Size() {
		return fmt.Errorf("unixv6: seek to %d past size %d: %w", newOffset, fv.Inode.Size(), ErrOffsetOutOfRange)
	}
	fv.Offset = newOffset
	return nil
}

// CreateInode stamps a fresh, empty inode of the given mode at inr, which
// must already be marked in-use in the inode bitmap (callers allocate via
// UnixFilesystem.InodeAlloc first). Returns a FileV6 over the new inode.
// The root inode is the one exception to this precondition -- Mkfs stamps
// it directly and never calls CreateInode for it.
func CreateInode(u *UnixFilesystem, inr uint32, mode uint16) (*FileV6, error) {
	bit, err := u.ibm.Get(inr)
	if err != nil {
		return nil, err
	}
	if bit == 0 {
		return nil, fmt.Errorf("unixv6: inode %d: %w", inr, ErrUnallocatedInode)
	}
	in := Inode{Mode: mode}
	if err := u.InodeWrite(inr, &in); err != nil {
		return nil, err
	}
	return &FileV6{u: u, Inr: inr, Inode: in}, nil
}

// WriteBytes appends buf to the end of the file. Writes are append-only:
// the read Offset does not influence where bytes land. A mid-write
// failure leaves the inode's size reflecting only the sectors that
// succeeded; the caller's buffer content beyond that point was never
// persisted.
func (fv *FileV6) WriteBytes(buf []byte) error {
	written := 0
	size := fv.Inode.Size()
	for written < len(buf) {
		n, err := fv.writeOneSector(buf, written)
		if err != nil {
			return err
		}
		written += n
		size += uint32(n)
		if err := fv.Inode.SetSize(size); err != nil {
			return err
		}
	}
	return fv.u.InodeWrite(fv.Inr, &fv.Inode)
}

func readIndirect(u *UnixFilesystem, sector uint32) ([AddressesPerSector]uint16, error) {
	var addrs [AddressesPerSector]uint16
	buf := make([]byte, SectorSize)
	if err := readSector(u.f, sector, buf); err != nil {
		return addrs, err
	}
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &addrs); err != nil {
		return addrs, fmt.Errorf("unixv6: decode indirect sector %d: %w: %v", sector, ErrIO, err)
	}
	return addrs, nil
}

func writeIndirect(u *UnixFilesystem, sector uint32, addrs [AddressesPerSector]uint16) error {
	var w bytes.Buffer
	_ = binary.Write(&w, binary.LittleEndian, addrs)
	buf := make([]byte, SectorSize)
	copy(buf, w.Bytes())
	return writeSector(u.f, sector, buf)
}

// writeOneSector implements the per-sector allocation policy of spec.md
// §4.4: it writes as many bytes of buf[alreadyWritten:] as fit in the
// current or a freshly allocated sector, returning the count written.
func (fv *FileV6) writeOneSector(buf []byte, alreadyWritten int) (int, error) {
	size := fv.Inode.Size()
	remInTail := SectorSize - size%SectorSize
	want := uint32(len(buf) - alreadyWritten)
	n := remInTail
	if want < n {
		n = want
	}

	switch {
	case size < SmallFileMaxSize:
		return fv.writeSmall(buf, alreadyWritten, int(n), size)
	case size == SmallFileMaxSize:
		if err := fv.promoteToLarge(); err != nil {
			return 0, err
		}
		return fv.writeLarge(buf, alreadyWritten, int(n), size)
	case size < LargeFileMaxSize:
		return fv.writeLarge(buf, alreadyWritten, int(n), size)
	default:
		return 0, ErrFileTooLarge
	}
}

func (fv *FileV6) writeSmall(buf []byte, alreadyWritten, n int, size uint32) (int, error) {
	u := fv.u
	block := make([]byte, SectorSize)
	var sector uint32

	if size%SectorSize != 0 {
		sector = uint32(fv.Inode.Addr[size/SectorSize])
		if err := readSector(u.f, sector, block); err != nil {
			return 0, err
		}
	} else {
		s, err := u.fbm.FindNext()
		if err != nil {
			return 0, err
		}
		u.fbm.Set(s)
		sector = s
		fv.Inode.Addr[size/SectorSize] = uint16(sector)
	}
	copy(block[size%SectorSize:], buf[alreadyWritten:alreadyWritten+n])
	if err := writeSector(u.f, sector, block); err != nil {
		return 0, err
	}
	return n, nil
}

// promoteToLarge converts the 8 direct addresses into the first indirect
// sector, exactly at the 4096-byte small/large boundary.
func (fv *FileV6) promoteToLarge() error {
	u := fv.u
	var addrs [AddressesPerSector]uint16
	copy(addrs[:], fv.Inode.Addr[:])

	indirectSector, err := u.fbm.FindNext()
	if err != nil {
		return err
	}
	u.fbm.Set(indirectSector)
	if err := writeIndirect(u, indirectSector, addrs); err != nil {
		return err
	}

	Logger.WithFields(map[string]interface{}{
		"mount_id": u.MountID,
		"inr":      fv.Inr,
		"indirect": indirectSector,
	}).Debug("unixv6: promoting file to large-file addressing")

	fv.Inode.Addr = [AddrSmallLength]uint16{}
	fv.Inode.Addr[0] = uint16(indirectSector)
	return nil
}

func (fv *FileV6) writeLarge(buf []byte, alreadyWritten, n int, size uint32) (int, error) {
	u := fv.u

	if size%SectorSize != 0 {
		lastSector := size/SectorSize - 1
		group := lastSector / AddressesPerSector
		pos := lastSector % AddressesPerSector
		addrs, err := readIndirect(u, uint32(fv.Inode.Addr[group]))
		if err != nil {
			return 0, err
		}
		dataSector := uint32(addrs[pos])
		block := make([]byte, SectorSize)
		if err := readSector(u.f, dataSector, block); err != nil {
			return 0, err
		}
		copy(block[size%SectorSize:], buf[alreadyWritten:alreadyWritten+n])
		if err := writeSector(u.f, dataSector, block); err != nil {
			return 0, err
		}
		return n, nil
	}

	lastSector := size/SectorSize - 1
	group := lastSector / AddressesPerSector
	pos := lastSector % AddressesPerSector

	if size%(AddressesPerSector*SectorSize) != 0 {
		addrs, err := readIndirect(u, uint32(fv.Inode.Addr[group]))
		if err != nil {
			return 0, err
		}
		dataSector, err := u.fbm.FindNext()
		if err != nil {
			return 0, err
		}
		u.fbm.Set(dataSector)
		addrs[pos+1] = uint16(dataSector)
		if err := writeIndirect(u, uint32(fv.Inode.Addr[group]), addrs); err != nil {
			return 0, err
		}
		block := make([]byte, SectorSize)
		copy(block, buf[alreadyWritten:alreadyWritten+n])
		if err := writeSector(u.f, dataSector, block); err != nil {
			return 0, err
		}
		return n, nil
	}

	if group+1 >= AddrSmallLength-1 {
		return 0, ErrFileTooLarge
	}
	newIndirect, err := u.fbm.FindNext()
	if err != nil {
		return 0, err
	}
	u.fbm.Set(newIndirect)
	dataSector, err := u.fbm.FindNext()
	if err != nil {
		return 0, err
	}
	u.fbm.Set(dataSector)

	var addrs [AddressesPerSector]uint16
	addrs[0] = uint16(dataSector)
	if err := writeIndirect(u, newIndirect, addrs); err != nil {
		return 0, err
	}
	fv.Inode.Addr[group+1] = uint16(newIndirect)

	block := make([]byte, SectorSize)
	copy(block, buf[alreadyWritten:alreadyWritten+n])
	if err := writeSector(u.f, dataSector, block); err != nil {
		return 0, err
	}
	return n, nil
}
