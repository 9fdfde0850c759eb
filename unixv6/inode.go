package unixv6

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Inode is the 32-byte on-disk inode record: mode/link/owner metadata, a
// 24-bit byte size split across Size0/Size1, and the 8-entry address
// table whose meaning (direct vs. indirect) depends on the file's size --
// see FindSector.
type Inode struct {
	Mode  uint16
	Nlink uint8
	Uid   uint8
	Gid   uint8
	Size0 uint8
	Size1 uint16
	Addr  [AddrSmallLength]uint16
	Atime [2]uint16
	Mtime [2]uint16
}

// Size returns the file's byte size, reassembled from Size0 (high) and
// Size1 (low).
func (i *Inode) Size() uint32 {
	return uint32(i.Size0)<<16 | uint32(i.Size1)
}

// SetSize splits n back into Size0/Size1. n must fit in the 24 usable
// bits.
func (i *Inode) SetSize(n uint32) error {
	if n > 1<<24-1 {
		return fmt.Errorf("unixv6: size %d overflows 24-bit inode size field: %w", n, ErrBadParameter)
	}
	i.Size0 = uint8(n >> 16)
	i.Size1 = uint16(n)
	return nil
}

// SectorCount returns the number of whole sector-bytes needed to hold the
// inode's content: ceil(size/SectorSize)*SectorSize.
func (i *Inode) SectorCount() uint32 {
	size := i.Size()
	nSectors := (size + SectorSize - 1) / SectorSize
	return nSectors * SectorSize
}

// IsDir reports whether the inode's IFMT bits select a directory.
func (i *Inode) IsDir() bool {
	return i.Mode&IFmt == IFDir
}

// IsAllocated reports whether IALLOC is set.
func (i *Inode) IsAllocated() bool {
	return i.Mode&IAlloc != 0
}

func (i *Inode) marshal() []byte {
	var w bytes.Buffer
	_ = binary.Write(&w, binary.LittleEndian, i)
	return w.Bytes()
}

func (i *Inode) unmarshal(buf []byte) error {
	return binary.Read(bytes.NewReader(buf), binary.LittleEndian, i)
}

// maxInode returns the highest valid inode number for the mounted
// filesystem: INODES_PER_SECTOR * s_isize - 1.
func (u *UnixFilesystem) maxInode() uint32 {
	return uint32(InodesPerSector)*uint32(u.s.Isize) - 1
}

// inodeReadSector reads the sector holding inode inr into inodes, and
// returns the slot within it.
func (u *UnixFilesystem) inodeReadSector(inr uint32, inodes *[InodesPerSector]Inode) (slot int, err error) {
	sectorNb := inr / InodesPerSector
	buf := make([]byte, SectorSize)
	if err := readSector(u.f, uint32(u.s.InodeStart)+sectorNb, buf); err != nil {
		return 0, err
	}
	for j := 0; j < InodesPerSector; j++ {
		if err := inodes[j].unmarshal(buf[j*InodeSize : (j+1)*InodeSize]); err != nil {
			return 0, fmt.Errorf("unixv6: decode inode slot %d: %w: %v", j, ErrIO, err)
		}
	}
	return int(inr % InodesPerSector), nil
}

// InodeRead reads inode inr into out. Returns ErrInodeOutOfRange if inr is
// outside the valid range, or ErrUnallocatedInode if IALLOC is clear.
func (u *UnixFilesystem) InodeRead(inr uint32, out *Inode) error {
	if out == nil {
		return fmt.Errorf("unixv6: nil inode destination: %w", ErrBadParameter)
	}
	if inr > u.maxInode() {
		return fmt.Errorf("unixv6: inode %d out of range [0, %d]: %w", inr, u.maxInode(), ErrInodeOutOfRange)
	}
	var inodes [InodesPerSector]Inode
	slot, err := u.inodeReadSector(inr, &inodes)
	if err != nil {
		return err
	}
	if !inodes[slot].IsAllocated() {
		return fmt.Errorf("unixv6: inode %d: %w", inr, ErrUnallocatedInode)
	}
	*out = inodes[slot]
	return nil
}

// InodeWrite writes in over inode inr's slot, which must already be
// allocated on disk (callers allocate via InodeAlloc first).
func (u *UnixFilesystem) InodeWrite(inr uint32, in *Inode) error {
	if in == nil {
		return fmt.Errorf("unixv6: nil inode source: %w", ErrBadParameter)
	}
	if inr > u.maxInode() {
		return fmt.Errorf("unixv6: inode %d out of range [0, %d]: %w", inr, u.maxInode(), ErrInodeOutOfRange)
	}
	var inodes [InodesPerSector]Inode
	slot, err := u.inodeReadSector(inr, &inodes)
	if err != nil {
		return err
	}
	if !inodes[slot].IsAllocated() {
		return fmt.Errorf("unixv6: inode %d: %w", inr, ErrUnallocatedInode)
	}
	inodes[slot] = *in

	buf := make([]byte, SectorSize)
	for j := 0; j < InodesPerSector; j++ {
		copy(buf[j*InodeSize:(j+1)*InodeSize], inodes[j].marshal())
	}
	sectorNb := inr / InodesPerSector
	return writeSector(u.f, uint32(u.s.InodeStart)+sectorNb, buf)
}

// InodeAlloc finds the next free inode number in the inode bitmap and
// marks it in use. It does not write the inode to disk -- callers do that
// via CreateInode.
func (u *UnixFilesystem) InodeAlloc() (uint32, error) {
	inr, err := u.ibm.FindNext()
	if err != nil {
		Logger.WithField("mount_id", u.MountID).Warn("unixv6: inode bitmap exhausted")
		return 0, err
	}
	u.ibm.Set(inr)
	return inr, nil
}

// FindSector returns the absolute sector index holding the
// logicalSecOff-th sector of inode content (0-based), following the
// small/large file addressing discipline of spec.md §3.
func (u *UnixFilesystem) FindSector(inode *Inode, logicalSecOff uint32) (uint32, error) {
	if inode == nil {
		return 0, fmt.Errorf("unixv6: nil inode: %w", ErrBadParameter)
	}
	if !inode.IsAllocated() {
		return 0, ErrUnallocatedInode
	}
	size := inode.Size()
	if uint64(logicalSecOff)*SectorSize >= uint64(size) {
		return 0, fmt.Errorf("unixv6: sector offset %d past end of %d-byte file: %w", logicalSecOff, size, ErrOffsetOutOfRange)
	}

	switch {
	case size <= SmallFileMaxSize:
		return uint32(inode.Addr[logicalSecOff]), nil
	case size <= LargeFileMaxSize:
		group := logicalSecOff / AddressesPerSector
		pos := logicalSecOff % AddressesPerSector
		indirect := make([]byte, SectorSize)
		if err := readSector(u.f, uint32(inode.Addr[group]), indirect); err != nil {
			return 0, err
		}
		var addrs [AddressesPerSector]uint16
		if err := binary.Read(bytes.NewReader(indirect), binary.LittleEndian, &addrs); err != nil {
			return 0, fmt.Errorf("unixv6: decode indirect sector: %w: %v", ErrIO, err)
		}
		return uint32(addrs[pos]), nil
	default:
		return 0, ErrFileTooLarge
	}
}

// ScanPrint writes one "inode <n> (DIR|FIL) len <bytes>" line per
// allocated inode, in inode-number order, and returns them as one string.
func (u *UnixFilesystem) ScanPrint() (string, error) {
	var b bytes.Buffer
	for s := uint16(0); s < u.s.Isize; s++ {
		buf := make([]byte, SectorSize)
		if err := readSector(u.f, uint32(u.s.InodeStart)+uint32(s), buf); err != nil {
			return "", err
		}
		for j := 0; j < InodesPerSector; j++ {
			var in Inode
			if err := in.unmarshal(buf[j*InodeSize : (j+1)*InodeSize]); err != nil {
				return "", fmt.Errorf("unixv6: decode inode slot %d: %w: %v", j, ErrIO, err)
			}
			if !in.IsAllocated() {
				continue
			}
			currentInode := uint32(InodesPerSector)*uint32(s) + uint32(j)
			kind := shortFilName
			if in.IsDir() {
				kind = shortDirName
			}
			fmt.Fprintf(&b, "inode %3d (%s) len %d\n", currentInode, kind, in.Size())
		}
	}
	return b.String(), nil
}
