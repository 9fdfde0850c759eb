package unixv6

import (
	"fmt"

	"github.com/google/uuid"
	times "gopkg.in/djherbis/times.v1"

	"github.com/go-unixv6/unixv6fs/backend"
)

// UnixFilesystem is a mounted UNIX V6 filesystem image. Its inode and
// free-block bitmaps are pure in-memory bookkeeping: neither is stored on
// disk anywhere, both are rebuilt by Mount on every open by scanning the
// inode list, and s_ibmsize/s_ibm_start/s_fbmsize/s_fbm_start survive in
// the Superblock only for on-disk format fidelity with images produced by
// other tools.
type UnixFilesystem struct {
	f backend.Storage
	s Superblock

	ibm *Bitmap
	fbm *Bitmap

	// MountID correlates every log line emitted during this mount session.
	// It has no on-disk representation.
	MountID uuid.UUID
}

// Mount opens an existing image: it validates the bootblock, reads the
// superblock, and reconstructs both bitmaps by scanning every inode.
func Mount(f backend.Storage) (*UnixFilesystem, error) {
	if err := readBootblock(f); err != nil {
		return nil, err
	}
	var sb Superblock
	if err := readSuperblock(f, &sb); err != nil {
		return nil, err
	}

	u := &UnixFilesystem{f: f, s: sb, MountID: uuid.New()}

	fields := map[string]interface{}{"mount_id": u.MountID}
	if sys, err := f.Sys(); err == nil {
		if ts, err := times.StatFile(sys); err == nil {
			fields["host_mtime"] = ts.ModTime()
		}
	}
	Logger.WithFields(fields).Info("unixv6: mounting filesystem")

	ibm, err := NewBitmap(2, u.maxInode())
	if err != nil {
		return nil, err
	}
	u.ibm = ibm
	if err := u.fillIBM(); err != nil {
		return nil, err
	}

	fbm, err := NewBitmap(uint32(sb.BlockStart)+1, uint32(sb.Fsize)-1)
	if err != nil {
		return nil, err
	}
	u.fbm = fbm
	if err := u.fillFBM(); err != nil {
		return nil, err
	}

	return u, nil
}

// fillIBM scans every inode sector and marks every allocated inode in the
// inode bitmap. A sector that fails to read is treated conservatively: all
// InodesPerSector inodes it would have held are marked in-use rather than
// aborting the mount, since a corrupt or unreadable inode sector is far
// more likely to hold live data than to be genuinely free.
func (u *UnixFilesystem) fillIBM() error {
	for s := uint16(0); s < u.s.Isize; s++ {
		buf := make([]byte, SectorSize)
		if err := readSector(u.f, uint32(u.s.InodeStart)+uint32(s), buf); err != nil {
			Logger.WithFields(map[string]interface{}{
				"mount_id": u.MountID,
				"sector":   uint32(u.s.InodeStart) + uint32(s),
			}).Warn("unixv6: inode sector unreadable, marking conservatively as fully allocated")
			for j := 0; j < InodesPerSector; j++ {
				u.ibm.Set(uint32(InodesPerSector)*uint32(s) + uint32(j))
			}
			continue
		}
		for j := 0; j < InodesPerSector; j++ {
			var in Inode
			if err := in.unmarshal(buf[j*InodeSize : (j+1)*InodeSize]); err != nil {
				u.ibm.Set(uint32(InodesPerSector)*uint32(s) + uint32(j))
				continue
			}
			if in.IsAllocated() {
				u.ibm.Set(uint32(InodesPerSector)*uint32(s) + uint32(j))
			}
		}
	}
	return nil
}

// fillFBM scans every allocated inode's address table (direct and, for
// large files, indirect) and marks every sector it references in the
// free-block bitmap. It walks inode numbers starting at RootInumber, not
// through the inode bitmap: the root inode is stamped directly by Mkfs and
// is never a candidate in ibm (whose range starts at 2), but its data
// sectors are real and must still be tracked here.
func (u *UnixFilesystem) fillFBM() error {
	for inr := uint32(RootInumber); inr <= u.maxInode(); inr++ {
		var in Inode
		if err := u.InodeRead(inr, &in); err != nil {
			continue
		}
		size := in.Size()
		switch {
		case size <= SmallFileMaxSize:
			nSectors := (size + SectorSize - 1) / SectorSize
			for j := uint32(0); j < nSectors; j++ {
				u.fbm.Set(uint32(in.Addr[j]))
			}
		case size <= LargeFileMaxSize:
			nSectors := (size + SectorSize - 1) / SectorSize
			nGroups := (nSectors + AddressesPerSector - 1) / AddressesPerSector
			for g := uint32(0); g < nGroups; g++ {
				indirectSector := uint32(in.Addr[g])
				u.fbm.Set(indirectSector)
				addrs, err := readIndirect(u, indirectSector)
				if err != nil {
					continue
				}
				remaining := nSectors - g*AddressesPerSector
				if remaining > AddressesPerSector {
					remaining = AddressesPerSector
				}
				for p := uint32(0); p < remaining; p++ {
					u.fbm.Set(uint32(addrs[p]))
				}
			}
		default:
			continue
		}
	}
	return nil
}

// Umount writes the superblock back to disk. Since this implementation
// never persists the bitmaps, there is no bitmap teardown to perform; the
// only state that crosses a mount boundary on disk is the superblock
// itself.
func (u *UnixFilesystem) Umount() error {
	Logger.WithField("mount_id", u.MountID).Info("unixv6: unmounting filesystem")
	return writeSuperblock(u.f, &u.s)
}

// Mkfs formats a fresh image of totalSectors sectors, with isize sectors
// reserved for the inode list, and stamps the root directory (inode 1) as
// IALLOC|IFDIR with zero size. Inodes 0 and 1 are never candidates for
// ibm allocation: 0 is permanently reserved and 1 (the root) is written
// directly here, bypassing InodeAlloc/the bitmap entirely.
func Mkfs(f backend.Storage, totalSectors uint32, isize uint16) (*UnixFilesystem, error) {
	if totalSectors == 0 || isize == 0 {
		return nil, fmt.Errorf("unixv6: mkfs requires a non-empty image and inode area: %w", ErrBadParameter)
	}
	inodeStart := uint16(2)
	blockStart := inodeStart + isize
	if uint32(blockStart) >= totalSectors {
		return nil, fmt.Errorf("unixv6: inode area leaves no room for data sectors: %w", ErrNotEnoughBlocks)
	}

	sb := Superblock{
		Isize:      isize,
		Fsize:      uint16(totalSectors),
		InodeStart: inodeStart,
		BlockStart: blockStart,
	}

	if err := writeBootblock(f); err != nil {
		return nil, err
	}
	if err := writeSuperblock(f, &sb); err != nil {
		return nil, err
	}

	zero := make([]byte, SectorSize)
	for s := uint32(inodeStart); s < uint32(blockStart); s++ {
		if err := writeSector(f, s, zero); err != nil {
			return nil, err
		}
	}

	u := &UnixFilesystem{f: f, s: sb, MountID: uuid.New()}
	ibm, err := NewBitmap(2, u.maxInode())
	if err != nil {
		return nil, err
	}
	u.ibm = ibm
	fbm, err := NewBitmap(uint32(sb.BlockStart)+1, uint32(sb.Fsize)-1)
	if err != nil {
		return nil, err
	}
	u.fbm = fbm

	root := Inode{Mode: IAlloc | IFDir}
	if err := u.stampInode(RootInumber, &root); err != nil {
		return nil, err
	}

	Logger.WithField("mount_id", u.MountID).Info("unixv6: formatted new filesystem")
	return u, nil
}

// stampInode writes in over inode inr's slot unconditionally, without
// InodeWrite's already-allocated precondition. It exists solely for Mkfs
// to stamp the root inode directly, since the root is never allocated
// through InodeAlloc/the inode bitmap.
func (u *UnixFilesystem) stampInode(inr uint32, in *Inode) error {
	var inodes [InodesPerSector]Inode
	slot, err := u.inodeReadSector(inr, &inodes)
	if err != nil {
		return err
	}
	inodes[slot] = *in

	buf := make([]byte, SectorSize)
	for j := 0; j < InodesPerSector; j++ {
		copy(buf[j*InodeSize:(j+1)*InodeSize], inodes[j].marshal())
	}
	sectorNb := inr / InodesPerSector
	return writeSector(u.f, uint32(u.s.InodeStart)+sectorNb, buf)
}
