package unixv6

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/go-unixv6/unixv6fs/backend"
)

// Superblock mirrors sector 1 of the image: filesystem geometry and the
// handful of lock/mode flags the original format carries. Field order
// matches the on-disk layout and spec.md §3/§6 exactly.
type Superblock struct {
	Isize       uint16
	Fsize       uint16
	Fbmsize     uint16
	Ibmsize     uint16
	InodeStart  uint16
	BlockStart  uint16
	FbmStart    uint16
	IbmStart    uint16
	Flock       uint8
	Ilock       uint8
	Fmod        uint8
	Ronly       uint8
	Time        [2]uint16
}

func (s *Superblock) marshal() []byte {
	buf := make([]byte, SectorSize)
	var w bytes.Buffer
	_ = binary.Write(&w, binary.LittleEndian, s)
	copy(buf, w.Bytes())
	return buf
}

func (s *Superblock) unmarshal(buf []byte) error {
	r := bytes.NewReader(buf)
	return binary.Read(r, binary.LittleEndian, s)
}

// readBootblock validates the magic byte at BootblockMagicNumOffset in
// sector 0, returning ErrBadBootSector if it does not match.
func readBootblock(f backend.Storage) error {
	buf := make([]byte, SectorSize)
	if err := readSector(f, BootblockSector, buf); err != nil {
		return err
	}
	if buf[BootblockMagicNumOffset] != BootblockMagicNum {
		return fmt.Errorf("unixv6: bootblock magic mismatch (got 0x%02x, want 0x%02x): %w", buf[BootblockMagicNumOffset], BootblockMagicNum, ErrBadBootSector)
	}
	return nil
}

// writeBootblock stamps the magic byte into an otherwise zero sector 0.
func writeBootblock(f backend.Storage) error {
	buf := make([]byte, SectorSize)
	buf[BootblockMagicNumOffset] = BootblockMagicNum
	return writeSector(f, BootblockSector, buf)
}

// readSuperblock reads and decodes sector 1.
func readSuperblock(f backend.Storage, out *Superblock) error {
	buf := make([]byte, SectorSize)
	if err := readSector(f, SuperblockSector, buf); err != nil {
		return err
	}
	return out.unmarshal(buf)
}

// writeSuperblock encodes and writes sector 1.
func writeSuperblock(f backend.Storage, in *Superblock) error {
	return writeSector(f, SuperblockSector, in.marshal())
}

// PrintSuperblock formats the superblock for diagnostics. Field order and
// the left-justified 19-character label column match
// original_source/done/mount.c's mountv6_print_superblock exactly, since
// spec.md §6 pins "field order fixed" without specifying layout.
func (u *UnixFilesystem) PrintSuperblock() string {
	var b bytes.Buffer
	s := &u.s
	b.WriteString("**********FS SUPERBLOCK START**********\n")
	fmt.Fprintf(&b, "%-19s : %d\n", "s_isize", s.Isize)
	fmt.Fprintf(&b, "%-19s : %d\n", "s_fsize", s.Fsize)
	fmt.Fprintf(&b, "%-19s : %d\n", "s_fbmsize", s.Fbmsize)
	fmt.Fprintf(&b, "%-19s : %d\n", "s_ibmsize", s.Ibmsize)
	fmt.Fprintf(&b, "%-19s : %d\n", "s_inode_start", s.InodeStart)
	fmt.Fprintf(&b, "%-19s : %d\n", "s_block_start", s.BlockStart)
	fmt.Fprintf(&b, "%-19s : %d\n", "s_fbm_start", s.FbmStart)
	fmt.Fprintf(&b, "%-19s : %d\n", "s_ibm_start", s.IbmStart)
	fmt.Fprintf(&b, "%-19s : %d\n", "s_flock", s.Flock)
	fmt.Fprintf(&b, "%-19s : %d\n", "s_ilock", s.Ilock)
	fmt.Fprintf(&b, "%-19s : %d\n", "s_fmod", s.Fmod)
	fmt.Fprintf(&b, "%-19s : %d\n", "s_ronly", s.Ronly)
	fmt.Fprintf(&b, "%-19s : [%d] %d\n", "s_time", s.Time[0], s.Time[1])
	b.WriteString("**********FS SUPERBLOCK END**********\n")
	return b.String()
}
