package unixv6

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Direntv6 is the 16-byte on-disk directory entry: a 2-byte inode number
// followed by a 14-byte, NUL-padded (not necessarily NUL-terminated when
// exactly 14 bytes long) name.
type Direntv6 struct {
	Inum uint16
	Name [DirentMaxlen]byte
}

// NameString returns the entry's name with trailing NUL padding stripped.
func (d *Direntv6) NameString() string {
	n := bytes.IndexByte(d.Name[:], 0)
	if n < 0 {
		return string(d.Name[:])
	}
	return string(d.Name[:n])
}

// SetName copies name into the entry, left-justified and NUL-padded. It
// returns ErrFilenameTooLong if name does not fit in DirentMaxlen bytes.
func (d *Direntv6) SetName(name string) error {
	if len(name) > DirentMaxlen {
		return fmt.Errorf("unixv6: filename %q longer than %d bytes: %w", name, DirentMaxlen, ErrFilenameTooLong)
	}
	d.Name = [DirentMaxlen]byte{}
	copy(d.Name[:], name)
	return nil
}

// Free reports whether the entry is unused (inode number 0, which is never
// a valid inode number since RootInumber is 1 and inode 0 is never
// allocated).
func (d *Direntv6) Free() bool {
	return d.Inum == 0
}

func (d *Direntv6) marshal() []byte {
	var w bytes.Buffer
	_ = binary.Write(&w, binary.LittleEndian, d)
	return w.Bytes()
}

func (d *Direntv6) unmarshal(buf []byte) error {
	return binary.Read(bytes.NewReader(buf), binary.LittleEndian, d)
}
