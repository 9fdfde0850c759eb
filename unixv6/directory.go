package unixv6

import (
	"bytes"
	"fmt"
	"strings"
)

// Directory is a directory-content reader/writer layered on a FileV6 whose
// inode is known to carry IFDIR.
type Directory struct {
	fv *FileV6
}

// OpenDir opens inode inr as a directory, returning ErrInvalidDirectoryInode
// if it is not one.
func OpenDir(u *UnixFilesystem, inr uint32) (*Directory, error) {
	fv, err := Open(u, inr)
	if err != nil {
		return nil, err
	}
	if !fv.Inode.IsDir() {
		return nil, fmt.Errorf("unixv6: inode %d: %w", inr, ErrInvalidDirectoryInode)
	}
	return &Directory{fv: fv}, nil
}

// ReadDir returns every in-use entry in the directory, in on-disk order.
// Free slots (inode number 0, left behind by nothing in this
// implementation since it never deletes, but possible in images produced
// elsewhere) are skipped.
func (d *Directory) ReadDir() ([]Direntv6, error) {
	if err := d.fv.Seek(0); err != nil {
		return nil, err
	}
	var entries []Direntv6
	block := make([]byte, SectorSize)
	for {
		n, err := d.fv.ReadBlock(block)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
		for j := 0; j < n/DirentSize; j++ {
			var ent Direntv6
			if err := ent.unmarshal(block[j*DirentSize : (j+1)*DirentSize]); err != nil {
				return nil, fmt.Errorf("unixv6: decode dirent slot %d: %w: %v", j, ErrIO, err)
			}
			if !ent.Free() {
				entries = append(entries, ent)
			}
		}
	}
	return entries, nil
}

// Lookup returns the inode number bound to name in this directory, or
// ErrNameNotFound.
func (d *Directory) Lookup(name string) (uint32, error) {
	entries, err := d.ReadDir()
	if err != nil {
		return 0, err
	}
	for _, ent := range entries {
		if ent.NameString() == name {
			return uint32(ent.Inum), nil
		}
	}
	return 0, fmt.Errorf("unixv6: %q: %w", name, ErrNameNotFound)
}

// Create allocates a new inode of the given mode, adds a directory entry
// binding name to it, and returns the new file. It returns
// ErrFilenameAlreadyExists if name is already bound in this directory.
func (d *Directory) Create(name string, mode uint16) (*FileV6, error) {
	if _, err := d.Lookup(name); err == nil {
		return nil, fmt.Errorf("unixv6: %q: %w", name, ErrFilenameAlreadyExists)
	}

	u := d.fv.u
	childInr, err := u.InodeAlloc()
	if err != nil {
		return nil, err
	}
	child, err := CreateInode(u, childInr, mode)
	if err != nil {
		return nil, err
	}

	var ent Direntv6
	if err := ent.SetName(name); err != nil {
		return nil, err
	}
	ent.Inum = uint16(childInr)

	if err := d.fv.WriteBytes(ent.marshal()); err != nil {
		return nil, err
	}

	Logger.WithFields(map[string]interface{}{
		"mount_id": u.MountID,
		"dir_inr":  d.fv.Inr,
		"name":     name,
		"inr":      childInr,
	}).Debug("unixv6: created directory entry")

	return child, nil
}

// Lookup resolves path against the directory at startInr, splitting at
// each "/" and recursing into the child directory named by each
// component in turn. A leading "/" is skipped rather than treated as a
// path component; an empty path (after stripping any leading "/")
// resolves to startInr itself. Each component lookup goes through
// InodeRead, so a path that walks off the end of a corrupted address
// table surfaces as ErrInodeOutOfRange, same as any other inode access.
func Lookup(u *UnixFilesystem, startInr uint32, path string) (uint32, error) {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return startInr, nil
	}

	first, rest, hasRest := strings.Cut(path, "/")

	d, err := OpenDir(u, startInr)
	if err != nil {
		return 0, err
	}
	childInr, err := d.Lookup(first)
	if err != nil {
		return 0, err
	}
	if !hasRest || rest == "" {
		return childInr, nil
	}
	return Lookup(u, childInr, rest)
}

// Create resolves path's parent directory (defaulting to the root when
// path has no "/"), then creates a new inode of the given mode bound to
// path's final component within it. It returns ErrFilenameTooLong if the
// final component does not fit in a Direntv6's name field, and
// ErrFilenameAlreadyExists if it is already bound in the parent.
func Create(u *UnixFilesystem, path string, mode uint16) (*FileV6, error) {
	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		return nil, fmt.Errorf("unixv6: %q: %w", path, ErrBadParameter)
	}

	parentPath, name := "", trimmed
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		parentPath, name = trimmed[:idx], trimmed[idx+1:]
	}
	if len(name) > DirentMaxlen {
		return nil, fmt.Errorf("unixv6: %q: %w", name, ErrFilenameTooLong)
	}

	parentInr := uint32(RootInumber)
	if parentPath != "" {
		var err error
		parentInr, err = Lookup(u, RootInumber, parentPath)
		if err != nil {
			return nil, err
		}
	}

	d, err := OpenDir(u, parentInr)
	if err != nil {
		return nil, err
	}
	return d.Create(name, mode)
}

// PrintTree walks the directory recursively, writing one indented line per
// entry, in the style of UnixFilesystem.ScanPrint's inode dump.
func (d *Directory) PrintTree(prefix string) (string, error) {
	var b bytes.Buffer
	entries, err := d.ReadDir()
	if err != nil {
		return "", err
	}
	u := d.fv.u
	for _, ent := range entries {
		name := ent.NameString()
		if name == "." || name == ".." {
			continue
		}
		var child Inode
		if err := u.InodeRead(uint32(ent.Inum), &child); err != nil {
			return "", err
		}
		if child.IsDir() {
			fmt.Fprintf(&b, "%s%s/\n", prefix, name)
			sub, err := OpenDir(u, uint32(ent.Inum))
			if err != nil {
				return "", err
			}
			subTree, err := sub.PrintTree(prefix + "  ")
			if err != nil {
				return "", err
			}
			b.WriteString(subTree)
		} else {
			fmt.Fprintf(&b, "%s%s (%d bytes)\n", prefix, name, child.Size())
		}
	}
	return b.String(), nil
}
