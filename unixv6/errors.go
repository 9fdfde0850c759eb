package unixv6

import "errors"

// Sentinel errors, one per error kind in the filesystem's error domain.
// Higher layers wrap these with fmt.Errorf("...: %w", ErrXxx) to attach
// detail (inode number, sector index, path) while keeping errors.Is
// comparisons working across layers.
var (
	ErrIO                     = errors.New("unixv6: i/o error")
	ErrBadParameter           = errors.New("unixv6: bad parameter")
	ErrBadBootSector          = errors.New("unixv6: bad boot sector")
	ErrInodeOutOfRange        = errors.New("unixv6: inode number out of range")
	ErrUnallocatedInode       = errors.New("unixv6: unallocated inode")
	ErrInvalidDirectoryInode  = errors.New("unixv6: not a directory inode")
	ErrOffsetOutOfRange       = errors.New("unixv6: offset out of range")
	ErrFileTooLarge           = errors.New("unixv6: file too large")
	ErrBitmapFull             = errors.New("unixv6: bitmap full")
	ErrNotEnoughBlocks        = errors.New("unixv6: not enough blocks")
	ErrFilenameTooLong        = errors.New("unixv6: filename too long")
	ErrFilenameAlreadyExists  = errors.New("unixv6: filename already exists")
	ErrNameNotFound           = errors.New("unixv6: name not found in directory")
)
