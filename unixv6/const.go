package unixv6

// Sector geometry and inode/address layout, per the UNIX V6 on-disk format.
const (
	SectorSize = 512

	// BootblockSector and SuperblockSector are fixed, well-known sectors.
	BootblockSector = 0
	SuperblockSector = 1

	BootblockMagicNumOffset = 0
	BootblockMagicNum       = 0x2a

	InodeSize         = 32
	InodesPerSector   = SectorSize / InodeSize // 16
	AddressSize       = 2
	AddressesPerSector = SectorSize / AddressSize // 256
	AddrSmallLength   = 8

	DirentSize         = 16
	DirentMaxlen       = 14
	DirentriesPerSector = SectorSize / DirentSize // 32

	// RootInumber is the inode number of the root directory.
	RootInumber = 1

	// SmallFileMaxSize is the largest size addressable with only direct
	// i_addr entries.
	SmallFileMaxSize = AddrSmallLength * SectorSize // 4096

	// LargeFileMaxSize is the largest size addressable using 7 (not 8,
	// see design notes) indirect i_addr entries.
	LargeFileMaxSize = (AddrSmallLength - 1) * AddressesPerSector * SectorSize // 917504

	shortDirName = "DIR"
	shortFilName = "FIL"
)

// inode mode bits.
const (
	IAlloc uint16 = 0x8000
	IFmt   uint16 = 0x6000
	IFDir  uint16 = 0x4000
)
