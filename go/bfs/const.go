package bfs

// Disk geometry. The layout is fixed at compile time and recorded in the
// superblock at format time:
//
//	block 0                  superblock
//	[FreeStart, InodeStart)  free-block bitmap
//	[InodeStart, DirStart)   inode table
//	[DirStart, DataStart)    directory
//	[DataStart, DiskBlocks)  data, managed by the free list
const (
	BlockBit   = 9
	BlockSize  = 1 << BlockBit
	DiskBlocks = 1024
	DiskBytes  = DiskBlocks * BlockSize

	MaxInodes    = 64
	NumDirect    = 30 // block pointers per inode
	InodeSize    = 128
	MaxFileBytes = NumDirect * BlockSize

	MaxEntries = 64 // directory capacity
	MaxNameLen = 24
	DirEntSize = 32

	MaxOpenFiles = 32

	SuperDbn    = 0
	FreeStart   = 1
	FreeBlocks  = (DiskBlocks/8 + BlockSize - 1) / BlockSize
	InodeStart  = FreeStart + FreeBlocks
	InodeBlocks = MaxInodes * InodeSize / BlockSize
	DirStart    = InodeStart + InodeBlocks
	DirBlocks   = MaxEntries * DirEntSize / BlockSize
	DataStart   = DirStart + DirBlocks

	inodesPerBlock = BlockSize / InodeSize
	entsPerBlock   = BlockSize / DirEntSize
)
