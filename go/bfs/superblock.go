package bfs

import (
	"github.com/chzyer/logex"
	"github.com/klauspost/crc32"
	"github.com/rgee3/p5-bfs/go/bio"
)

var SuperblockMagic = []byte{0x42, 0x46, 0x53, 0x31} // "BFS1"

var (
	ErrNotSuperblock = logex.Define("bfs: superblock magic mismatch")
	ErrSuperChecksum = logex.Define("bfs: superblock checksum mismatch")
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Superblock occupies block 0. It is written once at format time and never
// mutated afterwards; mount does not read it back, only Fsck does.
type Superblock struct {
	Version    int32
	BlockBit   int32
	DiskBlocks int32
	FreeStart  int32
	InodeStart int32
	DirStart   int32
	DataStart  int32
	MaxInodes  int32
	MaxEntries int32
}

func NewSuperblock() *Superblock {
	return &Superblock{
		Version:    1,
		BlockBit:   BlockBit,
		DiskBlocks: DiskBlocks,
		FreeStart:  FreeStart,
		InodeStart: InodeStart,
		DirStart:   DirStart,
		DataStart:  DataStart,
		MaxInodes:  MaxInodes,
		MaxEntries: MaxEntries,
	}
}

func (s *Superblock) DiskSize() int {
	return BlockSize
}

const superFieldSize = 9 * 4

func (s *Superblock) writeFields(w *bio.Writer) {
	w.Int32(s.Version)
	w.Int32(s.BlockBit)
	w.Int32(s.DiskBlocks)
	w.Int32(s.FreeStart)
	w.Int32(s.InodeStart)
	w.Int32(s.DirStart)
	w.Int32(s.DataStart)
	w.Int32(s.MaxInodes)
	w.Int32(s.MaxEntries)
}

// sum is a CRC-32C over the geometry fields, stored right after them.
func (s *Superblock) sum() int32 {
	buf := make([]byte, superFieldSize)
	s.writeFields(bio.NewWriter(buf))
	return int32(crc32.Checksum(buf, castagnoli))
}

func (s *Superblock) WriteDisk(w *bio.Writer) {
	w.Byte(SuperblockMagic)
	s.writeFields(w)
	w.Int32(s.sum())
}

func (s *Superblock) ReadDisk(r *bio.Reader) error {
	if !r.Verify(SuperblockMagic) {
		return ErrNotSuperblock.Trace()
	}
	s.Version = r.Int32()
	s.BlockBit = r.Int32()
	s.DiskBlocks = r.Int32()
	s.FreeStart = r.Int32()
	s.InodeStart = r.Int32()
	s.DirStart = r.Int32()
	s.DataStart = r.Int32()
	s.MaxInodes = r.Int32()
	s.MaxEntries = r.Int32()
	if r.Int32() != s.sum() {
		return ErrSuperChecksum.Trace()
	}
	return nil
}
