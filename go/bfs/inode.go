package bfs

import (
	"io"

	"github.com/chzyer/logex"
	"github.com/rgee3/p5-bfs/go/bio"
)

var (
	ErrBadInum     = logex.Define("bfs: inode number out of range")
	ErrNoFreeInode = logex.Define("bfs: no free inode")
	ErrFileTooBig  = logex.Define("bfs: file cannot span more blocks than an inode holds")
	ErrBlockMapped = logex.Define("bfs: file block already has a disk block")
)

// Dbn is a physical disk block number. The zero value marks a hole: block 0
// holds the superblock, so no file data can ever live there.
type Dbn int32

func (d Dbn) IsEmpty() bool {
	return d == 0
}

const inodeUsed = 1 << 0

// Inode is one 128-byte slot of the inode table: flags, logical byte size
// and the ordered disk blocks backing the file, indexed by file block
// number. An empty slot is all zeros.
type Inode struct {
	Flags  int32
	Size   int32
	Blocks [NumDirect]Dbn
}

func (n *Inode) DiskSize() int {
	return InodeSize
}

func (n *Inode) Used() bool {
	return n.Flags&inodeUsed != 0
}

func (n *Inode) ReadDisk(r *bio.Reader) error {
	n.Flags = r.Int32()
	n.Size = r.Int32()
	for i := 0; i < len(n.Blocks); i++ {
		n.Blocks[i] = Dbn(r.Int32())
	}
	return nil
}

func (n *Inode) WriteDisk(w *bio.Writer) {
	w.Int32(n.Flags)
	w.Int32(n.Size)
	for i := 0; i < len(n.Blocks); i++ {
		w.Int32(int32(n.Blocks[i]))
	}
}

// InodeTable mirrors the on-disk inode region. Every mutation is written
// back to the affected block before it returns.
type InodeTable struct {
	dev   *bio.Device
	nodes [MaxInodes]Inode
}

func NewInodeTable(dev *bio.Device) *InodeTable {
	return &InodeTable{dev: dev}
}

// Load reads the inode region. A short image reads as zeros, which decodes
// to an empty table.
func (t *InodeTable) Load() error {
	blk := make([]byte, BlockSize)
	for b := 0; b < InodeBlocks; b++ {
		err := t.dev.ReadBlock(InodeStart+int32(b), blk)
		if err != nil && !logex.Equal(err, io.EOF) {
			return logex.Trace(err)
		}
		r := bio.NewReader(blk)
		for i := 0; i < inodesPerBlock; i++ {
			ino := b*inodesPerBlock + i
			if err := r.ReadDisk(&t.nodes[ino]); err != nil {
				return logex.Trace(err)
			}
		}
	}
	return nil
}

// sync writes back the block holding inode ino.
func (t *InodeTable) sync(ino int32) error {
	blk := make([]byte, BlockSize)
	w := bio.NewWriter(blk)
	first := ino / inodesPerBlock * inodesPerBlock
	for i := first; i < first+inodesPerBlock; i++ {
		w.WriteDisk(&t.nodes[i])
	}
	return t.dev.WriteBlock(InodeStart+ino/inodesPerBlock, blk)
}

func (t *InodeTable) Get(ino int32) (*Inode, error) {
	if ino < 0 || ino >= MaxInodes {
		return nil, ErrBadInum.Trace(ino)
	}
	return &t.nodes[ino], nil
}

// Alloc claims the lowest-numbered free inode slot: size 0, no blocks.
func (t *InodeTable) Alloc() (int32, error) {
	for ino := int32(0); ino < MaxInodes; ino++ {
		if t.nodes[ino].Used() {
			continue
		}
		t.nodes[ino] = Inode{Flags: inodeUsed}
		if err := t.sync(ino); err != nil {
			return -1, logex.Trace(err)
		}
		return ino, nil
	}
	return -1, ErrNoFreeInode.Trace()
}

// Free zeroes the slot. Releasing its disk blocks is the caller's job.
func (t *InodeTable) Free(ino int32) error {
	if _, err := t.Get(ino); err != nil {
		return err
	}
	t.nodes[ino] = Inode{}
	return logex.Trace(t.sync(ino))
}

// MapBlock resolves a file block number to its disk block. An empty Dbn
// means the block was never allocated: a hole, read as zeros.
func (t *InodeTable) MapBlock(ino, fbn int32) (Dbn, error) {
	node, err := t.Get(ino)
	if err != nil {
		return 0, err
	}
	if fbn < 0 || fbn >= NumDirect {
		return 0, ErrFileTooBig.Trace(fbn)
	}
	return node.Blocks[fbn], nil
}

// SetBlock records a freshly allocated disk block for file block fbn. The
// slot must be a hole.
func (t *InodeTable) SetBlock(ino, fbn int32, dbn Dbn) error {
	node, err := t.Get(ino)
	if err != nil {
		return err
	}
	if fbn < 0 || fbn >= NumDirect {
		return ErrFileTooBig.Trace(fbn)
	}
	if !node.Blocks[fbn].IsEmpty() {
		return ErrBlockMapped.Trace(ino, fbn)
	}
	node.Blocks[fbn] = dbn
	return logex.Trace(t.sync(ino))
}

func (t *InodeTable) SetSize(ino, size int32) error {
	node, err := t.Get(ino)
	if err != nil {
		return err
	}
	node.Size = size
	return logex.Trace(t.sync(ino))
}

// Extend checks that file block targetFbn is writable for ino. Intermediate
// blocks stay holes; they are allocated lazily on first write.
func (t *InodeTable) Extend(ino, targetFbn int32) error {
	if _, err := t.Get(ino); err != nil {
		return err
	}
	if targetFbn < 0 || targetFbn >= NumDirect {
		return ErrFileTooBig.Trace(targetFbn)
	}
	return nil
}
