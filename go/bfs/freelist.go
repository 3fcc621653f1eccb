package bfs

import (
	"io"

	"github.com/chzyer/logex"
	"github.com/rgee3/p5-bfs/go/bio"
)

var (
	ErrNoFreeBlock = logex.Define("bfs: disk is out of free blocks")
	ErrBadDbn      = logex.Define("bfs: disk block number out of range")
	ErrNotAlloced  = logex.Define("bfs: disk block is not allocated")
)

// FreeList tracks block allocation in a bitmap resident in the
// [FreeStart, InodeStart) region. Bit set means in use. Metadata blocks are
// marked used at format time and never released.
type FreeList struct {
	dev  *bio.Device
	bits [DiskBlocks / 8]byte
}

func NewFreeList(dev *bio.Device) *FreeList {
	return &FreeList{dev: dev}
}

// Load reads the bitmap region. A short image reads as zeros.
func (f *FreeList) Load() error {
	blk := make([]byte, BlockSize)
	for b := 0; b < FreeBlocks; b++ {
		err := f.dev.ReadBlock(FreeStart+int32(b), blk)
		if err != nil && !logex.Equal(err, io.EOF) {
			return logex.Trace(err)
		}
		copy(f.bits[b*BlockSize:], blk)
	}
	return nil
}

// Reset marks every data block free and every metadata block used, then
// writes the bitmap out.
func (f *FreeList) Reset() error {
	f.bits = [DiskBlocks / 8]byte{}
	for dbn := int32(0); dbn < DataStart; dbn++ {
		f.set(dbn)
	}
	return logex.Trace(f.sync())
}

func (f *FreeList) set(dbn int32)   { f.bits[dbn>>3] |= 1 << uint(dbn&7) }
func (f *FreeList) clear(dbn int32) { f.bits[dbn>>3] &^= 1 << uint(dbn&7) }

func (f *FreeList) InUse(dbn Dbn) bool {
	return f.bits[dbn>>3]&(1<<uint(dbn&7)) != 0
}

func (f *FreeList) sync() error {
	blk := make([]byte, BlockSize)
	for b := 0; b < FreeBlocks; b++ {
		copy(blk, f.bits[b*BlockSize:])
		if err := f.dev.WriteBlock(FreeStart+int32(b), blk); err != nil {
			return logex.Trace(err)
		}
	}
	return nil
}

// Allocate claims the lowest-numbered free data block. Deterministic
// first-fit; fails only when the disk is exhausted.
func (f *FreeList) Allocate() (Dbn, error) {
	for dbn := int32(DataStart); dbn < DiskBlocks; dbn++ {
		if f.InUse(Dbn(dbn)) {
			continue
		}
		f.set(dbn)
		if err := f.sync(); err != nil {
			return 0, logex.Trace(err)
		}
		return Dbn(dbn), nil
	}
	return 0, ErrNoFreeBlock.Trace()
}

// Release returns a data block to the free list.
func (f *FreeList) Release(dbn Dbn) error {
	if dbn < DataStart || dbn >= DiskBlocks {
		return ErrBadDbn.Trace(dbn)
	}
	if !f.InUse(dbn) {
		return ErrNotAlloced.Trace(dbn)
	}
	f.clear(int32(dbn))
	return logex.Trace(f.sync())
}

func (f *FreeList) FreeCount() int {
	n := 0
	for dbn := int32(DataStart); dbn < DiskBlocks; dbn++ {
		if !f.InUse(Dbn(dbn)) {
			n++
		}
	}
	return n
}
