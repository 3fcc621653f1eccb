package bfs

import (
	"fmt"

	"github.com/chzyer/logex"
	"github.com/rgee3/p5-bfs/go/bio"
)

// FsckReport is the outcome of a consistency check. Problems is empty for
// a clean image.
type FsckReport struct {
	Files      int
	UsedBlocks int
	FreeBlocks int
	Problems   []string
}

func (r *FsckReport) Clean() bool {
	return len(r.Problems) == 0
}

func (r *FsckReport) String() string {
	ret := fmt.Sprintf("files: %v, used blocks: %v, free blocks: %v",
		r.Files, r.UsedBlocks, r.FreeBlocks)
	for _, p := range r.Problems {
		ret += "\n" + p
	}
	return ret
}

func (r *FsckReport) addf(format string, args ...interface{}) {
	r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
}

// Fsck checks the structural invariants of an image: superblock magic,
// checksum and geometry, allocation uniqueness across inodes, bitmap
// agreement, and directory entries resolving to live inodes. Mount never
// runs these checks; this is the explicit way to ask for them.
func Fsck(raw bio.RawDisker) (*FsckReport, error) {
	dev := bio.NewDevice(raw, BlockBit)
	report := new(FsckReport)

	checkSuperblock(dev, report)

	inodes := NewInodeTable(dev)
	if err := inodes.Load(); err != nil {
		return nil, logex.Trace(err)
	}
	free := NewFreeList(dev)
	if err := free.Load(); err != nil {
		return nil, logex.Trace(err)
	}
	dir := NewDirectory(dev)
	if err := dir.Load(); err != nil {
		return nil, logex.Trace(err)
	}

	for dbn := Dbn(0); dbn < DataStart; dbn++ {
		if !free.InUse(dbn) {
			report.addf("metadata block %v is not reserved in the bitmap", dbn)
		}
	}

	owner := make(map[Dbn]int32)
	for ino := int32(0); ino < MaxInodes; ino++ {
		node := &inodes.nodes[ino]
		if !node.Used() {
			continue
		}
		allocated := 0
		for fbn, dbn := range node.Blocks {
			if dbn.IsEmpty() {
				continue
			}
			allocated++
			if dbn < DataStart || dbn >= DiskBlocks {
				report.addf("inode %v block %v points outside the data region: %v",
					ino, fbn, dbn)
				continue
			}
			if prev, dup := owner[dbn]; dup {
				report.addf("block %v is owned by both inode %v and inode %v",
					dbn, prev, ino)
			}
			owner[dbn] = ino
			if !free.InUse(dbn) {
				report.addf("block %v of inode %v is marked free in the bitmap",
					dbn, ino)
			}
		}
		blocks := (int(node.Size) + BlockSize - 1) / BlockSize
		if blocks > NumDirect {
			report.addf("inode %v size %v exceeds the inode capacity", ino, node.Size)
		}
	}
	report.UsedBlocks = len(owner)
	report.FreeBlocks = free.FreeCount()

	seen := make(map[string]bool)
	for i := range dir.ents {
		ent := &dir.ents[i]
		if !ent.InUse() {
			continue
		}
		report.Files++
		name := ent.GetName()
		if seen[name] {
			report.addf("duplicate directory entry %q", name)
		}
		seen[name] = true
		if ent.Ino < 0 || ent.Ino >= MaxInodes {
			report.addf("entry %q has inode number %v out of range", name, ent.Ino)
			continue
		}
		if !inodes.nodes[ent.Ino].Used() {
			report.addf("entry %q points at unused inode %v", name, ent.Ino)
		}
	}

	return report, nil
}

func checkSuperblock(dev *bio.Device, report *FsckReport) {
	blk := make([]byte, BlockSize)
	if err := dev.ReadBlock(SuperDbn, blk); err != nil {
		report.addf("superblock unreadable: %v", err)
		return
	}
	sb := new(Superblock)
	if err := sb.ReadDisk(bio.NewReader(blk)); err != nil {
		report.addf("superblock: %v", err)
		return
	}
	want := NewSuperblock()
	if *sb != *want {
		report.addf("superblock geometry %+v does not match this build %+v", sb, want)
	}
}
