package bfs

import (
	"strings"
	"testing"

	"github.com/chzyer/flow"
	"github.com/chzyer/test"
	"github.com/rgee3/p5-bfs/go/bio"
)

func TestFsckClean(t *testing.T) {
	defer test.New(t)

	md := test.NewMemDisk()
	test.Nil(Format(md))

	report, err := Fsck(md)
	test.Nil(err)
	test.True(report.Clean())
	test.Equal(report.Files, 0)
	test.Equal(report.UsedBlocks, 0)
	test.Equal(report.FreeBlocks, DiskBlocks-DataStart)
}

func TestFsckFindsDamage(t *testing.T) {
	defer test.New(t)

	md := test.NewMemDisk()
	test.Nil(Format(md))
	vol, err := NewVolume(flow.New(), md)
	test.Nil(err)

	fd, err := vol.Create("f1")
	test.Nil(err)
	test.Nil(vol.Write(fd, make([]byte, 2*BlockSize)))
	test.Nil(vol.CloseFile(fd))

	// cross-link: a second inode claiming one of f1's blocks
	ino, err := vol.inodes.Alloc()
	test.Nil(err)
	node, err := vol.inodes.Get(0)
	test.Nil(err)
	test.Nil(vol.inodes.SetBlock(ino, 0, node.Blocks[0]))

	// a directory entry pointing at an unused inode slot
	idx, ok := vol.dir.FreeSlot()
	test.True(ok)
	test.Nil(vol.dir.Put(idx, "ghost", MaxInodes-1))
	vol.Close()

	report, err := Fsck(md)
	test.Nil(err)
	test.True(!report.Clean())

	var crossLink, ghost bool
	for _, p := range report.Problems {
		if strings.Contains(p, "owned by both") {
			crossLink = true
		}
		if strings.Contains(p, "unused inode") {
			ghost = true
		}
	}
	test.True(crossLink)
	test.True(ghost)
}

func TestFsckBadSuperblock(t *testing.T) {
	defer test.New(t)

	md := test.NewMemDisk()
	test.Nil(Format(md))

	// flip one geometry byte in block 0
	blk := make([]byte, BlockSize)
	dev := bio.NewDevice(md, BlockBit)
	test.Nil(dev.ReadBlock(SuperDbn, blk))
	blk[10] ^= 0xff
	test.Nil(dev.WriteBlock(SuperDbn, blk))

	report, err := Fsck(md)
	test.Nil(err)
	test.True(!report.Clean())
}
