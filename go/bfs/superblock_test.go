package bfs

import (
	"testing"

	"github.com/chzyer/test"
	"github.com/rgee3/p5-bfs/go/bio"
)

func TestSuperblock(t *testing.T) {
	defer test.New(t)

	blk := make([]byte, BlockSize)
	sb := NewSuperblock()
	test.Nil(bio.NewWriter(blk).WriteDisk(sb))

	{ // round trip
		got := new(Superblock)
		test.Nil(bio.NewReader(blk).ReadDisk(got))
		test.Equal(sb, got)
	}

	{ // geometry damage is caught by the checksum
		bad := make([]byte, BlockSize)
		copy(bad, blk)
		bad[8] ^= 0xff
		err := bio.NewReader(bad).ReadDisk(new(Superblock))
		test.Equal(err, ErrSuperChecksum)
	}

	{ // a non-BFS block 0 is rejected outright
		err := bio.NewReader(make([]byte, BlockSize)).ReadDisk(new(Superblock))
		test.Equal(err, ErrNotSuperblock)
	}
}
