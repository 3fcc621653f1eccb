package bfs

import (
	"testing"

	"github.com/chzyer/test"
	"github.com/rgee3/p5-bfs/go/bio"
)

func testDevice() *bio.Device {
	return bio.NewDevice(test.NewMemDisk(), BlockBit)
}

func TestInodeTable(t *testing.T) {
	defer test.New(t)

	dev := testDevice()
	it := NewInodeTable(dev)
	test.Nil(it.Load())

	{ // allocation is lowest-slot first and persists
		ino, err := it.Alloc()
		test.Nil(err)
		test.Equal(ino, int32(0))
		ino, err = it.Alloc()
		test.Nil(err)
		test.Equal(ino, int32(1))

		it2 := NewInodeTable(dev)
		test.Nil(it2.Load())
		node, err := it2.Get(0)
		test.Nil(err)
		test.True(node.Used())
		test.Equal(node.Size, int32(0))
	}

	{ // block mapping: holes until set, set-once after
		dbn, err := it.MapBlock(0, 3)
		test.Nil(err)
		test.True(dbn.IsEmpty())

		test.Nil(it.SetBlock(0, 3, Dbn(DataStart)))
		dbn, err = it.MapBlock(0, 3)
		test.Nil(err)
		test.Equal(dbn, Dbn(DataStart))

		err = it.SetBlock(0, 3, Dbn(DataStart+1))
		test.Equal(err, ErrBlockMapped)
	}

	{ // extend is a bounds check only, it allocates nothing
		test.Nil(it.Extend(0, NumDirect-1))
		test.Equal(it.Extend(0, NumDirect), ErrFileTooBig)
		dbn, err := it.MapBlock(0, NumDirect-1)
		test.Nil(err)
		test.True(dbn.IsEmpty())
	}

	{ // size updates write through
		test.Nil(it.SetSize(1, 777))
		it2 := NewInodeTable(dev)
		test.Nil(it2.Load())
		node, err := it2.Get(1)
		test.Nil(err)
		test.Equal(node.Size, int32(777))
	}

	{ // free clears the slot and makes it reusable
		test.Nil(it.Free(0))
		node, err := it.Get(0)
		test.Nil(err)
		test.True(!node.Used())
		ino, err := it.Alloc()
		test.Nil(err)
		test.Equal(ino, int32(0))
	}

	{ // bad inode numbers
		_, err := it.Get(MaxInodes)
		test.Equal(err, ErrBadInum)
		_, err = it.MapBlock(-1, 0)
		test.Equal(err, ErrBadInum)
	}
}

func TestInodeExhaustion(t *testing.T) {
	defer test.New(t)

	it := NewInodeTable(testDevice())
	test.Nil(it.Load())
	for i := 0; i < MaxInodes; i++ {
		_, err := it.Alloc()
		test.Nil(err)
	}
	_, err := it.Alloc()
	test.Equal(err, ErrNoFreeInode)
}
