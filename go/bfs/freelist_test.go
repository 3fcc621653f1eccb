package bfs

import (
	"testing"

	"github.com/chzyer/test"
)

func TestFreeList(t *testing.T) {
	defer test.New(t)

	dev := testDevice()
	fl := NewFreeList(dev)
	test.Nil(fl.Reset())

	{ // metadata is reserved, data is free
		for dbn := Dbn(0); dbn < DataStart; dbn++ {
			test.True(fl.InUse(dbn))
		}
		test.True(!fl.InUse(DataStart))
		test.Equal(fl.FreeCount(), DiskBlocks-DataStart)
	}

	{ // deterministic first fit
		dbn, err := fl.Allocate()
		test.Nil(err)
		test.Equal(dbn, Dbn(DataStart))
		dbn, err = fl.Allocate()
		test.Nil(err)
		test.Equal(dbn, Dbn(DataStart+1))
	}

	{ // release reissues the lowest block
		test.Nil(fl.Release(Dbn(DataStart)))
		dbn, err := fl.Allocate()
		test.Nil(err)
		test.Equal(dbn, Dbn(DataStart))
	}

	{ // double release and out-of-range release are rejected
		test.Equal(fl.Release(Dbn(DataStart+5)), ErrNotAlloced)
		test.Equal(fl.Release(Dbn(0)), ErrBadDbn)
		test.Equal(fl.Release(Dbn(DiskBlocks)), ErrBadDbn)
	}

	{ // the bitmap survives a reload
		fl2 := NewFreeList(dev)
		test.Nil(fl2.Load())
		test.True(fl2.InUse(Dbn(DataStart)))
		test.True(fl2.InUse(Dbn(DataStart + 1)))
		test.True(!fl2.InUse(Dbn(DataStart + 2)))
	}
}

func TestFreeListExhaustion(t *testing.T) {
	defer test.New(t)

	fl := NewFreeList(testDevice())
	test.Nil(fl.Reset())
	for i := 0; i < DiskBlocks-DataStart; i++ {
		_, err := fl.Allocate()
		test.Nil(err)
	}
	_, err := fl.Allocate()
	test.Equal(err, ErrNoFreeBlock)
}
