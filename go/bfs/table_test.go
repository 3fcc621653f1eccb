package bfs

import (
	"testing"

	"github.com/chzyer/test"
)

func TestFileTable(t *testing.T) {
	defer test.New(t)

	ft := NewFileTable()

	{ // two opens of one inode share a single refcounted entry
		fd1, err := ft.Acquire(7)
		test.Nil(err)
		fd2, err := ft.Acquire(7)
		test.Nil(err)
		test.Equal(fd1, fd2)
		test.Equal(ft.Len(), 1)

		closed, err := ft.Release(fd1)
		test.Nil(err)
		test.True(!closed)

		// still open for the second descriptor
		ent, err := ft.Get(fd2)
		test.Nil(err)
		test.Equal(ent.ino, int32(7))

		closed, err = ft.Release(fd2)
		test.Nil(err)
		test.True(closed)
		test.Equal(ft.Len(), 0)
	}

	{ // a reclaimed descriptor is invalid until reassigned
		fd, err := ft.Acquire(1)
		test.Nil(err)
		_, err = ft.Release(fd)
		test.Nil(err)
		_, err = ft.Get(fd)
		test.Equal(err, ErrBadDescriptor)
		_, err = ft.Release(fd)
		test.Equal(err, ErrBadDescriptor)
	}

	{ // distinct inodes get distinct entries
		fd1, err := ft.Acquire(1)
		test.Nil(err)
		fd2, err := ft.Acquire(2)
		test.Nil(err)
		test.NotEqual(fd1, fd2)

		fd, found := ft.Lookup(2)
		test.True(found)
		test.Equal(fd, fd2)
		_, found = ft.Lookup(3)
		test.True(!found)

		_, err = ft.Release(fd1)
		test.Nil(err)
		_, err = ft.Release(fd2)
		test.Nil(err)
	}

	{ // out-of-range descriptors
		_, err := ft.Get(-1)
		test.Equal(err, ErrBadDescriptor)
		_, err = ft.Get(MaxOpenFiles)
		test.Equal(err, ErrBadDescriptor)
	}
}

func TestFileTableFull(t *testing.T) {
	defer test.New(t)

	ft := NewFileTable()
	for ino := int32(0); ino < MaxOpenFiles; ino++ {
		_, err := ft.Acquire(ino)
		test.Nil(err)
	}
	_, err := ft.Acquire(MaxOpenFiles)
	test.Equal(err, ErrTableFull)

	// an open of an already-open inode still succeeds on a full table
	fd, err := ft.Acquire(3)
	test.Nil(err)
	test.Equal(ft.slots[fd].refs, int32(2))
}
