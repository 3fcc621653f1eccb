package bfs

import (
	"io"
	"os"

	"github.com/chzyer/flow"
	"github.com/chzyer/logex"
	"github.com/rgee3/p5-bfs/go/bio"
)

var (
	ErrNoDisk     = logex.Define("bfs: disk image not found")
	ErrDiskCreate = logex.Define("bfs: cannot create disk image")
	ErrByteCount  = logex.Define("bfs: byte count must be positive")
	ErrBadCursor  = logex.Define("bfs: cursor cannot be negative")
	ErrBadWhence  = logex.Define("bfs: unrecognized whence")
	ErrNotMounted = logex.Define("bfs: volume is not mounted")
)

// Volume is a mounted BFS image: the inode table, free list, directory and
// open file table over one block device. All metadata mutations are written
// through immediately; a single logical actor is assumed, so there is no
// locking discipline.
type Volume struct {
	flow   *flow.Flow
	dev    *bio.Device
	inodes *InodeTable
	free   *FreeList
	dir    *Directory
	oft    *FileTable
	state  volumeState
	closer io.Closer
}

// Format lays down a fresh filesystem on raw: superblock, zeroed inode
// table, zeroed directory, reset free list. Any failure aborts the whole
// format; no partial-format state is valid.
func Format(raw bio.RawDisker) error {
	dev := bio.NewDevice(raw, BlockBit)

	blk := make([]byte, BlockSize)
	w := bio.NewWriter(blk)
	if err := w.WriteDisk(NewSuperblock()); err != nil {
		return logex.Trace(err)
	}
	if err := dev.WriteBlock(SuperDbn, blk); err != nil {
		return logex.Trace(err)
	}

	zero := make([]byte, BlockSize)
	for b := int32(InodeStart); b < InodeStart+InodeBlocks; b++ {
		if err := dev.WriteBlock(b, zero); err != nil {
			return logex.Trace(err)
		}
	}
	for b := int32(DirStart); b < DirStart+DirBlocks; b++ {
		if err := dev.WriteBlock(b, zero); err != nil {
			return logex.Trace(err)
		}
	}

	return logex.Trace(NewFreeList(dev).Reset())
}

// FormatImage destroys and recreates the image at path, then formats it.
func FormatImage(path string) error {
	f, err := bio.CreateImage(path, DiskBytes)
	if err != nil {
		return ErrDiskCreate.Trace(path, err)
	}
	defer f.Close()
	return logex.Trace(Format(f))
}

// NewVolume mounts raw. The regions are read as they are; nothing is
// validated, mounting a non-BFS image succeeds and later operations on it
// are undefined. Use Fsck for explicit checking.
func NewVolume(f *flow.Flow, raw bio.RawDisker) (*Volume, error) {
	vol := &Volume{
		dev: bio.NewDevice(raw, BlockBit),
		oft: NewFileTable(),
	}
	vol.inodes = NewInodeTable(vol.dev)
	vol.free = NewFreeList(vol.dev)
	vol.dir = NewDirectory(vol.dev)

	if err := vol.init(); err != nil {
		return nil, logex.Trace(err)
	}
	vol.state.Set(volumeMounted)
	f.ForkTo(&vol.flow, vol.Close)
	return vol, nil
}

func (v *Volume) init() error {
	if err := v.inodes.Load(); err != nil {
		return logex.Trace(err)
	}
	if err := v.free.Load(); err != nil {
		return logex.Trace(err)
	}
	if err := v.dir.Load(); err != nil {
		return logex.Trace(err)
	}
	return nil
}

// MountImage mounts the image at path, which must already exist.
func MountImage(f *flow.Flow, path string) (*Volume, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, ErrNoDisk.Trace(path)
	}
	fd, err := bio.OpenImage(path)
	if err != nil {
		return nil, logex.Trace(err)
	}
	vol, err := NewVolume(f, fd)
	if err != nil {
		fd.Close()
		return nil, logex.Trace(err)
	}
	vol.closer = fd
	return vol, nil
}

func (v *Volume) Close() {
	if !v.state.Set(volumeClosed) {
		return
	}
	if v.closer != nil {
		if err := v.closer.Close(); err != nil {
			logex.Error("close image:", err)
		}
	}
	if v.flow != nil {
		if !v.flow.MarkExit() {
			return
		}
		v.flow.Close()
	}
}

func (v *Volume) ready() error {
	if !v.state.After(volumeMounted) || v.state.After(volumeClosed) {
		return ErrNotMounted.Trace()
	}
	return nil
}

// Create makes the file called name and opens it. An existing file is
// overwritten: a fresh inode replaces it and its blocks go back to the
// free list.
func (v *Volume) Create(name string) (int, error) {
	if err := v.ready(); err != nil {
		return -1, err
	}
	ino, err := v.createFile(name)
	if err != nil {
		return -1, logex.Trace(err)
	}
	return v.oft.Acquire(ino)
}

func (v *Volume) createFile(name string) (int32, error) {
	if err := checkName(name); err != nil {
		return -1, err
	}
	idx, old, found := v.dir.Find(name)
	if !found {
		var ok bool
		idx, ok = v.dir.FreeSlot()
		if !ok {
			return -1, ErrDirFull.Trace(name)
		}
	}
	ino, err := v.inodes.Alloc()
	if err != nil {
		return -1, logex.Trace(err)
	}
	if found {
		if err := v.releaseInode(old); err != nil {
			return -1, logex.Trace(err)
		}
	}
	if err := v.dir.Put(idx, name, ino); err != nil {
		return -1, logex.Trace(err)
	}
	return ino, nil
}

// releaseInode frees the slot and returns its blocks to the free list.
func (v *Volume) releaseInode(ino int32) error {
	node, err := v.inodes.Get(ino)
	if err != nil {
		return err
	}
	for _, dbn := range node.Blocks {
		if dbn.IsEmpty() {
			continue
		}
		if err := v.free.Release(dbn); err != nil {
			return logex.Trace(err)
		}
	}
	return logex.Trace(v.inodes.Free(ino))
}

// Open opens the existing file called name.
func (v *Volume) Open(name string) (int, error) {
	if err := v.ready(); err != nil {
		return -1, err
	}
	ino, err := v.dir.Lookup(name)
	if err != nil {
		return -1, err
	}
	return v.oft.Acquire(ino)
}

// CloseFile drops one reference to fd; the entry is reclaimed when the
// last reference goes.
func (v *Volume) CloseFile(fd int) error {
	_, err := v.oft.Release(fd)
	return err
}

// Seek repositions the cursor. Seeking past end of file is allowed and
// allocates nothing; a later write is what extends the file.
func (v *Volume) Seek(fd int, offset int64, whence int) (int64, error) {
	ent, err := v.oft.Get(fd)
	if err != nil {
		return 0, err
	}
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = ent.cursor
	case io.SeekEnd:
		node, err := v.inodes.Get(ent.ino)
		if err != nil {
			return 0, err
		}
		base = int64(node.Size)
	default:
		return 0, ErrBadWhence.Trace(whence)
	}
	cursor := base + offset
	if cursor < 0 {
		return 0, ErrBadCursor.Trace(cursor)
	}
	ent.cursor = cursor
	return cursor, nil
}

// Tell returns the cursor of fd.
func (v *Volume) Tell(fd int) (int64, error) {
	ent, err := v.oft.Get(fd)
	if err != nil {
		return 0, err
	}
	return ent.cursor, nil
}

// FileSize returns the logical byte length of the file open on fd.
func (v *Volume) FileSize(fd int) (int64, error) {
	ent, err := v.oft.Get(fd)
	if err != nil {
		return 0, err
	}
	node, err := v.inodes.Get(ent.ino)
	if err != nil {
		return 0, err
	}
	return int64(node.Size), nil
}

// List names every file, in directory slot order.
func (v *Volume) List() []string {
	return v.dir.Names()
}

// Read copies up to len(b) bytes at the cursor into b and advances the
// cursor by the bytes read. Holes read as zeros. At end of file it returns
// 0 with no error and the cursor stays put.
func (v *Volume) Read(fd int, b []byte) (int, error) {
	if len(b) == 0 {
		return 0, ErrByteCount.Trace()
	}
	ent, err := v.oft.Get(fd)
	if err != nil {
		return 0, err
	}
	node, err := v.inodes.Get(ent.ino)
	if err != nil {
		return 0, err
	}

	toRead := int64(len(b))
	if ent.cursor+toRead > int64(node.Size) {
		toRead = int64(node.Size) - ent.cursor
	}
	if toRead <= 0 {
		return 0, nil
	}

	var done int64
	fbn := int32(ent.cursor >> BlockBit)
	off := int(ent.cursor & (BlockSize - 1))
	blk := make([]byte, BlockSize)
	for done < toRead {
		dbn, err := v.inodes.MapBlock(ent.ino, fbn)
		if err != nil {
			return int(done), logex.Trace(err)
		}
		if dbn.IsEmpty() {
			for i := range blk {
				blk[i] = 0
			}
		} else if err := v.readBlock(dbn, blk); err != nil {
			return int(done), logex.Trace(err)
		}
		n := BlockSize - off
		if int64(n) > toRead-done {
			n = int(toRead - done)
		}
		copy(b[done:], blk[off:off+n])
		done += int64(n)
		off = 0
		fbn++
	}
	ent.cursor += done
	return int(done), nil
}

// readBlock tolerates a short image: the tail reads as zeros.
func (v *Volume) readBlock(dbn Dbn, blk []byte) error {
	err := v.dev.ReadBlock(int32(dbn), blk)
	if err != nil && !logex.Equal(err, io.EOF) {
		return logex.Trace(err)
	}
	return nil
}

// Write stores len(b) bytes at the cursor, extending the file and
// allocating blocks as needed, and advances the cursor. The write either
// completes fully or fails.
func (v *Volume) Write(fd int, b []byte) error {
	if len(b) == 0 {
		return ErrByteCount.Trace()
	}
	ent, err := v.oft.Get(fd)
	if err != nil {
		return err
	}
	node, err := v.inodes.Get(ent.ino)
	if err != nil {
		return err
	}

	cursor := ent.cursor
	size := int64(node.Size)
	n := int64(len(b))

	if cursor+n > size {
		if err := v.inodes.Extend(ent.ino, int32((cursor+n-1)>>BlockBit)); err != nil {
			return logex.Trace(err)
		}
		if cursor > size {
			if err := v.zeroFillGap(ent.ino, size, cursor); err != nil {
				return logex.Trace(err)
			}
		}
		if err := v.inodes.SetSize(ent.ino, int32(cursor+n)); err != nil {
			return logex.Trace(err)
		}
	}

	written := 0
	fbn := int32(cursor >> BlockBit)
	off := int(cursor & (BlockSize - 1))
	blk := make([]byte, BlockSize)
	for written < len(b) {
		cnt := BlockSize - off
		if cnt > len(b)-written {
			cnt = len(b) - written
		}
		dbn, err := v.inodes.MapBlock(ent.ino, fbn)
		if err != nil {
			return logex.Trace(err)
		}
		if dbn.IsEmpty() {
			// brand-new block, nothing on disk worth preserving
			if dbn, err = v.allocBlock(ent.ino, fbn); err != nil {
				return logex.Trace(err)
			}
			for i := range blk {
				blk[i] = 0
			}
		} else if off != 0 || cnt < BlockSize {
			// partial overwrite, keep the untouched bytes
			if err := v.readBlock(dbn, blk); err != nil {
				return logex.Trace(err)
			}
		}
		copy(blk[off:], b[written:written+cnt])
		if err := v.dev.WriteBlock(int32(dbn), blk); err != nil {
			return logex.Trace(err)
		}
		written += cnt
		off = 0
		fbn++
	}
	ent.cursor = cursor + int64(written)
	return nil
}

// zeroFillGap writes zero blocks over every whole block lying strictly
// between the old size and the cursor, allocating holes as it goes.
// Partial blocks at either edge are left alone: the old tail block was
// zero-padded when it was first written, and the block under the cursor is
// handled by the write loop.
func (v *Volume) zeroFillGap(ino int32, size, cursor int64) error {
	zero := make([]byte, BlockSize)
	first := int32((size + BlockSize - 1) >> BlockBit)
	for fbn := first; int64(fbn+1)<<BlockBit <= cursor; fbn++ {
		dbn, err := v.inodes.MapBlock(ino, fbn)
		if err != nil {
			return logex.Trace(err)
		}
		if dbn.IsEmpty() {
			if dbn, err = v.allocBlock(ino, fbn); err != nil {
				return logex.Trace(err)
			}
		}
		if err := v.dev.WriteBlock(int32(dbn), zero); err != nil {
			return logex.Trace(err)
		}
	}
	return nil
}

// allocBlock claims the lowest free data block and maps it at fbn.
func (v *Volume) allocBlock(ino, fbn int32) (Dbn, error) {
	dbn, err := v.free.Allocate()
	if err != nil {
		return 0, logex.Trace(err)
	}
	if err := v.inodes.SetBlock(ino, fbn, dbn); err != nil {
		return 0, logex.Trace(err)
	}
	return dbn, nil
}
