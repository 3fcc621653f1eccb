package bfs

import "github.com/chzyer/logex"

var (
	ErrTableFull     = logex.Define("bfs: open file table is full")
	ErrBadDescriptor = logex.Define("bfs: bad file descriptor")
)

// oftEntry is one open-file-table slot. A slot with refs == 0 is free.
// The cursor is shared by every descriptor open on the same inode.
type oftEntry struct {
	ino    int32
	refs   int32
	cursor int64
}

// FileTable is the in-memory open file table. A descriptor is an index
// into the slot array, valid while its entry is referenced.
type FileTable struct {
	slots [MaxOpenFiles]oftEntry
}

func NewFileTable() *FileTable {
	return &FileTable{}
}

// Acquire returns a descriptor for ino: the existing entry with its
// refcount bumped, or a fresh slot with cursor 0 and refcount 1.
func (t *FileTable) Acquire(ino int32) (int, error) {
	free := -1
	for fd := range t.slots {
		if t.slots[fd].refs == 0 {
			if free < 0 {
				free = fd
			}
			continue
		}
		if t.slots[fd].ino == ino {
			t.slots[fd].refs++
			return fd, nil
		}
	}
	if free < 0 {
		return -1, ErrTableFull.Trace()
	}
	t.slots[free] = oftEntry{ino: ino, refs: 1}
	return free, nil
}

// Release drops one reference. It reports whether the entry was reclaimed.
func (t *FileTable) Release(fd int) (bool, error) {
	ent, err := t.Get(fd)
	if err != nil {
		return false, err
	}
	ent.refs--
	if ent.refs > 0 {
		return false, nil
	}
	*ent = oftEntry{}
	return true, nil
}

func (t *FileTable) Get(fd int) (*oftEntry, error) {
	if fd < 0 || fd >= MaxOpenFiles || t.slots[fd].refs == 0 {
		return nil, ErrBadDescriptor.Trace(fd)
	}
	return &t.slots[fd], nil
}

// Lookup finds the descriptor already open on ino.
func (t *FileTable) Lookup(ino int32) (int, bool) {
	for fd := range t.slots {
		if t.slots[fd].refs > 0 && t.slots[fd].ino == ino {
			return fd, true
		}
	}
	return -1, false
}

// Len counts live entries.
func (t *FileTable) Len() int {
	n := 0
	for fd := range t.slots {
		if t.slots[fd].refs > 0 {
			n++
		}
	}
	return n
}
