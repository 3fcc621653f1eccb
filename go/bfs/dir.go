package bfs

import (
	"bytes"
	"io"

	"github.com/chzyer/logex"
	"github.com/rgee3/p5-bfs/go/bio"
)

var (
	ErrFileNotFound = logex.Define("bfs: file not found")
	ErrDirFull      = logex.Define("bfs: directory is full")
	ErrBadFileName  = logex.Define("bfs: file name must be 1 to 24 bytes")
)

// DirEntry is one 32-byte slot of the directory region. A slot with an
// empty name is free.
type DirEntry struct {
	Name [MaxNameLen]byte
	Ino  int32
}

func (e *DirEntry) DiskSize() int {
	return DirEntSize
}

func (e *DirEntry) InUse() bool {
	return e.Name[0] != 0
}

func (e *DirEntry) GetName() string {
	name := e.Name[:]
	if idx := bytes.IndexByte(name, 0); idx >= 0 {
		name = name[:idx]
	}
	return string(name)
}

func (e *DirEntry) ReadDisk(r *bio.Reader) error {
	copy(e.Name[:], r.Byte(MaxNameLen))
	e.Ino = r.Int32()
	r.Skip(4)
	return nil
}

func (e *DirEntry) WriteDisk(w *bio.Writer) {
	w.Byte(e.Name[:])
	w.Int32(e.Ino)
	w.Skip(4)
}

// Directory is the flat name table: one entry per file, no nesting. Lookups
// are a linear scan over the fixed-capacity slot array; mutations write
// back the touched block only.
type Directory struct {
	dev  *bio.Device
	ents [MaxEntries]DirEntry
}

func NewDirectory(dev *bio.Device) *Directory {
	return &Directory{dev: dev}
}

func checkName(name string) error {
	if len(name) == 0 || len(name) > MaxNameLen {
		return ErrBadFileName.Trace(name)
	}
	return nil
}

// Load reads the directory region. A short image reads as zeros.
func (d *Directory) Load() error {
	blk := make([]byte, BlockSize)
	for b := 0; b < DirBlocks; b++ {
		err := d.dev.ReadBlock(DirStart+int32(b), blk)
		if err != nil && !logex.Equal(err, io.EOF) {
			return logex.Trace(err)
		}
		r := bio.NewReader(blk)
		for i := 0; i < entsPerBlock; i++ {
			if err := r.ReadDisk(&d.ents[b*entsPerBlock+i]); err != nil {
				return logex.Trace(err)
			}
		}
	}
	return nil
}

// sync writes back the block holding entry idx.
func (d *Directory) sync(idx int) error {
	blk := make([]byte, BlockSize)
	w := bio.NewWriter(blk)
	first := idx / entsPerBlock * entsPerBlock
	for i := first; i < first+entsPerBlock; i++ {
		w.WriteDisk(&d.ents[i])
	}
	return d.dev.WriteBlock(DirStart+int32(idx/entsPerBlock), blk)
}

// Find scans for name and returns its slot and inode number.
func (d *Directory) Find(name string) (idx int, ino int32, found bool) {
	for i := range d.ents {
		if d.ents[i].InUse() && d.ents[i].GetName() == name {
			return i, d.ents[i].Ino, true
		}
	}
	return -1, -1, false
}

// Lookup resolves name to an inode number.
func (d *Directory) Lookup(name string) (int32, error) {
	if err := checkName(name); err != nil {
		return -1, err
	}
	_, ino, found := d.Find(name)
	if !found {
		return -1, ErrFileNotFound.Trace(name)
	}
	return ino, nil
}

// FreeSlot returns the first unused slot.
func (d *Directory) FreeSlot() (int, bool) {
	for i := range d.ents {
		if !d.ents[i].InUse() {
			return i, true
		}
	}
	return -1, false
}

// Put stores (name, ino) at slot idx and writes it through.
func (d *Directory) Put(idx int, name string, ino int32) error {
	if err := checkName(name); err != nil {
		return err
	}
	ent := DirEntry{Ino: ino}
	copy(ent.Name[:], name)
	d.ents[idx] = ent
	return logex.Trace(d.sync(idx))
}

// Names lists every live entry, in slot order.
func (d *Directory) Names() []string {
	var names []string
	for i := range d.ents {
		if d.ents[i].InUse() {
			names = append(names, d.ents[i].GetName())
		}
	}
	return names
}
