package bio

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/chzyer/logex"
)

var (
	ErrShortRead        = logex.Define("bio: short read")
	ErrShortWrite       = logex.Define("bio: short write")
	ErrReaderBufferFull = logex.Define("bio: reader buffer is full")
	ErrWriterBufferFull = logex.Define("bio: writer buffer is full")
)

// Reader decodes fixed-width big-endian fields out of a byte slice.
type Reader struct {
	data   []byte
	offset int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// ReadAt reads one Diskable at a byte offset of the raw store.
func ReadAt(r io.ReaderAt, offset int64, d Diskable) error {
	buf := make([]byte, d.DiskSize())
	n, err := r.ReadAt(buf, offset)
	if err != nil {
		return logex.Trace(err)
	}
	if n != len(buf) {
		return ErrShortRead.Trace(n, len(buf))
	}
	return logex.Trace(d.ReadDisk(NewReader(buf)))
}

// WriteAt writes one Diskable at a byte offset of the raw store.
func WriteAt(w io.WriterAt, offset int64, d Diskable) error {
	buf := make([]byte, d.DiskSize())
	d.WriteDisk(NewWriter(buf))
	n, err := w.WriteAt(buf, offset)
	if err != nil {
		return logex.Trace(err)
	}
	if n != len(buf) {
		return ErrShortWrite.Trace(n, len(buf))
	}
	return nil
}

func (r *Reader) Offset() int {
	return r.offset
}

func (r *Reader) Available() int {
	return len(r.data) - r.offset
}

func (r *Reader) Skip(n int) {
	r.offset += n
}

func (r *Reader) Byte(n int) []byte {
	ret := r.data[r.offset : r.offset+n]
	r.offset += n
	return ret
}

// Verify consumes len(b) bytes and reports whether they equal b.
func (r *Reader) Verify(b []byte) bool {
	return bytes.Equal(r.Byte(len(b)), b)
}

func (r *Reader) ReadDisk(d Diskable) error {
	if r.Available() < d.DiskSize() {
		return ErrReaderBufferFull.Trace()
	}
	return d.ReadDisk(r)
}

func (r *Reader) Int32() int32 {
	ret := int32(binary.BigEndian.Uint32(r.data[r.offset:]))
	r.offset += 4
	return ret
}

func (r *Reader) Int64() int64 {
	ret := int64(binary.BigEndian.Uint64(r.data[r.offset:]))
	r.offset += 8
	return ret
}
