package bio

import "io"

// RawDisker is the backing store of a disk image. Access is byte-addressed;
// the Device layered on top enforces block granularity.
type RawDisker interface {
	io.ReaderAt
	io.WriterAt
}

// Diskable is a fixed-size record that knows its on-disk encoding.
type Diskable interface {
	DiskSize() int
	ReadDisk(r *Reader) error
	WriteDisk(w *Writer)
}
