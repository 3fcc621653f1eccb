package bio

import (
	"io"

	"github.com/chzyer/logex"
)

var (
	ErrBlockBuffer = logex.Define("bio: buffer must be exactly one block")
)

// Device turns a byte-addressed RawDisker into a block device: every read
// and write moves exactly one block, addressed by disk block number.
type Device struct {
	raw      RawDisker
	blockBit uint
}

func NewDevice(raw RawDisker, blockBit uint) *Device {
	return &Device{
		raw:      raw,
		blockBit: blockBit,
	}
}

func (d *Device) BlockSize() int {
	return 1 << d.blockBit
}

func (d *Device) Raw() RawDisker {
	return d.raw
}

// ReadBlock fills b with the content of block dbn. b is zeroed first, so on
// io.EOF the tail past the backing store's end reads as zeros; the error is
// still returned for callers that care.
func (d *Device) ReadBlock(dbn int32, b []byte) error {
	if len(b) != d.BlockSize() {
		return ErrBlockBuffer.Trace(len(b), d.BlockSize())
	}
	for i := range b {
		b[i] = 0
	}
	n, err := d.raw.ReadAt(b, int64(dbn)<<d.blockBit)
	if err != nil {
		if logex.Equal(err, io.EOF) {
			return io.EOF
		}
		return logex.Trace(err)
	}
	if n != len(b) {
		return ErrShortRead.Trace(n, len(b))
	}
	return nil
}

// WriteBlock stores b as the content of block dbn.
func (d *Device) WriteBlock(dbn int32, b []byte) error {
	if len(b) != d.BlockSize() {
		return ErrBlockBuffer.Trace(len(b), d.BlockSize())
	}
	n, err := d.raw.WriteAt(b, int64(dbn)<<d.blockBit)
	if err != nil {
		return logex.Trace(err)
	}
	if n != len(b) {
		return ErrShortWrite.Trace(n, len(b))
	}
	return nil
}
