package bio

import (
	"os"

	"github.com/chzyer/logex"
)

// CreateImage creates (or truncates) the backing image at path and reserves
// its full size up front, so every block is addressable from the start.
func CreateImage(path string, size int64) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return nil, logex.Trace(err)
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, logex.Trace(err)
	}
	return f, nil
}

// OpenImage opens an existing backing image. The image must already exist;
// use CreateImage to make one.
func OpenImage(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return nil, logex.Trace(err)
	}
	return f, nil
}
