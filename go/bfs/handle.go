package bfs

import "io"

// Handle adapts a descriptor to the standard io interfaces. Descriptors
// open on the same inode share one cursor, so handles on the same file do
// too.
type Handle struct {
	vol  *Volume
	fd   int
	name string
}

func (v *Volume) OpenHandle(name string) (*Handle, error) {
	fd, err := v.Open(name)
	if err != nil {
		return nil, err
	}
	return &Handle{vol: v, fd: fd, name: name}, nil
}

func (v *Volume) CreateHandle(name string) (*Handle, error) {
	fd, err := v.Create(name)
	if err != nil {
		return nil, err
	}
	return &Handle{vol: v, fd: fd, name: name}, nil
}

func (h *Handle) Name() string {
	return h.name
}

func (h *Handle) Fd() int {
	return h.fd
}

func (h *Handle) Size() int64 {
	size, err := h.vol.FileSize(h.fd)
	if err != nil {
		return 0
	}
	return size
}

func (h *Handle) Read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	n, err := h.vol.Read(h.fd, b)
	if err == nil && n == 0 {
		err = io.EOF
	}
	return n, err
}

func (h *Handle) Write(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	if err := h.vol.Write(h.fd, b); err != nil {
		return 0, err
	}
	return len(b), nil
}

func (h *Handle) Seek(offset int64, whence int) (int64, error) {
	return h.vol.Seek(h.fd, offset, whence)
}

func (h *Handle) Close() error {
	return h.vol.CloseFile(h.fd)
}
