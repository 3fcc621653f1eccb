package bfs

import (
	"bytes"
	"io"
	"io/ioutil"
	"testing"

	"github.com/chzyer/test"
)

func TestHandle(t *testing.T) {
	defer test.New(t)

	vol := testVolume()
	defer vol.Close()

	h, err := vol.CreateHandle("h.txt")
	test.Nil(err)
	test.Equal(h.Name(), "h.txt")

	payload := test.SeqBytes(BlockSize + 100)
	n, err := h.Write(payload)
	test.Nil(err)
	test.Equal(n, len(payload))
	test.Equal(h.Size(), int64(len(payload)))

	{ // handles speak the io interfaces, io.EOF included
		_, err := h.Seek(0, io.SeekStart)
		test.Nil(err)
		got, err := ioutil.ReadAll(h)
		test.Nil(err)
		test.Equal(payload, got)
	}

	{ // io.Copy between two handles
		src, err := vol.OpenHandle("h.txt")
		test.Nil(err)
		dst, err := vol.CreateHandle("copy.txt")
		test.Nil(err)
		_, err = src.Seek(0, io.SeekStart)
		test.Nil(err)
		copied, err := io.Copy(dst, src)
		test.Nil(err)
		test.Equal(copied, int64(len(payload)))
		test.Nil(src.Close())
		test.Nil(dst.Close())

		chk, err := vol.OpenHandle("copy.txt")
		test.Nil(err)
		got, err := ioutil.ReadAll(chk)
		test.Nil(err)
		test.True(bytes.Equal(payload, got))
		test.Nil(chk.Close())
	}

	test.Nil(h.Close())
	_, err = vol.OpenHandle("nope")
	test.Equal(err, ErrFileNotFound)
}
