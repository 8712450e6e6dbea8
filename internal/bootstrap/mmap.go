package bootstrap

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"syscall"
)

// mmapOrFallback returns a reader over f's content and a cleanup
// function. The decoder only needs sequential read access, so a
// memory-mapped view is preferred; a plain file reader is used as a
// fallback when mapping fails. An empty file is not mapped and yields an
// empty reader.
func mmapOrFallback(f *os.File) (io.Reader, func(), error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("stat: %w", err)
	}
	if fi.Size() == 0 {
		return bytes.NewReader(nil), func() {}, nil
	}

	data, err := syscall.Mmap(int(f.Fd()), 0, int(fi.Size()), syscall.PROT_READ, syscall.MAP_PRIVATE)
	if err != nil {
		r, rerr := os.Open(f.Name())
		if rerr != nil {
			return nil, nil, fmt.Errorf("mmap fallback open: %w", rerr)
		}
		return r, func() { r.Close() }, nil
	}

	return bytes.NewReader(data), func() { syscall.Munmap(data) }, nil
}
