package rdb

import (
	"fmt"
	"io"
	"strconv"

	lzf "github.com/zhuyie/golzf"
)

// readString decodes one size-encoded string field: a plain length-prefixed
// byte run, an inline integer rendered as its decimal text, or an
// LZF-compressed blob.
func readString(r io.Reader) ([]byte, error) {
	sz, err := readSize(r)
	if err != nil {
		return nil, err
	}
	switch {
	case sz.lzf:
		return readLZFString(r)
	case sz.isInt:
		return []byte(strconv.FormatInt(sz.iVal, 10)), nil
	default:
		if sz.n == 0 {
			return []byte{}, nil
		}
		buf := make([]byte, sz.n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("rdb: read string payload of %d bytes: %w", sz.n, err)
		}
		return buf, nil
	}
}

// readLZFString decodes the [compressed_len][original_len][payload] form,
// using the same LZF decompressor the reference tooling links against.
func readLZFString(r io.Reader) ([]byte, error) {
	compressedLen, err := readSize(r)
	if err != nil {
		return nil, fmt.Errorf("rdb: lzf compressed length: %w", err)
	}
	originalLen, err := readSize(r)
	if err != nil {
		return nil, fmt.Errorf("rdb: lzf original length: %w", err)
	}
	if compressedLen.isInt || originalLen.isInt {
		return nil, fmt.Errorf("rdb: lzf length fields must be plain lengths")
	}

	src := make([]byte, compressedLen.n)
	if _, err := io.ReadFull(r, src); err != nil {
		return nil, fmt.Errorf("rdb: read lzf payload of %d bytes: %w", compressedLen.n, err)
	}

	dst := make([]byte, originalLen.n)
	n, err := lzf.Decompress(src, dst)
	if err != nil {
		return nil, fmt.Errorf("rdb: lzf decompress: %w", err)
	}
	if uint64(n) != originalLen.n {
		return nil, fmt.Errorf("rdb: lzf decompressed to %d bytes, expected %d", n, originalLen.n)
	}
	return dst, nil
}
