package rdb

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// handleCompressedBlob reads a size-prefixed compressed span, decompresses
// it in full, and splices the plaintext back into the opcode stream
// followed by an opCompressedEnd marker, so record parsing simply resumes
// as if the bytes had never been compressed. This is purely a framing
// transparency layer: it never reaches the caller as a distinct event.
func (d *Decoder) handleCompressedBlob(kind byte) error {
	compressedLen, err := readSize(d.r)
	if err != nil {
		return fmt.Errorf("rdb: compressed blob length: %w", err)
	}
	if compressedLen.isInt {
		return fmt.Errorf("rdb: compressed blob length must be a plain length")
	}
	compressed := make([]byte, compressedLen.n)
	if _, err := io.ReadFull(d.r, compressed); err != nil {
		return fmt.Errorf("rdb: read compressed blob of %d bytes: %w", compressedLen.n, err)
	}

	var plain []byte
	switch kind {
	case opZstdBlobStart:
		plain, err = decompressZstd(compressed)
	case opLZ4BlobStart:
		plain, err = decompressLZ4(compressed)
	default:
		return fmt.Errorf("rdb: unknown compressed blob kind 0x%02x", kind)
	}
	if err != nil {
		return err
	}

	spliced := io.MultiReader(
		bytes.NewReader(plain),
		bytes.NewReader([]byte{opCompressedEnd}),
		d.r,
	)
	d.r = bufio.NewReader(spliced)
	return nil
}

func decompressZstd(src []byte) ([]byte, error) {
	zr, err := zstd.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("rdb: zstd reader: %w", err)
	}
	defer zr.Close()
	plain, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("rdb: zstd decompress: %w", err)
	}
	return plain, nil
}

func decompressLZ4(src []byte) ([]byte, error) {
	zr := lz4.NewReader(bytes.NewReader(src))
	plain, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("rdb: lz4 decompress: %w", err)
	}
	return plain, nil
}
