package rdb

import (
	"encoding/binary"
	"fmt"
	"io"
)

// sizeResult is the tagged outcome of decoding one size-encoded field: it
// is either a length (for a following string/collection payload) or a
// small inline integer (used in places, such as AUX values, that accept
// either a string or a number).
type sizeResult struct {
	isInt bool
	n     uint64 // length, when !isInt
	iVal  int64  // integer value, when isInt
	lzf   bool   // true when the low-range form signals an LZF blob follows
}

// readSize decodes one size-encoding field per the two-high-bit dispatch:
//
//	00xxxxxx             -> 6-bit length
//	01xxxxxx yyyyyyyy    -> 14-bit length, big-endian
//	10000000 + 4 bytes   -> 32-bit length, big-endian
//	10000001 + 8 bytes   -> 64-bit length, big-endian
//	11000000 + 1 byte    -> inline uint8
//	11000001 + 2 bytes   -> inline uint16, little-endian
//	11000010 + 4 bytes   -> inline uint32, little-endian
//	11000011             -> LZF-compressed blob marker
func readSize(r io.Reader) (sizeResult, error) {
	var first [1]byte
	if _, err := io.ReadFull(r, first[:]); err != nil {
		return sizeResult{}, fmt.Errorf("rdb: read size byte: %w", err)
	}
	b := first[0]
	switch b >> 6 {
	case 0b00:
		return sizeResult{n: uint64(b & 0x3F)}, nil

	case 0b01:
		var next [1]byte
		if _, err := io.ReadFull(r, next[:]); err != nil {
			return sizeResult{}, fmt.Errorf("rdb: read 14-bit size low byte: %w", err)
		}
		n := (uint64(b&0x3F) << 8) | uint64(next[0])
		return sizeResult{n: n}, nil

	case 0b10:
		switch b & 0x3F {
		case 0:
			var buf [4]byte
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return sizeResult{}, fmt.Errorf("rdb: read 32-bit size: %w", err)
			}
			return sizeResult{n: uint64(binary.BigEndian.Uint32(buf[:]))}, nil
		case 1:
			var buf [8]byte
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return sizeResult{}, fmt.Errorf("rdb: read 64-bit size: %w", err)
			}
			return sizeResult{n: binary.BigEndian.Uint64(buf[:])}, nil
		default:
			return sizeResult{}, fmt.Errorf("rdb: unrecognized 10-form size byte 0x%02x", b)
		}

	default: // 0b11
		switch b & 0x3F {
		case encInt8:
			var buf [1]byte
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return sizeResult{}, fmt.Errorf("rdb: read int8: %w", err)
			}
			return sizeResult{isInt: true, iVal: int64(buf[0])}, nil
		case encInt16:
			var buf [2]byte
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return sizeResult{}, fmt.Errorf("rdb: read int16: %w", err)
			}
			return sizeResult{isInt: true, iVal: int64(binary.LittleEndian.Uint16(buf[:]))}, nil
		case encInt32:
			var buf [4]byte
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return sizeResult{}, fmt.Errorf("rdb: read int32: %w", err)
			}
			return sizeResult{isInt: true, iVal: int64(binary.LittleEndian.Uint32(buf[:]))}, nil
		case encLZF:
			return sizeResult{lzf: true}, nil
		default:
			return sizeResult{}, fmt.Errorf("rdb: unrecognized 11-form size byte 0x%02x", b)
		}
	}
}
