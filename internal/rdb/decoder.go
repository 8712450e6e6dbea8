package rdb

import (
	"bufio"
	"fmt"
	"io"
)

// Decoder reads a snapshot stream strictly sequentially: the magic header
// once, then a sequence of opcodes and value records via repeated calls to
// Next, until io.EOF.
type Decoder struct {
	r *bufio.Reader

	currentDB int
	pending   struct {
		set bool
		ms  int64
	}
}

// NewDecoder wraps r for sequential decoding. The caller must call
// ParseHeader before the first call to Next.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// ParseHeader reads and validates the "REDIS" + 4-digit version magic that
// opens every snapshot.
func (d *Decoder) ParseHeader() error {
	var magic [9]byte
	if _, err := io.ReadFull(d.r, magic[:]); err != nil {
		return fmt.Errorf("rdb: read header: %w", err)
	}
	if string(magic[:5]) != "REDIS" {
		return fmt.Errorf("rdb: bad magic %q, want \"REDIS\"", magic[:5])
	}
	for _, c := range magic[5:] {
		if c < '0' || c > '9' {
			return fmt.Errorf("rdb: non-digit version byte %q in header", c)
		}
	}
	return nil
}

// Next returns the next decoded key record, skipping over opcodes that are
// pure framing (AUX, RESIZEDB, SELECTDB, compressed-blob markers). It
// returns io.EOF once the stream's EOF opcode has been consumed.
func (d *Decoder) Next() (*Entry, error) {
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("rdb: read opcode/type byte: %w", err)
		}

		switch b {
		case opAux:
			if _, err := readString(d.r); err != nil {
				return nil, fmt.Errorf("rdb: aux key: %w", err)
			}
			if _, err := readString(d.r); err != nil {
				return nil, fmt.Errorf("rdb: aux value: %w", err)
			}
			continue

		case opResizeDB:
			if _, err := readSize(d.r); err != nil {
				return nil, fmt.Errorf("rdb: resizedb main hint: %w", err)
			}
			if _, err := readSize(d.r); err != nil {
				return nil, fmt.Errorf("rdb: resizedb expiry hint: %w", err)
			}
			continue

		case opExpireTimeMS:
			var buf [8]byte
			if _, err := io.ReadFull(d.r, buf[:]); err != nil {
				return nil, fmt.Errorf("rdb: expiretime_ms: %w", err)
			}
			d.pending.set = true
			d.pending.ms = int64(leUint64(buf[:]))
			continue

		case opExpireTimeSec:
			var buf [4]byte
			if _, err := io.ReadFull(d.r, buf[:]); err != nil {
				return nil, fmt.Errorf("rdb: expiretime_s: %w", err)
			}
			d.pending.set = true
			d.pending.ms = int64(leUint32(buf[:])) * 1000
			continue

		case opSelectDB:
			sz, err := readSize(d.r)
			if err != nil {
				return nil, fmt.Errorf("rdb: selectdb: %w", err)
			}
			if sz.isInt {
				return nil, fmt.Errorf("rdb: selectdb index must be a plain length")
			}
			d.currentDB = int(sz.n)
			continue

		case opFullsyncEnd:
			continue

		case opZstdBlobStart, opLZ4BlobStart:
			if err := d.handleCompressedBlob(b); err != nil {
				return nil, err
			}
			continue

		case opCompressedEnd:
			continue

		case opEOF:
			var crc [8]byte
			// Best-effort: a truncated trailer after EOF is not fatal, the
			// CRC is unvalidated by this decoder.
			io.ReadFull(d.r, crc[:])
			return nil, io.EOF

		default:
			entry, err := d.parseRecord(b)
			if err != nil {
				return nil, err
			}
			if entry == nil {
				// Pending expiry already elapsed; record dropped silently.
				continue
			}
			return entry, nil
		}
	}
}

// parseRecord decodes (key, value) for the given value-type byte and
// attaches any pending expiry. It returns (nil, nil) when the record is
// valid but its expiry has already elapsed, per the "drop silently" rule.
func (d *Decoder) parseRecord(typeByte byte) (*Entry, error) {
	key, err := readString(d.r)
	if err != nil {
		return nil, fmt.Errorf("rdb: record key: %w", err)
	}

	expireMs, hasExpire := int64(0), false
	if d.pending.set {
		expireMs, hasExpire = d.pending.ms, true
		d.pending.set = false
	}

	if typeByte != typeString {
		return nil, fmt.Errorf("rdb: key %q has %w: %s", key, ErrUnsupportedType, valueTypeName(typeByte))
	}

	value, err := readString(d.r)
	if err != nil {
		return nil, fmt.Errorf("rdb: record value for key %q: %w", key, err)
	}

	if hasExpire && expireMs < nowMillis() {
		return nil, nil
	}

	return &Entry{
		DB:        d.currentDB,
		Key:       key,
		Value:     value,
		HasExpire: hasExpire,
		ExpireMs:  expireMs,
	}, nil
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func leUint64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}
