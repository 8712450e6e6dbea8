// Package connection implements per-socket state: a non-blocking byte
// stream, the buffer used to accumulate partial requests across reads,
// and command dispatch into the keyspace.
package connection

import (
	"errors"
	"fmt"

	"redisd/internal/config"
	"redisd/internal/keyspace"
	"redisd/internal/metrics"
	"redisd/internal/netfd"
	"redisd/internal/resp"
)

// readBufferSize covers typical pipelined batches in a single
// non-blocking read.
const readBufferSize = 32 * 1024

// Connection owns one client socket. It is the exclusive mutator of its
// own stream; the event loop never reads or writes the descriptor
// directly.
type Connection struct {
	FD   int
	Addr string

	db      int
	pending []byte
	enc     *resp.Encoder
	store   *keyspace.Store
	cfg     *config.Config
	now     keyspace.Clock
	metrics *metrics.Counters
}

// New wraps an already-accepted, non-blocking descriptor.
func New(fd int, addr string, store *keyspace.Store, cfg *config.Config, now keyspace.Clock, m *metrics.Counters) *Connection {
	return &Connection{
		FD:      fd,
		Addr:    addr,
		store:   store,
		cfg:     cfg,
		now:     now,
		metrics: m,
		enc:     resp.NewEncoder(make([]byte, 0, readBufferSize)),
	}
}

// HandleReadable services one readiness event: a single non-blocking
// read, followed by parsing and dispatching every complete term the
// bytes contain, followed by one flush of the accumulated replies.
//
// It returns ErrClientDisconnected when the peer closed the socket
// (read returned zero). Any other non-nil error is fatal: the server
// drops the connection. A WouldBlock result on the read itself is not
// an error; it returns nil having done nothing.
func (c *Connection) HandleReadable() error {
	buf := make([]byte, readBufferSize)
	n, err := netfd.Read(c.FD, buf)
	if err != nil {
		if netfd.WouldBlock(err) {
			return nil
		}
		return fmt.Errorf("read: %w", err)
	}
	if n == 0 {
		return ErrClientDisconnected
	}

	data := buf[:n]
	if len(c.pending) > 0 {
		data = append(append([]byte{}, c.pending...), data...)
		c.pending = nil
	}

	terms, consumed, perr := resp.Parse(data)
	if perr != nil {
		return fmt.Errorf("parse: %w", perr)
	}
	if consumed < len(data) {
		// The trailing bytes belong to a term that spans this read and
		// the next one; retain an owned copy of them.
		c.pending = append([]byte{}, data[consumed:]...)
	}

	c.enc.Reset()
	for _, term := range terms {
		if c.metrics != nil {
			c.metrics.IncCommandsProcessed()
		}
		if derr := c.dispatch(term); derr != nil {
			var ce *ClientError
			if errors.As(derr, &ce) {
				c.enc.Error("ERR " + ce.Msg)
				continue
			}
			return derr
		}
	}

	if len(c.enc.Bytes()) > 0 {
		if _, err := writeAll(c.FD, c.enc.Bytes()); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}
	return nil
}

// writeAll pushes buf out over one or more non-blocking writes. A
// WouldBlock mid-write is not retried: in-flight replies are best-effort
// per the connection's cancellation semantics.
func writeAll(fd int, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := netfd.Write(fd, buf[total:])
		if err != nil {
			if netfd.WouldBlock(err) {
				return total, nil
			}
			return total, err
		}
		total += n
	}
	return total, nil
}

// Close releases the underlying descriptor.
func (c *Connection) Close() {
	netfd.Close(c.FD)
}
