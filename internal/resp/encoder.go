package resp

import "strconv"

// Encoder writes RESP terms into an accumulating byte buffer, which the
// caller then flushes to the connection in one write.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an Encoder with buf as its initial backing array,
// reusable across writes to avoid per-reply allocation.
func NewEncoder(buf []byte) *Encoder {
	return &Encoder{buf: buf[:0]}
}

// Bytes returns the accumulated, not-yet-flushed output.
func (e *Encoder) Bytes() []byte { return e.buf }

// Reset discards any accumulated output, keeping the backing array.
func (e *Encoder) Reset() { e.buf = e.buf[:0] }

// SimpleString writes "+<s>\r\n". s must not contain CR or LF.
func (e *Encoder) SimpleString(s string) {
	e.buf = append(e.buf, '+')
	e.buf = append(e.buf, s...)
	e.buf = append(e.buf, CRLF...)
}

// Error writes "-<msg>\r\n". The conventional "ERR " prefix, if wanted, is
// part of msg, not added here.
func (e *Encoder) Error(msg string) {
	e.buf = append(e.buf, '-')
	e.buf = append(e.buf, msg...)
	e.buf = append(e.buf, CRLF...)
}

// BulkString writes "$<len>\r\n<bytes>\r\n".
func (e *Encoder) BulkString(b []byte) {
	e.buf = append(e.buf, '$')
	e.buf = strconv.AppendInt(e.buf, int64(len(b)), 10)
	e.buf = append(e.buf, CRLF...)
	e.buf = append(e.buf, b...)
	e.buf = append(e.buf, CRLF...)
}

// NullBulk writes "$-1\r\n".
func (e *Encoder) NullBulk() {
	e.buf = append(e.buf, '$', '-', '1')
	e.buf = append(e.buf, CRLF...)
}

// EmptyArray writes "*0\r\n".
func (e *Encoder) EmptyArray() {
	e.buf = append(e.buf, '*', '0')
	e.buf = append(e.buf, CRLF...)
}

// ArrayHeader writes "*<n>\r\n"; the caller then writes n child terms.
func (e *Encoder) ArrayHeader(n int) {
	e.buf = append(e.buf, '*')
	e.buf = strconv.AppendInt(e.buf, int64(n), 10)
	e.buf = append(e.buf, CRLF...)
}

// BulkStringArray writes an array of bulk strings in one call, the common
// case for replies like CONFIG GET.
func (e *Encoder) BulkStringArray(items ...[]byte) {
	e.ArrayHeader(len(items))
	for _, it := range items {
		e.BulkString(it)
	}
}
