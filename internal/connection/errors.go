package connection

import (
	"errors"
	"fmt"
)

// ErrClientDisconnected marks a benign EOF: the peer closed its side of
// the socket.
var ErrClientDisconnected = errors.New("client disconnected")

// ClientError is a protocol-level fault. The connection is kept alive;
// the caller writes it back as a RESP simple error and continues
// processing the remaining pipelined terms.
type ClientError struct {
	Msg string
}

func (e *ClientError) Error() string { return e.Msg }

func clientErrorf(format string, args ...interface{}) error {
	return &ClientError{Msg: fmt.Sprintf(format, args...)}
}
