// Package netfd bypasses Go's blocking net.Conn read/write path once a
// socket is established, handing raw, non-blocking file descriptors to
// golang.org/x/sys/unix for readiness-based I/O. The socket itself is
// still created with net.Listen/net.Dial for portability; only the
// steady-state I/O loop goes around Go's runtime-integrated blocking
// calls, matching the single-threaded reactor the server implements.
package netfd

import (
	"fmt"
	"syscall"
)

// syscallConner is satisfied by *net.TCPListener and *net.TCPConn.
type syscallConner interface {
	SyscallConn() (syscall.RawConn, error)
}

// FD extracts the raw file descriptor backing sc by way of
// SyscallConn().Control(). The
// descriptor returned is already non-blocking: the Go runtime sets
// O_NONBLOCK on every socket it creates, and that flag survives here.
func FD(sc syscallConner) (int, error) {
	rawConn, err := sc.SyscallConn()
	if err != nil {
		return 0, fmt.Errorf("netfd: syscall conn: %w", err)
	}
	var fd int
	ctrlErr := rawConn.Control(func(f uintptr) {
		fd = int(f)
	})
	if ctrlErr != nil {
		return 0, fmt.Errorf("netfd: control: %w", ctrlErr)
	}
	return fd, nil
}
