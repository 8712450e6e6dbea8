//go:build linux

package netfd

import "golang.org/x/sys/unix"

// SetReceiveBuffer sets the SO_RCVBUF socket option on Linux.
func SetReceiveBuffer(fd int, size int) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, size)
}
