//go:build darwin

package netfd

import "golang.org/x/sys/unix"

// SetReceiveBuffer sets the SO_RCVBUF socket option on macOS/Darwin.
func SetReceiveBuffer(fd int, size int) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, size)
}
