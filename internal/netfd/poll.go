package netfd

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// PollTimeoutMillis is the recommended block duration per event loop
// iteration: short enough to notice a snapshot interval boundary
// promptly.
const PollTimeoutMillis = 1000

// Wait blocks for up to timeoutMillis waiting for any of fds to become
// ready, filling in each entry's Revents in place. An interrupted call
// (EINTR) is treated as "nothing ready yet" rather than an error, since
// the loop will simply poll again next iteration.
func Wait(fds []unix.PollFd, timeoutMillis int) (int, error) {
	n, err := unix.Poll(fds, timeoutMillis)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, fmt.Errorf("netfd: poll: %w", err)
	}
	return n, nil
}

// Read performs one non-blocking read. A WouldBlock/EAGAIN result is
// returned to the caller as the unix.EAGAIN error rather than translated
// away, so the connection layer can distinguish it from a genuine
// zero-byte peer-closed read.
func Read(fd int, buf []byte) (int, error) {
	return unix.Read(fd, buf)
}

// Write performs one non-blocking write.
func Write(fd int, buf []byte) (int, error) {
	return unix.Write(fd, buf)
}

// AcceptNonblock accepts one pending connection on a listening socket,
// returning the new descriptor already in non-blocking mode.
func AcceptNonblock(listenFD int) (int, error) {
	nfd, _, err := unix.Accept4(listenFD, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err != nil {
		return 0, err
	}
	return nfd, nil
}

// WouldBlock reports whether err is the non-blocking "try again" signal.
func WouldBlock(err error) bool {
	return err == unix.EAGAIN || err == unix.EWOULDBLOCK
}

// Close closes a raw file descriptor.
func Close(fd int) error {
	return unix.Close(fd)
}
