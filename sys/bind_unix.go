//go:build unix

package sys

import (
	"syscall"

	"github.com/encodeous/lsd/state"
	"golang.org/x/sys/unix"
)

// setBuffers sizes the kernel socket buffers of a link socket. The kernel may clamp the value.
func setBuffers(network, address string, c syscall.RawConn) error {
	var opErr error
	err := c.Control(func(fd uintptr) {
		for _, opt := range []int{unix.SO_RCVBUF, unix.SO_SNDBUF} {
			if opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, opt, state.SocketBufferSize); opErr != nil {
				return
			}
		}
	})
	if err != nil {
		return err
	}
	return opErr
}
