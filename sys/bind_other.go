//go:build !unix

package sys

import "syscall"

func setBuffers(network, address string, c syscall.RawConn) error {
	return nil
}
